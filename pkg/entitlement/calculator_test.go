package entitlement_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/entitlement"
	"github.com/dmitrymomot/billingkit/pkg/subscription"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Sum(ctx context.Context, subscriberID uuid.UUID, start, end time.Time) (int, error) {
	args := m.Called(ctx, subscriberID, start, end)
	return args.Int(0), args.Error(1)
}

type mockAccount struct {
	mock.Mock
}

func (m *mockAccount) AdditionalUnitsBought(ctx context.Context, subscriberID uuid.UUID) (int, error) {
	args := m.Called(ctx, subscriberID)
	return args.Int(0), args.Error(1)
}

type mockCycleSource struct {
	mock.Mock
}

func (m *mockCycleSource) PaidAt(ctx context.Context, sub *subscription.Subscription) (time.Time, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(time.Time), args.Error(1)
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testCatalog() entitlement.Catalog {
	return entitlement.NewInMemCatalog(map[string]entitlement.Plan{
		"price_basic_monthly":  {ID: "price_basic_monthly", Name: "Basic", UnitsPerCycle: 100},
		"price_pro_yearly":     {ID: "price_pro_yearly", Name: "Pro", UnitsPerCycle: 100},
		"price_legacy_monthly": {ID: "price_legacy_monthly", Name: "Legacy", UnitsPerCycle: 500},
	})
}

func testSubscription() *subscription.Subscription {
	return &subscription.Subscription{
		ID:            uuid.New(),
		SubscriberID:  uuid.New(),
		PlanID:        "price_basic_monthly",
		ProviderSubID: "sub_123",
		Quantity:      1,
		CreatedAt:     testNow.AddDate(0, -6, 0),
	}
}

func newTestCalculator(ledger *mockLedger, account *mockAccount, cycles *mockCycleSource) *entitlement.Calculator {
	return entitlement.NewCalculator(testCatalog(), ledger, account, cycles,
		entitlement.WithClock(func() time.Time { return testNow }),
	)
}

func TestCalculator_EmailsAvailable(t *testing.T) {
	t.Parallel()

	t.Run("plan quota plus bought units", func(t *testing.T) {
		t.Parallel()
		ledger, account, cycles := &mockLedger{}, &mockAccount{}, &mockCycleSource{}
		sub := testSubscription()

		account.On("AdditionalUnitsBought", mock.Anything, sub.SubscriberID).Return(30, nil)

		calc := newTestCalculator(ledger, account, cycles)
		got, err := calc.EmailsAvailable(context.Background(), sub)
		require.NoError(t, err)
		assert.Equal(t, 130, got)
	})

	t.Run("grandfathered previous plan wins", func(t *testing.T) {
		t.Parallel()
		ledger, account, cycles := &mockLedger{}, &mockAccount{}, &mockCycleSource{}
		sub := testSubscription()
		sub.PreviousPlanID = "price_legacy_monthly"

		account.On("AdditionalUnitsBought", mock.Anything, sub.SubscriberID).Return(0, nil)

		calc := newTestCalculator(ledger, account, cycles)
		got, err := calc.EmailsAvailable(context.Background(), sub)
		require.NoError(t, err)
		assert.Equal(t, 500, got)
	})

	t.Run("unknown plan propagates", func(t *testing.T) {
		t.Parallel()
		ledger, account, cycles := &mockLedger{}, &mockAccount{}, &mockCycleSource{}
		sub := testSubscription()
		sub.PlanID = "price_deleted"

		calc := newTestCalculator(ledger, account, cycles)
		_, err := calc.EmailsAvailable(context.Background(), sub)
		assert.ErrorIs(t, err, entitlement.ErrPlanNotFound)
	})
}

func TestCalculator_EmailsSpentThisCycle(t *testing.T) {
	t.Parallel()

	paidAt := testNow.AddDate(0, 0, -10)

	t.Run("sums ledger from cycle start to now", func(t *testing.T) {
		t.Parallel()
		ledger, account, cycles := &mockLedger{}, &mockAccount{}, &mockCycleSource{}
		sub := testSubscription()

		cycles.On("PaidAt", mock.Anything, sub).Return(paidAt, nil)
		ledger.On("Sum", mock.Anything, sub.SubscriberID, paidAt, testNow).Return(42, nil)

		calc := newTestCalculator(ledger, account, cycles)
		assert.Equal(t, 42, calc.EmailsSpentThisCycle(context.Background(), sub))
		ledger.AssertExpectations(t)
	})

	t.Run("ledger failure reports zero spend", func(t *testing.T) {
		t.Parallel()
		ledger, account, cycles := &mockLedger{}, &mockAccount{}, &mockCycleSource{}
		sub := testSubscription()

		cycles.On("PaidAt", mock.Anything, sub).Return(paidAt, nil)
		ledger.On("Sum", mock.Anything, sub.SubscriberID, paidAt, testNow).
			Return(0, errors.New("clickhouse timeout"))

		calc := newTestCalculator(ledger, account, cycles)
		assert.Equal(t, 0, calc.EmailsSpentThisCycle(context.Background(), sub))
	})

	t.Run("cycle resolution failure reports zero spend", func(t *testing.T) {
		t.Parallel()
		ledger, account, cycles := &mockLedger{}, &mockAccount{}, &mockCycleSource{}
		sub := testSubscription()

		cycles.On("PaidAt", mock.Anything, sub).Return(time.Time{}, errors.New("provider down"))

		calc := newTestCalculator(ledger, account, cycles)
		assert.Equal(t, 0, calc.EmailsSpentThisCycle(context.Background(), sub))
		ledger.AssertNotCalled(t, "Sum")
	})
}

func TestCalculator_TotalEmailsSpent(t *testing.T) {
	t.Parallel()

	t.Run("running subscription sums up to now", func(t *testing.T) {
		t.Parallel()
		ledger, account, cycles := &mockLedger{}, &mockAccount{}, &mockCycleSource{}
		sub := testSubscription()

		ledger.On("Sum", mock.Anything, sub.SubscriberID, sub.CreatedAt, testNow).Return(250, nil)

		calc := newTestCalculator(ledger, account, cycles)
		assert.Equal(t, 250, calc.TotalEmailsSpent(context.Background(), sub))
	})

	t.Run("cancelled subscription sums up to ends_at", func(t *testing.T) {
		t.Parallel()
		ledger, account, cycles := &mockLedger{}, &mockAccount{}, &mockCycleSource{}
		sub := testSubscription()
		endsAt := testNow.AddDate(0, 0, -5)
		sub.EndsAt = &endsAt

		ledger.On("Sum", mock.Anything, sub.SubscriberID, sub.CreatedAt, endsAt).Return(180, nil)

		calc := newTestCalculator(ledger, account, cycles)
		assert.Equal(t, 180, calc.TotalEmailsSpent(context.Background(), sub))
		ledger.AssertExpectations(t)
	})
}

func TestCalculator_Remaining(t *testing.T) {
	t.Parallel()

	paidAt := testNow.AddDate(0, 0, -10)

	t.Run("current remaining per the exact formula", func(t *testing.T) {
		t.Parallel()
		ledger, account, cycles := &mockLedger{}, &mockAccount{}, &mockCycleSource{}
		sub := testSubscription()
		sub.PlanID = "price_pro_yearly"

		// quota 100 + 30 bought = 130 available; bought units are excluded
		// again, so 130 - 30 - 120 spent = -20, clamped to 0.
		account.On("AdditionalUnitsBought", mock.Anything, sub.SubscriberID).Return(30, nil)
		cycles.On("PaidAt", mock.Anything, sub).Return(paidAt, nil)
		ledger.On("Sum", mock.Anything, sub.SubscriberID, paidAt, testNow).Return(120, nil)

		calc := newTestCalculator(ledger, account, cycles)
		got, err := calc.CurrentEmailsRemaining(context.Background(), sub)
		require.NoError(t, err)
		assert.Equal(t, 0, got)
	})

	t.Run("current remaining with quota left", func(t *testing.T) {
		t.Parallel()
		ledger, account, cycles := &mockLedger{}, &mockAccount{}, &mockCycleSource{}
		sub := testSubscription() // quota 100

		account.On("AdditionalUnitsBought", mock.Anything, sub.SubscriberID).Return(30, nil)
		cycles.On("PaidAt", mock.Anything, sub).Return(paidAt, nil)
		ledger.On("Sum", mock.Anything, sub.SubscriberID, paidAt, testNow).Return(90, nil)

		calc := newTestCalculator(ledger, account, cycles)
		got, err := calc.CurrentEmailsRemaining(context.Background(), sub)
		require.NoError(t, err)
		// 130 available - 30 bought - 90 spent = 10
		assert.Equal(t, 10, got)
	})

	t.Run("lifetime remaining clamps at zero", func(t *testing.T) {
		t.Parallel()
		ledger, account, cycles := &mockLedger{}, &mockAccount{}, &mockCycleSource{}
		sub := testSubscription()

		account.On("AdditionalUnitsBought", mock.Anything, sub.SubscriberID).Return(0, nil)
		ledger.On("Sum", mock.Anything, sub.SubscriberID, sub.CreatedAt, testNow).Return(1000, nil)

		calc := newTestCalculator(ledger, account, cycles)
		got, err := calc.EmailsRemaining(context.Background(), sub)
		require.NoError(t, err)
		assert.Equal(t, 0, got)
	})

	// The two remaining-counters use different accounting periods on purpose:
	// EmailsRemaining subtracts lifetime spend from the full quota while
	// CurrentEmailsRemaining subtracts cycle spend from the plan quota. This
	// pins the discrepancy down so a future reconciliation is a conscious
	// change, not an accident.
	t.Run("lifetime and cycle remaining can disagree", func(t *testing.T) {
		t.Parallel()
		ledger, account, cycles := &mockLedger{}, &mockAccount{}, &mockCycleSource{}
		sub := testSubscription() // quota 100, created 6 months ago

		account.On("AdditionalUnitsBought", mock.Anything, sub.SubscriberID).Return(0, nil)
		cycles.On("PaidAt", mock.Anything, sub).Return(paidAt, nil)
		// 20 spent this cycle, 400 over the record's lifetime.
		ledger.On("Sum", mock.Anything, sub.SubscriberID, paidAt, testNow).Return(20, nil)
		ledger.On("Sum", mock.Anything, sub.SubscriberID, sub.CreatedAt, testNow).Return(400, nil)

		calc := newTestCalculator(ledger, account, cycles)

		lifetime, err := calc.EmailsRemaining(context.Background(), sub)
		require.NoError(t, err)
		current, err := calc.CurrentEmailsRemaining(context.Background(), sub)
		require.NoError(t, err)

		assert.Equal(t, 0, lifetime, "lifetime formula exhausts the quota")
		assert.Equal(t, 80, current, "cycle formula still has quota left")
	})
}
