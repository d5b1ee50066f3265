package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with static attrs", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "billingkit")),
		)

		log.Info("subscription swapped", slog.String("plan_id", "price_pro"))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "subscription swapped", record["msg"])
		assert.Equal(t, "billingkit", record["service"])
		assert.Equal(t, "price_pro", record["plan_id"])
	})

	t.Run("text format for development", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithDevelopment("billingkit"),
			logger.WithOutput(&buf),
		)

		log.Debug("cache miss")
		assert.True(t, strings.Contains(buf.String(), "cache miss"))
	})

	t.Run("info level filters debug by default", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf))

		log.Debug("hidden")
		assert.Empty(t, buf.String())
	})
}
