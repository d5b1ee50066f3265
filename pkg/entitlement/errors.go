package entitlement

import "errors"

var (
	ErrPlanNotFound        = errors.New("entitlement plan not found in catalog")
	ErrFailedToLoadCatalog = errors.New("failed to load plan catalog")
	ErrInvalidCatalog      = errors.New("invalid plan catalog")
)
