package billingcycle

import "errors"

var (
	ErrRemoteFetchFailed = errors.New("failed to fetch remote subscription state")
	ErrCacheUnavailable  = errors.New("cycle cache is unavailable")
)
