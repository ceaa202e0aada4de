package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthenticated   = errors.New("missing user identity")
	ErrInvalidName       = errors.New("name must be between 1 and 200 characters")
	ErrInvalidCategory   = errors.New("category must not be empty")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidPrice      = errors.New("price must not be negative")
	ErrInvalidExpiry     = errors.New("expiry_date must be a date in YYYY-MM-DD form")
	ErrInvalidToken      = errors.New("push token must not be empty")
	ErrInvalidPlatform   = errors.New("invalid platform: must be web, android, or ios")
	ErrInvalidPeriod     = errors.New("invalid period: must be monthly or weekly")
	ErrInvalidBudget     = errors.New("budget must be a non-negative number")
	ErrScanFailed        = errors.New("expiry scan query failed")
	ErrTokenLookupFailed = errors.New("push token lookup failed")
	ErrRunLocked         = errors.New("expiry check already ran for this date")
)
