package core

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a key or account is absent.
var ErrNotFound = errors.New("not found")

// AccountRepository defines the queries the scoring engine needs over
// the account store. Implementations must treat expired or deleted
// accounts as absent.
type AccountRepository interface {
	// ListAccounts returns accounts ordered by registration time,
	// newest first. A limit <= 0 means unbounded.
	ListAccounts(ctx context.Context, limit int) ([]*Account, error)

	// GetAccount fetches a single account by ID.
	GetAccount(ctx context.Context, id int64) (*Account, error)

	// CountByEmailDomain counts accounts whose email ends in @domain.
	CountByEmailDomain(ctx context.Context, domain string) (int, error)

	// CountByUsernamePrefix counts accounts whose username starts with
	// the given prefix.
	CountByUsernamePrefix(ctx context.Context, prefix string) (int, error)

	// CountRegisteredBetween counts accounts registered inside the
	// inclusive [from, to] window.
	CountRegisteredBetween(ctx context.Context, from, to time.Time) (int, error)

	// CountByRegistrationIP counts accounts that registered from the
	// given stored IP address.
	CountByRegistrationIP(ctx context.Context, ip string) (int, error)

	// CandidatesByUsernameLength returns usernames whose length is
	// within tolerance of length, excluding the named account, capped
	// at cap rows.
	CandidatesByUsernameLength(ctx context.Context, length, tolerance int, exclude string, maxRows int) ([]string, error)

	// SetRegistrationIP records the IP an account registered from.
	SetRegistrationIP(ctx context.Context, id int64, ip string) error

	// DeleteAccount removes an account.
	DeleteAccount(ctx context.Context, id int64) error
}

// CacheStore is a TTL'd key-value store. Expired entries are logically
// absent even if a backend has not physically purged them yet.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}
