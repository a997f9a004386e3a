// Package gateway defines the contract the core relies on to load and
// mutate transaction records in the persistent store, plus an in-memory
// implementation for development and tests.
package gateway

import (
	"context"
	"errors"

	"tally/internal/core"
)

// ErrNotFound is returned by Update and Delete when no record with the
// given id exists for the owner.
var ErrNotFound = errors.New("transaction not found")

// Ports the core consumes. Implementations scope every operation to
// the owner; a record belonging to someone else behaves as absent.
type (
	Lister interface {
		// List returns the owner's records ordered by date descending,
		// ties broken by the store's insertion order.
		List(ctx context.Context, ownerID string) ([]core.Transaction, error)
	}

	Creator interface {
		// Create persists a record without an id and returns it with
		// the id and timestamps assigned.
		Create(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	}

	Updater interface {
		// Update applies a partial-field patch; nil patch fields are
		// left untouched.
		Update(ctx context.Context, ownerID string, id int64, patch core.Patch) error
	}

	Deleter interface {
		Delete(ctx context.Context, ownerID string, id int64) error
	}

	// Gateway is the full sync contract: list plus the three mutations.
	// After every mutation callers reload via List rather than patching
	// their local copy, so their view of truth stays store-derived.
	Gateway interface {
		Lister
		Creator
		Updater
		Deleter
	}
)
