package gateway

import (
	"context"
	"sort"
	"sync"
	"time"

	"tally/internal/core"
)

// Memory is an in-process Gateway. It mirrors the persistent store's
// observable behavior, including date-descending list order and
// owner scoping, so handlers and tests exercise the same contract.
type Memory struct {
	mu     sync.Mutex
	nextID int64
	items  map[string][]core.Transaction // ownerID -> records in insertion order
}

func NewMemory() *Memory {
	return &Memory{nextID: 1, items: make(map[string][]core.Transaction)}
}

func (m *Memory) List(_ context.Context, ownerID string) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := append([]core.Transaction(nil), m.items[ownerID]...)
	// Newest date first; within a date, the later insertion wins.
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date.Time) {
			return records[i].Date.After(records[j].Date.Time)
		}
		return records[i].ID > records[j].ID
	})
	return records, nil
}

func (m *Memory) Create(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	tx.ID = m.nextID
	m.nextID++
	tx.CreatedAt = now
	tx.UpdatedAt = now
	m.items[tx.OwnerID] = append(m.items[tx.OwnerID], tx)
	return tx, nil
}

// Get retrieves a single record scoped to its owner.
func (m *Memory) Get(_ context.Context, ownerID string, id int64) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range m.items[ownerID] {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, ErrNotFound
}

func (m *Memory) Update(_ context.Context, ownerID string, id int64, patch core.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.items[ownerID]
	for i := range records {
		if records[i].ID != id {
			continue
		}
		patched := records[i]
		applyPatch(&patched, patch)
		if err := patched.Validate(); err != nil {
			return err
		}
		patched.UpdatedAt = time.Now().UTC()
		records[i] = patched
		return nil
	}
	return ErrNotFound
}

func (m *Memory) Delete(_ context.Context, ownerID string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.items[ownerID]
	for i := range records {
		if records[i].ID == id {
			m.items[ownerID] = append(records[:i], records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func applyPatch(tx *core.Transaction, patch core.Patch) {
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Kind != nil {
		tx.Kind = *patch.Kind
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	if patch.Counterparty != nil {
		tx.Counterparty = *patch.Counterparty
	}
	if patch.PaymentMethod != nil {
		tx.PaymentMethod = *patch.PaymentMethod
	}
	if patch.PaymentDetail != nil {
		tx.PaymentDetail = *patch.PaymentDetail
	}
	if patch.AccountUsed != nil {
		tx.AccountUsed = *patch.AccountUsed
	}
}
