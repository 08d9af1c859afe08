package chain

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLedger is an in-process Ledger used by unit tests and local
// development. Balances are tracked per (mint, holder); record slots are
// tracked per address with their reserved size.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]map[string]uint64
	accounts map[string]int
	sequence uint64
}

// NewMemoryLedger returns an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]map[string]uint64),
		accounts: make(map[string]int),
	}
}

func (l *MemoryLedger) holders(mint string) map[string]uint64 {
	h, ok := l.balances[mint]
	if !ok {
		h = make(map[string]uint64)
		l.balances[mint] = h
	}
	return h
}

func (l *MemoryLedger) signature() string {
	l.sequence++
	return fmt.Sprintf("memledger-%d", l.sequence)
}

// Issue mints units into the holder account.
func (l *MemoryLedger) Issue(_ context.Context, mint string, amount uint64, to string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.holders(mint)[to] += amount
	return l.signature(), nil
}

// Transfer moves units between holders. The authorizer must be the source
// holder itself; any other authorizer is rejected.
func (l *MemoryLedger) Transfer(_ context.Context, mint string, amount uint64, from, to, authorizer string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if authorizer != from {
		return "", ErrUnauthorizedLedgerAccess
	}
	holders := l.holders(mint)
	if holders[from] < amount {
		return "", ErrInsufficientBalance
	}
	holders[from] -= amount
	holders[to] += amount
	return l.signature(), nil
}

// Burn destroys units held by from.
func (l *MemoryLedger) Burn(_ context.Context, mint string, amount uint64, from, authorizer string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if authorizer != from {
		return "", ErrUnauthorizedLedgerAccess
	}
	holders := l.holders(mint)
	if holders[from] < amount {
		return "", ErrInsufficientBalance
	}
	holders[from] -= amount
	return l.signature(), nil
}

// Balance returns the holder's balance for a mint.
func (l *MemoryLedger) Balance(_ context.Context, mint, holder string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.holders(mint)[holder], nil
}

// CreateRecordAccount reserves a record slot once, with a positive size.
func (l *MemoryLedger) CreateRecordAccount(_ context.Context, address string, space int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if space <= 0 {
		return ErrInvalidAccountSpace
	}
	if _, exists := l.accounts[address]; exists {
		return ErrAccountExists
	}
	l.accounts[address] = space
	return nil
}

// RecordSpace reports the reserved size of a record slot, for tests.
func (l *MemoryLedger) RecordSpace(address string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	space, ok := l.accounts[address]
	return space, ok
}
