package chain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerIssueAndTransfer(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	sig, err := ledger.Issue(ctx, "mint", 100, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, sig)

	_, err = ledger.Transfer(ctx, "mint", 40, "alice", "bob", "alice")
	require.NoError(t, err)

	aliceBal, err := ledger.Balance(ctx, "mint", "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(60), aliceBal)

	bobBal, err := ledger.Balance(ctx, "mint", "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(40), bobBal)
}

func TestMemoryLedgerTransferFailures(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	_, err := ledger.Issue(ctx, "mint", 10, "alice")
	require.NoError(t, err)

	_, err = ledger.Transfer(ctx, "mint", 11, "alice", "bob", "alice")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = ledger.Transfer(ctx, "mint", 5, "alice", "bob", "mallory")
	assert.ErrorIs(t, err, ErrUnauthorizedLedgerAccess)
}

func TestMemoryLedgerBurn(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	_, err := ledger.Issue(ctx, "mint", 10, "alice")
	require.NoError(t, err)

	_, err = ledger.Burn(ctx, "mint", 10, "alice", "alice")
	require.NoError(t, err)

	bal, err := ledger.Balance(ctx, "mint", "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bal)

	_, err = ledger.Burn(ctx, "mint", 1, "alice", "alice")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestMemoryLedgerRecordAccounts(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	require.NoError(t, ledger.CreateRecordAccount(ctx, "addr", 146))

	space, ok := ledger.RecordSpace("addr")
	assert.True(t, ok)
	assert.Equal(t, 146, space)

	assert.ErrorIs(t, ledger.CreateRecordAccount(ctx, "addr", 146), ErrAccountExists)
	assert.ErrorIs(t, ledger.CreateRecordAccount(ctx, "other", 0), ErrInvalidAccountSpace)
}
