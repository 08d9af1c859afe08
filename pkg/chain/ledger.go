package chain

import (
	"context"
	"errors"
)

// Ledger is the token ledger the vault engine drives. All operations are
// atomic on the ledger side: they either fully apply or fail, and a failure
// must abort the surrounding engine operation.
type Ledger interface {
	// Issue mints amount units of the given mint into the holder account.
	Issue(ctx context.Context, mint string, amount uint64, to string) (string, error)

	// Transfer moves amount units between holder accounts. The authorizer
	// must control the source account.
	Transfer(ctx context.Context, mint string, amount uint64, from, to, authorizer string) (string, error)

	// Burn destroys amount units held by from. The authorizer must control
	// the holder account.
	Burn(ctx context.Context, mint string, amount uint64, from, authorizer string) (string, error)

	// Balance returns the unit balance of a holder for the given mint.
	Balance(ctx context.Context, mint, holder string) (uint64, error)

	// CreateRecordAccount reserves a fixed-size record slot at the given
	// address. The size must match the record layout exactly; the ledger
	// rejects mismatched reservations.
	CreateRecordAccount(ctx context.Context, address string, space int) error
}

var (
	// ErrInsufficientBalance is returned when a transfer or burn exceeds the
	// holder's balance.
	ErrInsufficientBalance = errors.New("payment account insufficient funds")

	// ErrUnauthorizedLedgerAccess is returned when the authorizer does not
	// control the source account.
	ErrUnauthorizedLedgerAccess = errors.New("authorizer does not control source account")

	// ErrAccountExists is returned when a record slot is reserved twice.
	ErrAccountExists = errors.New("record account already exists")

	// ErrInvalidAccountSpace is returned for a non-positive record size.
	ErrInvalidAccountSpace = errors.New("record account space must be positive")
)
