package chain

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
)

// SplLedger drives SPL token operations on Solana. The platform fee payer
// signs and funds every transaction; vault custody accounts are controlled by
// the derived vault authority on-chain.
type SplLedger struct {
	rpcClient *rpc.Client
	feePayer  solana.PrivateKey
}

// NewSplLedger creates a ledger client against the configured RPC endpoint.
func NewSplLedger(feePayer solana.PrivateKey) (*SplLedger, error) {
	endpoint := os.Getenv("DEFAULT_SOLANA_RPC")
	if endpoint == "" {
		return nil, fmt.Errorf("Solana RPC endpoint not configured")
	}
	return &SplLedger{
		rpcClient: rpc.New(endpoint),
		feePayer:  feePayer,
	}, nil
}

// Issue mints amount units of the given mint into the holder's associated
// token account. The fee payer must hold mint authority.
func (l *SplLedger) Issue(ctx context.Context, mint string, amount uint64, to string) (string, error) {
	mintPk, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return "", fmt.Errorf("invalid mint %q: %w", mint, err)
	}
	toPk, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return "", fmt.Errorf("invalid destination %q: %w", to, err)
	}
	dest, _, err := solana.FindAssociatedTokenAddress(toPk, mintPk)
	if err != nil {
		return "", fmt.Errorf("failed to derive destination token account: %w", err)
	}

	ix := token.NewMintToInstruction(
		amount,
		mintPk,
		dest,
		l.feePayer.PublicKey(),
		nil,
	).Build()

	return l.submit(ctx, []solana.Instruction{ix})
}

// Transfer moves amount units between holder accounts, authorized by the
// given authority.
func (l *SplLedger) Transfer(ctx context.Context, mint string, amount uint64, from, to, authorizer string) (string, error) {
	mintPk, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return "", fmt.Errorf("invalid mint %q: %w", mint, err)
	}
	fromPk, err := solana.PublicKeyFromBase58(from)
	if err != nil {
		return "", fmt.Errorf("invalid source %q: %w", from, err)
	}
	toPk, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return "", fmt.Errorf("invalid destination %q: %w", to, err)
	}
	authPk, err := solana.PublicKeyFromBase58(authorizer)
	if err != nil {
		return "", fmt.Errorf("invalid authorizer %q: %w", authorizer, err)
	}

	source, _, err := solana.FindAssociatedTokenAddress(fromPk, mintPk)
	if err != nil {
		return "", fmt.Errorf("failed to derive source token account: %w", err)
	}
	dest, _, err := solana.FindAssociatedTokenAddress(toPk, mintPk)
	if err != nil {
		return "", fmt.Errorf("failed to derive destination token account: %w", err)
	}

	ix := token.NewTransferInstruction(
		amount,
		source,
		dest,
		authPk,
		nil,
	).Build()

	return l.submit(ctx, []solana.Instruction{ix})
}

// Burn destroys amount units held by from.
func (l *SplLedger) Burn(ctx context.Context, mint string, amount uint64, from, authorizer string) (string, error) {
	mintPk, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return "", fmt.Errorf("invalid mint %q: %w", mint, err)
	}
	fromPk, err := solana.PublicKeyFromBase58(from)
	if err != nil {
		return "", fmt.Errorf("invalid holder %q: %w", from, err)
	}
	authPk, err := solana.PublicKeyFromBase58(authorizer)
	if err != nil {
		return "", fmt.Errorf("invalid authorizer %q: %w", authorizer, err)
	}

	source, _, err := solana.FindAssociatedTokenAddress(fromPk, mintPk)
	if err != nil {
		return "", fmt.Errorf("failed to derive holder token account: %w", err)
	}

	ix := token.NewBurnInstruction(
		amount,
		source,
		mintPk,
		authPk,
		nil,
	).Build()

	return l.submit(ctx, []solana.Instruction{ix})
}

// Balance returns the holder's token balance for a mint.
func (l *SplLedger) Balance(ctx context.Context, mint, holder string) (uint64, error) {
	mintPk, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return 0, fmt.Errorf("invalid mint %q: %w", mint, err)
	}
	holderPk, err := solana.PublicKeyFromBase58(holder)
	if err != nil {
		return 0, fmt.Errorf("invalid holder %q: %w", holder, err)
	}
	account, _, err := solana.FindAssociatedTokenAddress(holderPk, mintPk)
	if err != nil {
		return 0, fmt.Errorf("failed to derive holder token account: %w", err)
	}

	result, err := l.rpcClient.GetTokenAccountBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get token account balance: %w", err)
	}
	balance, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token balance %q: %w", result.Value.Amount, err)
	}
	return balance, nil
}

// CreateRecordAccount reserves a fixed-size record slot at the given derived
// address using create-with-seed, funded with the exact rent for that size.
// If the declared size does not match the record layout the on-chain program
// rejects the record on first write.
func (l *SplLedger) CreateRecordAccount(ctx context.Context, address string, space int) error {
	if space <= 0 {
		return ErrInvalidAccountSpace
	}
	program, err := ProgramID()
	if err != nil {
		return err
	}

	// Seed the derived slot off the record address so re-creation collides.
	seed := address
	if len(seed) > 32 {
		seed = seed[:32]
	}
	created, err := solana.CreateWithSeed(l.feePayer.PublicKey(), seed, program)
	if err != nil {
		return fmt.Errorf("failed to derive record account: %w", err)
	}

	lamports, err := l.rpcClient.GetMinimumBalanceForRentExemption(ctx, uint64(space), rpc.CommitmentConfirmed)
	if err != nil {
		return fmt.Errorf("failed to compute rent exemption: %w", err)
	}

	ix := system.NewCreateAccountWithSeedInstruction(
		l.feePayer.PublicKey(),
		seed,
		lamports,
		uint64(space),
		program,
		l.feePayer.PublicKey(),
		created,
		l.feePayer.PublicKey(),
	).Build()

	sig, err := l.submit(ctx, []solana.Instruction{ix})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"address": created.String(),
		"space":   space,
		"tx":      sig,
	}).Info("Record account created")
	return nil
}

// submit signs a transaction with the fee payer and sends it.
func (l *SplLedger) submit(ctx context.Context, instructions []solana.Instruction) (string, error) {
	recent, err := l.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(l.feePayer.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(l.feePayer.PublicKey()) {
			return &l.feePayer
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := l.rpcClient.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig.String(), nil
}
