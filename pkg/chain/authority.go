package chain

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// Domain separators for derived addresses. These mirror the on-chain program
// seeds and must never change once vaults exist.
const (
	vaultSeed          = "vault"
	fractionalMintSeed = "fractional_mint"
	kycSeed            = "kyc"
	simpleKycSeed      = "simple_kyc"
	platformConfigSeed = "platform_config"
)

// defaultProgramID is the vault program this service drives.
const defaultProgramID = "Guhyo3fAg6Qys962ngVbsidvzEWsBiGmZ3XYMyo73MfE"

// ProgramID returns the configured vault program address.
func ProgramID() (solana.PublicKey, error) {
	id := os.Getenv("VAULT_PROGRAM_ID")
	if id == "" {
		id = defaultProgramID
	}
	pk, err := solana.PublicKeyFromBase58(id)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid vault program id %q: %w", id, err)
	}
	return pk, nil
}

// VaultAuthority is the custody capability for one vault: the address derived
// from the vault seed and the asset mint, with no externally held signing
// secret. It is created once at fractionalization and handed only to the
// vault engine for authorizing ledger calls on vault-held assets.
type VaultAuthority struct {
	Address solana.PublicKey
	Bump    uint8

	assetMint solana.PublicKey
}

// Seeds returns the signing seeds for the authority, including the bump.
func (a VaultAuthority) Seeds() [][]byte {
	return [][]byte{[]byte(vaultSeed), a.assetMint.Bytes(), {a.Bump}}
}

// DeriveVaultAuthority derives the custody authority for an asset mint.
func DeriveVaultAuthority(assetMint string) (VaultAuthority, error) {
	mint, err := solana.PublicKeyFromBase58(assetMint)
	if err != nil {
		return VaultAuthority{}, fmt.Errorf("invalid asset mint %q: %w", assetMint, err)
	}
	program, err := ProgramID()
	if err != nil {
		return VaultAuthority{}, err
	}
	addr, bump, err := solana.FindProgramAddress(
		[][]byte{[]byte(vaultSeed), mint.Bytes()},
		program,
	)
	if err != nil {
		return VaultAuthority{}, fmt.Errorf("failed to derive vault authority: %w", err)
	}
	return VaultAuthority{Address: addr, Bump: bump, assetMint: mint}, nil
}

// DeriveFractionalMint derives the fractional token mint address for an asset.
func DeriveFractionalMint(assetMint string) (solana.PublicKey, uint8, error) {
	mint, err := solana.PublicKeyFromBase58(assetMint)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("invalid asset mint %q: %w", assetMint, err)
	}
	program, err := ProgramID()
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	return solana.FindProgramAddress(
		[][]byte{[]byte(fractionalMintSeed), mint.Bytes()},
		program,
	)
}

// DeriveKycAddress derives the enhanced KYC record address for a user.
func DeriveKycAddress(user string) (solana.PublicKey, uint8, error) {
	return deriveUserAddress(kycSeed, user)
}

// DeriveSimpleKycAddress derives the simple KYC record address for a user.
func DeriveSimpleKycAddress(user string) (solana.PublicKey, uint8, error) {
	return deriveUserAddress(simpleKycSeed, user)
}

// DerivePlatformConfigAddress derives the singleton platform config address.
func DerivePlatformConfigAddress() (solana.PublicKey, uint8, error) {
	program, err := ProgramID()
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	return solana.FindProgramAddress([][]byte{[]byte(platformConfigSeed)}, program)
}

func deriveUserAddress(seed, user string) (solana.PublicKey, uint8, error) {
	pk, err := solana.PublicKeyFromBase58(user)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("invalid user address %q: %w", user, err)
	}
	program, err := ProgramID()
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	return solana.FindProgramAddress([][]byte{[]byte(seed), pk.Bytes()}, program)
}
