package chain

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMint = "So11111111111111111111111111111111111111112"

func TestDeriveVaultAuthority(t *testing.T) {
	authority, err := DeriveVaultAuthority(testMint)
	require.NoError(t, err)
	assert.False(t, authority.Address.IsZero())

	// Derivation is deterministic.
	again, err := DeriveVaultAuthority(testMint)
	require.NoError(t, err)
	assert.Equal(t, authority.Address, again.Address)
	assert.Equal(t, authority.Bump, again.Bump)

	// A different mint yields a different authority.
	other, err := DeriveVaultAuthority(solana.NewWallet().PublicKey().String())
	require.NoError(t, err)
	assert.NotEqual(t, authority.Address, other.Address)

	_, err = DeriveVaultAuthority("not-a-mint")
	assert.Error(t, err)
}

func TestVaultAuthoritySeeds(t *testing.T) {
	authority, err := DeriveVaultAuthority(testMint)
	require.NoError(t, err)

	seeds := authority.Seeds()
	require.Len(t, seeds, 3)
	assert.Equal(t, []byte("vault"), seeds[0])
	assert.Equal(t, []byte{authority.Bump}, seeds[2])

	// The seeds plus bump reproduce the derived address exactly.
	program, err := ProgramID()
	require.NoError(t, err)
	addr, err := solana.CreateProgramAddress(seeds, program)
	require.NoError(t, err)
	assert.Equal(t, authority.Address, addr)
}

func TestDerivedAddressesAreDistinct(t *testing.T) {
	user := solana.NewWallet().PublicKey().String()

	kycAddr, _, err := DeriveKycAddress(user)
	require.NoError(t, err)
	simpleAddr, _, err := DeriveSimpleKycAddress(user)
	require.NoError(t, err)
	assert.NotEqual(t, kycAddr, simpleAddr)

	mintAddr, _, err := DeriveFractionalMint(testMint)
	require.NoError(t, err)
	authority, err := DeriveVaultAuthority(testMint)
	require.NoError(t, err)
	assert.NotEqual(t, mintAddr, authority.Address)

	platformAddr, _, err := DerivePlatformConfigAddress()
	require.NoError(t, err)
	assert.False(t, platformAddr.IsZero())
}
