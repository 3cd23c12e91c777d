package sdk

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testPool = solana.MustPublicKeyFromBase58("Jito4APyf642JPZPx3hGc6WWJ8zPKtRbRs4P815Awbb")
	testVote = solana.MustPublicKeyFromBase58("J1to1yufRnoWn81KYg1XkTWzmKjnYSnmE2VY8DGUJ9Qv")
)

func TestProgramAddresses(t *testing.T) {
	testCases := []struct {
		name     string
		find     func() (solana.PublicKey, uint8, error)
		expected string
		bump     uint8
	}{
		{"withdraw authority", func() (solana.PublicKey, uint8, error) {
			return FindWithdrawAuthority(StakePoolProgramID, testPool)
		}, "6iQKfEyhr3bZMotVkW6beNZz5CPAkiwvgV2CTje9pVSS", 253},
		{"deposit authority", func() (solana.PublicKey, uint8, error) {
			return FindDepositAuthority(StakePoolProgramID, testPool)
		}, "74opVa3v51hUmTrsZn8YusZw4fXB16vGQY4WYHt9UegR", 255},
		{"stake no seed", func() (solana.PublicKey, uint8, error) {
			return FindStakeAddress(StakePoolProgramID, testVote, testPool, 0)
		}, "6PAY8LEswawgCGnzB3tKGJBtELUwDpeMfDCiNpCyNt8q", 255},
		{"stake seed 7", func() (solana.PublicKey, uint8, error) {
			return FindStakeAddress(StakePoolProgramID, testVote, testPool, 7)
		}, "6cnNCnXDwgQLwvRqc7uaHXPwcEm6CbfMppGR9EepnbWK", 255},
		{"transient seed 0", func() (solana.PublicKey, uint8, error) {
			return FindTransientStakeAddress(StakePoolProgramID, testVote, testPool, 0)
		}, "C2AurJCKxp5Q8DbaZ84aiSUiKKazqgRVsUiTiihqNYui", 255},
		{"transient seed 3", func() (solana.PublicKey, uint8, error) {
			return FindTransientStakeAddress(StakePoolProgramID, testVote, testPool, 3)
		}, "HZghkcnPt4h2APaQ89ynv9kdLwNKfo5MTmcg4iRRVums", 250},
		{"ephemeral seed 0", func() (solana.PublicKey, uint8, error) {
			return FindEphemeralStakeAddress(StakePoolProgramID, testPool, 0)
		}, "CPzuFDUuXYManczPNJCpyb8KyVQspimsJUFsx76B2Kv", 254},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, bump, err := tc.find()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, addr.String())
			assert.Equal(t, tc.bump, bump)

			// same inputs, same answer
			again, againBump, err := tc.find()
			require.NoError(t, err)
			assert.True(t, addr.Equals(again))
			assert.Equal(t, bump, againBump)
		})
	}
}

func TestStakeAddressSeedIsSignificant(t *testing.T) {
	noSeed, _, err := FindStakeAddress(StakePoolProgramID, testVote, testPool, 0)
	require.NoError(t, err)
	withSeed, _, err := FindStakeAddress(StakePoolProgramID, testVote, testPool, 1)
	require.NoError(t, err)
	assert.False(t, noSeed.Equals(withSeed))

	otherProgram := solana.MustPublicKeyFromBase58("SPoo1Ku8WFXoNDMHPsrGSTSG1Y47rzgn41SLUNakuHz")
	other, _, err := FindStakeAddress(otherProgram, testVote, testPool, 0)
	require.NoError(t, err)
	assert.False(t, noSeed.Equals(other), "address must depend on the program id")
}
