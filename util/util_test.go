package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNativeCoin(t *testing.T) {
	assert.True(t, IsNativeCoin(""))
	assert.True(t, IsNativeCoin(NativeSol))
	assert.True(t, IsNativeCoin(NativeEvm))
	assert.True(t, IsNativeCoin("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"))
	assert.True(t, IsNativeCoin(ZeroEvm))

	assert.False(t, IsNativeCoin("0xdAC17F958D2ee523a2206206994597C13D831ec7"))
	assert.False(t, IsNativeCoin("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"))
}

func TestCheckValidAddress(t *testing.T) {
	isSolana, err := CheckValidAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	assert.NoError(t, err)
	assert.False(t, isSolana)

	isSolana, err = CheckValidAddress("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	assert.NoError(t, err)
	assert.True(t, isSolana)

	_, err = CheckValidAddress("nope")
	assert.Error(t, err)

	_, err = CheckValidAddress("this-is-long-enough-but-not-base58-or-hex!!")
	assert.Error(t, err)
}

func TestGetChainScanUrl(t *testing.T) {
	assert.Equal(t, "https://etherscan.io/tx/0xabc", GetChainScanUrl("ethereum", "0xabc"))
	assert.Equal(t, "https://etherscan.io/tx/0xabc", GetChainScanUrl("ETH", "0xabc"))
	assert.Equal(t, "https://bscscan.com/tx/0xabc", GetChainScanUrl("bsc", "0xabc"))
	assert.Equal(t, "https://polygonscan.com/tx/0xabc", GetChainScanUrl("polygon", "0xabc"))
	assert.Equal(t, "https://solscan.io/tx/sig", GetChainScanUrl("solana", "sig"))
	assert.Equal(t, "https://tronscan.org/#/transaction/abc", GetChainScanUrl("tron", "abc"))
	assert.Empty(t, GetChainScanUrl("near", "abc"))
}
