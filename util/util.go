package util

import (
	"errors"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/hellodex/cexbridge/config"
)

func IsDebug() bool {
	return os.Getenv("DEBUG") == "true" || config.YmlConfig.Env.Debug == "true"
}

var NativeSol = "11111111111111111111111111111111"
var NativeEvm = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
var ZeroEvm = "0x0000000000000000000000000000000000000000"

// IsNativeCoin reports whether addr is one of the conventional
// native-asset sentinels (or empty, which means the same thing).
func IsNativeCoin(addr string) bool {
	switch strings.ToLower(addr) {
	case "", NativeSol, NativeEvm, ZeroEvm:
		return true
	default:
		return false
	}
}

// CheckValidAddress accepts EVM hex and Solana base58 addresses.
func CheckValidAddress(address string) (isSolana bool, err error) {
	if len(address) < 32 {
		if common.IsHexAddress(address) {
			return false, nil
		}
		return false, errors.New("address too short")
	}

	_, err = solana.PublicKeyFromBase58(address)
	if err == nil {
		return true, nil
	}

	if common.IsHexAddress(address) {
		return false, nil
	}

	return false, errors.New("unrecognized address format")
}

func GetChainScanUrl(chain string, hash string) string {
	var baseUrl string

	switch strings.ToUpper(chain) {
	case "SOLANA":
		baseUrl = "https://solscan.io/tx/"
	case "BSC":
		baseUrl = "https://bscscan.com/tx/"
	case "ETH", "ETHEREUM":
		baseUrl = "https://etherscan.io/tx/"
	case "POLYGON":
		baseUrl = "https://polygonscan.com/tx/"
	case "TRON":
		baseUrl = "https://tronscan.org/#/transaction/"
	default:
		return ""
	}

	return baseUrl + hash
}
