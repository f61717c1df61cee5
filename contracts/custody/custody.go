// Package custody binds the XRP custody contract on the source chain.
// Users call deposit() themselves; this service only reads the per-user
// ledger through deposits(address).
package custody

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const CustodyABI = `[
	{"inputs":[],"name":"deposit","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"deposits","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"address","name":"user","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"}],"name":"initiateTransfer","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"user","type":"address"},{"indexed":false,"internalType":"uint256","name":"amount","type":"uint256"}],"name":"TransferInitiated","type":"event"}
]`

// ParsedABI returns the parsed custody contract ABI. The JSON above is a
// constant, so a parse failure is a programming error.
func ParsedABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(CustodyABI))
}

// MustParsedABI panics on parse failure; intended for wiring code.
func MustParsedABI() abi.ABI {
	parsed, err := ParsedABI()
	if err != nil {
		panic(err)
	}
	return parsed
}
