// Package xrpbridge binds the destination-chain bridge contract. The
// custodial relayer calls bridgeFromXrp(user) with the bridged amount as
// transaction value.
package xrpbridge

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const XrpBridgeABI = `[
	{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"bridgeFromXrp","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"internalType":"address","name":"user","type":"address"}],"name":"bridgedBalanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"user","type":"address"},{"indexed":false,"internalType":"uint256","name":"amount","type":"uint256"}],"name":"BridgedFromXrp","type":"event"}
]`

func ParsedABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(XrpBridgeABI))
}

func MustParsedABI() abi.ABI {
	parsed, err := ParsedABI()
	if err != nil {
		panic(err)
	}
	return parsed
}

// PackBridgeFromXrp builds the calldata for the destination credit call.
func PackBridgeFromXrp(user common.Address) ([]byte, error) {
	parsed, err := ParsedABI()
	if err != nil {
		return nil, err
	}
	return parsed.Pack("bridgeFromXrp", user)
}
