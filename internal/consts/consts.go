package consts

const (
	// XRP on the EVM sidechain and ETH both use 18-decimal base units.
	XRP_DECIMALS = 18
	ETH_DECIMALS = 18
)
