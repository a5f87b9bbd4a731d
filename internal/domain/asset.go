package domain

// Asset describes a token the proxy can move through the wallet provider.
type Asset struct {
	// Symbol is the label shown to users (BCN, USDC)
	Symbol string
	// Address is the token contract address on the provider's chain
	Address string
	// Decimals is the on-chain scale used when converting to base units
	Decimals int32
	// Precision is the number of decimal places accepted from clients
	Precision int32
}

const (
	SymbolBCN  = "BCN"
	SymbolUSDC = "USDC"

	// USDCDecimals is the micro-unit scale of USDC style tokens (1 USDC = 10^6 units)
	USDCDecimals int32 = 6
)

func NewBCN(address string) Asset {
	return Asset{Symbol: SymbolBCN, Address: address, Decimals: 18, Precision: 0}
}

func NewUSDC(address string) Asset {
	return Asset{Symbol: SymbolUSDC, Address: address, Decimals: USDCDecimals, Precision: 2}
}
