// Package token carries display metadata for well-known mainnet tokens.
// It is cosmetic only: the resolver never consults it and never adjusts
// prices for decimals.
package token

import "github.com/ethereum/go-ethereum/common"

// Info holds display metadata for a token.
type Info struct {
	Symbol   string
	Decimals int
}

var wellKnown = map[common.Address]Info{
	common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"): {Symbol: "WETH", Decimals: 18},
	common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"): {Symbol: "USDC", Decimals: 6},
	common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"): {Symbol: "USDT", Decimals: 6},
	common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"): {Symbol: "DAI", Decimals: 18},
	common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"): {Symbol: "WBTC", Decimals: 8},
	common.HexToAddress("0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984"): {Symbol: "UNI", Decimals: 18},
	common.HexToAddress("0x514910771AF9Ca656af840dff83E8264EcF986CA"): {Symbol: "LINK", Decimals: 18},
}

// Lookup returns display info for a well-known token address.
func Lookup(addr common.Address) (Info, bool) {
	info, ok := wellKnown[addr]
	return info, ok
}

// SymbolOrAddress returns the token symbol when known, else the short
// hex form of the address.
func SymbolOrAddress(addr common.Address) string {
	if info, ok := wellKnown[addr]; ok {
		return info.Symbol
	}
	return addr.Hex()[:10]
}
