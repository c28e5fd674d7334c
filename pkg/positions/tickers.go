package positions

// Yahoo Finance ticker suffixes by IBKR listing exchange.
var exchangeSuffix = map[string]string{
	"SEHK":   ".HK",
	"SGX":    ".SI",
	"LSEETF": ".L",
	"LSE":    ".L",
	"AEB":    ".AS",
	"IBIS":   ".DE",
	"IBIS2":  ".DE",
	"SBF":    ".PA",
	"EBS":    ".SW",
}

// YahooTicker converts an IBKR symbol and listing exchange into the
// ticker Yahoo Finance expects. 82846 reports without a usable
// exchange code, so it is pinned to .HK directly.
func YahooTicker(symbol, listingExchange string) string {
	if symbol == "82846" {
		return "82846.HK"
	}
	if suffix, ok := exchangeSuffix[listingExchange]; ok {
		return symbol + suffix
	}
	return symbol
}
