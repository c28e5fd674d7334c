package positions

// Portfolio buckets used for grouped reporting. Symbols are Yahoo
// tickers after exchange suffix mapping.
var Categories = map[string][]string{
	"global_triads": {"SPY", "QQQ", "VWRA.L", "3010.HK", "82846.HK"},
	"four_horsemen": {"MSFT", "AAPL", "GOOGL", "AMZN"},
	"cash_cow":      {"SCHD", "VYM", "O"},
	"alpha":         {"NVDA", "TSLA", "PLTR", "CRWD"},
	"omega":         {"BRK-B", "JPM", "V"},
	"vault":         {"GLD", "IAU", "SGLN.L"},
	"war_chest":     {"BIL", "SGOV"},
}

// CategoryFor returns the bucket a ticker belongs to, or "uncategorized".
func CategoryFor(ticker string) string {
	for name, members := range Categories {
		for _, m := range members {
			if m == ticker {
				return name
			}
		}
	}
	return "uncategorized"
}
