package news

import (
	"regexp"
	"strings"
)

// Impact scores by headline class.
const (
	IMPACT_CRITICAL = 100
	IMPACT_HIGH     = 75
	IMPACT_MEDIUM   = 50
	IMPACT_NORMAL   = 30
	IMPACT_LOW      = 10
	IMPACT_FLUFF    = 0
)

var fluffPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+\s+(stocks?|things?|reasons?)\s+to\s+(buy|watch|know)`),
	regexp.MustCompile(`(?i)here'?s\s+(what|why|how)`),
	regexp.MustCompile(`(?i)(motley\s+fool|zacks)`),
	regexp.MustCompile(`(?i)should\s+you\s+buy`),
	regexp.MustCompile(`(?i)best\s+(stocks?|etfs?)\s+(for|of|to)`),
	regexp.MustCompile(`(?i)if\s+you'?d\s+invested`),
}

var criticalKeywords = []string{
	"earnings beat",
	"earnings miss",
	"merger",
	"acquisition",
	"fda approval",
	"bankruptcy",
	"sec investigation",
	"ceo resign",
	"guidance cut",
	"guidance raised",
}

var highKeywords = []string{
	"federal reserve",
	"rate cut",
	"rate hike",
	"inflation",
	"cpi",
	"tariff",
	"jobs report",
	"recession",
	"stimulus",
}

var mediumKeywords = []string{
	"analyst upgrade",
	"analyst downgrade",
	"price target",
	"buyback",
	"dividend",
	"insider buying",
	"short interest",
}

var lowKeywords = []string{
	"could",
	"might",
	"opinion",
	"prediction",
	"expect",
}

// ScoreImpact rates a headline 0-100. Fluff listicles score 0 no
// matter what keywords they contain.
func ScoreImpact(title string) int {
	lower := strings.ToLower(title)

	for _, p := range fluffPatterns {
		if p.MatchString(title) {
			return IMPACT_FLUFF
		}
	}
	for _, k := range criticalKeywords {
		if strings.Contains(lower, k) {
			return IMPACT_CRITICAL
		}
	}
	for _, k := range highKeywords {
		if strings.Contains(lower, k) {
			return IMPACT_HIGH
		}
	}
	for _, k := range mediumKeywords {
		if strings.Contains(lower, k) {
			return IMPACT_MEDIUM
		}
	}
	for _, k := range lowKeywords {
		if strings.Contains(lower, k) {
			return IMPACT_LOW
		}
	}
	return IMPACT_NORMAL
}

// ImpactLevel names a score bucket for display.
func ImpactLevel(score int) string {
	switch {
	case score >= IMPACT_CRITICAL:
		return "CRITICAL"
	case score >= IMPACT_HIGH:
		return "HIGH"
	case score >= IMPACT_MEDIUM:
		return "MEDIUM"
	case score > IMPACT_LOW:
		return "NORMAL"
	case score > IMPACT_FLUFF:
		return "LOW"
	default:
		return "FLUFF"
	}
}

var tickerPattern = regexp.MustCompile(`\(([A-Z]{1,5})\)|\$([A-Z]{1,5})\b`)

// Words that match the ticker shape but never are one.
var tickerStopwords = map[string]bool{
	"A": true, "I": true, "CEO": true, "CFO": true, "IPO": true,
	"ETF": true, "AI": true, "US": true, "USA": true, "GDP": true,
	"CPI": true, "FED": true, "SEC": true, "FDA": true, "NYSE": true,
}

// ExtractTickers pulls ticker symbols written as (TSLA) or $TSLA out
// of a headline.
func ExtractTickers(title string) []string {
	var tickers []string
	seen := map[string]bool{}
	for _, match := range tickerPattern.FindAllStringSubmatch(title, -1) {
		symbol := match[1]
		if symbol == "" {
			symbol = match[2]
		}
		if symbol == "" || tickerStopwords[symbol] || seen[symbol] {
			continue
		}
		seen[symbol] = true
		tickers = append(tickers, symbol)
	}
	return tickers
}

// Annotate fills the impact fields on each article.
func Annotate(articles []Article) {
	for i := range articles {
		articles[i].Impact = ScoreImpact(articles[i].Title)
		articles[i].Level = ImpactLevel(articles[i].Impact)
		articles[i].Tickers = ExtractTickers(articles[i].Title)
	}
}
