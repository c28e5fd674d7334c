package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"signalscan/pkg/indicators"
	"signalscan/pkg/marketdata"
	"signalscan/pkg/positions"
	"signalscan/pkg/risk"
	"signalscan/pkg/telegram"
)

const (
	HISTORY_DAYS    = 252
	MIN_HISTORY     = 60
	MONTE_CARLO_N   = 10000
	CONFIDENCE_HIGH = 0.99
	CONFIDENCE_BASE = 0.95
	REQUEST_DELAY   = 500 * time.Millisecond
	SNAPSHOT_PATH   = "positions.csv"
	RESULTS_DIR     = "results"
	TOP_RISKY       = 3
)

type PositionRisk struct {
	Ticker   string  `json:"ticker"`
	Category string  `json:"category"`
	ValueUSD float64 `json:"value_usd"`
	Weight   float64 `json:"weight"`
	VaR95    float64 `json:"var_95_usd"`
	CVaR95   float64 `json:"cvar_95_usd"`
}

type RiskReport struct {
	RunID          string         `json:"run_id"`
	GeneratedAt    time.Time      `json:"generated_at"`
	PortfolioValue float64        `json:"portfolio_value_usd"`
	Historical95   risk.Estimate  `json:"historical_95"`
	Historical99   risk.Estimate  `json:"historical_99"`
	Parametric95   risk.Estimate  `json:"parametric_95"`
	Parametric99   risk.Estimate  `json:"parametric_99"`
	MonteCarlo95   risk.Estimate  `json:"monte_carlo_95"`
	MonteCarlo99   risk.Estimate  `json:"monte_carlo_99"`
	Positions      []PositionRisk `json:"positions"`
}

func main() {
	godotenv.Load()

	holdings, err := positions.ReadSnapshot(SNAPSHOT_PATH)
	if err != nil {
		log.Fatalf("Error reading positions snapshot: %v", err)
	}
	fmt.Printf("Loaded %d holdings from %s\n", len(holdings), SNAPSHOT_PATH)

	client := marketdata.NewClient()

	// Fetch return history per holding, dropping anything too thin to
	// estimate from.
	var kept []positions.Holding
	var assetReturns [][]float64
	minLen := HISTORY_DAYS
	for _, h := range holdings {
		candles, err := client.GetDailyHistory(h.YahooTicker, HISTORY_DAYS+10)
		if err != nil {
			fmt.Printf("  %s: %v (excluded)\n", h.YahooTicker, err)
			time.Sleep(REQUEST_DELAY)
			continue
		}
		returns := indicators.Returns(marketdata.Closes(candles))
		if len(returns) < MIN_HISTORY {
			fmt.Printf("  %s: only %d returns (excluded)\n", h.YahooTicker, len(returns))
			time.Sleep(REQUEST_DELAY)
			continue
		}
		if len(returns) < minLen {
			minLen = len(returns)
		}
		kept = append(kept, h)
		assetReturns = append(assetReturns, returns)
		time.Sleep(REQUEST_DELAY)
	}
	if len(kept) == 0 {
		log.Fatal("No holdings with usable price history")
	}

	// Align all series to the shortest.
	for i := range assetReturns {
		assetReturns[i] = assetReturns[i][len(assetReturns[i])-minLen:]
	}

	weights := positions.Weights(kept)
	totalValue, _ := positions.TotalValue(kept).Float64()
	portReturns := risk.PortfolioReturns(assetReturns, weights)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	report := RiskReport{
		RunID:          uuid.New().String(),
		GeneratedAt:    time.Now().UTC(),
		PortfolioValue: totalValue,
		Historical95:   risk.Historical(portReturns, CONFIDENCE_BASE),
		Historical99:   risk.Historical(portReturns, CONFIDENCE_HIGH),
		Parametric95:   risk.Parametric(portReturns, CONFIDENCE_BASE),
		Parametric99:   risk.Parametric(portReturns, CONFIDENCE_HIGH),
		MonteCarlo95:   risk.MonteCarlo(assetReturns, weights, CONFIDENCE_BASE, MONTE_CARLO_N, rng),
		MonteCarlo99:   risk.MonteCarlo(assetReturns, weights, CONFIDENCE_HIGH, MONTE_CARLO_N, rng),
	}

	for i, h := range kept {
		est := risk.Historical(assetReturns[i], CONFIDENCE_BASE)
		value, _ := h.ValueUSD.Float64()
		report.Positions = append(report.Positions, PositionRisk{
			Ticker:   h.YahooTicker,
			Category: h.Category,
			ValueUSD: value,
			Weight:   weights[i],
			VaR95:    est.VaR * value,
			CVaR95:   est.CVaR * value,
		})
	}
	sort.Slice(report.Positions, func(i, j int) bool {
		return report.Positions[i].CVaR95 > report.Positions[j].CVaR95
	})

	saveReport(report)

	message := formatMessage(report)
	fmt.Println(message)

	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	sender, err := telegram.NewSender(logger)
	if err != nil {
		fmt.Printf("Telegram not configured: %v\n", err)
		return
	}
	if err := sender.Send(message); err != nil {
		fmt.Printf("Error sending report: %v\n", err)
	}
}

func formatMessage(r RiskReport) string {
	message := "🛡 PORTFOLIO RISK REPORT\n\n"
	message += fmt.Sprintf("Portfolio value: $%.0f\n\n", r.PortfolioValue)
	message += "1-Day VaR (95% / 99%):\n"
	message += fmt.Sprintf("  Historical:  $%.0f / $%.0f\n",
		r.Historical95.VaR*r.PortfolioValue, r.Historical99.VaR*r.PortfolioValue)
	message += fmt.Sprintf("  Parametric:  $%.0f / $%.0f\n",
		r.Parametric95.VaR*r.PortfolioValue, r.Parametric99.VaR*r.PortfolioValue)
	message += fmt.Sprintf("  Monte Carlo: $%.0f / $%.0f\n\n",
		r.MonteCarlo95.VaR*r.PortfolioValue, r.MonteCarlo99.VaR*r.PortfolioValue)
	message += "1-Day CVaR (95% / 99%):\n"
	message += fmt.Sprintf("  Historical:  $%.0f / $%.0f\n",
		r.Historical95.CVaR*r.PortfolioValue, r.Historical99.CVaR*r.PortfolioValue)
	message += fmt.Sprintf("  Monte Carlo: $%.0f / $%.0f\n\n",
		r.MonteCarlo95.CVaR*r.PortfolioValue, r.MonteCarlo99.CVaR*r.PortfolioValue)

	message += "⚠️ Riskiest positions (95% CVaR):\n"
	count := len(r.Positions)
	if count > TOP_RISKY {
		count = TOP_RISKY
	}
	for _, p := range r.Positions[:count] {
		message += fmt.Sprintf("  %s (%s): $%.0f at risk on $%.0f (%.1f%%)\n",
			p.Ticker, p.Category, p.CVaR95, p.ValueUSD, p.Weight*100)
	}
	return message
}

func saveReport(report RiskReport) {
	if err := os.MkdirAll(RESULTS_DIR, 0755); err != nil {
		fmt.Printf("Error creating results dir: %v\n", err)
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		fmt.Printf("Error marshaling report: %v\n", err)
		return
	}
	path := filepath.Join(RESULTS_DIR, fmt.Sprintf("risk_%s.json", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, pretty.Pretty(data), 0644); err != nil {
		fmt.Printf("Error saving report: %v\n", err)
		return
	}
	fmt.Printf("Report saved to %s\n", path)
}
