package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
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
	"signalscan/pkg/scoring"
	"signalscan/pkg/settings"
	"signalscan/pkg/telegram"
)

const (
	MIN_PRICE        = 20.0
	MAX_COINT_PVALUE = 0.05
	MIN_HALF_LIFE    = 5.0
	MAX_HALF_LIFE    = 30.0
	MIN_OBSERVATIONS = 40
	REQUEST_DELAY    = 500 * time.Millisecond
	RESULTS_DIR      = "results"
)

// Candidate groups of economically linked tickers. Every pair within a
// group is tested for cointegration.
var pairGroups = map[string][]string{
	"mega_tech":    {"MSFT", "AAPL", "GOOGL"},
	"semis":        {"NVDA", "AMD", "AVGO"},
	"banks":        {"JPM", "BAC", "WFC"},
	"payments":     {"V", "MA"},
	"energy":       {"XOM", "CVX", "COP"},
	"big_box":      {"WMT", "TGT", "COST"},
	"index_etfs":   {"SPY", "IVV", "VOO"},
	"gold":         {"GLD", "IAU"},
	"homebuilders": {"DHI", "LEN", "PHM"},
	"credit_cards": {"AXP", "COF", "DFS"},
}

type PairSignal struct {
	Group       string           `json:"group"`
	Leg1        string           `json:"leg1"`
	Leg2        string           `json:"leg2"`
	HedgeRatio  float64          `json:"hedge_ratio"`
	Correlation float64          `json:"correlation"`
	CointPValue float64          `json:"coint_pvalue"`
	HalfLife    float64          `json:"half_life_days"`
	ZScore      float64          `json:"z_score"`
	SpreadCV    float64          `json:"spread_cv"`
	Direction   string           `json:"direction"`
	Shares1     int              `json:"shares1"`
	Shares2     int              `json:"shares2"`
	Score       int              `json:"score"`
	Level       string           `json:"level"`
	Details     []scoring.Detail `json:"details"`
}

type ScanResult struct {
	RunID     string       `json:"run_id"`
	ScannedAt time.Time    `json:"scanned_at"`
	Pairs     int          `json:"pairs_tested"`
	Signals   []PairSignal `json:"signals"`
}

func main() {
	godotenv.Load()

	cfg, err := settings.Load(settings.DefaultPath)
	if err != nil {
		log.Fatalf("Error loading settings: %v", err)
	}

	client := marketdata.NewClient()

	// Fetch each group member once, then test all pairs within the
	// group against the cached series.
	fmt.Println("Fetching price history for pair groups...")
	histories := map[string][]float64{}
	prices := map[string]float64{}
	for _, members := range pairGroups {
		for _, ticker := range members {
			if _, ok := histories[ticker]; ok {
				continue
			}
			candles, err := client.GetDailyHistory(ticker, cfg.Pairs.LookbackDays+10)
			if err != nil {
				fmt.Printf("  %s: %v\n", ticker, err)
				time.Sleep(REQUEST_DELAY)
				continue
			}
			closes := marketdata.Closes(candles)
			if len(closes) > cfg.Pairs.LookbackDays {
				closes = closes[len(closes)-cfg.Pairs.LookbackDays:]
			}
			histories[ticker] = closes
			prices[ticker] = closes[len(closes)-1]
			time.Sleep(REQUEST_DELAY)
		}
	}

	var signals []PairSignal
	tested := 0
	for group, members := range pairGroups {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				leg1, leg2 := members[i], members[j]
				p1, p2 := histories[leg1], histories[leg2]
				if p1 == nil || p2 == nil {
					continue
				}
				tested++
				signal := testPair(group, leg1, leg2, p1, p2, prices, cfg)
				if signal != nil {
					fmt.Printf("  %s %s/%s z=%.2f p=%.3f HL=%.1fd score %d\n",
						signal.Level, leg1, leg2, signal.ZScore, signal.CointPValue,
						signal.HalfLife, signal.Score)
					signals = append(signals, *signal)
				}
			}
		}
	}
	fmt.Printf("Tested %d pairs.\n", tested)

	sort.Slice(signals, func(i, j int) bool {
		return signals[i].Score > signals[j].Score
	})

	saveResults(signals, tested)

	if len(signals) == 0 {
		fmt.Println("No tradeable pair divergences today.")
		return
	}

	message := formatMessage(signals)
	fmt.Println(message)

	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	sender, err := telegram.NewSender(logger)
	if err != nil {
		fmt.Printf("Telegram not configured: %v\n", err)
		return
	}
	if err := sender.Send(message); err != nil {
		fmt.Printf("Error sending alert: %v\n", err)
	}
}

// testPair returns a signal when the pair is cointegrated, mean
// reverts on a tradeable horizon and the spread has diverged far
// enough to enter.
func testPair(group, leg1, leg2 string, p1, p2 []float64, prices map[string]float64, cfg settings.Settings) *PairSignal {
	n := len(p1)
	if len(p2) < n {
		n = len(p2)
	}
	if n < MIN_OBSERVATIONS {
		return nil
	}
	p1, p2 = p1[len(p1)-n:], p2[len(p2)-n:]

	if prices[leg1] < MIN_PRICE || prices[leg2] < MIN_PRICE {
		return nil
	}

	_, pvalue := indicators.Cointegration(p1, p2)
	if pvalue > MAX_COINT_PVALUE {
		return nil
	}

	beta := indicators.HedgeRatio(p1, p2)
	spread := indicators.Spread(p1, p2, beta)

	halfLife, ok := indicators.HalfLife(spread)
	if !ok || halfLife < MIN_HALF_LIFE || halfLife > MAX_HALF_LIFE {
		return nil
	}

	mean := indicators.Mean(spread)
	std := indicators.StdDev(spread)
	if std == 0 {
		return nil
	}
	z := (spread[len(spread)-1] - mean) / std

	absZ := math.Abs(z)
	if absZ < cfg.Pairs.EntryZScore || absZ >= cfg.Pairs.StopZScore {
		return nil
	}

	correlation := indicators.Correlation(
		indicators.Returns(p1), indicators.Returns(p2))

	spreadCV := 0.0
	if mean != 0 {
		spreadCV = math.Abs(std / mean)
	}

	card := scoring.Card{Ticker: leg1 + "/" + leg2}
	switch {
	case pvalue <= 0.01:
		card.Add(4, fmt.Sprintf("cointegration p=%.3f", pvalue))
	case pvalue <= 0.03:
		card.Add(3, fmt.Sprintf("cointegration p=%.3f", pvalue))
	default:
		card.Add(2, fmt.Sprintf("cointegration p=%.3f", pvalue))
	}
	switch {
	case absZ >= 3:
		card.Add(4, fmt.Sprintf("spread stretched %.1f sigma", absZ))
	case absZ >= 2.5:
		card.Add(3, fmt.Sprintf("spread stretched %.1f sigma", absZ))
	default:
		card.Add(2, fmt.Sprintf("spread stretched %.1f sigma", absZ))
	}
	switch {
	case halfLife <= 10:
		card.Add(3, fmt.Sprintf("half-life %.1f days", halfLife))
	case halfLife <= 20:
		card.Add(2, fmt.Sprintf("half-life %.1f days", halfLife))
	default:
		card.Add(1, fmt.Sprintf("half-life %.1f days", halfLife))
	}
	if correlation >= 0.7 {
		card.Add(3, fmt.Sprintf("return correlation %.2f", correlation))
	} else if correlation >= 0.5 {
		card.Add(2, fmt.Sprintf("return correlation %.2f", correlation))
	}
	card.AddIf(spreadCV > 0 && spreadCV <= 0.3, 2, "stable spread")

	if card.Points < 10 {
		return nil
	}
	level := scoring.TierMedium
	if card.Points >= 14 {
		level = scoring.TierHigh
	}

	// Positive z: leg1 rich relative to leg2.
	direction := fmt.Sprintf("SHORT %s / LONG %s", leg1, leg2)
	if z < 0 {
		direction = fmt.Sprintf("LONG %s / SHORT %s", leg1, leg2)
	}

	return &PairSignal{
		Group:       group,
		Leg1:        leg1,
		Leg2:        leg2,
		HedgeRatio:  beta,
		Correlation: correlation,
		CointPValue: pvalue,
		HalfLife:    halfLife,
		ZScore:      z,
		SpreadCV:    spreadCV,
		Direction:   direction,
		Shares1:     int(cfg.Pairs.DollarPerLeg / prices[leg1]),
		Shares2:     int(cfg.Pairs.DollarPerLeg / prices[leg2]),
		Score:       card.Points,
		Level:       level,
		Details:     card.Details,
	}
}

func formatMessage(signals []PairSignal) string {
	message := "⚖️ PAIRS TRADING SIGNALS\n\n"
	for _, s := range signals {
		emoji := "🟡"
		if s.Level == scoring.TierHigh {
			emoji = "🔴"
		}
		message += fmt.Sprintf("%s %s (%s)  [%s %d]\n", emoji, s.Direction, s.Group, s.Level, s.Score)
		message += fmt.Sprintf("   z=%.2f | p=%.3f | HL %.1fd | corr %.2f\n",
			s.ZScore, s.CointPValue, s.HalfLife, s.Correlation)
		message += fmt.Sprintf("   Size: %d %s / %d %s (hedge %.2f)\n\n",
			s.Shares1, s.Leg1, s.Shares2, s.Leg2, s.HedgeRatio)
	}
	return message
}

func saveResults(signals []PairSignal, tested int) {
	result := ScanResult{
		RunID:     uuid.New().String(),
		ScannedAt: time.Now().UTC(),
		Pairs:     tested,
		Signals:   signals,
	}

	if err := os.MkdirAll(RESULTS_DIR, 0755); err != nil {
		fmt.Printf("Error creating results dir: %v\n", err)
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		fmt.Printf("Error marshaling results: %v\n", err)
		return
	}

	path := filepath.Join(RESULTS_DIR, fmt.Sprintf("pairs_%s.json", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, pretty.Pretty(data), 0644); err != nil {
		fmt.Printf("Error saving results: %v\n", err)
		return
	}
	fmt.Printf("Results saved to %s\n", path)
}
