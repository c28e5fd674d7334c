package main

import (
	"encoding/json"
	"fmt"
	"log"
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
	"signalscan/pkg/watchlist"
)

const (
	HISTORY_DAYS      = 60
	SMA_PERIOD        = 20
	VOLUME_AVG_PERIOD = 20
	BENCHMARK         = "SPY"
	MIN_RS_BREAKOUT   = 2.0 // percent vs SPY over the momentum window
	MOMENTUM_DAYS     = 5
	COVER_FRACTION    = 0.35 // share of the short base assumed to cover
	MAX_SCORE         = 18
	MAX_ALERTS        = 8
	REQUEST_DELAY     = 750 * time.Millisecond
	RESULTS_DIR       = "results"
)

// Squeeze stages, most advanced first.
const (
	STAGE_ACTIVE   = "ACTIVE SQUEEZE"
	STAGE_STARTING = "SQUEEZE STARTING"
	STAGE_BREAKOUT = "PRE-SQUEEZE BREAKOUT"
	STAGE_FORMING  = "SETUP FORMING"
)

type SqueezeSignal struct {
	Ticker        string           `json:"ticker"`
	Price         float64          `json:"price"`
	ShortPctFloat float64          `json:"short_pct_float"`
	DaysToCover   float64          `json:"days_to_cover"`
	CoveringDays  float64          `json:"covering_days"`
	VolumeRatio   float64          `json:"volume_ratio"`
	Momentum5D    float64          `json:"momentum_5d"`
	Change1D      float64          `json:"change_1d"`
	Stage         string           `json:"stage"`
	Score         int              `json:"score"`
	Level         string           `json:"level"`
	Details       []scoring.Detail `json:"details"`
}

type ScanResult struct {
	RunID     string          `json:"run_id"`
	ScannedAt time.Time       `json:"scanned_at"`
	Tickers   int             `json:"tickers_scanned"`
	Signals   []SqueezeSignal `json:"signals"`
}

func main() {
	godotenv.Load()

	cfg, err := settings.Load(settings.DefaultPath)
	if err != nil {
		log.Fatalf("Error loading settings: %v", err)
	}

	tickers := watchlist.Load(watchlist.DefaultPath, false)
	fmt.Printf("Scanning %d tickers for short squeeze setups...\n", len(tickers))

	client := marketdata.NewClient()
	cutoffs := scoring.Cutoffs{
		Medium:  cfg.ShortSqueeze.MediumScore,
		High:    cfg.ShortSqueeze.HighScore,
		Extreme: cfg.ShortSqueeze.ExtremeScore,
	}

	benchmark, err := client.GetDailyHistory(BENCHMARK, HISTORY_DAYS)
	if err != nil {
		log.Fatalf("Error fetching benchmark %s: %v", BENCHMARK, err)
	}
	benchCloses := marketdata.Closes(benchmark)

	var signals []SqueezeSignal
	for _, ticker := range tickers {
		signal, err := scanTicker(client, ticker, benchCloses, cfg, cutoffs)
		if err != nil {
			fmt.Printf("  %s: %v\n", ticker, err)
			time.Sleep(REQUEST_DELAY)
			continue
		}
		if signal != nil {
			fmt.Printf("  %s %s score %d/%d (SI %.1f%%, DTC %.1f)\n",
				signal.Level, signal.Ticker, signal.Score, MAX_SCORE,
				signal.ShortPctFloat, signal.DaysToCover)
			signals = append(signals, *signal)
		}
		time.Sleep(REQUEST_DELAY)
	}

	sort.Slice(signals, func(i, j int) bool {
		return signals[i].Score > signals[j].Score
	})

	saveResults(signals, len(tickers))

	if len(signals) == 0 {
		fmt.Println("No squeeze candidates today.")
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

func scanTicker(client *marketdata.Client, ticker string, benchCloses []float64, cfg settings.Settings, cutoffs scoring.Cutoffs) (*SqueezeSignal, error) {
	stats, err := client.GetKeyStats(ticker)
	if err != nil {
		return nil, err
	}
	if stats.ShortPercentOfFloat <= 0 {
		return nil, nil
	}

	candles, err := client.GetDailyHistory(ticker, HISTORY_DAYS)
	if err != nil {
		return nil, err
	}
	if len(candles) < SMA_PERIOD+MOMENTUM_DAYS {
		return nil, fmt.Errorf("only %d candles", len(candles))
	}

	closes := marketdata.Closes(candles)
	volumes := marketdata.Volumes(candles)
	price := closes[len(closes)-1]

	avgVolume := indicators.SMA(volumes[:len(volumes)-1], VOLUME_AVG_PERIOD)
	volumeRatio := 0.0
	if avgVolume > 0 {
		volumeRatio = volumes[len(volumes)-1] / avgVolume
	}

	momentum5d := indicators.PercentChange(closes[len(closes)-1-MOMENTUM_DAYS], price)
	change1d := indicators.PercentChange(closes[len(closes)-2], price)

	sma := indicators.SMA(closes, SMA_PERIOD)
	rs := 0.0
	if len(benchCloses) > MOMENTUM_DAYS {
		rs = indicators.RelativeStrength(
			closes[len(closes)-MOMENTUM_DAYS-1:],
			benchCloses[len(benchCloses)-MOMENTUM_DAYS-1:],
		)
	}
	breakout := price > sma && rs >= MIN_RS_BREAKOUT

	card := scoring.Card{Ticker: ticker}

	si := stats.ShortPercentOfFloat
	switch {
	case si >= 50:
		card.Add(5, fmt.Sprintf("extreme short interest %.1f%% of float", si))
	case si >= 30:
		card.Add(3, fmt.Sprintf("very high short interest %.1f%% of float", si))
	case si >= 15:
		card.Add(2, fmt.Sprintf("high short interest %.1f%% of float", si))
	}

	card.AddIf(stats.ShortRatio >= 2, 2, fmt.Sprintf("days to cover %.1f", stats.ShortRatio))
	card.AddIf(stats.ShortRatio >= 5, 2, "shorts badly trapped")

	if volumeRatio >= 5 {
		card.Add(3, fmt.Sprintf("volume surge %.1fx average", volumeRatio))
	} else if volumeRatio >= 2 {
		card.Add(2, fmt.Sprintf("elevated volume %.1fx average", volumeRatio))
	}

	card.AddIf(momentum5d >= 10, 2, fmt.Sprintf("up %.1f%% in 5 days", momentum5d))
	card.AddIf(change1d >= 5, 1, fmt.Sprintf("up %.1f%% today", change1d))
	card.AddIf(breakout, 2, "breakout above 20-day average with relative strength")

	if card.Points < cfg.ShortSqueeze.AlertScore {
		return nil, nil
	}

	return &SqueezeSignal{
		Ticker:        ticker,
		Price:         price,
		ShortPctFloat: si,
		DaysToCover:   stats.ShortRatio,
		CoveringDays:  coveringDays(stats.SharesShort, avgVolume),
		VolumeRatio:   volumeRatio,
		Momentum5D:    momentum5d,
		Change1D:      change1d,
		Stage:         classifyStage(momentum5d, change1d, volumeRatio, breakout),
		Score:         card.Points,
		Level:         cutoffs.Classify(card.Points),
		Details:       card.Details,
	}, nil
}

func classifyStage(momentum5d, change1d, volumeRatio float64, breakout bool) string {
	switch {
	case volumeRatio >= 5 && change1d >= 5:
		return STAGE_ACTIVE
	case volumeRatio >= 2 && momentum5d >= 10:
		return STAGE_STARTING
	case breakout:
		return STAGE_BREAKOUT
	default:
		return STAGE_FORMING
	}
}

// coveringDays estimates how many sessions of average volume it would
// take the covering fraction of the short base to buy back.
func coveringDays(sharesShort int64, avgVolume float64) float64 {
	if avgVolume <= 0 {
		return 0
	}
	return float64(sharesShort) * COVER_FRACTION / avgVolume
}

func formatMessage(signals []SqueezeSignal) string {
	message := "🩳 SHORT SQUEEZE SCANNER\n\n"
	count := len(signals)
	if count > MAX_ALERTS {
		count = MAX_ALERTS
	}
	for _, s := range signals[:count] {
		emoji := "🟡"
		switch s.Level {
		case scoring.TierHigh:
			emoji = "🔴"
		case scoring.TierExtreme:
			emoji = "🚨"
		}
		message += fmt.Sprintf("%s %s  $%.2f  [%s %d/%d]\n", emoji, s.Ticker, s.Price, s.Level, s.Score, MAX_SCORE)
		message += fmt.Sprintf("   Stage: %s\n", s.Stage)
		message += fmt.Sprintf("   SI %.1f%% | DTC %.1f | Cover %.1fd | Vol %.1fx | 5d %+.1f%%\n\n",
			s.ShortPctFloat, s.DaysToCover, s.CoveringDays, s.VolumeRatio, s.Momentum5D)
	}
	if len(signals) > MAX_ALERTS {
		message += fmt.Sprintf("...and %d more\n", len(signals)-MAX_ALERTS)
	}
	return message
}

func saveResults(signals []SqueezeSignal, scanned int) {
	result := ScanResult{
		RunID:     uuid.New().String(),
		ScannedAt: time.Now().UTC(),
		Tickers:   scanned,
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

	path := filepath.Join(RESULTS_DIR, fmt.Sprintf("shortsqueeze_%s.json", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, pretty.Pretty(data), 0644); err != nil {
		fmt.Printf("Error saving results: %v\n", err)
		return
	}
	fmt.Printf("Results saved to %s\n", path)
}
