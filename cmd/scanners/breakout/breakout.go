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
	"signalscan/pkg/settings"
	"signalscan/pkg/telegram"
	"signalscan/pkg/watchlist"
)

const (
	HISTORY_DAYS      = 260 // trading year plus slack
	RECENT_WINDOW     = 5   // days in which the closing high must have printed
	VOLUME_AVG_PERIOD = 20
	RS_LOOKBACK_DAYS  = 20
	BENCHMARK         = "SPY"
	REQUEST_DELAY     = 500 * time.Millisecond
	MAX_ALERTS        = 10
	RESULTS_DIR       = "results"
)

type BreakoutSignal struct {
	Ticker       string  `json:"ticker"`
	Price        float64 `json:"price"`
	High52W      float64 `json:"high_52w"`
	DistancePct  float64 `json:"distance_pct"`
	VolumeRatio  float64 `json:"volume_ratio"`
	RSvsSPY      float64 `json:"rs_vs_spy"`
	BreakoutDate string  `json:"breakout_date"`
}

type ScanResult struct {
	RunID     string           `json:"run_id"`
	ScannedAt time.Time        `json:"scanned_at"`
	Tickers   int              `json:"tickers_scanned"`
	Signals   []BreakoutSignal `json:"signals"`
}

func main() {
	godotenv.Load()

	cfg, err := settings.Load(settings.DefaultPath)
	if err != nil {
		log.Fatalf("Error loading settings: %v", err)
	}

	tickers := watchlist.Load(watchlist.DefaultPath, true)
	fmt.Printf("Scanning %d tickers for 52-week high breakouts...\n", len(tickers))

	client := marketdata.NewClient()

	benchmark, err := client.GetDailyHistory(BENCHMARK, HISTORY_DAYS)
	if err != nil {
		log.Fatalf("Error fetching benchmark %s: %v", BENCHMARK, err)
	}
	benchCloses := marketdata.Closes(benchmark)

	var signals []BreakoutSignal
	for _, ticker := range tickers {
		signal, err := scanTicker(client, ticker, benchCloses, cfg)
		if err != nil {
			fmt.Printf("  %s: %v\n", ticker, err)
			time.Sleep(REQUEST_DELAY)
			continue
		}
		if signal != nil {
			fmt.Printf("  BREAKOUT %s at %.2f (%.1fx volume, RS %+.1f%%)\n",
				signal.Ticker, signal.Price, signal.VolumeRatio, signal.RSvsSPY)
			signals = append(signals, *signal)
		}
		time.Sleep(REQUEST_DELAY)
	}

	sort.Slice(signals, func(i, j int) bool {
		return signals[i].RSvsSPY > signals[j].RSvsSPY
	})

	saveResults(signals, len(tickers))

	if len(signals) == 0 {
		fmt.Println("No breakouts today.")
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

func scanTicker(client *marketdata.Client, ticker string, benchCloses []float64, cfg settings.Settings) (*BreakoutSignal, error) {
	candles, err := client.GetDailyHistory(ticker, HISTORY_DAYS)
	if err != nil {
		return nil, err
	}
	return evaluateBreakout(ticker, candles, benchCloses, cfg)
}

// evaluateBreakout returns a signal when the ticker closed at a new
// 52-week closing high in the recent window on elevated volume. The
// high is taken from closes, so intraday wicks through the level do
// not count. nil means no setup.
func evaluateBreakout(ticker string, candles []marketdata.Candle, benchCloses []float64, cfg settings.Settings) (*BreakoutSignal, error) {
	if len(candles) < VOLUME_AVG_PERIOD+RECENT_WINDOW {
		return nil, fmt.Errorf("only %d candles", len(candles))
	}

	closes := marketdata.Closes(candles)
	high52w := indicators.Max(closes)
	if high52w == 0 {
		return nil, fmt.Errorf("no closes")
	}

	// Find the most recent day that closed at the high on volume.
	var breakoutDay *marketdata.Candle
	volumeRatio := 0.0
	for i := len(candles) - 1; i >= len(candles)-RECENT_WINDOW && i >= VOLUME_AVG_PERIOD; i-- {
		day := candles[i]
		distance := (high52w - day.Close) / high52w * 100
		if distance > cfg.Breakout.ProximityPct {
			continue
		}

		var avgVolume float64
		for _, prior := range candles[i-VOLUME_AVG_PERIOD : i] {
			avgVolume += float64(prior.Volume)
		}
		avgVolume /= VOLUME_AVG_PERIOD
		if avgVolume == 0 || float64(day.Volume) < cfg.Breakout.VolumeMultiple*avgVolume {
			continue
		}

		breakoutDay = &candles[i]
		volumeRatio = float64(day.Volume) / avgVolume
		break
	}
	if breakoutDay == nil {
		return nil, nil
	}

	rs := relativeStrength(closes, benchCloses, RS_LOOKBACK_DAYS)
	if cfg.Breakout.MinRSvsSPY != nil && rs < *cfg.Breakout.MinRSvsSPY {
		return nil, nil
	}

	last := candles[len(candles)-1]
	return &BreakoutSignal{
		Ticker:       ticker,
		Price:        last.Close,
		High52W:      high52w,
		DistancePct:  (high52w - last.Close) / high52w * 100,
		VolumeRatio:  volumeRatio,
		RSvsSPY:      rs,
		BreakoutDate: breakoutDay.Date.Format("2006-01-02"),
	}, nil
}

func relativeStrength(closes, benchCloses []float64, lookback int) float64 {
	if len(closes) <= lookback || len(benchCloses) <= lookback {
		return 0
	}
	return indicators.RelativeStrength(
		closes[len(closes)-lookback:],
		benchCloses[len(benchCloses)-lookback:],
	)
}

func formatMessage(signals []BreakoutSignal) string {
	message := "🚀 52-WEEK HIGH BREAKOUTS\n\n"
	count := len(signals)
	if count > MAX_ALERTS {
		count = MAX_ALERTS
	}
	for _, s := range signals[:count] {
		message += fmt.Sprintf("📈 %s  $%.2f\n", s.Ticker, s.Price)
		message += fmt.Sprintf("   Volume: %.1fx avg | RS vs SPY: %+.1f%%\n", s.VolumeRatio, s.RSvsSPY)
		message += fmt.Sprintf("   Broke out: %s\n\n", s.BreakoutDate)
	}
	if len(signals) > MAX_ALERTS {
		message += fmt.Sprintf("...and %d more\n", len(signals)-MAX_ALERTS)
	}
	return message
}

func saveResults(signals []BreakoutSignal, scanned int) {
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

	path := filepath.Join(RESULTS_DIR, fmt.Sprintf("breakout_%s.json", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, pretty.Pretty(data), 0644); err != nil {
		fmt.Printf("Error saving results: %v\n", err)
		return
	}
	fmt.Printf("Results saved to %s\n", path)
}
