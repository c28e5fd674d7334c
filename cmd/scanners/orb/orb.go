package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"signalscan/pkg/settings"
	"signalscan/pkg/telegram"
	"signalscan/pkg/watchlist"
)

const (
	MARKET_OPEN_HOUR     = 9
	MARKET_OPEN_MIN      = 30
	TARGET_MULTIPLE      = 2.0
	VOLUME_CONFIRM_RATIO = 1.5 // breakout bar vs average opening-range bar
	REQUEST_DELAY        = 350 * time.Millisecond
	RESULTS_DIR          = "results"
)

type ORBSignal struct {
	Ticker      string  `json:"ticker"`
	Direction   string  `json:"direction"`
	RangeHigh   float64 `json:"range_high"`
	RangeLow    float64 `json:"range_low"`
	RangePct    float64 `json:"range_pct"`
	Price       float64 `json:"price"`
	VolumeRatio float64 `json:"volume_ratio"`
	Target      float64 `json:"target"`
	Stop        float64 `json:"stop"`
}

type ScanResult struct {
	RunID     string      `json:"run_id"`
	ScannedAt time.Time   `json:"scanned_at"`
	Tickers   int         `json:"tickers_scanned"`
	Signals   []ORBSignal `json:"signals"`
}

func main() {
	godotenv.Load()

	apiKey := os.Getenv("ALPACA_API_KEY")
	apiSecret := os.Getenv("ALPACA_SECRET_KEY")
	if apiKey == "" || apiSecret == "" {
		log.Fatal("ALPACA_API_KEY or ALPACA_SECRET_KEY not set")
	}

	cfg, err := settings.Load(settings.DefaultPath)
	if err != nil {
		log.Fatalf("Error loading settings: %v", err)
	}

	mdClient := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	eastern, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Fatalf("Error loading timezone: %v", err)
	}

	now := time.Now().In(eastern)
	open := time.Date(now.Year(), now.Month(), now.Day(), MARKET_OPEN_HOUR, MARKET_OPEN_MIN, 0, 0, eastern)
	rangeEnd := open.Add(time.Duration(cfg.ORB.RangeMinutes) * time.Minute)
	if now.Before(rangeEnd) {
		log.Fatalf("Opening range not complete until %s", rangeEnd.Format("15:04"))
	}

	tickers := watchlist.Load(watchlist.DefaultPath, false)
	fmt.Printf("Checking %d tickers for opening range breakouts...\n", len(tickers))

	var signals []ORBSignal
	for _, ticker := range tickers {
		signal, err := scanTicker(mdClient, ticker, open, rangeEnd, now, cfg)
		if err != nil {
			fmt.Printf("  %s: %v\n", ticker, err)
			time.Sleep(REQUEST_DELAY)
			continue
		}
		if signal != nil {
			fmt.Printf("  %s %s at %.2f (range %.2f-%.2f, target %.2f)\n",
				signal.Direction, signal.Ticker, signal.Price,
				signal.RangeLow, signal.RangeHigh, signal.Target)
			signals = append(signals, *signal)
		}
		time.Sleep(REQUEST_DELAY)
	}

	saveResults(signals, len(tickers))

	if len(signals) == 0 {
		fmt.Println("No range breakouts right now.")
		return
	}

	message := formatMessage(signals, cfg.ORB.RangeMinutes)
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

func scanTicker(mdClient *marketdata.Client, ticker string, open, rangeEnd, now time.Time, cfg settings.Settings) (*ORBSignal, error) {
	bars, err := mdClient.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneMin,
		Start:     open,
		End:       now,
	})
	if err != nil {
		return nil, err
	}
	return evaluateBars(ticker, bars, rangeEnd, cfg)
}

// evaluateBars builds the opening range from minute bars and reports a
// breakout when price has extended beyond it on elevated volume. The
// breakout bar must trade heavier than the average opening-range bar,
// otherwise the move is treated as drift and skipped.
func evaluateBars(ticker string, bars []marketdata.Bar, rangeEnd time.Time, cfg settings.Settings) (*ORBSignal, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars")
	}

	rangeHigh, rangeLow := 0.0, 0.0
	rangeBars := 0
	var rangeVolume uint64
	for _, bar := range bars {
		if !bar.Timestamp.Before(rangeEnd) {
			break
		}
		if rangeHigh == 0 || bar.High > rangeHigh {
			rangeHigh = bar.High
		}
		if rangeLow == 0 || bar.Low < rangeLow {
			rangeLow = bar.Low
		}
		rangeVolume += bar.Volume
		rangeBars++
	}
	if rangeHigh == 0 || rangeLow == 0 {
		return nil, fmt.Errorf("no opening range bars")
	}

	rangeSize := rangeHigh - rangeLow
	rangePct := rangeSize / rangeLow * 100
	if rangePct < cfg.ORB.MinRangePct {
		return nil, nil
	}

	avgBarVolume := float64(rangeVolume) / float64(rangeBars)
	if avgBarVolume == 0 {
		return nil, nil
	}
	last := bars[len(bars)-1]
	volumeRatio := float64(last.Volume) / avgBarVolume
	if volumeRatio < VOLUME_CONFIRM_RATIO {
		return nil, nil
	}

	price := last.Close
	extension := cfg.ORB.BreakoutPct / 100

	switch {
	case price >= rangeHigh*(1+extension):
		return &ORBSignal{
			Ticker:      ticker,
			Direction:   "LONG",
			RangeHigh:   rangeHigh,
			RangeLow:    rangeLow,
			RangePct:    rangePct,
			Price:       price,
			VolumeRatio: volumeRatio,
			Target:      rangeHigh + TARGET_MULTIPLE*rangeSize,
			Stop:        rangeLow,
		}, nil
	case price <= rangeLow*(1-extension):
		return &ORBSignal{
			Ticker:      ticker,
			Direction:   "SHORT",
			RangeHigh:   rangeHigh,
			RangeLow:    rangeLow,
			RangePct:    rangePct,
			Price:       price,
			VolumeRatio: volumeRatio,
			Target:      rangeLow - TARGET_MULTIPLE*rangeSize,
			Stop:        rangeHigh,
		}, nil
	}
	return nil, nil
}

func formatMessage(signals []ORBSignal, rangeMinutes int) string {
	message := fmt.Sprintf("⏰ %d-MIN OPENING RANGE BREAKOUTS\n\n", rangeMinutes)
	for _, s := range signals {
		emoji := "🟢"
		if s.Direction == "SHORT" {
			emoji = "🔻"
		}
		message += fmt.Sprintf("%s %s %s  $%.2f\n", emoji, s.Direction, s.Ticker, s.Price)
		message += fmt.Sprintf("   Range %.2f-%.2f (%.1f%%) | Vol %.1fx\n", s.RangeLow, s.RangeHigh, s.RangePct, s.VolumeRatio)
		message += fmt.Sprintf("   Target %.2f | Stop %.2f\n\n", s.Target, s.Stop)
	}
	return message
}

func saveResults(signals []ORBSignal, scanned int) {
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
	path := filepath.Join(RESULTS_DIR, fmt.Sprintf("orb_%s.json", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, pretty.Pretty(data), 0644); err != nil {
		fmt.Printf("Error saving results: %v\n", err)
		return
	}
	fmt.Printf("Results saved to %s\n", path)
}
