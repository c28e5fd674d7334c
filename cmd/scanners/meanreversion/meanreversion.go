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
	HISTORY_DAYS  = 60
	SMA_PERIOD    = 20
	RSI_PERIOD    = 14
	BB_PERIOD     = 20
	BB_STDDEV     = 2.0
	MAX_SCORE     = 12
	REQUEST_DELAY = 500 * time.Millisecond
	RESULTS_DIR   = "results"
)

type ReversionSignal struct {
	Ticker      string           `json:"ticker"`
	Price       float64          `json:"price"`
	ZScore      float64          `json:"z_score"`
	RSI         float64          `json:"rsi"`
	SMA20       float64          `json:"sma_20"`
	LowerBand   float64          `json:"lower_band"`
	BandWidth   float64          `json:"band_width_pct"`
	VolumeRatio float64          `json:"volume_ratio"`
	Score       int              `json:"score"`
	Level       string           `json:"level"`
	Details     []scoring.Detail `json:"details"`
}

type ScanResult struct {
	RunID     string            `json:"run_id"`
	ScannedAt time.Time         `json:"scanned_at"`
	Tickers   int               `json:"tickers_scanned"`
	Signals   []ReversionSignal `json:"signals"`
}

func main() {
	godotenv.Load()

	cfg, err := settings.Load(settings.DefaultPath)
	if err != nil {
		log.Fatalf("Error loading settings: %v", err)
	}

	tickers := watchlist.Load(watchlist.DefaultPath, false)
	fmt.Printf("Scanning %d tickers for oversold mean-reversion setups...\n", len(tickers))

	client := marketdata.NewClient()
	cutoffs := scoring.Cutoffs{
		Medium: cfg.MeanReversion.MediumScore,
		High:   cfg.MeanReversion.HighScore,
	}

	var signals []ReversionSignal
	for _, ticker := range tickers {
		signal, err := scanTicker(client, ticker, cfg, cutoffs)
		if err != nil {
			fmt.Printf("  %s: %v\n", ticker, err)
			time.Sleep(REQUEST_DELAY)
			continue
		}
		if signal != nil {
			fmt.Printf("  %s %s score %d/%d (z=%.2f RSI=%.0f)\n",
				signal.Level, signal.Ticker, signal.Score, MAX_SCORE, signal.ZScore, signal.RSI)
			signals = append(signals, *signal)
		}
		time.Sleep(REQUEST_DELAY)
	}

	sort.Slice(signals, func(i, j int) bool {
		return signals[i].Score > signals[j].Score
	})

	saveResults(signals, len(tickers))

	if len(signals) == 0 {
		fmt.Println("No mean-reversion setups today.")
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

func scanTicker(client *marketdata.Client, ticker string, cfg settings.Settings, cutoffs scoring.Cutoffs) (*ReversionSignal, error) {
	candles, err := client.GetDailyHistory(ticker, HISTORY_DAYS)
	if err != nil {
		return nil, err
	}
	if len(candles) < BB_PERIOD+1 {
		return nil, fmt.Errorf("only %d candles", len(candles))
	}

	closes := marketdata.Closes(candles)
	volumes := marketdata.Volumes(candles)
	price := closes[len(closes)-1]

	z := indicators.ZScore(closes, SMA_PERIOD)
	rsi := indicators.RSI(closes, RSI_PERIOD)
	sma := indicators.SMA(closes, SMA_PERIOD)
	_, _, lower, width := indicators.Bollinger(closes, BB_PERIOD, BB_STDDEV)

	avgVolume := indicators.SMA(volumes[:len(volumes)-1], SMA_PERIOD)
	volumeRatio := 0.0
	if avgVolume > 0 {
		volumeRatio = volumes[len(volumes)-1] / avgVolume
	}

	card := scoring.Card{Ticker: ticker}
	card.AddIf(z <= cfg.MeanReversion.EntryZScore, 3, fmt.Sprintf("z-score %.2f", z))
	card.AddIf(rsi <= 30, 2, fmt.Sprintf("RSI oversold at %.0f", rsi))
	card.AddIf(price < sma, 2, "trading below 20-day mean")
	card.AddIf(volumeRatio >= 2, 2, fmt.Sprintf("volume %.1fx average", volumeRatio))
	card.AddIf(lower > 0 && price <= lower*1.02, 2, "at lower Bollinger band")
	card.AddIf(width > 0 && width <= 0.05, 1, "band squeeze")

	if card.Points < cfg.MeanReversion.AlertScore {
		return nil, nil
	}

	return &ReversionSignal{
		Ticker:      ticker,
		Price:       price,
		ZScore:      z,
		RSI:         rsi,
		SMA20:       sma,
		LowerBand:   lower,
		BandWidth:   width * 100,
		VolumeRatio: volumeRatio,
		Score:       card.Points,
		Level:       cutoffs.Classify(card.Points),
		Details:     card.Details,
	}, nil
}

func formatMessage(signals []ReversionSignal) string {
	message := "🔄 MEAN REVERSION WATCH\n\n"
	for _, s := range signals {
		emoji := "🟡"
		if s.Level == scoring.TierHigh {
			emoji = "🔴"
		}
		message += fmt.Sprintf("%s %s  $%.2f  [%s %d/%d]\n", emoji, s.Ticker, s.Price, s.Level, s.Score, MAX_SCORE)
		message += fmt.Sprintf("   z=%.2f | RSI %.0f | %.1fx volume\n", s.ZScore, s.RSI, s.VolumeRatio)
		for _, d := range s.Details {
			message += fmt.Sprintf("   • %s\n", d.Reason)
		}
		message += "\n"
	}
	return message
}

func saveResults(signals []ReversionSignal, scanned int) {
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

	path := filepath.Join(RESULTS_DIR, fmt.Sprintf("meanreversion_%s.json", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, pretty.Pretty(data), 0644); err != nil {
		fmt.Printf("Error saving results: %v\n", err)
		return
	}
	fmt.Printf("Results saved to %s\n", path)
}
