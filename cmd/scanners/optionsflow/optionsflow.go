package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"signalscan/pkg/marketdata"
	"signalscan/pkg/options"
	"signalscan/pkg/telegram"
	"signalscan/pkg/watchlist"
)

const (
	MIN_VOLUME        = 1000
	MIN_VOL_OI_RATIO  = 5.0
	HIGH_IV           = 0.50
	HIGH_IV_RANK      = 0.60
	EXTREME_CP_RATIO  = 3.0
	MIN_ABS_DELTA     = 0.20
	MIN_PREMIUM       = 0.50
	MAX_PER_SYMBOL    = 2
	RISK_FREE_RATE    = 0.05
	REQUEST_DELAY     = 750 * time.Millisecond
	RESULTS_DIR       = "results"
)

type FlowAlert struct {
	Ticker     string         `json:"ticker"`
	Contract   string         `json:"contract"`
	Type       string         `json:"type"`
	Strike     float64        `json:"strike"`
	Premium    float64        `json:"premium"`
	Volume     int64          `json:"volume"`
	OpenInt    int64          `json:"open_interest"`
	VolOIRatio float64        `json:"vol_oi_ratio"`
	IV         float64        `json:"iv"`
	IVRank     float64        `json:"iv_rank"`
	Greeks     options.Greeks `json:"greeks"`
	Reasons    []string       `json:"reasons"`
}

type SymbolDigest struct {
	Ticker    string      `json:"ticker"`
	Spot      float64     `json:"spot"`
	CallVol   int64       `json:"call_volume"`
	PutVol    int64       `json:"put_volume"`
	CPRatio   float64     `json:"call_put_ratio"`
	Sentiment string      `json:"sentiment"`
	Alerts    []FlowAlert `json:"alerts"`
}

type ScanResult struct {
	RunID     string         `json:"run_id"`
	ScannedAt time.Time      `json:"scanned_at"`
	Tickers   int            `json:"tickers_scanned"`
	Digests   []SymbolDigest `json:"digests"`
}

func main() {
	godotenv.Load()

	tickers := watchlist.Load(watchlist.DefaultPath, false)
	fmt.Printf("Scanning option chains for %d tickers...\n", len(tickers))

	client := marketdata.NewClient()

	var digests []SymbolDigest
	for _, ticker := range tickers {
		digest, err := scanChain(client, ticker)
		if err != nil {
			fmt.Printf("  %s: %v\n", ticker, err)
			time.Sleep(REQUEST_DELAY)
			continue
		}
		if digest != nil {
			fmt.Printf("  %s: %d unusual contracts, C/P %.2f (%s)\n",
				ticker, len(digest.Alerts), digest.CPRatio, digest.Sentiment)
			digests = append(digests, *digest)
		}
		time.Sleep(REQUEST_DELAY)
	}

	saveResults(digests, len(tickers))

	if len(digests) == 0 {
		fmt.Println("No unusual options activity today.")
		return
	}

	message := formatMessage(digests)
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

// scanChain flags contracts with volume far ahead of open interest or
// rich implied vol, then keeps the top two per symbol.
func scanChain(client *marketdata.Client, ticker string) (*SymbolDigest, error) {
	chain, err := client.GetOptionChain(ticker)
	if err != nil {
		return nil, err
	}
	if chain.SpotPrice <= 0 {
		return nil, fmt.Errorf("no spot price")
	}

	tYears := time.Until(chain.Expiration).Hours() / 24 / 365
	if tYears <= 0 {
		tYears = 1.0 / 365
	}

	var allIVs []float64
	for _, c := range chain.Calls {
		if c.ImpliedVolatility > 0 {
			allIVs = append(allIVs, c.ImpliedVolatility)
		}
	}
	for _, p := range chain.Puts {
		if p.ImpliedVolatility > 0 {
			allIVs = append(allIVs, p.ImpliedVolatility)
		}
	}

	var callVol, putVol int64
	var alerts []FlowAlert
	for _, c := range chain.Calls {
		callVol += c.Volume
		if alert := checkContract(c, "CALL", chain.SpotPrice, tYears, allIVs); alert != nil {
			alert.Ticker = ticker
			alerts = append(alerts, *alert)
		}
	}
	for _, p := range chain.Puts {
		putVol += p.Volume
		if alert := checkContract(p, "PUT", chain.SpotPrice, tYears, allIVs); alert != nil {
			alert.Ticker = ticker
			alerts = append(alerts, *alert)
		}
	}

	cpRatio := 0.0
	if putVol > 0 {
		cpRatio = float64(callVol) / float64(putVol)
	}
	sentiment := "NEUTRAL"
	if cpRatio >= EXTREME_CP_RATIO {
		sentiment = "AGGRESSIVELY BULLISH"
	} else if cpRatio > 0 && cpRatio <= 1/EXTREME_CP_RATIO {
		sentiment = "AGGRESSIVELY BEARISH"
	}

	if len(alerts) == 0 && sentiment == "NEUTRAL" {
		return nil, nil
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].VolOIRatio > alerts[j].VolOIRatio
	})
	if len(alerts) > MAX_PER_SYMBOL {
		alerts = alerts[:MAX_PER_SYMBOL]
	}

	return &SymbolDigest{
		Ticker:    ticker,
		Spot:      chain.SpotPrice,
		CallVol:   callVol,
		PutVol:    putVol,
		CPRatio:   cpRatio,
		Sentiment: sentiment,
		Alerts:    alerts,
	}, nil
}

func checkContract(c marketdata.Contract, kind string, spot, tYears float64, allIVs []float64) *FlowAlert {
	if c.Volume < MIN_VOLUME || c.LastPrice < MIN_PREMIUM {
		return nil
	}

	greeks := options.ComputeGreeks(spot, c.Strike, tYears, RISK_FREE_RATE, c.ImpliedVolatility, kind == "CALL")
	if math.Abs(greeks.Delta) < MIN_ABS_DELTA {
		return nil
	}

	volOI := 0.0
	if c.OpenInterest > 0 {
		volOI = float64(c.Volume) / float64(c.OpenInterest)
	}
	ivRank := options.IVPercentile(c.ImpliedVolatility, allIVs)

	var reasons []string
	if volOI > MIN_VOL_OI_RATIO {
		reasons = append(reasons, fmt.Sprintf("volume %.1fx open interest", volOI))
	}
	if c.ImpliedVolatility > HIGH_IV {
		reasons = append(reasons, fmt.Sprintf("IV %.0f%%", c.ImpliedVolatility*100))
	}
	if ivRank > HIGH_IV_RANK {
		reasons = append(reasons, fmt.Sprintf("IV rank %.0f%%", ivRank*100))
	}
	if len(reasons) == 0 {
		return nil
	}

	return &FlowAlert{
		Contract:   c.ContractSymbol,
		Type:       kind,
		Strike:     c.Strike,
		Premium:    c.LastPrice,
		Volume:     c.Volume,
		OpenInt:    c.OpenInterest,
		VolOIRatio: volOI,
		IV:         c.ImpliedVolatility,
		IVRank:     ivRank,
		Greeks:     greeks,
		Reasons:    reasons,
	}
}

func formatMessage(digests []SymbolDigest) string {
	message := "🎯 UNUSUAL OPTIONS ACTIVITY\n\n"
	for _, d := range digests {
		message += fmt.Sprintf("📊 %s  $%.2f  C/P %.2f", d.Ticker, d.Spot, d.CPRatio)
		if d.Sentiment != "NEUTRAL" {
			message += "  " + d.Sentiment
		}
		message += "\n"
		for _, a := range d.Alerts {
			message += fmt.Sprintf("   %s $%.0f @ $%.2f  vol %d / OI %d\n",
				a.Type, a.Strike, a.Premium, a.Volume, a.OpenInt)
			message += fmt.Sprintf("   Δ %.2f Γ %.4f Θ %.3f | ", a.Greeks.Delta, a.Greeks.Gamma, a.Greeks.Theta)
			for i, r := range a.Reasons {
				if i > 0 {
					message += ", "
				}
				message += r
			}
			message += "\n"
		}
		message += "\n"
	}
	return message
}

func saveResults(digests []SymbolDigest, scanned int) {
	result := ScanResult{
		RunID:     uuid.New().String(),
		ScannedAt: time.Now().UTC(),
		Tickers:   scanned,
		Digests:   digests,
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
	path := filepath.Join(RESULTS_DIR, fmt.Sprintf("optionsflow_%s.json", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, pretty.Pretty(data), 0644); err != nil {
		fmt.Printf("Error saving results: %v\n", err)
		return
	}
	fmt.Printf("Results saved to %s\n", path)
}
