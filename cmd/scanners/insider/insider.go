package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"signalscan/pkg/marketdata"
	"signalscan/pkg/telegram"
	"signalscan/pkg/watchlist"
)

const (
	MIN_TRANSACTION_VALUE = 100000.0
	SIGNIFICANT_MULTIPLE  = 2.0
	CLUSTER_THRESHOLD     = 2 // unique buyers
	CLUSTER_WINDOW_DAYS   = 30
	ALERT_WINDOW_DAYS     = 7
	RESULTS_DIR           = "results"
)

// Seniority of the filer, used to weight buys.
var rolePriority = []struct {
	keyword  string
	priority int
}{
	{"ceo", 5},
	{"chief executive", 5},
	{"cfo", 5},
	{"chief financial", 5},
	{"president", 4},
	{"coo", 4},
	{"chief operating", 4},
	{"director", 3},
	{"10% owner", 3},
	{"officer", 2},
}

type InsiderBuy struct {
	Ticker      string  `json:"ticker"`
	Insider     string  `json:"insider"`
	Role        string  `json:"role"`
	Priority    int     `json:"priority"`
	Shares      float64 `json:"shares"`
	Price       float64 `json:"price"`
	ValueUSD    float64 `json:"value_usd"`
	TradeDate   string  `json:"trade_date"`
	Significant bool    `json:"significant"`
}

type ClusterAlert struct {
	Ticker       string       `json:"ticker"`
	UniqueBuyers int          `json:"unique_buyers"`
	TotalValue   float64      `json:"total_value_usd"`
	Buys         []InsiderBuy `json:"buys"`
}

type ScanResult struct {
	RunID     string         `json:"run_id"`
	ScannedAt time.Time      `json:"scanned_at"`
	Tickers   int            `json:"tickers_scanned"`
	Recent    []InsiderBuy   `json:"recent_buys"`
	Clusters  []ClusterAlert `json:"clusters"`
}

func main() {
	godotenv.Load()

	apiKey := os.Getenv("FMP_API_KEY")
	if apiKey == "" {
		log.Fatal("FMP_API_KEY must be set")
	}

	tickers := watchlist.Load(watchlist.DefaultPath, false)
	fmt.Printf("Checking insider filings for %d tickers...\n", len(tickers))

	client := marketdata.NewFMPClient(apiKey)
	now := time.Now()

	var recent []InsiderBuy
	var clusters []ClusterAlert
	for _, ticker := range tickers {
		trades, err := client.InsiderTrades(ticker)
		if err != nil {
			fmt.Printf("  %s: %v\n", ticker, err)
			continue
		}

		buys := filterBuys(ticker, trades, now)
		if len(buys) == 0 {
			continue
		}

		for _, b := range buys {
			if daysAgo(b.TradeDate, now) <= ALERT_WINDOW_DAYS {
				fmt.Printf("  %s: %s bought $%.0f\n", ticker, b.Insider, b.ValueUSD)
				recent = append(recent, b)
			}
		}

		if cluster := detectCluster(ticker, buys); cluster != nil {
			fmt.Printf("  CLUSTER %s: %d buyers, $%.0f total\n",
				ticker, cluster.UniqueBuyers, cluster.TotalValue)
			clusters = append(clusters, *cluster)
		}
	}

	sort.Slice(recent, func(i, j int) bool {
		return recent[i].ValueUSD > recent[j].ValueUSD
	})

	saveResults(recent, clusters, len(tickers))

	if len(recent) == 0 && len(clusters) == 0 {
		fmt.Println("No notable insider buying this week.")
		return
	}

	message := formatMessage(recent, clusters)
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

// filterBuys keeps open-market purchases above the value floor inside
// the cluster window.
func filterBuys(ticker string, trades []marketdata.InsiderTrade, now time.Time) []InsiderBuy {
	var buys []InsiderBuy
	for _, t := range trades {
		if t.AcquisitionOrDisposition != "A" && !strings.HasPrefix(strings.ToUpper(t.TransactionType), "P") {
			continue
		}
		value := t.Value()
		if value < MIN_TRANSACTION_VALUE {
			continue
		}
		if daysAgo(t.TransactionDate, now) > CLUSTER_WINDOW_DAYS {
			continue
		}
		priority := roleFor(t.TypeOfOwner)
		buys = append(buys, InsiderBuy{
			Ticker:      ticker,
			Insider:     t.ReportingName,
			Role:        t.TypeOfOwner,
			Priority:    priority,
			Shares:      t.SecuritiesTransacted,
			Price:       t.Price,
			ValueUSD:    value,
			TradeDate:   t.TransactionDate,
			Significant: priority >= 3 || value >= SIGNIFICANT_MULTIPLE*MIN_TRANSACTION_VALUE,
		})
	}
	return buys
}

func roleFor(typeOfOwner string) int {
	lower := strings.ToLower(typeOfOwner)
	for _, r := range rolePriority {
		if strings.Contains(lower, r.keyword) {
			return r.priority
		}
	}
	return 1
}

func daysAgo(dateStr string, now time.Time) int {
	parsed, err := marketdata.ParseDate(dateStr)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return int(now.Sub(parsed).Hours() / 24)
}

// detectCluster alerts when several distinct insiders bought the same
// stock inside the window.
func detectCluster(ticker string, buys []InsiderBuy) *ClusterAlert {
	buyers := map[string]bool{}
	total := 0.0
	for _, b := range buys {
		buyers[b.Insider] = true
		total += b.ValueUSD
	}
	if len(buyers) < CLUSTER_THRESHOLD {
		return nil
	}
	return &ClusterAlert{
		Ticker:       ticker,
		UniqueBuyers: len(buyers),
		TotalValue:   total,
		Buys:         buys,
	}
}

func formatMessage(recent []InsiderBuy, clusters []ClusterAlert) string {
	message := "👔 INSIDER BUYING\n\n"
	if len(clusters) > 0 {
		message += "🔥 CLUSTER BUYING:\n"
		for _, c := range clusters {
			message += fmt.Sprintf("   %s: %d insiders, $%.0f total in %d days\n",
				c.Ticker, c.UniqueBuyers, c.TotalValue, CLUSTER_WINDOW_DAYS)
		}
		message += "\n"
	}
	if len(recent) > 0 {
		message += "This week's purchases:\n"
		for _, b := range recent {
			marker := ""
			if b.Significant {
				marker = " ⭐"
			}
			message += fmt.Sprintf("   %s: %s (%s) $%.0f%s\n",
				b.Ticker, b.Insider, b.Role, b.ValueUSD, marker)
		}
	}
	return message
}

func saveResults(recent []InsiderBuy, clusters []ClusterAlert, scanned int) {
	result := ScanResult{
		RunID:     uuid.New().String(),
		ScannedAt: time.Now().UTC(),
		Tickers:   scanned,
		Recent:    recent,
		Clusters:  clusters,
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
	path := filepath.Join(RESULTS_DIR, fmt.Sprintf("insider_%s.json", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, pretty.Pretty(data), 0644); err != nil {
		fmt.Printf("Error saving results: %v\n", err)
		return
	}
	fmt.Printf("Results saved to %s\n", path)
}
