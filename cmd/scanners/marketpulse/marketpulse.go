package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"signalscan/pkg/genai"
	"signalscan/pkg/marketdata"
	"signalscan/pkg/news"
	"signalscan/pkg/telegram"
	"signalscan/pkg/watchlist"
)

const (
	MAX_CONCURRENT_FEEDS = 3
	MAX_HEADLINES        = 12
	MAX_AGE_HOURS        = 24
	EARNINGS_DAYS_AHEAD  = 5
	GENAI_MODEL          = "gemini-2.0-flash"
	RESULTS_DIR          = "results"
)

type PulseReport struct {
	RunID       string                    `json:"run_id"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Headlines   []news.Article            `json:"headlines"`
	Earnings    []marketdata.EarningsEvent `json:"upcoming_earnings,omitempty"`
	Commentary  string                    `json:"commentary,omitempty"`
}

func main() {
	godotenv.Load()

	fetcher := news.NewFetcher()

	fmt.Printf("Polling %d news feeds...\n", len(news.Registry))
	var mu sync.Mutex
	var all []news.Article

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, MAX_CONCURRENT_FEEDS)
	for _, feed := range news.Registry {
		wg.Add(1)
		go func(feed news.Feed) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			articles, err := fetcher.Fetch(feed)
			if err != nil {
				fmt.Printf("  %s: %v\n", feed.Name, err)
				return
			}
			fmt.Printf("  %s: %d headlines\n", feed.Name, len(articles))
			mu.Lock()
			all = append(all, articles...)
			mu.Unlock()
		}(feed)
	}
	wg.Wait()

	// Ticker-specific headlines from Finviz for the watchlist.
	for _, ticker := range watchlist.Load(watchlist.DefaultPath, false) {
		articles, err := fetcher.FetchFinviz(ticker, 5)
		if err != nil {
			fmt.Printf("  finviz %s: %v\n", ticker, err)
			continue
		}
		all = append(all, articles...)
		time.Sleep(500 * time.Millisecond)
	}

	all = news.Dedup(all)
	news.Annotate(all)

	cutoff := time.Now().Add(-MAX_AGE_HOURS * time.Hour)
	var kept []news.Article
	for _, a := range all {
		if a.Impact == news.IMPACT_FLUFF {
			continue
		}
		if !a.PublishedAt.IsZero() && a.PublishedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, a)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Impact > kept[j].Impact
	})
	if len(kept) > MAX_HEADLINES {
		kept = kept[:MAX_HEADLINES]
	}
	fmt.Printf("%d headlines after dedup and fluff filter.\n", len(kept))

	report := PulseReport{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Headlines:   kept,
	}

	if apiKey := os.Getenv("FMP_API_KEY"); apiKey != "" {
		fmp := marketdata.NewFMPClient(apiKey)
		events, err := fmp.EarningsCalendar(time.Now(), time.Now().AddDate(0, 0, EARNINGS_DAYS_AHEAD))
		if err != nil {
			fmt.Printf("Earnings calendar unavailable: %v\n", err)
		} else {
			report.Earnings = filterEarnings(events)
		}
	}

	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	if apiKey := os.Getenv("GENAI_API_KEY"); apiKey != "" && len(kept) > 0 {
		api := genai.NewGenAiApi("", apiKey, GENAI_MODEL, logger)
		commentary, err := api.GenerateCommentary(buildPrompt(kept))
		if err != nil {
			fmt.Printf("Commentary unavailable: %v\n", err)
		} else {
			report.Commentary = commentary
		}
	}

	saveReport(report)

	if len(kept) == 0 {
		fmt.Println("Nothing market-moving in the last 24 hours.")
		return
	}

	message := formatMessage(report)
	fmt.Println(message)

	sender, err := telegram.NewSender(logger)
	if err != nil {
		fmt.Printf("Telegram not configured: %v\n", err)
		return
	}
	if err := sender.Send(message); err != nil {
		fmt.Printf("Error sending pulse: %v\n", err)
	}
}

// filterEarnings keeps calendar rows for watchlist names only.
func filterEarnings(events []marketdata.EarningsEvent) []marketdata.EarningsEvent {
	watched := map[string]bool{}
	for _, t := range watchlist.Load(watchlist.DefaultPath, false) {
		watched[t] = true
	}
	var kept []marketdata.EarningsEvent
	for _, e := range events {
		if watched[e.Symbol] {
			kept = append(kept, e)
		}
	}
	return kept
}

func buildPrompt(headlines []news.Article) string {
	var b strings.Builder
	b.WriteString("You are a market analyst. In 3 sentences, summarize the overall tone of today's market headlines and the single biggest risk:\n\n")
	for _, h := range headlines {
		fmt.Fprintf(&b, "- [%s] %s\n", h.Level, h.Title)
	}
	return b.String()
}

func formatMessage(r PulseReport) string {
	message := "📰 MARKET PULSE\n\n"
	for _, h := range r.Headlines {
		emoji := "▪️"
		switch h.Level {
		case "CRITICAL":
			emoji = "🚨"
		case "HIGH":
			emoji = "🔴"
		case "MEDIUM":
			emoji = "🟡"
		}
		message += fmt.Sprintf("%s %s", emoji, h.Title)
		if len(h.Tickers) > 0 {
			message += " (" + strings.Join(h.Tickers, ", ") + ")"
		}
		message += fmt.Sprintf("\n   %s\n", h.Source)
	}
	if len(r.Earnings) > 0 {
		message += "\n📅 Watchlist earnings this week:\n"
		for _, e := range r.Earnings {
			message += fmt.Sprintf("   %s on %s\n", e.Symbol, e.Date)
		}
	}
	if r.Commentary != "" {
		message += "\n🤖 " + r.Commentary + "\n"
	}
	return message
}

func saveReport(report PulseReport) {
	if err := os.MkdirAll(RESULTS_DIR, 0755); err != nil {
		fmt.Printf("Error creating results dir: %v\n", err)
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		fmt.Printf("Error marshaling report: %v\n", err)
		return
	}
	path := filepath.Join(RESULTS_DIR, fmt.Sprintf("pulse_%s.json", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, pretty.Pretty(data), 0644); err != nil {
		fmt.Printf("Error saving report: %v\n", err)
		return
	}
	fmt.Printf("Report saved to %s\n", path)
}
