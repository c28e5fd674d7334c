package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"signalscan/pkg/positions"
	"signalscan/pkg/telegram"
)

const SNAPSHOT_PATH = "positions.csv"

func main() {
	godotenv.Load()

	token := os.Getenv("IBKR_FLEX_TOKEN")
	queryID := os.Getenv("IBKR_FLEX_QUERY_ID")
	if token == "" || queryID == "" {
		log.Fatal("IBKR_FLEX_TOKEN and IBKR_FLEX_QUERY_ID must be set")
	}

	client := positions.NewFlexClient(token, queryID)

	fmt.Println("Requesting Flex report...")
	referenceCode, err := client.RequestReport()
	if err != nil {
		log.Fatalf("Error requesting report: %v", err)
	}
	fmt.Printf("Reference code %s, fetching statement...\n", referenceCode)

	csvText, err := client.FetchStatement(referenceCode)
	if err != nil {
		log.Fatalf("Error fetching statement: %v", err)
	}

	parsed, err := positions.ParsePositions(csvText)
	if err != nil {
		log.Fatalf("Error parsing positions: %v", err)
	}
	merged := positions.Aggregate(parsed)
	fmt.Printf("Parsed %d rows into %d positions.\n", len(parsed), len(merged))

	if err := positions.WriteSnapshot(SNAPSHOT_PATH, merged); err != nil {
		log.Fatalf("Error writing snapshot: %v", err)
	}
	fmt.Printf("Snapshot saved to %s\n", SNAPSHOT_PATH)

	holdings, err := positions.ReadSnapshot(SNAPSHOT_PATH)
	if err != nil {
		log.Fatalf("Error reading snapshot back: %v", err)
	}

	message := formatMessage(holdings)
	fmt.Println(message)

	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	sender, err := telegram.NewSender(logger)
	if err != nil {
		fmt.Printf("Telegram not configured: %v\n", err)
		return
	}
	if err := sender.Send(message); err != nil {
		fmt.Printf("Error sending summary: %v\n", err)
	}
}

func formatMessage(holdings []positions.Holding) string {
	total := positions.TotalValue(holdings)

	// Group values by category for the summary.
	byCategory := map[string]float64{}
	for _, h := range holdings {
		value, _ := h.ValueUSD.Float64()
		byCategory[h.Category] += value
	}

	message := "💼 PORTFOLIO SNAPSHOT\n\n"
	message += fmt.Sprintf("Total value: $%s across %d positions\n\n", total.StringFixed(0), len(holdings))
	totalF, _ := total.Float64()
	for _, category := range []string{"global_triads", "four_horsemen", "cash_cow", "alpha", "omega", "vault", "war_chest", "uncategorized"} {
		value, ok := byCategory[category]
		if !ok {
			continue
		}
		pct := 0.0
		if totalF > 0 {
			pct = value / totalF * 100
		}
		message += fmt.Sprintf("  %s: $%.0f (%.1f%%)\n", category, value, pct)
	}
	return message
}
