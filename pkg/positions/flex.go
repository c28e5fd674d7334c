// Package positions pulls portfolio holdings from the IBKR Flex Web
// Service and maps them onto watchlist tickers and categories.
package positions

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	FLEX_SEND_URL      = "https://ndcdyn.interactivebrokers.com/AccountManagement/FlexWebService/SendRequest"
	FLEX_STATEMENT_URL = "https://ndcdyn.interactivebrokers.com/AccountManagement/FlexWebService/GetStatement"
	FLEX_VERSION       = "3"

	MAX_POLL_RETRIES = 20
	POLL_INTERVAL    = 5 * time.Second
)

// Position is one holding row from a Flex statement.
type Position struct {
	Symbol           string          `json:"symbol"`
	ListingExchange  string          `json:"listing_exchange"`
	Currency         string          `json:"currency"`
	Quantity         decimal.Decimal `json:"quantity"`
	PositionValueUSD decimal.Decimal `json:"position_value_usd"`
}

// FlexClient runs the two-step Flex report flow: request a reference
// code, then poll until the statement is generated.
type FlexClient struct {
	Token      string
	QueryID    string
	HTTPClient *http.Client
}

func NewFlexClient(token, queryID string) *FlexClient {
	return &FlexClient{
		Token:      token,
		QueryID:    queryID,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type flexSendResponse struct {
	Status        string `xml:"Status"`
	ReferenceCode string `xml:"ReferenceCode"`
	ErrorCode     string `xml:"ErrorCode"`
	ErrorMessage  string `xml:"ErrorMessage"`
}

// RequestReport asks IBKR to generate the configured Flex query and
// returns the reference code to poll with.
func (c *FlexClient) RequestReport() (string, error) {
	u := fmt.Sprintf("%s?t=%s&q=%s&v=%s", FLEX_SEND_URL, c.Token, c.QueryID, FLEX_VERSION)

	resp, err := c.HTTPClient.Get(u)
	if err != nil {
		return "", fmt.Errorf("flex send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed flexSendResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse flex response: %w", err)
	}
	if parsed.Status != "Success" {
		return "", fmt.Errorf("flex request failed: %s %s", parsed.ErrorCode, parsed.ErrorMessage)
	}
	return parsed.ReferenceCode, nil
}

// FetchStatement polls for the generated statement and returns the raw
// CSV text. IBKR answers with an XML error document while the report
// is still being generated, so poll until the payload looks like CSV.
func (c *FlexClient) FetchStatement(referenceCode string) (string, error) {
	u := fmt.Sprintf("%s?q=%s&t=%s&v=%s", FLEX_STATEMENT_URL, referenceCode, c.Token, FLEX_VERSION)

	for attempt := 1; attempt <= MAX_POLL_RETRIES; attempt++ {
		resp, err := c.HTTPClient.Get(u)
		if err != nil {
			return "", fmt.Errorf("flex get statement: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", err
		}

		text := strings.TrimSpace(string(body))
		if !strings.HasPrefix(text, "<") {
			return text, nil
		}
		if !strings.Contains(text, "Statement generation in progress") {
			return "", fmt.Errorf("flex statement error: %s", firstLine(text))
		}

		fmt.Printf("Statement not ready, retry %d/%d...\n", attempt, MAX_POLL_RETRIES)
		time.Sleep(POLL_INTERVAL)
	}
	return "", fmt.Errorf("flex statement not ready after %d retries", MAX_POLL_RETRIES)
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

// ParsePositions reads Flex CSV output into positions. Rows without a
// symbol or with malformed numbers are skipped.
func ParsePositions(csvText string) ([]Position, error) {
	reader := csv.NewReader(strings.NewReader(csvText))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse flex csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("flex csv has no data rows")
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"Symbol", "Quantity", "PositionValue"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("flex csv missing column %s", required)
		}
	}

	var positions []Position
	for _, row := range rows[1:] {
		symbol := field(row, col, "Symbol")
		if symbol == "" {
			continue
		}
		quantity, err := decimal.NewFromString(field(row, col, "Quantity"))
		if err != nil {
			continue
		}
		value, err := decimal.NewFromString(field(row, col, "PositionValue"))
		if err != nil {
			continue
		}
		positions = append(positions, Position{
			Symbol:           symbol,
			ListingExchange:  field(row, col, "ListingExchange"),
			Currency:         field(row, col, "CurrencyPrimary"),
			Quantity:         quantity,
			PositionValueUSD: value,
		})
	}
	return positions, nil
}

func field(row []string, col map[string]int, name string) string {
	idx, ok := col[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Aggregate merges positions that share a symbol, summing quantity and
// value. Order of first appearance is preserved.
func Aggregate(positions []Position) []Position {
	index := map[string]int{}
	var merged []Position
	for _, p := range positions {
		if i, ok := index[p.Symbol]; ok {
			merged[i].Quantity = merged[i].Quantity.Add(p.Quantity)
			merged[i].PositionValueUSD = merged[i].PositionValueUSD.Add(p.PositionValueUSD)
			continue
		}
		index[p.Symbol] = len(merged)
		merged = append(merged, p)
	}
	return merged
}
