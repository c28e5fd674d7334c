package marketdata

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	FMP_BASE_URL        = "https://financialmodelingprep.com/api/v4"
	FMP_STABLE_BASE_URL = "https://financialmodelingprep.com/api/v3"
)

// InsiderTrade is one Form 4 filing row from FMP.
type InsiderTrade struct {
	Symbol                   string  `json:"symbol"`
	FilingDate               string  `json:"filingDate"`
	TransactionDate          string  `json:"transactionDate"`
	ReportingName            string  `json:"reportingName"`
	TypeOfOwner              string  `json:"typeOfOwner"`
	TransactionType          string  `json:"transactionType"`
	AcquisitionOrDisposition string  `json:"acquistionOrDisposition"`
	SecuritiesTransacted     float64 `json:"securitiesTransacted"`
	Price                    float64 `json:"price"`
}

// Value returns the dollar value of the transaction.
func (t InsiderTrade) Value() float64 {
	return t.SecuritiesTransacted * t.Price
}

// EarningsEvent is one row of the FMP earnings calendar.
type EarningsEvent struct {
	Symbol      string  `json:"symbol"`
	Date        string  `json:"date"`
	EPSEstimate float64 `json:"epsEstimated"`
	Time        string  `json:"time"`
}

// FMPClient talks to the Financial Modeling Prep REST API. RateLimit
// bounds concurrent requests across goroutines.
type FMPClient struct {
	APIKey     string
	HTTPClient *http.Client
	RateLimit  chan struct{}
}

func NewFMPClient(apiKey string) *FMPClient {
	return &FMPClient{
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		RateLimit:  make(chan struct{}, 3),
	}
}

func (c *FMPClient) getJSON(rawURL string, out interface{}) error {
	c.RateLimit <- struct{}{}
	defer func() { <-c.RateLimit }()

	resp, err := c.HTTPClient.Get(rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d from FMP", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// InsiderTrades fetches recent Form 4 filings for symbol.
func (c *FMPClient) InsiderTrades(symbol string) ([]InsiderTrade, error) {
	u := fmt.Sprintf("%s/insider-trading?symbol=%s&page=0&apikey=%s",
		FMP_BASE_URL, url.QueryEscape(symbol), c.APIKey)

	var trades []InsiderTrade
	if err := c.getJSON(u, &trades); err != nil {
		return nil, fmt.Errorf("fetch insider trades for %s: %w", symbol, err)
	}
	return trades, nil
}

// EarningsCalendar fetches earnings events between from and to.
func (c *FMPClient) EarningsCalendar(from, to time.Time) ([]EarningsEvent, error) {
	u := fmt.Sprintf("%s/earning_calendar?from=%s&to=%s&apikey=%s",
		FMP_STABLE_BASE_URL, from.Format("2006-01-02"), to.Format("2006-01-02"), c.APIKey)

	var events []EarningsEvent
	if err := c.getJSON(u, &events); err != nil {
		return nil, fmt.Errorf("fetch earnings calendar: %w", err)
	}
	return events, nil
}

// ParseDate handles the date formats FMP mixes across endpoints.
func ParseDate(value string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
		time.RFC3339,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
