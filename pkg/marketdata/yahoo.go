// Package marketdata fetches quotes, candles, key statistics and option
// chains from the Yahoo Finance and FMP public endpoints.
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
	YAHOO_CHART_URL   = "https://query1.finance.yahoo.com/v8/finance/chart/%s"
	YAHOO_SUMMARY_URL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary/%s"
	YAHOO_OPTIONS_URL = "https://query1.finance.yahoo.com/v7/finance/options/%s"
)

// Candle is one daily OHLCV bar.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// KeyStats carries the short-interest fields used by the squeeze scan.
type KeyStats struct {
	ShortPercentOfFloat float64 `json:"short_percent_of_float"`
	ShortRatio          float64 `json:"short_ratio"`
	SharesShort         int64   `json:"shares_short"`
	FloatShares         int64   `json:"float_shares"`
}

// Contract is one option contract from a Yahoo chain.
type Contract struct {
	ContractSymbol    string  `json:"contractSymbol"`
	Strike            float64 `json:"strike"`
	LastPrice         float64 `json:"lastPrice"`
	Volume            int64   `json:"volume"`
	OpenInterest      int64   `json:"openInterest"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
	Expiration        int64   `json:"expiration"`
	InTheMoney        bool    `json:"inTheMoney"`
}

// Chain is the nearest-expiry option chain for a symbol.
type Chain struct {
	Symbol     string     `json:"symbol"`
	SpotPrice  float64    `json:"spot_price"`
	Expiration time.Time  `json:"expiration"`
	Calls      []Contract `json:"calls"`
	Puts       []Contract `json:"puts"`
}

// Client talks to the Yahoo Finance JSON endpoints. The endpoints
// reject requests without a browser user agent.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
}

func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		UserAgent:  "Mozilla/5.0",
	}
}

func (c *Client) getJSON(rawURL string, out interface{}) error {
	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetDailyHistory returns up to `days` of daily candles for symbol,
// oldest first. Null bars from halted sessions are skipped.
func (c *Client) GetDailyHistory(symbol string, days int) ([]Candle, error) {
	u := fmt.Sprintf(YAHOO_CHART_URL, url.PathEscape(symbol)) +
		fmt.Sprintf("?range=%dd&interval=1d", days)

	var parsed chartResponse
	if err := c.getJSON(u, &parsed); err != nil {
		return nil, fmt.Errorf("fetch chart for %s: %w", symbol, err)
	}
	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s", symbol, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data for %s", symbol)
	}

	result := parsed.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	var candles []Candle
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		candles = append(candles, Candle{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   quote.Open[i],
			High:   quote.High[i],
			Low:    quote.Low[i],
			Close:  quote.Close[i],
			Volume: quote.Volume[i],
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("empty history for %s", symbol)
	}
	return candles, nil
}

// LastClose returns the most recent close from a candle series.
func LastClose(candles []Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	return candles[len(candles)-1].Close
}

// Closes extracts the close series from candles, oldest first.
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

// Volumes extracts the volume series from candles, oldest first.
func Volumes(candles []Candle) []float64 {
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		volumes[i] = float64(c.Volume)
	}
	return volumes
}

// rawValue unwraps Yahoo's {"raw": x, "fmt": "x"} number objects.
type rawValue struct {
	Raw float64 `json:"raw"`
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			DefaultKeyStatistics struct {
				ShortPercentOfFloat rawValue `json:"shortPercentOfFloat"`
				ShortRatio          rawValue `json:"shortRatio"`
				SharesShort         rawValue `json:"sharesShort"`
				FloatShares         rawValue `json:"floatShares"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

// GetKeyStats fetches short interest statistics for symbol.
// ShortPercentOfFloat is converted to percent (12.5 means 12.5%).
func (c *Client) GetKeyStats(symbol string) (*KeyStats, error) {
	u := fmt.Sprintf(YAHOO_SUMMARY_URL, url.PathEscape(symbol)) +
		"?modules=defaultKeyStatistics"

	var parsed summaryResponse
	if err := c.getJSON(u, &parsed); err != nil {
		return nil, fmt.Errorf("fetch key stats for %s: %w", symbol, err)
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no key stats for %s", symbol)
	}

	stats := parsed.QuoteSummary.Result[0].DefaultKeyStatistics
	return &KeyStats{
		ShortPercentOfFloat: stats.ShortPercentOfFloat.Raw * 100,
		ShortRatio:          stats.ShortRatio.Raw,
		SharesShort:         int64(stats.SharesShort.Raw),
		FloatShares:         int64(stats.FloatShares.Raw),
	}, nil
}

type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			Quote struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"quote"`
			ExpirationDates []int64 `json:"expirationDates"`
			Options         []struct {
				ExpirationDate int64      `json:"expirationDate"`
				Calls          []Contract `json:"calls"`
				Puts           []Contract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
	} `json:"optionChain"`
}

// GetOptionChain fetches the nearest-expiry chain for symbol.
func (c *Client) GetOptionChain(symbol string) (*Chain, error) {
	u := fmt.Sprintf(YAHOO_OPTIONS_URL, url.PathEscape(symbol))

	var parsed optionsResponse
	if err := c.getJSON(u, &parsed); err != nil {
		return nil, fmt.Errorf("fetch options for %s: %w", symbol, err)
	}
	if len(parsed.OptionChain.Result) == 0 || len(parsed.OptionChain.Result[0].Options) == 0 {
		return nil, fmt.Errorf("no option chain for %s", symbol)
	}

	result := parsed.OptionChain.Result[0]
	chain := result.Options[0]
	return &Chain{
		Symbol:     symbol,
		SpotPrice:  result.Quote.RegularMarketPrice,
		Expiration: time.Unix(chain.ExpirationDate, 0).UTC(),
		Calls:      chain.Calls,
		Puts:       chain.Puts,
	}, nil
}
