package marketdata

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []string{
		"2025-03-14 09:30:00",
		"2025-03-14T09:30:00",
		"2025-03-14",
	}
	for _, c := range cases {
		parsed, err := ParseDate(c)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", c, err)
		}
		if parsed.Year() != 2025 || parsed.Month() != time.March || parsed.Day() != 14 {
			t.Fatalf("ParseDate(%q) = %v", c, parsed)
		}
	}
	if _, err := ParseDate("14/03/2025"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestCandleHelpers(t *testing.T) {
	candles := []Candle{
		{Close: 10, Volume: 100},
		{Close: 11, Volume: 200},
		{Close: 12, Volume: 300},
	}
	if got := LastClose(candles); got != 12 {
		t.Fatalf("LastClose = %v", got)
	}
	if got := LastClose(nil); got != 0 {
		t.Fatalf("LastClose(nil) = %v", got)
	}
	closes := Closes(candles)
	if len(closes) != 3 || closes[0] != 10 || closes[2] != 12 {
		t.Fatalf("Closes = %v", closes)
	}
	volumes := Volumes(candles)
	if volumes[1] != 200 {
		t.Fatalf("Volumes = %v", volumes)
	}
}

func TestChartResponseDecoding(t *testing.T) {
	payload := `{"chart":{"result":[{"meta":{"regularMarketPrice":187.5},
		"timestamp":[1700000000,1700086400],
		"indicators":{"quote":[{"open":[185,186],"high":[188,189],
		"low":[184,185],"close":[187,188],"volume":[1000,2000]}]}}],"error":null}}`

	var parsed chartResponse
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	result := parsed.Chart.Result[0]
	if result.Meta.RegularMarketPrice != 187.5 {
		t.Fatalf("meta price = %v", result.Meta.RegularMarketPrice)
	}
	if len(result.Timestamp) != 2 || result.Indicators.Quote[0].Close[1] != 188 {
		t.Fatalf("unexpected chart payload %+v", result)
	}
}

func TestSummaryResponseDecoding(t *testing.T) {
	payload := `{"quoteSummary":{"result":[{"defaultKeyStatistics":{
		"shortPercentOfFloat":{"raw":0.235,"fmt":"23.50%"},
		"shortRatio":{"raw":4.2,"fmt":"4.2"},
		"sharesShort":{"raw":12000000,"fmt":"12M"},
		"floatShares":{"raw":51000000,"fmt":"51M"}}}]}}`

	var parsed summaryResponse
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	stats := parsed.QuoteSummary.Result[0].DefaultKeyStatistics
	if stats.ShortPercentOfFloat.Raw != 0.235 || stats.SharesShort.Raw != 12000000 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestInsiderTradeValue(t *testing.T) {
	trade := InsiderTrade{SecuritiesTransacted: 5000, Price: 42.5}
	if got := trade.Value(); got != 212500 {
		t.Fatalf("Value = %v", got)
	}
}
