package positions

import (
	"encoding/xml"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

const sampleCSV = `Symbol,ListingExchange,CurrencyPrimary,Quantity,PositionValue
AAPL,NASDAQ,USD,100,19000.50
AAPL,NASDAQ,USD,50,9500.25
3010,SEHK,HKD,2000,4100.00
,NASDAQ,USD,10,100
VWRA,LSEETF,USD,30,4200.75
`

func TestParsePositions(t *testing.T) {
	positions, err := ParsePositions(sampleCSV)
	if err != nil {
		t.Fatalf("ParsePositions: %v", err)
	}
	// The blank-symbol row is dropped.
	if len(positions) != 4 {
		t.Fatalf("expected 4 positions, got %d", len(positions))
	}
	if positions[0].Symbol != "AAPL" || !positions[0].Quantity.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected first position %+v", positions[0])
	}
	if positions[2].ListingExchange != "SEHK" {
		t.Fatalf("unexpected exchange %q", positions[2].ListingExchange)
	}
}

func TestParsePositionsMissingColumn(t *testing.T) {
	if _, err := ParsePositions("Symbol,Quantity\nAAPL,100\n"); err == nil {
		t.Fatal("expected error for missing PositionValue column")
	}
}

func TestAggregate(t *testing.T) {
	positions, err := ParsePositions(sampleCSV)
	if err != nil {
		t.Fatal(err)
	}
	merged := Aggregate(positions)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged positions, got %d", len(merged))
	}
	if !merged[0].Quantity.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("AAPL quantity = %s", merged[0].Quantity)
	}
	want := decimal.RequireFromString("28500.75")
	if !merged[0].PositionValueUSD.Equal(want) {
		t.Fatalf("AAPL value = %s, want %s", merged[0].PositionValueUSD, want)
	}
}

func TestYahooTicker(t *testing.T) {
	cases := []struct {
		symbol, exchange, want string
	}{
		{"3010", "SEHK", "3010.HK"},
		{"D05", "SGX", "D05.SI"},
		{"VWRA", "LSEETF", "VWRA.L"},
		{"ASML", "AEB", "ASML.AS"},
		{"SAP", "IBIS", "SAP.DE"},
		{"SAP", "IBIS2", "SAP.DE"},
		{"AIR", "SBF", "AIR.PA"},
		{"NESN", "EBS", "NESN.SW"},
		{"82846", "", "82846.HK"},
		{"AAPL", "NASDAQ", "AAPL"},
	}
	for _, c := range cases {
		if got := YahooTicker(c.symbol, c.exchange); got != c.want {
			t.Errorf("YahooTicker(%s, %s) = %s, want %s", c.symbol, c.exchange, got, c.want)
		}
	}
}

func TestCategoryFor(t *testing.T) {
	if got := CategoryFor("82846.HK"); got != "global_triads" {
		t.Fatalf("CategoryFor(82846.HK) = %s", got)
	}
	if got := CategoryFor("ZZZZ"); got != "uncategorized" {
		t.Fatalf("CategoryFor(ZZZZ) = %s", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	positions, err := ParsePositions(sampleCSV)
	if err != nil {
		t.Fatal(err)
	}
	merged := Aggregate(positions)

	path := filepath.Join(t.TempDir(), "positions.csv")
	if err := WriteSnapshot(path, merged); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	holdings, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if len(holdings) != len(merged) {
		t.Fatalf("expected %d holdings, got %d", len(merged), len(holdings))
	}
	if holdings[1].YahooTicker != "3010.HK" || holdings[1].Category != "global_triads" {
		t.Fatalf("unexpected holding %+v", holdings[1])
	}

	total := TotalValue(holdings)
	want := decimal.RequireFromString("36801.50")
	if !total.Equal(want) {
		t.Fatalf("TotalValue = %s, want %s", total, want)
	}

	weights := Weights(holdings)
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("weights sum = %v", sum)
	}
}

func TestFlexSendResponseParsing(t *testing.T) {
	// Exercised through the XML tags on flexSendResponse.
	body := `<FlexStatementResponse timestamp="28 August, 2026 10:00 AM EDT">
		<Status>Success</Status>
		<ReferenceCode>1234567890</ReferenceCode>
		<Url>https://ndcdyn.interactivebrokers.com/AccountManagement/FlexWebService/GetStatement</Url>
	</FlexStatementResponse>`
	var parsed flexSendResponse
	if err := xml.Unmarshal([]byte(body), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.Status != "Success" || parsed.ReferenceCode != "1234567890" {
		t.Fatalf("unexpected response %+v", parsed)
	}
}
