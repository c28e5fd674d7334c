package positions

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// WriteSnapshot saves aggregated positions as a CSV snapshot that the
// risk scanner reads back later.
func WriteSnapshot(path string, positions []Position) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"Symbol", "YahooTicker", "Category", "Quantity", "PositionValueUSD"}); err != nil {
		return err
	}
	for _, p := range positions {
		ticker := YahooTicker(p.Symbol, p.ListingExchange)
		row := []string{
			p.Symbol,
			ticker,
			CategoryFor(ticker),
			p.Quantity.String(),
			p.PositionValueUSD.String(),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Error()
}

// Holding is one snapshot row as the risk scanner consumes it.
type Holding struct {
	Symbol      string
	YahooTicker string
	Category    string
	Quantity    decimal.Decimal
	ValueUSD    decimal.Decimal
}

// ReadSnapshot loads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) ([]Holding, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("snapshot %s has no holdings", path)
	}

	var holdings []Holding
	for _, row := range rows[1:] {
		if len(row) < 5 {
			continue
		}
		quantity, err := decimal.NewFromString(row[3])
		if err != nil {
			continue
		}
		value, err := decimal.NewFromString(row[4])
		if err != nil {
			continue
		}
		holdings = append(holdings, Holding{
			Symbol:      row[0],
			YahooTicker: row[1],
			Category:    row[2],
			Quantity:    quantity,
			ValueUSD:    value,
		})
	}
	return holdings, nil
}

// TotalValue sums the USD value of all holdings.
func TotalValue(holdings []Holding) decimal.Decimal {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.ValueUSD)
	}
	return total
}

// Weights returns each holding's fraction of total portfolio value.
func Weights(holdings []Holding) []float64 {
	total := TotalValue(holdings)
	weights := make([]float64, len(holdings))
	if total.IsZero() {
		return weights
	}
	for i, h := range holdings {
		weights[i], _ = h.ValueUSD.Div(total).Float64()
	}
	return weights
}
