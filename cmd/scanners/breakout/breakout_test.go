package main

import (
	"testing"
	"time"

	"signalscan/pkg/marketdata"
	"signalscan/pkg/settings"
)

// flatCandles builds n sessions closing at price on steady volume.
func flatCandles(n int, price float64, volume int64) []marketdata.Candle {
	candles := make([]marketdata.Candle, n)
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		candles[i] = marketdata.Candle{
			Date:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: volume,
		}
	}
	return candles
}

func TestEvaluateBreakoutClosingHighOnVolume(t *testing.T) {
	cfg := settings.Defaults()
	candles := flatCandles(40, 100, 1_000_000)
	last := &candles[len(candles)-1]
	last.High = 111
	last.Close = 110
	last.Volume = 3_000_000

	signal, err := evaluateBreakout("TEST", candles, nil, cfg)
	if err != nil {
		t.Fatalf("evaluateBreakout: %v", err)
	}
	if signal == nil {
		t.Fatal("expected a signal for a closing high on 3x volume")
	}
	if signal.High52W != 110 {
		t.Errorf("High52W = %.2f, want 110 (max of closes)", signal.High52W)
	}
	if signal.VolumeRatio < 2.9 || signal.VolumeRatio > 3.1 {
		t.Errorf("VolumeRatio = %.2f, want ~3.0", signal.VolumeRatio)
	}
	if signal.BreakoutDate != last.Date.Format("2006-01-02") {
		t.Errorf("BreakoutDate = %s, want %s", signal.BreakoutDate, last.Date.Format("2006-01-02"))
	}
}

func TestEvaluateBreakoutIgnoresIntradayWick(t *testing.T) {
	cfg := settings.Defaults()
	candles := flatCandles(40, 100, 1_000_000)
	// An old session set the closing high; today's wick tags it but the
	// close gives it all back.
	candles[0].High = 110
	candles[0].Close = 110
	last := &candles[len(candles)-1]
	last.High = 111
	last.Close = 104
	last.Volume = 3_000_000

	signal, err := evaluateBreakout("TEST", candles, nil, cfg)
	if err != nil {
		t.Fatalf("evaluateBreakout: %v", err)
	}
	if signal != nil {
		t.Fatalf("wick through the high without a closing break should not signal, got %+v", signal)
	}
}

func TestEvaluateBreakoutRequiresVolume(t *testing.T) {
	cfg := settings.Defaults()
	candles := flatCandles(40, 100, 1_000_000)
	last := &candles[len(candles)-1]
	last.Close = 110
	last.High = 110

	signal, err := evaluateBreakout("TEST", candles, nil, cfg)
	if err != nil {
		t.Fatalf("evaluateBreakout: %v", err)
	}
	if signal != nil {
		t.Fatalf("closing high on average volume should not signal, got %+v", signal)
	}
}

func TestEvaluateBreakoutTooFewCandles(t *testing.T) {
	cfg := settings.Defaults()
	if _, err := evaluateBreakout("TEST", flatCandles(10, 100, 1_000_000), nil, cfg); err == nil {
		t.Fatal("expected an error for a short history")
	}
}
