package watchlist

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCombined(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watchlist.json")
	content := `{"stocks": ["AAPL", "MSFT"], "etfs": ["SPY"]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got := Load(path, true)
	if len(got) != 3 {
		t.Fatalf("expected 3 tickers, got %d: %v", len(got), got)
	}
	if got[2] != "SPY" {
		t.Fatalf("expected ETFs appended last, got %v", got)
	}
}

func TestLoadStocksOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watchlist.json")
	content := `{"stocks": ["AAPL"], "etfs": ["SPY", "QQQ"]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got := Load(path, false)
	if len(got) != 1 || got[0] != "AAPL" {
		t.Fatalf("expected stocks only, got %v", got)
	}
}

func TestLoadMissingFileFallback(t *testing.T) {
	got := Load(filepath.Join(t.TempDir(), "nope.json"), true)
	if len(got) != 2 {
		t.Fatalf("expected fallback watchlist, got %v", got)
	}
}

func TestLoadCorruptFileFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watchlist.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	got := Load(path, true)
	if len(got) != 2 {
		t.Fatalf("expected fallback watchlist, got %v", got)
	}
}
