package watchlist

import (
	"encoding/json"
	"fmt"
	"os"
)

// Watchlist file format shared by every scanner.
type Watchlist struct {
	Stocks []string `json:"stocks"`
	ETFs   []string `json:"etfs"`
}

// Fallback used when watchlist.json is missing or unreadable.
var fallback = []string{"SPY", "QQQ"}

const DefaultPath = "watchlist.json"

// Load reads the shared watchlist JSON and returns the combined ticker list.
// Missing file falls back to a minimal index watchlist so scanners still run.
func Load(path string, includeETFs bool) []string {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Warning: watchlist not found at %s, using fallback watchlist\n", path)
		return fallback
	}

	var wl Watchlist
	if err := json.Unmarshal(data, &wl); err != nil {
		fmt.Printf("Error parsing %s: %v, using fallback watchlist\n", path, err)
		return fallback
	}

	if includeETFs {
		return append(append([]string{}, wl.Stocks...), wl.ETFs...)
	}
	return wl.Stocks
}
