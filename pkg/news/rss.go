// Package news aggregates headlines from RSS feeds and Finviz and
// scores their likely market impact.
package news

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Feed is one RSS source in the registry.
type Feed struct {
	Name string
	URL  string
	Tier int // 1 is most trusted, used as a tiebreaker when deduping
}

// Registry lists the feeds the market pulse scan polls.
var Registry = []Feed{
	{Name: "Yahoo Finance", URL: "https://finance.yahoo.com/news/rssindex", Tier: 1},
	{Name: "CNBC Markets", URL: "https://search.cnbc.com/rs/search/combinedcms/view.xml?partnerId=wrss01&id=20910258", Tier: 1},
	{Name: "CNBC Economy", URL: "https://search.cnbc.com/rs/search/combinedcms/view.xml?partnerId=wrss01&id=20910255", Tier: 1},
	{Name: "MarketWatch Top", URL: "https://feeds.content.dowjones.io/public/rss/mw_topstories", Tier: 2},
	{Name: "MarketWatch Pulse", URL: "https://feeds.content.dowjones.io/public/rss/mw_marketpulse", Tier: 2},
	{Name: "Google News Markets", URL: "https://news.google.com/rss/search?q=stock+market&hl=en-US&gl=US&ceid=US:en", Tier: 3},
	{Name: "Google News Fed", URL: "https://news.google.com/rss/search?q=federal+reserve&hl=en-US&gl=US&ceid=US:en", Tier: 3},
}

// Article is a normalized headline from any source.
type Article struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	Tier        int       `json:"tier"`
	PublishedAt time.Time `json:"published_at"`
	Impact      int       `json:"impact"`
	Level       string    `json:"level"`
	Tickers     []string  `json:"tickers,omitempty"`
}

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// Fetcher polls RSS feeds over plain HTTP.
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		UserAgent:  "Mozilla/5.0",
	}
}

// Fetch downloads and parses one feed.
func (f *Fetcher) Fetch(feed Feed) ([]Article, error) {
	req, err := http.NewRequest("GET", feed.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d from %s", resp.StatusCode, feed.Name)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return ParseRSS(body, feed)
}

// ParseRSS decodes RSS 2.0 XML into articles tagged with the feed's
// name and tier.
func ParseRSS(body []byte, feed Feed) ([]Article, error) {
	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse %s feed: %w", feed.Name, err)
	}

	var articles []Article
	for _, item := range doc.Channel.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		articles = append(articles, Article{
			Title:       title,
			Link:        strings.TrimSpace(item.Link),
			Source:      feed.Name,
			Tier:        feed.Tier,
			PublishedAt: parsePubDate(item.PubDate),
		})
	}
	return articles, nil
}

func parsePubDate(value string) time.Time {
	formats := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		time.RFC3339,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, strings.TrimSpace(value)); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Dedup drops articles with near-identical titles, keeping the copy
// from the most trusted source. Titles are compared case-insensitively
// after punctuation stripping.
func Dedup(articles []Article) []Article {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Tier < articles[j].Tier
	})

	seen := map[string]bool{}
	var kept []Article
	for _, a := range articles {
		key := titleKey(a.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, a)
	}
	return kept
}

func titleKey(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
