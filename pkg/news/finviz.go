package news

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const finvizQuoteURL = "https://finviz.com/quote.ashx?t=%s"

// FetchFinviz scrapes the headline table on a Finviz quote page for
// ticker-specific news. Finviz blocks default Go user agents.
func (f *Fetcher) FetchFinviz(ticker string, limit int) ([]Article, error) {
	req, err := http.NewRequest("GET", fmt.Sprintf(finvizQuoteURL, ticker), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch finviz for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d from finviz for %s", resp.StatusCode, ticker)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse finviz html: %w", err)
	}

	var articles []Article
	lastDate := time.Now()
	doc.Find("table.fullview-news-outer tr").Each(func(i int, row *goquery.Selection) {
		if limit > 0 && len(articles) >= limit {
			return
		}
		timeText := strings.TrimSpace(row.Find("td").First().Text())
		link := row.Find("td").Last().Find("a").First()
		title := strings.TrimSpace(link.Text())
		href, ok := link.Attr("href")
		if !ok || title == "" {
			return
		}
		published, hasDate := parseFinvizTime(timeText, lastDate)
		if hasDate {
			lastDate = published
		}
		articles = append(articles, Article{
			Title:       title,
			Link:        href,
			Source:      "Finviz",
			Tier:        2,
			PublishedAt: published,
		})
	})
	return articles, nil
}

// parseFinvizTime handles both "Mar-14-25 09:30AM" rows and bare
// "09:30AM" rows that inherit the date from the row above.
func parseFinvizTime(value string, lastDate time.Time) (time.Time, bool) {
	if t, err := time.Parse("Jan-02-06 03:04PM", value); err == nil {
		return t, true
	}
	if t, err := time.Parse("03:04PM", value); err == nil {
		return time.Date(lastDate.Year(), lastDate.Month(), lastDate.Day(),
			t.Hour(), t.Minute(), 0, 0, time.UTC), false
	}
	return lastDate, false
}
