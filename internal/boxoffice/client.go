package boxoffice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// chartLimit caps how many ranked rows a week yields. The reconciliation
// pipeline only ever considers the top ten.
const chartLimit = 10

var reMoney = regexp.MustCompile(`\$[\d,]+`)

// Client scrapes the weekly chart from Box Office Mojo. Requests are rate
// limited because the source throttles aggressive clients.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

var _ Feed = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRequestsPerMinute adjusts the outbound rate limit.
func WithRequestsPerMinute(perMinute int) Option {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
		}
	}
}

// WithClock overrides the time source. Tests use it to pin CurrentWeek.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a chart client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("chart base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(20.0/60.0), 1),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// CurrentWeek returns the ISO year and week of the most recently completed
// box-office weekend.
func (c *Client) CurrentWeek() (int, int) {
	return WeekOf(MostRecentFriday(c.now()))
}

// FetchWeek downloads and parses the chart page for one ISO week. Failures
// return a FeedError carrying the target week.
func (c *Client) FetchWeek(ctx context.Context, year, week int) ([]Entry, error) {
	if week < 1 || week > 53 {
		return nil, &FeedError{Year: year, Week: week, Err: fmt.Errorf("week %d out of range", week)}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FeedError{Year: year, Week: week, Err: err}
	}

	pageURL := fmt.Sprintf("%s/weekend/%s/", c.baseURL, FormatWeek(year, week))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FeedError{Year: year, Week: week, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", "boxarr/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FeedError{Year: year, Week: week, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FeedError{Year: year, Week: week, Err: fmt.Errorf("chart page returned %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FeedError{Year: year, Week: week, Err: fmt.Errorf("parse chart page: %w", err)}
	}

	entries := parseChart(doc)
	if len(entries) == 0 {
		return nil, &FeedError{Year: year, Week: week, Err: errors.New("no chart rows found")}
	}
	return entries, nil
}

// parseChart extracts ranked rows from the weekend table. Column layout:
// rank, title (anchor), weekend gross, then assorted financial columns.
// Rows whose first cell is not an integer (headers, studio summaries) are
// skipped.
func parseChart(doc *goquery.Document) []Entry {
	var entries []Entry
	doc.Find("table.a-bordered tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return true
		}
		rank, err := strconv.Atoi(strings.TrimSpace(cells.Eq(0).Text()))
		if err != nil || rank < 1 {
			return true
		}
		title := strings.TrimSpace(cells.Eq(1).Find("a").First().Text())
		if title == "" {
			title = strings.TrimSpace(cells.Eq(1).Text())
		}
		if title == "" {
			return true
		}

		entry := Entry{
			Rank:         rank,
			Title:        title,
			WeekendGross: parseMoney(cells.Eq(2).Text()),
		}
		if cells.Length() > 6 {
			entry.TheaterCount = parseInt(cells.Eq(6).Text())
		}
		if cells.Length() > 9 {
			entry.TotalGross = parseMoney(cells.Eq(9).Text())
		}
		if cells.Length() > 10 {
			entry.WeeksInRelease = parseInt(cells.Eq(10).Text())
		}

		entries = append(entries, entry)
		return len(entries) < chartLimit
	})
	return entries
}

func parseMoney(s string) int64 {
	match := reMoney.FindString(s)
	if match == "" {
		return 0
	}
	digits := strings.ReplaceAll(strings.TrimPrefix(match, "$"), ",", "")
	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return value
}

func parseInt(s string) int {
	digits := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return value
}
