package research

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// courtDB maps a CommonLII database code to the court it covers. Federal
// Court and Court of Appeal decisions bind the lower courts.
type courtDB struct {
	Code    string
	Court   string
	Binding bool
}

var courtDatabases = []courtDB{
	{Code: "MYFC", Court: "Federal Court of Malaysia", Binding: true},
	{Code: "MYCA", Court: "Court of Appeal of Malaysia", Binding: true},
	{Code: "MYHC", Court: "High Court of Malaya", Binding: false},
}

var (
	caseAnchorRe = regexp.MustCompile(`<a\s+href="(/my/cases/(MYFC|MYCA|MYHC)/(\d{4})/[^"]+)"\s*>([^<]+)</a>`)
	citationRe   = regexp.MustCompile(`\[\d{4}\]\s+\d+\s+[A-Z]+\s+\d+`)
)

type ClientConfig struct {
	BaseURL      string
	RateInterval time.Duration
	HTTPClient   *http.Client
}

// Client queries CommonLII case databases. One request per rate interval,
// across all databases, shared by concurrent callers.
type Client struct {
	cfg       ClientConfig
	limiter   <-chan time.Time
	limiterMu sync.Mutex
}

func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, errors.New("research base URL not configured")
	}
	if cfg.RateInterval <= 0 {
		cfg.RateInterval = time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	ticker := time.NewTicker(cfg.RateInterval)
	return &Client{cfg: cfg, limiter: ticker.C}, nil
}

// Search runs the query against each selected court database in order and
// returns live-tagged results. All databases failing is an error; the
// caller decides whether to fall back to the mock corpus.
func (c *Client) Search(ctx context.Context, q Query) ([]CaseResult, error) {
	dbs := selectDatabases(q.Courts)
	if len(dbs) == 0 {
		return nil, fmt.Errorf("no known court database among %v", q.Courts)
	}

	var results []CaseResult
	failed := 0
	var lastErr error
	for _, db := range dbs {
		if err := c.waitRateLimit(ctx); err != nil {
			return nil, err
		}
		body, err := c.fetchWithRetry(ctx, db, q)
		if err != nil {
			failed++
			lastErr = err
			log.Printf("research: database %s query failed: %v", db.Code, err)
			continue
		}
		results = append(results, parseCaseAnchors(body, db, c.cfg.BaseURL)...)
	}
	if failed == len(dbs) {
		return nil, fmt.Errorf("all court databases unavailable: %w", lastErr)
	}
	return results, nil
}

func (c *Client) waitRateLimit(ctx context.Context) error {
	c.limiterMu.Lock()
	defer c.limiterMu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.limiter:
		return nil
	}
}

func (c *Client) fetchWithRetry(ctx context.Context, db courtDB, q Query) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		body, code, retryAfter, err := c.fetchOnce(ctx, db, q)
		if err == nil {
			return body, nil
		}
		lastErr = err

		switch {
		case code == http.StatusTooManyRequests:
			if attempt == 3 {
				return "", lastErr
			}
			sleep := retryAfter
			if sleep <= 0 {
				sleep = backoffDelay(attempt)
			}
			if err := sleepCtx(ctx, sleep); err != nil {
				return "", err
			}
		case code >= 400 && code < 500:
			// Input errors never improve on retry.
			return "", lastErr
		case code >= 500 || isTimeoutError(err):
			if attempt == 3 {
				return "", lastErr
			}
			if err := sleepCtx(ctx, backoffDelay(attempt)); err != nil {
				return "", err
			}
		default:
			return "", lastErr
		}
	}
	return "", lastErr
}

func (c *Client) fetchOnce(ctx context.Context, db courtDB, q Query) (string, int, time.Duration, error) {
	u := fmt.Sprintf("%s/my/cases/%s/search?query=%s", c.cfg.BaseURL, db.Code, url.QueryEscape(q.Text))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", 0, 0, err
	}
	req.Header.Set("User-Agent", "legalops-research/1.0")

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", 0, 0, err
	}
	defer res.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<20))

	retryAfter := parseRetryAfter(res.Header.Get("Retry-After"))
	if res.StatusCode >= 400 {
		return "", res.StatusCode, retryAfter, fmt.Errorf("status code: %d", res.StatusCode)
	}
	return string(b), res.StatusCode, retryAfter, nil
}

func parseCaseAnchors(body string, db courtDB, baseURL string) []CaseResult {
	var out []CaseResult
	for _, m := range caseAnchorRe.FindAllStringSubmatch(body, -1) {
		href, code, yearStr, text := m[1], m[2], m[3], strings.TrimSpace(m[4])
		if code != db.Code || text == "" {
			continue
		}
		year, _ := strconv.Atoi(yearStr)

		citation := citationRe.FindString(text)
		title := strings.TrimSpace(citationRe.ReplaceAllString(text, ""))
		if citation == "" {
			// Anchor text without a neutral citation still identifies the
			// case by database and year.
			citation = fmt.Sprintf("[%d] %s", year, code)
		}
		out = append(out, CaseResult{
			Citation:   citation,
			Title:      title,
			Court:      db.Court,
			Year:       year,
			Binding:    db.Binding,
			URL:        baseURL + href,
			Provenance: ProvenanceLive,
		})
	}
	return out
}

func selectDatabases(courts []string) []courtDB {
	if len(courts) == 0 {
		return courtDatabases
	}
	want := map[string]bool{}
	for _, c := range courts {
		want[strings.ToUpper(strings.TrimSpace(c))] = true
	}
	var out []courtDB
	for _, db := range courtDatabases {
		if want[db.Code] {
			out = append(out, db)
		}
	}
	return out
}

func parseRetryAfter(v string) time.Duration {
	if strings.TrimSpace(v) == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err == nil {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func backoffDelay(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
