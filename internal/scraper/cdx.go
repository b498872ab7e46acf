package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultIndexBase = "https://index.commoncrawl.org"

	// minimum spacing between successive index queries; the crawl index is a
	// shared public service and hammering it gets you blocked
	indexQueryInterval = 1500 * time.Millisecond
)

// CDXRecord is one crawl-index hit: a captured URL plus the coordinates of
// its archived bytes. Transient — it only exists to drive the WARC fetch and
// is never persisted.
type CDXRecord struct {
	URL      string `json:"url"`
	Status   string `json:"status"`
	Filename string `json:"filename"`
	Offset   string `json:"offset"`
	Length   string `json:"length"`
}

// Locator returns the WARC storage coordinates for the record.
func (r CDXRecord) Locator() WARCLocator {
	offset, _ := strconv.ParseInt(r.Offset, 10, 64)
	length, _ := strconv.ParseInt(r.Length, 10, 64)
	return WARCLocator{Filename: r.Filename, Offset: offset, Length: length}
}

// CDXClient queries a Common Crawl style CDX index.
type CDXClient struct {
	IndexBase string
	Client    *http.Client
	limiter   *rate.Limiter
}

func NewCDXClient() *CDXClient {
	return &CDXClient{
		IndexBase: defaultIndexBase,
		Client:    &http.Client{Timeout: 60 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(indexQueryInterval), 1),
	}
}

// NewCDXClientFor builds a client against a non-default index endpoint with
// no politeness delay. Used by tests against local stub servers.
func NewCDXClientFor(indexBase string) *CDXClient {
	return &CDXClient{
		IndexBase: indexBase,
		Client:    &http.Client{Timeout: 10 * time.Second},
		limiter:   rate.NewLimiter(rate.Inf, 1),
	}
}

// RecentCrawlIDs returns up to n crawl identifiers, newest first, from the
// index-of-indexes endpoint.
func (c *CDXClient) RecentCrawlIDs(ctx context.Context, n int) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.IndexBase+"/collinfo.json", nil)
	if err != nil {
		return nil, fmt.Errorf("collinfo: build request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("collinfo: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("collinfo: status %d", resp.StatusCode)
	}

	var crawls []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&crawls); err != nil {
		return nil, fmt.Errorf("collinfo: decode: %w", err)
	}

	// upstream list is newest-first already
	ids := make([]string, 0, n)
	for _, cr := range crawls {
		if len(ids) == n {
			break
		}
		if cr.ID != "" {
			ids = append(ids, cr.ID)
		}
	}
	return ids, nil
}

// Query returns the page records captured under urlPrefix in one crawl.
// Duplicate URLs are collapsed by the upstream index (collapse=urlkey) and
// only status-200 captures are requested. A 404 means the crawl has no data
// for this prefix and yields an empty result, not an error.
func (c *CDXClient) Query(ctx context.Context, crawlID, urlPrefix string, limit int) ([]CDXRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(fmt.Sprintf("%s/%s-index", c.IndexBase, crawlID))
	if err != nil {
		return nil, fmt.Errorf("cdx: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("url", urlPrefix+"*")
	q.Set("output", "json")
	q.Set("fl", "url,status,filename,offset,length")
	q.Set("filter", "status:200")
	q.Set("collapse", "urlkey")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("cdx: build request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cdx: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// crawl has no captures for this prefix
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cdx: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cdx: read body: %w", err)
	}

	// response is newline-delimited JSON, one record per line
	var records []CDXRecord
	for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var rec CDXRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			// malformed line: skip it, keep the rest
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
