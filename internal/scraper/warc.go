package scraper

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultDataBase = "https://data.commoncrawl.org"

	// spacing between successive archive range fetches
	warcFetchInterval = 500 * time.Millisecond
)

// WARCLocator identifies exactly one archived page capture inside a bulk
// archive file: which file, and which byte range.
type WARCLocator struct {
	Filename string
	Offset   int64
	Length   int64
}

// Valid reports whether the locator points at actual bytes. Crawl-index rows
// occasionally lack storage metadata; those captures are simply unfetchable.
func (l WARCLocator) Valid() bool {
	return l.Filename != "" && l.Length > 0
}

// WARCFetcher retrieves archived page bodies from bulk archive storage via
// HTTP range requests.
type WARCFetcher struct {
	DataBase string
	Client   *http.Client
	limiter  *rate.Limiter
}

func NewWARCFetcher() *WARCFetcher {
	return &WARCFetcher{
		DataBase: defaultDataBase,
		Client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(warcFetchInterval), 1),
	}
}

// NewWARCFetcherFor builds a fetcher against a non-default storage endpoint
// with no politeness delay. Used by tests against local stub servers.
func NewWARCFetcherFor(dataBase string) *WARCFetcher {
	return &WARCFetcher{
		DataBase: dataBase,
		Client:   &http.Client{Timeout: 10 * time.Second},
		limiter:  rate.NewLimiter(rate.Inf, 1),
	}
}

// Fetch retrieves the archived HTML body for one capture. The bool result is
// false whenever the body is unavailable: missing locator, failed or
// non-partial-content response, or no response record in the container.
// Unavailable is not an error — the caller keeps the entry with its edition
// left unknown.
func (f *WARCFetcher) Fetch(ctx context.Context, url string, loc WARCLocator) (string, bool) {
	if !loc.Valid() {
		return "", false
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.DataBase+"/"+loc.Filename, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", loc.Offset, loc.Offset+loc.Length-1))

	resp, err := f.Client.Do(req)
	if err != nil {
		logf("warc fetch error (%s): %v", url, err)
		return "", false
	}
	defer resp.Body.Close()

	// a 200 means the server ignored the Range header and is streaming the
	// whole multi-gigabyte archive file; bail out
	if resp.StatusCode != http.StatusPartialContent {
		logf("warc fetch %s: status %d, want 206", url, resp.StatusCode)
		return "", false
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logf("warc fetch %s: read: %v", url, err)
		return "", false
	}

	body, err := extractResponseBody(raw)
	if err != nil {
		logf("warc decode %s: %v", url, err)
		return "", false
	}
	return body, true
}

// extractResponseBody decodes a WARC container and returns the HTML payload
// of its response record. Archive members are gzip-compressed per record;
// uncompressed containers are accepted too. The payload is decoded
// best-effort: undecodable bytes are replaced, never an error.
func extractResponseBody(raw []byte) (string, error) {
	var r io.Reader = bytes.NewReader(raw)
	if len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b {
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return "", fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		// a range capture is a single member; Multistream keeps the reader
		// from choking on trailing garbage past it
		gz.Multistream(false)
		r = gz
	}

	br := bufio.NewReader(r)
	for {
		recType, block, err := readWARCRecord(br)
		if err == io.EOF {
			return "", fmt.Errorf("no response record in container")
		}
		if err != nil {
			return "", err
		}
		if recType != "response" {
			continue
		}

		// block is a raw HTTP response: headers, blank line, body
		payload := block
		if i := bytes.Index(block, []byte("\r\n\r\n")); i >= 0 {
			payload = block[i+4:]
		}
		return strings.ToValidUTF8(string(payload), "�"), nil
	}
}

// readWARCRecord reads one WARC record: a header block terminated by a blank
// line, then Content-Length bytes of content, then the record separator.
func readWARCRecord(br *bufio.Reader) (recType string, block []byte, err error) {
	var contentLength int64 = -1

	// skip blank separator lines between records
	var line string
	for {
		line, err = br.ReadString('\n')
		if err != nil {
			return "", nil, err
		}
		if strings.TrimSpace(line) != "" {
			break
		}
	}
	if !strings.HasPrefix(line, "WARC/") {
		return "", nil, fmt.Errorf("not a WARC record: %q", strings.TrimSpace(line))
	}

	for {
		line, err = br.ReadString('\n')
		if err != nil {
			return "", nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break // end of header block
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(name) {
		case "warc-type":
			recType = value
		case "content-length":
			contentLength, _ = strconv.ParseInt(value, 10, 64)
		}
	}

	if contentLength < 0 {
		return "", nil, fmt.Errorf("record missing Content-Length")
	}

	block = make([]byte, contentLength)
	if _, err = io.ReadFull(br, block); err != nil {
		return "", nil, fmt.Errorf("record body: %w", err)
	}
	return recType, block, nil
}
