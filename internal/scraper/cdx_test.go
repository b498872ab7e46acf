package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentCrawlIDs(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collinfo.json", r.URL.Path)
		fmt.Fprint(w, `[{"id":"CC-MAIN-2026-08"},{"id":"CC-MAIN-2026-04"},{"id":"CC-MAIN-2025-51"}]`)
	}))
	defer ts.Close()

	client := NewCDXClientFor(ts.URL)
	ids, err := client.RecentCrawlIDs(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"CC-MAIN-2026-08", "CC-MAIN-2026-04"}, ids)
}

func TestQuery(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/CC-MAIN-2026-08-index", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "www.dndbeyond.com/spells/*", q.Get("url"))
		assert.Equal(t, "json", q.Get("output"))
		assert.Equal(t, "status:200", q.Get("filter"))
		assert.Equal(t, "urlkey", q.Get("collapse"))
		assert.Equal(t, "5", q.Get("limit"))

		fmt.Fprintln(w, `{"url":"https://www.dndbeyond.com/spells/241-acid-splash","status":"200","filename":"warc/a.warc.gz","offset":"100","length":"2000"}`)
		fmt.Fprintln(w, `this line is not json`)
		fmt.Fprintln(w, `{"url":"https://www.dndbeyond.com/spells/","status":"200","filename":"warc/b.warc.gz","offset":"0","length":"500"}`)
	}))
	defer ts.Close()

	client := NewCDXClientFor(ts.URL)
	records, err := client.Query(context.Background(), "CC-MAIN-2026-08", "www.dndbeyond.com/spells/", 5)
	require.NoError(t, err)

	// malformed line skipped, valid lines kept
	require.Len(t, records, 2)
	assert.Equal(t, "https://www.dndbeyond.com/spells/241-acid-splash", records[0].URL)

	loc := records[0].Locator()
	assert.Equal(t, "warc/a.warc.gz", loc.Filename)
	assert.Equal(t, int64(100), loc.Offset)
	assert.Equal(t, int64(2000), loc.Length)
	assert.True(t, loc.Valid())
}

func TestQueryNoDataIsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	client := NewCDXClientFor(ts.URL)
	records, err := client.Query(context.Background(), "CC-MAIN-2020-01", "www.dndbeyond.com/spells/", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestQueryServerErrorIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	client := NewCDXClientFor(ts.URL)
	_, err := client.Query(context.Background(), "CC-MAIN-2026-08", "www.dndbeyond.com/spells/", 0)
	assert.Error(t, err)
}
