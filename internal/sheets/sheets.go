// Package sheets fetches publicly viewable hosted spreadsheets as CSV.
// A sheet URL is reduced to its document ID and optional tab ID, turned
// into the CSV export URL and fetched; the bytes feed the normal CSV
// ingestion path.
package sheets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// FetchReason classifies a fetch failure for user guidance. All reasons
// collapse to *FetchError programmatically.
type FetchReason string

const (
	ReasonMalformedURL FetchReason = "malformed-url"
	ReasonAccessDenied FetchReason = "access-denied"
	ReasonNetwork      FetchReason = "network"
)

// FetchError reports a failed remote sheet fetch.
type FetchError struct {
	Reason FetchReason
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch sheet %s (%s): %v", e.URL, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

var sheetPathPattern = regexp.MustCompile(`^/spreadsheets/d/([A-Za-z0-9_-]+)`)

// ParseURL extracts the document ID and optional tab (gid) from a hosted
// sheet URL. The gid may appear in the query string or the fragment.
func ParseURL(rawURL string) (docID, gid string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Host != "docs.google.com" {
		return "", "", fmt.Errorf("not a hosted sheet URL: %s", u.Host)
	}
	m := sheetPathPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return "", "", fmt.Errorf("no sheet identifier in path %q", u.Path)
	}
	docID = m[1]

	gid = u.Query().Get("gid")
	if gid == "" && u.Fragment != "" {
		frag, fragErr := url.ParseQuery(u.Fragment)
		if fragErr == nil {
			gid = frag.Get("gid")
		}
	}
	return docID, gid, nil
}

// ExportURL builds the CSV export URL for a sheet URL.
func ExportURL(rawURL string) (string, error) {
	docID, gid, err := ParseURL(rawURL)
	if err != nil {
		return "", err
	}
	export := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", docID)
	if gid != "" {
		export += "&gid=" + url.QueryEscape(gid)
	}
	return export, nil
}

// Client fetches remote sheets over HTTP.
type Client struct {
	http    *http.Client
	logger  *slog.Logger
	baseURL string // overridden in tests
}

// NewClient creates a Client with a bounded request timeout.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// FetchCSV downloads the CSV export of a sheet URL. It returns the bytes
// and a synthetic filename ("<docID>.csv") for the ingestion pipeline.
func (c *Client) FetchCSV(ctx context.Context, rawURL string) ([]byte, string, error) {
	docID, gid, err := ParseURL(rawURL)
	if err != nil {
		return nil, "", &FetchError{Reason: ReasonMalformedURL, URL: rawURL, Err: err}
	}

	exportURL := c.exportURL(docID, gid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, "", &FetchError{Reason: ReasonMalformedURL, URL: rawURL, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", &FetchError{Reason: ReasonNetwork, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, "", &FetchError{
			Reason: ReasonAccessDenied,
			URL:    rawURL,
			Err:    fmt.Errorf("sheet is not publicly viewable (status %d)", resp.StatusCode),
		}
	case resp.StatusCode != http.StatusOK:
		return nil, "", &FetchError{
			Reason: ReasonNetwork,
			URL:    rawURL,
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &FetchError{Reason: ReasonNetwork, URL: rawURL, Err: err}
	}

	c.logger.Debug("fetched remote sheet", "doc", docID, "bytes", len(body))
	return body, docID + ".csv", nil
}

func (c *Client) exportURL(docID, gid string) string {
	base := c.baseURL
	if base == "" {
		base = "https://docs.google.com"
	}
	u := fmt.Sprintf("%s/spreadsheets/d/%s/export?format=csv", strings.TrimRight(base, "/"), docID)
	if gid != "" {
		u += "&gid=" + url.QueryEscape(gid)
	}
	return u
}
