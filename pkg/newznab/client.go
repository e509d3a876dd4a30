// Package newznab implements the Newznab/Torznab indexer API protocol.
package newznab

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Newznab audio categories.
const (
	CategoryAudio          = 3000
	CategoryAudioMP3       = 3010
	CategoryAudioVideo     = 3020
	CategoryAudioAudiobook = 3030
	CategoryAudioLossless  = 3040
)

// Client is a Newznab API client for a single indexer.
type Client struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// Release represents a search result from a Newznab indexer.
type Release struct {
	Title       string
	GUID        string
	DownloadURL string
	Size        int64
	PublishDate time.Time
	Indexer     string
	Seeders     int
	Peers       int
	InfoHash    string
}

// IsTorrent reports whether the item carried torznab torrent attributes.
func (r Release) IsTorrent() bool {
	return r.InfoHash != "" || r.Seeders > 0 || r.Peers > 0
}

// NewClient creates a new Newznab client.
func NewClient(name, baseURL, apiKey string, log *slog.Logger) *Client {
	var clientLog *slog.Logger
	if log != nil {
		clientLog = log.With("component", "newznab", "indexer", name)
	}
	return &Client{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: clientLog,
	}
}

// Name returns the indexer name.
func (c *Client) Name() string {
	return c.name
}

// URL returns the indexer base URL.
func (c *Client) URL() string {
	return c.baseURL
}

// Caps performs a capabilities request to test connectivity.
func (c *Client) Caps(ctx context.Context) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("t", "caps")
	q.Set("apikey", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("caps request failed: %d", resp.StatusCode)
	}
	return nil
}

// Newznab RSS response structures
type rssResponse struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title     string        `xml:"title"`
	GUID      string        `xml:"guid"`
	Link      string        `xml:"link"`
	Size      int64         `xml:"size"`
	PubDate   string        `xml:"pubDate"`
	Enclosure rssEnclosure  `xml:"enclosure"`
	Attrs     []newznabAttr `xml:"attr"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
}

type newznabAttr struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Search queries the indexer for releases.
func (c *Client) Search(ctx context.Context, query string, categories []int) ([]Release, error) {
	return c.SearchWithOffset(ctx, query, categories, 100, 0)
}

// RSS fetches the latest releases without a query.
func (c *Client) RSS(ctx context.Context, categories []int) ([]Release, error) {
	return c.SearchWithOffset(ctx, "", categories, 100, 0)
}

// SearchWithOffset queries the indexer with pagination support.
func (c *Client) SearchWithOffset(ctx context.Context, query string, categories []int, limit, offset int) ([]Release, error) {
	start := time.Now()

	reqURL, err := url.Parse(c.baseURL + "/api")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("t", "search")
	if query != "" {
		params.Set("q", query)
	}
	if len(categories) > 0 {
		cats := make([]string, len(categories))
		for i, cat := range categories {
			cats[i] = strconv.Itoa(cat)
		}
		params.Set("cat", strings.Join(cats, ","))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var rss rssResponse
	if err := xml.NewDecoder(resp.Body).Decode(&rss); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	releases := make([]Release, 0, len(rss.Channel.Items))
	for _, item := range rss.Channel.Items {
		releases = append(releases, c.convertItem(item))
	}

	if c.log != nil {
		c.log.Debug("search complete", "query", query, "results", len(releases), "duration_ms", time.Since(start).Milliseconds())
	}

	return releases, nil
}

// convertItem maps one RSS item to a Release, folding in newznab and
// torznab attributes.
func (c *Client) convertItem(item rssItem) Release {
	rel := Release{
		Title:       item.Title,
		GUID:        item.GUID,
		DownloadURL: item.Link,
		Indexer:     c.name,
	}

	// Size from enclosure or item
	if item.Enclosure.Length > 0 {
		rel.Size = item.Enclosure.Length
	} else if item.Size > 0 {
		rel.Size = item.Size
	}

	// Download URL from enclosure if link is empty
	if rel.DownloadURL == "" && item.Enclosure.URL != "" {
		rel.DownloadURL = item.Enclosure.URL
	}

	// Parse publish date (try multiple formats)
	if item.PubDate != "" {
		for _, format := range []string{
			time.RFC1123Z,
			"Mon, 02 Jan 2006 15:04:05 -0700",
			"Mon, 02 Jan 2006 15:04:05 MST",
			time.RFC1123,
		} {
			if t, err := time.Parse(format, item.PubDate); err == nil {
				rel.PublishDate = t
				break
			}
		}
	}

	for _, attr := range item.Attrs {
		switch attr.Name {
		case "size":
			if rel.Size == 0 {
				rel.Size, _ = strconv.ParseInt(attr.Value, 10, 64)
			}
		case "seeders":
			rel.Seeders, _ = strconv.Atoi(attr.Value)
		case "peers":
			rel.Peers, _ = strconv.Atoi(attr.Value)
		case "infohash":
			rel.InfoHash = attr.Value
		}
	}

	return rel
}
