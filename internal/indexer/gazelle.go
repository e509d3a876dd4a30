package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/vmunix/resonarr/pkg/release"
)

// ErrAuthFailed means the tracker rejected the configured credentials.
var ErrAuthFailed = errors.New("indexer authentication failed")

// authCookieTTL bounds how long a login session is reused before a
// fresh login, independent of server-side expiry.
const authCookieTTL = 12 * time.Hour

type authEntry struct {
	cookie  string
	expires time.Time
}

// authCache holds login cookies per account so concurrent searches
// share one session. Entries are cleared on auth failure.
type authCache struct {
	mu      sync.Mutex
	entries map[string]authEntry
}

func newAuthCache() *authCache {
	return &authCache{entries: make(map[string]authEntry)}
}

func (c *authCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expires) {
		return "", false
	}
	return entry.cookie, true
}

func (c *authCache) set(key, cookie string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = authEntry{cookie: cookie, expires: time.Now().Add(authCookieTTL)}
}

func (c *authCache) clear(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// GazelleAdapter speaks the Gazelle JSON API used by private music
// trackers. Gazelle requires a logged-in session; the adapter keeps the
// session cookie in an auth cache and re-authenticates when it lapses.
type GazelleAdapter struct {
	id         int64
	name       string
	baseURL    string
	username   string
	password   string
	priority   int
	httpClient *http.Client
	auth       *authCache
	log        *slog.Logger
}

// NewGazelleAdapter creates an adapter for one Gazelle tracker.
func NewGazelleAdapter(id int64, name, baseURL, username, password string, priority int, log *slog.Logger) *GazelleAdapter {
	if log == nil {
		log = slog.Default()
	}
	return &GazelleAdapter{
		id:       id,
		name:     name,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
		priority: priority,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Login responds with a redirect carrying the session cookie.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		auth: newAuthCache(),
		log:  log.With("component", "gazelle", "indexer", name),
	}
}

func (a *GazelleAdapter) ID() int64                  { return a.id }
func (a *GazelleAdapter) Name() string               { return a.name }
func (a *GazelleAdapter) Protocol() release.Protocol { return release.ProtocolTorrent }
func (a *GazelleAdapter) Priority() int              { return a.priority }

// Fetch returns the tracker's most recent uploads.
func (a *GazelleAdapter) Fetch(ctx context.Context) ([]release.Info, error) {
	return a.Search(ctx, "")
}

// Search queries the tracker browse endpoint. An expired session is
// retried once with a fresh login.
func (a *GazelleAdapter) Search(ctx context.Context, query string) ([]release.Info, error) {
	results, err := a.browse(ctx, query)
	if errors.Is(err, ErrAuthFailed) {
		a.auth.clear(a.username)
		results, err = a.browse(ctx, query)
	}
	return results, err
}

// gazelleResponse is the browse API envelope.
type gazelleResponse struct {
	Status   string `json:"status"`
	Response struct {
		Results []gazelleGroup `json:"results"`
	} `json:"response"`
}

type gazelleGroup struct {
	GroupName string           `json:"groupName"`
	Artist    string           `json:"artist"`
	GroupYear int              `json:"groupYear"`
	Torrents  []gazelleTorrent `json:"torrents"`
}

type gazelleTorrent struct {
	TorrentID int64  `json:"torrentId"`
	Format    string `json:"format"`
	Encoding  string `json:"encoding"`
	Size      int64  `json:"size"`
	Seeders   int    `json:"seeders"`
	Leechers  int    `json:"leechers"`
	Time      string `json:"time"`
	HasLog    bool   `json:"hasLog"`
}

func (a *GazelleAdapter) browse(ctx context.Context, query string) ([]release.Info, error) {
	cookie, err := a.session(ctx)
	if err != nil {
		return nil, err
	}

	reqURL := a.baseURL + "/ajax.php?action=browse"
	if query != "" {
		reqURL += "&searchstr=" + url.QueryEscape(query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Cookie", cookie)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("browse request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var body gazelleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if body.Status != "success" {
		// Gazelle reports an expired session as a failure status, not 401.
		return nil, ErrAuthFailed
	}

	return a.convert(body.Response.Results), nil
}

// session returns a cached session cookie, logging in when needed.
func (a *GazelleAdapter) session(ctx context.Context) (string, error) {
	if cookie, ok := a.auth.get(a.username); ok {
		return cookie, nil
	}

	form := url.Values{}
	form.Set("username", a.username)
	form.Set("password", a.password)
	form.Set("keeplogged", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/login.php", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var session string
	for _, c := range resp.Cookies() {
		if strings.Contains(strings.ToLower(c.Name), "session") {
			session = c.Name + "=" + c.Value
			break
		}
	}
	if session == "" {
		return "", ErrAuthFailed
	}

	a.auth.set(a.username, session)
	a.log.Debug("logged in", "user", a.username)
	return session, nil
}

func (a *GazelleAdapter) convert(groups []gazelleGroup) []release.Info {
	var infos []release.Info
	for _, g := range groups {
		for _, t := range g.Torrents {
			title := fmt.Sprintf("%s - %s (%d) [%s %s]",
				g.Artist, g.GroupName, g.GroupYear, t.Format, t.Encoding)
			published, _ := time.Parse("2006-01-02 15:04:05", t.Time)

			infos = append(infos, release.Info{
				GUID:        fmt.Sprintf("%d", t.TorrentID),
				Title:       title,
				Size:        t.Size,
				PublishDate: published,
				IndexerID:   a.id,
				Indexer:     a.name,
				Protocol:    release.ProtocolTorrent,
				DownloadURL: fmt.Sprintf("%s/torrents.php?action=download&id=%d", a.baseURL, t.TorrentID),
				Seeders:     t.Seeders,
				Leechers:    t.Leechers,
			})
		}
	}
	return infos
}
