// Package confirmation fetches and resolves pending trade and market
// confirmations through the mobileconf endpoints.
package confirmation

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/PMArkive/PySteamAuth/community"
	"github.com/PMArkive/PySteamAuth/guard"
	"github.com/PMArkive/PySteamAuth/session"
)

// Client talks to the mobileconf endpoints on behalf of one account.
// The session is shared with the rest of the app; a refresher, when
// installed, runs before each operation and its failure is tolerated
// (the vendor accepts briefly stale sessions, and an aborted fetch
// would be worse). Operations serialize on an internal mutex, so one
// Client may be shared between a background accept loop and
// interactive calls.
type Client struct {
	client  *http.Client
	baseURL string

	session        *session.Session
	identitySecret string
	deviceID       string

	timeNow func() int64
	refresh func() error
	logger  *zap.Logger

	// mu guards the whole request cycle: applyCookies swaps the jar
	// and the refresher rewrites session fields the requests read.
	mu sync.Mutex
}

func NewClient(sess *session.Session, identitySecret, deviceID string, aligner *guard.TimeAligner) *Client {
	return &Client{
		client:         new(http.Client),
		baseURL:        community.CommunityBase,
		session:        sess,
		identitySecret: identitySecret,
		deviceID:       deviceID,
		timeNow:        aligner.Time,
		logger:         zap.NewNop(),
	}
}

// SetBaseURL overrides the community base, mainly for tests and proxies.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

func (c *Client) SetProxy(proxy string) error {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return err
	}
	c.client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	return nil
}

// SetRefresher installs the session refresh hook run before fetch and
// resolve calls.
func (c *Client) SetRefresher(refresh func() error) {
	c.refresh = refresh
}

func (c *Client) SetLogger(logger *zap.Logger) {
	c.logger = logger
}

// Fetch lists the pending confirmations in server order. An explicit
// "Nothing to confirm" page yields an empty slice, not an error.
func (c *Client) Fetch() ([]*Confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetch()
}

// Resolve accepts or denies a set of confirmations. Zero confirmations
// succeed without touching the network; exactly one goes through the
// single-item endpoint; more share one batched request. The split is
// what the vendor endpoints require, not an optimization to drop.
func (c *Client) Resolve(confs []*Confirmation, decision Decision) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolve(confs, decision)
}

func (c *Client) fetch() ([]*Confirmation, error) {
	c.refreshSession()

	query, err := c.tagQuery(TagList)
	if err != nil {
		return nil, err
	}
	body, err := c.get(community.PathMobileConf + "/conf?" + query)
	if err != nil {
		return nil, err
	}
	return parseListing(body)
}

func (c *Client) resolve(confs []*Confirmation, decision Decision) error {
	if len(confs) == 0 {
		return nil
	}
	c.refreshSession()

	if len(confs) == 1 {
		return c.resolveSingle(confs[0], decision)
	}
	return c.resolveBatch(confs, decision)
}

// Accept resolves a single confirmation with Allow.
func (c *Client) Accept(conf *Confirmation) error {
	return c.Resolve([]*Confirmation{conf}, Allow)
}

// Deny resolves a single confirmation with Deny.
func (c *Client) Deny(conf *Confirmation) error {
	return c.Resolve([]*Confirmation{conf}, Deny)
}

// AcceptAll fetches and accepts every confirmation in the requested
// categories. It reports true when nothing matched or everything was
// accepted.
func (c *Client) AcceptAll(trades, market, others bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	confs, err := c.fetch()
	if err != nil {
		return false, err
	}

	matched := make([]*Confirmation, 0, len(confs))
	for _, conf := range confs {
		switch conf.Category() {
		case CategoryTrade:
			if trades {
				matched = append(matched, conf)
			}
		case CategoryMarket:
			if market {
				matched = append(matched, conf)
			}
		default:
			if others {
				matched = append(matched, conf)
			}
		}
	}
	if len(matched) == 0 {
		return true, nil
	}
	if err := c.resolve(matched, Allow); err != nil {
		return false, err
	}
	return true, nil
}

// OfferID extracts the trade offer id behind a trade confirmation from
// its details page.
func (c *Client) OfferID(conf *Confirmation) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	query, err := c.tagQuery(TagDetails)
	if err != nil {
		return 0, err
	}
	body, err := c.get(community.PathMobileConf + "/detailspage/" + conf.ID + "?" + query)
	if err != nil {
		return 0, err
	}
	return parseOfferID(body)
}

func (c *Client) resolveSingle(conf *Confirmation, decision Decision) error {
	query, err := c.tagQuery(string(decision))
	if err != nil {
		return err
	}
	query += "&op=" + string(decision) +
		"&cid=" + url.QueryEscape(conf.ID) +
		"&ck=" + url.QueryEscape(conf.Key)

	body, err := c.get(community.PathMobileConf + "/ajaxop?" + query)
	if err != nil {
		return err
	}
	return decodeResolveResponse(body)
}

func (c *Client) resolveBatch(confs []*Confirmation, decision Decision) error {
	query, err := c.tagQuery(string(decision))
	if err != nil {
		return err
	}

	var form strings.Builder
	form.WriteString("op=" + string(decision) + "&" + query)
	for _, conf := range confs {
		form.WriteString("&cid%5B%5D=" + url.QueryEscape(conf.ID))
		form.WriteString("&ck%5B%5D=" + url.QueryEscape(conf.Key))
	}

	body, err := c.post(community.PathMobileConf+"/multiajaxop", form.String())
	if err != nil {
		return err
	}
	return decodeResolveResponse(body)
}

// tagQuery builds the signed query parameters shared by every
// mobileconf call. The key from guard.ConfirmationKey is already
// percent-encoded, which is why the string is assembled by hand
// instead of url.Values.
func (c *Client) tagQuery(tag string) (string, error) {
	t := c.timeNow()
	key, err := guard.ConfirmationKey(c.identitySecret, tag, t)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("p=%s&a=%s&k=%s&t=%d&m=android&tag=%s",
		url.QueryEscape(c.deviceID),
		strconv.FormatUint(c.session.SteamID, 10),
		key,
		t,
		url.QueryEscape(tag),
	), nil
}

func (c *Client) refreshSession() {
	if c.refresh == nil {
		return
	}
	if err := c.refresh(); err != nil {
		// Stale-session tolerance: proceed with the previous session
		// rather than aborting; the server may still accept it.
		c.logger.Warn("session refresh failed, continuing with previous session", zap.Error(err))
	}
}

func (c *Client) get(path string) ([]byte, error) {
	if err := c.applyCookies(); err != nil {
		return nil, err
	}
	return community.WebRequest(c.client, http.MethodGet, c.baseURL+path, nil, nil)
}

func (c *Client) post(path, form string) ([]byte, error) {
	if err := c.applyCookies(); err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, strings.NewReader(form))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("User-Agent", community.MobileUserAgent)
	req.Header.Set("Referer", community.CommunityBase)
	req.Header.Set("Accept", "*/*")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", community.ErrConnection, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &community.StatusError{Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// applyCookies rebuilds the jar from the session before each request,
// since a refresh may have rewritten the login cookies in place.
func (c *Client) applyCookies() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	cookies := c.session.Cookies()
	if base.Host != "steamcommunity.com" {
		// Tests and proxies: drop the fixed domain so the jar accepts
		// the cookies for whatever host serves them.
		for _, cookie := range cookies {
			cookie.Domain = ""
			cookie.Secure = false
		}
	}
	jar.SetCookies(base, cookies)
	c.client.Jar = jar
	return nil
}

func decodeResolveResponse(body []byte) error {
	var r struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("%w: %v", community.ErrMalformedResponse, err)
	}
	if !r.Success {
		if r.Message != "" {
			return fmt.Errorf("%w: %s", ErrRejected, r.Message)
		}
		return ErrRejected
	}
	return nil
}
