package guard

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PMArkive/PySteamAuth/community"
)

// TimeAligner tracks the difference between the local clock and Steam's
// server clock. Codes generated from a skewed clock are rejected, so
// every time-dependent operation should read Time from an aligner.
type TimeAligner struct {
	client  *http.Client
	baseURL string

	mu      sync.Mutex
	aligned bool
	diff    int64
}

func NewTimeAligner() *TimeAligner {
	return &TimeAligner{
		client:  new(http.Client),
		baseURL: community.APIBase,
	}
}

// SetBaseURL overrides the API base, mainly for tests and proxies.
func (a *TimeAligner) SetBaseURL(base string) {
	a.baseURL = base
}

// Align queries the server time once and caches the clock difference.
func (a *TimeAligner) Align() error {
	now := time.Now().Unix()
	body, err := community.WebRequest(a.client, http.MethodPost,
		a.baseURL+community.PathQueryTime, url.Values{"steamid": {"0"}}, nil)
	if err != nil {
		return err
	}

	var r struct {
		Response struct {
			ServerTime int64 `json:"server_time,string"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return err
	}

	a.mu.Lock()
	a.diff = r.Response.ServerTime - now
	a.aligned = true
	a.mu.Unlock()
	return nil
}

// Time returns the current Unix time adjusted to the server clock,
// aligning on first use. If alignment fails the local clock is used;
// the error surfaces on the next explicit Align call.
func (a *TimeAligner) Time() int64 {
	a.mu.Lock()
	aligned := a.aligned
	a.mu.Unlock()
	if !aligned {
		_ = a.Align()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return time.Now().Unix() + a.diff
}
