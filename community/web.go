package community

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// WebRequest performs a GET or form-encoded POST against a Steam endpoint
// and returns the response body. Transport failures are wrapped in
// ErrConnection; non-200 statuses are errors.
func WebRequest(client *http.Client, method, queryURL string, params url.Values, headers map[string]string) ([]byte, error) {
	var req *http.Request
	var err error

	switch method {
	case http.MethodGet:
		if params != nil {
			sep := "?"
			if strings.Contains(queryURL, "?") {
				sep = "&"
			}
			queryURL = queryURL + sep + params.Encode()
		}
		req, err = http.NewRequest(method, queryURL, nil)
		if err != nil {
			return nil, err
		}
	case http.MethodPost:
		if params == nil {
			params = url.Values{}
		}
		req, err = http.NewRequest(method, queryURL, strings.NewReader(params.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	default:
		return nil, fmt.Errorf("unsupported method %q", method)
	}

	req.Header.Set("Accept", "text/javascript, text/html, application/xml, text/xml, */*")
	req.Header.Set("User-Agent", MobileUserAgent)
	req.Header.Set("Referer", CommunityBase)
	for key, val := range headers {
		req.Header.Set(key, val)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// MobileRequest is WebRequest with the mobile oauth referer, which the
// login and two-factor endpoints require.
func MobileRequest(client *http.Client, method, queryURL string, params url.Values, headers map[string]string) ([]byte, error) {
	merged := map[string]string{"Referer": MobileLoginReferer}
	for key, val := range headers {
		merged[key] = val
	}
	return WebRequest(client, method, queryURL, params, merged)
}
