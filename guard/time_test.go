package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PMArkive/PySteamAuth/community"
)

func TestTimeAlignerAlign(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, community.PathQueryTime, r.URL.Path)
		w.Write([]byte(`{"response":{"server_time":"1600000100"}}`))
	}))
	defer srv.Close()

	a := NewTimeAligner()
	a.SetBaseURL(srv.URL)
	require.NoError(t, a.Align())

	// The diff was computed against the fake server's fixed time, so
	// Time() reads as the server clock for a few seconds after Align.
	require.InDelta(t, 1600000100, a.Time(), 5)
}

func TestTimeAlignerFallsBackToLocalClock(t *testing.T) {
	a := NewTimeAligner()
	a.SetBaseURL("http://127.0.0.1:1") // nothing listens here

	got := a.Time()
	require.InDelta(t, time.Now().Unix(), got, 5)
}
