package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientOptions{
		BaseUrl: server.URL,
		Token:   "test-token",
	})
}

func TestFetchSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "https://sec.gov/example-10k.htm", r.URL.Query().Get("url"))
		require.Equal(t, "1A", r.URL.Query().Get("item"))
		require.Equal(t, "text", r.URL.Query().Get("type"))
		require.Equal(t, "test-token", r.URL.Query().Get("token"))
		w.Write([]byte("Risk factors body"))
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	res, err := client.Fetch(ctx, "https://sec.gov/example-10k.htm", "1A")
	require.NoError(t, err)
	require.True(t, res.Success())
	require.Equal(t, "Risk factors body", res.Content)
	require.Equal(t, len("Risk factors body"), res.ContentLength)
}

func TestFetchUpstreamFailures(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		code      ErrorCode
		transient bool
	}{
		{"not found", http.StatusNotFound, ErrorNotFound, false},
		{"rate limited", http.StatusTooManyRequests, ErrorRateLimited, false},
		{"bad section", http.StatusBadRequest, ErrorUnsupportedSection, false},
		{"bad token", http.StatusUnauthorized, ErrorUpstream, false},
		{"forbidden", http.StatusForbidden, ErrorUpstream, false},
		{"server error", http.StatusBadGateway, ErrorUpstream, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
			})

			res, err := client.Fetch(context.Background(), "https://sec.gov/example-10k.htm", "7")
			require.NoError(t, err)
			require.False(t, res.Success())
			require.Equal(t, c.code, res.Code)
			require.Equal(t, c.transient, res.Transient)
			require.NotEmpty(t, res.Message)
		})
	}
}

func TestFetchNetworkFailure(t *testing.T) {
	client := NewClient(ClientOptions{
		// nothing is listening here
		BaseUrl: "http://127.0.0.1:1",
	})

	res, err := client.Fetch(context.Background(), "https://sec.gov/example-10k.htm", "1")
	require.NoError(t, err)
	require.Equal(t, ErrorUpstream, res.Code)
	require.True(t, res.Transient)
}

func TestFetchBadArguments(t *testing.T) {
	client := NewClient(ClientOptions{})

	_, err := client.Fetch(context.Background(), "", "1")
	require.Error(t, err)
	_, err = client.Fetch(context.Background(), "https://sec.gov/example-10k.htm", " ")
	require.Error(t, err)
}
