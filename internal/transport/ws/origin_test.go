package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/partylobby/internal/dependencies/mocks"
	"github.com/mcoot/partylobby/internal/testutil"
)

func TestOriginPolicy_Check(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    bool
	}{
		{"no origin header", nil, "", true},
		{"same origin", nil, "http://lobby.test", true},
		{"same origin ignores case", nil, "http://LOBBY.test", true},
		{"foreign origin refused by default", nil, "https://evil.test", false},
		{"listed origin", []string{"http://localhost:5173"}, "http://localhost:5173", true},
		{"listed origin with trailing slash", []string{"http://localhost:5173/"}, "http://localhost:5173", true},
		{"listed origin wrong port", []string{"http://localhost:5173"}, "http://localhost:3000", false},
		{"wildcard", []string{"*"}, "https://anywhere.test", true},
		{"blank entries ignored", []string{"", " "}, "https://evil.test", false},
		{"unparseable origin", []string{"http://localhost:5173"}, "://bad", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://lobby.test/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, NewOriginPolicy(tt.origins).Check(r))
		})
	}
}

func TestServeWS_EnforcesOriginPolicy(t *testing.T) {
	handler := &recordingHandler{}
	hub := NewHub(HubConfig{
		ID:       "TEST01",
		Registry: NewRegistry(),
		Handler:  handler,
		Clock:    mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
		Random:   mocks.NewMockRandom(),
		Origins:  NewOriginPolicy([]string{"http://localhost:5173"}),
		Logger:   testutil.NopLogger(),
	})
	go hub.Run(context.Background())
	defer hub.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(w, r, hub)
	}))
	defer server.Close()
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.test"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, hub.ClientCount())

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://localhost:5173"}})
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, waitFor, tick)
}
