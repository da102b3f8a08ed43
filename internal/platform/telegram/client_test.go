package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okMessage = `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`

func newTestServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okMessage))
	}))
	t.Cleanup(srv.Close)
	return srv, &paths
}

func TestClient_SendMessage(t *testing.T) {
	srv, paths := newTestServer(t)

	client, err := NewClient("123:abc", bot.WithServerURL(srv.URL))
	require.NoError(t, err)

	require.NoError(t, client.SendMessage(context.Background(), 42, strings.Repeat("a", 5000)))
	require.Len(t, *paths, 1)
	assert.True(t, strings.HasSuffix((*paths)[0], "/sendMessage"), (*paths)[0])
}

func TestClient_SendDocument(t *testing.T) {
	srv, paths := newTestServer(t)

	client, err := NewClient("123:abc", bot.WithServerURL(srv.URL))
	require.NoError(t, err)

	require.NoError(t, client.SendDocument(context.Background(), 42, []byte("%PDF-1.4"), "report.pdf"))
	require.Len(t, *paths, 1)
	assert.True(t, strings.HasSuffix((*paths)[0], "/sendDocument"), (*paths)[0])
}

func TestCareTeamNotifier(t *testing.T) {
	srv, paths := newTestServer(t)

	client, err := NewClient("123:abc", bot.WithServerURL(srv.URL))
	require.NoError(t, err)

	n := NewCareTeamNotifier(client, -100)
	require.NoError(t, n.NotifyEmergency(context.Background(), uuid.New(), "I can't breathe", "Seek immediate emergency medical care"))
	assert.Len(t, *paths, 1)
}
