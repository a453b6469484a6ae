package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSend(t *testing.T) {
	t.Parallel()

	var got map[string]string
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram("token123", "42", zerolog.Nop())
	tg.baseURL = srv.URL
	tg.Send(context.Background(), "entered BTCUSDT long")

	assert.Equal(t, "/bottoken123/sendMessage", path)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "entered BTCUSDT long", got["text"])
}

func TestTelegramSend_ServerDownDoesNotPanic(t *testing.T) {
	t.Parallel()

	tg := NewTelegram("token", "42", zerolog.Nop())
	tg.baseURL = "http://127.0.0.1:1"

	assert.NotPanics(t, func() {
		tg.Send(context.Background(), "hello")
	})
}
