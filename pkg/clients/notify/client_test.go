package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanbit-systems/netstock/internal/config"
)

func TestSendDeliversEvent(t *testing.T) {
	var received Event
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(config.NotifyConfig{WebhookURL: server.URL})
	event := Event{
		Type:    "inventory.out_of_stock",
		Subject: "velcro",
		Message: "velcro at Wiley: quantity 0, eos=true",
		Time:    time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, client.Send(context.Background(), event))
	assert.Equal(t, event, received)
}

func TestSendReportsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(config.NotifyConfig{WebhookURL: server.URL})
	err := client.Send(context.Background(), Event{Type: "cablestock.reminder"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSendReportsTransportError(t *testing.T) {
	client := NewClient(config.NotifyConfig{WebhookURL: "http://127.0.0.1:1"})
	err := client.Send(context.Background(), Event{Type: "inventory.stale"})
	assert.Error(t, err)
}
