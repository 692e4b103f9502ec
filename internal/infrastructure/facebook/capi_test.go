package facebook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderform-backend/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *CAPIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewCAPIClient("pixel-1", "token-1", "v19.0")
	require.NotNil(t, c)
	c.baseURL = srv.URL
	c.httpClient = srv.Client()
	c.retryDelay = time.Millisecond
	return c
}

func TestNewCAPIClient_DisabledWithoutCredentials(t *testing.T) {
	c := NewCAPIClient("", "token", "v19.0")
	assert.Nil(t, c)

	// nil client is a no-op
	assert.NoError(t, c.SendEvent(context.Background(), Event{EventName: "Lead"}))
	c.SendLeadEvent(context.Background(), domain.Order{}, "id", domain.ClientMeta{})
	c.Wait()
}

func TestHashSHA256_Normalizes(t *testing.T) {
	assert.Equal(t, HashSHA256("bd"), HashSHA256("  BD "))
	assert.Empty(t, HashSHA256(""))
	assert.Len(t, HashSHA256("8801712345678"), 64)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "8801712345678", NormalizePhone("01712345678"))
	assert.Equal(t, "12345", NormalizePhone("12345"))
}

func TestSendEvent_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.SendEvent(context.Background(), Event{EventName: "Lead"}))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendEvent_DoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid parameter"}}`))
	})

	err := c.SendEvent(context.Background(), Event{EventName: "Lead"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid parameter")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSendLeadEvent_HashesPII(t *testing.T) {
	received := make(chan EventPayload, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v19.0/pixel-1/events", r.URL.Path)
		assert.Equal(t, "token-1", r.URL.Query().Get("access_token"))

		raw, _ := io.ReadAll(r.Body)
		var p EventPayload
		assert.NoError(t, json.Unmarshal(raw, &p))
		received <- p
		w.WriteHeader(http.StatusOK)
	})

	order := domain.Order{Name: "Rahim Uddin", Mobile: "01712345678", Address: "Dhaka", Product: "YN Rice Cooker 1.8L"}
	c.SendLeadEvent(context.Background(), order, "evt-1", domain.ClientMeta{IP: "203.0.113.9", UserAgent: "test"})
	c.Wait()

	p := <-received
	require.Len(t, p.Data, 1)
	ev := p.Data[0]
	assert.Equal(t, "Lead", ev.EventName)
	assert.Equal(t, "evt-1", ev.EventID)
	assert.Equal(t, HashSHA256("8801712345678"), ev.UserData.Phone)
	assert.Equal(t, HashSHA256("rahim"), ev.UserData.FirstName)
	assert.NotContains(t, ev.UserData.Phone, "01712345678")
	assert.Equal(t, "203.0.113.9", ev.UserData.ClientIP)
	assert.Equal(t, "YN Rice Cooker 1.8L", ev.CustomData.ContentName)
}
