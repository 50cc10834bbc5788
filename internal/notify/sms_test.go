package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontdesk-ai/platform/pkg/logging"
)

func TestHTTPSMSSenderPostsPayload(t *testing.T) {
	var gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewHTTPSMSSender(HTTPSMSConfig{
		Endpoint: srv.URL,
		APIKey:   "test-key",
		From:     "5550001111",
	}, srv.Client(), logging.Default())
	require.NotNil(t, sender)

	require.NoError(t, sender.SendSMS(context.Background(), "5559998888", "new booking"))
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Contains(t, string(gotBody), `"to":"5559998888"`)
	assert.Contains(t, string(gotBody), `"from":"5550001111"`)
}

func TestHTTPSMSSenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	sender := NewHTTPSMSSender(HTTPSMSConfig{Endpoint: srv.URL, APIKey: "k"}, srv.Client(), logging.Default())
	assert.Error(t, sender.SendSMS(context.Background(), "5559998888", "hi"))
}

func TestHTTPSMSSenderRequiresKey(t *testing.T) {
	assert.Nil(t, NewHTTPSMSSender(HTTPSMSConfig{}, nil, logging.Default()))
}

func TestStubSMSSender(t *testing.T) {
	stub := NewStubSMSSender(logging.Default())
	assert.NoError(t, stub.SendSMS(context.Background(), "5551234567", "anything"))
}
