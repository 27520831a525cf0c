package completion

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justrach/cupertino-ink/conversation"
)

func testRequest(t *testing.T) Request {
	t.Helper()
	req, err := NewRequest(DefaultModel, []conversation.Message{
		conversation.NewTextMessage(conversation.RoleSystem, "sys"),
		conversation.NewTextMessage(conversation.RoleUser, "hi"),
	}, nil)
	require.NoError(t, err)
	return req
}

func TestClient_StreamEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"hey\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient(func(o *Options) {
		o.BaseURL = server.URL
		o.APIKey = "sk-test"
	})

	stream, err := client.Stream(context.Background(), testRequest(t))
	require.NoError(t, err)
	defer stream.Close()

	var text string
	for stream.Next(context.Background()) {
		text += stream.Chunk().ContentDelta
	}

	assert.NoError(t, stream.Err())
	assert.Equal(t, "hey", text)
	assert.Equal(t, FinishStop, stream.FinishReason())
}

func TestClient_ErrorStatusBecomesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": "model not loaded"}`)
	}))
	defer server.Close()

	client := NewClient(func(o *Options) { o.BaseURL = server.URL })

	_, err := client.Stream(context.Background(), testRequest(t))
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Contains(t, te.Body, "model not loaded")
}

func TestClient_ConnectionFailure(t *testing.T) {
	client := NewClient(func(o *Options) {
		// A closed port; the request never completes.
		o.BaseURL = "http://127.0.0.1:1/v1/chat/completions"
	})

	_, err := client.Stream(context.Background(), testRequest(t))
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
	assert.Error(t, te.Err)
}
