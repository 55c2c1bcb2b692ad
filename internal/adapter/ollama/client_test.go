package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headerContentType = "Content-Type"

func testClient(baseURL string) *Client {
	return NewClient(baseURL+"/", "energy_reporter2", 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Narrate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get(headerContentType))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "energy_reporter2", req.Model)
		assert.Equal(t, "the prompt", req.Prompt)
		assert.False(t, req.Stream)

		w.Header().Set(headerContentType, "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(generateResponse{Response: "  1. Yesterday you used 30 kWh.\n", Done: true}))
	}))
	defer srv.Close()

	text, err := testClient(srv.URL).Narrate(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "1. Yesterday you used 30 kWh.", text)
}

func TestClient_Narrate_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Narrate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestClient_Narrate_ErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"out of memory"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Narrate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestClient_Narrate_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":"   ","done":true}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Narrate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClient_Narrate_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Narrate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Narrate_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testClient(srv.URL).Narrate(ctx, "p")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
