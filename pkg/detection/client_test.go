package detection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rickshaw-client/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzePostsJSON(t *testing.T) {
	var got dto.AnalyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Write([]byte(`{"success":true,"isRickshaw":true,"rickshawConfidence":97.5,"labels":["Rickshaw"],"labelConfidence":{"Rickshaw":97.5}}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), dto.AnalyzeRequest{ImageURL: "https://x/y.jpg"})
	require.NoError(t, err)

	assert.Equal(t, "https://x/y.jpg", got.ImageURL)
	assert.Empty(t, got.ImageBase64)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.IsRickshaw)
	assert.True(t, *resp.IsRickshaw)
	assert.Equal(t, 97.5, *resp.RickshawConfidence)
	assert.Equal(t, []string{"Rickshaw"}, resp.Labels)
}

func TestAnalyzeOmitsEmptyField(t *testing.T) {
	var raw map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), dto.AnalyzeRequest{ImageBase64: "data:image/png;base64,YWJj"})
	require.NoError(t, err)

	assert.Contains(t, raw, "imageBase64")
	assert.NotContains(t, raw, "imageUrl")
}

func TestAnalyzeStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), dto.AnalyzeRequest{ImageURL: "https://x"})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "HTTP error! status: 500", err.Error())
}

func TestAnalyzeMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), dto.AnalyzeRequest{ImageURL: "https://x"})
	assert.Error(t, err)
}

func TestAnalyzeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond).Analyze(context.Background(), dto.AnalyzeRequest{ImageURL: "https://x"})
	assert.Error(t, err)
}
