package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_repost_instagram/config"
)

func TestHTTPClient_TransfersOutliveAPITimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(&config.Config{
		HTTPClientTimeout: 50 * time.Millisecond,
		TransferTimeout:   5 * time.Second,
	})
	ctx := context.Background()

	_, err := client.PostForm(ctx, server.URL+"/user/id_from_username", url.Values{"username": {"alice"}})
	assert.Error(t, err)

	resp, err := client.PostBody(ctx, server.URL+"/album/upload", "application/octet-stream", strings.NewReader("payload"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/video/download", nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewHTTPClient_Defaults(t *testing.T) {
	client := NewHTTPClient(nil)
	assert.Equal(t, 60*time.Second, client.client.Timeout)
	assert.Equal(t, 30*time.Minute, client.transfer.Timeout)
	assert.Same(t, client.client.Transport, client.transfer.Transport)
}
