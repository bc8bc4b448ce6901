package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmbeddingTestServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestEmbed(t *testing.T) {
	server := newEmbeddingTestServer(t, `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2]}],"model":"text-embedding-3-small"}`)
	defer server.Close()

	svc := NewOpenAIService(server.URL, "test-key", "", "")
	vector, err := svc.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vector)
}

func TestEmbedNoData(t *testing.T) {
	server := newEmbeddingTestServer(t, `{"object":"list","data":[],"model":"text-embedding-3-small"}`)
	defer server.Close()

	svc := NewOpenAIService(server.URL, "test-key", "", "")
	_, err := svc.Embed(context.Background(), "hello")

	assert.Error(t, err)
}
