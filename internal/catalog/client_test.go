package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 1000, 5*time.Second)
}

func decodeBody(t *testing.T, r *http.Request) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestSearch_PostsKeywordAndDecodes(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, map[string]string{"keyword": "matrix"}, decodeBody(t, r))
		_, _ = w.Write([]byte(`[
			{"title":"The Matrix","image_src":"/m1.jpg","path":"/movie/1"},
			{"title":"The Matrix &amp; Reloaded","image_src":"","path":"/movie/2"}
		]`))
	})

	results, err := c.Search(context.Background(), "matrix")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, SearchResult{Title: "The Matrix", ImageRef: "/m1.jpg", Path: "/movie/1"}, results[0])
	assert.Equal(t, "The Matrix & Reloaded", results[1].Title)
}

func TestDetails_PostsPath(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details", r.URL.Path)
		assert.Equal(t, map[string]string{"path": "/movie/1"}, decodeBody(t, r))
		_, _ = w.Write([]byte(`{
			"info": {"runtime":"136 min","downloads":"1200","plot":"<p>Neo <b>wakes</b> up.</p>",
			         "genres":["Action","Sci-Fi"],"cast":["Keanu Reeves"]},
			"download_items": [{"file_name":"Matrix.1080p","counter":"42","download_key":"k1"}]
		}`))
	})

	details, err := c.Details(context.Background(), "/movie/1")
	require.NoError(t, err)
	assert.Equal(t, "136 min", details.Info.Runtime)
	assert.Equal(t, "1200", details.Info.DownloadCount)
	assert.Equal(t, "Neo wakes up.", details.Info.Synopsis)
	assert.Equal(t, []string{"Action", "Sci-Fi"}, details.Info.Genres)
	require.Len(t, details.DownloadItems, 1)
	assert.Equal(t, DownloadItem{FileName: "Matrix.1080p", SeederCount: "42", DownloadKey: "k1"}, details.DownloadItems[0])
}

func TestDownload_PostsKey(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/download", r.URL.Path)
		assert.Equal(t, map[string]string{"key": "k1"}, decodeBody(t, r))
		_, _ = w.Write([]byte(`{"files":[{"name":"matrix.mkv","file_path":"/dl/matrix.mkv","connections":"7"}]}`))
	})

	resp, err := c.Download(context.Background(), "k1")
	require.NoError(t, err)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, FileItem{Name: "matrix.mkv", FilePath: "/dl/matrix.mkv", ConnectionCount: "7"}, resp.Files[0])
}

func TestPost_NonSuccessStatus(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusBadGateway)
	})

	_, err := c.Search(context.Background(), "x")
	require.Error(t, err)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, "search", httpErr.Endpoint)
	assert.Equal(t, "backend exploded", httpErr.Body)
}

func TestPost_MalformedPayload(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"files": "not-a-list"}`))
	})

	_, err := c.Download(context.Background(), "k")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestPost_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Details(ctx, "/slow")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNew_TrimsBaseURL(t *testing.T) {
	c := New("http://example.com/api///", 0, 0)
	assert.Equal(t, "http://example.com/api", c.BaseURL())
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain   text\n here", "plain text here"},
		{"<p>One</p><p>Two</p>", "One Two"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"line<br>break", "line break"},
		{"<script>alert(1)</script>safe", "safe"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlainText(tt.in), "input %q", tt.in)
	}
}
