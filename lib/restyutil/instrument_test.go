package restyutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestInstrumentClientDumpsMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	client := resty.New()
	InstrumentClient(client, nil, out)

	res, err := client.R().SetHeader("X-Test", "1").Get(srv.URL + "/old")
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/new", FinalURL(res))

	contents, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	dump := string(contents)
	require.True(t, strings.HasPrefix(dump, "---- REQUEST ----"))
	require.Contains(t, dump, "X-Test: 1")
	require.Contains(t, dump, "200 "+srv.URL+"/new")
	require.Contains(t, dump, "hello")
}

func TestFormatHeadersSorted(t *testing.T) {
	headers := http.Header{}
	headers.Set("B", "2")
	headers.Set("A", "1")
	require.Equal(t, "A: 1\nB: 2", formatHeaders(headers))
	require.Equal(t, "", formatHeaders(http.Header{}))
}

func TestFormatRequestBody(t *testing.T) {
	get, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)
	require.Equal(t, "<NO BODY AVAILABLE>", formatRequestBody(get))

	// GetBody set but yielding nothing
	get.GetBody = func() (io.ReadCloser, error) { return nil, nil }
	get.Body = io.NopCloser(strings.NewReader(""))
	require.Equal(t, "<NO BODY AVAILABLE>", formatRequestBody(get))

	post, err := http.NewRequest(http.MethodPost, "http://example.com", strings.NewReader("seriesid=100"))
	require.NoError(t, err)
	require.Equal(t, "seriesid=100", formatRequestBody(post))
}
