package autohome

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"carcatalog/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

type testClient struct {
	*Client
	rec    *telemetry.Recorder
	sleeps []time.Duration
}

func newTestClient(t *testing.T, srv *httptest.Server) *testClient {
	t.Helper()

	rec := telemetry.NewRecorder()
	client, err := NewClient(Options{
		BrandsURL:    srv.URL + "/javascript/NewSpecCompare.js",
		SiteURL:      srv.URL,
		BuildID:      "test-build",
		ParamConfURL: srv.URL + "/car/param/getParamConf",
		Origin:       "https://www.autohome.com.cn",
		Referer:      "https://www.autohome.com.cn/",
		UserAgent:    "test-agent",
		Timeout:      5 * time.Second,
		PageDelayMin: time.Second,
		PageDelayMax: 3 * time.Second,
	}, rec)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(client.Close)

	tc := &testClient{Client: client, rec: rec}
	client.sleep = func(ctx context.Context, d time.Duration) error {
		tc.sleeps = append(tc.sleeps, d)
		return ctx.Err()
	}
	return tc
}

func TestNewClientPageBound(t *testing.T) {
	table := []struct {
		maxPages int
		expected int
	}{
		{maxPages: 0, expected: 10},
		{maxPages: 3, expected: 3},
		{maxPages: 50, expected: 10},
	}
	for _, row := range table {
		client, err := NewClient(Options{MaxPages: row.maxPages}, telemetry.NewRecorder())
		require.NoError(t, err)
		require.Equal(t, row.expected, client.opts.MaxPages)
		client.Close()
	}
}
