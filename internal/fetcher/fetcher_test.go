package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasv/board-archiver/internal/metrics"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JitterMinMs = 0
	cfg.JitterIntervalMs = 0
	cfg.QuotaPerMinute = 6000
	cfg.Burst = 100
	cfg.MaxTimeSeconds = 2
	return cfg
}

func TestFetchJSONDecodesOKResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"boards":[{"board":"g","title":"Technology"}]}`))
	}))
	defer srv.Close()

	type resp struct {
		Boards []struct {
			Board string `json:"board"`
			Title string `json:"title"`
		} `json:"boards"`
	}

	f := New(testConfig(), metrics.NoopSink{})
	out, err := FetchJSON[resp](context.Background(), f, srv.URL)
	require.NoError(t, err)
	require.Len(t, out.Boards, 1)
	assert.Equal(t, "g", out.Boards[0].Board)
}

func TestFetchBytesReturnsErrNotFoundOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(testConfig(), metrics.NoopSink{})
	_, err := f.FetchBytes(context.Background(), srv.URL, "download")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchBytesExhaustsRetriesOn500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxTimeSeconds = 1
	f := New(cfg, metrics.NoopSink{})
	_, err := f.FetchBytes(context.Background(), srv.URL, "download")
	assert.ErrorIs(t, err, ErrTransient)
}

func TestClassifyMapsStatusCodes(t *testing.T) {
	ok := &http.Response{StatusCode: http.StatusOK}
	body, err := classify(ok, []byte("payload"), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), body)

	notFound := &http.Response{StatusCode: http.StatusNotFound}
	_, err = classify(notFound, nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	serverErr := &http.Response{StatusCode: http.StatusInternalServerError}
	_, err = classify(serverErr, nil, nil)
	assert.ErrorIs(t, err, ErrTransient)
}
