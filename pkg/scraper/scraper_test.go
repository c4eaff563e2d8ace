package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/chamber/internal/models"
	"github.com/xhad/chamber/pkg/fsutil"
)

func newTestFetcher(t *testing.T, baseURL string, retries int) *Fetcher {
	t.Helper()
	f, err := NewWithConfig(FetcherConfig{
		SourceDir:   t.TempDir(),
		BioURL:      baseURL + "/internet/deputados/biodeputado/index.html?nome=%s&leg=%d",
		DetailURL:   baseURL + "/internet/deputado/Dep_Detalhe.asp?id=%d",
		PhotoURL:    baseURL + "/internet/deputado/fotos/%s.jpg",
		Legislature: 53,
		RateLimit:   100,
		Retries:     retries,
		RetryWait:   time.Millisecond,
	})
	require.NoError(t, err)
	return f
}

func TestFetcherConfig(t *testing.T) {
	_, err := NewWithConfig(FetcherConfig{})
	assert.Error(t, err)

	f, err := NewWithConfig(FetcherConfig{SourceDir: "src"})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, f.config.Timeout)
	assert.Equal(t, 2.0, f.config.RateLimit)
}

func TestTarget(t *testing.T) {
	f := newTestFetcher(t, "http://camara.test", 0)
	entry := models.LegislatorIndexEntry{Nickname: "PERPÉTUA ALMEIDA", ChamberID: 520068}

	tests := []struct {
		kind string
		want string
	}{
		{KindBio, "http://camara.test/internet/deputados/biodeputado/index.html?nome=PERP%C9TUA+ALMEIDA&leg=53"},
		{KindDetail, "http://camara.test/internet/deputado/Dep_Detalhe.asp?id=520068"},
		{KindPhoto, "http://camara.test/internet/deputado/fotos/perpetuaalmeida.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			target, err := f.Target(tt.kind, entry)
			require.NoError(t, err)
			assert.Equal(t, Target{Kind: tt.kind, URL: tt.want}, target)
		})
	}

	_, err := f.Target("video", entry)
	assert.Error(t, err)
}

func TestFetchEntryMirrorsResponses(t *testing.T) {
	var gotNome atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "index.html"):
			gotNome.Store(r.URL.RawQuery)
			w.Write([]byte("<html>bio</html>"))
		case strings.HasSuffix(r.URL.Path, "Dep_Detalhe.asp"):
			w.Write([]byte("<html>detail " + r.URL.Query().Get("id") + "</html>"))
		case strings.HasSuffix(r.URL.Path, ".jpg"):
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write([]byte{0xff, 0xd8, 0xff})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	f := newTestFetcher(t, server.URL, 0)
	results := f.FetchEntry(context.Background(), models.LegislatorIndexEntry{Nickname: "PERPÉTUA ALMEIDA", ChamberID: 520068})
	require.Len(t, results, 3)

	for _, res := range results {
		require.NoError(t, res.Err, res.Target.URL)
		want, err := fsutil.MirrorPath(f.config.SourceDir, res.Target.URL)
		require.NoError(t, err)
		assert.Equal(t, want, res.Path)
		assert.FileExists(t, res.Path)
	}

	// the nickname travels as latin-1 bytes
	assert.Equal(t, "nome=PERP%C9TUA+ALMEIDA&leg=53", gotNome.Load())

	detail, err := os.ReadFile(results[1].Path)
	require.NoError(t, err)
	assert.Equal(t, "<html>detail 520068</html>", string(detail))
	assert.Equal(t, "Dep_Detalhe.asp?id=520068", filepath.Base(results[1].Path))

	photo, err := os.ReadFile(results[2].Path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, photo)
}

func TestFetchEntryContinuesAfterFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "index.html") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := newTestFetcher(t, server.URL, 0)
	results := f.FetchEntry(context.Background(), models.LegislatorIndexEntry{Nickname: "MARIA TESTE", ChamberID: 7})
	require.Len(t, results, 3)

	var fetchErr *FetchError
	require.True(t, errors.As(results[0].Err, &fetchErr))
	assert.Equal(t, KindBio, fetchErr.Kind)
	assert.Equal(t, 7, fetchErr.ChamberID)

	var statusErr *StatusError
	require.True(t, errors.As(results[0].Err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Empty(t, results[0].Path)

	assert.NoError(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestFetchEntryUnencodableNickname(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := newTestFetcher(t, server.URL, 0)
	results := f.FetchEntry(context.Background(), models.LegislatorIndexEntry{Nickname: "JOÃO D’ÁVILA", ChamberID: 42})
	require.Len(t, results, 3)

	var fetchErr *FetchError
	require.True(t, errors.As(results[0].Err, &fetchErr))
	assert.Equal(t, KindBio, fetchErr.Kind)
	assert.Empty(t, results[0].Path)
	assert.Equal(t, "fetch bio for JOÃO D’ÁVILA (chamber_id=42): cannot build URL: "+fetchErr.Cause.Error(), fetchErr.Error())

	// the detail page only needs the chamber id
	require.NoError(t, results[1].Err)
	assert.FileExists(t, results[1].Path)
	assert.Equal(t, "Dep_Detalhe.asp?id=42", filepath.Base(results[1].Path))

	assert.NoError(t, results[2].Err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestDownloadRetriesServerErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("finally"))
	}))
	defer server.Close()

	f := newTestFetcher(t, server.URL, 2)
	path, err := f.Download(context.Background(), server.URL+"/page.html")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "finally", string(data))
}

func TestRetriesAreRateLimited(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("finally"))
	}))
	defer server.Close()

	config := newTestFetcher(t, server.URL, 2).config
	config.RateLimit = 20
	f, err := NewWithConfig(config)
	require.NoError(t, err)

	start := time.Now()
	_, err = f.Download(context.Background(), server.URL+"/page.html")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))

	// burst of one, then one token every 50ms for each retry
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestDownloadWithoutRetriesFailsOnce(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := newTestFetcher(t, server.URL, 0)
	_, err := f.Download(context.Background(), server.URL+"/page.html")
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
