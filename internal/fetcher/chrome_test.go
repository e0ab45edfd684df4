package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// findBrowser skips the test when no Chrome build is installed
func findBrowser(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("no chromium or google-chrome on PATH")
	return ""
}

const latePage = `<html><head><title>late</title></head><body><h1>list</h1>
<script>
setTimeout(function () {
  fetch('/data').then(function (r) { return r.text(); }).then(function (t) {
    document.body.insertAdjacentHTML('beforeend', '<p id="late">' + t + '</p>');
  });
}, 150);
</script></body></html>`

const pollPage = `<html><body><h1>waiting</h1>
<script>fetch('/poll');</script></body></html>`

type browserSite struct {
	*httptest.Server
	mu        sync.Mutex
	userAgent string
	pollGone  chan struct{}
}

func newBrowserSite(t *testing.T) *browserSite {
	site := &browserSite{pollGone: make(chan struct{})}
	var once sync.Once

	mux := http.NewServeMux()
	mux.HandleFunc("/late", func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.userAgent = r.Header.Get("User-Agent")
		site.mu.Unlock()
		_, _ = fmt.Fprint(w, latePage)
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = fmt.Fprint(w, "loaded")
	})
	mux.HandleFunc("/hang", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, pollPage)
	})
	mux.HandleFunc("/poll", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			once.Do(func() { close(site.pollGone) })
		case <-time.After(15 * time.Second):
		}
	})

	site.Server = httptest.NewServer(mux)
	t.Cleanup(site.Close)
	return site
}

func newTestChrome(t *testing.T) *ChromeFetcher {
	return NewChromeFetcher(&Config{Headless: true, BrowserPath: findBrowser(t)}, zap.NewNop())
}

func TestChromeFetcher_WaitsForNetworkIdle(t *testing.T) {
	f := newTestChrome(t)
	site := newBrowserSite(t)

	doc, err := f.Fetch(context.Background(), site.URL+"/late", "chrome-test/1.0", 15*time.Second)
	require.NoError(t, err)

	assert.Equal(t, "list", doc.Find("h1").Text())
	assert.Equal(t, "loaded", doc.Find("p#late").Text())

	site.mu.Lock()
	defer site.mu.Unlock()
	assert.Equal(t, "chrome-test/1.0", site.userAgent)
}

func TestChromeFetcher_TimeoutWhenNetworkNeverSettles(t *testing.T) {
	f := newTestChrome(t)
	site := newBrowserSite(t)

	start := time.Now()
	_, err := f.Fetch(context.Background(), site.URL+"/hang", "ua", time.Second)
	require.Error(t, err)
	assert.True(t, IsTimeout(err), err.Error())

	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, site.URL+"/hang", te.URL)
	assert.Equal(t, time.Second, te.Timeout)
	assert.Less(t, time.Since(start), 12*time.Second)

	// The browser is gone once Fetch returns, so the pending poll is dropped.
	select {
	case <-site.pollGone:
	case <-time.After(5 * time.Second):
		t.Fatal("long poll still open after Fetch returned")
	}
}

func TestChromeFetcher_CallerCancelIsNotTimeout(t *testing.T) {
	f := newTestChrome(t)
	site := newBrowserSite(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-time.After(2 * time.Second)
		cancel()
	}()

	_, err := f.Fetch(ctx, site.URL+"/hang", "ua", 20*time.Second)
	require.Error(t, err)
	assert.False(t, IsTimeout(err))

	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
}
