package server

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rabbithole/pkg/adapters/memory"
	"github.com/aretw0/rabbithole/pkg/core"
	"github.com/aretw0/rabbithole/pkg/macros"
	"github.com/aretw0/rabbithole/pkg/markup"
	"github.com/aretw0/rabbithole/pkg/render"
)

func newTestServer(t *testing.T) (*memory.Store, *Server, *httptest.Server) {
	t.Helper()
	store := memory.NewStore(memory.Config{})
	store.Put(core.NewRecord("Home", core.Fields{core.FieldText: "<<slider S label:More content:Hidden>>"}))

	s := New(Config{
		Store: store,
		Renderer: render.New(render.Config{
			Store:  store,
			Parser: markup.New(nil),
			Macros: macros.Default(),
		}),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return store, s, ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func click(t *testing.T, url string) (int, ClickResult) {
	t.Helper()
	resp, err := http.Post(url, "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result ClickResult
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	}
	return resp.StatusCode, result
}

func TestServer_Index(t *testing.T) {
	_, _, ts := newTestServer(t)

	code, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `<a href="/r/Home">Home</a>`)
}

func TestServer_Page(t *testing.T) {
	_, s, ts := newTestServer(t)

	code, body := get(t, ts.URL+"/r/Home")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `data-rh-role="slider-toggle">More</a>`)
	assert.Contains(t, body, `style="display:none"`)
	assert.Contains(t, body, "new EventSource")
	assert.Equal(t, 1, s.Pages())

	code, _ = get(t, ts.URL+"/r/Missing")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_ClickTogglesAndPersists(t *testing.T) {
	store, _, ts := newTestServer(t)

	code, result := click(t, ts.URL+"/click/Home?index=0")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, result.Consumed)
	assert.Contains(t, result.HTML, `style="display:block"`)
	assert.Contains(t, result.HTML, "Hidden")

	r, ok := store.Get("S")
	require.True(t, ok)
	assert.Equal(t, "open", r.Text())

	_, body := get(t, ts.URL+"/r/Home")
	assert.Contains(t, body, `style="display:block"`)
}

func TestServer_ClickErrors(t *testing.T) {
	_, _, ts := newTestServer(t)

	code, _ := click(t, ts.URL+"/click/Home?index=3")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = click(t, ts.URL+"/click/Home?index=x")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = click(t, ts.URL+"/click/Missing?index=0")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_EventsFollowStoreChanges(t *testing.T) {
	store, _, ts := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events/Home", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 8)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if data, ok := strings.CutPrefix(scanner.Text(), "data: "); ok {
				var payload map[string]string
				if json.Unmarshal([]byte(data), &payload) == nil {
					events <- payload["html"]
				}
			}
		}
	}()

	next := func() string {
		select {
		case html := <-events:
			return html
		case <-time.After(2 * time.Second):
			t.Fatal("no event received")
			return ""
		}
	}

	assert.Contains(t, next(), `style="display:none"`)

	// A change made outside any request, as a file watcher would.
	store.Put(core.NewRecord("S", core.Fields{core.FieldText: "open"}))
	assert.Contains(t, next(), "Hidden")
}

func TestServer_CloseEndsPages(t *testing.T) {
	_, s, ts := newTestServer(t)
	get(t, ts.URL+"/r/Home")

	s.Close()
	code, _ := get(t, ts.URL+"/r/Home")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestServer_Run(t *testing.T) {
	_, s, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("Run did not return")
	}
}
