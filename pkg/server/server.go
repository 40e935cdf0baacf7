// Package server hosts live documents over HTTP. Pages render records, label
// clicks come back as POST requests and refreshed markup is pushed to the
// browser with server-sent events.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/rabbithole/pkg/core"
	"github.com/aretw0/rabbithole/pkg/macros/slider"
	"github.com/aretw0/rabbithole/pkg/render"
)

// ShutdownTimeout bounds the graceful shutdown in Run.
const ShutdownTimeout = 5 * time.Second

// Config holds the server collaborators.
type Config struct {
	Store    core.Store
	Renderer *render.Renderer
	Logger   *slog.Logger
}

// Server serves one live document per requested title.
type Server struct {
	store    core.Store
	renderer *render.Renderer
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	pages map[string]*page
}

// New creates a server. Close releases its documents.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		store:    config.Store,
		renderer: config.Renderer,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		pages:    make(map[string]*page),
	}
}

// Handler returns the HTTP routes:
//
//	GET  /                  index of titles
//	GET  /r/{title}         rendered page
//	POST /click/{title}     click the slider label at ?index=N
//	GET  /events/{title}    server-sent "refresh" events with the page markup
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /r/{title...}", s.handlePage)
	mux.HandleFunc("POST /click/{title...}", s.handleClick)
	mux.HandleFunc("GET /events/{title...}", s.handleEvents)
	return mux
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		// Event streams end with their pages; close them first so Shutdown
		// does not wait on them.
		s.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close stops every page goroutine and closes their documents.
func (s *Server) Close() {
	s.cancel()
}

// Pages returns the number of live pages.
func (s *Server) Pages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

func (s *Server) page(title string) (*page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return nil, errPageClosed
	}
	if p, ok := s.pages[title]; ok {
		return p, nil
	}

	p := newPage(title, s.logger)
	doc, err := s.renderer.Render(title, render.WithChangeHandler(p.enqueue))
	if err != nil {
		return nil, err
	}
	p.doc = doc
	s.pages[title] = p

	lifecycle.Go(s.ctx, p.run, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("page stopped", "title", title, "error", err)
	}))
	s.logger.Debug("page opened", "title", title)
	return p, nil
}

func (s *Server) pageOrError(w http.ResponseWriter, title string) *page {
	p, err := s.page(title)
	switch {
	case err == nil:
		return p
	case errors.Is(err, core.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	}
	return nil
}

func pagePath(prefix, title string) string {
	return (&url.URL{Path: prefix + title}).String()
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>rabbithole</title></head>
<body><ul>
{{range .}}<li><a href="{{.Href}}">{{.Title}}</a></li>
{{end}}</ul></body></html>
`))

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<div id="rh-doc">{{.Body}}</div>
<script>
(function() {
  var selector = '[data-rh-role="{{.Role}}"]';
  document.addEventListener('click', function(e) {
    var label = e.target.closest(selector);
    if (!label) return;
    e.preventDefault();
    var labels = Array.prototype.slice.call(document.querySelectorAll(selector));
    fetch({{.Click}} + '?index=' + labels.indexOf(label), {method: 'POST'});
  });
  if (typeof(EventSource) === 'undefined') return;
  var es = new EventSource({{.Events}});
  es.addEventListener('refresh', function(e) {
    document.getElementById('rh-doc').innerHTML = JSON.parse(e.data).html;
  });
})();
</script>
</body></html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	type link struct{ Title, Href string }
	var links []link
	for _, t := range s.store.Titles() {
		links = append(links, link{Title: t, Href: pagePath("/r/", t)})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, links); err != nil {
		s.logger.Error("write index", "error", err)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")
	p := s.pageOrError(w, title)
	if p == nil {
		return
	}

	var body string
	err := p.do(r.Context(), func(doc *render.Document) {
		body, _ = doc.HTML()
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = pageTemplate.Execute(w, map[string]any{
		"Title":  title,
		"Body":   template.HTML(body),
		"Role":   slider.RoleToggle,
		"Click":  pagePath("/click/", title),
		"Events": pagePath("/events/", title),
	})
	if err != nil {
		s.logger.Error("write page", "title", title, "error", err)
	}
}

// ClickResult is the JSON answer to a click.
type ClickResult struct {
	Consumed bool   `json:"consumed"`
	HTML     string `json:"html"`
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		http.Error(w, "index: "+err.Error(), http.StatusBadRequest)
		return
	}
	p := s.pageOrError(w, title)
	if p == nil {
		return
	}

	var result ClickResult
	found := false
	err = p.do(r.Context(), func(doc *render.Document) {
		labels := doc.FindByRole(slider.RoleToggle)
		if index < 0 || index >= len(labels) {
			return
		}
		found = true
		result.Consumed = doc.Click(labels[index])
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if !found {
		http.Error(w, fmt.Sprintf("no slider at index %d", index), http.StatusNotFound)
		return
	}

	// The refresh was applied before do returned.
	_ = p.do(r.Context(), func(doc *render.Document) {
		result.HTML, _ = doc.HTML()
	})
	s.logger.Debug("click", "title", title, "index", index, "consumed", result.Consumed)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("write click result", "error", err)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	p := s.pageOrError(w, title)
	if p == nil {
		return
	}

	ch := p.subscribe()
	defer p.unsubscribe(ch)

	var current string
	if err := p.do(r.Context(), func(doc *render.Document) { current, _ = doc.HTML() }); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func(out string) bool {
		data, err := json.Marshal(map[string]string{"html": out})
		if err != nil {
			s.logger.Error("encode event", "error", err)
			return false
		}
		if _, err := fmt.Fprintf(w, "event: refresh\ndata: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(current) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-p.done:
			return
		case out := <-ch:
			if !send(out) {
				return
			}
		}
	}
}
