package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aretw0/rabbithole/pkg/core"
	"github.com/aretw0/rabbithole/pkg/render"
)

var errPageClosed = errors.New("page closed")

type request struct {
	fn   func(doc *render.Document)
	done chan struct{}
}

// page owns one live document. Every access to the document happens on the
// page goroutine; store notifications are queued and applied there.
type page struct {
	title  string
	doc    *render.Document
	logger *slog.Logger

	requests chan request
	wake     chan struct{}
	done     chan struct{}

	qmu    sync.Mutex
	queued []core.ChangeSet

	cmu     sync.Mutex
	clients map[chan string]struct{}
	last    string
}

func newPage(title string, logger *slog.Logger) *page {
	return &page{
		title:    title,
		logger:   logger,
		requests: make(chan request),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		clients:  make(map[chan string]struct{}),
	}
}

// enqueue is the document's change handler. It may run on any goroutine,
// including the page goroutine itself while a click is being handled.
func (p *page) enqueue(changes core.ChangeSet) {
	p.qmu.Lock()
	p.queued = append(p.queued, changes)
	p.qmu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *page) run(ctx context.Context) error {
	defer close(p.done)
	defer p.doc.Close()

	p.last, _ = p.doc.HTML()
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-p.requests:
			req.fn(p.doc)
			p.flush()
			close(req.done)
		case <-p.wake:
			p.flush()
		}
	}
}

// flush applies queued change sets and pushes the markup to subscribers
// when it changed.
func (p *page) flush() {
	p.qmu.Lock()
	queued := p.queued
	p.queued = nil
	p.qmu.Unlock()

	for _, changes := range queued {
		p.doc.Refresh(changes)
	}

	out, err := p.doc.HTML()
	if err != nil {
		p.logger.Error("render page", "title", p.title, "error", err)
		return
	}
	if out == p.last {
		return
	}
	p.last = out
	p.broadcast(out)
}

// do runs fn with the document on the page goroutine and waits until the
// resulting refresh has been applied.
func (p *page) do(ctx context.Context, fn func(doc *render.Document)) error {
	req := request{fn: fn, done: make(chan struct{})}
	select {
	case p.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return errPageClosed
	}
	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return errPageClosed
	}
}

func (p *page) subscribe() chan string {
	ch := make(chan string, 1)
	p.cmu.Lock()
	p.clients[ch] = struct{}{}
	p.cmu.Unlock()
	return ch
}

func (p *page) unsubscribe(ch chan string) {
	p.cmu.Lock()
	delete(p.clients, ch)
	p.cmu.Unlock()
}

// broadcast hands the latest markup to every client, replacing any value a
// slow client has not read yet.
func (p *page) broadcast(out string) {
	p.cmu.Lock()
	defer p.cmu.Unlock()
	for ch := range p.clients {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- out:
		default:
		}
	}
}
