// Package parser wraps the opaque parse backend behind a
// single-consumer, latest-wins request/reply service.
package parser

import (
	"log"
	"sync"

	"github.com/CWBudde/go-elm-lsp/internal/ast"
	"github.com/CWBudde/go-elm-lsp/internal/elmparse"
)

// Backend parses one source text at a time. Implementations may crash;
// the service recovers and re-establishes the backend lazily.
type Backend interface {
	Parse(source string) (*ast.File, error)
}

// BackendFunc adapts a plain function to the Backend interface.
type BackendFunc func(source string) (*ast.File, error)

func (f BackendFunc) Parse(source string) (*ast.File, error) {
	return f(source)
}

// DefaultBackend returns the in-process Elm parser backend.
func DefaultBackend() Backend {
	return BackendFunc(elmparse.Parse)
}

// request is one pending parse. done receives exactly one result.
type request struct {
	source string
	done   chan *ast.File
}

// Service serializes parse requests over a single backend. While a
// parse is in flight new requests occupy a single slot: each arrival
// displaces the previous occupant, which resolves to nil. On
// completion only the most recent queued request is dispatched.
type Service struct {
	newBackend func() Backend

	mu      sync.Mutex
	backend Backend
	busy    bool
	pending *request
}

// NewService creates a parse service. newBackend is invoked lazily for
// the first parse and again after a backend crash.
func NewService(newBackend func() Backend) *Service {
	return &Service{newBackend: newBackend}
}

// Parse submits source and blocks until a result is available. A nil
// result means the parse failed or the request was displaced by a
// newer one; callers fall back to their last known good state.
func (s *Service) Parse(source string) *ast.File {
	req := &request{source: source, done: make(chan *ast.File, 1)}

	s.mu.Lock()
	if s.busy {
		if s.pending != nil {
			// Latest wins: the displaced request resolves with nil.
			s.pending.done <- nil
		}
		s.pending = req
		s.mu.Unlock()
		return <-req.done
	}
	s.busy = true
	s.mu.Unlock()

	s.run(req)
	return <-req.done
}

// run executes req on the backend, then drains the pending slot until
// it is empty. Exactly one goroutine is inside run at any time.
func (s *Service) run(first *request) {
	req := first
	for {
		result := s.parseOne(req.source)
		req.done <- result

		s.mu.Lock()
		if s.pending == nil {
			s.busy = false
			s.mu.Unlock()
			return
		}
		req = s.pending
		s.pending = nil
		s.mu.Unlock()
	}
}

// parseOne runs a single parse, converting backend errors and panics
// into a nil result and discarding a crashed backend.
func (s *Service) parseOne(source string) (file *ast.File) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("parse backend crashed: %v", r)
			s.mu.Lock()
			s.backend = nil
			s.mu.Unlock()
			file = nil
		}
	}()

	s.mu.Lock()
	if s.backend == nil {
		s.backend = s.newBackend()
	}
	backend := s.backend
	s.mu.Unlock()

	parsed, err := backend.Parse(source)
	if err != nil {
		return nil
	}
	return parsed
}
