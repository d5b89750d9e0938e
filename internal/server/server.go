// Package server provides the core LSP server state and management.
package server

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-elm-lsp/internal/parser"
	"github.com/CWBudde/go-elm-lsp/internal/workspace"
)

// Server holds the state of the LSP server.
type Server struct {
	// documents stores all open documents
	documents *DocumentStore

	// astCache maps (uri, version) to parsed files, LRU-bounded
	astCache *ASTCache

	// parseService serializes interactive parses, latest-wins
	parseService *parser.Service

	// symbolIndex caches workspace-wide symbol search results
	symbolIndex *workspace.SymbolIndex

	// lastSymbols keeps the last successful document-symbol result per
	// URI, served when the current buffer fails to parse
	lastSymbols map[string][]protocol.DocumentSymbol

	// rootURI is captured from the initialize request
	rootURI string

	// clientCapabilities stores the client's capabilities from the initialize request
	clientCapabilities *protocol.ClientCapabilities

	// mutex protects server state
	mu sync.RWMutex

	// shutting down flag
	shuttingDown bool
}

// New creates a new LSP server instance.
func New() *Server {
	return &Server{
		documents:    NewDocumentStore(),
		astCache:     NewASTCache(),
		parseService: parser.NewService(parser.DefaultBackend),
		symbolIndex:  workspace.NewSymbolIndex(),
		lastSymbols:  make(map[string][]protocol.DocumentSymbol),
	}
}

// IsShuttingDown returns true if the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shuttingDown
}

// SetShuttingDown marks the server as shutting down.
func (s *Server) SetShuttingDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuttingDown = true
}

// Documents returns the document store.
func (s *Server) Documents() *DocumentStore {
	return s.documents
}

// ASTCache returns the AST cache.
func (s *Server) ASTCache() *ASTCache {
	return s.astCache
}

// ParseService returns the latest-wins parse service.
func (s *Server) ParseService() *parser.Service {
	return s.parseService
}

// SymbolIndex returns the workspace symbol index.
func (s *Server) SymbolIndex() *workspace.SymbolIndex {
	return s.symbolIndex
}

// SetRootURI records the workspace root from initialize.
func (s *Server) SetRootURI(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rootURI = uri
}

// RootURI returns the workspace root captured at initialize.
func (s *Server) RootURI() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootURI
}

// SetClientCapabilities sets the client's capabilities.
func (s *Server) SetClientCapabilities(capabilities *protocol.ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientCapabilities = capabilities
}

// GetClientCapabilities returns the client's capabilities.
func (s *Server) GetClientCapabilities() *protocol.ClientCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientCapabilities
}

// SetLastSymbols stores the last successful document-symbol result.
func (s *Server) SetLastSymbols(uri string, symbols []protocol.DocumentSymbol) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSymbols[uri] = symbols
}

// LastSymbols returns the last successful document-symbol result.
func (s *Server) LastSymbols(uri string) []protocol.DocumentSymbol {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSymbols[uri]
}
