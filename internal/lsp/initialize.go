// Package lsp implements LSP protocol handlers.
package lsp

import (
	"os"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Initialize handles the LSP initialize request.
// This is the first request sent by the client and establishes the server capabilities.
func Initialize(context *glsp.Context, params *protocol.InitializeParams) (interface{}, error) {
	srv := getServer("Initialize")
	if srv != nil {
		if params.RootURI != nil {
			srv.SetRootURI(string(*params.RootURI))
		}
		srv.SetClientCapabilities(&params.Capabilities)
	}

	changeKind := protocol.TextDocumentSyncKindFull
	trueVal := true
	falseVal := false

	capabilities := protocol.ServerCapabilities{
		// Full-content text synchronization with open/close/save
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: &trueVal,
			Change:    &changeKind,
			Save: &protocol.SaveOptions{
				IncludeText: &falseVal,
			},
		},

		// Hover support
		HoverProvider: &trueVal,

		// Go-to definition support
		DefinitionProvider: &trueVal,

		// Find references support
		ReferencesProvider: &trueVal,

		// Document symbols (outline view)
		DocumentSymbolProvider: &trueVal,

		// Workspace symbols (global search)
		WorkspaceSymbolProvider: &trueVal,

		// Code completion, triggered by member access
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"."},
			ResolveProvider:   &falseVal,
		},

		// Rename support
		RenameProvider: &protocol.RenameOptions{
			PrepareProvider: &trueVal,
		},

		// Whole-document formatting
		DocumentFormattingProvider: &trueVal,
	}

	serverVersion := version

	result := protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    "go-elm-lsp",
			Version: &serverVersion,
		},
	}

	return result, nil
}

const version = "0.1.0"

// Initialized handles the initialized notification from the client.
// This is sent after the initialize response, signaling that the client is ready.
func Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

// Shutdown handles the shutdown request.
// The client sends this to ask the server to shut down gracefully.
func Shutdown(context *glsp.Context) error {
	if srv := getServer("Shutdown"); srv != nil {
		srv.SetShuttingDown()
	}
	return nil
}

// Exit handles the exit notification: 0 after a clean shutdown, 1
// otherwise.
func Exit(context *glsp.Context) error {
	code := 1
	if srv := getServer("Exit"); srv != nil && srv.IsShuttingDown() {
		code = 0
	}
	os.Exit(code)
	return nil
}

// SetTrace handles the $/setTrace notification.
func SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}
