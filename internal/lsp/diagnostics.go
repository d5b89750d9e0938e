// Package lsp implements LSP protocol handlers.
package lsp

import (
	"encoding/json"
	"log"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-elm-lsp/internal/project"
)

// diagnosticsDebounce is the per-URI delay before the compiler runs.
const diagnosticsDebounce = 300 * time.Millisecond

// elmCompiler is the external type checker invoked for diagnostics.
const elmCompiler = "elm"

var (
	debounceMu     sync.Mutex
	debounceTimers = make(map[string]*time.Timer)

	missingToolMu       sync.Mutex
	missingToolReported = make(map[string]bool)
)

// scheduleDiagnostics debounces a compiler run for uri.
func scheduleDiagnostics(context *glsp.Context, uri string) {
	if context == nil || context.Notify == nil {
		return
	}

	debounceMu.Lock()
	defer debounceMu.Unlock()

	if timer, ok := debounceTimers[uri]; ok {
		timer.Stop()
	}
	debounceTimers[uri] = time.AfterFunc(diagnosticsDebounce, func() {
		runDiagnostics(context, uri)
	})
}

// compileReport mirrors the compiler's --report=json output.
type compileReport struct {
	Type   string `json:"type"`
	Path   string `json:"path"`
	Title  string `json:"title"`
	Errors []struct {
		Path     string         `json:"path"`
		Problems []compileProblem `json:"problems"`
	} `json:"errors"`
	Message messageParts `json:"message"`
}

type compileProblem struct {
	Title  string `json:"title"`
	Region struct {
		Start struct {
			Line   int `json:"line"`
			Column int `json:"column"`
		} `json:"start"`
		End struct {
			Line   int `json:"line"`
			Column int `json:"column"`
		} `json:"end"`
	} `json:"region"`
	Message messageParts `json:"message"`
}

// messageParts is the compiler's mixed string / styled-chunk array.
type messageParts string

func (m *messageParts) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var b strings.Builder
	for _, chunk := range raw {
		var plain string
		if err := json.Unmarshal(chunk, &plain); err == nil {
			b.WriteString(plain)
			continue
		}
		var styled struct {
			String string `json:"string"`
		}
		if err := json.Unmarshal(chunk, &styled); err == nil {
			b.WriteString(styled.String)
		}
	}
	*m = messageParts(b.String())
	return nil
}

// runDiagnostics invokes the compiler for uri's file and publishes the
// reported problems, plus an empty list for the saved URI when the
// report does not mention it (clearing stale markers).
func runDiagnostics(context *glsp.Context, uri string) {
	path := project.URIToPath(uri)

	proj, err := project.FindManifest(path)
	if err != nil {
		log.Printf("Diagnostics skipped, no manifest for %s: %v", path, err)
		return
	}

	cmd := exec.Command(elmCompiler, "make", path, "--report=json", "--output=/dev/null")
	cmd.Dir = proj.ProjectFolder
	output, runErr := cmd.CombinedOutput()

	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); !ok {
			reportMissingTool(context, elmCompiler)
			return
		}
	} else {
		// Clean compile: clear diagnostics for the saved file.
		publishDiagnostics(context, uri, []protocol.Diagnostic{})
		return
	}

	var report compileReport
	if err := json.Unmarshal(extractJSON(output), &report); err != nil {
		// Non-zero exit without a JSON report: clear the saved URI only.
		log.Printf("Compiler produced no JSON report for %s", path)
		publishDiagnostics(context, uri, []protocol.Diagnostic{})
		return
	}

	perFile := make(map[string][]protocol.Diagnostic)

	switch report.Type {
	case "compile-errors":
		for _, fileErr := range report.Errors {
			absolute := fileErr.Path
			if !filepath.IsAbs(absolute) {
				absolute = filepath.Join(proj.ProjectFolder, absolute)
			}
			fileURI := project.PathToURI(absolute)
			for _, problem := range fileErr.Problems {
				perFile[fileURI] = append(perFile[fileURI], problemToDiagnostic(problem))
			}
		}
	case "error":
		target := uri
		if report.Path != "" {
			absolute := report.Path
			if !filepath.IsAbs(absolute) {
				absolute = filepath.Join(proj.ProjectFolder, absolute)
			}
			target = project.PathToURI(absolute)
		}
		severity := protocol.DiagnosticSeverityError
		source := elmCompiler
		perFile[target] = append(perFile[target], protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: 0, Character: 0},
			},
			Severity: &severity,
			Source:   &source,
			Message:  report.Title + "\n" + string(report.Message),
		})
	}

	for fileURI, diagnostics := range perFile {
		publishDiagnostics(context, fileURI, diagnostics)
	}
	if _, mentioned := perFile[uri]; !mentioned {
		publishDiagnostics(context, uri, []protocol.Diagnostic{})
	}
}

func problemToDiagnostic(problem compileProblem) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := elmCompiler
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{
				Line:      protocol.UInteger(max(problem.Region.Start.Line-1, 0)),
				Character: protocol.UInteger(max(problem.Region.Start.Column-1, 0)),
			},
			End: protocol.Position{
				Line:      protocol.UInteger(max(problem.Region.End.Line-1, 0)),
				Character: protocol.UInteger(max(problem.Region.End.Column-1, 0)),
			},
		},
		Severity: &severity,
		Source:   &source,
		Message:  problem.Title + "\n" + string(problem.Message),
	}
}

// extractJSON trims compiler noise before the first JSON brace.
func extractJSON(output []byte) []byte {
	for i, b := range output {
		if b == '{' {
			return output[i:]
		}
	}
	return output
}

// reportMissingTool tells the user once per tool that it is absent.
func reportMissingTool(context *glsp.Context, tool string) {
	missingToolMu.Lock()
	already := missingToolReported[tool]
	missingToolReported[tool] = true
	missingToolMu.Unlock()

	if already || context == nil || context.Notify == nil {
		return
	}
	messageType := protocol.MessageTypeWarning
	context.Notify(protocol.ServerWindowShowMessage, &protocol.ShowMessageParams{
		Type:    messageType,
		Message: "Cannot find `" + tool + "` on PATH.",
	})
}

// publishDiagnostics sends diagnostic information to the client for a
// specific document, sorted by position for a predictable order.
func publishDiagnostics(context *glsp.Context, uri string, diagnostics []protocol.Diagnostic) {
	if context == nil || context.Notify == nil {
		log.Println("Warning: Cannot publish diagnostics - context or Notify is nil")
		return
	}

	sortDiagnostics(diagnostics)

	log.Printf("Publishing %d diagnostic(s) for %s", len(diagnostics), uri)

	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// sortDiagnostics sorts diagnostics by position (line first, then column).
func sortDiagnostics(diagnostics []protocol.Diagnostic) {
	sort.Slice(diagnostics, func(i, j int) bool {
		if diagnostics[i].Range.Start.Line != diagnostics[j].Range.Start.Line {
			return diagnostics[i].Range.Start.Line < diagnostics[j].Range.Start.Line
		}
		return diagnostics[i].Range.Start.Character < diagnostics[j].Range.Start.Character
	})
}
