package lsp

import (
	"context"
	"encoding/json"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.servo.sh/pkg/diag"
	"src.servo.sh/pkg/eval"
	"src.servo.sh/pkg/source"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

type server struct {
	content map[lsp.DocumentURI]string
}

func newServer() *server {
	return &server{make(map[lsp.DocumentURI]string)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":              s.initialize,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/didClose":   s.didClose,
		"textDocument/hover":      s.hover,
		"textDocument/completion": s.completion,

		"initialized": noop,
		"shutdown":    noop,
		// Sent by clients even when the server does not advertise support.
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			logger.Println("unknown method", req.Method)
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			CompletionProvider: &lsp.CompletionOptions{TriggerCharacters: []string{"."}},
			HoverProvider:      true,
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.content[uri] = content
	go publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}

	// ContentChanges holds the full text, since only full sync is
	// advertised by initialize.
	uri, content := params.TextDocument.URI, params.ContentChanges[0].Text
	s.content[uri] = content
	go publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	delete(s.content, params.TextDocument.URI)
	return nil, nil
}

func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	content := s.content[params.TextDocument.URI]
	from, to := identAround(content, lspPositionToIdx(content, params.Position))
	if from == to {
		return lsp.Hover{}, nil
	}
	ns, _ := check(params.TextDocument.URI, content)
	v, err := ns.Lookup(content[from:to])
	if err != nil {
		return lsp.Hover{}, nil
	}
	r := lspRangeFromRange(content, diag.Ranging{From: from, To: to})
	return lsp.Hover{
		Contents: []lsp.MarkedString{{Language: "servo", Value: eval.Repr(v.Value)}},
		Range:    &r,
	}, nil
}

func (s *server) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	content := s.content[params.TextDocument.URI]
	dot := lspPositionToIdx(content, params.Position)
	from := identStart(content, dot)
	ns, _ := check(params.TextDocument.URI, content)

	vars := completeNames(ns, content[from:dot])
	lspRange := lspRangeFromRange(content, diag.Ranging{From: from, To: dot})
	items := make([]lsp.CompletionItem, len(vars))
	for i, v := range vars {
		items[i] = lsp.CompletionItem{
			Label:  v.name,
			Kind:   completionKind(v.Value),
			Detail: eval.Repr(v.Value),
			TextEdit: &lsp.TextEdit{
				Range:   lspRange,
				NewText: v.name,
			},
		}
	}
	return items, nil
}

func publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	err := conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diagnostics(uri, content)})
	if err != nil {
		logger.Println("cannot publish diagnostics:", err)
	}
}

// Runs content in check mode. The namespace holds the builtins and the
// functions defined before the first error.
func check(uri lsp.DocumentURI, content string) (eval.Namespace, error) {
	ev := eval.NewEvaler()
	ev.Check = true
	return ev.Run(source.Virtual(string(uri), content))
}

func diagnostics(uri lsp.DocumentURI, content string) []lsp.Diagnostic {
	_, err := check(uri, content)
	if err == nil {
		return []lsp.Diagnostic{}
	}

	if e := eval.GetSyntaxError(err); e != nil {
		return []lsp.Diagnostic{{
			Range:    lspRangeFromRange(content, e),
			Severity: lsp.Error,
			Source:   "servo",
			Message:  e.Message,
		}}
	}
	return []lsp.Diagnostic{{
		Severity: lsp.Error,
		Source:   "servo",
		Message:  eval.Reason(err).Error(),
	}}
}

type namedVar struct {
	name string
	*eval.Variable
}

// Returns the variables whose full names start with prefix. A dotted prefix
// completes the members of the variable it names.
func completeNames(ns eval.Namespace, prefix string) []namedVar {
	base, scope := "", ns
	if i := strings.LastIndexByte(prefix, '.'); i >= 0 {
		v, err := ns.Lookup(prefix[:i])
		if err != nil {
			return nil
		}
		base, scope = prefix[:i+1], v.Children
	}
	var vars []namedVar
	for _, name := range scope.Names() {
		if full := base + name; strings.HasPrefix(full, prefix) {
			vars = append(vars, namedVar{full, scope[name]})
		}
	}
	return vars
}

func completionKind(v eval.Value) lsp.CompletionItemKind {
	switch v.(type) {
	case *eval.Function:
		return lsp.CIKFunction
	case eval.Module:
		return lsp.CIKModule
	default:
		return lsp.CIKVariable
	}
}

func isIdentChar(b byte) bool {
	return b == '_' || b == '.' ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

// Returns where the name ending at idx starts.
func identStart(s string, idx int) int {
	for idx > 0 && isIdentChar(s[idx-1]) {
		idx--
	}
	return idx
}

// Returns the range of the name around idx.
func identAround(s string, idx int) (int, int) {
	to := idx
	for to < len(s) && isIdentChar(s[to]) {
		to++
	}
	return identStart(s, idx), to
}

func lspRangeFromRange(s string, r diag.Ranger) lsp.Range {
	rg := r.Range()
	return lsp.Range{
		Start: lspPositionFromIdx(s, rg.From),
		End:   lspPositionFromIdx(s, rg.To),
	}
}

func lspPositionToIdx(s string, pos lsp.Position) int {
	var idx int
	walkString(s, func(i int, p lsp.Position) bool {
		idx = i
		return p.Line < pos.Line || (p.Line == pos.Line && p.Character < pos.Character)
	})
	return idx
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// Generates (index, lspPosition) pairs in s, stopping if f returns false.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if !lastCR {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			// One UTF-16 unit.
			p.Character++
		default:
			// Two UTF-16 units.
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
