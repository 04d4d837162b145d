package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapuast/internal/config"
	"github.com/leapstack-labs/leapuast/pkg/cst"
	"github.com/leapstack-labs/leapuast/pkg/frontend/kotlin"
	"github.com/leapstack-labs/leapuast/pkg/lint"
	_ "github.com/leapstack-labs/leapuast/pkg/lint/rules" // register built-in rules
	"github.com/leapstack-labs/leapuast/pkg/lint/script"
	"github.com/leapstack-labs/leapuast/pkg/semantic"
)

// JSON-RPC error codes.
const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInvalidRequest = -32600
)

// Server implements the Language Server Protocol for Kotlin sources.
type Server struct {
	documents *DocumentStore

	parser   *kotlin.Parser
	engine   *semantic.Engine
	analyzer *lint.Analyzer
	depth    cst.Depth

	projectRoot string
	initialized bool

	// I/O
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex

	logger *slog.Logger

	// Shutdown state
	shutdown   bool
	exited     bool
	shutdownMu sync.RWMutex
}

// Option configures a Server.
type Option func(*Server)

// WithDepth sets the analysis depth used until a project configuration
// overrides it.
func WithDepth(depth cst.Depth) Option {
	return func(s *Server) { s.depth = depth }
}

// NewServer creates a new LSP server instance.
func NewServer(reader io.Reader, writer io.Writer, opts ...Option) *Server {
	return NewServerWithLogger(reader, writer, nil, opts...)
}

// NewServerWithLogger creates a new LSP server instance with a custom logger.
func NewServerWithLogger(reader io.Reader, writer io.Writer, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	s := &Server{
		documents: NewDocumentStore(),
		reader:    bufio.NewReader(reader),
		writer:    writer,
		logger:    logger,
		parser:    kotlin.NewParser(kotlin.WithLogger(logger)),
		engine:    semantic.NewEngine(semantic.WithLogger(logger)),
		analyzer:  lint.NewAnalyzer(nil, lint.WithLogger(logger)),
		depth:     cst.DepthPartial,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes JSON-RPC messages until the client sends exit, closes the
// input stream or ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("leapuast language server starting")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		s.shutdownMu.RLock()
		exited := s.exited
		s.shutdownMu.RUnlock()
		if exited {
			return nil
		}

		msg, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.logger.Info("client disconnected")
				return nil
			}
			s.logger.Error("read message", slog.String("error", err.Error()))
			continue
		}

		if err := s.handleMessage(ctx, msg); err != nil {
			s.logger.Error("handle message",
				slog.String("method", msg.Method),
				slog.String("error", err.Error()))
		}
	}
}

// JSONRPCMessage represents a JSON-RPC 2.0 message.
type JSONRPCMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *JSONRPCError    `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC error.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// readMessage reads a Content-Length framed message from the input stream.
func (s *Server) readMessage() (*JSONRPCMessage, error) {
	var contentLength int
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			break
		}

		if value, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			contentLength, err = strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
		}
	}

	if contentLength == 0 {
		return nil, errors.New("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var msg JSONRPCMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	return &msg, nil
}

// sendResponse sends a JSON-RPC response.
func (s *Server) sendResponse(id *json.RawMessage, result any, err *JSONRPCError) {
	msg := JSONRPCMessage{JSONRPC: "2.0", ID: id}
	if err != nil {
		msg.Error = err
	} else {
		resultBytes, _ := json.Marshal(result)
		msg.Result = resultBytes
	}
	s.writeMessage(&msg)
}

// sendNotification sends a JSON-RPC notification (no ID).
func (s *Server) sendNotification(method string, params any) {
	msg := JSONRPCMessage{JSONRPC: "2.0", Method: method}
	if params != nil {
		paramsBytes, _ := json.Marshal(params)
		msg.Params = paramsBytes
	}
	s.writeMessage(&msg)
}

// writeMessage writes a framed JSON-RPC message to the output stream.
func (s *Server) writeMessage(msg *JSONRPCMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	body, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("marshal message", slog.String("error", err.Error()))
		return
	}

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	_, _ = s.writer.Write([]byte(header))
	_, _ = s.writer.Write(body)
}

// handleMessage dispatches a message to the appropriate handler.
func (s *Server) handleMessage(ctx context.Context, msg *JSONRPCMessage) error {
	s.logger.Debug("received", slog.String("method", msg.Method))

	s.shutdownMu.RLock()
	shuttingDown := s.shutdown
	s.shutdownMu.RUnlock()
	if shuttingDown && msg.Method != "exit" {
		if msg.ID != nil {
			s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidRequest, Message: "server is shutting down"})
		}
		return nil
	}

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return s.handleInitialized(msg)
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		return s.handleExit(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, msg)
	case "textDocument/didClose":
		return s.handleDidClose(ctx, msg)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, msg)
	case "textDocument/didSave":
		return nil
	case "textDocument/hover":
		return s.handleHover(ctx, msg)
	case "textDocument/definition":
		return s.handleDefinition(ctx, msg)
	default:
		if msg.ID != nil {
			s.sendResponse(msg.ID, nil, &JSONRPCError{
				Code:    codeMethodNotFound,
				Message: "Method not found: " + msg.Method,
			})
		}
		return nil
	}
}

// --- Lifecycle handlers ---

func (s *Server) handleInitialize(msg *JSONRPCMessage) error {
	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
		return err
	}

	s.projectRoot = URIToPath(params.RootURI)
	s.logger.Info("project root", slog.String("path", s.projectRoot))

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
			},
			HoverProvider:      true,
			DefinitionProvider: true,
		},
	}
	s.sendResponse(msg.ID, result, nil)
	return nil
}

func (s *Server) handleInitialized(_ *JSONRPCMessage) error {
	s.initialized = true
	if err := s.loadProjectConfig(); err != nil {
		s.sendNotification("window/showMessage", &ShowMessageParams{
			Type:    MessageTypeWarning,
			Message: "leapuast: " + err.Error() + "; using defaults",
		})
		return err
	}
	s.logger.Info("server initialized", slog.String("depth", s.depth.String()))
	return nil
}

func (s *Server) handleShutdown(msg *JSONRPCMessage) error {
	s.shutdownMu.Lock()
	s.shutdown = true
	s.shutdownMu.Unlock()

	s.sendResponse(msg.ID, nil, nil)
	s.logger.Info("server shutdown")
	return nil
}

func (s *Server) handleExit(_ *JSONRPCMessage) error {
	s.shutdownMu.Lock()
	s.exited = true
	s.shutdownMu.Unlock()
	s.logger.Info("server exit")
	return nil
}

// --- Document handlers ---

func (s *Server) handleDidOpen(ctx context.Context, msg *JSONRPCMessage) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	item := params.TextDocument
	s.openDocument(ctx, NewDocument(item.URI, item.Text, item.Version))
	s.logger.Debug("opened", slog.String("uri", item.URI))
	s.publishDiagnostics(ctx, item.URI)
	return nil
}

func (s *Server) handleDidClose(_ context.Context, msg *JSONRPCMessage) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	if doc := s.documents.Close(params.TextDocument.URI); doc != nil && doc.Root != nil {
		s.engine.RemoveFile(doc.Root)
	}
	s.logger.Debug("closed", slog.String("uri", params.TextDocument.URI))

	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []Diagnostic{},
	})
	return nil
}

func (s *Server) handleDidChange(ctx context.Context, msg *JSONRPCMessage) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	uri := params.TextDocument.URI
	prev := s.documents.Get(uri)
	if prev == nil || len(params.ContentChanges) == 0 {
		return nil
	}

	// Full sync: the last change carries the whole document.
	last := params.ContentChanges[len(params.ContentChanges)-1]
	doc := NewDocument(uri, last.Text, params.TextDocument.Version)
	if doc.Hash == prev.Hash {
		doc.Root, doc.File, doc.Err = prev.Root, prev.File, prev.Err
		s.documents.Put(doc)
		s.logger.Debug("content unchanged", slog.String("uri", uri), slog.Int("version", doc.Version))
		return nil
	}
	s.openDocument(ctx, doc)
	s.publishDiagnostics(ctx, uri)
	return nil
}

// --- Feature handlers ---

func (s *Server) handleHover(ctx context.Context, msg *JSONRPCMessage) error {
	var params HoverParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
		return err
	}
	s.sendResponse(msg.ID, s.getHover(ctx, params.TextDocumentPositionParams), nil)
	return nil
}

func (s *Server) handleDefinition(ctx context.Context, msg *JSONRPCMessage) error {
	var params DefinitionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
		return err
	}
	s.sendResponse(msg.ID, s.getDefinition(ctx, params.TextDocumentPositionParams), nil)
	return nil
}

// --- Helper methods ---

// loadProjectConfig applies leapuast.yaml from the project root: analysis
// depth, file size limit, rule settings and script rules.
func (s *Server) loadProjectConfig() error {
	if s.projectRoot == "" {
		return nil
	}
	cfg, err := config.LoadFromDir(s.projectRoot)
	if err != nil {
		return err
	}
	if cfg == nil {
		s.logger.Info("no project config found", slog.String("root", s.projectRoot))
		return nil
	}

	depth, err := cst.ParseDepth(cfg.AnalysisDepth)
	if err != nil {
		return err
	}
	lintCfg, err := cfg.Lint.ToLintConfig()
	if err != nil {
		return fmt.Errorf("lint configuration: %w", err)
	}

	var scripts []lint.Rule
	if cfg.Lint != nil {
		for _, path := range cfg.Lint.Scripts {
			if !filepath.IsAbs(path) {
				path = filepath.Join(s.projectRoot, path)
			}
			rule, err := script.Load(path, script.WithLogger(s.logger))
			if err != nil {
				return err
			}
			scripts = append(scripts, rule)
		}
	}

	s.depth = depth
	s.parser = kotlin.NewParser(kotlin.WithMaxFileSize(cfg.MaxFileSize), kotlin.WithLogger(s.logger))
	s.analyzer = lint.NewAnalyzer(lintCfg, lint.WithRules(scripts...), lint.WithLogger(s.logger))
	s.logger.Info("loaded project config",
		slog.String("depth", depth.String()),
		slog.Int("scripts", len(scripts)))
	return nil
}
