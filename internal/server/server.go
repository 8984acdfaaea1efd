package server

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mj1618/desktop-harness/internal/scenario"
)

// Config holds MCP server configuration.
type Config struct {
	Name      string
	Version   string
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// Server exposes a running scenario session as MCP tools. Gestures are
// not safe to run concurrently, so every tool call holds mu.
type Server struct {
	session *scenario.Session
	cache   *SceneCache
	mu      sync.Mutex
	mcp     *mcpserver.MCPServer
	logger  *slog.Logger
}

// New creates and configures an MCP server driving session.
func New(session *scenario.Session, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Name == "" {
		cfg.Name = "desktop-harness"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	s := &Server{
		session: session,
		cache:   NewSceneCache(cfg.CacheTTL),
		logger:  logger,
	}
	s.mcp = mcpserver.NewMCPServer(cfg.Name, cfg.Version)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	s.logger.Info("mcp server starting", "transport", cfg.Transport, "port", cfg.Port)
	switch cfg.Transport {
	case "", "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("read",
			mcp.WithDescription("Read the scene of the topmost showing window as a flat list of nodes with ids, roles, text and bounds."),
			mcp.WithString("selector", mcp.Description("Only return nodes at or below the nodes matching this selector (e.g. '#form', 'btn.primary')")),
			mcp.WithString("text", mcp.Description("Filter nodes by case-insensitive text substring")),
			mcp.WithString("role", mcp.Description("Comma separated roles to keep (e.g. 'btn,input' or 'interactive')")),
		),
		s.handleRead,
	)

	s.mcp.AddTool(
		mcp.NewTool("find",
			mcp.WithDescription("Find the deepest nodes whose text matches, or every node with a role"),
			mcp.WithString("text", mcp.Description("Case-insensitive text substring")),
			mcp.WithBoolean("exact", mcp.Description("Require the whole text to match")),
			mcp.WithString("role", mcp.Description("Comma separated roles to keep (e.g. 'btn' or 'interactive')")),
		),
		s.handleFind,
	)

	s.mcp.AddTool(
		mcp.NewTool("click",
			mcp.WithDescription("Move the pointer to a node and click it"),
			mcp.WithString("target", mcp.Required(), mcp.Description("Selector of the node to click")),
			mcp.WithString("pos", mcp.Description("Point within the node: center (default), top-left, bottom-right, ...")),
			mcp.WithString("button", mcp.Description("Mouse button: left (default), right, middle")),
			mcp.WithBoolean("double", mcp.Description("Double-click")),
		),
		s.handleClick,
	)

	s.mcp.AddTool(
		mcp.NewTool("move",
			mcp.WithDescription("Move the pointer to a node, or by an offset"),
			mcp.WithString("target", mcp.Description("Selector of the node to move to")),
			mcp.WithString("pos", mcp.Description("Point within the node")),
			mcp.WithString("motion", mcp.Description("Path: direct (default), horizontal-first, vertical-first")),
			mcp.WithNumber("dx", mcp.Description("Horizontal offset")),
			mcp.WithNumber("dy", mcp.Description("Vertical offset")),
		),
		s.handleMove,
	)

	s.mcp.AddTool(
		mcp.NewTool("drag",
			mcp.WithDescription("Press on a node and drop it on another node, or by an offset"),
			mcp.WithString("target", mcp.Required(), mcp.Description("Selector of the node to drag")),
			mcp.WithString("to", mcp.Description("Selector of the drop target")),
			mcp.WithNumber("dx", mcp.Description("Horizontal drop offset when no 'to' is given")),
			mcp.WithNumber("dy", mcp.Description("Vertical drop offset when no 'to' is given")),
			mcp.WithString("button", mcp.Description("Mouse button: left (default), right, middle")),
		),
		s.handleDrag,
	)

	s.mcp.AddTool(
		mcp.NewTool("type",
			mcp.WithDescription("Press and release keys one after another, or push a combination like 'ctrl+a'"),
			mcp.WithString("keys", mcp.Description("Space separated key names (e.g. 'tab tab enter')")),
			mcp.WithString("combo", mcp.Description("Key combination held together (e.g. 'ctrl+shift+s')")),
			mcp.WithNumber("times", mcp.Description("Repeat count for keys")),
		),
		s.handleType,
	)

	s.mcp.AddTool(
		mcp.NewTool("write",
			mcp.WithDescription("Write text to the focused node, or click a node first and write into it"),
			mcp.WithString("text", mcp.Required(), mcp.Description("Text to write; '\\n' presses enter")),
			mcp.WithString("target", mcp.Description("Selector of the node to write into")),
		),
		s.handleWrite,
	)

	s.mcp.AddTool(
		mcp.NewTool("scroll",
			mcp.WithDescription("Scroll the wheel, optionally over a node"),
			mcp.WithString("direction", mcp.Description("up, down (default), left, right")),
			mcp.WithNumber("amount", mcp.Description("Number of wheel units (default 1)")),
			mcp.WithString("target", mcp.Description("Selector of the node to scroll over")),
		),
		s.handleScroll,
	)

	s.mcp.AddTool(
		mcp.NewTool("expect",
			mcp.WithDescription("Check a node, optionally waiting for the condition to hold"),
			mcp.WithString("target", mcp.Required(), mcp.Description("Selector of the node to check")),
			mcp.WithString("has_text", mcp.Description("Exact text")),
			mcp.WithString("contains", mcp.Description("Text substring")),
			mcp.WithBoolean("visible", mcp.Description("Expected visibility")),
			mcp.WithBoolean("enabled", mcp.Description("Expected enabled state")),
			mcp.WithBoolean("focused", mcp.Description("Expected focus")),
			mcp.WithNumber("timeout", mcp.Description("Wait up to this many milliseconds for the condition")),
		),
		s.handleExpect,
	)

	s.mcp.AddTool(
		mcp.NewTool("step",
			mcp.WithDescription("Run one scenario step written in YAML, e.g. 'push: ctrl+a' or '{drag: {target: \"#a\", to: \"#b\"}}'"),
			mcp.WithString("yaml", mcp.Required(), mcp.Description("The step document")),
		),
		s.handleStep,
	)

	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture the topmost showing window as a PNG with node outlines"),
			mcp.WithString("labels", mcp.Description("Label nodes with 'ids' (default) or 'coords'")),
		),
		s.handleScreenshot,
	)
}
