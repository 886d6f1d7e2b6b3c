// Package mcp implements the Model Context Protocol server for thoughtboard.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ajitpratap0/thoughtboard/internal/board"
)

// Server wraps an MCPServer around a board.
type Server struct {
	mcp    *mcpserver.MCPServer
	board  *board.Board
	logger *slog.Logger
}

// NewServer creates a new MCP server exposing the board's tools.
func NewServer(b *board.Board, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		board:  b,
		logger: logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"thoughtboard",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildBoardTool(), s.handleBoard)
	mcpSrv.AddTool(buildCreateCategoryTool(), s.handleCreateCategory)
	mcpSrv.AddTool(buildAddKnowledgeTool(), s.handleAddKnowledge)
	mcpSrv.AddTool(buildCreateThoughtTool(), s.handleCreateThought)
	mcpSrv.AddTool(buildSetThoughtTextTool(), s.handleSetThoughtText)
	mcpSrv.AddTool(buildPlaceTool(), s.handlePlace)
	mcpSrv.AddTool(buildLoadTemplateTool(), s.handleLoadTemplate)
	mcpSrv.AddTool(buildListTemplatesTool(), s.handleListTemplates)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleBoard is the exported handler for the "board" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleBoard(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleBoard(ctx, req)
}

// HandleCreateCategory is the exported handler for the "create_category" tool.
func (s *Server) HandleCreateCategory(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleCreateCategory(ctx, req)
}

// HandleAddKnowledge is the exported handler for the "add_knowledge" tool.
func (s *Server) HandleAddKnowledge(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleAddKnowledge(ctx, req)
}

// HandleCreateThought is the exported handler for the "create_thought" tool.
func (s *Server) HandleCreateThought(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleCreateThought(ctx, req)
}

// HandleSetThoughtText is the exported handler for the "set_thought_text" tool.
func (s *Server) HandleSetThoughtText(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleSetThoughtText(ctx, req)
}

// HandlePlace is the exported handler for the "place" tool.
func (s *Server) HandlePlace(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handlePlace(ctx, req)
}

// HandleLoadTemplate is the exported handler for the "load_template" tool.
func (s *Server) HandleLoadTemplate(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleLoadTemplate(ctx, req)
}

// HandleListTemplates is the exported handler for the "list_templates" tool.
func (s *Server) HandleListTemplates(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleListTemplates(ctx, req)
}

// --- helpers ---

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// boardError turns a board error into a tool error result. Persistence
// failures are logged since the caller only sees the message.
func (s *Server) boardError(tool string, err error) *mcpgo.CallToolResult {
	if errors.Is(err, board.ErrPersist) {
		s.logger.Error("mcp: board not persisted", "tool", tool, "error", err)
	}
	return mcpgo.NewToolResultErrorf("%s failed: %s", tool, err.Error())
}

func requireString(req mcpgo.CallToolRequest, name string) (string, *mcpgo.CallToolResult) {
	v := req.GetString(name, "")
	if strings.TrimSpace(v) == "" {
		return "", mcpgo.NewToolResultErrorf("%s is required and must not be empty", name)
	}
	return v, nil
}

// --- tool definitions ---

func buildBoardTool() mcpgo.Tool {
	return mcpgo.NewTool("board",
		mcpgo.WithDescription("Return the whole board: memory categories with their knowledge items, thoughts with placed references, and custom templates."),
	)
}

func buildCreateCategoryTool() mcpgo.Tool {
	return mcpgo.NewTool("create_category",
		mcpgo.WithDescription("Create an empty memory category."),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Category name"),
		),
	)
}

func buildAddKnowledgeTool() mcpgo.Tool {
	return mcpgo.NewTool("add_knowledge",
		mcpgo.WithDescription("Add a knowledge item (name plus relation) to a category."),
		mcpgo.WithString("category_id",
			mcpgo.Required(),
			mcpgo.Description("ID of the category to add to"),
		),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Knowledge name"),
		),
		mcpgo.WithString("relation",
			mcpgo.Required(),
			mcpgo.Description("What the knowledge relates, e.g. inputs to outputs"),
		),
	)
}

func buildCreateThoughtTool() mcpgo.Tool {
	return mcpgo.NewTool("create_thought",
		mcpgo.WithDescription("Create an empty thought sheet."),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Thought name"),
		),
	)
}

func buildSetThoughtTextTool() mcpgo.Tool {
	return mcpgo.NewTool("set_thought_text",
		mcpgo.WithDescription("Replace the free text of a thought."),
		mcpgo.WithString("thought_id",
			mcpgo.Required(),
			mcpgo.Description("ID of the thought"),
		),
		mcpgo.WithString("text",
			mcpgo.Description("New text; empty clears it"),
		),
	)
}

func buildPlaceTool() mcpgo.Tool {
	return mcpgo.NewTool("place",
		mcpgo.WithDescription("Place a snapshot of a category or knowledge item onto a thought."),
		mcpgo.WithString("thought_id",
			mcpgo.Required(),
			mcpgo.Description("ID of the target thought"),
		),
		mcpgo.WithString("source_id",
			mcpgo.Required(),
			mcpgo.Description("ID of the category or knowledge item to place"),
		),
	)
}

func buildLoadTemplateTool() mcpgo.Tool {
	return mcpgo.NewTool("load_template",
		mcpgo.WithDescription("Append a built-in or custom template's categories to the board."),
		mcpgo.WithString("name",
			mcpgo.Required(),
			mcpgo.Description("Template name, e.g. math or cooking"),
		),
	)
}

func buildListTemplatesTool() mcpgo.Tool {
	return mcpgo.NewTool("list_templates",
		mcpgo.WithDescription("List built-in and custom templates."),
	)
}

// --- tool handlers ---

func (s *Server) handleBoard(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return toolResultJSON(s.board.Snapshot())
}

func (s *Server) handleCreateCategory(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	name, errResult := requireString(req, "name")
	if errResult != nil {
		return errResult, nil
	}
	cat, err := s.board.CreateCategory(ctx, name)
	if err != nil {
		return s.boardError("create_category", err), nil
	}
	s.logger.Info("mcp: category created", "id", cat.ID)
	return toolResultJSON(cat)
}

func (s *Server) handleAddKnowledge(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	categoryID := req.GetString("category_id", "")
	name := req.GetString("name", "")
	relation := req.GetString("relation", "")

	k, err := s.board.CreateKnowledge(ctx, categoryID, name, relation)
	if err != nil {
		return s.boardError("add_knowledge", err), nil
	}
	s.logger.Info("mcp: knowledge added", "id", k.ID, "category", categoryID)
	return toolResultJSON(k)
}

func (s *Server) handleCreateThought(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	name, errResult := requireString(req, "name")
	if errResult != nil {
		return errResult, nil
	}
	th, err := s.board.CreateThought(ctx, name)
	if err != nil {
		return s.boardError("create_thought", err), nil
	}
	s.logger.Info("mcp: thought created", "id", th.ID)
	return toolResultJSON(th)
}

func (s *Server) handleSetThoughtText(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	id, errResult := requireString(req, "thought_id")
	if errResult != nil {
		return errResult, nil
	}
	if err := s.board.SetThoughtText(ctx, id, req.GetString("text", "")); err != nil {
		return s.boardError("set_thought_text", err), nil
	}
	th, ok := s.board.Thought(id)
	if !ok {
		return mcpgo.NewToolResultErrorf("thought %q not found", id), nil
	}
	return toolResultJSON(th)
}

// handlePlace performs a drag and drop in one step.
func (s *Server) handlePlace(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	thoughtID, errResult := requireString(req, "thought_id")
	if errResult != nil {
		return errResult, nil
	}
	sourceID, errResult := requireString(req, "source_id")
	if errResult != nil {
		return errResult, nil
	}
	if _, ok := s.board.Thought(thoughtID); !ok {
		return mcpgo.NewToolResultErrorf("thought %q not found", thoughtID), nil
	}
	ref, ok := s.board.DragSource(sourceID)
	if !ok {
		return mcpgo.NewToolResultErrorf("no category or knowledge item with id %q", sourceID), nil
	}
	if err := s.board.DropReference(ctx, thoughtID, ref); err != nil {
		return s.boardError("place", err), nil
	}
	th, ok := s.board.Thought(thoughtID)
	if !ok {
		return mcpgo.NewToolResultErrorf("thought %q not found", thoughtID), nil
	}
	return toolResultJSON(th)
}

func (s *Server) handleLoadTemplate(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	name, errResult := requireString(req, "name")
	if errResult != nil {
		return errResult, nil
	}
	n, err := s.board.LoadNamedTemplate(ctx, name)
	if err != nil {
		return s.boardError("load_template", err), nil
	}
	s.logger.Info("mcp: template loaded", "template", name, "categories", n)
	return toolResultJSON(map[string]any{
		"template":         name,
		"categories_added": n,
	})
}

func (s *Server) handleListTemplates(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return toolResultJSON(map[string]any{"templates": s.board.Templates()})
}
