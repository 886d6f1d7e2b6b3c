package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	boardmcp "github.com/ajitpratap0/thoughtboard/internal/mcp"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  board             return the whole board
  create_category   create an empty category
  add_knowledge     add a knowledge item to a category
  create_thought    create an empty thought
  set_thought_text  replace a thought's text
  place             place a category or knowledge item on a thought
  load_template     append a built-in or custom template
  list_templates    list templates`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			s, err := openBoard(cmd.Context(), logger)
			if err != nil {
				return fmt.Errorf("mcp: %w", err)
			}
			defer func() { _ = s.Close() }()

			srv := boardmcp.NewServer(s.board, logger)

			// Use a standard log.Logger pointing at stderr for the mcp-go error logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: thoughtboard MCP server starting", "transport", "stdio")

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}

	return cmd
}
