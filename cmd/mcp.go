package cmd

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/notably/recall/internal/logger"
	"github.com/notably/recall/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for LLM integration",
	Long: `Start a Model Context Protocol (MCP) server that allows LLMs to interact with your notes.

Tools:
- add_note: Create a new note
- find_similar: Find notes similar to a query
- get_note: Retrieve a note by ID
- list_notes: List notes with pagination
- summarize_note: Generate and store a summary

Resources:
- notes://recent: Most recently created notes

To use with Claude Desktop, add this to your claude_desktop_config.json:
{
  "mcpServers": {
    "recall": {
      "command": "recall",
      "args": ["mcp"]
    }
  }
}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	logger.Info("Starting MCP server...")

	notesServer := mcp.NewNotesServer(appConfig, noteRepo, searchSvc, indexer)
	mcpServer := notesServer.GetMCPServer()

	logger.Info("MCP server ready. Listening on stdio...")
	if err := server.ServeStdio(mcpServer); err != nil {
		if err.Error() != "EOF" {
			logger.Error("MCP server error: %v", err)
			return err
		}
	}

	logger.Info("MCP server shutting down")
	return nil
}
