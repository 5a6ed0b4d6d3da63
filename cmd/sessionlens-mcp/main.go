// sessionlens-mcp exposes the session analyzer over MCP stdio so agent
// clients can inspect their own (or other agents') session logs.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"sessionlens/internal/analysis"
	"sessionlens/internal/app"
	"sessionlens/internal/logfile"
)

const version = "1.0.0"

func main() {
	configFlag := flag.String("config", app.DefaultConfigPath(), "config file path")
	flag.Parse()

	cfg, err := app.LoadConfig(*configFlag)
	if err != nil {
		log.Fatalf("sessionlens-mcp: %v", err)
	}
	opts := analysis.ReportOptions{
		Options: analysis.Options{ResumeGap: time.Duration(cfg.ResumeGapMinutes * float64(time.Minute))},
	}

	mcpServer := server.NewMCPServer(
		"sessionlens-mcp",
		version,
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("session_stats",
			mcp.WithDescription("Aggregate counts, token usage and tree shape for one session log"),
			mcp.WithString("path", mcp.Required(), mcp.Description("path to a .jsonl session log")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			path, err := req.RequireString("path")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			sess, err := logfile.Load(path)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			tree := analysis.BuildTree(sess.Entries)
			return jsonResult(analysis.CalculateStats(sess.Entries, tree))
		},
	)

	mcpServer.AddTool(
		mcp.NewTool("session_segments",
			mcp.WithDescription("Partition one session log into segments with their boundary causes"),
			mcp.WithString("path", mcp.Required(), mcp.Description("path to a .jsonl session log")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			path, err := req.RequireString("path")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			sess, err := logfile.Load(path)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			boundaries := analysis.DetectBoundaries(sess.Entries, opts.Options)
			return jsonResult(analysis.ExtractSegments(sess.Entries, boundaries))
		},
	)

	mcpServer.AddTool(
		mcp.NewTool("session_signals",
			mcp.WithDescription("Full analysis report: segments plus friction/delight signals and manual flags"),
			mcp.WithString("path", mcp.Required(), mcp.Description("path to a .jsonl session log")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			path, err := req.RequireString("path")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			sess, err := logfile.Load(path)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return jsonResult(analysis.Analyze(sess.Entries, opts))
		},
	)

	mcpServer.AddTool(
		mcp.NewTool("fork_graph",
			mcp.WithDescription("Fork relationships declared across every session log in a directory"),
			mcp.WithString("dir", mcp.Required(), mcp.Description("directory of .jsonl session logs")),
		),
		func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			dir, err := req.RequireString("dir")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			sessions, _, err := logfile.LoadDir(dir)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return jsonResult(analysis.FindForks(logfile.Headers(sessions)))
		},
	)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("sessionlens-mcp: %v", err)
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
