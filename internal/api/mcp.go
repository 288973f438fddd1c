package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/checkmate/internal/storage"
)

// MCPDeps holds dependencies for the MCP server. The MCP surface is a local
// single-user companion, so it keeps one shared conversation.
type MCPDeps struct {
	Store        *storage.Store
	NewAssistant func() Assistant
	Commentator  Commentator
}

// NewMCPServer creates an MCP server exposing the chat pipeline and calendar
// advisory tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"checkmate",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("checkmate is a calendar assistant that detects schedules in chat messages and extracts calendar events."),
		server.WithRecovery(),
	)

	conv := &session{assistant: deps.NewAssistant()}

	s.AddTool(
		mcp.NewTool("process_message",
			mcp.WithDescription("Run a chat message through the schedule pipeline: detect intent, extract events or reply conversationally."),
			mcp.WithString("message", mcp.Description("The user's chat message"), mcp.Required()),
		),
		mcpProcessMessage(conv),
	)

	s.AddTool(
		mcp.NewTool("reset_conversation",
			mcp.WithDescription("Clear the shared conversation history."),
		),
		mcpResetConversation(conv),
	)

	s.AddTool(
		mcp.NewTool("upcoming_events",
			mcp.WithDescription("List a user's events for the coming days."),
			mcp.WithString("username", mcp.Description("Account username"), mcp.Required()),
			mcp.WithNumber("days", mcp.Description("Window size in days (default 7)")),
		),
		mcpUpcomingEvents(deps),
	)

	s.AddTool(
		mcp.NewTool("smart_comment",
			mcp.WithDescription("Generate a short friendly remark about a user's upcoming schedule."),
			mcp.WithString("username", mcp.Description("Account username"), mcp.Required()),
			mcp.WithNumber("days", mcp.Description("Window size in days (default 7)")),
		),
		mcpSmartComment(deps),
	)

	return s
}

func mcpProcessMessage(conv *session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}

		conv.mu.Lock()
		result, err := conv.assistant.Process(ctx, message)
		conv.mu.Unlock()
		if err != nil {
			return mcpError(fmt.Sprintf("processing failed: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResetConversation(conv *session) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		conv.mu.Lock()
		conv.assistant.Reset()
		conv.mu.Unlock()
		return mcpText("conversation reset"), nil
	}
}

func mcpUserEvents(deps MCPDeps, req mcp.CallToolRequest) ([]storage.Event, *mcp.CallToolResult) {
	username, err := req.RequireString("username")
	if err != nil {
		return nil, mcpError("username is required")
	}
	days := req.GetInt("days", 7)
	if days <= 0 {
		days = 7
	}

	user, err := deps.Store.GetUserByUsername(username)
	if err != nil {
		return nil, mcpError(fmt.Sprintf("unknown user %q", username))
	}

	now := time.Now()
	events, err := deps.Store.ListUserEventsBetween(
		user.ID,
		now.Format("2006-01-02"),
		now.AddDate(0, 0, days).Format("2006-01-02"),
	)
	if err != nil {
		return nil, mcpError(fmt.Sprintf("failed to list events: %v", err))
	}
	return events, nil
}

func mcpUpcomingEvents(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		events, errResult := mcpUserEvents(deps, req)
		if errResult != nil {
			return errResult, nil
		}

		out := make([]eventResponse, 0, len(events))
		for _, e := range events {
			out = append(out, toEventResponse(e))
		}
		b, err := json.Marshal(out)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal events: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSmartComment(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		events, errResult := mcpUserEvents(deps, req)
		if errResult != nil {
			return errResult, nil
		}

		comment, err := deps.Commentator.Comment(ctx, events)
		if err != nil {
			return mcpError(fmt.Sprintf("comment generation failed: %v", err)), nil
		}
		return mcpText(comment), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
