// Package mcp exposes a machine as an MCP tool server, over stdio or SSE,
// so agent hosts can fire events and inspect the configuration.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/detentlabs/detent/internal/presentation/graph"
	"github.com/detentlabs/detent/pkg/fsm"
)

// FireResponse aligns with the dispatch result structure used across
// adapters.
type FireResponse struct {
	State   string `json:"state" jsonschema_description:"The state to consider current after the dispatch"`
	Outcome string `json:"outcome" jsonschema_description:"One of transitioned, ignored or failed"`
	Reason  string `json:"reason" jsonschema_description:"Human readable explanation of the outcome"`
	Code    string `json:"code,omitempty" jsonschema_description:"Failure code when the outcome is failed"`
	Detail  string `json:"detail,omitempty" jsonschema_description:"Extra failure context"`
}

// CanFireResponse reports the outcome of a can_fire probe.
type CanFireResponse struct {
	CanFire bool `json:"can_fire" jsonschema_description:"Whether some rule would accept the event"`
}

// ValidationResponse reports the accumulated validator findings.
type ValidationResponse struct {
	Valid  bool     `json:"valid" jsonschema_description:"True when no defect was found"`
	Errors []string `json:"errors,omitempty" jsonschema_description:"One message per defect"`
}

// Engine defines the machine surface the MCP server exposes.
type Engine interface {
	FireWithResult(state, event string, ctx map[string]any) fsm.Result[string]
	CanFire(state, event string, ctx map[string]any) bool
	Info() fsm.Info[string, string]
	Validate() fsm.ValidationResult
}

// Server wraps a machine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("detent-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: fire_event
	fireTool := mcp.NewTool("fire_event",
		mcp.WithDescription("Dispatch an event in the given state and return the full result. Failures come back as a failed result, never as an error."),
		mcp.WithString("state", mcp.Required(), mcp.Description("Current state")),
		mcp.WithString("event", mcp.Required(), mcp.Description("Event to dispatch")),
		mcp.WithString("context", mcp.Description("JSON object passed to guards and actions (optional)")),
		mcp.WithOutputSchema[FireResponse](),
	)
	s.mcpServer.AddTool(fireTool, mcp.NewStructuredToolHandler(s.handleFire))

	// TOOL: can_fire
	canFireTool := mcp.NewTool("can_fire",
		mcp.WithDescription("Check whether an event would be accepted in the given state, without executing anything."),
		mcp.WithString("state", mcp.Required(), mcp.Description("Current state")),
		mcp.WithString("event", mcp.Required(), mcp.Description("Event to probe")),
		mcp.WithString("context", mcp.Description("JSON object passed to guards (optional)")),
		mcp.WithOutputSchema[CanFireResponse](),
	)
	s.mcpServer.AddTool(canFireTool, mcp.NewStructuredToolHandler(s.handleCanFire))

	// TOOL: validate
	validateTool := mcp.NewTool("validate",
		mcp.WithDescription("Run the static validator over the machine configuration."),
		mcp.WithOutputSchema[ValidationResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: get_info
	s.mcpServer.AddTool(mcp.NewTool("get_info",
		mcp.WithDescription("Get the machine configuration snapshot: states, events and transitions."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.engine.Info())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("info failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: get_graph
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the machine as a Mermaid state diagram."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(graph.Mermaid(s.engine.Info(), nil)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleFire(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FireResponse, error) {
	state, _ := args["state"].(string)
	event, _ := args["event"].(string)
	if state == "" || event == "" {
		return FireResponse{}, fmt.Errorf("state and event are required")
	}

	machineCtx, err := parseContext(args)
	if err != nil {
		return FireResponse{}, err
	}

	res := s.engine.FireWithResult(state, event, machineCtx)

	resp := FireResponse{
		State:   res.State,
		Outcome: res.Outcome.String(),
		Reason:  res.Reason,
	}
	if res.Debug != nil {
		resp.Code = res.Debug.Code
		resp.Detail = res.Debug.Detail
	}
	return resp, nil
}

func (s *Server) handleCanFire(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CanFireResponse, error) {
	state, _ := args["state"].(string)
	event, _ := args["event"].(string)
	if state == "" || event == "" {
		return CanFireResponse{}, fmt.Errorf("state and event are required")
	}

	machineCtx, err := parseContext(args)
	if err != nil {
		return CanFireResponse{}, err
	}

	return CanFireResponse{CanFire: s.engine.CanFire(state, event, machineCtx)}, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidationResponse, error) {
	v := s.engine.Validate()
	return ValidationResponse{Valid: v.Valid, Errors: v.Errors}, nil
}

func parseContext(args map[string]interface{}) (map[string]any, error) {
	ctxStr, ok := args["context"].(string)
	if !ok || ctxStr == "" {
		return nil, nil
	}

	var machineCtx map[string]any
	if err := json.Unmarshal([]byte(ctxStr), &machineCtx); err != nil {
		return nil, fmt.Errorf("context must be a JSON object: %w", err)
	}
	return machineCtx, nil
}

func (s *Server) registerResources() {
	// EXPOSE: detent://graph
	s.mcpServer.AddResource(mcp.NewResource("detent://graph", "Machine Configuration Snapshot",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Info())
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot configuration: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "detent://graph",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
