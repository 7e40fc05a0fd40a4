package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"sentinelmind/internal/approval"
	"sentinelmind/internal/entra"
	"sentinelmind/internal/metrics"
	"sentinelmind/internal/okta"
	"sentinelmind/pkg/logging"
)

// Dependencies are the services the tools dispatch to. Entra and Okta may be
// nil when the corresponding provider is not configured.
type Dependencies struct {
	Entra     *entra.Service
	Okta      *okta.Service
	Lifecycle *approval.Lifecycle
	Metrics   *metrics.Metrics
}

// Definition is one registered tool.
type Definition struct {
	Tool        mcp.Tool
	Provider    string
	Destructive bool
	Handler     server.ToolHandlerFunc

	schema *jsonschema.Schema
}

type handlerFunc func(ctx context.Context, args arguments) (any, error)

// Registry holds the tool definitions for the configured providers.
type Registry struct {
	deps  Dependencies
	defs  []Definition
	index map[string]int
}

// NewRegistry builds and validates every tool for the configured providers.
func NewRegistry(deps Dependencies) (*Registry, error) {
	if deps.Lifecycle == nil {
		deps.Lifecycle = approval.NewLifecycle(false, nil)
	}

	r := &Registry{deps: deps, index: make(map[string]int)}

	if deps.Entra != nil {
		if err := r.addEntraTools(); err != nil {
			return nil, err
		}
	}
	if deps.Okta != nil {
		if err := r.addOktaTools(); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Definitions returns the registered tools sorted by name.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	sort.Slice(out, func(i, j int) bool { return out[i].Tool.Name < out[j].Tool.Name })
	return out
}

// Register adds every tool to s.
func (r *Registry) Register(s *server.MCPServer) {
	for _, def := range r.defs {
		s.AddTool(def.Tool, def.Handler)
	}
	logging.Info("Tools", "Registered %d tools", len(r.defs))
}

// Call invokes a tool by name outside of an MCP session.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	i, ok := r.index[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return r.defs[i].Handler(ctx, req)
}

// add registers a tool whose advertised input schema and validation schema
// are both schema.
func (r *Registry) add(provider string, destructive bool, name, description, schema string, fn handlerFunc) error {
	if _, dup := r.index[name]; dup {
		return fmt.Errorf("tool %s registered twice", name)
	}
	compiled, err := compileSchema(name, schema)
	if err != nil {
		return err
	}

	tool := mcp.NewToolWithRawSchema(name, description, json.RawMessage(schema))
	for _, opt := range []mcp.ToolOption{
		mcp.WithReadOnlyHintAnnotation(!destructive),
		mcp.WithDestructiveHintAnnotation(destructive),
	} {
		opt(&tool)
	}

	def := Definition{
		Tool:        tool,
		Provider:    provider,
		Destructive: destructive,
		schema:      compiled,
	}
	def.Handler = r.handle(def, fn)

	r.index[name] = len(r.defs)
	r.defs = append(r.defs, def)
	return nil
}

// Validate checks args against the schema of the named tool. It returns a
// *ValidationError when they do not satisfy it.
func (r *Registry) Validate(name string, args map[string]any) error {
	i, ok := r.index[name]
	if !ok {
		return fmt.Errorf("unknown tool %q", name)
	}
	return r.defs[i].validate(args)
}

func (d Definition) validate(args map[string]any) error {
	if err := d.schema.Validate(args); err != nil {
		return &ValidationError{Tool: d.Tool.Name, Err: err}
	}
	return nil
}

// handle wraps fn with argument validation, error mapping and metrics.
func (r *Registry) handle(def Definition, fn handlerFunc) server.ToolHandlerFunc {
	name := def.Tool.Name
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]any{}
		}

		if err := def.validate(args); err != nil {
			r.deps.Metrics.ObserveToolCall(name, "invalid")
			logging.Warn("Tools", "Rejected %s call: %v", name, err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		out, err := fn(ctx, arguments(args))
		if err != nil {
			r.deps.Metrics.ObserveToolCall(name, "error")
			logging.Error("Tools", err, "Tool %s failed", name)
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", name, err)), nil
		}

		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			r.deps.Metrics.ObserveToolCall(name, "error")
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode %s result: %v", name, err)), nil
		}

		r.deps.Metrics.ObserveToolCall(name, "success")
		return mcp.NewToolResultText(string(data)), nil
	}
}
