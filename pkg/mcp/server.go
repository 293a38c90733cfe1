package mcp

import (
	"context"
	"encoding/json"
	"net/url"
	"slices"

	"github.com/gtonic/legalapi-cli/pkg/legalapi"
	"github.com/gtonic/legalapi-cli/pkg/openapi/catalog"
	"github.com/gtonic/legalapi-cli/pkg/rest"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Serve exposes every catalog operation as an MCP tool over stdio. Tool names
// are the operation ids, so an MCP host sees the same surface as a direct
// library caller.
func Serve(client *legalapi.Client, version string) error {
	srv := server.NewMCPServer("legalapi", version,
		server.WithToolCapabilities(false),
	)

	for _, op := range client.Catalog().All() {
		srv.AddTool(newTool(op), newHandler(client, op))
	}

	return server.ServeStdio(srv)
}

func newTool(op catalog.Operation) mcp.Tool {
	options := []mcp.ToolOption{
		mcp.WithDescription(op.Doc()),
	}

	for _, name := range op.PathParams {
		options = append(options, mcp.WithString(name,
			mcp.Description("path parameter"),
			mcp.Required(),
		))
	}

	for _, name := range op.QueryParams {
		options = append(options, mcp.WithString(name,
			mcp.Description("query parameter"),
		))
	}

	if op.ContentType != "" {
		options = append(options, mcp.WithObject("body",
			mcp.Description("request body"),
		))
	}

	return mcp.NewTool(op.ID, options...)
}

// convertArgs normalizes the request arguments, which arrive untyped from
// the transport layer.
func convertArgs(val any) map[string]any {
	if args, ok := val.(map[string]any); ok {
		return args
	}

	data, err := json.Marshal(val)

	if err != nil {
		return nil
	}

	var args map[string]any

	if err := json.Unmarshal(data, &args); err != nil {
		return nil
	}

	return args
}

func newHandler(client *legalapi.Client, op catalog.Operation) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := rest.Args{
			Path:  map[string]string{},
			Query: url.Values{},
		}

		for name, value := range convertArgs(request.Params.Arguments) {
			if name == "body" {
				args.Body = value
				continue
			}

			s, ok := value.(string)

			if !ok {
				continue
			}

			if slices.Contains(op.PathParams, name) {
				args.Path[name] = s
			} else {
				args.Query.Set(name, s)
			}
		}

		result, err := client.Call(ctx, op.ID, args)

		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		value, err := result.Value()

		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if raw, ok := value.([]byte); ok {
			return mcp.NewToolResultText(string(raw)), nil
		}

		data, err := json.Marshal(value)

		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}
