package kit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPDecodeResult is what a tool's decode function produces: the typed
// request for the endpoint, plus an optional context enrichment that tags
// the call (transport, actor, session) before the endpoint runs.
type MCPDecodeResult struct {
	Request   any
	EnrichCtx func(context.Context) context.Context
}

// toolError reports a failure as a tool-level error so the agent sees the
// message instead of a broken protocol exchange.
func toolError(err error) (*mcp.CallToolResult, error) {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res, nil
}

// RegisterMCPTool exposes an Endpoint as an MCP tool. The decode function
// pulls the typed request out of req.Params.Arguments (json.RawMessage in the
// official SDK); the endpoint's response is marshalled into a single text
// content block.
func RegisterMCPTool(srv *mcp.Server, tool *mcp.Tool, endpoint Endpoint, decode func(*mcp.CallToolRequest) (*MCPDecodeResult, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		decoded, err := decode(req)
		if err != nil {
			return toolError(errors.New("invalid arguments: " + err.Error()))
		}
		if decoded.EnrichCtx != nil {
			ctx = decoded.EnrichCtx(ctx)
		}
		resp, err := endpoint(ctx, decoded.Request)
		if err != nil {
			return toolError(errors.New(err.Error()))
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return toolError(errors.New("marshal response: " + err.Error()))
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}
