package errors

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrMCPTool 将错误转换为 MCP 工具调用结果，前缀为错误类型
func ErrMCPTool(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: fmt.Sprintf("[%s] %s", GetType(err), err.Error()),
			},
		},
		IsError: true,
	}
}
