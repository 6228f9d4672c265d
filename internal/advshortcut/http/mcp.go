package http

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/advshortcut/conf"
	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
	"github.com/sjzar/advshortcut/pkg/version"
)

func (s *Service) initMCPServer() {
	s.mcpServer = server.NewMCPServer(conf.AppName, version.Version)
	s.mcpServer.AddTool(ListShortcutsTool, s.handleMCPListShortcuts)
	s.mcpServer.AddTool(ExecuteShortcutTool, s.handleMCPExecuteShortcut)
	s.mcpServer.AddTool(ListGroupsTool, s.handleMCPListGroups)
	s.mcpSSEServer = server.NewSSEServer(s.mcpServer)
	s.mcpStreamableServer = server.NewStreamableHTTPServer(s.mcpServer)
}

var ListShortcutsTool = mcp.NewTool(
	"list_shortcuts",
	mcp.WithDescription(`List the user's shortcuts. Each line is "id,name,group,actions" where actions summarizes the steps the shortcut runs. Use it to find the id of a shortcut before executing it.`),
	mcp.WithString("group", mcp.Description("Only list shortcuts of this group id or name.")),
	mcp.WithString("keyword", mcp.Description("Only list shortcuts whose name contains this keyword.")),
)

var ExecuteShortcutTool = mcp.NewTool(
	"execute_shortcut",
	mcp.WithDescription(`Run a shortcut on the user's desktop: its actions launch or kill programs, open folders or URLs and wait, in order. Stops at the first failing action. Returns one log line per action.`),
	mcp.WithString("shortcut", mcp.Description("Shortcut id, or its exact name."), mcp.Required()),
)

var ListGroupsTool = mcp.NewTool(
	"list_groups",
	mcp.WithDescription(`List the shortcut groups in display order. Each line is "id,name,shortcut count".`),
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

type ListShortcutsRequest struct {
	Group   string `json:"group"`
	Keyword string `json:"keyword"`
}

func (s *Service) handleMCPListShortcuts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req ListShortcutsRequest
	if err := request.BindArguments(&req); err != nil {
		log.Error().Err(err).Interface("request", request.GetRawArguments()).Msg("failed to bind arguments")
		return errors.ErrMCPTool(err), nil
	}
	if err := s.store.WaitLoaded(ctx); err != nil {
		return errors.ErrMCPTool(err), nil
	}

	groups := s.store.Groups()
	groupName := make(map[string]string, len(groups))
	for _, g := range groups {
		groupName[g.ID] = g.Name
	}

	buf := &bytes.Buffer{}
	buf.WriteString("ID,Name,Group,Actions\n")
	for _, g := range groups {
		if req.Group != "" && req.Group != g.ID && !strings.EqualFold(req.Group, g.Name) {
			continue
		}
		for _, sc := range model.ShortcutsInGroup(s.store.Shortcuts(), g.ID) {
			if req.Keyword != "" && !strings.Contains(strings.ToLower(sc.Name), strings.ToLower(req.Keyword)) {
				continue
			}
			steps := make([]string, 0, len(sc.Actions))
			for _, a := range sc.Actions {
				steps = append(steps, model.Describe(a))
			}
			buf.WriteString(fmt.Sprintf("%s,%s,%s,%s\n", sc.ID, sc.Name, groupName[sc.GroupID], strings.Join(steps, " > ")))
		}
	}
	return textResult(buf.String()), nil
}

type ExecuteShortcutRequest struct {
	Shortcut string `json:"shortcut"`
}

func (s *Service) handleMCPExecuteShortcut(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req ExecuteShortcutRequest
	if err := request.BindArguments(&req); err != nil {
		log.Error().Err(err).Interface("request", request.GetRawArguments()).Msg("failed to bind arguments")
		return errors.ErrMCPTool(err), nil
	}
	if req.Shortcut == "" {
		return errors.ErrMCPTool(errors.RequiredParam("shortcut")), nil
	}
	if err := s.store.WaitLoaded(ctx); err != nil {
		return errors.ErrMCPTool(err), nil
	}

	sc, ok := s.findShortcut(req.Shortcut)
	if !ok {
		return errors.ErrMCPTool(errors.ErrShortcutNotFound(req.Shortcut)), nil
	}

	logs, err := s.executor.Execute(ctx, sc)
	if err != nil {
		log.Error().Err(err).Str("shortcut", sc.ID).Msg("mcp execute failed")
		res := errors.ErrMCPTool(err)
		if len(logs) > 0 {
			res.Content = append(res.Content, mcp.TextContent{Type: "text", Text: strings.Join(logs, "\n")})
		}
		return res, nil
	}
	return textResult(strings.Join(logs, "\n")), nil
}

func (s *Service) findShortcut(key string) (model.Shortcut, bool) {
	if sc, ok := s.store.Shortcut(key); ok {
		return sc, true
	}
	for _, sc := range s.store.Shortcuts() {
		if strings.EqualFold(sc.Name, key) {
			return sc, true
		}
	}
	return model.Shortcut{}, false
}

func (s *Service) handleMCPListGroups(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.store.WaitLoaded(ctx); err != nil {
		return errors.ErrMCPTool(err), nil
	}
	shortcuts := s.store.Shortcuts()
	buf := &bytes.Buffer{}
	buf.WriteString("ID,Name,Shortcuts\n")
	for _, g := range s.store.Groups() {
		buf.WriteString(fmt.Sprintf("%s,%s,%d\n", g.ID, g.Name, len(model.ShortcutsInGroup(shortcuts, g.ID))))
	}
	return textResult(buf.String()), nil
}
