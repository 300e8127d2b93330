package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/tidwall/gjson"

	"itemqueue/internal/item"
	"itemqueue/internal/logging"
	"itemqueue/internal/queue"
)

const (
	endFront = "front"
	endBack  = "back"

	loadReplace = "replace"
	loadFront   = "front"
	loadBack    = "back"
)

// GetInput represents the tool input for taking an item off the queue.
type GetInput struct {
	End string `json:"end,omitempty" jsonschema:"queue end to take from: front (default) or back"`
}

// GetResult represents the tool output for taking an item off the queue.
type GetResult struct {
	Found bool           `json:"found" jsonschema:"false when the queue was empty"`
	End   string         `json:"end" jsonschema:"queue end the item was taken from"`
	Item  map[string]any `json:"item,omitempty" jsonschema:"the removed item"`
}

// PushInput represents the tool input for adding an item.
type PushInput struct {
	Item map[string]any `json:"item" jsonschema:"item fields; must satisfy the queue item template"`
	End  string         `json:"end,omitempty" jsonschema:"queue end to insert at: back (default) or front"`
}

// PushResult represents the tool output for adding an item.
type PushResult struct {
	End string `json:"end" jsonschema:"queue end the item was inserted at"`
}

// LoadInput represents the tool input for loading a template.
type LoadInput struct {
	TemplateID string `json:"template_id" jsonschema:"template to load"`
	Mode       string `json:"mode,omitempty" jsonschema:"replace (default) makes the queue equal to the template; front or back splice it onto that end"`
}

// LoadResult represents the tool output for loading a template.
type LoadResult struct {
	TemplateID string `json:"template_id" jsonschema:"template that was loaded"`
	Mode       string `json:"mode" jsonschema:"how the template was applied"`
	Loaded     int    `json:"loaded" jsonschema:"number of items taken from the template"`
}

// ListInput represents the tool input for listing templates.
type ListInput struct{}

// ListResult represents the tool output for listing templates.
type ListResult struct {
	Templates []string `json:"templates" jsonschema:"available template ids"`
}

func (s *Server) getHandler() mcp.ToolHandlerFor[GetInput, GetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GetInput) (*mcp.CallToolResult, GetResult, error) {
		end, err := parseEnd(input.End, endFront)
		if err != nil {
			return nil, GetResult{}, err
		}
		ctx, logger, done := s.beginCall(ctx, "get_"+end)

		var (
			it item.Item
			ok bool
		)
		if end == endFront {
			it, ok, err = s.manager.GetFront(ctx)
		} else {
			it, ok, err = s.manager.GetBack(ctx)
		}
		done(err)
		if err != nil {
			return nil, GetResult{}, toolError(err)
		}
		result := GetResult{Found: ok, End: end}
		if ok {
			result.Item = it.Map()
		}
		logger.Debug("item taken", slog.Bool("found", ok))
		return nil, result, nil
	}
}

func (s *Server) pushHandler() mcp.ToolHandlerFor[PushInput, PushResult] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input PushInput) (*mcp.CallToolResult, PushResult, error) {
		end, err := parseEnd(input.End, endBack)
		if err != nil {
			return nil, PushResult{}, err
		}
		if input.Item == nil {
			return nil, PushResult{}, fmt.Errorf("item is required")
		}
		ctx, _, done := s.beginCall(ctx, "push_"+end)

		it := pushedItem(req, input.Item)
		if end == endFront {
			err = s.manager.PushFront(ctx, it)
		} else {
			err = s.manager.PushBack(ctx, it)
		}
		done(err)
		if err != nil {
			return nil, PushResult{}, toolError(err)
		}
		return nil, PushResult{End: end}, nil
	}
}

func (s *Server) loadHandler() mcp.ToolHandlerFor[LoadInput, LoadResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LoadInput) (*mcp.CallToolResult, LoadResult, error) {
		templateID := strings.TrimSpace(input.TemplateID)
		if templateID == "" {
			return nil, LoadResult{}, fmt.Errorf("template_id is required")
		}
		mode := strings.ToLower(strings.TrimSpace(input.Mode))
		if mode == "" {
			mode = loadReplace
		}

		var apply func(context.Context, string) (int, error)
		switch mode {
		case loadReplace:
			apply = s.manager.ReplaceFromTemplate
		case loadFront:
			apply = s.manager.AddFrontFromTemplate
		case loadBack:
			apply = s.manager.AddBackFromTemplate
		default:
			return nil, LoadResult{}, fmt.Errorf("mode must be replace, front, or back (got %q)", input.Mode)
		}

		ctx, _, done := s.beginCall(ctx, "load_"+mode)
		count, err := apply(ctx, templateID)
		done(err)
		if err != nil {
			return nil, LoadResult{}, toolError(err)
		}
		return nil, LoadResult{TemplateID: templateID, Mode: mode, Loaded: count}, nil
	}
}

func (s *Server) listHandler() mcp.ToolHandlerFor[ListInput, ListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ListResult, error) {
		ctx, _, done := s.beginCall(ctx, "list_templates")
		names, err := s.manager.Templates(ctx)
		done(err)
		if err != nil {
			return nil, ListResult{}, toolError(err)
		}
		if names == nil {
			names = []string{}
		}
		return nil, ListResult{Templates: names}, nil
	}
}

// beginCall tags ctx with a correlation id and operation, and returns a
// completion callback that logs the outcome.
func (s *Server) beginCall(ctx context.Context, operation string) (context.Context, *slog.Logger, func(error)) {
	ctx = logging.WithCorrelationID(ctx, uuid.NewString())
	ctx = logging.WithOperation(ctx, operation)
	logger := logging.WithContext(ctx, s.logger)
	started := time.Now()
	logger.Debug("tool call started")
	return ctx, logger, func(err error) {
		elapsed := slog.Duration("elapsed", time.Since(started))
		if err != nil {
			logger.Warn("tool call failed", elapsed, slog.String("error_kind", queue.ErrorKind(err)), logging.Error(err))
			return
		}
		logger.Info("tool call completed", elapsed)
	}
}

// pushedItem rebuilds the pushed item from the raw arguments so its field
// order survives; decoded maps lose it.
func pushedItem(req *mcp.CallToolRequest, fields map[string]any) item.Item {
	if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
		raw := gjson.GetBytes(req.Params.Arguments, "item")
		if raw.IsObject() {
			var it item.Item
			if err := it.UnmarshalJSON([]byte(raw.Raw)); err == nil {
				return it
			}
		}
	}
	return item.FromMap(fields)
}

func parseEnd(value, fallback string) (string, error) {
	end := strings.ToLower(strings.TrimSpace(value))
	switch end {
	case "":
		return fallback, nil
	case endFront, endBack:
		return end, nil
	default:
		return "", fmt.Errorf("end must be front or back (got %q)", value)
	}
}

func toolError(err error) error {
	return fmt.Errorf("[%s] %w", queue.ErrorKind(err), err)
}
