package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"itemqueue/internal/config"
	"itemqueue/internal/logging"
	"itemqueue/internal/queue"
)

// serverVersion identifies the tool server version.
const serverVersion = "0.1.0"

// Server binds queue operations to MCP tools.
type Server struct {
	mcpServer *mcp.Server
	manager   *queue.Manager
	logger    *slog.Logger
	lock      *instanceLock
	tools     []string
	running   atomic.Bool
}

// New registers the enabled tools for manager.
func New(cfg *config.Config, manager *queue.Manager, logger *slog.Logger) (*Server, error) {
	if cfg == nil || manager == nil {
		return nil, errors.New("tool server requires config and queue manager")
	}
	name := cfg.Server.Name
	if name == "" {
		name = "itemqueue"
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: name, Version: serverVersion}, nil),
		manager:   manager,
		logger:    logging.NewComponentLogger(logger, "mcp"),
	}
	if cfg.Server.LockPath != "" {
		s.lock = newInstanceLock(cfg.Server.LockPath)
	}

	tools := cfg.Tools
	if tools.Get.Enabled {
		mcp.AddTool(s.mcpServer, toolSpec(tools.Get, "Remove and return the item at the front or back of the queue. Returns found=false when the queue is empty."), s.getHandler())
		s.tools = append(s.tools, tools.Get.Name)
	}
	if tools.Push.Enabled {
		mcp.AddTool(s.mcpServer, toolSpec(tools.Push, "Add an item at the front or back of the queue. The item must match the queue item template."), s.pushHandler())
		s.tools = append(s.tools, tools.Push.Name)
	}
	if tools.Load.Enabled {
		mcp.AddTool(s.mcpServer, toolSpec(tools.Load, "Load a named template: replace the queue with it, or add its items as a block at the front or back."), s.loadHandler())
		s.tools = append(s.tools, tools.Load.Name)
	}
	if tools.List.Enabled {
		mcp.AddTool(s.mcpServer, toolSpec(tools.List, "List the templates available to load."), s.listHandler())
		s.tools = append(s.tools, tools.List.Name)
	}
	if len(s.tools) == 0 {
		return nil, errors.New("no tools enabled")
	}
	return s, nil
}

func toolSpec(tool config.Tool, fallback string) *mcp.Tool {
	description := tool.Description
	if description == "" {
		description = fallback
	}
	return &mcp.Tool{Name: tool.Name, Description: description}
}

// Tools returns the registered tool names in registration order.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// Serve acquires the instance lock and serves tools on stdio until the
// context ends or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	return s.ServeTransport(ctx, &mcp.StdioTransport{})
}

// ServeTransport is Serve over an arbitrary transport.
func (s *Server) ServeTransport(ctx context.Context, transport mcp.Transport) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("tool server already running")
	}
	defer s.running.Store(false)

	if s.lock != nil {
		if err := s.lock.acquire(); err != nil {
			return err
		}
		defer func() {
			if err := s.lock.release(); err != nil {
				s.logger.Warn("failed to release server lock", logging.Error(err))
			}
		}()
	}

	if err := s.manager.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize queue: %w", err)
	}

	s.logger.Info("tool server started", slog.Any("tools", s.tools))
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	s.logger.Info("tool server stopped")
	return err
}
