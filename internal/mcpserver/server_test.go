package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"itemqueue/internal/config"
	"itemqueue/internal/item"
	"itemqueue/internal/logging"
	"itemqueue/internal/queue"
	"itemqueue/internal/testsupport"
)

type harness struct {
	session *mcp.ClientSession
	manager *queue.Manager
	cfg     *config.Config
}

func startServer(t *testing.T, cfg *config.Config) *harness {
	t.Helper()

	manager, err := queue.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("queue.New: %v", err)
	}
	t.Cleanup(func() { _ = manager.Close() })

	server, err := New(cfg, manager, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ServeTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer connectCancel()
	session, err := client.Connect(connectCtx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect client: %v", err)
	}

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-serveErr:
			if err != nil {
				t.Errorf("serve returned error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("server did not stop after cancel")
		}
		_ = session.Close()
	})

	return &harness{session: session, manager: manager, cfg: cfg}
}

func (h *harness) call(t *testing.T, name string, args any) *mcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := h.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	return result
}

func decodeStructuredContent[T any](t *testing.T, value any) T {
	t.Helper()

	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var output T
	if err := json.Unmarshal(data, &output); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return output
}

func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestPushAndGetTools(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithBackend(config.BackendMemory),
		testsupport.WithItemTemplate(map[string]string{"task": "string"}),
	)
	h := startServer(t, cfg)

	if result := h.call(t, "push_item", map[string]any{"item": map[string]any{"task": "a"}}); result.IsError {
		t.Fatalf("push_item failed: %s", resultText(result))
	}
	if result := h.call(t, "push_item", map[string]any{"item": map[string]any{"task": "b"}, "end": "front"}); result.IsError {
		t.Fatalf("push_item front failed: %s", resultText(result))
	}

	for _, want := range []string{"b", "a"} {
		result := h.call(t, "get_item", nil)
		if result.IsError {
			t.Fatalf("get_item failed: %s", resultText(result))
		}
		got := decodeStructuredContent[GetResult](t, result.StructuredContent)
		if !got.Found || got.Item["task"] != want {
			t.Fatalf("get_item = %+v, want task %q", got, want)
		}
	}

	empty := decodeStructuredContent[GetResult](t, h.call(t, "get_item", map[string]any{"end": "back"}).StructuredContent)
	if empty.Found || empty.Item != nil {
		t.Fatalf("expected empty result, got %+v", empty)
	}
}

func TestPushToolRejectsMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithBackend(config.BackendMemory),
		testsupport.WithItemTemplate(map[string]string{"task": "string"}),
	)
	h := startServer(t, cfg)

	result := h.call(t, "push_item", map[string]any{"item": map[string]any{"task": 1}})
	if !result.IsError {
		t.Fatal("expected tool error for mismatched item")
	}
	if text := resultText(result); !strings.Contains(text, "[schema_mismatch]") {
		t.Fatalf("expected schema mismatch kind, got %q", text)
	}

	items, err := h.manager.Items(context.Background())
	if err != nil || len(items) != 0 {
		t.Fatalf("queue changed after rejected push: %v, %v", items, err)
	}
}

func TestPushToolKeepsFieldOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.BackendCSV), testsupport.WithActiveTemplate("queue"))
	h := startServer(t, cfg)

	if result := h.call(t, "push_item", json.RawMessage(`{"item":{"zeta":"z","alpha":1}}`)); result.IsError {
		t.Fatalf("push_item failed: %s", resultText(result))
	}
	items, err := h.manager.Items(context.Background())
	if err != nil || len(items) != 1 {
		t.Fatalf("Items = %v, %v", items, err)
	}
	if !items[0].Equal(item.New("zeta", "z", "alpha", 1.0)) {
		t.Fatalf("item = %v", items[0])
	}
	if keys := strings.Join(items[0].Keys(), ","); keys != "zeta,alpha" {
		t.Fatalf("field order = %s, want zeta,alpha", keys)
	}
}

func TestLoadAndListTools(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithActiveTemplate("queue"))
	testsupport.WriteTemplate(t, cfg.Files.TemplatesDir, "t.json", `[{"v":1},{"v":2}]`)
	testsupport.WriteTemplate(t, cfg.Files.TemplatesDir, "queue.json", `[{"v":3}]`)
	h := startServer(t, cfg)

	list := decodeStructuredContent[ListResult](t, h.call(t, "list_templates", nil).StructuredContent)
	if strings.Join(list.Templates, ",") != "queue,t" {
		t.Fatalf("list_templates = %v", list.Templates)
	}

	result := h.call(t, "load_template", map[string]any{"template_id": "t", "mode": "front"})
	if result.IsError {
		t.Fatalf("load_template failed: %s", resultText(result))
	}
	loaded := decodeStructuredContent[LoadResult](t, result.StructuredContent)
	if loaded.Loaded != 2 || loaded.Mode != "front" {
		t.Fatalf("load_template = %+v", loaded)
	}

	items, err := h.manager.Items(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []item.Item{item.New("v", 1.0), item.New("v", 2.0), item.New("v", 3.0)}
	if !item.EqualAll(items, want) {
		t.Fatalf("queue = %v, want %v", items, want)
	}

	missing := h.call(t, "load_template", map[string]any{"template_id": "nope"})
	if !missing.IsError || !strings.Contains(resultText(missing), "[not_found]") {
		t.Fatalf("expected not found tool error, got %+v", missing)
	}
	badMode := h.call(t, "load_template", map[string]any{"template_id": "t", "mode": "sideways"})
	if !badMode.IsError {
		t.Fatal("expected error for unknown mode")
	}
}

func TestToolConfiguration(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.BackendMemory))
	cfg.Tools.Get.Name = "next_task"
	cfg.Tools.List.Enabled = false

	h := startServer(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	listed, err := h.session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	var names []string
	for _, tool := range listed.Tools {
		names = append(names, tool.Name)
	}
	joined := strings.Join(names, ",")
	if !strings.Contains(joined, "next_task") || strings.Contains(joined, "list_templates") || strings.Contains(joined, "get_item") {
		t.Fatalf("unexpected tools %v", names)
	}
}

func TestNewRegistersEnabledTools(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.BackendMemory))
	cfg.Tools.Push.Enabled = false
	cfg.Tools.Load.Name = "load_plan"

	manager, err := queue.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	server, err := New(cfg, manager, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := strings.Join(server.Tools(), ","); got != "get_item,load_plan,list_templates" {
		t.Fatalf("Tools() = %s", got)
	}
}

func TestNewRequiresTools(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.BackendMemory))
	cfg.Tools.Get.Enabled = false
	cfg.Tools.Push.Enabled = false
	cfg.Tools.Load.Enabled = false
	cfg.Tools.List.Enabled = false

	manager, err := queue.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(cfg, manager, nil); err == nil {
		t.Fatal("expected error when every tool is disabled")
	}
}

func TestInstanceLock(t *testing.T) {
	path := testsupport.BaseDir(testsupport.NewConfig(t)) + "/itemqueue.lock"

	first := newInstanceLock(path)
	if err := first.acquire(); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer first.release()

	second := newInstanceLock(path)
	if err := second.acquire(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected already running, got %v", err)
	}
}

func TestParseEnd(t *testing.T) {
	tests := []struct {
		in, fallback, want string
		wantErr            bool
	}{
		{"", endFront, endFront, false},
		{" BACK ", endFront, endBack, false},
		{"front", endBack, endFront, false},
		{"middle", endBack, "", true},
	}
	for _, tt := range tests {
		got, err := parseEnd(tt.in, tt.fallback)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("parseEnd(%q) = %q, %v", tt.in, got, err)
		}
	}
}
