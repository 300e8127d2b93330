package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestQueuePushGetRoundTrip(t *testing.T) {
	env := setupCLITestEnv(t, "json")

	if _, _, err := runCLI(t, []string{"queue", "push", `{"task":"a","n":1}`}, env.configPath); err != nil {
		t.Fatalf("push a: %v", err)
	}
	out, _, err := runCLI(t, []string{"queue", "push", "--front", `{"task":"b","n":2}`}, env.configPath)
	if err != nil {
		t.Fatalf("push b: %v", err)
	}
	requireContains(t, out, "front")

	data, err := os.ReadFile(filepath.Join(env.templatesDir, "queue.json"))
	if err != nil {
		t.Fatalf("read queue file: %v", err)
	}
	if strings.Index(string(data), `"b"`) > strings.Index(string(data), `"a"`) {
		t.Fatalf("expected b before a on disk, got %s", data)
	}

	out, _, err = runCLI(t, []string{"queue", "get"}, env.configPath)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode get output %q: %v", out, err)
	}
	if got["task"] != "b" {
		t.Fatalf("expected b from the front, got %v", got)
	}

	out, _, err = runCLI(t, []string{"queue", "get", "--back"}, env.configPath)
	if err != nil {
		t.Fatalf("get back: %v", err)
	}
	requireContains(t, out, `"a"`)

	out, _, err = runCLI(t, []string{"queue", "get"}, env.configPath)
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestQueuePushRejectsMismatch(t *testing.T) {
	env := setupCLITestEnv(t, "json", "[queue.item_template]", `task = "string"`)

	_, _, err := runCLI(t, []string{"queue", "push", `{"task":5}`}, env.configPath)
	if err == nil {
		t.Fatal("expected schema mismatch error")
	}
	requireContains(t, err.Error(), "schema_mismatch")

	_, _, err = runCLI(t, []string{"queue", "push", `not json`}, env.configPath)
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestQueueLoadAndPeek(t *testing.T) {
	env := setupCLITestEnv(t, "csv")
	env.writeTemplate(t, "queue.csv", "task,n\nlive,0\n")
	env.writeTemplate(t, "morning.csv", "task,n\nwake,1\ncoffee,2\n")

	out, _, err := runCLI(t, []string{"queue", "load", "morning", "--mode", "back"}, env.configPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	requireContains(t, out, "Loaded 2 item(s)")

	out, _, err = runCLI(t, []string{"queue", "peek", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	var items []map[string]any
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode peek output %q: %v", out, err)
	}
	var tasks []string
	for _, it := range items {
		tasks = append(tasks, it["task"].(string))
	}
	if strings.Join(tasks, ",") != "live,wake,coffee" {
		t.Fatalf("queue = %v", tasks)
	}

	out, _, err = runCLI(t, []string{"queue", "peek"}, env.configPath)
	if err != nil {
		t.Fatalf("peek table: %v", err)
	}
	requireContains(t, out, "Task")
	requireContains(t, out, "coffee")

	if _, _, err := runCLI(t, []string{"queue", "load", "morning"}, env.configPath); err != nil {
		t.Fatalf("replace: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(env.templatesDir, "queue.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "task,n\nwake,1\ncoffee,2\n" {
		t.Fatalf("queue file after replace = %q", got)
	}
}

func TestQueueLoadErrors(t *testing.T) {
	env := setupCLITestEnv(t, "json")

	_, _, err := runCLI(t, []string{"queue", "load", "missing"}, env.configPath)
	if err == nil {
		t.Fatal("expected not found error")
	}
	requireContains(t, err.Error(), "not_found")

	env.writeTemplate(t, "t.json", `[{"a":1}]`)
	if _, _, err := runCLI(t, []string{"queue", "load", "t", "--mode", "sideways"}, env.configPath); err == nil {
		t.Fatal("expected invalid mode error")
	}
}

func TestTemplatesListAndShow(t *testing.T) {
	env := setupCLITestEnv(t, "json")
	env.writeTemplate(t, "queue.json", `[]`)
	env.writeTemplate(t, "b.json", `[{"step":"one"},{"step":"two"}]`)

	out, _, err := runCLI(t, []string{"templates", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(out), &ids); err != nil {
		t.Fatalf("decode list output %q: %v", out, err)
	}
	if strings.Join(ids, ",") != "b,queue" {
		t.Fatalf("templates = %v", ids)
	}

	out, _, err = runCLI(t, []string{"templates", "show", "b"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Step")
	requireContains(t, out, "two")

	out, _, err = runCLI(t, []string{"templates", "show", "queue"}, env.configPath)
	if err != nil {
		t.Fatalf("show empty: %v", err)
	}
	requireContains(t, out, "is empty")

	if _, _, err := runCLI(t, []string{"templates", "show", "nope"}, env.configPath); err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestQueueCommandsOnSQLite(t *testing.T) {
	env := setupCLITestEnv(t, "sqlite")

	if _, _, err := runCLI(t, []string{"queue", "push", `{"task":"x"}`}, env.configPath); err != nil {
		t.Fatalf("push: %v", err)
	}
	out, _, err := runCLI(t, []string{"templates", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "queue")

	out, _, err = runCLI(t, []string{"queue", "get"}, env.configPath)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	requireContains(t, out, `"x"`)
}
