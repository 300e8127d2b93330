package loader_test

import (
	"context"
	"errors"
	"testing"

	"itemqueue/internal/item"
	"itemqueue/internal/loader"
)

func TestNewMemoryRequiresPut(t *testing.T) {
	_, err := loader.NewMemory(loader.MemoryConfig{})
	if !errors.Is(err, loader.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestMemoryFrontBack(t *testing.T) {
	ctx := context.Background()
	m, err := loader.NewMemory(loader.MemoryConfig{Put: true, Seed: []item.Item{item.New("v", 2.0)}})
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if err := m.AddItemFront(ctx, item.New("v", 1.0)); err != nil {
		t.Fatal(err)
	}
	if err := m.AddItemBack(ctx, item.New("v", 3.0)); err != nil {
		t.Fatal(err)
	}

	got, _ := m.GetItems(ctx)
	want := []item.Item{item.New("v", 1.0), item.New("v", 2.0), item.New("v", 3.0)}
	if !item.EqualAll(got, want) {
		t.Fatalf("items = %v, want %v", got, want)
	}

	back, ok, err := m.RemoveItemBack(ctx)
	if err != nil || !ok || !back.Equal(item.New("v", 3.0)) {
		t.Fatalf("RemoveItemBack = %v, %v, %v", back, ok, err)
	}
	front, ok, err := m.RemoveItemFront(ctx)
	if err != nil || !ok || !front.Equal(item.New("v", 1.0)) {
		t.Fatalf("RemoveItemFront = %v, %v, %v", front, ok, err)
	}
	if _, _, err := m.RemoveItemFront(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := m.RemoveItemBack(ctx); err != nil || ok {
		t.Fatalf("expected empty removal, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryTemplates(t *testing.T) {
	ctx := context.Background()
	m, err := loader.NewMemory(loader.MemoryConfig{Put: true, Seed: []item.Item{item.New("task", "a")}})
	if err != nil {
		t.Fatal(err)
	}

	ok, err := m.HasTemplate(ctx, "anything")
	if err != nil || !ok {
		t.Fatalf("HasTemplate = %v, %v; want true", ok, err)
	}
	loaded, err := m.LoadTemplate(ctx, "anything")
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil || len(loaded) != 0 {
		t.Fatalf("LoadTemplate = %v, want empty list", loaded)
	}
}

func TestMemoryLoadTemplateResetsItems(t *testing.T) {
	ctx := context.Background()
	m, err := loader.NewMemory(loader.MemoryConfig{Put: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SaveItems(ctx, []item.Item{item.New("a", 1.0)}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.LoadTemplate(ctx, "any"); err != nil {
		t.Fatal(err)
	}
	current, err := m.GetItems(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if current == nil || len(current) != 0 {
		t.Fatalf("items after LoadTemplate = %v, want empty", current)
	}
}

func TestMemoryContentDoesNotFixSchema(t *testing.T) {
	ctx := context.Background()
	m, err := loader.NewMemory(loader.MemoryConfig{Put: true, Seed: []item.Item{item.New("n", 1.0)}})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.SaveItems(ctx, []item.Item{item.New("task", "x", "done", false)}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetItems(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := m.LoadTemplate(ctx, "any"); err != nil {
		t.Fatal(err)
	}
	if schema := m.ItemSchema(); schema != nil {
		t.Fatalf("schema = %v, want none without a configured template", schema)
	}
}

func TestMemoryConfiguredSchemaWins(t *testing.T) {
	configured := item.Template{"task": item.KindString}
	m, err := loader.NewMemory(loader.MemoryConfig{
		Put:    true,
		Seed:   []item.Item{item.New("n", 1.0)},
		Schema: configured,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	if schema := m.ItemSchema(); len(schema) != 1 || schema["task"] != item.KindString {
		t.Fatalf("schema = %v, want configured", schema)
	}
}
