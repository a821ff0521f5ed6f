package loom

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

type obsService struct{}

func TestObservers_ResolveHook(t *testing.T) {
	t.Parallel()

	type record struct {
		key string
		err error
	}
	var records []record

	r := NewRegistry(WithResolveObserver(func(key string, d time.Duration, err error) {
		records = append(records, record{key: key, err: err})
	}))
	if err := AddSingleton[*obsService](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	p := r.BuildProvider()

	if _, err := Get[*obsService](p); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := p.Get(Named("missing")); err == nil {
		t.Fatal("expected failure for unknown key")
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(records))
	}
	if !strings.Contains(records[0].key, "obsService") || records[0].err != nil {
		t.Errorf("unexpected first record %+v", records[0])
	}
	if records[1].key != "#missing" || records[1].err == nil {
		t.Errorf("unexpected second record %+v", records[1])
	}
}

func TestObservers_LoggerIsUsed(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	r := NewRegistry(WithLogger(logger))
	if err := AddSingleton[*obsService](r); err != nil {
		t.Fatalf("register: %v", err)
	}

	if !strings.Contains(sb.String(), "service registered") {
		t.Errorf("expected a registration log line, got:\n%s", sb.String())
	}
}
