package cron

import (
	"context"
	"strings"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string                       { return s.name }
func (s *stubJob) Run(context.Context) (Result, error) { return nil, nil }

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	history := &stubJob{name: "discount-history-sync"}
	retention := &stubJob{name: "outbox-retention"}
	registry, err := NewRegistry(history, nil, retention)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	jobs := registry.Jobs()
	if len(jobs) != 2 || jobs[0] != history || jobs[1] != retention {
		t.Fatalf("unexpected jobs %v", jobs)
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatal("internal slice leaked")
	}
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	_, err := NewRegistry(&stubJob{name: "outbox-retention"}, &stubJob{name: "outbox-retention"})
	if err == nil || !strings.Contains(err.Error(), "registered twice") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := NewRegistry(&stubJob{}); err == nil {
		t.Fatal("expected empty name error")
	}
}

func TestRegistrySelect(t *testing.T) {
	registry, err := NewRegistry(&stubJob{name: "discount-history-sync"}, &stubJob{name: "outbox-retention"})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	all, err := registry.Select([]string{" ", ""})
	if err != nil || len(all.Jobs()) != 2 {
		t.Fatalf("expected every job for an empty selection, got %v %v", all, err)
	}

	only, err := registry.Select([]string{" outbox-retention "})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if jobs := only.Jobs(); len(jobs) != 1 || jobs[0].Name() != "outbox-retention" {
		t.Fatalf("unexpected selection %v", jobs)
	}

	_, err = registry.Select([]string{"order-ttl"})
	if err == nil || !strings.Contains(err.Error(), "discount-history-sync, outbox-retention") {
		t.Fatalf("expected unknown job error listing known jobs, got %v", err)
	}
}
