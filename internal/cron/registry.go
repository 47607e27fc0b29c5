package cron

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Job is a unit of scheduled catalog maintenance.
type Job interface {
	Name() string
	Run(ctx context.Context) (Result, error)
}

// Result holds the counters a job reports for one run, keyed by what was
// counted (opened, closed, rows_deleted).
type Result map[string]int64

// Registry holds jobs by unique name in registration order.
type Registry struct {
	jobs   []Job
	byName map[string]Job
}

// NewRegistry builds a registry from jobs. Nil jobs are skipped.
func NewRegistry(jobs ...Job) (*Registry, error) {
	registry := &Registry{byName: map[string]Job{}}
	for _, job := range jobs {
		if err := registry.Register(job); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register adds a job. Names must be unique.
func (r *Registry) Register(job Job) error {
	if job == nil {
		return nil
	}
	name := job.Name()
	if name == "" {
		return fmt.Errorf("cron job name required")
	}
	if r.byName == nil {
		r.byName = map[string]Job{}
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("cron job %q registered twice", name)
	}
	r.byName[name] = job
	r.jobs = append(r.jobs, job)
	return nil
}

// Jobs returns the registered jobs in the order they were added.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}

// Select narrows the registry to the named jobs, keeping registration order.
// An empty selection keeps every job.
func (r *Registry) Select(names []string) (*Registry, error) {
	wanted := map[string]struct{}{}
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			wanted[name] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return r, nil
	}
	for name := range wanted {
		if _, ok := r.byName[name]; !ok {
			return nil, fmt.Errorf("unknown cron job %q (known: %s)", name, strings.Join(r.names(), ", "))
		}
	}
	selected := &Registry{byName: map[string]Job{}}
	for _, job := range r.jobs {
		if _, ok := wanted[job.Name()]; ok {
			selected.jobs = append(selected.jobs, job)
			selected.byName[job.Name()] = job
		}
	}
	return selected, nil
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.jobs))
	for _, job := range r.jobs {
		names = append(names, job.Name())
	}
	sort.Strings(names)
	return names
}
