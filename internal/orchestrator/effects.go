package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitebundler/internal/logfields"
	"git.home.luguber.info/inful/sitebundler/internal/metrics"
	"git.home.luguber.info/inful/sitebundler/internal/observability"
)

// Criticality tags a side-effect task with its failure policy.
type Criticality string

const (
	// CriticalityFatal task errors fail the join they run in.
	CriticalityFatal Criticality = "fatal"

	// CriticalityBestEffort task errors are logged and dropped.
	CriticalityBestEffort Criticality = "best-effort"
)

// Task is a deferred asynchronous unit of work with no return value. The
// descriptor carries the failure policy so the join can apply one uniform
// rule instead of relying on call-site ordering.
type Task struct {
	Kind        string
	Criticality Criticality
	Run         func(ctx context.Context) error
}

// EffectSet is the append-only collection of side-effect tasks for one build.
// Tasks queue up between joins; Drain runs everything queued so far as one
// unordered parallel batch and empties the queue, so a later phase can append
// and drain a second batch.
type EffectSet struct {
	mu       sync.Mutex
	tasks    []Task
	recorder metrics.Recorder
}

// NewEffectSet creates an empty set reporting task metrics to recorder.
func NewEffectSet(recorder metrics.Recorder) *EffectSet {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &EffectSet{recorder: recorder}
}

// Add queues a task for the next drain.
func (s *EffectSet) Add(t Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, t)
}

// Len returns the number of currently queued tasks.
func (s *EffectSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Drain runs all queued tasks concurrently and waits for every one of them.
// Completion order within the batch is unspecified. Fatal task errors are
// joined and returned; best-effort errors are logged and dropped. Tasks that
// completed before a failure are not rolled back.
func (s *EffectSet) Drain(ctx context.Context) error {
	s.mu.Lock()
	batch := s.tasks
	s.tasks = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	results := make([]error, len(batch))
	var wg sync.WaitGroup
	for i, t := range batch {
		wg.Add(1)
		go func(i int, t Task) {
			defer wg.Done()
			taskCtx := observability.WithTask(ctx, t.Kind)
			start := time.Now()
			err := t.Run(taskCtx)
			s.recorder.ObserveTaskDuration(t.Kind, time.Since(start), err == nil)
			s.recorder.IncTaskResult(t.Kind, err == nil)
			results[i] = err
		}(i, t)
	}
	wg.Wait()

	var fatal []error
	for i, err := range results {
		if err == nil {
			continue
		}
		t := batch[i]
		if t.Criticality == CriticalityBestEffort {
			observability.WarnContext(ctx, "Best-effort task failed",
				logfields.Task(t.Kind), logfields.Error(err))
			continue
		}
		observability.ErrorContext(ctx, "Build task failed",
			logfields.Task(t.Kind), logfields.Error(err))
		fatal = append(fatal, err)
	}
	return errors.Join(fatal...)
}
