package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/logger"
	"taskboard/internal/repository"

	"github.com/google/uuid"
)

// DefaultKey is the KV key the collection is persisted under.
const DefaultKey = "tasks"

// ErrPersist wraps write-through failures. The in-memory change that
// triggered the write has already been applied when it is returned.
var ErrPersist = errors.New("tasks not saved")

// Notifier receives an event after every applied mutation.
type Notifier interface {
	Publish(ev domain.Event)
}

type Option func(*TaskStore)

func WithKey(key string) Option {
	return func(s *TaskStore) { s.key = key }
}

func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *TaskStore) { s.newID = gen }
}

func WithNotifier(n Notifier) Option {
	return func(s *TaskStore) { s.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *TaskStore) { s.log = l }
}

// TaskStore owns the ordered task collection (newest first) and writes the
// whole collection to its KV after every mutation. Mutations are serialized:
// the lock is held across the in-memory change and its write.
type TaskStore struct {
	mu    sync.RWMutex
	tasks []domain.Task

	kv       repository.KV
	key      string
	now      func() time.Time
	newID    func() string
	notifier Notifier
	log      *slog.Logger
}

// NewTaskStore loads the persisted collection. A missing, unreadable or
// invalid value yields an empty store; it is never reported as an error.
// An invalid value is copied to "<key>.corrupt" before being ignored.
func NewTaskStore(ctx context.Context, kv repository.KV, opts ...Option) *TaskStore {
	s := &TaskStore{
		kv:    kv,
		key:   DefaultKey,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	s.log = s.log.With("component", "task_store", "key", s.key)

	s.tasks = s.load(ctx)
	s.updateGauges()
	return s
}

func (s *TaskStore) load(ctx context.Context) []domain.Task {
	raw, found, err := s.kv.Read(ctx, s.key)
	if err != nil {
		s.log.Warn("failed to read persisted tasks, starting empty", "error", err)
		return []domain.Task{}
	}
	if !found {
		return []domain.Task{}
	}

	tasks, err := DecodeTasks(raw)
	if err != nil {
		s.log.Warn("persisted tasks are invalid, starting empty", "error", err)
		if werr := s.kv.Write(ctx, s.key+".corrupt", raw); werr != nil {
			s.log.Error("failed to back up invalid tasks", "error", werr)
		}
		return []domain.Task{}
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}

	s.log.Debug("loaded tasks", "count", len(tasks))
	return tasks
}

// Key returns the KV key the store persists under.
func (s *TaskStore) Key() string {
	return s.key
}

// Add prepends a new task. A title that is empty after trimming, or an
// unknown priority, is declined: (nil, nil) and nothing is written. An empty
// priority means domain.DefaultPriority.
func (s *TaskStore) Add(ctx context.Context, title, description string, priority domain.Priority) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		TaskOps.WithLabelValues("add", outcomeSkipped).Inc()
		return nil, nil
	}
	if priority == "" {
		priority = domain.DefaultPriority
	}
	if !priority.Valid() {
		s.log.Debug("declined task with unknown priority", "priority", priority)
		TaskOps.WithLabelValues("add", outcomeSkipped).Inc()
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := domain.Task{
		ID:          s.newID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Priority:    priority,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
	}

	next := make([]domain.Task, 0, len(s.tasks)+1)
	next = append(next, t)
	next = append(next, s.tasks...)
	s.tasks = next

	err := s.commit(ctx, "add", domain.EventTaskAdded, t)
	return &t, err
}

// ToggleComplete flips the completion flag of one task. An unknown id is a
// no-op returning (nil, nil).
func (s *TaskStore) ToggleComplete(ctx context.Context, id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		TaskOps.WithLabelValues("toggle", outcomeSkipped).Inc()
		return nil, nil
	}

	s.tasks[i].Completed = !s.tasks[i].Completed
	t := s.tasks[i]

	err := s.commit(ctx, "toggle", domain.EventTaskToggled, t)
	return &t, err
}

// Delete removes one task, keeping the order of the rest. It reports whether
// a task was removed; an unknown id is a no-op.
func (s *TaskStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		TaskOps.WithLabelValues("delete", outcomeSkipped).Inc()
		return false, nil
	}

	removed := s.tasks[i]
	next := make([]domain.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	next = append(next, s.tasks[i+1:]...)
	s.tasks = next

	err := s.commit(ctx, "delete", domain.EventTaskDeleted, removed)
	return true, err
}

// List returns a copy of the tasks selected by f, in store order.
func (s *TaskStore) List(f domain.Filter) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Task, 0, len(s.tasks))
	for i := range s.tasks {
		if f.Match(&s.tasks[i]) {
			out = append(out, s.tasks[i])
		}
	}
	return out
}

func (s *TaskStore) Get(id string) (*domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	t := s.tasks[i]
	return &t, true
}

func (s *TaskStore) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ComputeStats(s.tasks)
}

// View calls fn with the collection and its stats while mutations are
// blocked. Events are published under the same lock, so a subscriber that
// registers inside fn sees every change after the view and none before it.
// fn must not keep or modify tasks, and must not call back into the store.
func (s *TaskStore) View(fn func(tasks []domain.Task, stats domain.Stats)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.tasks, domain.ComputeStats(s.tasks))
}

// Snapshot returns the collection serialized exactly as it is persisted.
func (s *TaskStore) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return EncodeTasks(s.tasks)
}

// Ping checks the backing KV when it supports it.
func (s *TaskStore) Ping(ctx context.Context) error {
	if p, ok := s.kv.(repository.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *TaskStore) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// commit writes the full collection and publishes the event. Caller holds
// s.mu for writing.
func (s *TaskStore) commit(ctx context.Context, op string, typ domain.EventType, t domain.Task) error {
	err := s.persist(ctx)
	s.updateGauges()

	if err != nil {
		TaskOps.WithLabelValues(op, outcomeFailed).Inc()
		PersistFailures.Inc()
		s.log.Error("write-through failed", "op", op, "task_id", t.ID, "error", err)
	} else {
		TaskOps.WithLabelValues(op, outcomeApplied).Inc()
	}

	if s.notifier != nil {
		s.notifier.Publish(domain.Event{
			Type:  typ,
			Task:  t,
			Stats: domain.ComputeStats(s.tasks),
			At:    s.now().UTC(),
		})
	}
	return err
}

func (s *TaskStore) persist(ctx context.Context) error {
	data, err := EncodeTasks(s.tasks)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := s.kv.Write(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *TaskStore) updateGauges() {
	st := domain.ComputeStats(s.tasks)
	TasksByState.WithLabelValues("active").Set(float64(st.Active))
	TasksByState.WithLabelValues("completed").Set(float64(st.Completed))
}
