package tasks

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/filetug/tugfm/internal/log"
	"github.com/filetug/tugfm/pkg/files"
	"github.com/filetug/tugfm/pkg/metrics"
)

// Manager owns the list of filesystem tasks and merges progress from their
// concurrent executions. The list is append-only for the session.
type Manager struct {
	mu    sync.Mutex
	tasks []Task
	index map[ID]int

	refreshMu sync.Mutex
	refresh   []string

	queue  *eventQueue
	runner Runner
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	logger log.Logger
	now    func() time.Time
}

type Option func(*Manager)

// WithMaxConcurrent caps how many tasks execute at the same time. Zero or a
// negative value keeps the default of one concurrent execution per task.
func WithMaxConcurrent(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

func WithLogger(logger log.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithRunner(r Runner) Option {
	return func(m *Manager) {
		m.runner = r
	}
}

func NewManager(store files.Store, opts ...Option) *Manager {
	m := &Manager{
		index:  make(map[ID]int),
		queue:  newEventQueue(),
		logger: log.Noop,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.runner == nil {
		m.runner = NewExecutor(store)
	}
	m.logger = m.logger.WithValues(log.Kv{"svc": "tasks.Manager"})
	return m
}

// AddTask appends a pending task and returns its id. It does not start any work.
func (m *Manager) AddTask(kind Kind, description string) ID {
	task := Task{
		ID:          newID(),
		Kind:        kind,
		Status:      Pending(),
		Description: description,
		CreatedAt:   m.now(),
	}
	m.mu.Lock()
	m.index[task.ID] = len(m.tasks)
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()
	m.logger.Debugf("task %s added: %s", task.ID, description)
	return task.ID
}

// ProcessPendingTasks starts one concurrent execution for every pending task.
// Already started tasks are never restarted, so it is safe to call on every tick.
func (m *Manager) ProcessPendingTasks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		task := &m.tasks[i]
		if task.Status.State != StatePending {
			continue
		}
		task.Status = InProgress(0)
		m.start(task.ID, task.Kind)
	}
}

func (m *Manager) start(id ID, kind Kind) {
	kindName := "unknown"
	if kind != nil {
		kindName = kind.KindName()
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx := log.CtxWithValues(context.Background(), log.Kv{"task": string(id), "kind": kindName})
		logger := m.logger.WithCtxValues(ctx)
		if m.sem != nil {
			if err := m.sem.Acquire(ctx, 1); err != nil {
				logger.Warningf("could not acquire execution slot: %v", err)
				m.queue.push(ErrorEvent(id, err.Error()))
				return
			}
			defer m.sem.Release(1)
		}
		metrics.RecordTaskStarted(kindName)
		logger.Debugf("task started")
		m.runner.Execute(ctx, id, kind, m.queue.push)
		logger.Debugf("task finished")
	}()
}

// UpdateTaskStatuses applies every progress event available right now without
// waiting for more. It reports whether any task completed during this call.
// Events for unknown or already terminal tasks are ignored.
func (m *Manager) UpdateTaskStatuses() (completed bool) {
	for _, event := range m.queue.drain() {
		if m.apply(event) {
			completed = true
		}
	}
	return completed
}

func (m *Manager) apply(event ProgressEvent) (completed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[event.TaskID]
	if !ok {
		return false
	}
	task := &m.tasks[i]
	if task.Status.IsTerminal() {
		return false
	}
	switch event.Type {
	case EventUpdate:
		task.Status = InProgress(event.Fraction)
	case EventCompleted:
		task.Status = Completed()
		m.addRefreshPath(event.AffectedPath)
		m.finished(task, false)
		return true
	case EventError:
		task.Status = Failed(event.Message)
		m.logger.Warningf("task %s failed: %s", task.ID, event.Message)
		m.finished(task, true)
	}
	return false
}

func (m *Manager) finished(task *Task, failed bool) {
	kindName := "unknown"
	if task.Kind != nil {
		kindName = task.Kind.KindName()
	}
	metrics.RecordTaskFinished(kindName, failed)
	if !failed {
		m.logger.Infof("task %s completed: %s", task.ID, task.Description)
	}
}

func (m *Manager) addRefreshPath(p string) {
	if p == "" {
		return
	}
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	for _, existing := range m.refresh {
		if existing == p {
			return
		}
	}
	m.refresh = append(m.refresh, p)
}

// TakeRefreshPaths returns the paths touched by completed tasks since the
// previous call and forgets them.
func (m *Manager) TakeRefreshPaths() []string {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	paths := m.refresh
	m.refresh = nil
	return paths
}

// GetTasks returns a snapshot of all tasks.
func (m *Manager) GetTasks() []Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := make([]Task, len(m.tasks))
	copy(tasks, m.tasks)
	return tasks
}

// Ready is signalled when progress events are waiting to be applied.
func (m *Manager) Ready() <-chan struct{} {
	return m.queue.ready
}

// Wait blocks until every started execution has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}
