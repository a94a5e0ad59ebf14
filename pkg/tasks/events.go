package tasks

import "sync"

// EventType distinguishes progress messages sent by an executing task.
type EventType int

const (
	EventUpdate EventType = iota
	EventCompleted
	EventError
)

// ProgressEvent is a message from an executing task to the Manager.
type ProgressEvent struct {
	TaskID       ID
	Type         EventType
	Fraction     float64
	AffectedPath string
	Message      string
}

func UpdateEvent(id ID, fraction float64) ProgressEvent {
	return ProgressEvent{TaskID: id, Type: EventUpdate, Fraction: fraction}
}

func CompletedEvent(id ID, affectedPath string) ProgressEvent {
	return ProgressEvent{TaskID: id, Type: EventCompleted, AffectedPath: affectedPath}
}

func ErrorEvent(id ID, message string) ProgressEvent {
	return ProgressEvent{TaskID: id, Type: EventError, Message: message}
}

// eventQueue is an unbounded FIFO: producers never block and the consumer
// drains without waiting. ready holds at most one pending wake-up.
type eventQueue struct {
	mu     sync.Mutex
	events []ProgressEvent
	ready  chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{ready: make(chan struct{}, 1)}
}

func (q *eventQueue) push(e ProgressEvent) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *eventQueue) drain() []ProgressEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := q.events
	q.events = nil
	return events
}
