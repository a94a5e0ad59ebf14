package tasks

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID identifies a filesystem task for its whole lifetime.
type ID string

func newID() ID {
	return ID(ulid.Make().String())
}

// Kind is the immutable description of the mutation a task performs.
// Implementations: Copy, Move, Delete, CreateFile, CreateDirectory.
type Kind interface {
	KindName() string
	isKind()
}

type Copy struct {
	Src  string
	Dest string
}

type Move struct {
	Src  string
	Dest string
}

type Delete struct {
	Path string
}

type CreateFile struct {
	Path string
}

type CreateDirectory struct {
	Path string
}

func (Copy) KindName() string            { return "copy" }
func (Move) KindName() string            { return "move" }
func (Delete) KindName() string          { return "delete" }
func (CreateFile) KindName() string      { return "create_file" }
func (CreateDirectory) KindName() string { return "create_directory" }

func (Copy) isKind()            {}
func (Move) isKind()            {}
func (Delete) isKind()          {}
func (CreateFile) isKind()      {}
func (CreateDirectory) isKind() {}

// State is the phase of a task status.
type State int

const (
	StatePending State = iota
	StateInProgress
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is the current state of a task. Fraction is meaningful for
// StateInProgress and Message for StateFailed.
type Status struct {
	State    State
	Fraction float64
	Message  string
}

func Pending() Status { return Status{State: StatePending} }

func InProgress(fraction float64) Status {
	switch {
	case fraction < 0:
		fraction = 0
	case fraction > 1:
		fraction = 1
	}
	return Status{State: StateInProgress, Fraction: fraction}
}

func Completed() Status { return Status{State: StateCompleted} }

func Failed(message string) Status { return Status{State: StateFailed, Message: message} }

// IsTerminal reports whether no further transitions are expected.
func (s Status) IsTerminal() bool {
	return s.State == StateCompleted || s.State == StateFailed
}

func (s Status) String() string {
	switch s.State {
	case StateInProgress:
		return fmt.Sprintf("%3.0f%%", s.Fraction*100)
	case StateFailed:
		return "failed: " + s.Message
	default:
		return s.State.String()
	}
}

// Task is one user-requested filesystem mutation.
type Task struct {
	ID          ID
	Kind        Kind
	Status      Status
	Description string
	CreatedAt   time.Time
}
