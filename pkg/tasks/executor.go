package tasks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"syscall"

	"github.com/filetug/tugfm/pkg/files"
)

// Emitter receives the progress events of one task execution, in order.
type Emitter = func(ProgressEvent)

// Runner executes a single task. Every call must end with exactly one
// EventCompleted or EventError, optionally preceded by EventUpdate events.
type Runner interface {
	Execute(ctx context.Context, id ID, kind Kind, emit Emitter)
}

var _ Runner = (*Executor)(nil)

// Executor runs task kinds against a files.Store.
type Executor struct {
	store files.Store
}

func NewExecutor(store files.Store) *Executor {
	return &Executor{store: store}
}

var isCrossDevice = func(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// minUpdateStep throttles copy progress so a large copy does not flood the queue.
const minUpdateStep = 0.01

func (e *Executor) Execute(ctx context.Context, id ID, kind Kind, emit Emitter) {
	affected, err := e.run(ctx, id, kind, emit)
	if err != nil {
		emit(ErrorEvent(id, err.Error()))
		return
	}
	emit(CompletedEvent(id, affected))
}

func (e *Executor) run(ctx context.Context, id ID, kind Kind, emit Emitter) (string, error) {
	switch k := kind.(type) {
	case Copy:
		return k.Dest, e.store.Copy(ctx, k.Src, k.Dest, progressEmitter(id, emit))
	case Move:
		return k.Dest, e.move(ctx, id, k, emit)
	case Delete:
		return filepath.Dir(k.Path), e.store.Delete(ctx, k.Path)
	case CreateFile:
		return k.Path, e.store.CreateFile(ctx, k.Path)
	case CreateDirectory:
		return k.Path, e.store.CreateDir(ctx, k.Path)
	case nil:
		return "", errors.New("task has no kind")
	default:
		return "", fmt.Errorf("unsupported task kind %T", kind)
	}
}

// move renames, falling back to copy followed by delete across filesystems.
func (e *Executor) move(ctx context.Context, id ID, k Move, emit Emitter) error {
	err := e.store.Rename(ctx, k.Src, k.Dest)
	if err == nil || !isCrossDevice(err) {
		return err
	}
	if err = e.store.Copy(ctx, k.Src, k.Dest, progressEmitter(id, emit)); err != nil {
		return fmt.Errorf("move across devices: %w", err)
	}
	if err = e.store.Delete(ctx, k.Src); err != nil {
		return fmt.Errorf("move across devices: remove source: %w", err)
	}
	return nil
}

func progressEmitter(id ID, emit Emitter) files.CopyProgress {
	var last float64
	return func(done, total int64) {
		if total <= 0 {
			return
		}
		fraction := float64(done) / float64(total)
		if fraction > 1 {
			fraction = 1
		}
		if fraction-last < minUpdateStep && fraction < 1 {
			return
		}
		if fraction <= last {
			return
		}
		last = fraction
		emit(UpdateEvent(id, fraction))
	}
}
