package preview

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/filetug/tugfm/internal/log"
	"github.com/filetug/tugfm/pkg/metrics"
	"github.com/filetug/tugfm/pkg/raster"
)

// ErrWorkerStopped is returned once the preview worker has shut down.
// Callers should treat it as fatal for the preview subsystem.
var ErrWorkerStopped = errors.New("preview worker stopped")

const (
	DefaultQueueCapacity = 32
	MinQueueCapacity     = 20
)

type ControllerOption func(*Controller)

// WithQueueCapacity sets the request queue size. Values below MinQueueCapacity are raised to it.
func WithQueueCapacity(n int) ControllerOption {
	return func(c *Controller) {
		c.capacity = max(n, MinQueueCapacity)
	}
}

func WithLogger(logger log.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller feeds preview requests to a single background worker in submission order.
type Controller struct {
	worker   *raster.Worker
	logger   log.Logger
	capacity int

	lastID atomic.Uint64

	mu       sync.RWMutex // guards closed and the requests channel against Close
	closed   bool
	requests chan Request
	events   chan Event
	stopping chan struct{}
	done     chan struct{}

	closeOnce sync.Once
}

// NewController starts the preview worker.
func NewController(rasterizer raster.Rasterizer, options ...ControllerOption) *Controller {
	c := &Controller{
		worker:   raster.NewWorker(rasterizer),
		logger:   log.Noop,
		capacity: DefaultQueueCapacity,
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, option := range options {
		option(c)
	}
	c.logger = c.logger.WithValues(log.Kv{"component": "preview"})
	c.requests = make(chan Request, c.capacity)
	c.events = make(chan Event, c.capacity)
	go c.run()
	return c
}

// Events delivers exactly one event per accepted request. It is closed after Close.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// NewTaskID mints an id that is not tied to any request, for previews loaded outside the worker.
func (c *Controller) NewTaskID() TaskID {
	return TaskID(c.lastID.Add(1))
}

// RequestPreview mints an id and enqueues a final request for path at width x height.
// When progressive is set, a quarter-sized thumbnail request is enqueued first with the same id.
// It blocks while the queue is full.
func (c *Controller) RequestPreview(path string, width, height int, progressive bool) (TaskID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return 0, ErrWorkerStopped
	}
	id := c.NewTaskID()
	if progressive {
		tw, th := thumbnailSize(width, height)
		if err := c.enqueue(Request{TaskID: id, Path: path, Width: tw, Height: th, Stage: StageThumbnail}); err != nil {
			return id, err
		}
	}
	err := c.enqueue(Request{TaskID: id, Path: path, Width: max(width, 1), Height: max(height, 1), Stage: StageFinal})
	return id, err
}

func (c *Controller) enqueue(req Request) error {
	select {
	case c.requests <- req:
		metrics.RecordPreviewRequest(req.Stage.String())
		return nil
	case <-c.stopping:
		return ErrWorkerStopped
	}
}

// Close stops the worker, dropping requests that have not started, and waits for it to exit.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.stopping)
		c.mu.Lock()
		c.closed = true
		close(c.requests)
		c.mu.Unlock()
	})
	<-c.done
}

func (c *Controller) run() {
	defer close(c.done)
	defer close(c.events)
	for req := range c.requests {
		if c.isStopping() {
			continue
		}
		ev := c.process(req)
		select {
		case c.events <- ev:
		case <-c.stopping:
		}
	}
}

func (c *Controller) process(req Request) Event {
	started := time.Now()
	img, err := c.worker.Run(req.Path, req.Width, req.Height)
	ev := Event{ID: req.TaskID, Type: loadedType(req.Stage), Image: img}
	if err != nil {
		c.logger.WithValues(log.Kv{"path": req.Path, "stage": req.Stage.String()}).Warningf("rasterize failed: %v", err)
		ev = Event{ID: req.TaskID, Type: Error, Message: err.Error()}
	}
	metrics.RecordPreviewEvent(ev.Type.String(), time.Since(started).Seconds(), req.Stage.String())
	return ev
}

func (c *Controller) isStopping() bool {
	select {
	case <-c.stopping:
		return true
	default:
		return false
	}
}
