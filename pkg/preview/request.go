package preview

import "github.com/filetug/tugfm/pkg/raster"

// TaskID identifies one selection. Events carrying an older id are stale.
type TaskID uint64

type Stage int

const (
	StageThumbnail Stage = iota
	StageFinal
)

func (s Stage) String() string {
	if s == StageThumbnail {
		return "thumbnail"
	}
	return "final"
}

// Request is a single rasterization job. It is consumed exactly once by the worker.
type Request struct {
	TaskID TaskID
	Path   string
	Width  int
	Height int
	Stage  Stage
}

type EventType int

const (
	ThumbnailLoaded EventType = iota
	FinalImageLoaded
	Error
)

func (t EventType) String() string {
	switch t {
	case ThumbnailLoaded:
		return "thumbnail_loaded"
	case FinalImageLoaded:
		return "final_image_loaded"
	default:
		return "error"
	}
}

// Event is the outcome of one Request. Image is set for the loaded types,
// Message for Error.
type Event struct {
	ID      TaskID
	Type    EventType
	Image   *raster.Image
	Message string
}

func loadedType(stage Stage) EventType {
	if stage == StageThumbnail {
		return ThumbnailLoaded
	}
	return FinalImageLoaded
}

func thumbnailSize(width, height int) (int, int) {
	return max(width/4, 1), max(height/4, 1)
}
