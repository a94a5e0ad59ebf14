package files

import (
	"context"
	"net/url"
	"os"
)

// CopyProgress receives the cumulative number of bytes copied and the total
// number of bytes to copy.
type CopyProgress = func(done, total int64)

// Store is the filesystem collaborator used by the browser and by background tasks.
type Store interface {
	RootTitle() string
	RootURL() url.URL
	ReadDir(ctx context.Context, name string) ([]os.DirEntry, error)
	CreateDir(ctx context.Context, path string) error
	CreateFile(ctx context.Context, path string) error

	// Delete removes a file, or a directory with everything below it.
	Delete(ctx context.Context, path string) error

	Rename(ctx context.Context, src, dst string) error

	// Copy copies a file or a directory tree. progress may be nil.
	Copy(ctx context.Context, src, dst string, progress CopyProgress) error
}
