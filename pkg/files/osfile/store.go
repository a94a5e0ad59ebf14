package osfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/filetug/tugfm/pkg/files"
)

var osReadDir = os.ReadDir
var osHostname = os.Hostname
var osMkdir = os.Mkdir
var osMkdirAll = os.MkdirAll
var osCreate = os.Create
var osOpen = os.Open
var osOpenFile = os.OpenFile
var osRemove = os.Remove
var osRemoveAll = os.RemoveAll
var osRename = os.Rename
var osLstat = os.Lstat
var osReadlink = os.Readlink
var osSymlink = os.Symlink

var _ files.Store = (*Store)(nil)

var errCopyIntoItself = errors.New("cannot copy a directory into itself")

type Store struct {
	title string
	root  string
}

func (s Store) RootURL() url.URL {
	return url.URL{
		Scheme: "file",
		Path:   s.root,
	}
}

func (s Store) RootTitle() string {
	return strings.TrimSuffix(s.title, ".station")
}

func (s Store) ReadDir(ctx context.Context, name string) ([]os.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return osReadDir(name)
}

func (s Store) CreateDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return osMkdir(path, 0755)
}

func (s Store) CreateFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := osOpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}

func (s Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := osLstat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return osRemoveAll(path)
	}
	return osRemove(path)
}

func (s Store) Rename(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return osRename(src, dst)
}

func (s Store) Copy(ctx context.Context, src, dst string, progress files.CopyProgress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := osLstat(src)
	if err != nil {
		return err
	}
	absSrc, _ := filepath.Abs(src)
	absDst, _ := filepath.Abs(dst)
	if absSrc == absDst {
		return fmt.Errorf("copy %s: source and destination are the same", src)
	}
	if info.IsDir() && strings.HasPrefix(absDst, absSrc+string(filepath.Separator)) {
		return fmt.Errorf("copy %s to %s: %w", src, dst, errCopyIntoItself)
	}
	c := &copier{ctx: ctx, progress: progress}
	if c.total, err = treeSize(src); err != nil {
		return err
	}
	return c.copyEntry(src, dst, info)
}

func treeSize(root string) (total int64, err error) {
	err = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	return
}

type copier struct {
	ctx      context.Context
	progress files.CopyProgress
	total    int64
	done     int64
}

func (c *copier) copyEntry(src, dst string, info os.FileInfo) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	switch mode := info.Mode(); {
	case mode.IsDir():
		return c.copyDir(src, dst, mode.Perm())
	case mode&os.ModeSymlink != 0:
		target, err := osReadlink(src)
		if err != nil {
			return err
		}
		return osSymlink(target, dst)
	case mode.IsRegular():
		return c.copyFile(src, dst, mode.Perm())
	default:
		return fmt.Errorf("copy %s: unsupported file type %s", src, mode.Type())
	}
}

func (c *copier) copyDir(src, dst string, perm os.FileMode) error {
	if err := osMkdirAll(dst, perm); err != nil {
		return err
	}
	entries, err := osReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return err
		}
		name := entry.Name()
		if err = c.copyEntry(filepath.Join(src, name), filepath.Join(dst, name), info); err != nil {
			return err
		}
	}
	return nil
}

func (c *copier) copyFile(src, dst string, perm os.FileMode) (err error) {
	in, err := osOpen(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()
	out, err := osOpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()
	_, err = io.Copy(&progressWriter{w: out, c: c}, in)
	return err
}

type progressWriter struct {
	w io.Writer
	c *copier
}

func (p *progressWriter) Write(b []byte) (int, error) {
	if err := p.c.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.w.Write(b)
	p.c.done += int64(n)
	if p.c.progress != nil && n > 0 {
		p.c.progress(p.c.done, p.c.total)
	}
	return n, err
}

func NewStore(root string) *Store {
	if root == "" {
		_, _ = fmt.Fprintf(os.Stderr, "osfile store root is empty, defaulting to /\n")
		root = "/"
	}
	store := Store{root: root}
	var err error
	if store.title, err = osHostname(); err != nil {
		store.title = err.Error()
	}
	store.title = "🖥️" + store.title
	return &store
}
