package tasks

import (
	"context"
	"net/url"
	"os"
	"sync"
)

type fakeStore struct {
	mu        sync.Mutex
	calls     []string
	renameErr error
	copyErr   error
	deleteErr error
	copySteps []int64
}

func (s *fakeStore) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *fakeStore) RootTitle() string { return "fake" }
func (s *fakeStore) RootURL() url.URL  { return url.URL{Scheme: "fake"} }
func (s *fakeStore) ReadDir(context.Context, string) ([]os.DirEntry, error) {
	return nil, nil
}
func (s *fakeStore) CreateDir(_ context.Context, p string) error {
	s.record("mkdir " + p)
	return nil
}
func (s *fakeStore) CreateFile(_ context.Context, p string) error {
	s.record("touch " + p)
	return nil
}
func (s *fakeStore) Delete(_ context.Context, p string) error {
	s.record("rm " + p)
	return s.deleteErr
}
func (s *fakeStore) Rename(_ context.Context, src, dst string) error {
	s.record("mv " + src + " " + dst)
	return s.renameErr
}
func (s *fakeStore) Copy(_ context.Context, src, dst string, progress func(done, total int64)) error {
	s.record("cp " + src + " " + dst)
	var total int64
	if n := len(s.copySteps); n > 0 {
		total = s.copySteps[n-1]
	}
	for _, done := range s.copySteps {
		if progress != nil {
			progress(done, total)
		}
	}
	return s.copyErr
}
