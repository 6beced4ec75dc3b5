package registry

import (
	"fmt"
	"sync"

	"github.com/spf13/afero"
)

// SetupRecorder records setup files in load order. Each file is opened to
// confirm it is readable; nothing is executed.
type SetupRecorder struct {
	Fs afero.Fs

	mu    sync.Mutex
	files []string
}

// NewSetupRecorder returns a SetupRecorder over fsys; nil means the OS
// filesystem.
func NewSetupRecorder(fsys afero.Fs) *SetupRecorder {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &SetupRecorder{Fs: fsys}
}

// Require records path after checking that it can be opened.
func (s *SetupRecorder) Require(path string) error {
	f, err := s.Fs.Open(path)
	if err != nil {
		return fmt.Errorf("opening setup file: %w", err)
	}
	f.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, path)
	return nil
}

// Files returns the recorded setup files.
func (s *SetupRecorder) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}
