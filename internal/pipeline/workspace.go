package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/DV0x/fashion-shoot-agent-sub001/pkg/util"
)

// workspace is a job-private scratch directory.
type workspace struct {
	dir    string
	frames string

	once sync.Once
	err  error
}

func newWorkspace(root, jobID string) (*workspace, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := util.EnsureDir(root); err != nil {
		return nil, fmt.Errorf("create temp root: %w", err)
	}

	prefix := "speedramp-" + jobID
	if len(jobID) > 8 {
		prefix = "speedramp-" + jobID[:8]
	}
	dir, err := os.MkdirTemp(root, prefix+"-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}

	frames := filepath.Join(dir, "frames")
	if err := util.EnsureDir(frames); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("create frame dir: %w", err)
	}

	return &workspace{dir: dir, frames: frames}, nil
}

// release removes the directory unless keep is set. Only the first call
// has any effect.
func (w *workspace) release(keep bool) error {
	w.once.Do(func() {
		if keep {
			return
		}
		w.err = os.RemoveAll(w.dir)
	})
	return w.err
}

// outputGuard rejects a second in-flight job writing the same file.
type outputGuard struct {
	mu     sync.Mutex
	owners map[string]string
}

func newOutputGuard() *outputGuard {
	return &outputGuard{owners: make(map[string]string)}
}

// processOutputs is shared by every Pipeline in the process.
var processOutputs = newOutputGuard()

func (g *outputGuard) acquire(path, jobID string) (release func(), err error) {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if owner, busy := g.owners[key]; busy {
		return nil, fmt.Errorf("output %s is already being written by job %s", path, owner)
	}
	g.owners[key] = jobID

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.owners, key)
			g.mu.Unlock()
		})
	}, nil
}
