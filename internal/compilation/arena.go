package compilation

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Arena is a scratch directory owned by a single compilation. Nothing outside
// the compilation that created it reads or writes inside it.
type Arena struct {
	dir string
}

// NewArena creates a uniquely named directory under root (the system temp
// directory when root is empty).
func NewArena(root string) (*Arena, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create work root %s", root)
		}
	}
	dir, err := os.MkdirTemp(root, "tailor-"+uuid.NewString()[:8]+"-*")
	if err != nil {
		return nil, errors.Wrap(err, "create scratch directory")
	}
	return &Arena{dir: dir}, nil
}

// Dir returns the arena directory.
func (a *Arena) Dir() string { return a.dir }

// Path joins name onto the arena directory.
func (a *Arena) Path(name string) string {
	return filepath.Join(a.dir, name)
}

// Close removes the arena and everything in it.
func (a *Arena) Close() {
	RemoveQuietly(a.dir)
}

// RemoveQuietly deletes each path if it exists. It never reports failure:
// callers use it for cleanup whose outcome cannot change the result.
func RemoveQuietly(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		_ = os.RemoveAll(p)
	}
}
