package compilation

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

const latestName = "latest.pdf"

// ErrArtifactNotFound is returned when no artifact exists for a lookup.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactStore keeps one PDF and one source file per run, plus a copy of
// the most recently completed run. All writes go through a temp file and a
// rename, so readers never observe a partial file.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates dir if needed.
func NewArtifactStore(dir string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create artifact directory %s", dir)
	}
	return &ArtifactStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *ArtifactStore) Dir() string { return s.dir }

// PDFPath returns where the PDF for runID is published.
func (s *ArtifactStore) PDFPath(runID uuid.UUID) string {
	return filepath.Join(s.dir, runID.String()+".pdf")
}

// SourcePath returns where the LaTeX source for runID is kept.
func (s *ArtifactStore) SourcePath(runID uuid.UUID) string {
	return filepath.Join(s.dir, runID.String()+".tex")
}

// SaveSource stores the assembled document for runID.
func (s *ArtifactStore) SaveSource(runID uuid.UUID, doc string) error {
	return writeAtomic(s.SourcePath(runID), func(w io.Writer) error {
		_, err := io.WriteString(w, doc)
		return err
	})
}

// PromoteLatest makes runID's PDF the one served as the latest artifact.
func (s *ArtifactStore) PromoteLatest(runID uuid.UUID) error {
	return publish(s.PDFPath(runID), filepath.Join(s.dir, latestName))
}

// Latest returns the path of the latest artifact.
func (s *ArtifactStore) Latest() (string, error) {
	return existing(filepath.Join(s.dir, latestName))
}

// Lookup returns the PDF path for runID.
func (s *ArtifactStore) Lookup(runID uuid.UUID) (string, error) {
	return existing(s.PDFPath(runID))
}

// LookupSource returns the source path for runID.
func (s *ArtifactStore) LookupSource(runID uuid.UUID) (string, error) {
	return existing(s.SourcePath(runID))
}

func existing(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrArtifactNotFound
	}
	return path, nil
}

// publish copies src to dest atomically.
func publish(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "open artifact")
	}
	defer func() { _ = in.Close() }()

	return writeAtomic(dest, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

func writeAtomic(dest string, write func(io.Writer) error) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".partial-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer RemoveQuietly(tmpName)

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "write %s", dest)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return errors.Wrapf(err, "rename into %s", dest)
	}
	return nil
}
