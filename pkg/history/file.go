package history

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
)

// FileStore keeps the index in a single document. Files ending in .yaml or
// .yml are YAML; everything else is JSON.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path. The file is not touched
// until Load or Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) yaml() bool {
	ext := strings.ToLower(filepath.Ext(s.path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads the document. A missing file is a FILE_NOT_FOUND error.
func (s *FileStore) Load(ctx context.Context) (Index, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "dates file %s", s.path)
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "read dates file %s", s.path)
	}
	return s.decode(data)
}

func (s *FileStore) decode(data []byte) (Index, error) {
	raw := map[string]string{}
	var err error
	if s.yaml() {
		err = yaml.Unmarshal(data, &raw)
	} else {
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "decode dates file %s", s.path)
	}

	ix := make(Index, len(raw))
	for name, v := range raw {
		t, err := ParseTime(v)
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "date of %s in %s", name, s.path)
		}
		ix[name] = t
	}
	return ix, nil
}

// Save merges ix into the document and rewrites it atomically.
func (s *FileStore) Save(ctx context.Context, ix Index) error {
	merged, err := s.Load(ctx)
	if perrors.Is(err, perrors.ErrCodeFileNotFound) {
		merged, err = Index{}, nil
	}
	if err != nil {
		return err
	}
	merged.Merge(ix)

	raw := make(map[string]string, len(merged))
	for name, t := range merged {
		raw[name] = formatTime(t)
	}

	var data []byte
	if s.yaml() {
		data, err = yaml.Marshal(raw)
	} else {
		data, err = json.MarshalIndent(raw, "", "  ")
	}
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInternal, err, "encode dates")
	}
	return writeAtomic(s.path, data)
}

// Close does nothing for file stores.
func (s *FileStore) Close() error { return nil }

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return perrors.Wrap(perrors.ErrCodeInternal, err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".dates-*")
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInternal, err, "write %s", path)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return perrors.Wrap(perrors.ErrCodeInternal, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return perrors.Wrap(perrors.ErrCodeInternal, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return perrors.Wrap(perrors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
