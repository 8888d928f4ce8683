package source

import (
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet manages a collection of source files. Each path maps to one
// stable FileID; updating a path replaces the stored version in place, so
// spans built against an earlier version keep pointing at the same ID.
type FileSet struct {
	files   []*File
	index   map[string]FileID // normalized path -> id
	baseDir string
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]*File, 0),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase creates a FileSet rooted at baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// BaseDir returns the base directory, falling back to the working directory.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fs.baseDir
}

// Add stores content under path. A new path gets a fresh FileID; a known
// path gets its content replaced as the next version under the same ID.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	normalized := normalizePath(path)
	if id, ok := fs.index[normalized]; ok {
		fs.files[id] = fs.files[id].WithContent(content)
		return id
	}

	lenFiles, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file count overflow: %w", err))
	}
	id := FileID(lenFiles)
	fs.files = append(fs.files, NewFile(id, normalized, content, flags))
	fs.index[normalized] = id
	return id
}

// Load reads a file from disk and adds it.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return fs.Add(path, content, 0), nil
}

// AddVirtual adds an in-memory file (editor overlay, stdin, test).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns the current version of the file with the given ID.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return fs.files[id]
}

// GetByPath returns the current version stored for path, if any.
func (fs *FileSet) GetByPath(path string) (*File, bool) {
	if id, ok := fs.index[normalizePath(path)]; ok {
		return fs.files[id], true
	}
	return nil, false
}

// Len returns the number of distinct paths in the set.
func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Resolve converts a span into line/column positions using byte columns.
// Invalid spans resolve to the zero position rather than erroring; the
// typed-error path is File.OffsetToPosition.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	s, err := f.OffsetToPosition(span.Start, EncodingUTF8)
	if err != nil {
		return LineCol{}, LineCol{}
	}
	e, err := f.OffsetToPosition(span.End, EncodingUTF8)
	if err != nil {
		return s, LineCol{}
	}
	return s, e
}
