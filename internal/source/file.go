package source

import (
	"crypto/sha256"
)

// NewFile builds a File from raw bytes: normalizes CRLF and BOM, computes
// the line index and content hash. The caller owns ID assignment.
func NewFile(id FileID, path string, content []byte, flags FileFlags) *File {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return &File{
		ID:      id,
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}
}

// WithContent derives the next version of the file: same ID and path, new
// content with a freshly built line index and hash. The receiver is not
// mutated; previous versions stay valid for readers that still hold them.
func (f *File) WithContent(content []byte) *File {
	next := NewFile(f.ID, f.Path, content, f.Flags&FileVirtual)
	next.Version = f.Version + 1
	return next
}

// Text returns the file content as a string.
func (f *File) Text() string {
	return string(f.Content)
}
