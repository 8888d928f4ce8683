package source

type (
	// FileID uniquely identifies a loaded file version within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (editor overlay, test, stdin).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File captures content and derived position data for a single file version.
type File struct {
	ID      FileID
	Path    string
	Version int32
	Content []byte
	LineIdx []uint32 // byte offsets of '\n', ascending
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a human-readable position. Line and Col are 1-based; the
// column unit depends on the Encoding it was produced with.
type LineCol struct {
	Line uint32
	Col  uint32
}

// Encoding selects the column unit for position conversions.
type Encoding uint8

const (
	// EncodingUTF8 counts columns in bytes.
	EncodingUTF8 Encoding = iota
	// EncodingUTF16 counts columns in 16-bit code units (LSP default).
	EncodingUTF16
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF16:
		return "utf-16"
	default:
		return "unknown"
	}
}
