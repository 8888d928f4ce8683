package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"perlscope/internal/symbols"
)

// diskCacheSchemaVersion is bumped whenever the payload layout changes;
// entries with another version are treated as misses.
const diskCacheSchemaVersion uint16 = 1

// CachedSymbol is the durable form of one declaration.
type CachedSymbol struct {
	Name string             `msgpack:"name"`
	Kind symbols.SymbolKind `msgpack:"kind"`
	Decl uint32             `msgpack:"decl"`
	End  uint32             `msgpack:"end"`
	Pkg  string             `msgpack:"pkg"`
}

// CachedRef is the durable form of one occurrence.
type CachedRef struct {
	KeyURI  string `msgpack:"key_uri"`
	KeyName string `msgpack:"key_name"`
	KeyDecl uint32 `msgpack:"key_decl"`
	Start   uint32 `msgpack:"start"`
	End     uint32 `msgpack:"end"`
}

type diskCachePayload struct {
	Schema  uint16         `msgpack:"schema"`
	URI     string         `msgpack:"uri"`
	Symbols []CachedSymbol `msgpack:"symbols"`
	Refs    []CachedRef    `msgpack:"refs"`
	Saved   int64          `msgpack:"saved"`
}

// DiskCache persists per-file symbol payloads keyed by content hash so a
// workspace scan can skip re-analyzing files whose bytes did not change.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache places the cache under the user cache dir,
// honoring XDG_CACHE_HOME.
func OpenDiskCache() (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache dir: %w", err)
		}
		base = home
	}
	return NewDiskCache(filepath.Join(base, "perlscope"))
}

// NewDiskCache opens a cache rooted at dir, creating it if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(filepath.Join(dir, "files"), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// ContentKey derives the cache key for a file's bytes.
func ContentKey(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func (c *DiskCache) pathFor(key string) string {
	return filepath.Join(c.dir, "files", key+".mp")
}

// Get loads the payload stored for the key. A missing entry or a schema
// mismatch is a miss, not an error.
func (c *DiskCache) Get(key string) ([]CachedSymbol, []CachedRef, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, false, nil
		}
		return nil, nil, false, fmt.Errorf("open cache entry: %w", err)
	}
	defer f.Close()

	var payload diskCachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if payload.Schema != diskCacheSchemaVersion {
		return nil, nil, false, nil
	}
	return payload.Symbols, payload.Refs, true, nil
}

// Put stores the payload atomically: encode to a temp file in the same
// directory, then rename over the final path.
func (c *DiskCache) Put(key, uri string, syms []CachedSymbol, refs []CachedRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := diskCachePayload{
		Schema:  diskCacheSchemaVersion,
		URI:     uri,
		Symbols: syms,
		Refs:    refs,
		Saved:   time.Now().Unix(),
	}

	dir := filepath.Join(c.dir, "files")
	tmp, err := os.CreateTemp(dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if err := msgpack.NewEncoder(tmp).Encode(&payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, c.pathFor(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}

// DropAll discards every entry. The directory is renamed aside first so
// concurrent readers never observe a half-deleted cache.
func (c *DiskCache) DropAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := filepath.Join(c.dir, "files")
	doomed := filepath.Join(c.dir, fmt.Sprintf("files-old-%d", time.Now().UnixNano()))
	if err := os.Rename(old, doomed); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.MkdirAll(old, 0o755)
		}
		return fmt.Errorf("rotate cache dir: %w", err)
	}
	if err := os.MkdirAll(old, 0o755); err != nil {
		return fmt.Errorf("recreate cache dir: %w", err)
	}
	return os.RemoveAll(doomed)
}
