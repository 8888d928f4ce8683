package workspace

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"perlscope/internal/ast"
	"perlscope/internal/symbols"
)

const (
	defaultTreeCacheSize  = 128
	defaultTableCacheSize = 256
)

// Caches hold hot per-document artifacts behind bounded LRUs. Eviction
// only costs a rebuild; the index itself never lives here.
type Caches struct {
	trees  *lru.Cache[string, *ast.Node]
	tables *lru.Cache[string, *symbols.Table]
}

// NewCaches builds the caches; non-positive sizes fall back to defaults.
func NewCaches(treeSize, tableSize int) (*Caches, error) {
	if treeSize <= 0 {
		treeSize = defaultTreeCacheSize
	}
	if tableSize <= 0 {
		tableSize = defaultTableCacheSize
	}
	trees, err := lru.New[string, *ast.Node](treeSize)
	if err != nil {
		return nil, err
	}
	tables, err := lru.New[string, *symbols.Table](tableSize)
	if err != nil {
		return nil, err
	}
	return &Caches{trees: trees, tables: tables}, nil
}

// Tree returns the cached syntax tree for one URI+version pair. Trees
// are immutable per version, so a reader holding an older snapshot never
// sees a newer tree; stale versions age out of the LRU instead of being
// invalidated.
func (c *Caches) Tree(uri string, version int32) (*ast.Node, bool) {
	return c.trees.Get(versionKey(uri, version))
}

func (c *Caches) PutTree(uri string, version int32, tree *ast.Node) {
	c.trees.Add(versionKey(uri, version), tree)
}

// Table returns the cached symbol table for one URI+version pair, under
// the same immutable-per-version contract as Tree.
func (c *Caches) Table(uri string, version int32) (*symbols.Table, bool) {
	return c.tables.Get(versionKey(uri, version))
}

func (c *Caches) PutTable(uri string, version int32, tab *symbols.Table) {
	c.tables.Add(versionKey(uri, version), tab)
}

// Purge drops everything cached for the URI, all versions included.
func (c *Caches) Purge(uri string) {
	prefix := uri + "@"
	for _, key := range c.trees.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.trees.Remove(key)
		}
	}
	for _, key := range c.tables.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.tables.Remove(key)
		}
	}
}

func versionKey(uri string, version int32) string {
	return fmt.Sprintf("%s@%d", uri, version)
}
