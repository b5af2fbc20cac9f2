// Copyright © 2024 The cstlint authors

package parser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/luthersystems/cstlint/syntax"
)

// cacheSchemaVersion is bumped whenever cacheEntry changes shape.
const cacheSchemaVersion uint16 = 1

type cacheEntry struct {
	Schema uint16
	Parser string
	Result *syntax.ParseResult
}

// Cache memoizes another Parser on disk, keyed by the source bytes and the
// wrapped parser's identity. Entries are MessagePack encoded.
type Cache struct {
	Parser Parser
	Dir    string
}

// OpenCache returns a Cache for p in the standard per-user cache location
// ($XDG_CACHE_HOME/<app> or ~/.cache/<app>).
func OpenCache(app string, p Parser) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{Parser: p, Dir: dir}, nil
}

func (c *Cache) pathFor(id string, source []byte) string {
	h := sha256.New()
	h.Write([]byte(id))
	h.Write([]byte{0})
	h.Write(source)
	key := hex.EncodeToString(h.Sum(nil))
	return filepath.Join(c.Dir, "parse", key[:2], key+".mp")
}

// Parse implements Parser. Unreadable, stale or corrupt entries are treated
// as misses and overwritten.
func (c *Cache) Parse(ctx context.Context, path string, source []byte) (*syntax.ParseResult, error) {
	id := identity(c.Parser)
	p := c.pathFor(id, source)
	if pr, ok := c.get(p, id, source); ok {
		return pr, nil
	}
	pr, err := c.Parser.Parse(ctx, path, source)
	if err != nil {
		return nil, err
	}
	// Cache writes are best-effort; a failure only costs a re-parse.
	_ = c.put(p, &cacheEntry{Schema: cacheSchemaVersion, Parser: id, Result: pr})
	return pr, nil
}

func (c *Cache) get(p, id string, source []byte) (*syntax.ParseResult, bool) {
	b, err := os.ReadFile(p) //nolint:gosec // path derived from a digest
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := msgpack.Unmarshal(b, &entry); err != nil {
		return nil, false
	}
	if entry.Schema != cacheSchemaVersion || entry.Parser != id || entry.Result == nil {
		return nil, false
	}
	if entry.Result.Text != string(source) {
		return nil, false
	}
	return entry.Result, true
}

func (c *Cache) put(p string, entry *cacheEntry) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(entry); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	err := os.RemoveAll(filepath.Join(c.Dir, "parse"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
