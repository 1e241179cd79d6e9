// Package cache stores synthesized static announcement audio on disk so
// repeat renders of the unchanging part of an announcement skip the
// provider call entirely.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"cabincast/internal/config"
)

// Key identifies one cached static waveform. Two keys differing in any
// field never share an entry.
type Key struct {
	Engine   string
	Language string
	VoiceID  string
	Context  string
}

// StaticCache is a filesystem cache of wav bytes with a modification-time
// TTL. Every failure is best-effort: a broken cache degrades to synthesis,
// never to a pipeline error.
type StaticCache struct {
	dir     string
	ttl     time.Duration
	enabled bool
	logger  *log.Logger
}

// New builds the cache from configuration.
func New(cfg config.CacheConfig, logger *log.Logger) *StaticCache {
	if logger == nil {
		logger = log.Default()
	}
	return &StaticCache{
		dir:     cfg.Directory,
		ttl:     time.Duration(cfg.TTLDays) * 24 * time.Hour,
		enabled: cfg.Enabled,
		logger:  logger.With("component", "cache"),
	}
}

// Path returns the entry location for a key:
// <dir>/<engine>/<language>/<voice>/<context>_static.wav.
func (c *StaticCache) Path(k Key) string {
	return filepath.Join(c.dir, k.Engine, k.Language, sanitize(k.VoiceID),
		fmt.Sprintf("%s_static.wav", k.Context))
}

// Get returns the cached wav bytes when a fresh entry exists. An expired
// entry is removed and reported as absent.
func (c *StaticCache) Get(k Key) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}
	path := c.Path(k)

	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.ttl {
		c.logger.Debug("Cache entry expired", "path", path, "age", time.Since(info.ModTime()))
		if err := os.Remove(path); err != nil {
			c.logger.Warn("Failed to remove expired cache entry", "path", path, "error", err)
		}
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warn("Failed to read cache entry", "path", path, "error", err)
		return nil, false
	}
	c.logger.Debug("Cache hit", "engine", k.Engine, "voice", k.VoiceID, "context", k.Context)
	return data, true
}

// Put stores wav bytes for a key. The write goes through a temp file and a
// rename so a concurrent Get never sees a partial entry. Failures are logged
// and swallowed.
func (c *StaticCache) Put(k Key, data []byte) {
	if !c.enabled || len(data) == 0 {
		return
	}
	path := c.Path(k)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		c.logger.Warn("Failed to create cache directory", "path", filepath.Dir(path), "error", err)
		return
	}

	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".tmp-%s", uuid.NewString()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		c.logger.Warn("Failed to write cache entry", "path", tmp, "error", err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		c.logger.Warn("Failed to finalize cache entry", "path", path, "error", err)
		os.Remove(tmp)
		return
	}
	c.logger.Debug("Cache store", "engine", k.Engine, "voice", k.VoiceID, "context", k.Context, "bytes", len(data))
}

// sanitize keeps voice ids filesystem-safe.
func sanitize(voiceID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, voiceID)
}
