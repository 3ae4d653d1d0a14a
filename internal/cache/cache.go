// Package cache persists guest-mode conversation history as one JSON
// document per device, the serialized-blob analog of the browser's local
// storage key. It is only authoritative while no session exists.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/replyhq/reply/internal/model"
	"github.com/replyhq/reply/pkg/logger"
)

// Cache reads and writes per-device history blobs under a data directory.
type Cache struct {
	dir    string
	logger *logger.Logger
}

// New creates a cache rooted at dir, creating it if needed.
func New(dir string, log *logger.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, logger: log}, nil
}

// Load returns the last saved history for deviceID. A missing or corrupt
// file reads as empty history; there is no schema versioning.
func (c *Cache) Load(deviceID string) []model.Conversation {
	data, err := os.ReadFile(c.path(deviceID))
	if err != nil {
		return nil
	}

	var history []model.Conversation
	if err := json.Unmarshal(data, &history); err != nil {
		c.logger.Warn("failed to parse cached history, treating as empty",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		return nil
	}
	return history
}

// Save serializes and overwrites the history blob unconditionally.
func (c *Cache) Save(deviceID string, history []model.Conversation) error {
	if history == nil {
		history = []model.Conversation{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(deviceID), data, 0o644)
}

// Clear removes the history blob for deviceID.
func (c *Cache) Clear(deviceID string) {
	_ = os.Remove(c.path(deviceID))
}

func (c *Cache) path(deviceID string) string {
	// Device IDs come from clients; strip anything path-like.
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, deviceID)
	return filepath.Join(c.dir, name+".json")
}
