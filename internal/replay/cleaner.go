package replay

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"tankduel/engine/internal/logging"
)

// RetentionPolicy defines how many replay bundles are retained on disk.
type RetentionPolicy struct {
	MaxMatches int
	MaxAge     time.Duration
}

// StorageStats summarises the disk footprint of persisted replays.
type StorageStats struct {
	Matches   int
	Removed   int
	Bytes     int64
	LastSweep time.Time
}

// Cleaner prunes replay bundles according to a retention policy.
type Cleaner struct {
	mu     sync.RWMutex
	dir    string
	policy RetentionPolicy
	log    *logging.Logger
	now    func() time.Time
	stats  StorageStats
}

// NewCleaner constructs a cleaner for the provided replay directory.
func NewCleaner(dir string, policy RetentionPolicy, logger *logging.Logger) *Cleaner {
	if logger == nil {
		logger = logging.L()
	}
	return &Cleaner{dir: dir, policy: policy, log: logger, now: time.Now}
}

// RunOnce performs a single retention sweep.
func (c *Cleaner) RunOnce() StorageStats {
	if c == nil {
		return StorageStats{}
	}
	c.sweep()
	return c.Stats()
}

// Stats returns the last recorded storage statistics.
func (c *Cleaner) Stats() StorageStats {
	if c == nil {
		return StorageStats{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

type bundleDir struct {
	name    string
	path    string
	size    int64
	modTime time.Time
}

func (c *Cleaner) sweep() {
	if strings.TrimSpace(c.dir) == "" {
		return
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.log.Warn("replay retention scan failed", logging.Error(err), logging.String("directory", c.dir))
		return
	}
	bundles := c.collect(entries)
	now := c.now()
	kept := 0
	stats := StorageStats{LastSweep: now}
	for _, b := range bundles {
		remove, reasons := c.shouldRemove(b, now, kept)
		if remove {
			if err := os.RemoveAll(b.path); err == nil {
				stats.Removed++
				c.log.Info("replay retention removed bundle", logging.String("match", b.name), logging.String("reason", reasons))
				continue
			} else {
				c.log.Warn("replay retention removal failed", logging.Error(err), logging.String("match", b.name))
			}
		}
		kept++
		stats.Matches++
		stats.Bytes += b.size
	}
	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
}

// collect lists the bundle directories, newest first. Anything without a manifest is left alone.
func (c *Cleaner) collect(entries []os.DirEntry) []bundleDir {
	var bundles []bundleDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(c.dir, entry.Name())
		manifest, err := os.Stat(filepath.Join(path, manifestFile))
		if err != nil {
			continue
		}
		size, modTime, err := directoryFootprint(path)
		if err != nil {
			c.log.Warn("replay retention size failed", logging.Error(err), logging.String("path", path))
			continue
		}
		if manifest.ModTime().After(modTime) {
			modTime = manifest.ModTime()
		}
		bundles = append(bundles, bundleDir{name: entry.Name(), path: path, size: size, modTime: modTime})
	}
	sort.Slice(bundles, func(i, j int) bool { return bundles[i].modTime.After(bundles[j].modTime) })
	return bundles
}

func (c *Cleaner) shouldRemove(b bundleDir, now time.Time, kept int) (bool, string) {
	reasons := make([]string, 0, 2)
	if c.policy.MaxAge > 0 && now.Sub(b.modTime) > c.policy.MaxAge {
		reasons = append(reasons, fmt.Sprintf("age>%s", c.policy.MaxAge))
	}
	if c.policy.MaxMatches > 0 && kept >= c.policy.MaxMatches {
		reasons = append(reasons, fmt.Sprintf(">=%d matches", c.policy.MaxMatches))
	}
	return len(reasons) > 0, strings.Join(reasons, ", ")
}

// directoryFootprint sums file sizes and finds the newest modification under root.
func directoryFootprint(root string) (int64, time.Time, error) {
	var (
		total  int64
		newest time.Time
	)
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return total, newest, err
}
