package replay

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"awbrn/engine/internal/logging"
)

// RetentionPolicy defines how many exported bundles are retained on disk.
type RetentionPolicy struct {
	MaxBundles int
	MaxAge     time.Duration
}

// StorageStats summarises the disk footprint of retained bundles.
type StorageStats struct {
	Bundles   int
	Bytes     int64
	LastSweep time.Time
}

// Cleaner periodically prunes exported bundles according to a retention policy.
type Cleaner struct {
	mu     sync.RWMutex
	dir    string
	policy RetentionPolicy
	log    *logging.Logger
	now    func() time.Time
	stats  StorageStats
}

// NewCleaner constructs a cleaner for the provided bundle root directory.
func NewCleaner(dir string, policy RetentionPolicy, logger *logging.Logger) *Cleaner {
	if logger == nil {
		logger = logging.L()
	}
	return &Cleaner{dir: dir, policy: policy, log: logger, now: time.Now}
}

// Run executes retention sweeps until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context, interval time.Duration) {
	if c == nil || ctx == nil {
		return
	}
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	//1.- Perform an eager sweep so retention applies immediately on startup.
	c.sweep()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			//2.- Trigger periodic sweeps while the context remains active.
			c.sweep()
		}
	}
}

// RunOnce performs a single retention sweep, primarily used for tests.
func (c *Cleaner) RunOnce() {
	if c == nil {
		return
	}
	c.sweep()
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
	path    string
	size    int64
	modTime time.Time
}

func (c *Cleaner) sweep() {
	if c == nil || strings.TrimSpace(c.dir) == "" {
		return
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.log.Warn("bundle retention scan failed", logging.Error(err), logging.String("directory", c.dir))
		return
	}

	//1.- Only directories holding a manifest count as bundles; skip everything else.
	bundles := make([]bundleDir, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(c.dir, entry.Name())
		if _, err := os.Stat(filepath.Join(path, "manifest.json")); err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			c.log.Warn("bundle retention stat failed", logging.Error(err), logging.String("path", path))
			continue
		}
		size, err := directorySize(path)
		if err != nil {
			c.log.Warn("bundle retention size failed", logging.Error(err), logging.String("path", path))
			continue
		}
		bundles = append(bundles, bundleDir{path: path, size: size, modTime: info.ModTime()})
	}

	//2.- Sort newest-first so retention limits favour recent exports.
	sort.Slice(bundles, func(i, j int) bool { return bundles[i].modTime.After(bundles[j].modTime) })

	now := c.now()
	kept := 0
	stats := StorageStats{LastSweep: now}
	for _, bundle := range bundles {
		tooOld := c.policy.MaxAge > 0 && now.Sub(bundle.modTime) > c.policy.MaxAge
		tooMany := c.policy.MaxBundles > 0 && kept >= c.policy.MaxBundles
		if tooOld || tooMany {
			if err := os.RemoveAll(bundle.path); err != nil {
				c.log.Warn("bundle retention removal failed", logging.Error(err), logging.String("bundle", bundle.path))
				kept++
				stats.Bundles++
				stats.Bytes += bundle.size
			} else {
				c.log.Info("bundle retention removed artefact", logging.String("bundle", bundle.path))
			}
			continue
		}
		kept++
		stats.Bundles++
		stats.Bytes += bundle.size
	}

	c.mu.Lock()
	//3.- Publish the refreshed statistics so monitoring handlers can report usage.
	c.stats = stats
	c.mu.Unlock()
}

func directorySize(root string) (int64, error) {
	var total int64
	walkErr := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
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
		//1.- Accumulate file sizes to compute the bundle footprint for metrics.
		total += info.Size()
		return nil
	})
	return total, walkErr
}
