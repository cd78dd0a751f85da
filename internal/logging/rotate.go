package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"tankduel/engine/internal/config"
)

// backupStamp names rotated files; sub-second digits keep quick rotations apart.
const backupStamp = "20060102T150405.000000000"

// rotatingWriter appends to one file and moves it aside once a write would push it
// past maxSize. Backups are optionally gzipped and pruned by count and age.
type rotatingWriter struct {
	mu         sync.Mutex
	path       string
	maxSize    int64
	maxBackups int
	maxAge     time.Duration
	compress   bool
	now        func() time.Time

	file *os.File
	size int64
}

func newRotatingWriter(cfg config.LoggingConfig) (*rotatingWriter, error) {
	//1.- Report every bad limit at once.
	var problems []error
	if cfg.MaxSizeMB <= 0 {
		problems = append(problems, errors.New("TANKDUEL_LOG_MAX_SIZE_MB must be positive"))
	}
	if cfg.MaxBackups < 0 {
		problems = append(problems, errors.New("TANKDUEL_LOG_MAX_BACKUPS must be non-negative"))
	}
	if cfg.MaxAgeDays < 0 {
		problems = append(problems, errors.New("TANKDUEL_LOG_MAX_AGE_DAYS must be non-negative"))
	}
	if err := errors.Join(problems...); err != nil {
		return nil, err
	}

	w := &rotatingWriter{
		path:       cfg.Path,
		maxSize:    int64(cfg.MaxSizeMB) << 20,
		maxBackups: cfg.MaxBackups,
		maxAge:     time.Duration(cfg.MaxAgeDays) * 24 * time.Hour,
		compress:   cfg.Compress,
		now:        time.Now,
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}
	if err := w.open(os.O_APPEND); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *rotatingWriter) open(mode int) error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|mode, 0o644)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	w.file, w.size = file, info.Size()
	return nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return 0, errors.New("log file is closed")
	}
	if w.size > 0 && w.size+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotate %s: %w", w.path, err)
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *rotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

func (w *rotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}
	w.file = nil
	backup := w.path + "." + w.now().UTC().Format(backupStamp)
	if err := os.Rename(w.path, backup); err != nil {
		return err
	}
	if w.compress {
		//1.- A failed compression keeps the plain backup rather than losing lines.
		if err := gzipFile(backup); err != nil {
			_ = os.Remove(backup + ".gz")
		}
	}
	for _, stale := range expiredBackups(w.backups(), w.maxBackups, w.maxAge, w.now()) {
		_ = os.Remove(stale)
	}
	return w.open(os.O_TRUNC)
}

type backupFile struct {
	path    string
	modTime time.Time
}

func (w *rotatingWriter) backups() []backupFile {
	matches, _ := filepath.Glob(w.path + ".*")
	out := make([]backupFile, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, backupFile{path: match, modTime: info.ModTime()})
	}
	return out
}

// expiredBackups lists the backups to delete: everything beyond the newest keep, and
// anything last written more than maxAge before now. Zero disables either limit.
func expiredBackups(backups []backupFile, keep int, maxAge time.Duration, now time.Time) []string {
	sorted := append([]backupFile(nil), backups...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].modTime.After(sorted[j].modTime) })
	var out []string
	for i, b := range sorted {
		tooMany := keep > 0 && i >= keep
		tooOld := maxAge > 0 && now.Sub(b.modTime) > maxAge
		if tooMany || tooOld {
			out = append(out, b.path)
		}
	}
	return out
}

// gzipFile replaces src with src.gz.
func gzipFile(src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(src + ".gz")
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(out)
	_, copyErr := io.Copy(gz, in)
	if err := errors.Join(copyErr, gz.Close(), out.Close()); err != nil {
		return err
	}
	return os.Remove(src)
}
