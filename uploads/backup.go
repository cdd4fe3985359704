package uploads

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// NextRun returns the next occurrence of hour:min strictly after now.
func NextRun(now time.Time, hour, min int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// StartDailyBackup copies srcDir into a timestamped folder under backupDir every day at hour:min
// and drops backups older than retention. It returns when ctx is cancelled.
func StartDailyBackup(ctx context.Context, srcDir, backupDir string, retention time.Duration, hour, min int) {
	for {
		next := NextRun(time.Now(), hour, min)
		log.Printf("⏳ Next image backup scheduled at: %s", next.Format("2006-01-02 15:04:05"))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if dest, err := Backup(srcDir, backupDir, time.Now()); err != nil {
			log.Printf("❌ Failed to back up images: %v", err)
		} else {
			log.Printf("✅ Images backed up to %s", dest)
		}

		CleanupOldBackups(backupDir, retention, time.Now())
	}
}

const backupStamp = "2006-01-02_15-04-05"

// Backup snapshots the images under srcDir into backupDir/<stamp> and returns that folder.
// Files that are not images are left out. The snapshot is assembled under a ".partial" name
// and renamed when complete, so a crash never leaves a folder that looks finished.
func Backup(srcDir, backupDir string, now time.Time) (string, error) {
	dest := filepath.Join(backupDir, now.Format(backupStamp))
	staging := dest + ".partial"
	if err := os.RemoveAll(staging); err != nil {
		return "", err
	}

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(staging, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() || !imageExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		return copyImage(path, target)
	})
	if err != nil {
		_ = os.RemoveAll(staging)
		return "", fmt.Errorf("snapshot %s: %w", srcDir, err)
	}
	if err := os.Rename(staging, dest); err != nil {
		_ = os.RemoveAll(staging)
		return "", err
	}
	return dest, nil
}

func copyImage(src, dest string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}

// CleanupOldBackups deletes snapshots whose stamp is older than now-retention, along with
// abandoned ".partial" folders, and reports how many went. Folders it did not create are kept.
func CleanupOldBackups(backupDir string, retention time.Duration, now time.Time) int {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		log.Printf("❌ Failed to read backup directory: %v", err)
		return 0
	}

	cutoff := now.Add(-retention)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".partial")
		taken, err := time.ParseInLocation(backupStamp, name, now.Location())
		if err != nil {
			continue
		}
		if name == entry.Name() && !taken.Before(cutoff) {
			continue
		}
		snapshot := filepath.Join(backupDir, entry.Name())
		if err := os.RemoveAll(snapshot); err != nil {
			log.Printf("❌ Failed to remove image backup %s: %v", snapshot, err)
			continue
		}
		log.Printf("🗑️ Removed image backup %s", entry.Name())
		removed++
	}
	return removed
}
