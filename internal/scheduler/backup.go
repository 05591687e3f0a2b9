// Package scheduler runs the periodic backup export: on a cron schedule
// the current bookmark document is written to a configured directory.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mfarrell/lectern/internal/export"
)

// Exporter assembles the backup document.
type Exporter interface {
	Export(ctx context.Context, title string) (*export.Result, error)
}

const backupTimeout = 2 * time.Minute

// BackupScheduler manages the periodic export job.
type BackupScheduler struct {
	exporter Exporter
	dir      string
	title    string
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewBackupScheduler creates a scheduler writing backups to dir on the
// given five-field cron schedule.
func NewBackupScheduler(exporter Exporter, dir, title, schedule string) *BackupScheduler {
	return &BackupScheduler{
		exporter: exporter,
		dir:      dir,
		title:    title,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler. It is a no-op when already running.
func (s *BackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.dir == "" {
		return fmt.Errorf("backup directory not configured")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runBackup()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Backup scheduler: started with schedule '%s', writing to %s", s.schedule, s.dir)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Backup scheduler: stopped")
}

// RunNow triggers an immediate backup.
func (s *BackupScheduler) RunNow() {
	go s.runBackup()
}

// IsRunning returns whether the scheduler is active.
func (s *BackupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next backup will occur.
func (s *BackupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *BackupScheduler) runBackup() {
	log.Printf("Backup: starting export to %s", s.dir)
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	result, err := s.exporter.Export(ctx, s.title)
	if err != nil {
		log.Printf("Backup: export failed: %v", err)
		return
	}

	if err := writeFileAtomic(filepath.Join(s.dir, result.Filename), result.Data); err != nil {
		log.Printf("Backup: write failed: %v", err)
		return
	}

	log.Printf("Backup: wrote %s (%d bookmarks, %d without text) in %v",
		result.Filename,
		len(result.Document.Bookmarks),
		result.LookupFailures,
		time.Since(startTime).Round(time.Millisecond))
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// never leaves a truncated backup behind.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".backup-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
