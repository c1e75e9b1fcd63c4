// Package store is the durable record store backing the giveaway engine. All
// collections live in one JSON document guarded by one mutex; mutating
// operations either save immediately or ride the auto-save counter. The store
// is the single owner of the backing file and the sole source of truth for
// giveaway status.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	apperrors "github.com/SDWZORO/GiveAwayBot/internal/common/errors"
	"github.com/SDWZORO/GiveAwayBot/internal/common/logger"
	"github.com/SDWZORO/GiveAwayBot/internal/models"
	"github.com/rs/zerolog"
)

const (
	schemaVersion     = "2.0.0"
	autoSaveThreshold = 10
	maxLogEntries     = 5000
)

// settings is the schema bookkeeping sub-document. Missing keys are
// backfilled on load, never treated as corruption.
type settings struct {
	Version     string    `json:"version"`
	LastCleanup time.Time `json:"last_cleanup"`
}

// document is the full persisted state.
type document struct {
	Giveaways    map[string]*models.Giveaway               `json:"giveaways"`
	Archived     map[string]*models.Giveaway               `json:"archived_giveaways"`
	Participants map[string]map[int64]*models.Participant  `json:"participants"`
	Removed      map[string]map[int64]*models.Participant  `json:"removed_participants"`
	Winners      map[string][]*models.Winner               `json:"winners"`
	Bans         []*models.Ban                             `json:"banned_users"`
	Broadcasts   []*models.BroadcastChat                   `json:"broadcast_chats"`
	Cooldowns    map[string]*models.Cooldown               `json:"user_cooldowns"`
	Logs         []*models.LogEntry                        `json:"logs"`
	Counters     map[string]int                            `json:"giveaway_counters"`
	UserStats    map[int64]*models.UserStats               `json:"user_stats"`
	Settings     settings                                  `json:"settings"`
}

// Store is the concurrently-accessed record store. Every exported method
// takes the mutex; values handed out are copies, never references into the
// document.
type Store struct {
	mu         sync.Mutex
	path       string
	data       *document
	dirty      int // mutations since last save
	now        func() time.Time
	log        zerolog.Logger
	maxWinners int
}

// Open loads (or creates) the backing file. A corrupt or missing file is a
// fresh store, not a fatal error.
func Open(path string, maxWinners int) (*Store, error) {
	s := &Store{
		path:       path,
		now:        time.Now,
		log:        logger.With("store"),
		maxWinners: maxWinners,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func newDocument(now time.Time) *document {
	return &document{
		Giveaways:    make(map[string]*models.Giveaway),
		Archived:     make(map[string]*models.Giveaway),
		Participants: make(map[string]map[int64]*models.Participant),
		Removed:      make(map[string]map[int64]*models.Participant),
		Winners:      make(map[string][]*models.Winner),
		Bans:         make([]*models.Ban, 0),
		Broadcasts:   make([]*models.BroadcastChat, 0),
		Cooldowns:    make(map[string]*models.Cooldown),
		Logs:         make([]*models.LogEntry, 0),
		Counters:     make(map[string]int),
		UserStats:    make(map[int64]*models.UserStats),
		Settings: settings{
			Version:     schemaVersion,
			LastCleanup: now.UTC(),
		},
	}
}

func (s *Store) load() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.NewStorageError("mkdir", err)
		}
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.data = newDocument(s.now())
		return s.saveLocked()
	}
	if err != nil {
		return apperrors.NewStorageError("read", err)
	}

	doc := &document{}
	if err := json.Unmarshal(raw, doc); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).
			Msg("Backing file corrupt, starting with a fresh store")
		s.data = newDocument(s.now())
		return s.saveLocked()
	}

	s.data = doc
	s.ensureStructure()
	return nil
}

// ensureStructure backfills keys older documents may lack so that schema
// growth never looks like corruption.
func (s *Store) ensureStructure() {
	d := s.data
	if d.Giveaways == nil {
		d.Giveaways = make(map[string]*models.Giveaway)
	}
	if d.Archived == nil {
		d.Archived = make(map[string]*models.Giveaway)
	}
	if d.Participants == nil {
		d.Participants = make(map[string]map[int64]*models.Participant)
	}
	if d.Removed == nil {
		d.Removed = make(map[string]map[int64]*models.Participant)
	}
	if d.Winners == nil {
		d.Winners = make(map[string][]*models.Winner)
	}
	if d.Cooldowns == nil {
		d.Cooldowns = make(map[string]*models.Cooldown)
	}
	if d.Counters == nil {
		d.Counters = make(map[string]int)
	}
	if d.UserStats == nil {
		d.UserStats = make(map[int64]*models.UserStats)
	}
	if d.Settings.Version == "" {
		d.Settings.Version = schemaVersion
	}
	if d.Settings.LastCleanup.IsZero() {
		d.Settings.LastCleanup = s.now().UTC()
	}
	// Every giveaway gets a participant bucket.
	for id := range d.Giveaways {
		if _, ok := d.Participants[id]; !ok {
			d.Participants[id] = make(map[int64]*models.Participant)
		}
	}
}

// saveLocked persists the document. Callers must hold the mutex. The previous
// file is copied to <path>.backup first so one generation is always
// recoverable by hand.
func (s *Store) saveLocked() error {
	if _, err := os.Stat(s.path); err == nil {
		if err := copyFile(s.path, s.path+".backup"); err != nil {
			s.log.Error().Err(err).Msg("Failed to write backup before save")
		}
	}

	raw, err := json.MarshalIndent(s.data, "", "    ")
	if err != nil {
		return apperrors.NewStorageError("marshal", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		// In-memory state stays last-known-good; the next successful save
		// reconciles.
		s.log.Error().Err(err).Str("path", s.path).Msg("Failed to save store")
		return apperrors.NewStorageError("write", err)
	}
	s.dirty = 0
	s.log.Debug().Str("path", s.path).Msg("Store saved")
	return nil
}

// autoSaveLocked counts a mutation and saves once the threshold is reached.
func (s *Store) autoSaveLocked() {
	s.dirty++
	if s.dirty >= autoSaveThreshold {
		if err := s.saveLocked(); err != nil {
			s.log.Error().Err(err).Msg("Auto-save failed")
		}
	}
}

// Flush forces a durable save of any pending mutations.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// Close flushes and releases the store.
func (s *Store) Close() error {
	return s.Flush()
}

// BackupTo writes a timestamped full export into dir and returns its path.
func (s *Store) BackupTo(dir string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.exportLocked(dir)
	if err != nil {
		return "", err
	}
	s.addLogLocked("backup", 0, "", "Database backed up to "+path)
	return path, nil
}

func (s *Store) exportLocked(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.NewStorageError("mkdir", err)
	}
	name := fmt.Sprintf("database_backup_%s.json", s.now().UTC().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	raw, err := json.MarshalIndent(s.data, "", "    ")
	if err != nil {
		return "", apperrors.NewStorageError("marshal", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", apperrors.NewStorageError("write backup", err)
	}
	return path, nil
}

// RestoreFrom replaces the live document with a previously exported backup.
// The current document is exported to a restore_backups directory next to the
// backing file first, so a bad restore is itself recoverable. A file that does
// not parse as a document aborts the restore with the store untouched.
func (s *Store) RestoreFrom(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewStorageError("read backup", err)
	}
	doc := &document{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return apperrors.NewStorageError("parse backup", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.exportLocked(filepath.Join(filepath.Dir(s.path), "restore_backups"))
	if err != nil {
		return err
	}

	s.data = doc
	s.ensureStructure()
	if err := s.saveLocked(); err != nil {
		return err
	}
	s.addLogLocked("restore", 0, "",
		fmt.Sprintf("Database restored from %s. Previous state exported to %s", path, saved))
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// Stats is a snapshot of store-wide counts for the owner surface.
type Stats struct {
	TotalGiveaways  int   `json:"total_giveaways"`
	ActiveGiveaways int   `json:"active_giveaways"`
	Participants    int   `json:"total_participants"`
	BannedUsers     int   `json:"banned_users"`
	BroadcastChats  int   `json:"broadcast_chats"`
	Logs            int   `json:"total_logs"`
	KnownUsers      int   `json:"total_users"`
	ActiveCooldowns int   `json:"active_cooldowns"`
	FileSize        int64 `json:"database_size"`
}

// Snapshot computes the current store statistics.
func (s *Store) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		TotalGiveaways:  len(s.data.Giveaways),
		Logs:            len(s.data.Logs),
		KnownUsers:      len(s.data.UserStats),
		ActiveCooldowns: len(s.data.Cooldowns),
	}
	now := s.now()
	for _, g := range s.data.Giveaways {
		if g.IsJoinable(now) {
			st.ActiveGiveaways++
		}
	}
	for _, ps := range s.data.Participants {
		st.Participants += len(ps)
	}
	for _, b := range s.data.Bans {
		if b.Active {
			st.BannedUsers++
		}
	}
	for _, c := range s.data.Broadcasts {
		if c.Active {
			st.BroadcastChats++
		}
	}
	if fi, err := os.Stat(s.path); err == nil {
		st.FileSize = fi.Size()
	}
	return st
}
