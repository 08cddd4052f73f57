// Package journal records click-through transitions in a local sqlite database.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"deskpet/internal/clickthrough"
)

// ErrClosed is returned by queries after Close
var ErrClosed = errors.New("journal closed")

const schema = `
CREATE TABLE IF NOT EXISTS transitions (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	at    INTEGER NOT NULL,
	state TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS transitions_at ON transitions(at);
`

// Entry is one recorded state change
type Entry struct {
	At    time.Time
	State clickthrough.State
}

// Journal persists transitions from a background writer so the watcher
// loop never waits on disk.
type Journal struct {
	db      *sql.DB
	log     *zap.Logger
	pending chan Entry
	done    chan struct{}

	mu      sync.Mutex
	closed  bool
	dropped int
}

// Open creates or opens the database at path
func Open(path string, logger *zap.Logger) (*Journal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=2000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	j := &Journal{
		db:      db,
		log:     logger,
		pending: make(chan Entry, 256),
		done:    make(chan struct{}),
	}
	go j.writeLoop()
	return j, nil
}

// StateChanged queues a transition. It never blocks; entries are dropped
// when the queue is full.
func (j *Journal) StateChanged(_, to clickthrough.State, at time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	select {
	case j.pending <- Entry{At: at, State: to}:
	default:
		j.dropped++
	}
}

func (j *Journal) writeLoop() {
	defer close(j.done)
	for e := range j.pending {
		if err := j.insert(e); err != nil {
			j.log.Warn("journal write failed", zap.Error(err))
		}
	}
}

func (j *Journal) insert(e Entry) error {
	_, err := j.db.Exec(`INSERT INTO transitions (at, state) VALUES (?, ?)`,
		e.At.UnixMilli(), e.State.String())
	return err
}

// CountSince returns how many transitions into state happened at or after since
func (j *Journal) CountSince(state clickthrough.State, since time.Time) (int, error) {
	if j.isClosed() {
		return 0, ErrClosed
	}
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM transitions WHERE state = ? AND at >= ?`,
		state.String(), since.UnixMilli()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transitions: %w", err)
	}
	return n, nil
}

// Recent returns up to limit entries, newest first
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if j.isClosed() {
		return nil, ErrClosed
	}
	rows, err := j.db.Query(`SELECT at, state FROM transitions ORDER BY at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var at int64
		var state string
		if err := rows.Scan(&at, &state); err != nil {
			return nil, err
		}
		e := Entry{At: time.UnixMilli(at), State: clickthrough.Passthrough}
		if state == clickthrough.Intercept.String() {
			e.State = clickthrough.Intercept
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Dropped reports entries lost to a full queue
func (j *Journal) Dropped() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.dropped
}

// Close writes any queued entries and closes the database
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	close(j.pending)
	j.mu.Unlock()

	<-j.done
	return j.db.Close()
}

func (j *Journal) isClosed() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closed
}
