package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

// SQLiteStore keeps the snapshot in a SQLite database. Save rewrites every
// row inside one transaction, so readers see either the old or the new
// snapshot. Each save records a fresh UUID v7 revision.
type SQLiteStore struct {
	mu              sync.RWMutex
	db              *sql.DB
	path            string
	defaultCapacity int
}

// OpenSQLite opens (creating if needed) dataDir/backlog.db and applies the
// schema.
func OpenSQLite(dataDir string, defaultCapacity int) (*SQLiteStore, error) {
	path := filepath.Join(dataDir, DatabaseFileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &SQLiteStore{db: db, path: path, defaultCapacity: defaultCapacity}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Load reads the snapshot in a single transaction.
func (s *SQLiteStore) Load() (*types.Backlog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, types.ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	b := &types.Backlog{}
	var (
		revision string
		velocity sql.NullFloat64
		created  string
		updated  string
	)
	err = tx.QueryRow(`SELECT revision, team_capacity, current_velocity, created_at, updated_at FROM meta WHERE id = 1`).
		Scan(&revision, &b.TeamCapacity, &velocity, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return freshBacklog(s.defaultCapacity), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}
	if velocity.Valid {
		v := velocity.Float64
		b.CurrentVelocity = &v
	}
	if b.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("%w: created_at: %w", types.ErrCorruptSnapshot, err)
	}
	if b.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("%w: updated_at: %w", types.ErrCorruptSnapshot, err)
	}

	if b.UserStories, err = loadItems(tx); err != nil {
		return nil, err
	}
	if b.Sprints, err = loadSprints(tx); err != nil {
		return nil, err
	}
	if b.VelocityHistory, err = loadVelocity(tx); err != nil {
		return nil, err
	}

	if err := checkLoaded(b, s.path); err != nil {
		return nil, err
	}
	return b, nil
}

// Save replaces every snapshot row with the content of b.
func (s *SQLiteStore) Save(b *types.Backlog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return types.ErrStoreClosed
	}
	if err := prepareSave(b); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if err := truncate(tx); err != nil {
		return err
	}

	var velocity any
	if b.CurrentVelocity != nil {
		velocity = *b.CurrentVelocity
	}
	_, err = tx.Exec(
		`INSERT INTO meta (id, revision, team_capacity, current_velocity, created_at, updated_at) VALUES (1, ?, ?, ?, ?, ?)`,
		newRevision(), b.TeamCapacity, velocity, formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("write meta: %w", err)
	}

	if err := saveItems(tx, b.UserStories); err != nil {
		return err
	}
	if err := saveSprints(tx, b.Sprints); err != nil {
		return err
	}
	if err := saveVelocity(tx, b.VelocityHistory); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Revision returns the revision id of the stored snapshot, or "" when
// nothing is stored.
func (s *SQLiteStore) Revision() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return "", types.ErrStoreClosed
	}
	var revision string
	err := s.db.QueryRow(`SELECT revision FROM meta WHERE id = 1`).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read revision: %w", err)
	}
	return revision, nil
}

// Clear deletes every snapshot row.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return types.ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	if err := truncate(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}

// Close closes the database. Idempotent.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func truncate(tx *sql.Tx) error {
	for _, table := range snapshotTables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func saveItems(tx *sql.Tx, items []types.WorkItem) error {
	stmt, err := tx.Prepare(`INSERT INTO items (ordinal, item_id, title, gherkin, acceptance_criteria, test_cases,
        story_points, priority, dependencies, subtasks, sprint_assigned, status, tags)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare item insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		cols, err := encodeColumns(item.AcceptanceCriteria, item.TestCases, item.Dependencies, item.Subtasks, item.Tags)
		if err != nil {
			return fmt.Errorf("encode item %s: %w", item.ID, err)
		}
		var sprint any
		if item.SprintAssigned != nil {
			sprint = *item.SprintAssigned
		}
		_, err = stmt.Exec(i, item.ID, item.Title, item.Gherkin, cols[0], cols[1],
			item.StoryPoints, string(item.Priority), cols[2], cols[3], sprint, item.Status, cols[4])
		if err != nil {
			return fmt.Errorf("insert item %s: %w", item.ID, err)
		}
	}
	return nil
}

func loadItems(tx *sql.Tx) ([]types.WorkItem, error) {
	rows, err := tx.Query(`SELECT item_id, title, gherkin, acceptance_criteria, test_cases, story_points,
        priority, dependencies, subtasks, sprint_assigned, status, tags FROM items ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []types.WorkItem{}
	for rows.Next() {
		var (
			item                                  types.WorkItem
			criteria, cases, deps, subtasks, tags string
			priority                              string
			sprint                                sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &item.Title, &item.Gherkin, &criteria, &cases, &item.StoryPoints,
			&priority, &deps, &subtasks, &sprint, &item.Status, &tags); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.Priority = types.ParsePriority(priority)
		if sprint.Valid {
			n := int(sprint.Int64)
			item.SprintAssigned = &n
		}
		if err := decodeColumns(
			column{criteria, &item.AcceptanceCriteria},
			column{cases, &item.TestCases},
			column{deps, &item.Dependencies},
			column{subtasks, &item.Subtasks},
			column{tags, &item.Tags},
		); err != nil {
			return nil, fmt.Errorf("%w: item %s: %w", types.ErrCorruptSnapshot, item.ID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func saveSprints(tx *sql.Tx, sprints []types.Sprint) error {
	stmt, err := tx.Prepare(`INSERT INTO sprints (number, ordinal, name, capacity, user_stories, total_points,
        completed_points, status, start_date, end_date) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare sprint insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range sprints {
		cols, err := encodeColumns(s.UserStories)
		if err != nil {
			return fmt.Errorf("encode sprint %d: %w", s.Number, err)
		}
		_, err = stmt.Exec(s.Number, i, s.Name, s.Capacity, cols[0], s.TotalPoints, s.CompletedPoints,
			string(s.Status), nullableTime(s.StartDate), nullableTime(s.EndDate))
		if err != nil {
			return fmt.Errorf("insert sprint %d: %w", s.Number, err)
		}
	}
	return nil
}

func loadSprints(tx *sql.Tx) ([]types.Sprint, error) {
	rows, err := tx.Query(`SELECT number, name, capacity, user_stories, total_points, completed_points,
        status, start_date, end_date FROM sprints ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("query sprints: %w", err)
	}
	defer rows.Close()

	sprints := []types.Sprint{}
	for rows.Next() {
		var (
			s       types.Sprint
			stories string
			status  string
			start   sql.NullString
			finish  sql.NullString
		)
		if err := rows.Scan(&s.Number, &s.Name, &s.Capacity, &stories, &s.TotalPoints, &s.CompletedPoints,
			&status, &start, &finish); err != nil {
			return nil, fmt.Errorf("scan sprint: %w", err)
		}
		if err := s.Status.UnmarshalText([]byte(status)); err != nil {
			return nil, fmt.Errorf("%w: sprint %d status: %w", types.ErrCorruptSnapshot, s.Number, err)
		}
		if err := decodeColumns(column{stories, &s.UserStories}); err != nil {
			return nil, fmt.Errorf("%w: sprint %d: %w", types.ErrCorruptSnapshot, s.Number, err)
		}
		if s.StartDate, err = parseNullableTime(start); err != nil {
			return nil, fmt.Errorf("%w: sprint %d start_date: %w", types.ErrCorruptSnapshot, s.Number, err)
		}
		if s.EndDate, err = parseNullableTime(finish); err != nil {
			return nil, fmt.Errorf("%w: sprint %d end_date: %w", types.ErrCorruptSnapshot, s.Number, err)
		}
		sprints = append(sprints, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sprints: %w", err)
	}
	return sprints, nil
}

func saveVelocity(tx *sql.Tx, history []int) error {
	stmt, err := tx.Prepare(`INSERT INTO velocity (seq, completed_points) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare velocity insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range history {
		if _, err := stmt.Exec(i, v); err != nil {
			return fmt.Errorf("insert velocity %d: %w", i, err)
		}
	}
	return nil
}

func loadVelocity(tx *sql.Tx) ([]int, error) {
	rows, err := tx.Query(`SELECT completed_points FROM velocity ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query velocity: %w", err)
	}
	defer rows.Close()

	history := []int{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan velocity: %w", err)
		}
		history = append(history, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate velocity: %w", err)
	}
	return history, nil
}

// column pairs a JSON-encoded TEXT value with its decode target.
type column struct {
	raw    string
	target any
}

func encodeColumns(values ...any) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[i] = string(data)
	}
	return out, nil
}

func decodeColumns(cols ...column) error {
	for _, c := range cols {
		if err := json.Unmarshal([]byte(c.raw), c.target); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// newRevision returns a time-ordered revision id, or a random one when the
// v7 generator fails.
func newRevision() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
