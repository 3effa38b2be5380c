package store

// Schema DDL for the SQLite snapshot tables. meta holds at most one row;
// its absence means no snapshot has been saved.
const (
	createMeta = `CREATE TABLE IF NOT EXISTS meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    revision TEXT NOT NULL,
    team_capacity INTEGER NOT NULL,
    current_velocity REAL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createItems = `CREATE TABLE IF NOT EXISTS items (
    ordinal INTEGER PRIMARY KEY,
    item_id TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    gherkin TEXT NOT NULL,
    acceptance_criteria TEXT NOT NULL,
    test_cases TEXT NOT NULL,
    story_points INTEGER NOT NULL CHECK (story_points BETWEEN 1 AND 13),
    priority TEXT NOT NULL,
    dependencies TEXT NOT NULL,
    subtasks TEXT NOT NULL,
    sprint_assigned INTEGER,
    status TEXT NOT NULL,
    tags TEXT NOT NULL
);`

	createSprints = `CREATE TABLE IF NOT EXISTS sprints (
    number INTEGER PRIMARY KEY,
    ordinal INTEGER NOT NULL,
    name TEXT NOT NULL,
    capacity INTEGER NOT NULL,
    user_stories TEXT NOT NULL,
    total_points INTEGER NOT NULL,
    completed_points INTEGER NOT NULL,
    status TEXT NOT NULL,
    start_date TEXT,
    end_date TEXT
);`

	createVelocity = `CREATE TABLE IF NOT EXISTS velocity (
    seq INTEGER PRIMARY KEY,
    completed_points INTEGER NOT NULL
);`
)

// Index DDL.
const (
	idxItemsSprint    = `CREATE INDEX IF NOT EXISTS idx_items_sprint ON items(sprint_assigned);`
	idxSprintsOrdinal = `CREATE INDEX IF NOT EXISTS idx_sprints_ordinal ON sprints(ordinal);`
)

// schemaDDL lists all statements in creation order.
var schemaDDL = []string{
	createMeta,
	createItems,
	createSprints,
	createVelocity,
	idxItemsSprint,
	idxSprintsOrdinal,
}

// snapshotTables lists the tables emptied before a save and on Clear.
var snapshotTables = []string{"items", "sprints", "velocity", "meta"}
