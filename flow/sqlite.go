package flow

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/teamflow/core"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  thread_id TEXT,
  agent_id TEXT,
  agent_name TEXT,
  task_ids TEXT,
  agent_ids TEXT,
  persist INTEGER NOT NULL DEFAULT 1,
  content TEXT,
  tool_call_id TEXT,
  tool_name TEXT,
  tool_error INTEGER,
  end_turn INTEGER,
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_agent_kind ON events(agent_id, kind, id);
`

// SQLiteLog is a durable core.EventLog backed by a SQLite database. Event
// ids are ULIDs, so ordering by id is chronological ordering; the
// continuation query becomes ORDER BY id DESC LIMIT n.
type SQLiteLog struct {
	db *sql.DB
}

// OpenSQLiteLog opens (creating if necessary) a SQLite event log at path.
func OpenSQLiteLog(path string) (*SQLiteLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", stmt, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteLog{db: db}, nil
}

// Close releases the underlying database handle.
func (l *SQLiteLog) Close() error { return l.db.Close() }

// AddEvents appends events inside a single transaction so either the whole
// batch lands in the log or none of it does.
func (l *SQLiteLog) AddEvents(events []core.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT INTO events
		(id, kind, thread_id, agent_id, agent_name, task_ids, agent_ids, persist,
		 content, tool_call_id, tool_name, tool_error, end_turn, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		taskIDs, err := json.Marshal(ev.TaskIDs)
		if err != nil {
			return fmt.Errorf("encode task ids: %w", err)
		}
		agentIDs, err := json.Marshal(ev.AgentIDs)
		if err != nil {
			return fmt.Errorf("encode agent ids: %w", err)
		}

		var callID, toolName sql.NullString
		var toolError, endTurn sql.NullBool
		if ev.ToolResult != nil {
			callID = sql.NullString{String: ev.ToolResult.CallID, Valid: true}
			toolName = sql.NullString{String: ev.ToolResult.Tool, Valid: true}
			toolError = sql.NullBool{Bool: ev.ToolResult.IsError, Valid: true}
			endTurn = sql.NullBool{Bool: ev.ToolResult.EndTurn, Valid: true}
		}

		if _, err := stmt.Exec(
			ev.ID, string(ev.Kind), ev.ThreadID, ev.Agent.ID, ev.Agent.Name,
			string(taskIDs), string(agentIDs), ev.Persist,
			ev.Content, callID, toolName, toolError, endTurn,
			ev.Timestamp.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert event %s: %w", ev.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetEvents returns matching events: chronological when no limit is set, the
// newest Limit matches first otherwise. Agent and kind filters compile to
// WHERE clauses; the task filter is applied after scanning because task ids
// are stored as a JSON array.
func (l *SQLiteLog) GetEvents(filter core.EventFilter) ([]core.Event, error) {
	var (
		where []string
		args  []any
	)
	if len(filter.AgentIDs) > 0 {
		where = append(where, "agent_id IN ("+placeholders(len(filter.AgentIDs))+")")
		for _, id := range filter.AgentIDs {
			args = append(args, id)
		}
	}
	if len(filter.Kinds) > 0 {
		where = append(where, "kind IN ("+placeholders(len(filter.Kinds))+")")
		for _, k := range filter.Kinds {
			args = append(args, string(k))
		}
	}

	query := `SELECT id, kind, thread_id, agent_id, agent_name, task_ids, agent_ids,
		persist, content, tool_call_id, tool_name, tool_error, end_turn, created_at
		FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.Limit > 0 {
		query += " ORDER BY id DESC"
	} else {
		query += " ORDER BY id ASC"
	}

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []core.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		if len(filter.TaskIDs) > 0 && !filter.Matches(ev) {
			continue
		}
		out = append(out, ev)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return out, nil
}

func scanEvent(rows *sql.Rows) (core.Event, error) {
	var (
		ev                 core.Event
		kind               string
		taskIDs, agentIDs  string
		callID, toolName   sql.NullString
		toolError, endTurn sql.NullBool
		createdAt          string
	)
	if err := rows.Scan(
		&ev.ID, &kind, &ev.ThreadID, &ev.Agent.ID, &ev.Agent.Name,
		&taskIDs, &agentIDs, &ev.Persist, &ev.Content,
		&callID, &toolName, &toolError, &endTurn, &createdAt,
	); err != nil {
		return core.Event{}, fmt.Errorf("scan event: %w", err)
	}
	ev.Kind = core.Kind(kind)
	if err := json.Unmarshal([]byte(taskIDs), &ev.TaskIDs); err != nil {
		return core.Event{}, fmt.Errorf("decode task ids of %s: %w", ev.ID, err)
	}
	if err := json.Unmarshal([]byte(agentIDs), &ev.AgentIDs); err != nil {
		return core.Event{}, fmt.Errorf("decode agent ids of %s: %w", ev.ID, err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		ev.Timestamp = ts
	}
	if endTurn.Valid {
		ev.ToolResult = &core.ToolResult{
			CallID:  callID.String,
			Tool:    toolName.String,
			Result:  ev.Content,
			IsError: toolError.Bool,
			EndTurn: endTurn.Bool,
		}
	}
	return ev, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
