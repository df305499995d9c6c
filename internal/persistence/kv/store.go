package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/cpmforge/scheduler/internal/calendar"
	"github.com/cpmforge/scheduler/internal/schedule"
	"github.com/cpmforge/scheduler/internal/task"
	"github.com/cpmforge/scheduler/internal/validation"
)

// Save persists s transactionally: both tables are cleared then
// repopulated in a single *sql.Tx, so a crash mid-save never leaves a
// half-written snapshot.
func (s *Store) Save(ctx context.Context, sched *schedule.Schedule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("kv: failed to begin save transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_metadata`); err != nil {
		return fmt.Errorf("kv: failed to clear schedule_metadata: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("kv: failed to clear tasks: %w", err)
	}

	metaJSON, err := json.Marshal(sched.Metadata())
	if err != nil {
		return fmt.Errorf("kv: failed to marshal metadata: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schedule_metadata (id, metadata_json) VALUES (1, ?)`, string(metaJSON)); err != nil {
		return fmt.Errorf("kv: failed to insert metadata: %w", err)
	}

	for _, t := range sched.Tasks() {
		taskJSON, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("kv: failed to marshal task %d: %w", t.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (id, task_json) VALUES (?, ?)`, t.ID, string(taskJSON)); err != nil {
			return fmt.Errorf("kv: failed to insert task %d: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("kv: failed to commit save transaction: %w", err)
	}
	return nil
}

// Load reconstructs a Schedule from the store. It returns (nil, nil) when
// the metadata row is absent, matching the "no snapshot yet" case. The
// calendar is not stored by this adapter; it is regenerated from the
// metadata's year range, so a schedule saved with a custom calendar loses
// that customization through this path.
func (s *Store) Load(ctx context.Context) (*schedule.Schedule, error) {
	var metaJSON string
	err := s.db.QueryRowContext(ctx, `SELECT metadata_json FROM schedule_metadata WHERE id = 1`).Scan(&metaJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kv: failed to load metadata: %w", err)
	}

	var md schedule.ProjectMetadata
	if err := json.Unmarshal([]byte(metaJSON), &md); err != nil {
		return nil, fmt.Errorf("kv: failed to unmarshal metadata: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT task_json FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("kv: failed to load tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		var taskJSON string
		if err := rows.Scan(&taskJSON); err != nil {
			return nil, fmt.Errorf("kv: failed to scan task row: %w", err)
		}
		var t task.Task
		if err := json.Unmarshal([]byte(taskJSON), &t); err != nil {
			return nil, fmt.Errorf("kv: failed to unmarshal task: %w", err)
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv: failed while iterating task rows: %w", err)
	}

	if err := validation.ValidateTaskCollection(tasks); err != nil {
		return nil, fmt.Errorf("kv: stored tasks failed validation: %w", err)
	}

	cal := calendar.NewWithYearRange(md.StartDate.Time().Year(), md.EndDate.Time().Year())
	sched := schedule.NewRaw(md, cal, false)
	for _, t := range tasks {
		if err := sched.UpsertTaskRecord(t); err != nil {
			return nil, fmt.Errorf("kv: failed to load task %d into schedule: %w", t.ID, err)
		}
	}
	return sched, nil
}
