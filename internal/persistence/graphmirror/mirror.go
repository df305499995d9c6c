// Package graphmirror projects a schedule's task DAG into a Kuzu
// embedded graph database for ad-hoc traversal and analytics queries
// (component C11). It is a read-enrichment side effect: the Schedule
// itself never depends on this package, and a query failure here never
// blocks a core scheduling operation.
package graphmirror

import (
	"fmt"
	"strings"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/cpmforge/scheduler/internal/schedule"
)

// quoteCypherString escapes s for embedding as a Cypher string literal.
// The mirror issues literal Cypher rather than parameterized queries, so
// this is the only defense against task names containing quotes.
func quoteCypherString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// Mirror owns a Kuzu database + connection pair rooted at a directory on
// disk and maintains the Task/DEPENDS_ON projection of a Schedule.
type Mirror struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

const ddl = `
CREATE NODE TABLE IF NOT EXISTS Task(
	id INT64,
	name STRING,
	duration_days INT64,
	is_critical BOOLEAN,
	total_float INT64,
	PRIMARY KEY(id)
);
CREATE REL TABLE IF NOT EXISTS DEPENDS_ON(FROM Task TO Task);
`

// Open creates (or attaches to) a Kuzu database under dir and ensures the
// Task/DEPENDS_ON schema exists.
func Open(dir string) (*Mirror, error) {
	db, err := kuzu.OpenDatabase(dir, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("graphmirror: failed to open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("graphmirror: failed to open connection: %w", err)
	}
	m := &Mirror{db: db, conn: conn}
	if err := m.withTransaction(func() error {
		_, execErr := m.conn.Query(ddl)
		return execErr
	}); err != nil {
		m.Close()
		return nil, fmt.Errorf("graphmirror: failed to apply schema: %w", err)
	}
	return m, nil
}

// Close releases the Kuzu connection and database handles.
func (m *Mirror) Close() {
	if m.conn != nil {
		m.conn.Close()
	}
	if m.db != nil {
		m.db.Close()
	}
}

func (m *Mirror) withTransaction(fn func() error) error {
	if _, err := m.conn.Query("BEGIN TRANSACTION;"); err != nil {
		return fmt.Errorf("graphmirror: failed to begin transaction: %w", err)
	}
	if err := fn(); err != nil {
		if _, rerr := m.conn.Query("ROLLBACK;"); rerr != nil {
			return fmt.Errorf("graphmirror: rollback failed after %v: %w", err, rerr)
		}
		return err
	}
	if _, err := m.conn.Query("COMMIT;"); err != nil {
		return fmt.Errorf("graphmirror: failed to commit transaction: %w", err)
	}
	return nil
}

// Sync replaces the mirrored projection of s's current task table: every
// Task node and DEPENDS_ON edge is rewritten inside one transaction so
// concurrent readers never observe a half-rebuilt graph.
func (m *Mirror) Sync(s *schedule.Schedule) error {
	return m.withTransaction(func() error {
		if _, err := m.conn.Query("MATCH (t:Task) DETACH DELETE t;"); err != nil {
			return fmt.Errorf("graphmirror: failed to clear prior projection: %w", err)
		}

		for _, t := range s.Tasks() {
			isCritical := false
			if t.IsCritical != nil {
				isCritical = *t.IsCritical
			}
			var totalFloat int64
			if t.TotalFloat != nil {
				totalFloat = *t.TotalFloat
			}
			stmt := fmt.Sprintf(
				"CREATE (:Task {id: %d, name: %s, duration_days: %d, is_critical: %t, total_float: %d});",
				t.ID, quoteCypherString(t.Name), t.DurationDays, isCritical, totalFloat,
			)
			if _, err := m.conn.Query(stmt); err != nil {
				return fmt.Errorf("graphmirror: failed to create task node %d: %w", t.ID, err)
			}
		}

		for _, t := range s.Tasks() {
			for _, pred := range t.Predecessors {
				stmt := fmt.Sprintf(
					"MATCH (a:Task {id: %d}), (b:Task {id: %d}) CREATE (a)-[:DEPENDS_ON]->(b);",
					pred, t.ID,
				)
				if _, err := m.conn.Query(stmt); err != nil {
					return fmt.Errorf("graphmirror: failed to create edge %d->%d: %w", pred, t.ID, err)
				}
			}
		}
		return nil
	})
}

// CriticalChain runs a Cypher traversal returning every task id reachable
// from start by following DEPENDS_ON edges through only critical tasks,
// sorted ascending by id.
func (m *Mirror) CriticalChain(start int32) ([]int32, error) {
	stmt := fmt.Sprintf(
		`MATCH p = (s:Task {id: %d})-[:DEPENDS_ON*0..]->(t:Task)
		 WHERE ALL(n IN nodes(p) WHERE n.is_critical = true)
		 RETURN DISTINCT t.id AS id ORDER BY id;`, start,
	)
	result, err := m.conn.Query(stmt)
	if err != nil {
		return nil, fmt.Errorf("graphmirror: critical chain query failed: %w", err)
	}
	defer result.Close()

	var ids []int32
	for result.HasNext() {
		row, err := result.Next()
		if err != nil {
			return nil, fmt.Errorf("graphmirror: failed to read result row: %w", err)
		}
		values, err := row.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("graphmirror: failed to decode result row: %w", err)
		}
		if len(values) == 0 {
			continue
		}
		id, ok := values[0].(int64)
		if !ok {
			return nil, fmt.Errorf("graphmirror: unexpected id type %T", values[0])
		}
		ids = append(ids, int32(id))
	}
	return ids, nil
}
