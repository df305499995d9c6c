package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/cpmforge/scheduler/internal/calendar"
	"github.com/cpmforge/scheduler/internal/task"
	"github.com/cpmforge/scheduler/internal/task/rationale"
)

func (r *REPL) cmdShow() error {
	tasks := r.sched.Tasks()
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"ID", "Name", "Dur", "ES", "EF", "LS", "LF", "Float", "Crit", "Cost"})
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlackColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlackColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlackColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlackColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlackColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlackColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlackColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlackColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlackColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlackColor},
	)

	for _, t := range tasks {
		crit := ""
		rowColor := tablewriter.Colors{}
		if t.IsCritical != nil && *t.IsCritical {
			crit = "yes"
			rowColor = tablewriter.Colors{tablewriter.FgRedColor}
		}
		table.Rich([]string{
			fmt.Sprintf("%d", t.ID),
			t.Name,
			fmt.Sprintf("%d", t.DurationDays),
			dateStr(t.EarlyStart),
			dateStr(t.EarlyFinish),
			dateStr(t.LateStart),
			dateStr(t.LateFinish),
			intPtrStr(t.TotalFloat),
			crit,
			taskCost(t).StringFixed(2),
		}, []tablewriter.Colors{{}, {}, {}, {}, {}, {}, {}, {}, rowColor, {}})
	}
	table.Render()
	return nil
}

func (r *REPL) cmdCrit() error {
	summary, err := r.sched.Refresh()
	if err != nil {
		return err
	}
	if len(summary.CriticalPath) == 0 {
		fmt.Fprintln(r.out, "no critical tasks")
		return nil
	}
	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"Order", "ID", "Name"})
	for i, id := range summary.CriticalPath {
		t, ok := r.sched.FindTask(id)
		name := ""
		if ok {
			name = t.Name
		}
		table.Append([]string{fmt.Sprintf("%d", i+1), fmt.Sprintf("%d", id), name})
	}
	table.Render()
	if summary.LatestFinish != nil {
		fmt.Fprintf(r.out, "project finishes %s\n", summary.LatestFinish)
	}
	return nil
}

func (r *REPL) renderRationaleTemplates() error {
	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"Template", "Items"})
	for _, name := range rationale.Names() {
		items, err := rationale.Apply(name)
		if err != nil {
			return err
		}
		table.Append([]string{name, fmt.Sprintf("%d", len(items))})
	}
	table.Render()
	return nil
}

func dateStr(d *calendar.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func intPtrStr(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// taskCost sums allocation_units * cost_rate across a task's resource
// allocations, using decimal arithmetic so fractional units/rates never
// accumulate floating-point drift in the rendered table.
func taskCost(t *task.Task) decimal.Decimal {
	total := decimal.Zero
	for _, alloc := range t.ResourceAllocations {
		if alloc.CostRate == nil {
			continue
		}
		units := decimal.NewFromFloat(alloc.AllocationUnits)
		rate := decimal.NewFromFloat(*alloc.CostRate)
		total = total.Add(units.Mul(rate))
	}
	return total
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func parseCalendarConfigJSON(data []byte) (calendar.Config, error) {
	var cfg calendar.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return calendar.Config{}, fmt.Errorf("invalid calendar config: %w", err)
	}
	return cfg, nil
}

func marshalCalendarConfigJSON(cfg calendar.Config) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}
