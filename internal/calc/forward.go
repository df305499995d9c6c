// Package calc implements the forward and backward passes over a
// topologically ordered task DAG: the two traversals that turn
// predecessor relationships and durations into early/late start/finish
// dates.
package calc

import (
	"github.com/cpmforge/scheduler/internal/calendar"
	"github.com/cpmforge/scheduler/internal/graph"
)

// Span is a computed (start, finish) pair for one task.
type Span struct {
	Start, Finish calendar.Date
}

// ForwardPass computes early start/finish for every node in d, walking
// the DAG in topological order. ES(t) is projectStart if t has no
// predecessors, otherwise NextAvailable(max(EF(p))) over t's direct
// predecessors; EF(t) is FindNextAvailable(ES(t), duration(t)).
//
// If a predecessor's result is missing (defensive path, DAG/table out of
// sync), the max available finish among the predecessors that do have a
// result is used instead, or projectStart if none do.
func ForwardPass(d *graph.DAG, cal *calendar.Calendar, projectStart calendar.Date) (map[int32]Span, error) {
	order, err := d.TopoOrder()
	if err != nil {
		return nil, err
	}

	result := make(map[int32]Span, len(order))
	for _, id := range order {
		preds := d.Predecessors[id]
		var es calendar.Date
		if len(preds) == 0 {
			es = projectStart
		} else {
			maxFinish, any := latestFinish(preds, result)
			if !any {
				es = projectStart
			} else {
				es = cal.NextAvailable(maxFinish)
			}
		}
		ef := cal.FindNextAvailable(es, d.Duration[id])
		result[id] = Span{Start: es, Finish: ef}
	}
	return result, nil
}

func latestFinish(ids []int32, result map[int32]Span) (calendar.Date, bool) {
	var (
		max calendar.Date
		any bool
	)
	for _, id := range ids {
		span, ok := result[id]
		if !ok {
			continue
		}
		if !any || span.Finish.After(max) {
			max = span.Finish
			any = true
		}
	}
	return max, any
}
