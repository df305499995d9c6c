package calc

import (
	"github.com/cpmforge/scheduler/internal/calendar"
	"github.com/cpmforge/scheduler/internal/graph"
)

// BackwardPass computes late start/finish for every node in d, walking
// the DAG in reverse topological order. LF(t) is projectEnd if t has no
// successors, otherwise min(PrevAvailable(LS(s))) over t's direct
// successors; LS(t) is FindPrevAvailable(LF(t), duration(t)).
//
// earlySpans supplies the defensive fallback (ES/EF) used when a node's
// late values cannot be computed because a required successor result is
// missing.
func BackwardPass(d *graph.DAG, cal *calendar.Calendar, projectEnd calendar.Date, earlySpans map[int32]Span) (map[int32]Span, error) {
	order, err := d.ReverseTopoOrder()
	if err != nil {
		return nil, err
	}

	result := make(map[int32]Span, len(order))
	for _, id := range order {
		succs := d.Successors[id]
		var lf calendar.Date
		if len(succs) == 0 {
			lf = projectEnd
		} else {
			minStart, any := earliestLateStart(succs, result)
			if !any {
				if early, ok := earlySpans[id]; ok {
					result[id] = early
					continue
				}
				lf = projectEnd
			} else {
				lf = cal.PrevAvailable(minStart)
			}
		}
		ls := cal.FindPrevAvailable(lf, d.Duration[id])
		result[id] = Span{Start: ls, Finish: lf}
	}

	for _, id := range d.Nodes {
		if _, ok := result[id]; !ok {
			if early, ok := earlySpans[id]; ok {
				result[id] = early
			}
		}
	}
	return result, nil
}

func earliestLateStart(ids []int32, result map[int32]Span) (calendar.Date, bool) {
	var (
		min calendar.Date
		any bool
	)
	for _, id := range ids {
		span, ok := result[id]
		if !ok {
			continue
		}
		if !any || span.Start.Before(min) {
			min = span.Start
			any = true
		}
	}
	return min, any
}
