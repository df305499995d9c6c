// Package cli implements the interactive REPL and one-shot subcommands
// wrapping a Schedule (component C10): whitespace-token commands,
// tablewriter-rendered tables, fatih/color status highlighting.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/cpmforge/scheduler/internal/schedule"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

// REPL runs the whitespace-token command grammar from SPEC_FULL §6.4
// over a Schedule, reading from in and writing to out.
type REPL struct {
	sched  *schedule.Schedule
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger
}

// New builds a REPL around sched, reading commands from in and writing
// output/errors to out.
func New(sched *schedule.Schedule, in io.Reader, out io.Writer, logger *slog.Logger) *REPL {
	return &REPL{sched: sched, in: bufio.NewScanner(in), out: out, logger: logger}
}

// Run reads commands until "quit"/"exit" or EOF, returning nil on a clean
// exit. Exit code 0 per SPEC_FULL §6.4.
func (r *REPL) Run() error {
	fmt.Fprintln(r.out, "cpmctl schedule shell — type 'help' for commands")
	for {
		fmt.Fprint(r.out, "cpm> ")
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return nil
		}
		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			continue
		}
		tokens := strings.Fields(line)
		cmd := tokens[0]
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if err := r.dispatch(cmd, tokens[1:]); err != nil {
			errColor.Fprintf(r.out, "error: %v\n", err)
		}
	}
}

func (r *REPL) dispatch(cmd string, args []string) error {
	switch cmd {
	case "help":
		return r.cmdHelp()
	case "show":
		return r.cmdShow()
	case "new":
		return r.cmdNew(args)
	case "add":
		return r.cmdAdd(args)
	case "delete":
		return r.cmdDelete(args)
	case "bstart":
		return r.cmdSetDate(args, setBaselineStart)
	case "bfinish":
		return r.cmdSetDate(args, setBaselineFinish)
	case "astart":
		return r.cmdSetDate(args, setActualStart)
	case "afinish":
		return r.cmdSetDate(args, setActualFinish)
	case "pct":
		return r.cmdPct(args)
	case "var":
		return r.cmdVar(args)
	case "crit":
		return r.cmdCrit()
	case "parent":
		return r.cmdParent(args)
	case "wbs":
		return r.cmdWBS(args)
	case "notes":
		return r.cmdNotes(args)
	case "succ":
		return r.cmdSucc(args)
	case "rationale":
		return r.cmdRationale(args)
	case "meta":
		return r.cmdMeta(args)
	case "calendar":
		return r.cmdCalendar(args)
	case "save":
		return r.cmdSave(args)
	case "load":
		return r.cmdLoad(args)
	case "compute":
		return r.cmdCompute()
	default:
		return fmt.Errorf("unknown command %q (type 'help')", cmd)
	}
}

func (r *REPL) cmdHelp() error {
	fmt.Fprintln(r.out, strings.TrimSpace(`
help                                    show this message
show                                    render the task table
new                                     start a new, empty schedule
add <id> <name> <duration> [preds_csv]  add or replace a task
delete <id>                             remove a task
bstart|bfinish|astart|afinish <id> <date>   set a baseline/actual date
pct <id> <0..1>                         set percent_complete
var <id>                                show schedule variance
crit                                    render the critical path
parent <id> <parent_id>                 set WBS parent
wbs <id> <code>                         set WBS code
notes <id> <text>                       set task notes
succ <id>                               show successors
rationale templates                     list rationale templates
rationale template <id> <name>          apply a rationale template
meta show|name|desc|dates               inspect/update project metadata
calendar show|default|set <path>|save <path>  inspect/update the calendar
save json|csv <path>                    write a snapshot
load json|csv <path>                    read a snapshot
compute                                 force a refresh
quit|exit                               leave the shell
`))
	return nil
}
