package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/npillmayer/tthints/ttcode"
	"github.com/npillmayer/tthints/ttinterp"
	"github.com/pterm/pterm"
)

var errNoRun = errors.New("no program run yet, use fdef, prep or glyph")

func printRun(intp *Intp) {
	pr := intp.current
	pterm.Printf("%s halted: %s after %d steps\n", intp.selected, pr.Halt, pr.Steps)
	if intp.sig != "" {
		pterm.Printf("signature: %s\n", intp.sig)
	}
	for _, r := range pr.Records {
		switch {
		case r.Severity >= ttinterp.SeverityError:
			pterm.Error.Println(r.String())
		case r.Severity >= ttinterp.SeverityWarning:
			pterm.Warning.Println(r.String())
		default:
			pterm.Debug.Println(r.String())
		}
	}
}

func functionsOp(intp *Intp, op *Op) (error, bool) {
	reports, err := intp.analyzer.Functions(context.Background())
	if err != nil {
		return err, false
	}
	data := pterm.TableData{{"#", "signature", "halt", "steps", "records"}}
	for _, r := range reports {
		data = append(data, []string{
			strconv.Itoa(r.Number),
			r.Signature.String(),
			r.Halt.String(),
			strconv.Itoa(r.Steps),
			strconv.Itoa(len(r.Records)),
		})
	}
	pterm.Printf("%d functions\n", len(reports))
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

// codeOp lists the current program. With argument "fpgm" or "prep" the
// respective program is listed instead.
func codeOp(intp *Intp, op *Op) (error, bool) {
	var prog *ttcode.Program
	switch strings.ToLower(op.arg) {
	case "fpgm":
		prog = intp.font.FontProgram
	case "prep":
		prog = intp.font.CVTProgram
	case "":
		if intp.current == nil || intp.current.State == nil {
			return errNoRun, false
		}
		prog = intp.current.State.Program
	default:
		return fmt.Errorf("code: unknown program '%s'", op.arg), false
	}
	if prog.Len() == 0 {
		pterm.Println("no instructions")
		return nil, false
	}
	pterm.Print(prog.String())
	return nil, false
}

func stackOp(intp *Intp, op *Op) (error, bool) {
	st, err := intp.state()
	if err != nil {
		return err, false
	}
	if len(st.Stack) == 0 {
		pterm.Println("stack is empty")
		return nil, false
	}
	data := pterm.TableData{{"#", "value", "history depth"}}
	for i := len(st.Stack) - 1; i >= 0; i-- {
		e := st.Stack[i]
		data = append(data, []string{
			strconv.Itoa(len(st.Stack) - 1 - i),
			e.Value.String(),
			strconv.Itoa(st.Arena.Depth(e.History)),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

// historyOp prints the provenance of a stack entry, counted from the top, or
// of a reference point with argument "rp0" … "rp2".
func historyOp(intp *Intp, op *Op) (error, bool) {
	st, err := intp.state()
	if err != nil {
		return err, false
	}
	arg := strings.ToLower(op.arg)
	if strings.HasPrefix(arg, "rp") {
		slot, err := strconv.Atoi(arg[2:])
		if err != nil || slot < 0 || slot > 2 {
			return fmt.Errorf("history: invalid reference point '%s'", op.arg), false
		}
		pterm.Printf("rp%d = %s\n", slot, st.GS.RP[slot])
		pterm.Print(st.Arena.Format(st.RefPtHistory[slot]))
		return nil, false
	}
	i := 0
	if arg != "" {
		if i, err = strconv.Atoi(arg); err != nil {
			return fmt.Errorf("history: invalid stack index '%s'", op.arg), false
		}
	}
	if i < 0 || i >= len(st.Stack) {
		return fmt.Errorf("history: stack index %d out of range, depth is %d", i, len(st.Stack)), false
	}
	e := st.Stack[len(st.Stack)-1-i]
	pterm.Printf("value %s\n", e.Value)
	pterm.Print(st.Arena.Format(e.History))
	return nil, false
}

// eventsOp prints the history events of a category, with the provenance of
// the index each event used.
func eventsOp(intp *Intp, op *Op) (error, bool) {
	st, err := intp.state()
	if err != nil {
		return err, false
	}
	categories := []string{op.arg}
	if op.arg == "" {
		categories = categories[:0]
		for cat := range st.Stats.History {
			categories = append(categories, cat)
		}
		slices.Sort(categories)
	}
	for _, cat := range categories {
		events := st.Stats.History[cat]
		pterm.Info.Printf("%s: %d events\n", cat, len(events))
		for _, ev := range events {
			if ev.Zone.IsEmpty() {
				pterm.Printf("%s: index %s\n", ev.Loc, ev.Index)
			} else {
				pterm.Printf("%s: zone %s, index %s\n", ev.Loc, ev.Zone, ev.Index)
			}
			if op.format != "short" {
				pterm.Print(st.Arena.Format(ev.History))
			}
		}
	}
	return nil, false
}

func statsOp(intp *Intp, op *Op) (error, bool) {
	if intp.current == nil {
		return errNoRun, false
	}
	stats := intp.current.Stats
	data := pterm.TableData{{"category", "maximum"}}
	cats := make([]string, 0, len(stats.Maxima))
	for cat := range stats.Maxima {
		cats = append(cats, cat)
	}
	slices.Sort(cats)
	for _, cat := range cats {
		data = append(data, []string{cat, strconv.Itoa(stats.Maxima[cat])})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	if effects := stats.SortedEffects(); len(effects) > 0 {
		pterm.Info.Printf("%d graphics state effects\n", len(effects))
		for _, e := range effects {
			pterm.Printf("%s at %s: %s\n", e.CallStack, e.Loc, e.Field)
		}
	}
	if st := intp.current.State; st != nil {
		if changed := st.Changed(); len(changed) > 0 {
			pterm.Printf("changed: %v\n", changed)
		}
	}
	return nil, false
}

func (intp *Intp) state() (*ttinterp.State, error) {
	if intp.current == nil || intp.current.State == nil {
		return nil, errNoRun
	}
	return intp.current.State, nil
}
