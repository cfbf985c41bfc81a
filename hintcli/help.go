package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "history", "provenance":
		pterm.Info.Println("Provenance")
		pterm.Println(`
	Every stack value carries a history: the tree of instructions it was
	computed from. Leaves are PUSH instructions or values the program was
	entered with.

	history        history of the top of stack
	history:2      history of the third entry from the top
	history:rp1    history of reference point 1
	`)
	case "events", "event":
		pterm.Info.Println("Events")
		pterm.Println(`
	Events record accesses with the index value and its history.
	Categories are pointMoved, refPoint, storageWrite and cvtWrite.

	events                 all categories
	events:pointMoved      a single category
	events:refPoint:short  without histories
	`)
	case "values", "value", "collection":
		pterm.Info.Println("Values")
		pterm.Println(`
	Values are finite sets of integers, unions of arithmetic progressions
	and single values. Triple(start, stop, step) excludes stop:
	+-------------------------------+---------------------+
	| Singles: [5]                  | the value 5         |
	| Ranges: [Triple(0, 80, 16)]   | 0, 16, 32, 48, 64   |
	| Ranges: [Triple(1, 10, 1)],   | 1, 2, ..., 9 and 20 |
	|   Singles: [20]               |                     |
	+-------------------------------+---------------------+
	A value nothing is known about covers the full 32-bit range.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	Commands are op:arg:format steps separated by blanks, e.g. "fdef:3 stack".

	functions      signatures of all functions
	fdef:n         run function n with unknown arguments
	prep           run the control value program
	glyph:n        run the instructions of glyph n
	code[:fpgm]    list the last program run, or fpgm/prep
	stack          final stack of the last run
	history[:i]    provenance of a stack entry (help:history)
	events[:cat]   recorded accesses (help:events)
	stats          maxima and graphics state effects
	help:values    notation of values
	quit           leave, as does <ctrl>D
	`)
	}
}
