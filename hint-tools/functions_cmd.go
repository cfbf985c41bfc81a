package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/npillmayer/tthints/fontcheck"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
)

func runFunctionsCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	conf := setup(flags)
	if d := mustFlagInt(flags["depth"], "depth"); d > 0 {
		conf.Analysis.EntryStackDepth = d
	}
	f := mustLoadFont(args["font"].Value)
	opts := conf.Options()
	opts.SkipGlyphs = true
	reports, err := mustAnalyzer(f, opts).Functions(context.Background())
	if err != nil {
		fatalf("analysis of %s failed: %v", f.Name, err)
	}
	data := pterm.TableData{{"#", "signature", "halt", "argument categories", "results from"}}
	for _, r := range reports {
		data = append(data, []string{
			strconv.Itoa(r.Number),
			r.Signature.String(),
			r.Halt.String(),
			formatCategories(r),
			formatResultArgs(r),
		})
	}
	if isTerminal() {
		pterm.Info.Printf("%s: %d functions\n", f.Name, len(reports))
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		return
	}
	for _, row := range data {
		fmt.Println(strings.Join(row, "\t"))
	}
}

func formatCategories(r fontcheck.FunctionReport) string {
	cats := r.Signature.Categories
	args := make([]int, 0, len(cats))
	for arg := range cats {
		args = append(args, arg)
	}
	slices.Sort(args)
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = fmt.Sprintf("%d:%s", arg, strings.Join(cats[arg], "/"))
	}
	return strings.Join(parts, " ")
}

func formatResultArgs(r fontcheck.FunctionReport) string {
	parts := make([]string, len(r.Signature.ResultArgs))
	for i, ref := range r.Signature.ResultArgs {
		parts[i] = ref.String()
	}
	return strings.Join(parts, " ")
}
