package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/npillmayer/tthints/config"
	"github.com/npillmayer/tthints/report"
	"github.com/thatisuday/commando"
)

func runAnalyzeCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	conf := setup(flags)
	if format := strings.TrimSpace(mustFlagString(flags["format"], "format")); format != "-" {
		conf.Report.Format = strings.ToLower(format)
	}
	if w := mustFlagInt(flags["workers"], "workers"); w > 0 {
		conf.Analysis.Workers = w
	}
	if mustFlagBool(flags["skip-glyphs"], "skip-glyphs") {
		conf.Analysis.SkipGlyphs = true
	}
	if err := conf.Validate(); err != nil {
		fatalf("%v", err)
	}
	minimum, _ := conf.MinSeverity()
	lang, _ := conf.Language()

	f := mustLoadFont(args["font"].Value)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	fr, err := mustAnalyzer(f, conf.Options()).Report(ctx)
	if err != nil {
		fatalf("analysis of %s failed: %v", f.Name, err)
	}
	summary := report.Summarize(fr, minimum)

	var out io.Writer = os.Stdout
	if path := strings.TrimSpace(mustFlagString(flags["output"], "output")); path != "-" && path != "" {
		file, err := os.Create(path)
		if err != nil {
			fatalf("cannot create output file: %v", err)
		}
		defer file.Close()
		out = file
	}
	switch conf.Report.Format {
	case config.FormatYAML:
		err = report.WriteYAML(out, summary)
	case config.FormatCBOR:
		err = report.WriteCBOR(out, summary)
	default:
		err = report.WriteText(out, summary, lang)
	}
	if err != nil {
		fatalf("cannot write report: %v", err)
	}
}
