package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/npillmayer/tthints/config"
	"github.com/npillmayer/tthints/fontcheck"
	"github.com/thatisuday/commando"
)

func main() {
	commando.
		SetExecutableName("hint-tools").
		SetVersion("v0.1.0").
		SetDescription("CLI for analyzing the hint programs of TrueType fonts.")

	commando.
		Register("analyze").
		SetDescription("Analyze all hint programs of a font and print a report.").
		SetShortDescription("analyze a font").
		AddArgument("font", "TrueType font file path", "").
		AddFlag("config,c", "configuration file (TOML)", commando.String, "-").
		AddFlag("format,f", "output format: text|yaml|cbor (default from configuration)", commando.String, "-").
		AddFlag("output,o", "output file, - for stdout", commando.String, "-").
		AddFlag("workers,w", "concurrent runs (0 uses configuration)", commando.Int, 0).
		AddFlag("skip-glyphs,G", "do not run glyph programs", commando.Bool, nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil).
		SetAction(runAnalyzeCommand)

	commando.
		Register("functions").
		SetDescription("Print the signatures of the functions defined in the font program.").
		SetShortDescription("function signatures").
		AddArgument("font", "TrueType font file path", "").
		AddFlag("config,c", "configuration file (TOML)", commando.String, "-").
		AddFlag("depth,d", "number of unknown arguments functions are entered with (0 uses configuration)", commando.Int, 0).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil).
		SetAction(runFunctionsCommand)

	commando.
		Register("disasm").
		SetDescription("Print the instructions of a hint program: fpgm, prep, fdef <n> or glyph <n>.").
		SetShortDescription("disassemble").
		AddArgument("font", "TrueType font file path", "").
		AddArgument("program...", "program to list", "fpgm").
		AddFlag("config,c", "configuration file (TOML)", commando.String, "-").
		AddFlag("verbose,V", "display additional output", commando.Bool, nil).
		SetAction(runDisasmCommand)

	commando.Parse(nil)
}

// setup loads the configuration named by the --config flag and configures
// tracing.
func setup(flags map[string]commando.FlagValue) *config.Config {
	path := strings.TrimSpace(mustFlagString(flags["config"], "config"))
	conf := config.Default()
	if path != "" && path != "-" {
		var err error
		if conf, err = config.Load(path); err != nil {
			fatalf("%v", err)
		}
	}
	if mustFlagBool(flags["verbose"], "verbose") {
		for key := range conf.Trace {
			conf.Trace[key] = "Info"
		}
	}
	if err := conf.SetupTracing(); err != nil {
		fatalf("%v", err)
	}
	return conf
}

func mustLoadFont(path string) *fontcheck.Font {
	path = strings.TrimSpace(path)
	if path == "" {
		fatalf("font path is required")
	}
	f, err := fontcheck.Load(path)
	if err != nil {
		fatalf("cannot load font %s: %v", path, err)
	}
	return f
}

func mustAnalyzer(f *fontcheck.Font, opts fontcheck.Options) *fontcheck.Analyzer {
	a, err := fontcheck.NewAnalyzer(f, opts)
	if err != nil {
		fatalf("cannot analyze font %s: %v", f.Name, err)
	}
	return a
}

// parseProgram parses a program selector: fpgm, prep, fdef <n> or glyph <n>.
func parseProgram(sel string) (kind string, n int, err error) {
	fields := strings.FieldsFunc(sel, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return "fpgm", 0, nil
	}
	kind = strings.ToLower(fields[0])
	switch kind {
	case "fpgm", "prep":
		if len(fields) > 1 {
			return "", 0, fmt.Errorf("%s takes no number", kind)
		}
		return kind, 0, nil
	case "fdef", "glyph":
		if len(fields) != 2 {
			return "", 0, fmt.Errorf("%s needs a number", kind)
		}
		if n, err = strconv.Atoi(fields[1]); err != nil || n < 0 {
			return "", 0, fmt.Errorf("invalid %s number %q", kind, fields[1])
		}
		return kind, n, nil
	}
	return "", 0, fmt.Errorf("unknown program %q (expected fpgm|prep|fdef <n>|glyph <n>)", fields[0])
}

// isTerminal reports whether stdout is a terminal, where tables are drawn.
func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func mustFlagString(flag commando.FlagValue, name string) string {
	s, err := flag.GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return s
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "hint-tools: "+format+"\n", args...)
	os.Exit(1)
}
