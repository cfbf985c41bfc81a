package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tthints/config"
	"github.com/npillmayer/tthints/fontcheck"
	"github.com/pterm/pterm"
)

// tracer traces with key 'tthints.cli'
func tracer() tracing.Trace {
	return tracing.Select("tthints.cli")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to load")
	confpath := flag.String("config", "", "Configuration file (TOML)")
	flag.Parse()

	// set up logging
	conf := config.Default()
	if *confpath != "" {
		var err error
		if conf, err = config.Load(*confpath); err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
	}
	conf.Trace["tthints.cli"] = *tlevel
	if err := conf.Validate(); err != nil {
		pterm.Error.Println(err)
		os.Exit(2)
	}
	if err := conf.SetupTracing(); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	pterm.Info.Println("Welcome to the TrueType hint analyzer") // colored welcome message
	//
	// set up REPL
	repl, err := readline.New("hints > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl, conf: conf}
	//
	// load font to use
	if err := intp.loadFont(*fontname); err != nil { // font name provided by flag
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	repl     *readline.Instance
	conf     *config.Config
	font     *fontcheck.Font
	analyzer *fontcheck.Analyzer
	current  *fontcheck.ProgramReport // last program run
	selected string                   // describes current
	sig      string                   // signature of current, if a function
}

func (intp *Intp) String() string {
	if intp == nil || intp.font == nil {
		return "()"
	}
	if intp.current == nil {
		return fmt.Sprintf("( font=%s )", intp.font.Name)
	}
	return fmt.Sprintf("( font=%s ) -> %s [%s]", intp.font.Name, intp.selected, intp.current.Halt)
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := intp.parseCommand(line)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Op struct {
	code   int
	arg    string
	format string
}

type Command struct {
	count int
	op    [32]Op
}

const NOOP = -1
const (
	// op-code QUIT will not have arguments
	QUIT int = iota
	// op-codes below may have arguments
	HELP
	FUNCTIONS
	FDEF
	PREP
	GLYPH
	CODE
	STACK
	HISTORY
	EVENTS
	STATS
)

var opMap = map[string]int{
	"quit":      QUIT,
	"help":      HELP,
	"functions": FUNCTIONS,
	"fdef":      FDEF,
	"prep":      PREP,
	"glyph":     GLYPH,
	"code":      CODE,
	"stack":     STACK,
	"history":   HISTORY,
	"events":    EVENTS,
	"stats":     STATS,
}

var opNames = []string{
	"quit",
	"help",
	"functions",
	"fdef",
	"prep",
	"glyph",
	"code",
	"stack",
	"history",
	"events",
	"stats",
}

var command = Command{}

func resetCommand() {
	command.count = 0
	for i := range command.op {
		command.op[i].code = NOOP
		command.op[i].arg = ""
		command.op[i].format = ""
	}
}

// parseCommand parses a line of steps separated by blanks. A step has the
// form "op:arg:format", e.g. "fdef:17", "history:0" or "events:pointMoved".
func (intp *Intp) parseCommand(line string) (*Command, error) {
	resetCommand()
	steps := strings.Fields(line)
	if len(steps) > len(command.op) {
		return nil, fmt.Errorf("too many steps in command: %d", len(steps))
	}
	command.count = len(steps)
	for i, step := range steps {
		c := strings.Split(step, ":")
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			code = HELP
		}
		command.op[i].code = code
		if code == QUIT {
			return &command, nil
		}
		command.op[i].arg = getOptArg(c, 1)
		command.op[i].format = getOptArg(c, 2)
		tracer().Debugf("%s: arg='%s'", opNames[code], command.op[i].arg)
	}
	return &command, nil
}

func getOptArg(c []string, n int) string {
	if len(c) > n {
		return c[n]
	}
	return ""
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:      quitOp,
	HELP:      helpOp,
	FUNCTIONS: functionsOp,
	FDEF:      fdefOp,
	PREP:      prepOp,
	GLYPH:     glyphOp,
	CODE:      codeOp,
	STACK:     stackOp,
	HISTORY:   historyOp,
	EVENTS:    eventsOp,
	STATS:     statsOp,
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.op[:cmd.count])
	for _, c := range cmd.op {
		if c.code == NOOP {
			break
		}
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

func fdefOp(intp *Intp, op *Op) (error, bool) {
	n, err := numArg(op)
	if err != nil {
		return err, false
	}
	r, err := intp.analyzer.Function(context.Background(), n)
	if err != nil {
		return err, false
	}
	intp.setCurrent(fmt.Sprintf("fdef %d", n), &r.ProgramReport)
	intp.sig = r.Signature.String()
	printRun(intp)
	return nil, false
}

func prepOp(intp *Intp, op *Op) (error, bool) {
	pr := intp.analyzer.Prep()
	if pr == nil {
		return errors.New("font has no control value program"), false
	}
	intp.setCurrent("prep", pr)
	printRun(intp)
	return nil, false
}

func glyphOp(intp *Intp, op *Op) (error, bool) {
	gid, err := numArg(op)
	if err != nil {
		return err, false
	}
	r, err := intp.analyzer.Glyph(context.Background(), gid)
	if err != nil {
		return err, false
	}
	if r.Program == "" {
		return fmt.Errorf("glyph %d has no instructions", gid), false
	}
	pterm.Printf("glyph %d: %d points, composite=%v\n", gid, r.Points, r.Composite)
	intp.setCurrent(fmt.Sprintf("glyph %d", gid), &r.ProgramReport)
	printRun(intp)
	return nil, false
}

func (intp *Intp) setCurrent(name string, pr *fontcheck.ProgramReport) {
	intp.selected, intp.current, intp.sig = name, pr, ""
}

func numArg(op *Op) (int, error) {
	if op.arg == "" {
		return 0, fmt.Errorf("%s needs a number, e.g. %s:1", opNames[op.code], opNames[op.code])
	}
	n, err := strconv.Atoi(op.arg)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid number '%s'", opNames[op.code], op.arg)
	}
	return n, nil
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontname string) (err error) {
	if fontname == "" {
		return errors.New("no font given, use -font <file>")
	}
	if intp.font, err = fontcheck.Load(fontname); err != nil {
		return err
	}
	tracer().Infof("loaded font %s", intp.font.Name)
	opts := intp.conf.Options()
	opts.KeepStates = true
	if intp.analyzer, err = fontcheck.NewAnalyzer(intp.font, opts); err != nil {
		return err
	}
	pterm.Printf("font %s: %d glyphs, %d functions, %d cvt entries\n", intp.font.Name,
		intp.font.NumGlyphs(), len(intp.analyzer.FunctionNumbers()), intp.font.CVTSize)
	for _, issue := range intp.font.Issues {
		pterm.Error.Println(issue)
	}
	return nil
}
