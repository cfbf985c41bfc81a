/*
Package config reads the configuration of the hint analysis tools.

Configuration lives in a TOML file:

	[analysis]
	max-steps = 100000
	max-call-depth = 64
	entry-stack-depth = 32
	workers = 4
	skip-glyphs = false

	[report]
	format = "text"       # text, yaml or cbor
	min-severity = "warning"
	language = "en"

	[trace]
	"tthints.interp" = "Error"
	"tthints.fontcheck" = "Info"

Missing entries keep their defaults.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/tthints/fontcheck"
	"github.com/npillmayer/tthints/ttinterp"
	"golang.org/x/text/language"
)

// Config is the configuration of the analysis tools.
type Config struct {
	Analysis Analysis          `toml:"analysis"`
	Report   Report            `toml:"report"`
	Trace    map[string]string `toml:"trace"` // trace key → level

	// Path is the file the configuration was loaded from, if any.
	Path string `toml:"-"`
}

// Analysis configures the interpreter runs.
type Analysis struct {
	MaxSteps        int  `toml:"max-steps"`
	MaxCallDepth    int  `toml:"max-call-depth"`
	EntryStackDepth int  `toml:"entry-stack-depth"`
	Workers         int  `toml:"workers"`
	SkipGlyphs      bool `toml:"skip-glyphs"`
}

// Report configures report output.
type Report struct {
	Format      string `toml:"format"`
	MinSeverity string `toml:"min-severity"`
	Language    string `toml:"language"`
}

// Report formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatCBOR = "cbor"
)

// traceKeys are the trace keys used by this module.
var traceKeys = []string{"tthints.interp", "tthints.fontcheck", "tthints.fontload", "tthints.report"}

// Default returns the default configuration.
func Default() *Config {
	c := &Config{
		Analysis: Analysis{
			MaxSteps:        ttinterp.DefaultMaxSteps,
			MaxCallDepth:    ttinterp.DefaultMaxCallDepth,
			EntryStackDepth: fontcheck.DefaultEntryStackDepth,
		},
		Report: Report{
			Format:      FormatText,
			MinSeverity: "warning",
			Language:    "en",
		},
		Trace: make(map[string]string),
	}
	for _, key := range traceKeys {
		c.Trace[key] = "Error"
	}
	return c
}

// Load reads a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Parse reads a configuration from TOML data, on top of the defaults.
func Parse(data []byte) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown configuration key %q", undecoded[0].String())
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	a := c.Analysis
	for name, v := range map[string]int{
		"max-steps":         a.MaxSteps,
		"max-call-depth":    a.MaxCallDepth,
		"entry-stack-depth": a.EntryStackDepth,
		"workers":           a.Workers,
	} {
		if v < 0 {
			return fmt.Errorf("analysis.%s must not be negative", name)
		}
	}
	switch c.Report.Format {
	case FormatText, FormatYAML, FormatCBOR:
	default:
		return fmt.Errorf("report.format: unknown format %q", c.Report.Format)
	}
	if _, err := c.MinSeverity(); err != nil {
		return err
	}
	if _, err := c.Language(); err != nil {
		return err
	}
	for key, level := range c.Trace {
		if !setTraceLevel(nil, level) {
			return fmt.Errorf("trace.%s: invalid trace level %q", key, level)
		}
	}
	return nil
}

// Options returns the analysis options.
func (c *Config) Options() fontcheck.Options {
	return fontcheck.Options{
		MaxSteps:        c.Analysis.MaxSteps,
		MaxCallDepth:    c.Analysis.MaxCallDepth,
		EntryStackDepth: c.Analysis.EntryStackDepth,
		Workers:         c.Analysis.Workers,
		SkipGlyphs:      c.Analysis.SkipGlyphs,
	}
}

// MinSeverity returns the lowest severity of records to show in reports.
func (c *Config) MinSeverity() (ttinterp.Severity, error) {
	for _, s := range []ttinterp.Severity{ttinterp.SeverityDebug, ttinterp.SeverityInfo,
		ttinterp.SeverityWarning, ttinterp.SeverityError, ttinterp.SeverityCritical} {
		if strings.EqualFold(s.String(), c.Report.MinSeverity) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("report.min-severity: unknown severity %q", c.Report.MinSeverity)
}

// Language returns the language for number formatting in text reports.
func (c *Config) Language() (language.Tag, error) {
	tag, err := language.Parse(c.Report.Language)
	if err != nil {
		return language.Und, fmt.Errorf("report.language: %w", err)
	}
	return tag, nil
}

// setTraceLevel sets the level of trace t. It returns false for an unknown
// level, t may be nil then.
func setTraceLevel(t tracing.Trace, level string) bool {
	switch strings.ToLower(level) {
	case "debug":
		if t != nil {
			t.SetTraceLevel(tracing.LevelDebug)
		}
	case "info":
		if t != nil {
			t.SetTraceLevel(tracing.LevelInfo)
		}
	case "error":
		if t != nil {
			t.SetTraceLevel(tracing.LevelError)
		}
	default:
		return false
	}
	return true
}

// TracingConf returns the tracing part of the configuration in the form
// expected by trace2go.
func (c *Config) TracingConf() testconfig.Conf {
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for key, level := range c.Trace {
		conf["trace."+key] = level
	}
	return conf
}

// SetupTracing routes all traces to the Go standard logger, with the levels
// of the configuration.
func (c *Config) SetupTracing() error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	if err := trace2go.ConfigureRoot(c.TracingConf(), "trace", trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("error configuring tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	for key, level := range c.Trace {
		setTraceLevel(tracing.Select(key), level)
	}
	return nil
}
