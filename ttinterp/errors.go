package ttinterp

import (
	"fmt"

	"github.com/npillmayer/tthints/provenance"
)

// Severity is the severity level of a log record.
type Severity int8

const (
	// SeverityDebug marks records of interest while debugging the analyzer.
	SeverityDebug Severity = iota
	// SeverityInfo marks notable but harmless conditions.
	SeverityInfo
	// SeverityWarning marks conditions that may be illegal, depending on
	// values the analyzer cannot know.
	SeverityWarning
	// SeverityError marks illegal operands which do not stop execution.
	SeverityError
	// SeverityCritical marks conditions which halt execution.
	SeverityCritical
)

// String returns a human-readable representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

// Record codes. Codes are stable and may be used to filter reports.
const (
	CodeStackUnderflow  = "H0001"
	CodeBadOperand      = "H0002"
	CodeDivideByZero    = "H0003"
	CodeMaybeZero       = "H0004"
	CodeIllegalZone     = "H0010"
	CodeIllegalPoint    = "H0011"
	CodeMaybePoint      = "H0012"
	CodeIllegalStorage  = "H0013"
	CodeIllegalCVT      = "H0014"
	CodeIllegalFunction = "H0015"
	CodeUnsupported     = "H0020"
	CodeStepLimit       = "H0021"
	CodeCancelled       = "H0022"
	CodeCallDepth       = "H0023"
	CodeControlFlow     = "H0024"
	CodeUnknownFunction = "H0025"
)

// Record is a structured log record.
type Record struct {
	Severity Severity
	Code     string
	Loc      provenance.Location // instruction the record refers to
	Args     []any               // arguments of Message
	Message  string              // formatted message
}

func (r Record) String() string {
	return fmt.Sprintf("[%s] %s %s: %s", r.Severity, r.Code, r.Loc, r.Message)
}

// HaltReason tells why a run stopped. The zero value is Running.
type HaltReason int8

// Reasons for a run to halt.
const (
	Running        HaltReason = iota
	Completed                 // end of program reached
	StackUnderflow            // fewer operands on the stack than an instruction pops
	BadOperand                // operand that must be a single value is not, or is out of range
	DivideByZero              // divisor can only be zero
	StepLimit                 // instruction budget exhausted
	Cancelled                 // context cancelled
	Unsupported               // instruction is not modelled
	CallDepth                 // function calls nested too deep
	ControlFlow               // branch depends on an unknown condition, or broken block structure
)

func (h HaltReason) String() string {
	switch h {
	case Running:
		return "running"
	case Completed:
		return "completed"
	case StackUnderflow:
		return "stack underflow"
	case BadOperand:
		return "bad operand"
	case DivideByZero:
		return "divide by zero"
	case StepLimit:
		return "step limit"
	case Cancelled:
		return "cancelled"
	case Unsupported:
		return "unsupported instruction"
	case CallDepth:
		return "call depth"
	case ControlFlow:
		return "control flow"
	}
	return "unknown"
}

// ConfigurationError reports misuse of the interpreter, as opposed to errors
// in the analyzed program.
type ConfigurationError struct {
	Option string // offending option or argument
	Issue  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("hint interpreter configuration: %s: %s", e.Option, e.Issue)
}

func errConfig(option, issue string) error {
	return &ConfigurationError{Option: option, Issue: issue}
}
