package ttinterp

// Logger receives the records of a run.
type Logger interface {
	Log(Record)
}

// TraceLogger sends records to the 'tthints.interp' trace.
type TraceLogger struct{}

// Log implements Logger.
func (TraceLogger) Log(r Record) {
	switch r.Severity {
	case SeverityCritical, SeverityError:
		tracer().Errorf("%s", r)
	case SeverityWarning, SeverityInfo:
		tracer().Infof("%s", r)
	default:
		tracer().Debugf("%s", r)
	}
}

// Collector stores records, e.g. for reports. It is not safe for concurrent
// use; give every run its own Collector.
type Collector struct {
	Records []Record
	Next    Logger // optional logger every record is forwarded to
}

// Log implements Logger.
func (c *Collector) Log(r Record) {
	c.Records = append(c.Records, r)
	if c.Next != nil {
		c.Next.Log(r)
	}
}

// Count returns the number of records of at least severity s.
func (c *Collector) Count(s Severity) int {
	n := 0
	for _, r := range c.Records {
		if r.Severity >= s {
			n++
		}
	}
	return n
}

// WithCode returns the records carrying code.
func (c *Collector) WithCode(code string) []Record {
	var recs []Record
	for _, r := range c.Records {
		if r.Code == code {
			recs = append(recs, r)
		}
	}
	return recs
}
