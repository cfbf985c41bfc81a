/*
Package ttinterp executes TrueType hint programs symbolically.

The interpreter does not compute outline coordinates. Every stack value is a
[triple.Collection], the set of integers the value may hold, and is paired
with a [provenance.Ref] recording how it was computed. While running, the
interpreter accumulates [Statistics] about the side effects of the program:
the largest point, storage or function indices it touches, which graphics
state fields it modifies and from which call path, and which points it moves.

Byte code under analysis is untrusted. Content errors never abort the host:
a stack underflow or an illegal operand halts the run with a [HaltReason]
and a [Record] sent to the [Logger]; an illegal zone or point is logged and
execution continues. Only misuse of the interpreter itself is reported as an
error by [Run], see [ConfigurationError].

Function bodies may be analyzed in isolation by seeding the stack with
unknown values and attaching an [ArgTracer], which derives the calling
convention of the function.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ttinterp

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tthints.interp'.
func tracer() tracing.Trace {
	return tracing.Select("tthints.interp")
}
