/*
Package triple implements the numeric domain of the hint analyzer: sets of
integers represented as unions of arithmetic progressions.

A [Triple] is a single progression (start, stop, step) with stop exclusive.
A [Collection] is a normalized, disjoint union of Triples and stands for
"every value a symbolic quantity could hold". A Collection holding exactly one
value is a scalar; [Collection.ToNumber] collapses it.

Arithmetic on Collections is sound: for every concrete a ∈ A and b ∈ B,
op(a,b) is an element of op(A,B). Results may over-approximate whenever
progressions do not align, or when a large result made of many progressions
is widened to its hull. Normalization itself never changes the set.

All values live in the signed 32-bit range of TrueType stack elements. Results
leaving that range are widened to [Top].

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package triple

import "errors"

// EnumerationLimit is the largest number of elements a Collection will
// enumerate explicitly. Sets up to this size have a unique representation;
// larger sets are normalized structurally.
const EnumerationLimit = 4096

// Bounds of TrueType stack values.
const (
	MinValue = -1 << 31
	MaxValue = 1<<31 - 1
)

var (
	// ErrZeroStep is returned for progressions with step 0.
	ErrZeroStep = errors.New("triple: step must not be zero")
	// ErrEmpty is returned for progressions without elements.
	ErrEmpty = errors.New("triple: progression is empty")
)
