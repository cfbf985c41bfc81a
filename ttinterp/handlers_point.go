package ttinterp

import (
	"github.com/npillmayer/tthints/triple"
	"github.com/npillmayer/tthints/ttcode"
)

// mazDelta handles the MAZDELTA family: it pops a point index, a count and
// count delta arguments. Operands popped before an underflow stay popped.
func (m *machine) mazDelta(ins ttcode.MAZDelta) {
	pt, ok := m.pop(1, ArgPointIndex)
	if !ok {
		return
	}
	cnt, ok := m.pop(1, ArgCount)
	if !ok {
		return
	}
	count, ok := m.scalar(cnt[0], "count")
	if !ok {
		return
	}
	if count < 0 {
		m.halt(BadOperand, SeverityError, CodeBadOperand, "negative count %d", count)
		return
	}
	if _, ok := m.pop(count, ArgDeltaArg); !ok {
		return
	}
	m.movePoint(0, pt[0])
}

// deltaP handles DELTAP1–3: it pops a count n and n pairs of point index and
// delta argument.
func (m *machine) deltaP(ins ttcode.DeltaP) {
	cnt, ok := m.pop(1, ArgCount)
	if !ok {
		return
	}
	n, ok := m.scalar(cnt[0], "count")
	if !ok {
		return
	}
	if n < 0 {
		m.halt(BadOperand, SeverityError, CodeBadOperand, "negative count %d", n)
		return
	}
	for range n {
		pt, ok := m.pop(1, ArgPointIndex)
		if !ok {
			return
		}
		if _, ok := m.pop(1, ArgDeltaArg); !ok {
			return
		}
		m.movePoint(0, pt[0])
	}
}

// mdap touches a point and makes it reference points 0 and 1.
func (m *machine) mdap(ins ttcode.MDAP) {
	pt, ok := m.pop(1, ArgPointIndex)
	if !ok {
		return
	}
	m.movePoint(0, pt[0])
	for _, slot := range []int{0, 1} {
		m.st.GS.RP[slot] = pt[0].Value
		m.st.RefPtHistory[slot] = pt[0].History
		field := FieldRP0 + GSField(slot)
		m.changed(field)
		m.effect(field)
	}
}

// movePoint records that the point op, in the zone of zone pointer zp, is
// moved. Nothing is recorded for an illegal zone or point.
func (m *machine) movePoint(zp int, op operand) {
	zone := m.st.GS.ZP[zp]
	if !legalZone(zone) {
		m.log(SeverityError, CodeIllegalZone, "%s on illegal zone %v", m.opcode(), zone)
		return
	}
	if !m.legalPoint(zone, op.Value) {
		return
	}
	if zone.Contains(0) {
		m.st.Stats.NoteMax(MaxTwilight, op.Value.Max())
	}
	if zone.Contains(1) {
		m.st.Stats.NoteMax(MaxPoint, op.Value.Max())
	}
	m.st.Stats.NoteEvent(EventPointMoved, Event{
		Loc:     m.loc,
		Zone:    zone,
		Index:   op.Value,
		History: op.History,
	})
}

// legalPoint checks a point index against the sizes of zone. A point which
// is certainly out of range is an error; one which may be out of range is a
// warning.
func (m *machine) legalPoint(zone, point triple.Collection) bool {
	limit := 0 // smallest known size of the zones in question
	for z, size := range []int{m.opts.Extra.TwilightPoints, m.opts.Extra.GlyphPoints} {
		if size > 0 && zone.Contains(z) && (limit == 0 || size < limit) {
			limit = size
		}
	}
	return m.inRange(point, limit, CodeIllegalPoint, CodeMaybePoint, "point")
}

// inRange checks index against a size, 0 meaning unknown.
func (m *machine) inRange(index triple.Collection, size int, illegal, maybe, what string) bool {
	if index.Min() < 0 {
		m.log(SeverityError, illegal, "%s: negative %s index %v", m.opcode(), what, index)
		return false
	}
	if size == 0 {
		return true
	}
	if index.Min() >= size {
		m.log(SeverityError, illegal, "%s: %s index %v out of range, size is %d",
			m.opcode(), what, index, size)
		return false
	}
	if index.Max() >= size {
		m.log(SeverityWarning, maybe, "%s: %s index %v may be out of range, size is %d",
			m.opcode(), what, index, size)
		return false
	}
	return true
}

// storage handles RS and WS. Writes with a known index are remembered, so
// later reads of the same location see the written value.
func (m *machine) storage(ins ttcode.Storage) {
	if !ins.Write {
		idx, ok := m.pop(1, ArgStorageIndex)
		if !ok {
			return
		}
		if m.inRange(idx[0].Value, m.opts.Extra.StorageSize, CodeIllegalStorage, CodeIllegalStorage, "storage") {
			m.st.Stats.NoteMax(MaxStorage, idx[0].Value.Max())
		}
		if n, ok := idx[0].Value.ToNumber(); ok {
			if stored, ok := m.st.Storage[n]; ok {
				m.pushResult(stored.Value, idx[0], operand{Entry: stored})
				return
			}
		}
		m.pushResult(triple.Top(), idx[0])
		return
	}
	ops, ok := m.pop(1, "")
	if !ok {
		return
	}
	value := ops[0]
	idx, ok := m.pop(1, ArgStorageIndex)
	if !ok {
		return
	}
	index := idx[0].Value
	if m.inRange(index, m.opts.Extra.StorageSize, CodeIllegalStorage, CodeIllegalStorage, "storage") {
		m.st.Stats.NoteMax(MaxStorage, index.Max())
		m.st.Stats.NoteEvent(EventStorageWrite, Event{Loc: m.loc, Index: index, History: idx[0].History})
		if n, ok := index.ToNumber(); ok {
			m.st.Storage[n] = value.Entry
			return
		}
	}
	// an unknown index may hit any location it contains, even if some of
	// its values are out of range
	for n, stored := range m.st.Storage {
		if index.Contains(n) {
			ref := m.st.Arena.Derive(m.opcode().Name(), m.loc, stored.History, value.History)
			m.st.Storage[n] = Entry{Value: stored.Value.Union(value.Value), History: ref}
		}
	}
}

// cvt handles RCVT, WCVTP and WCVTF. Control values are not tracked; reads
// yield an unknown value.
func (m *machine) cvt(ins ttcode.CVT) {
	if ins.Write {
		if _, ok := m.pop(1, ""); !ok {
			return
		}
	}
	idx, ok := m.pop(1, ArgCVTIndex)
	if !ok {
		return
	}
	legal := m.inRange(idx[0].Value, m.opts.Extra.CVTSize, CodeIllegalCVT, CodeIllegalCVT, "cvt")
	if legal {
		m.st.Stats.NoteMax(MaxCVT, idx[0].Value.Max())
	}
	if !ins.Write {
		m.pushResult(triple.Top(), idx[0])
		return
	}
	if legal {
		m.st.Stats.NoteEvent(EventCVTWrite, Event{Loc: m.loc, Index: idx[0].Value, History: idx[0].History})
	}
}
