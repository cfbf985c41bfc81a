package ttinterp

import (
	"github.com/npillmayer/tthints/triple"
	"github.com/npillmayer/tthints/ttcode"
)

// setRound sets the round state. The state is written, and marked changed,
// only if it differs from the target.
func (m *machine) setRound(ins ttcode.SetRound) {
	target, ok := roundTarget(ins.Opcode())
	if !ok {
		m.halt(Unsupported, SeverityWarning, CodeUnsupported,
			"round state instruction %s is not supported", ins.Opcode().Name())
		return
	}
	if m.st.GS.Round != target {
		m.st.GS.Round = target
		m.changed(FieldRoundState)
	}
	m.effect(FieldRoundState)
}

// setRefPoint pops a point index into a reference point. Legality of the
// point depends on the zone pointer in effect when the reference point is
// used, so it is not checked here.
func (m *machine) setRefPoint(ins ttcode.SetRefPoint) {
	ops, ok := m.pop(1, ArgPointIndex)
	if !ok {
		return
	}
	slot := ins.Slot
	m.st.GS.RP[slot] = ops[0].Value
	m.st.RefPtHistory[slot] = ops[0].History
	field := FieldRP0 + GSField(slot)
	m.changed(field)
	m.effect(field)
	m.st.Stats.NoteEvent(EventRefPoint, Event{
		Loc:     m.loc,
		Index:   ops[0].Value,
		History: ops[0].History,
	})
}

// setZone pops a zone number into one or all zone pointers. Zones other than
// 0 (twilight) and 1 (glyph) are illegal; the pointer is left unchanged then.
func (m *machine) setZone(ins ttcode.SetZone) {
	ops, ok := m.pop(1, ArgZoneIndex)
	if !ok {
		return
	}
	zone := ops[0].Value
	if !legalZone(zone) {
		m.log(SeverityError, CodeIllegalZone, "illegal zone %v", zone)
		return
	}
	slots := []int{ins.Slot}
	if ins.Slot == ttcode.AllZones {
		slots = []int{0, 1, 2}
	}
	for _, slot := range slots {
		field := FieldZP0 + GSField(slot)
		if !m.st.GS.ZP[slot].Equal(zone) {
			m.st.GS.ZP[slot] = zone
			m.changed(field)
		}
		m.effect(field)
	}
}

// legalZone is true if every element of zone is 0 or 1.
func legalZone(zone triple.Collection) bool {
	return !zone.IsEmpty() && zone.Min() >= 0 && zone.Max() <= 1
}
