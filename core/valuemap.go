package core

import "github.com/elliotchance/orderedmap/v3"

type EntryKind uint8

const (
	EntryLeaf EntryKind = iota
	EntrySection
	EntryArray
)

// ValueEntry is a Leaf value, a nested Section or an Array of per-iteration maps.
type ValueEntry struct {
	Kind    EntryKind
	Value   Value
	Section *ValueMap
	Array   []*ValueMap
}

// ValueMap keeps entries in decode order.
type ValueMap struct {
	entries *orderedmap.OrderedMap[string, ValueEntry]
}

func NewValueMap() *ValueMap {
	return &ValueMap{entries: orderedmap.NewOrderedMap[string, ValueEntry]()}
}

func (m *ValueMap) Len() int {
	return m.entries.Len()
}

func (m *ValueMap) SetLeaf(name string, v Value) {
	m.entries.Set(name, ValueEntry{Kind: EntryLeaf, Value: v})
}

func (m *ValueMap) SetSection(name string, section *ValueMap) {
	m.entries.Set(name, ValueEntry{Kind: EntrySection, Section: section})
}

func (m *ValueMap) SetArray(name string, items []*ValueMap) {
	m.entries.Set(name, ValueEntry{Kind: EntryArray, Array: items})
}

func (m *ValueMap) Get(name string) (ValueEntry, bool) {
	return m.entries.Get(name)
}

func (m *ValueMap) Keys() []string {
	keys := make([]string, 0, m.entries.Len())
	for k := range m.entries.Keys() {
		keys = append(keys, k)
	}
	return keys
}

// Lookup finds a leaf by bare name: leaves at this level first, then sections
// depth first in order. Arrays are never searched, an index would be ambiguous.
func (m *ValueMap) Lookup(name string) (Value, bool) {
	if e, ok := m.entries.Get(name); ok && e.Kind == EntryLeaf {
		return e.Value, true
	}
	for _, e := range m.entries.AllFromFront() {
		if e.Kind != EntrySection {
			continue
		}
		if v, ok := e.Section.Lookup(name); ok {
			return v, true
		}
	}
	return Value{}, false
}

// Points flattens the map into name/value pairs in decode order.
func (m *ValueMap) Points() []Point {
	var out []Point
	m.appendPoints(&out)
	return out
}

func (m *ValueMap) appendPoints(out *[]Point) {
	for name, e := range m.entries.AllFromFront() {
		switch e.Kind {
		case EntryLeaf:
			*out = append(*out, Point{Name: name, Value: e.Value})
		case EntrySection:
			e.Section.appendPoints(out)
		case EntryArray:
			for _, item := range e.Array {
				item.appendPoints(out)
			}
		}
	}
}

// Values returns every leaf value in decode order.
func (m *ValueMap) Values() []Value {
	points := m.Points()
	values := make([]Value, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}

// scope chains value maps from the innermost level outward. Lookups walk the
// chain so that a field decoded in an enclosing sequence is visible inside.
type scope struct {
	values *ValueMap
	parent *scope
}

func (s *scope) lookup(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.values.Lookup(name); ok {
			return v, true
		}
	}
	return Value{}, false
}
