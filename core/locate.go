package core

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vuuvv/errors"
)

// LocatedLayout is the flat, randomly addressable form of a static definition.
// Size is the full record size and is kept when items are filtered out.
type LocatedLayout struct {
	Items []LocItem
	Size  uint64
}

// Locate compiles a definition into a located layout. It fails as a whole with
// a *NotLocatableError when any subtree needs decode-time resolution.
func Locate(def PacketDef) (*LocatedLayout, error) {
	tree, size, err := LocateTree(def)
	if err != nil {
		return nil, err
	}
	return &LocatedLayout{Items: Leaves[LocItem](tree), Size: size}, nil
}

// LocateTree maps a schema tree onto a tree of located items. Fixed arrays are
// unrolled into one sequence per index, bit spans into one leaf per entry.
func LocateTree(def PacketDef) (LocDef, uint64, error) {
	l := &locator{}
	tree, err := l.locate(def)
	if err != nil {
		return nil, 0, err
	}
	return tree, l.offset, nil
}

type locator struct {
	offset uint64
	path   []string
}

func (l *locator) child(name string) []string {
	return append(slices.Clone(l.path), name)
}

func (l *locator) locate(d PacketDef) (LocDef, error) {
	switch n := d.(type) {
	case *LeafDef[Item]:
		item := LocItem{Path: l.child(n.Item.Name), Type: n.Item.Type, Offset: l.offset}
		l.offset += n.Item.Type.NumBytes()
		return &LeafDef[LocItem]{Item: item}, nil

	case *BitsDef[Item]:
		start := l.offset
		base := l.child(n.Name)
		seq := &SeqDef[LocItem]{Name: n.Name}
		used := 0
		for _, e := range n.Entries {
			if err := e.validate(); err != nil {
				return nil, err
			}
			if used+e.Width > int(n.Span)*8 {
				return nil, errors.Errorf("bit field %s overflows %d byte span of %s", e.Name, n.Span, n.Name)
			}
			prim := BitFieldPrim{BitOffset: used % 8, Width: e.Width, Type: e.Type, SpanBytes: n.Span}
			item := LocItem{Path: append(slices.Clone(base), e.Name), Type: prim, Offset: start + uint64(used/8)}
			seq.Children = append(seq.Children, &LeafDef[LocItem]{Item: item})
			used += e.Width
		}
		l.offset = start + n.Span
		return seq, nil

	case *SeqDef[Item]:
		seq := &SeqDef[LocItem]{Name: n.Name}
		l.path = append(l.path, n.Name)
		defer l.pop()
		for _, c := range n.Children {
			located, err := l.locate(c)
			if err != nil {
				return nil, err
			}
			seq.Children = append(seq.Children, located)
		}
		return seq, nil

	case *ArrayDef[Item]:
		if n.Size.IsVar() {
			return nil, errors.WithStack(&NotLocatableError{Path: l.child(n.Name), Kind: "variable array"})
		}
		seq := &SeqDef[LocItem]{Name: n.Name}
		for i := 0; i < n.Size.Fixed; i++ {
			indexed := fmt.Sprintf("%s[%d]", n.Name, i)
			l.path = append(l.path, indexed)
			located, err := l.locate(n.Element)
			l.pop()
			if err != nil {
				return nil, err
			}
			seq.Children = append(seq.Children, &SeqDef[LocItem]{Name: indexed, Children: []LocDef{located}})
		}
		return seq, nil

	case *SubcomDef[Item]:
		return nil, errors.WithStack(&NotLocatableError{Path: l.child(n.Name), Kind: "subcom"})
	}
	return nil, errors.Errorf("unknown definition node %T", d)
}

func (l *locator) pop() {
	l.path = l.path[:len(l.path)-1]
}

// Header lists the final path segment of every item, in layout order.
func (l *LocatedLayout) Header() []string {
	names := make([]string, len(l.Items))
	for i, item := range l.Items {
		names[i] = item.FieldName()
	}
	return names
}

// Find returns the first item whose final segment or dotted path is name.
func (l *LocatedLayout) Find(name string) (LocItem, bool) {
	for _, item := range l.Items {
		if item.FieldName() == name || item.PathString() == name {
			return item, true
		}
	}
	return LocItem{}, false
}

// Filter keeps the items whose final segment or dotted path is listed.
func (l *LocatedLayout) Filter(names []string) (*LocatedLayout, error) {
	if len(names) == 0 {
		return l, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[strings.TrimSpace(name)] = false
	}
	out := &LocatedLayout{Size: l.Size}
	for _, item := range l.Items {
		full := item.PathString()
		_, byName := wanted[item.FieldName()]
		_, byPath := wanted[full]
		if !byName && !byPath {
			continue
		}
		if byName {
			wanted[item.FieldName()] = true
		}
		if byPath {
			wanted[full] = true
		}
		out.Items = append(out.Items, item)
	}
	var missing []string
	for name, hit := range wanted {
		if !hit {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, errors.Errorf("filter names not in layout: %s", strings.Join(missing, ","))
	}
	return out, nil
}
