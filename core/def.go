package core

import (
	"strings"

	"github.com/vuuvv/errors"
)

// Field is the leaf payload of a definition tree.
type Field interface {
	FieldName() string
	FieldPrim() Prim
}

// Item is a named scalar field of a schema.
type Item struct {
	Name string
	Type Prim
}

func NewItem(name string, typ Prim) Item {
	return Item{Name: name, Type: typ}
}

func (i Item) FieldName() string { return i.Name }
func (i Item) FieldPrim() Prim   { return i.Type }

// LocItem is a field resolved to an absolute byte offset within one record.
type LocItem struct {
	Path   []string
	Type   Prim
	Offset uint64
}

func (i LocItem) FieldName() string {
	if len(i.Path) == 0 {
		return ""
	}
	return i.Path[len(i.Path)-1]
}

func (i LocItem) FieldPrim() Prim { return i.Type }

func (i LocItem) PathString() string {
	return strings.Join(i.Path, ".")
}

// Def is a node of a packet definition. Implementations are *SeqDef, *SubcomDef,
// *ArrayDef, *LeafDef and *BitsDef.
type Def[T Field] interface {
	DefName() string
	isDef()
}

type PacketDef = Def[Item]
type LocDef = Def[LocItem]

type SeqDef[T Field] struct {
	Name     string
	Children []Def[T]
}

type Branch[T Field] struct {
	Match Value
	Def   Def[T]
}

type SubcomDef[T Field] struct {
	Name         string
	Discriminant T
	Branches     []Branch[T]
}

// ArrSize is either a fixed count or the name of an earlier integer field.
type ArrSize struct {
	Fixed int
	Var   string
}

func (s ArrSize) IsVar() bool {
	return s.Var != ""
}

type ArrayDef[T Field] struct {
	Name    string
	Size    ArrSize
	Element Def[T]
}

type LeafDef[T Field] struct {
	Item T
}

// BitsDef packs Entries MSB first into a span of Span bytes.
type BitsDef[T Field] struct {
	Name    string
	Span    uint64
	Entries []BitEntry
}

func (d *SeqDef[T]) DefName() string    { return d.Name }
func (d *SubcomDef[T]) DefName() string { return d.Name }
func (d *ArrayDef[T]) DefName() string  { return d.Name }
func (d *LeafDef[T]) DefName() string   { return d.Item.FieldName() }
func (d *BitsDef[T]) DefName() string   { return d.Name }

func (*SeqDef[T]) isDef()    {}
func (*SubcomDef[T]) isDef() {}
func (*ArrayDef[T]) isDef()  {}
func (*LeafDef[T]) isDef()   {}
func (*BitsDef[T]) isDef()   {}

// NumBytes is the static size of a definition. Var arrays have none. A subcom
// counts its discriminant plus its largest branch, which is only an upper bound
// since the chosen branch, or none, is known at decode time.
func NumBytes[T Field](d Def[T]) (uint64, error) {
	switch n := d.(type) {
	case *LeafDef[T]:
		return n.Item.FieldPrim().NumBytes(), nil
	case *BitsDef[T]:
		return n.Span, nil
	case *SeqDef[T]:
		var total uint64
		for _, c := range n.Children {
			size, err := NumBytes[T](c)
			if err != nil {
				return 0, err
			}
			total += size
		}
		return total, nil
	case *ArrayDef[T]:
		if n.Size.IsVar() {
			return 0, errors.Wrapf(ErrVariableSize, "array %s sized by '%s'", n.Name, n.Size.Var)
		}
		size, err := NumBytes[T](n.Element)
		if err != nil {
			return 0, err
		}
		return size * uint64(n.Size.Fixed), nil
	case *SubcomDef[T]:
		var largest uint64
		for _, b := range n.Branches {
			size, err := NumBytes[T](b.Def)
			if err != nil {
				return 0, err
			}
			largest = max(largest, size)
		}
		return n.Discriminant.FieldPrim().NumBytes() + largest, nil
	}
	return 0, errors.Errorf("unknown definition node %T", d)
}

// ExactBytes is NumBytes for subtrees whose size does not depend on the data,
// ok is false when the subtree holds a var array or a subcom.
func ExactBytes[T Field](d Def[T]) (size uint64, ok bool) {
	if hasSubcom[T](d) {
		return 0, false
	}
	size, err := NumBytes[T](d)
	return size, err == nil
}

func hasSubcom[T Field](d Def[T]) bool {
	switch n := d.(type) {
	case *SubcomDef[T]:
		return true
	case *SeqDef[T]:
		for _, c := range n.Children {
			if hasSubcom[T](c) {
				return true
			}
		}
	case *ArrayDef[T]:
		return hasSubcom[T](n.Element)
	}
	return false
}

// Names lists the leaf field names of a definition in declaration order.
func Names[T Field](d Def[T]) []string {
	var names []string
	walkNames[T](d, &names)
	return names
}

func walkNames[T Field](d Def[T], names *[]string) {
	switch n := d.(type) {
	case *LeafDef[T]:
		*names = append(*names, n.Item.FieldName())
	case *BitsDef[T]:
		for _, e := range n.Entries {
			*names = append(*names, e.Name)
		}
	case *SeqDef[T]:
		for _, c := range n.Children {
			walkNames[T](c, names)
		}
	case *ArrayDef[T]:
		walkNames[T](n.Element, names)
	case *SubcomDef[T]:
		*names = append(*names, n.Discriminant.FieldName())
		for _, b := range n.Branches {
			walkNames[T](b.Def, names)
		}
	}
}

// Leaves returns the leaf payloads of a tree in order, with bit entries skipped.
func Leaves[T Field](d Def[T]) []T {
	var out []T
	var walk func(Def[T])
	walk = func(d Def[T]) {
		switch n := d.(type) {
		case *LeafDef[T]:
			out = append(out, n.Item)
		case *SeqDef[T]:
			for _, c := range n.Children {
				walk(c)
			}
		case *ArrayDef[T]:
			walk(n.Element)
		case *SubcomDef[T]:
			out = append(out, n.Discriminant)
			for _, b := range n.Branches {
				walk(b.Def)
			}
		}
	}
	walk(d)
	return out
}
