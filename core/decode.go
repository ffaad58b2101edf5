package core

import (
	"fmt"
	"strings"

	"github.com/vuuvv/errors"
)

// Policy switches the two permissive decode behaviours into hard errors.
type Policy struct {
	// StrictSubcom fails when no branch matches the discriminant instead of
	// leaving the subcom out of the result.
	StrictSubcom bool
	// StrictArrays fails when the size field of a var array has not been
	// decoded instead of decoding zero elements.
	StrictArrays bool
}

// Issue is a permissive decision taken while decoding.
type Issue struct {
	Path   string
	Reason string
}

func (i Issue) String() string {
	return i.Path + ": " + i.Reason
}

type Decoded struct {
	Values   *ValueMap
	Issues   []Issue
	Consumed int
}

// Decode walks def over data from the first byte.
func Decode(def PacketDef, data []byte, policy Policy) (*Decoded, error) {
	return DecodeContext(def, NewContext(data), policy)
}

// DecodeContext decodes one record at the current cursor position and leaves
// the cursor after the last byte read.
func DecodeContext(def PacketDef, ctx *Context, policy Policy) (*Decoded, error) {
	d := &decoder{ctx: ctx, policy: policy}
	start := ctx.BytePos
	root := NewValueMap()
	if err := d.decode(def, root, &scope{values: root}); err != nil {
		return nil, err
	}
	return &Decoded{Values: root, Issues: d.issues, Consumed: ctx.BytePos - start}, nil
}

type decoder struct {
	ctx    *Context
	policy Policy
	path   []string
	issues []Issue
}

func (d *decoder) fieldPath(name string) string {
	if len(d.path) == 0 {
		return name
	}
	return strings.Join(d.path, ".") + "." + name
}

func (d *decoder) issue(path string, format string, args ...any) {
	d.issues = append(d.issues, Issue{Path: path, Reason: fmt.Sprintf(format, args...)})
}

func (d *decoder) readLeaf(item Item) (Value, error) {
	v, err := item.Type.Decode(d.ctx)
	if err != nil {
		return Value{}, fieldError(d.fieldPath(item.Name), err)
	}
	return v, nil
}

func (d *decoder) decode(def PacketDef, into *ValueMap, sc *scope) error {
	switch n := def.(type) {
	case *LeafDef[Item]:
		v, err := d.readLeaf(n.Item)
		if err != nil {
			return err
		}
		into.SetLeaf(n.Item.Name, v)
		return nil

	case *BitsDef[Item]:
		section := NewValueMap()
		d.path = append(d.path, n.Name)
		defer d.pop()
		err := DecodeBits(n.Entries, n.Span, d.ctx, func(e BitEntry, v Value) {
			section.SetLeaf(e.Name, v)
		})
		if err != nil {
			return errors.Wrapf(err, "bits %s", strings.Join(d.path, "."))
		}
		into.SetSection(n.Name, section)
		return nil

	case *SeqDef[Item]:
		section := NewValueMap()
		into.SetSection(n.Name, section)
		d.path = append(d.path, n.Name)
		defer d.pop()
		inner := &scope{values: section, parent: sc}
		for _, c := range n.Children {
			if err := d.decode(c, section, inner); err != nil {
				return err
			}
		}
		return nil

	case *ArrayDef[Item]:
		count, err := d.arrayCount(n, sc)
		if err != nil {
			return err
		}
		items := make([]*ValueMap, 0, count)
		for i := 0; i < count; i++ {
			d.path = append(d.path, fmt.Sprintf("%s[%d]", n.Name, i))
			element := NewValueMap()
			err := d.decode(n.Element, element, &scope{values: element, parent: sc})
			d.pop()
			if err != nil {
				return err
			}
			items = append(items, element)
		}
		into.SetArray(n.Name, items)
		return nil

	case *SubcomDef[Item]:
		d.path = append(d.path, n.Name)
		defer d.pop()
		disc, err := d.readLeaf(n.Discriminant)
		if err != nil {
			return err
		}
		for _, b := range n.Branches {
			if !b.Match.Matches(disc) {
				continue
			}
			section := NewValueMap()
			section.SetLeaf(n.Discriminant.Name, disc)
			into.SetSection(n.Name, section)
			return d.decode(b.Def, section, &scope{values: section, parent: sc})
		}
		path := strings.Join(d.path, ".")
		if d.policy.StrictSubcom {
			return errors.WithStack(&NoBranchMatchError{Subcom: path, Discriminant: disc})
		}
		d.issue(path, "no branch for discriminant %s, skipped", disc)
		return nil
	}
	return errors.Errorf("unknown definition node %T", def)
}

func (d *decoder) pop() {
	d.path = d.path[:len(d.path)-1]
}

func (d *decoder) arrayCount(n *ArrayDef[Item], sc *scope) (int, error) {
	if !n.Size.IsVar() {
		return n.Size.Fixed, nil
	}
	v, ok := sc.lookup(n.Size.Var)
	if !ok {
		if d.policy.StrictArrays {
			return 0, errors.WithStack(&MissingArraySourceError{Array: d.fieldPath(n.Name), Ref: n.Size.Var})
		}
		d.issue(d.fieldPath(n.Name), "size field '%s' not found, decoded as empty", n.Size.Var)
		return 0, nil
	}
	count, err := v.AsInt()
	if err != nil {
		return 0, errors.Wrapf(err, "array %s sized by '%s'", d.fieldPath(n.Name), n.Size.Var)
	}
	if count < 0 {
		return 0, errors.Errorf("array %s: negative size %d from '%s'", d.fieldPath(n.Name), count, n.Size.Var)
	}
	// 长度明显超出剩余字节时提前失败
	remaining := uint64(d.ctx.Remaining())
	if size, ok := ExactBytes[Item](n.Element); ok && size > 0 && uint64(count) > remaining/size {
		return 0, errors.WithStack(&TruncatedError{Offset: d.ctx.BytePos, Need: int(uint64(count) * size), Have: int(remaining)})
	}
	return int(count), nil
}

// fieldError names the field of a primitive decode failure.
func fieldError(field string, err error) error {
	if enumErr, ok := err.(*UnknownEnumValueError); ok && enumErr.Field == "" {
		enumErr.Field = field
	}
	return &FieldError{Field: field, Err: err}
}
