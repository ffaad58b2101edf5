package core

// Builders for schema trees.

func Seq(name string, children ...PacketDef) PacketDef {
	return &SeqDef[Item]{Name: name, Children: children}
}

func Leaf(item Item) PacketDef {
	return &LeafDef[Item]{Item: item}
}

func ArrayFixed(name string, n int, element PacketDef) PacketDef {
	return &ArrayDef[Item]{Name: name, Size: ArrSize{Fixed: n}, Element: element}
}

func ArrayVar(name string, ref string, element PacketDef) PacketDef {
	return &ArrayDef[Item]{Name: name, Size: ArrSize{Var: ref}, Element: element}
}

func Subcom(name string, discriminant Item, branches ...Branch[Item]) PacketDef {
	return &SubcomDef[Item]{Name: name, Discriminant: discriminant, Branches: branches}
}

func Case(match Value, def PacketDef) Branch[Item] {
	return Branch[Item]{Match: match, Def: def}
}

func Bits(name string, span uint64, entries ...BitEntry) PacketDef {
	return &BitsDef[Item]{Name: name, Span: span, Entries: entries}
}

func BitField(name string, width int, typ IntPrim) BitEntry {
	return BitEntry{Name: name, Width: width, Type: typ}
}

func Enum(name string, base IntPrim, pairs ...EnumPair) PacketDef {
	return Leaf(NewItem(name, NewEnumPrim(base, pairs...)))
}

func Uint(bits int, endian Endian) IntPrim {
	return IntPrim{Bits: bits, Endian: endian}
}

func Int(bits int, endian Endian) IntPrim {
	return IntPrim{Bits: bits, Signed: true, Endian: endian}
}

func Float(bits int, endian Endian) FloatPrim {
	return FloatPrim{Bits: bits, Endian: endian}
}

func leaf(name string, p Prim) PacketDef {
	return Leaf(NewItem(name, p))
}

func U8BE(name string) PacketDef  { return leaf(name, Uint(8, BigEndian)) }
func U8LE(name string) PacketDef  { return leaf(name, Uint(8, LittleEndian)) }
func U16BE(name string) PacketDef { return leaf(name, Uint(16, BigEndian)) }
func U16LE(name string) PacketDef { return leaf(name, Uint(16, LittleEndian)) }
func U32BE(name string) PacketDef { return leaf(name, Uint(32, BigEndian)) }
func U32LE(name string) PacketDef { return leaf(name, Uint(32, LittleEndian)) }
func U64BE(name string) PacketDef { return leaf(name, Uint(64, BigEndian)) }
func U64LE(name string) PacketDef { return leaf(name, Uint(64, LittleEndian)) }

func I8BE(name string) PacketDef  { return leaf(name, Int(8, BigEndian)) }
func I8LE(name string) PacketDef  { return leaf(name, Int(8, LittleEndian)) }
func I16BE(name string) PacketDef { return leaf(name, Int(16, BigEndian)) }
func I16LE(name string) PacketDef { return leaf(name, Int(16, LittleEndian)) }
func I32BE(name string) PacketDef { return leaf(name, Int(32, BigEndian)) }
func I32LE(name string) PacketDef { return leaf(name, Int(32, LittleEndian)) }
func I64BE(name string) PacketDef { return leaf(name, Int(64, BigEndian)) }
func I64LE(name string) PacketDef { return leaf(name, Int(64, LittleEndian)) }

func F32BE(name string) PacketDef { return leaf(name, Float(32, BigEndian)) }
func F32LE(name string) PacketDef { return leaf(name, Float(32, LittleEndian)) }
func F64BE(name string) PacketDef { return leaf(name, Float(64, BigEndian)) }
func F64LE(name string) PacketDef { return leaf(name, Float(64, LittleEndian)) }
