package core

type YamlCase struct {
	Value  any          `yaml:"value"`
	Fields []*YamlField `yaml:"fields"`
}

type YamlField struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`   // 节点类型或者基本类型, 如 seq, array, u16, i32le
	Endian string `yaml:"endian"` // 字节序, big: 大端, little: 小端, 默认大端

	// seq, bits 的子字段
	Fields []*YamlField `yaml:"fields"`

	// array
	Size    int        `yaml:"size"`
	SizeRef string     `yaml:"size_ref"` // 之前解码的整数字段名
	Item    *YamlField `yaml:"item"`

	// subcom
	Discriminant *YamlField  `yaml:"discriminant"`
	Cases        []*YamlCase `yaml:"cases"`

	// enum
	Base   string         `yaml:"base"`
	Values map[any]string `yaml:"values"`

	// bits
	Span int `yaml:"span"` // 字节数
	Bits int `yaml:"bits"` // 子字段的位宽
}

type YamlDerived struct {
	Name    string `yaml:"name"`
	Formula string `yaml:"formula"`
}

type YamlCheck struct {
	Name  string `yaml:"name"`
	Crc   string `yaml:"crc"`   // crc16_modbus, crc16_x_25 ...
	Field string `yaml:"field"` // 保存校验值的字段
	Start int    `yaml:"start"`
	End   int    `yaml:"end"` // <= 0 时从记录末尾倒数
}
