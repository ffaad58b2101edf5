package core

import (
	"os"

	"github.com/vuuvv/errors"
	"gopkg.in/yaml.v3"
)

// Scheme is a packet definition loaded from yaml. The fields form one root
// sequence named after the scheme.
type Scheme struct {
	Name    string         `yaml:"name"`
	Fields  []*YamlField   `yaml:"fields"`
	Derived []*YamlDerived `yaml:"derived"`
	Checks  []*YamlCheck   `yaml:"checks"`

	ParsedDef     PacketDef   `yaml:"-"`
	ParsedDerived []*Derived  `yaml:"-"`
	ParsedChecks  []*CrcCheck `yaml:"-"`
}

func NewScheme(data []byte) (*Scheme, error) {
	scheme := &Scheme{}
	if err := yaml.Unmarshal(data, scheme); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := scheme.Setup(); err != nil {
		return nil, err
	}
	return scheme, nil
}

func NewSchemeFromFile(path string) (*Scheme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer func() {
		_ = f.Close()
	}()
	scheme := &Scheme{}
	if err = yaml.NewDecoder(f).Decode(scheme); err != nil {
		return nil, errors.Wrapf(err, "parse scheme %s", path)
	}
	if err = scheme.Setup(); err != nil {
		return nil, errors.Wrapf(err, "scheme %s", path)
	}
	return scheme, nil
}

// Setup 编译字段和派生公式
func (s *Scheme) Setup() error {
	if s.Name == "" {
		return errors.New("scheme name not set")
	}
	if len(s.Fields) == 0 {
		return errors.Errorf("scheme '%s' has no fields", s.Name)
	}
	children, err := NodeCompile(s.Fields)
	if err != nil {
		return errors.WithStack(err)
	}
	s.ParsedDef = Seq(s.Name, children...)

	s.ParsedDerived = s.ParsedDerived[:0]
	for _, yd := range s.Derived {
		d, err := CompileDerived(yd.Name, yd.Formula)
		if err != nil {
			return err
		}
		s.ParsedDerived = append(s.ParsedDerived, d)
	}

	s.ParsedChecks = s.ParsedChecks[:0]
	for _, yc := range s.Checks {
		c, err := NewCrcCheck(yc.Name, yc.Crc, yc.Field, yc.Start, yc.End)
		if err != nil {
			return err
		}
		s.ParsedChecks = append(s.ParsedChecks, c)
	}
	return nil
}
