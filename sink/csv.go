package sink

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/vuuvv/errors"
)

// CSVSink writes a header line and one line per record.
type CSVSink struct {
	w      *bufio.Writer
	closer io.Closer
}

func NewCSV(w io.Writer) *CSVSink {
	return &CSVSink{w: bufio.NewWriterSize(w, 64*1024)}
}

func NewCSVFile(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	s := NewCSV(f)
	s.closer = f
	return s, nil
}

func (s *CSVSink) WriteHeader(names []string) error {
	if _, err := s.w.WriteString(strings.Join(names, ",")); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(s.w.WriteByte('\n'))
}

func (s *CSVSink) Write(_ int, line []byte) error {
	if _, err := s.w.Write(line); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(s.w.WriteByte('\n'))
}

func (s *CSVSink) Close() error {
	err := s.w.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return errors.WithStack(err)
}
