package sink

import "slices"

// MemorySink keeps everything in memory.
type MemorySink struct {
	Header []string
	Lines  []string
	Seqs   []int
	Closed bool
}

func NewMemory() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) WriteHeader(names []string) error {
	s.Header = slices.Clone(names)
	return nil
}

func (s *MemorySink) Write(seq int, line []byte) error {
	s.Seqs = append(s.Seqs, seq)
	s.Lines = append(s.Lines, string(line))
	return nil
}

func (s *MemorySink) Close() error {
	s.Closed = true
	return nil
}
