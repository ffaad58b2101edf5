package framing

import (
	"iter"

	"github.com/vuuvv/errors"
)

// RecordStream splits a buffer into back-to-back records of Size bytes.
// Record i covers [i*Size, (i+1)*Size); a trailing partial record is never
// returned and its length is reported by Remainder.
type RecordStream struct {
	data  []byte
	size  int
	pos   int
	count int
}

func NewRecordStream(data []byte, size uint64) (*RecordStream, error) {
	if size == 0 {
		return nil, errors.New("record size should not be zero")
	}
	return &RecordStream{data: data, size: int(size)}, nil
}

func (s *RecordStream) Size() int {
	return s.size
}

// Next returns the next record and its zero based index, ok is false once the
// next record would run past the end of the buffer.
func (s *RecordStream) Next() (index int, record []byte, ok bool) {
	if s.pos+s.size > len(s.data) {
		return 0, nil, false
	}
	record = s.data[s.pos : s.pos+s.size : s.pos+s.size]
	index = s.count
	s.pos += s.size
	s.count++
	return index, record, true
}

// Count is the number of records returned so far.
func (s *RecordStream) Count() int {
	return s.count
}

// Total is the number of whole records in the buffer.
func (s *RecordStream) Total() int {
	return len(s.data) / s.size
}

// Remainder is the number of trailing bytes that do not form a whole record.
func (s *RecordStream) Remainder() int {
	return len(s.data) % s.size
}

// Reset rewinds the stream to the first record.
func (s *RecordStream) Reset() {
	s.pos = 0
	s.count = 0
}

// All iterates the remaining records.
func (s *RecordStream) All() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		for {
			i, record, ok := s.Next()
			if !ok || !yield(i, record) {
				return
			}
		}
	}
}
