package sink

import (
	"encoding/binary"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/vuuvv/errors"
)

const pebbleBatchSize = 1024

var (
	headerKey    = []byte("h")
	recordPrefix = byte('r')
)

// PebbleSink stores each line under 'r' + big-endian sequence index so that
// iteration order equals record order.
type PebbleSink struct {
	db    *pebble.DB
	batch *pebble.Batch
}

func NewPebble(path string, opts *pebble.Options) (*PebbleSink, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open pebble %s", path)
	}
	return &PebbleSink{db: db, batch: db.NewBatch()}, nil
}

func RecordKey(seq int) []byte {
	key := make([]byte, 9)
	key[0] = recordPrefix
	binary.BigEndian.PutUint64(key[1:], uint64(seq))
	return key
}

func (s *PebbleSink) WriteHeader(names []string) error {
	return errors.WithStack(s.db.Set(headerKey, []byte(strings.Join(names, ",")), pebble.NoSync))
}

func (s *PebbleSink) Write(seq int, line []byte) error {
	if err := s.batch.Set(RecordKey(seq), line, nil); err != nil {
		return errors.WithStack(err)
	}
	if s.batch.Count() >= pebbleBatchSize {
		return s.flush()
	}
	return nil
}

func (s *PebbleSink) flush() error {
	if s.batch.Empty() {
		return nil
	}
	if err := s.batch.Commit(pebble.NoSync); err != nil {
		return errors.WithStack(err)
	}
	s.batch = s.db.NewBatch()
	return nil
}

func (s *PebbleSink) Close() error {
	err := s.flush()
	if err == nil {
		err = s.db.Flush()
	}
	if cerr := s.db.Close(); err == nil {
		err = cerr
	}
	return errors.WithStack(err)
}

// ReadPebble returns the header and the lines stored at path in record order.
func ReadPebble(path string, opts *pebble.Options) (header []string, lines []string, err error) {
	if opts == nil {
		opts = &pebble.Options{}
	}
	opts.ReadOnly = true
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open pebble %s", path)
	}
	defer func() {
		_ = db.Close()
	}()

	value, closer, err := db.Get(headerKey)
	if err != nil && err != pebble.ErrNotFound {
		return nil, nil, errors.WithStack(err)
	}
	if err == nil {
		header = strings.Split(string(value), ",")
		_ = closer.Close()
	}

	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: []byte{recordPrefix}, UpperBound: []byte{recordPrefix + 1}})
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	for iter.First(); iter.Valid(); iter.Next() {
		lines = append(lines, string(iter.Value()))
	}
	if err = iter.Close(); err != nil {
		return nil, nil, errors.WithStack(err)
	}
	return header, lines, nil
}
