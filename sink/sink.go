package sink

// Sink receives decoded lines in record order. WriteHeader is called once
// before the first Write.
type Sink interface {
	WriteHeader(names []string) error
	Write(seq int, line []byte) error
	Close() error
}
