package narou

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindOther Kind = iota
	// KindNetwork is a transport failure or a non-2xx status.
	KindNetwork
	KindDecompression
	KindDeserialization
	// KindUnsupportedFormat is returned for php, atom and jsonp output.
	KindUnsupportedFormat
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindDecompression:
		return "decompression"
	case KindDeserialization:
		return "deserialization"
	case KindUnsupportedFormat:
		return "unsupported format"
	}
	return "other"
}

var (
	ErrNetwork           = errors.New("network error")
	ErrDecompression     = errors.New("gzip decompression error")
	ErrDeserialization   = errors.New("deserialization error")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrOther             = errors.New("narou error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindDecompression:
		return ErrDecompression
	case KindDeserialization:
		return ErrDeserialization
	case KindUnsupportedFormat:
		return ErrUnsupportedFormat
	}
	return ErrOther
}

// Error is the error returned by every client operation.
type Error struct {
	Kind Kind
	// StatusCode is set when the server answered with a non-2xx status.
	StatusCode int
	// Op is the endpoint or stage that failed, ex. "novel" or "decompress".
	Op  string
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrNetwork) and friends match on Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of err, KindOther if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

// IsTransient reports whether retrying the same request may succeed.
func IsTransient(err error) bool {
	return err != nil && KindOf(err) == KindNetwork
}
