package block

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorises decode failures.
type ErrorKind uint8

const (
	KindMalformedDiscriminator ErrorKind = iota + 1
	KindUnknownDiscriminator
	KindMissingField
	KindTypeMismatch
	KindHexFormat
	KindNestingTooDeep
	KindUnknownField
	KindInvalidValue
)

var (
	ErrMalformedDiscriminator = errors.New("malformed discriminator")
	ErrUnknownDiscriminator   = errors.New("unknown discriminator")
	ErrMissingField           = errors.New("missing field")
	ErrTypeMismatch           = errors.New("type mismatch")
	ErrHexFormat              = errors.New("hex format")
	ErrNestingTooDeep         = errors.New("nesting too deep")
	ErrUnknownField           = errors.New("unknown field")
	ErrInvalidValue           = errors.New("invalid value")
)

var kindSentinels = map[ErrorKind]error{
	KindMalformedDiscriminator: ErrMalformedDiscriminator,
	KindUnknownDiscriminator:   ErrUnknownDiscriminator,
	KindMissingField:           ErrMissingField,
	KindTypeMismatch:           ErrTypeMismatch,
	KindHexFormat:              ErrHexFormat,
	KindNestingTooDeep:         ErrNestingTooDeep,
	KindUnknownField:           ErrUnknownField,
	KindInvalidValue:           ErrInvalidValue,
}

func (k ErrorKind) String() string {
	if err, ok := kindSentinels[k]; ok {
		return err.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// DecodeError describes why a wire tree could not be decoded.
//
// Path locates the offending node, e.g. $.unlockConditions[1].address.pubKeyHash.
// Shape, Family and Tag describe the innermost variant or record being decoded; for
// unknown discriminators they describe the family that was expected.
type DecodeError struct {
	Kind     ErrorKind
	Path     string
	Shape    string
	Family   Family
	Tag      uint64
	HasTag   bool
	Field    string
	Expected string
	Actual   string
	Reason   string
	Err      error
}

func (e *DecodeError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	sb.WriteString(" at ")
	sb.WriteString(e.Path)
	switch {
	case e.Shape != "" && e.HasTag:
		fmt.Fprintf(&sb, " (%s %s/%d)", e.Shape, e.Family, e.Tag)
	case e.Shape != "":
		fmt.Fprintf(&sb, " (%s)", e.Shape)
	case e.Family != 0 && e.HasTag:
		fmt.Fprintf(&sb, " (%s/%d)", e.Family, e.Tag)
	case e.Family != 0:
		fmt.Fprintf(&sb, " (%s)", e.Family)
	}
	return sb.String()
}

// Is matches the sentinel of the error kind.
func (e *DecodeError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ErrorKindOf returns the kind of a decode error, or 0 if err is not one.
func ErrorKindOf(err error) ErrorKind {
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		return 0
	}
	return decodeErr.Kind
}
