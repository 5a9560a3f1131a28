package printf

import (
	"reflect"
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/rtkit/heap"
)

// integer is an integer argument as raw bits plus its source type's width.
type integer struct {
	raw    uint64
	bits   int
	signed bool
}

func badArgument(d directive, arg any) error {
	return errors.Wrapf(ErrBadArgument, "%T for %%%c", arg, d.verb)
}

func integerArg(d directive, arg any) (integer, error) {
	if arg == nil {
		return integer{}, badArgument(d, arg)
	}
	rv := reflect.ValueOf(arg)
	var v integer
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v = integer{raw: uint64(rv.Int()), bits: rv.Type().Bits(), signed: true}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v = integer{raw: rv.Uint(), bits: rv.Type().Bits()}
	default:
		return integer{}, badArgument(d, arg)
	}
	if b := d.length.bits(); b != 0 {
		v.bits = b
		v.signed = v.signed || d.verb == 'd' || d.verb == 'i'
	}
	v.raw &= mask(v.bits)
	return v, nil
}

func mask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(bits) - 1
}

// signedValue returns the sign and magnitude of v read as a signed value
// when its source was signed.
func (v integer) signedValue() (neg bool, mag uint64) {
	if !v.signed {
		return false, v.raw
	}
	shift := uint(64 - v.bits)
	x := int64(v.raw<<shift) >> shift
	if x < 0 {
		return true, ^uint64(x) + 1
	}
	return false, uint64(x)
}

// intArg reads a * width or precision.
func intArg(d directive, arg any) (int, error) {
	v, err := integerArg(directive{verb: '*'}, arg)
	if err != nil {
		return 0, err
	}
	neg, mag := v.signedValue()
	if mag > maxWidth {
		return 0, errors.Wrapf(ErrInvalidDirective, "* value %d too large for %%%c", mag, d.verb)
	}
	if neg {
		return -int(mag), nil
	}
	return int(mag), nil
}

func pointerArg(d directive, arg any) (uint64, error) {
	switch x := arg.(type) {
	case nil:
		return 0, nil
	case unsafe.Pointer:
		return uint64(uintptr(x)), nil
	}
	rv := reflect.ValueOf(arg)
	switch rv.Kind() {
	case reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.Pointer, reflect.UnsafePointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return uint64(rv.Pointer()), nil
	default:
		return 0, badArgument(d, arg)
	}
}

// Memory resolves heap addresses passed to %s.
type Memory interface {
	CString(p heap.Ptr) ([]byte, error)
}

const nullString = "(null)"

// stringArg returns the bytes %s renders for arg.
func stringArg(d directive, arg any, mem Memory) (string, error) {
	switch x := arg.(type) {
	case nil:
		return nullString, nil
	case string:
		if i := strings.IndexByte(x, 0); i >= 0 {
			return x[:i], nil
		}
		return x, nil
	case []byte:
		for i, c := range x {
			if c == 0 {
				return string(x[:i]), nil
			}
		}
		return string(x), nil
	case heap.Ptr:
		if x == heap.Nil {
			return nullString, nil
		}
		if mem == nil {
			return "", errors.Wrap(badArgument(d, arg), "no memory to resolve heap pointer")
		}
		b, err := mem.CString(x)
		if err != nil {
			return "", errors.Mark(errors.Wrapf(err, "printf: %%s at %#x", uintptr(x)), ErrBadArgument)
		}
		return string(b), nil
	default:
		return "", badArgument(d, arg)
	}
}
