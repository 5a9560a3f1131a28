package printf

import (
	"io"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// Printer renders directive strings. The zero value is ready to use; set
// Mem to let %s dereference heap pointers.
type Printer struct {
	Mem Memory
}

var std Printer

// Pool of render buffers (eliminates per-call allocations).
var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 256)
		return &b
	},
}

func getBuf() *[]byte { return bufPool.Get().(*[]byte) } //nolint:errcheck // pool holds only *[]byte

func putBuf(b *[]byte) {
	if cap(*b) > 64<<10 {
		return
	}
	*b = (*b)[:0]
	bufPool.Put(b)
}

// Append renders format with args onto dst. On error the returned slice
// holds everything rendered before the failing directive.
func (p Printer) Append(dst []byte, format string, args ...any) ([]byte, error) {
	next := 0
	take := func(d directive) (any, error) {
		if next >= len(args) {
			return nil, errors.Wrapf(ErrMissingArgument, "%%%c needs argument %d", d.verb, next+1)
		}
		next++
		return args[next-1], nil
	}

	for i := 0; i < len(format); {
		j := strings.IndexByte(format[i:], '%')
		if j < 0 {
			dst = append(dst, format[i:]...)
			break
		}
		dst = append(dst, format[i:i+j]...)

		d, end, err := parseDirective(format, i+j)
		if err != nil {
			return dst, err
		}
		i = end
		if d.verb == '%' {
			dst = append(dst, '%')
			continue
		}

		if d.starW {
			arg, err := take(d)
			if err != nil {
				return dst, err
			}
			if d.width, err = intArg(d, arg); err != nil {
				return dst, err
			}
			if d.width < 0 {
				d.flags |= flagMinus
				d.width = -d.width
			}
		}
		if d.starPrec {
			arg, err := take(d)
			if err != nil {
				return dst, err
			}
			if d.prec, err = intArg(d, arg); err != nil {
				return dst, err
			}
			if d.prec < 0 {
				d.prec = -1
			}
		}

		arg, err := take(d)
		if err != nil {
			return dst, err
		}
		if dst, err = p.convert(dst, d, arg); err != nil {
			return dst, err
		}
	}
	return dst, nil
}

func (p Printer) convert(dst []byte, d directive, arg any) ([]byte, error) {
	switch d.verb {
	case 'd', 'i':
		v, err := integerArg(d, arg)
		if err != nil {
			return dst, err
		}
		neg, mag := v.signedValue()
		return appendInteger(dst, d, neg, mag), nil

	case 'u', 'x', 'X', 'b', 'B', 'o':
		v, err := integerArg(d, arg)
		if err != nil {
			return dst, err
		}
		return appendInteger(dst, d, false, v.raw), nil

	case 'c':
		v, err := integerArg(d, arg)
		if err != nil {
			return dst, err
		}
		return appendPadded(dst, d, string([]byte{byte(v.raw)})), nil

	case 'p':
		addr, err := pointerArg(d, arg)
		if err != nil {
			return dst, err
		}
		return appendPointer(dst, d, addr), nil

	case 's':
		s, err := stringArg(d, arg, p.Mem)
		if err != nil {
			return dst, err
		}
		if d.prec >= 0 && d.prec < len(s) {
			s = s[:d.prec]
		}
		return appendPadded(dst, d, s), nil
	}
	return dst, errors.AssertionFailedf("printf: unhandled verb %q", d.verb)
}

// Sprintf renders into dst followed by a NUL terminator and returns the
// number of bytes written, excluding the terminator. A destination too
// small for output plus terminator fails with ErrShortBuffer and is left
// untouched. If a directive fails, the output before it is still written
// and terminated.
func (p Printer) Sprintf(dst []byte, format string, args ...any) (int, error) {
	b := getBuf()
	defer putBuf(b)

	out, rerr := p.Append((*b)[:0], format, args...)
	*b = out
	if len(out)+1 > len(dst) {
		return 0, errors.Wrapf(ErrShortBuffer, "need %d bytes, have %d", len(out)+1, len(dst))
	}
	n := copy(dst, out)
	dst[n] = 0
	return n, rerr
}

// Snprintf renders at most len(dst)-1 bytes into dst, always terminating
// it when dst is non-empty, and returns the length the full output would
// have had.
func (p Printer) Snprintf(dst []byte, format string, args ...any) (int, error) {
	b := getBuf()
	defer putBuf(b)

	out, rerr := p.Append((*b)[:0], format, args...)
	*b = out
	if len(dst) > 0 {
		n := copy(dst[:len(dst)-1], out)
		dst[n] = 0
	}
	return len(out), rerr
}

// Fprintf renders to w with a single Write and returns the number of bytes
// w accepted. Errors from w are returned unchanged.
func (p Printer) Fprintf(w io.Writer, format string, args ...any) (int, error) {
	b := getBuf()
	defer putBuf(b)

	out, rerr := p.Append((*b)[:0], format, args...)
	*b = out
	if len(out) == 0 {
		return 0, rerr
	}
	n, err := w.Write(out)
	if err != nil {
		return n, err
	}
	if n < len(out) {
		return n, io.ErrShortWrite
	}
	return n, rerr
}

// Append renders with the default Printer.
func Append(dst []byte, format string, args ...any) ([]byte, error) {
	return std.Append(dst, format, args...)
}

// Sprintf renders into dst with the default Printer.
func Sprintf(dst []byte, format string, args ...any) (int, error) {
	return std.Sprintf(dst, format, args...)
}

// Snprintf renders into dst with the default Printer, truncating.
func Snprintf(dst []byte, format string, args ...any) (int, error) {
	return std.Snprintf(dst, format, args...)
}

// Fprintf renders to w with the default Printer.
func Fprintf(w io.Writer, format string, args ...any) (int, error) {
	return std.Fprintf(w, format, args...)
}
