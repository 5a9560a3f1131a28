package printf

import (
	"github.com/cockroachdb/errors"
)

type flags uint8

const (
	flagMinus flags = 1 << iota
	flagZero
	flagPlus
	flagSpace
	flagHash
)

type length uint8

const (
	lengthNone length = iota
	lengthHH
	lengthH
	lengthL
	lengthLL
	lengthZ
	lengthJ
	lengthT
)

// bits is the integer width a length modifier selects, 0 for none.
func (l length) bits() int {
	switch l {
	case lengthHH:
		return 8
	case lengthH:
		return 16
	case lengthNone:
		return 0
	default:
		return 64
	}
}

// maxWidth bounds width and precision so a directive cannot demand an
// unbounded buffer.
const maxWidth = 1 << 20

// directive is one parsed %-conversion.
type directive struct {
	verb     byte
	flags    flags
	width    int // -1 when absent
	prec     int // -1 when absent
	length   length
	starW    bool
	starPrec bool
}

func (d directive) has(f flags) bool { return d.flags&f != 0 }

// parseDirective parses the directive whose '%' is at s[at]. It returns the
// directive and the index just past its verb.
func parseDirective(s string, at int) (directive, int, error) {
	d := directive{width: -1, prec: -1}
	i := at + 1

flagLoop:
	for ; i < len(s); i++ {
		switch s[i] {
		case '-':
			d.flags |= flagMinus
		case '0':
			d.flags |= flagZero
		case '+':
			d.flags |= flagPlus
		case ' ':
			d.flags |= flagSpace
		case '#':
			d.flags |= flagHash
		default:
			break flagLoop
		}
	}

	if i < len(s) && s[i] == '*' {
		d.starW = true
		i++
	} else {
		var ok bool
		if d.width, i, ok = parseNumber(s, i); !ok {
			return d, i, errors.Wrapf(ErrInvalidDirective, "width too large at offset %d", at)
		}
	}

	if i < len(s) && s[i] == '.' {
		i++
		if i < len(s) && s[i] == '*' {
			d.starPrec = true
			i++
		} else {
			var ok bool
			if d.prec, i, ok = parseNumber(s, i); !ok {
				return d, i, errors.Wrapf(ErrInvalidDirective, "precision too large at offset %d", at)
			}
			if d.prec < 0 {
				d.prec = 0 // "%.d" means precision zero
			}
		}
	}

	d.length, i = parseLength(s, i)

	if i >= len(s) {
		return d, i, errors.Wrapf(ErrInvalidDirective, "unterminated directive at offset %d", at)
	}
	d.verb = s[i]
	switch d.verb {
	case 'd', 'i', 'u', 'x', 'X', 'b', 'B', 'o', 'p', 's', 'c', '%':
		return d, i + 1, nil
	default:
		return d, i + 1, errors.Wrapf(ErrInvalidDirective, "unknown verb %q at offset %d", d.verb, at)
	}
}

// parseNumber reads a decimal run at s[i:]; -1 when there are no digits.
func parseNumber(s string, i int) (int, int, bool) {
	if i >= len(s) || s[i] < '0' || s[i] > '9' {
		return -1, i, true
	}
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > maxWidth {
			return 0, i, false
		}
	}
	return n, i, true
}

func parseLength(s string, i int) (length, int) {
	if i >= len(s) {
		return lengthNone, i
	}
	switch s[i] {
	case 'h':
		if i+1 < len(s) && s[i+1] == 'h' {
			return lengthHH, i + 2
		}
		return lengthH, i + 1
	case 'l':
		if i+1 < len(s) && s[i+1] == 'l' {
			return lengthLL, i + 2
		}
		return lengthL, i + 1
	case 'z':
		return lengthZ, i + 1
	case 'j':
		return lengthJ, i + 1
	case 't':
		return lengthT, i + 1
	}
	return lengthNone, i
}
