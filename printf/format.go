package printf

import (
	"strconv"
)

// appendPadded appends s, padded with spaces to the directive width.
func appendPadded(dst []byte, d directive, s string) []byte {
	pad := d.width - len(s)
	if !d.has(flagMinus) {
		dst = appendRepeat(dst, ' ', pad)
	}
	dst = append(dst, s...)
	if d.has(flagMinus) {
		dst = appendRepeat(dst, ' ', pad)
	}
	return dst
}

func appendRepeat(dst []byte, c byte, n int) []byte {
	for ; n > 0; n-- {
		dst = append(dst, c)
	}
	return dst
}

// appendInteger renders an integer conversion with sign, prefix, precision
// and width handling.
func appendInteger(dst []byte, d directive, neg bool, mag uint64) []byte {
	base := 10
	switch d.verb {
	case 'x', 'X':
		base = 16
	case 'b', 'B':
		base = 2
	case 'o':
		base = 8
	}

	var scratch [64]byte
	digits := strconv.AppendUint(scratch[:0], mag, base)
	if d.verb == 'X' {
		for i, c := range digits {
			if c >= 'a' && c <= 'f' {
				digits[i] = c - 'a' + 'A'
			}
		}
	}
	if d.prec == 0 && mag == 0 {
		digits = digits[:0]
	}
	zeros := max(d.prec-len(digits), 0)

	var sign string
	switch {
	case neg:
		sign = "-"
	case d.verb != 'd' && d.verb != 'i':
	case d.has(flagPlus):
		sign = "+"
	case d.has(flagSpace):
		sign = " "
	}

	var prefix string
	if d.has(flagHash) {
		switch d.verb {
		case 'x', 'X', 'b', 'B':
			if mag != 0 {
				prefix = "0" + string(d.verb)
			}
		case 'o':
			if zeros == 0 && (len(digits) == 0 || digits[0] != '0') {
				zeros = 1
			}
		}
	}

	body := len(sign) + len(prefix) + zeros + len(digits)
	pad := d.width - body
	switch {
	case d.has(flagMinus):
		dst = append(dst, sign...)
		dst = append(dst, prefix...)
		dst = appendRepeat(dst, '0', zeros)
		dst = append(dst, digits...)
		dst = appendRepeat(dst, ' ', pad)
	case d.has(flagZero) && d.prec < 0:
		dst = append(dst, sign...)
		dst = append(dst, prefix...)
		dst = appendRepeat(dst, '0', zeros+max(pad, 0))
		dst = append(dst, digits...)
	default:
		dst = appendRepeat(dst, ' ', pad)
		dst = append(dst, sign...)
		dst = append(dst, prefix...)
		dst = appendRepeat(dst, '0', zeros)
		dst = append(dst, digits...)
	}
	return dst
}

// appendPointer renders %p: "(nil)" for null, else 0x and lowercase hex.
func appendPointer(dst []byte, d directive, addr uint64) []byte {
	if addr == 0 {
		return appendPadded(dst, d, "(nil)")
	}
	var scratch [18]byte
	s := append(scratch[:0], "0x"...)
	s = strconv.AppendUint(s, addr, 16)
	return appendPadded(dst, d, string(s))
}
