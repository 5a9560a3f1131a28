// Package printf renders C-style directive strings into bytes.
//
// Supported conversions:
//
//	%d %i   signed decimal
//	%u      unsigned decimal
//	%x %X   unsigned hexadecimal, no prefix
//	%b %B   unsigned binary, no prefix
//	%o      unsigned octal
//	%p      0x-prefixed lowercase hex address, "(nil)" for null
//	%s      raw bytes up to the argument's NUL terminator or end
//	%c      one raw byte
//	%%      a literal percent sign
//
// Each directive may carry flags (- 0 + space #), a width, a precision
// (either may be * to take an int argument) and a length modifier
// (hh h l ll z j t). Without flags the output is the minimal rendering.
// Literal text is copied byte for byte with no encoding checks.
//
// Unknown conversions, including a lone trailing %, fail with
// ErrInvalidDirective. Output produced before the failing directive is
// still delivered and counted.
//
// Integer arguments may be any Go integer type; the conversion width for
// the unsigned verbs is the argument type's size unless a length modifier
// narrows it, so int32(-1) renders as ffffffff under %x. %s accepts string,
// []byte and, when the Printer has a Memory, heap.Ptr.
package printf
