package tls

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/rtkit/internal/buf"
)

// DefaultAlign is the template alignment used when none is given.
const DefaultAlign = 8

// Template is the immutable default image of all thread-local variables.
type Template struct {
	image []byte
	align uint64
}

// NewTemplate copies image into a Template. align must be a power of two;
// zero selects DefaultAlign.
func NewTemplate(image []byte, align uint64) (*Template, error) {
	if align == 0 {
		align = DefaultAlign
	}
	if !buf.IsPow2(align) {
		return nil, errors.Wrapf(ErrBadTemplate, "alignment %d", align)
	}
	return &Template{image: append([]byte(nil), image...), align: align}, nil
}

// Size is the number of bytes in the image.
func (t *Template) Size() int { return len(t.image) }

// Align is the alignment every block's template copy honours.
func (t *Template) Align() uint64 { return t.align }

// Image returns a copy of the default image.
func (t *Template) Image() []byte { return append([]byte(nil), t.image...) }

// Var is a thread-local variable placed by a Layout.
type Var struct {
	Name   string
	Offset int
	Size   int
}

// Layout assigns offsets and default values to thread-local variables, the
// job a toolchain does for declared thread-locals.
//
//	l := tls.NewLayout()
//	counter := l.Int32("counter", 5)
//	tmpl, _ := l.Template()
type Layout struct {
	image []byte
	align uint64
	vars  []Var
	index map[string]int
}

// NewLayout returns an empty Layout.
func NewLayout() *Layout {
	return &Layout{align: DefaultAlign, index: make(map[string]int)}
}

// place reserves size bytes aligned to align and returns their offset.
func (l *Layout) place(name string, size int, align uint64) int {
	off, _ := buf.AlignUp(uint64(len(l.image)), align)
	l.image = append(l.image, make([]byte, int(off)-len(l.image)+size)...)
	l.align = max(l.align, align)
	l.index[name] = len(l.vars)
	l.vars = append(l.vars, Var{Name: name, Offset: int(off), Size: size})
	return int(off)
}

// Int32 declares a 4-byte integer with default v.
func (l *Layout) Int32(name string, v int32) int {
	off := l.place(name, 4, 4)
	buf.PutI32LE(l.image[off:], v)
	return off
}

// Int64 declares an 8-byte integer with default v.
func (l *Layout) Int64(name string, v int64) int {
	off := l.place(name, 8, 8)
	buf.PutI64LE(l.image[off:], v)
	return off
}

// Uint64 declares an 8-byte unsigned integer with default v.
func (l *Layout) Uint64(name string, v uint64) int {
	off := l.place(name, 8, 8)
	buf.PutU64LE(l.image[off:], v)
	return off
}

// Bytes declares a byte array initialized from v. align must be a power of
// two; zero means 1.
func (l *Layout) Bytes(name string, v []byte, align uint64) int {
	if align == 0 || !buf.IsPow2(align) {
		align = 1
	}
	off := l.place(name, len(v), align)
	copy(l.image[off:], v)
	return off
}

// Lookup returns the variable declared under name.
func (l *Layout) Lookup(name string) (Var, bool) {
	i, ok := l.index[name]
	if !ok {
		return Var{}, false
	}
	return l.vars[i], true
}

// Vars lists declared variables in declaration order.
func (l *Layout) Vars() []Var { return append([]Var(nil), l.vars...) }

// Template freezes the current image.
func (l *Layout) Template() (*Template, error) {
	return NewTemplate(l.image, l.align)
}
