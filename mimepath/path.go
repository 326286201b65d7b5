// Package mimepath provides the address of a node in a MIME part tree.
//
// A path is a dot-separated list of non-negative integers. The root of every
// message is "0". The first child of the root is "0.0", the second "0.1", and
// the first child of the second child is "0.1.0". Paths are values: every
// operation returns a new path and never modifies the receiver.
package mimepath

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned by Parse when the string is not a dot-separated
// list of non-negative integers.
var ErrInvalidPath = errors.New("invalid mime path")

// Path identifies a node in a MIME part tree. The zero value is not a valid
// path; use Root, New, or Parse.
type Path struct {
	elems []int
}

// Root returns the path of the top-level part, "0".
func Root() Path {
	return Path{elems: []int{0}}
}

// New returns a path made of the given elements. It panics if no elements
// are given or if any element is negative.
func New(elems ...int) Path {
	if len(elems) == 0 {
		panic("mimepath: a path needs at least one element")
	}
	for _, e := range elems {
		if e < 0 {
			panic("mimepath: negative path element")
		}
	}
	return Path{elems: append([]int(nil), elems...)}
}

// Parse reads a path in its dotted form, such as "0.2.1".
func Parse(s string) (Path, error) {
	if s == "" {
		return Path{}, ErrInvalidPath
	}

	parts := strings.Split(s, ".")
	elems := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Path{}, ErrInvalidPath
		}
		elems[i] = n
	}

	return Path{elems: elems}, nil
}

// MustParse is Parse that panics on error. Handy for tests and constants.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// IsZero reports whether this is the zero value rather than a real path.
func (p Path) IsZero() bool {
	return len(p.elems) == 0
}

// Len returns the number of elements, which is the depth of the node plus
// one.
func (p Path) Len() int {
	return len(p.elems)
}

// At returns the i-th element.
func (p Path) At(i int) int {
	return p.elems[i]
}

// Last returns the final element, which is the index of the node among its
// siblings.
func (p Path) Last() int {
	return p.elems[len(p.elems)-1]
}

// Elems returns a copy of the elements.
func (p Path) Elems() []int {
	return append([]int(nil), p.elems...)
}

// IsRoot reports whether this is a single element path.
func (p Path) IsRoot() bool {
	return len(p.elems) == 1
}

// Parent returns the path with the last element dropped. The boolean is false
// for a single element path, which has no parent.
func (p Path) Parent() (Path, bool) {
	if len(p.elems) <= 1 {
		return Path{}, false
	}
	return Path{elems: append([]int(nil), p.elems[:len(p.elems)-1]...)}, true
}

// Child returns the path of the k-th child of this node.
func (p Path) Child(k int) Path {
	elems := make([]int, len(p.elems)+1)
	copy(elems, p.elems)
	elems[len(p.elems)] = k
	return Path{elems: elems}
}

// NextSibling returns the path with the last element incremented.
func (p Path) NextSibling() Path {
	return p.Increment(len(p.elems) - 1)
}

// Increment returns the path with the element at index i incremented.
func (p Path) Increment(i int) Path {
	elems := p.Elems()
	elems[i]++
	return Path{elems: elems}
}

// Decrement returns the path with the element at index i decremented. An
// element never drops below zero.
func (p Path) Decrement(i int) Path {
	elems := p.Elems()
	if elems[i] > 0 {
		elems[i]--
	}
	return Path{elems: elems}
}

// HasPrefix reports whether prefix names this node or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.elems) > len(p.elems) {
		return false
	}
	for i, e := range prefix.elems {
		if p.elems[i] != e {
			return false
		}
	}
	return true
}

// Rebase returns the path with its leading prefix.Len() elements replaced by
// prefix. It is used to keep a subtree's paths aligned after its root moves.
func (p Path) Rebase(prefix Path) Path {
	if len(prefix.elems) > len(p.elems) {
		return prefix
	}
	elems := p.Elems()
	copy(elems, prefix.elems)
	return Path{elems: elems}
}

// Equal reports whether both paths have the same elements.
func (p Path) Equal(o Path) bool {
	if len(p.elems) != len(o.elems) {
		return false
	}
	for i := range p.elems {
		if p.elems[i] != o.elems[i] {
			return false
		}
	}
	return true
}

// String returns the dotted form. It is also the key used for maps indexed by
// path.
func (p Path) String() string {
	var sb strings.Builder
	for i, e := range p.elems {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.Itoa(e))
	}
	return sb.String()
}

// Cursor returns a cursor that walks the path one level at a time.
func (p Path) Cursor() *Cursor {
	return &Cursor{path: p}
}

// Cursor walks a path from the root down.
type Cursor struct {
	path Path
	pos  int
}

// Next returns the element at the next level. The boolean is false when the
// cursor has passed the last element.
func (c *Cursor) Next() (int, bool) {
	if c.pos >= len(c.path.elems) {
		return 0, false
	}
	e := c.path.elems[c.pos]
	c.pos++
	return e, true
}

// Path returns the prefix consumed so far. It is the zero Path before the
// first call to Next.
func (c *Cursor) Path() Path {
	if c.pos == 0 {
		return Path{}
	}
	return Path{elems: append([]int(nil), c.path.elems[:c.pos]...)}
}
