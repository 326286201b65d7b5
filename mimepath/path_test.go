package mimepath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/pantomime/mimepath"
)

func TestParse(t *testing.T) {
	t.Parallel()

	p, err := mimepath.Parse("0.2.1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, []int{0, 2, 1}, p.Elems())
	assert.Equal(t, "0.2.1", p.String())

	for _, bad := range []string{"", "0..1", "a", "0.-1", "0."} {
		_, err := mimepath.Parse(bad)
		assert.ErrorIs(t, err, mimepath.ErrInvalidPath, bad)
	}
}

func TestRoot(t *testing.T) {
	t.Parallel()

	r := mimepath.Root()
	assert.True(t, r.IsRoot())
	assert.Equal(t, "0", r.String())

	_, hasParent := r.Parent()
	assert.False(t, hasParent)

	assert.True(t, mimepath.Path{}.IsZero())
	assert.False(t, r.IsZero())
}

func TestParentChild(t *testing.T) {
	t.Parallel()

	p := mimepath.MustParse("0.3.4")
	parent, ok := p.Parent()
	require.True(t, ok)
	assert.Equal(t, "0.3", parent.String())
	assert.True(t, parent.Child(p.Last()).Equal(p))

	assert.Equal(t, "0.3.4.0", p.Child(0).String())
	assert.Equal(t, "0.3.5", p.NextSibling().String())

	// the receiver is never modified
	assert.Equal(t, "0.3.4", p.String())
}

func TestIncrementDecrement(t *testing.T) {
	t.Parallel()

	p := mimepath.MustParse("0.1.2")
	for i := 0; i < p.Len(); i++ {
		assert.True(t, p.Increment(i).Decrement(i).Equal(p))
	}

	assert.Equal(t, "0.2.2", p.Increment(1).String())
	assert.Equal(t, "0.0.2", p.Decrement(1).String())
	assert.Equal(t, "0.0.2", p.Decrement(1).Decrement(1).String())
}

func TestPrefix(t *testing.T) {
	t.Parallel()

	p := mimepath.MustParse("0.1.2.3")
	assert.True(t, p.HasPrefix(mimepath.MustParse("0.1")))
	assert.True(t, p.HasPrefix(p))
	assert.False(t, p.HasPrefix(mimepath.MustParse("0.2")))
	assert.False(t, p.HasPrefix(mimepath.MustParse("0.1.2.3.4")))

	assert.Equal(t, "0.0.2.3", p.Rebase(mimepath.MustParse("0.0")).String())
	assert.Equal(t, "0.4.7.3", p.Rebase(mimepath.MustParse("0.4.7")).String())
}

func TestCursor(t *testing.T) {
	t.Parallel()

	c := mimepath.MustParse("0.5.1").Cursor()
	assert.True(t, c.Path().IsZero())

	var seen []int
	var prefixes []string
	for {
		e, ok := c.Next()
		if !ok {
			break
		}
		seen = append(seen, e)
		prefixes = append(prefixes, c.Path().String())
	}

	assert.Equal(t, []int{0, 5, 1}, seen)
	assert.Equal(t, []string{"0", "0.5", "0.5.1"}, prefixes)
}
