package leaf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkStringRoundTrip(t *testing.T) {
	link := NewLink("weird.one", "profiles", "user/with spaces?")

	parsed, err := ParseLink(link.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equal(link))
	assert.Equal(t, "leaf://weird.one/profiles/user%2Fwith%20spaces%3F", link.String())
}

func TestLinkHasPrefix(t *testing.T) {
	root := NewLink("ns", "profiles")
	member := root.Join("u1")

	assert.True(t, member.HasPrefix(root))
	assert.True(t, root.HasPrefix(root))
	assert.False(t, root.HasPrefix(member))
	assert.False(t, NewLink("other", "profiles", "u1").HasPrefix(root))
	assert.False(t, NewLink("ns", "pages", "u1").HasPrefix(root))
}

func TestLinkJoinDoesNotAlias(t *testing.T) {
	root := NewLink("ns", "profiles")
	a := root.Join("a")
	b := root.Join("b")

	assert.Equal(t, PathSegment("a"), a.Path[1])
	assert.Equal(t, PathSegment("b"), b.Path[1])
	assert.Len(t, root.Path, 1)
}

func TestParseLinkRejectsForeignScheme(t *testing.T) {
	_, err := ParseLink("https://example.com/profiles")
	assert.Error(t, err)
}
