package leaf

import (
	"fmt"
	"net/url"
	"strings"
)

const linkScheme = "leaf://"

// PathSegment is one element of a link path, either a literal tag such as
// "profiles" or a key such as a user id.
type PathSegment string

// Link addresses an entity (or a collection of entities) in the component
// store. Links are plain values; copying one never aliases its path.
type Link struct {
	Namespace string
	Path      []PathSegment
}

func NewLink(namespace string, path ...PathSegment) Link {
	return Link{Namespace: namespace, Path: append([]PathSegment(nil), path...)}
}

// Join returns a new link with segs appended to l's path.
func (l Link) Join(segs ...PathSegment) Link {
	path := make([]PathSegment, 0, len(l.Path)+len(segs))
	path = append(path, l.Path...)
	path = append(path, segs...)
	return Link{Namespace: l.Namespace, Path: path}
}

// HasPrefix reports whether prefix is l itself or one of its ancestors.
func (l Link) HasPrefix(prefix Link) bool {
	if l.Namespace != prefix.Namespace || len(prefix.Path) > len(l.Path) {
		return false
	}
	for i, seg := range prefix.Path {
		if l.Path[i] != seg {
			return false
		}
	}
	return true
}

func (l Link) Equal(other Link) bool {
	return len(l.Path) == len(other.Path) && l.HasPrefix(other)
}

func (l Link) String() string {
	var b strings.Builder
	b.WriteString(linkScheme)
	b.WriteString(url.PathEscape(l.Namespace))
	for _, seg := range l.Path {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(string(seg)))
	}
	return b.String()
}

func ParseLink(s string) (Link, error) {
	rest, ok := strings.CutPrefix(s, linkScheme)
	if !ok {
		return Link{}, fmt.Errorf("invalid link %q: missing %s prefix", s, linkScheme)
	}

	parts := strings.Split(rest, "/")
	namespace, err := url.PathUnescape(parts[0])
	if err != nil {
		return Link{}, fmt.Errorf("invalid link namespace: %v", err)
	}

	path := make([]PathSegment, 0, len(parts)-1)
	for _, p := range parts[1:] {
		seg, err := url.PathUnescape(p)
		if err != nil {
			return Link{}, fmt.Errorf("invalid link segment %q: %v", p, err)
		}
		path = append(path, PathSegment(seg))
	}

	return Link{Namespace: namespace, Path: path}, nil
}
