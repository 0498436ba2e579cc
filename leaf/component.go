package leaf

import (
	"fmt"

	"github.com/totegamma/weird/schemas"
)

// Component is a named, schema-typed value attached to an entity.
type Component interface {
	ComponentName() string
	Schema() schemas.Schema
	Encode() ([]byte, error)
}

// ComponentType describes a kind of component: its wire name, its schema,
// its documentation and how to rebuild a Component from stored bytes.
type ComponentType struct {
	Name          string
	Schema        schemas.Schema
	Specification string
	Decode        func(data []byte) (Component, error)
}

// Names returns the wire names of types in order.
func Names(types []ComponentType) []string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.Name)
	}
	return names
}

// Entity holds the decoded components read for one link.
type Entity struct {
	Link       Link
	components map[string]Component
}

func NewEntity(link Link) *Entity {
	return &Entity{Link: link, components: map[string]Component{}}
}

func (e *Entity) Set(c Component) {
	e.components[c.ComponentName()] = c
}

func (e *Entity) Get(t ComponentType) (Component, bool) {
	c, ok := e.components[t.Name]
	return c, ok
}

func (e *Entity) Len() int {
	return len(e.components)
}

// Get returns the component of type t from e as T. It reports false when
// the entity is nil, the component is absent, or it has another Go type.
func Get[T Component](e *Entity, t ComponentType) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	c, ok := e.Get(t)
	if !ok {
		return zero, false
	}
	typed, ok := c.(T)
	return typed, ok
}

// DecodeString decodes a string-schema component payload.
func DecodeString(schema schemas.Schema, data []byte) (string, error) {
	v, err := schemas.Decode(schema, data)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}
