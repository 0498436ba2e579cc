package schemas

import (
	"fmt"
	"strings"
)

// Kind identifies the shape of a Schema node.
type Kind int

const (
	KindBool Kind = iota
	KindU8
	KindU32
	KindU64
	KindString
	KindBytes
	KindOption
	KindVec
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindU8:
		return "U8"
	case KindU32:
		return "U32"
	case KindU64:
		return "U64"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	case KindOption:
		return "Option"
	case KindVec:
		return "Vec"
	case KindStruct:
		return "Struct"
	default:
		return "Unknown"
	}
}

// Field is a named member of a struct schema. Order is significant.
type Field struct {
	Name   string `json:"name"`
	Schema Schema `json:"schema"`
}

// Schema describes the Borsh encoding of a component value.
// It is plain data and can be inspected without encoding anything.
type Schema struct {
	Kind   Kind    `json:"kind"`
	Inner  *Schema `json:"inner,omitempty"`
	Fields []Field `json:"fields,omitempty"`
}

var (
	Bool   = Schema{Kind: KindBool}
	U8     = Schema{Kind: KindU8}
	U32    = Schema{Kind: KindU32}
	U64    = Schema{Kind: KindU64}
	String = Schema{Kind: KindString}
	Bytes  = Schema{Kind: KindBytes}
)

func Option(inner Schema) Schema {
	return Schema{Kind: KindOption, Inner: &inner}
}

func Vec(inner Schema) Schema {
	return Schema{Kind: KindVec, Inner: &inner}
}

func Struct(fields ...Field) Schema {
	return Schema{Kind: KindStruct, Fields: fields}
}

// F is shorthand for building struct fields.
func F(name string, schema Schema) Field {
	return Field{Name: name, Schema: schema}
}

// String renders the schema in a compact, human readable form, e.g.
// Vec<Struct{label: Option<String>, url: String}>.
func (s Schema) String() string {
	switch s.Kind {
	case KindOption, KindVec:
		if s.Inner == nil {
			return s.Kind.String() + "<?>"
		}
		return fmt.Sprintf("%s<%s>", s.Kind, s.Inner.String())
	case KindStruct:
		parts := make([]string, 0, len(s.Fields))
		for _, f := range s.Fields {
			parts = append(parts, f.Name+": "+f.Schema.String())
		}
		return "Struct{" + strings.Join(parts, ", ") + "}"
	default:
		return s.Kind.String()
	}
}
