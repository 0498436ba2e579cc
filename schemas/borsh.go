package schemas

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// Encode serializes value according to schema using the Borsh layout:
// little-endian integers, u32 length prefixes for strings, bytes and
// vectors, a 0/1 tag byte for options, struct fields in declared order.
//
// Accepted value shapes: bool, uint8, uint32, uint64, string, []byte,
// nil for an empty option, []any for vectors and map[string]any for
// structs.
func Encode(schema Schema, value any) ([]byte, error) {
	return appendValue(nil, schema, value)
}

func appendValue(buf []byte, schema Schema, value any) ([]byte, error) {
	switch schema.Kind {
	case KindBool:
		v, ok := value.(bool)
		if !ok {
			return nil, mismatch(schema, value)
		}
		if v {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil
	case KindU8:
		v, ok := value.(uint8)
		if !ok {
			return nil, mismatch(schema, value)
		}
		return append(buf, v), nil
	case KindU32:
		v, ok := value.(uint32)
		if !ok {
			return nil, mismatch(schema, value)
		}
		return binary.LittleEndian.AppendUint32(buf, v), nil
	case KindU64:
		v, ok := value.(uint64)
		if !ok {
			return nil, mismatch(schema, value)
		}
		return binary.LittleEndian.AppendUint64(buf, v), nil
	case KindString:
		v, ok := value.(string)
		if !ok {
			return nil, mismatch(schema, value)
		}
		return appendBytes(buf, []byte(v))
	case KindBytes:
		v, ok := value.([]byte)
		if !ok {
			return nil, mismatch(schema, value)
		}
		return appendBytes(buf, v)
	case KindOption:
		if schema.Inner == nil {
			return nil, fmt.Errorf("schemas: option without inner schema")
		}
		if value == nil {
			return append(buf, 0), nil
		}
		return appendValue(append(buf, 1), *schema.Inner, value)
	case KindVec:
		if schema.Inner == nil {
			return nil, fmt.Errorf("schemas: vec without inner schema")
		}
		items, ok := value.([]any)
		if !ok {
			return nil, mismatch(schema, value)
		}
		buf, err := appendLen(buf, len(items))
		if err != nil {
			return nil, err
		}
		for i, item := range items {
			buf, err = appendValue(buf, *schema.Inner, item)
			if err != nil {
				return nil, fmt.Errorf("schemas: vec item %d: %w", i, err)
			}
		}
		return buf, nil
	case KindStruct:
		fields, ok := value.(map[string]any)
		if !ok {
			return nil, mismatch(schema, value)
		}
		var err error
		for _, f := range schema.Fields {
			v, present := fields[f.Name]
			if !present && f.Schema.Kind != KindOption {
				return nil, fmt.Errorf("schemas: missing struct field %q", f.Name)
			}
			buf, err = appendValue(buf, f.Schema, v)
			if err != nil {
				return nil, fmt.Errorf("schemas: field %q: %w", f.Name, err)
			}
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("schemas: unknown kind %d", schema.Kind)
	}
}

func appendLen(buf []byte, n int) ([]byte, error) {
	if n > math.MaxUint32 {
		return nil, fmt.Errorf("schemas: length %d overflows u32", n)
	}
	return binary.LittleEndian.AppendUint32(buf, uint32(n)), nil
}

func appendBytes(buf []byte, b []byte) ([]byte, error) {
	buf, err := appendLen(buf, len(b))
	if err != nil {
		return nil, err
	}
	return append(buf, b...), nil
}

func mismatch(schema Schema, value any) error {
	return fmt.Errorf("schemas: cannot encode %T as %s", value, schema)
}

// Decode parses data according to schema and returns the value in the
// same shapes Encode accepts. The whole input must be consumed.
func Decode(schema Schema, data []byte) (any, error) {
	d := decoder{data: data}
	v, err := d.value(schema)
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.data) {
		return nil, fmt.Errorf("schemas: %d trailing bytes", len(d.data)-d.pos)
	}
	return v, nil
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || len(d.data)-d.pos < n {
		return nil, fmt.Errorf("schemas: unexpected end of input at offset %d", d.pos)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) u32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *decoder) bytes() ([]byte, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	b, err := d.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (d *decoder) value(schema Schema) (any, error) {
	switch schema.Kind {
	case KindBool:
		b, err := d.take(1)
		if err != nil {
			return nil, err
		}
		switch b[0] {
		case 0:
			return false, nil
		case 1:
			return true, nil
		default:
			return nil, fmt.Errorf("schemas: invalid bool byte %d", b[0])
		}
	case KindU8:
		b, err := d.take(1)
		if err != nil {
			return nil, err
		}
		return b[0], nil
	case KindU32:
		return d.u32()
	case KindU64:
		b, err := d.take(8)
		if err != nil {
			return nil, err
		}
		return binary.LittleEndian.Uint64(b), nil
	case KindString:
		b, err := d.bytes()
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, fmt.Errorf("schemas: string is not valid utf-8")
		}
		return string(b), nil
	case KindBytes:
		return d.bytes()
	case KindOption:
		if schema.Inner == nil {
			return nil, fmt.Errorf("schemas: option without inner schema")
		}
		tag, err := d.take(1)
		if err != nil {
			return nil, err
		}
		switch tag[0] {
		case 0:
			return nil, nil
		case 1:
			return d.value(*schema.Inner)
		default:
			return nil, fmt.Errorf("schemas: invalid option tag %d", tag[0])
		}
	case KindVec:
		if schema.Inner == nil {
			return nil, fmt.Errorf("schemas: vec without inner schema")
		}
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		// non-empty elements take at least one byte each
		if !schema.Inner.zeroSized() && int(n) > len(d.data)-d.pos {
			return nil, fmt.Errorf("schemas: vec length %d exceeds input", n)
		}
		items := make([]any, 0, min(int(n), len(d.data)-d.pos))
		for i := uint32(0); i < n; i++ {
			item, err := d.value(*schema.Inner)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	case KindStruct:
		fields := make(map[string]any, len(schema.Fields))
		for _, f := range schema.Fields {
			v, err := d.value(f.Schema)
			if err != nil {
				return nil, fmt.Errorf("schemas: field %q: %w", f.Name, err)
			}
			fields[f.Name] = v
		}
		return fields, nil
	default:
		return nil, fmt.Errorf("schemas: unknown kind %d", schema.Kind)
	}
}

func (s Schema) zeroSized() bool {
	if s.Kind != KindStruct {
		return false
	}
	for _, f := range s.Fields {
		if !f.Schema.zeroSized() {
			return false
		}
	}
	return true
}
