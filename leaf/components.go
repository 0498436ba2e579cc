package leaf

import (
	"fmt"

	"github.com/totegamma/weird/schemas"
)

var (
	nameSchema        = schemas.String
	descriptionSchema = schemas.String
	commonMarkSchema  = schemas.String
	rawImageSchema    = schemas.Struct(
		schemas.F("format", schemas.String),
		schemas.F("data", schemas.Bytes),
	)
)

// Name is the display name of an entity.
type Name struct {
	Value string
}

func NewName(s string) Name { return Name{Value: s} }

func (Name) ComponentName() string    { return "Name" }
func (Name) Schema() schemas.Schema   { return nameSchema }
func (n Name) Encode() ([]byte, error) { return schemas.Encode(nameSchema, n.Value) }

var NameType = ComponentType{
	Name:          "Name",
	Schema:        nameSchema,
	Specification: "The primary human-readable name of the entity.",
	Decode: func(data []byte) (Component, error) {
		s, err := DecodeString(nameSchema, data)
		if err != nil {
			return nil, err
		}
		return Name{Value: s}, nil
	},
}

// Description is a free-form description of an entity.
type Description struct {
	Value string
}

func NewDescription(s string) Description { return Description{Value: s} }

func (Description) ComponentName() string    { return "Description" }
func (Description) Schema() schemas.Schema   { return descriptionSchema }
func (d Description) Encode() ([]byte, error) { return schemas.Encode(descriptionSchema, d.Value) }

var DescriptionType = ComponentType{
	Name:          "Description",
	Schema:        descriptionSchema,
	Specification: "A short description of the entity.",
	Decode: func(data []byte) (Component, error) {
		s, err := DecodeString(descriptionSchema, data)
		if err != nil {
			return nil, err
		}
		return Description{Value: s}, nil
	},
}

// CommonMark holds CommonMark formatted text, used for component
// documentation.
type CommonMark struct {
	Value string
}

func (CommonMark) ComponentName() string    { return "CommonMark" }
func (CommonMark) Schema() schemas.Schema   { return commonMarkSchema }
func (c CommonMark) Encode() ([]byte, error) { return schemas.Encode(commonMarkSchema, c.Value) }

var CommonMarkType = ComponentType{
	Name:          "CommonMark",
	Schema:        commonMarkSchema,
	Specification: "Text formatted as CommonMark markdown.",
	Decode: func(data []byte) (Component, error) {
		s, err := DecodeString(commonMarkSchema, data)
		if err != nil {
			return nil, err
		}
		return CommonMark{Value: s}, nil
	},
}

// RawImage is an encoded image together with its media type.
type RawImage struct {
	Format string
	Data   []byte
}

func NewRawImage(format string, data []byte) (RawImage, error) {
	if format == "" {
		return RawImage{}, ValidationError{Component: RawImageType.Name, Reason: "format is required"}
	}
	if len(data) == 0 {
		return RawImage{}, ValidationError{Component: RawImageType.Name, Reason: "image data is empty"}
	}
	return RawImage{Format: format, Data: data}, nil
}

func (RawImage) ComponentName() string  { return "RawImage" }
func (RawImage) Schema() schemas.Schema { return rawImageSchema }
func (r RawImage) Encode() ([]byte, error) {
	return schemas.Encode(rawImageSchema, map[string]any{
		"format": r.Format,
		"data":   r.Data,
	})
}

var RawImageType = ComponentType{
	Name:          "RawImage",
	Schema:        rawImageSchema,
	Specification: "An image, stored as its raw encoded bytes alongside its media type.",
	Decode: func(data []byte) (Component, error) {
		v, err := schemas.Decode(rawImageSchema, data)
		if err != nil {
			return nil, err
		}
		fields := v.(map[string]any)
		format, ok := fields["format"].(string)
		if !ok {
			return nil, fmt.Errorf("raw image: bad format field")
		}
		bytes, ok := fields["data"].([]byte)
		if !ok {
			return nil, fmt.Errorf("raw image: bad data field")
		}
		return RawImage{Format: format, Data: bytes}, nil
	},
}
