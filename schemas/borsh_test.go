package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var webLinks = Vec(Struct(
	F("label", Option(String)),
	F("url", String),
))

func TestEncodeString(t *testing.T) {
	b, err := Encode(String, "hi")
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0, 0, 0, 'h', 'i'}, b)
}

func TestEncodeStructFieldOrder(t *testing.T) {
	s := Struct(F("username", String), F("server", String))
	b, err := Encode(s, map[string]any{"server": "b", "username": "a"})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 'a', 1, 0, 0, 0, 'b'}, b)
}

func TestEncodeOption(t *testing.T) {
	none, err := Encode(Option(String), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, none)

	some, err := Encode(Option(String), "x")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 1, 0, 0, 0, 'x'}, some)
}

func TestDecodeNestedVec(t *testing.T) {
	value := []any{
		map[string]any{"label": "home", "url": "https://example.com"},
		map[string]any{"label": nil, "url": "https://example.org"},
	}
	b, err := Encode(webLinks, value)
	require.NoError(t, err)

	decoded, err := Decode(webLinks, b)
	require.NoError(t, err)
	assert.Equal(t, value, decoded)
}

func TestEncodeMissingRequiredField(t *testing.T) {
	s := Struct(F("username", String), F("server", String))
	_, err := Encode(s, map[string]any{"username": "a"})
	assert.Error(t, err)
}

func TestEncodeTypeMismatch(t *testing.T) {
	_, err := Encode(Vec(String), []string{"a"})
	assert.Error(t, err)

	_, err = Encode(U32, 3)
	assert.Error(t, err)
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	_, err := Decode(String, []byte{5, 0, 0, 0, 'a'})
	assert.Error(t, err)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	_, err := Decode(U8, []byte{1, 2})
	assert.Error(t, err)
}

func TestDecodeRejectsOversizedVec(t *testing.T) {
	_, err := Decode(Vec(String), []byte{0xff, 0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func TestDecodeIntegers(t *testing.T) {
	s := Struct(F("a", U8), F("b", U32), F("c", U64), F("d", Bool))
	in := map[string]any{"a": uint8(7), "b": uint32(70000), "c": uint64(1 << 40), "d": true}
	b, err := Encode(s, in)
	require.NoError(t, err)
	assert.Len(t, b, 1+4+8+1)

	out, err := Decode(s, b)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSchemaString(t *testing.T) {
	assert.Equal(t, "Vec<Struct{label: Option<String>, url: String}>", webLinks.String())
	assert.Equal(t, "Bytes", Bytes.String())
}
