package textcase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransform(t *testing.T) {
	for _, tc := range []struct {
		in   string
		mode Case
		out  string
	}{
		{"Hello World", Normal, "Hello World"},
		{"Hello World", Uppercase, "HELLO WORLD"},
		{"Hello World", Lowercase, "hello world"},
		{"straße", Uppercase, "STRASSE"},
		{"黄河 很长", Uppercase, "黄河 很长"},
		{"", Uppercase, ""},
	} {
		assert.Equal(t, tc.out, Transform(tc.in, tc.mode), "%q as %s", tc.in, tc.mode)
	}
}

func TestUnknownModeIsNormal(t *testing.T) {
	assert.Equal(t, "MiXeD", Transform("MiXeD", Case(42)))
	assert.Equal(t, Normal, Parse("capitalize"))
	assert.Equal(t, Normal, Parse(""))
	assert.Equal(t, Uppercase, Parse(" UPPERCASE "))
	assert.Equal(t, Lowercase, Parse("lowercase"))
}

func TestTransformIsIdempotent(t *testing.T) {
	s := "Ärger über Öl"
	once := Transform(s, Uppercase)
	assert.Equal(t, once, Transform(once, Uppercase))
	assert.Equal(t, once, Transform(once, Normal))
}
