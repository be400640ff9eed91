package builtin

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCall_UUID(t *testing.T) {
	r := NewRegistry()

	v, ok := r.Call("uuid()")
	require.True(t, ok)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f-]{36}$`), v)
}

func TestCall_UnknownFunction(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Call("nope()")
	assert.False(t, ok)

	_, ok = r.Call("not a call")
	assert.False(t, ok)
}

func TestCall_Random(t *testing.T) {
	r := NewRegistry()

	v, ok := r.Call("random(1, 10)")
	require.True(t, ok)
	n, isInt := v.(int)
	require.True(t, isInt)
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, 10)
}

func TestCall_RandomString(t *testing.T) {
	r := NewRegistry()

	v, ok := r.Call("randomString(12)")
	require.True(t, ok)
	assert.Len(t, v, 12)
}

func TestCall_RandomEmail(t *testing.T) {
	r := NewRegistry()

	v, ok := r.Call("randomEmail()")
	require.True(t, ok)
	assert.Regexp(t, regexp.MustCompile(`^[a-z]+@[a-z]+\.com$`), v)
}

func TestCall_Base64(t *testing.T) {
	r := NewRegistry()

	v, ok := r.Call("base64(hello)")
	require.True(t, ok)
	assert.Equal(t, "aGVsbG8=", v)

	v, ok = r.Call("base64Decode(aGVsbG8=)")
	require.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestCall_QuotedArgs(t *testing.T) {
	r := NewRegistry()

	v, ok := r.Call(`base64("hello, world")`)
	require.True(t, ok)
	assert.Equal(t, "aGVsbG8sIHdvcmxk", v)
}

func TestSeed_Reproducible(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	a.Seed(42)
	b.Seed(42)

	va, _ := a.Call("randomString(20)")
	vb, _ := b.Call("randomString(20)")
	assert.Equal(t, va, vb)
}

func TestRegister_Custom(t *testing.T) {
	r := NewRegistry()
	r.Register("constant", func(_ []string) any { return 7 })

	v, ok := r.Call("constant()")
	require.True(t, ok)
	assert.Equal(t, 7, v)
}
