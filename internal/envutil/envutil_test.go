package envutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBool(t *testing.T) {
	env := map[string]string{"A": "yes", "B": "off", "C": "maybe"}
	getenv := func(k string) string { return env[k] }

	require.True(t, Bool(getenv, "A", false))
	require.False(t, Bool(getenv, "B", true))
	require.True(t, Bool(getenv, "C", true))
	require.False(t, Bool(getenv, "missing", false))
}

func TestString(t *testing.T) {
	getenv := func(k string) string {
		if k == "NODE_VERSION" {
			return "  v22.0.0 "
		}
		return ""
	}
	require.Equal(t, "v22.0.0", String(getenv, "NODE_VERSION", "v20.18.1"))
	require.Equal(t, "x", String(getenv, "OTHER", "x"))
}

func TestSetUnset_DoNotMutateInput(t *testing.T) {
	in := []string{"CI=false", "HOME=/h", "CLAUDECODE=1"}
	snapshot := append([]string(nil), in...)

	out := Set(in, "CI", "true")
	out = Unset(out, "CLAUDECODE")

	require.Equal(t, snapshot, in)
	require.ElementsMatch(t, []string{"HOME=/h", "CI=true"}, out)

	v, ok := Lookup(out, "CI")
	require.True(t, ok)
	require.Equal(t, "true", v)
}

func TestPrependPath(t *testing.T) {
	out := prependPath([]string{"PATH=/usr/bin"}, "/opt/node/bin", "darwin")
	v, _ := Lookup(out, "PATH")
	require.Equal(t, "/opt/node/bin:/usr/bin", v)

	out = prependPath(nil, "/opt/node/bin", "linux")
	v, _ = Lookup(out, "PATH")
	require.Equal(t, "/opt/node/bin", v)
}

func TestPrependPath_Windows(t *testing.T) {
	out := prependPath([]string{`PATH=C:\Windows`}, `C:\mdmemo\lib\nodejs`, "windows")
	v, _ := Lookup(out, "PATH")
	require.Equal(t, `C:\mdmemo\lib\nodejs;C:\Windows`, v)
}

func TestBase_CopiesParentEnvironment(t *testing.T) {
	t.Setenv("MDMEMO_ENVUTIL_PROBE", "1")

	env := Base(nil)
	v, ok := Lookup(env, "MDMEMO_ENVUTIL_PROBE")
	require.True(t, ok)
	require.Equal(t, "1", v)

	_ = Set(env, "MDMEMO_ENVUTIL_PROBE", "2")
	require.Equal(t, "1", os.Getenv("MDMEMO_ENVUTIL_PROBE"))
}
