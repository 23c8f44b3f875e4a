package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rperrors "github.com/relicta-tech/versionit/internal/errors"
)

func TestPatch(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "module exports",
			src:  "module.exports = {\n  name: 'x',\n  version: '0.1.0'\n};\n",
			want: "module.exports = {\n  name: 'x',\n  version: '0.2.0'\n};\n",
		},
		{
			name: "double quotes become single",
			src:  `var meta = { version: "0.1.0" };`,
			want: `var meta = { version: '0.2.0' };`,
		},
		{
			name: "number literal",
			src:  `exports.meta = { version: 1 };`,
			want: `exports.meta = { version: '0.2.0' };`,
		},
		{
			name: "comments and whitespace kept",
			src:  "// version: '0.0.1'\nvar x = { /* keep */ version   :  '0.1.0' /* after */ };\n",
			want: "// version: '0.0.1'\nvar x = { /* keep */ version   :  '0.2.0' /* after */ };\n",
		},
		{
			name: "multibyte text before the literal",
			src:  "var greeting = 'héllo wörld'; var m = { version: '0.1.0' };",
			want: "var greeting = 'héllo wörld'; var m = { version: '0.2.0' };",
		},
		{
			name: "first in source order wins",
			src:  "var a = { version: '1.0.0' };\nvar b = { version: '2.0.0' };\n",
			want: "var a = { version: '0.2.0' };\nvar b = { version: '2.0.0' };\n",
		},
		{
			name: "nested object before outer key",
			src:  "var m = { inner: { version: '9.9.9' }, version: '1.0.0' };",
			want: "var m = { inner: { version: '0.2.0' }, version: '1.0.0' };",
		},
		{
			name: "inside a function body",
			src:  "function info() {\n  return { version: '0.1.0' };\n}\n",
			want: "function info() {\n  return { version: '0.2.0' };\n}\n",
		},
		{
			name: "shebang kept verbatim",
			src:  "#!/usr/bin/env node\nvar m = { version: '0.1.0' };\n",
			want: "#!/usr/bin/env node\nvar m = { version: '0.2.0' };\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, found, err := Patch([]byte(tt.src), "0.2.0")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestPatch_NoMatch(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"no object", "console.log('version');"},
		{"quoted key", `var m = { 'version': '1.0.0' };`},
		{"computed key", `var m = { ['version']: '1.0.0' };`},
		{"identifier value", `var v = '1'; var m = { version: v };`},
		{"template value", "var m = { version: `1.0.0` };"},
		{"method", `var m = { version() { return '1.0.0'; } };`},
		{"shorthand", `var version = '1.0.0'; var m = { version };`},
		{"assignment", `exports.version = '1.0.0';`},
		{"shebang only", "#!/usr/bin/env node"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, found, err := Patch([]byte(tt.src), "2.0.0")
			require.NoError(t, err)
			assert.False(t, found)
			assert.Equal(t, tt.src, string(out))
		})
	}
}

func TestPatch_SyntaxError(t *testing.T) {
	_, found, err := Patch([]byte("var m = { version: '1.0.0' "), "2.0.0")
	require.Error(t, err)
	assert.False(t, found)
	assert.True(t, rperrors.IsKind(err, rperrors.KindParse), "got %v", err)
}

func TestPatch_Idempotent(t *testing.T) {
	src := []byte(`module.exports = { version: "1.0.0" };`)

	once, found, err := Patch(src, "1.0.1")
	require.NoError(t, err)
	require.True(t, found)

	twice, found, err := Patch(once, "1.0.1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, string(once), string(twice))
}

func TestLocate(t *testing.T) {
	src := []byte("var m = { name: 'a', version: '0.1.0' };")

	span, found, err := Locate(src)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "'0.1.0'", span.Literal)
	assert.Equal(t, "'0.1.0'", string(src[span.Start:span.End]))
}
