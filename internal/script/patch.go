// Package script locates and rewrites an embedded version literal in
// JavaScript sources, e.g. `module.exports = { version: '0.1.0' }`.
//
// Only the literal itself is replaced. Formatting, comments and all other
// bytes of the file are kept as they were.
package script

import (
	"bytes"
	"reflect"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"

	rperrors "github.com/relicta-tech/versionit/internal/errors"
)

// VersionKey is the object property name that is matched.
const VersionKey = "version"

var astPkgPath = reflect.TypeOf(ast.Program{}).PkgPath()

// Span is the byte range of a matched version literal.
type Span struct {
	// Start is the offset of the first byte of the literal, quotes included.
	Start int
	// End is the offset immediately after the literal.
	End int
	// Literal is the source text of the literal.
	Literal string
}

// Locate parses src and returns the span of the first `version: <literal>`
// property in source order. The boolean is false when there is none.
// src must not start with a #! line; see Patch.
func Locate(src []byte) (Span, bool, error) {
	program, err := parser.ParseFile(nil, "", string(src), parser.IgnoreRegExpErrors, parser.WithDisableSourceMaps)
	if err != nil {
		return Span{}, false, rperrors.ParseWrap(err, "script.Locate", "invalid script syntax")
	}

	var (
		best    Span
		bestKey = -1
	)
	w := &walker{seen: make(map[nodeKey]struct{})}
	w.visit = func(n ast.Node) {
		keyIdx, span, ok := match(n)
		if !ok {
			return
		}
		if bestKey < 0 || keyIdx < bestKey {
			bestKey, best = keyIdx, span
		}
	}
	w.walk(reflect.ValueOf(program))

	return best, bestKey >= 0, nil
}

// Patch replaces the first version literal in src with a single-quoted
// newVersion. A leading #! line is kept verbatim. The boolean reports
// whether a literal was found; when it is false, src is returned as is.
func Patch(src []byte, newVersion string) ([]byte, bool, error) {
	header, body := splitShebang(src)

	span, found, err := Locate(body)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return src, false, nil
	}

	replacement := "'" + newVersion + "'"
	out := make([]byte, 0, len(src)+len(replacement)-len(span.Literal))
	out = append(out, header...)
	out = append(out, body[:span.Start]...)
	out = append(out, replacement...)
	out = append(out, body[span.End:]...)
	return out, true, nil
}

func splitShebang(src []byte) (header, body []byte) {
	if !bytes.HasPrefix(src, []byte("#!")) {
		return nil, src
	}
	i := bytes.IndexByte(src, '\n')
	if i < 0 {
		return src, nil
	}
	return src[:i+1], src[i+1:]
}

// match reports whether n is a plain `version: '...'` or `version: 1`
// property, returning the key offset and the value span.
func match(n ast.Node) (int, Span, bool) {
	prop, ok := n.(*ast.PropertyKeyed)
	if !ok || prop.Computed || prop.Kind != ast.PropertyKindValue {
		return 0, Span{}, false
	}
	// Identifier keys keep their bare name in Literal; quoted keys keep quotes.
	key, ok := prop.Key.(*ast.StringLiteral)
	if !ok || key.Literal != VersionKey {
		return 0, Span{}, false
	}

	var idx int
	var literal string
	switch v := prop.Value.(type) {
	case *ast.StringLiteral:
		idx, literal = int(v.Idx), v.Literal
	case *ast.NumberLiteral:
		idx, literal = int(v.Idx), v.Literal
	default:
		return 0, Span{}, false
	}

	// Idx values are 1-based byte offsets.
	start := idx - 1
	return int(key.Idx) - 1, Span{Start: start, End: start + len(literal), Literal: literal}, true
}

// walker visits every node of a goja AST. The parser ships no visitor, so
// the tree is traversed by reflection over the ast package's types.
type walker struct {
	seen  map[nodeKey]struct{}
	visit func(ast.Node)
}

type nodeKey struct {
	t reflect.Type
	p uintptr
}

func (w *walker) walk(v reflect.Value) {
	switch v.Kind() {
	case reflect.Interface:
		if !v.IsNil() {
			w.walk(v.Elem())
		}
	case reflect.Pointer:
		if v.IsNil() || v.Type().Elem().PkgPath() != astPkgPath {
			return
		}
		key := nodeKey{t: v.Type(), p: v.Pointer()}
		if _, ok := w.seen[key]; ok {
			return
		}
		w.seen[key] = struct{}{}
		if n, ok := v.Interface().(ast.Node); ok {
			w.visit(n)
		}
		w.walk(v.Elem())
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			w.walk(v.Index(i))
		}
	case reflect.Struct:
		t := v.Type()
		if t.PkgPath() != astPkgPath {
			return
		}
		for i := 0; i < v.NumField(); i++ {
			if t.Field(i).IsExported() {
				w.walk(v.Field(i))
			}
		}
	}
}
