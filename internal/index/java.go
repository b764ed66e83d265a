package index

import (
	"regexp"
	"strings"
)

var (
	reJavaPkg  = regexp.MustCompile(`(?m)^\s*package\s+([A-Za-z0-9_.]+)\s*;`)
	reJavaType = regexp.MustCompile(`(?m)^\s*(?:(?:public|protected|private|static|final|abstract)\s+)*(class|interface|enum|record)\s+([A-Za-z0-9_]+)`)

	// Heuristic method signature: modifiers, a return type, the name and "(".
	reJavaMeth = regexp.MustCompile(
		`(?m)^\s*(?:(?:public|protected|private|static|final|synchronized|native|abstract|default)\s+)*` +
			`([A-Za-z0-9_<>\[\].?, ]+?)\s+([A-Za-z0-9_]+)\s*\(`,
	)

	// Constructors: modifiers then a capitalised name directly followed by "(".
	reJavaCtor = regexp.MustCompile(`(?m)^\s*(?:(?:public|protected|private)\s+)+([A-Z][A-Za-z0-9_]*)\s*\(`)
)

// Words that, leading the matched return type, mean the line is a statement
// or a constructor rather than a method declaration.
var javaNotTypes = map[string]struct{}{
	"return": {}, "new": {}, "else": {}, "throw": {}, "case": {}, "yield": {},
	"public": {}, "protected": {}, "private": {},
}

// extractJava collects types, methods and constructors. Members are
// qualified with the closest preceding type.
func extractJava(data []byte) []Symbol {
	li := newLineIndex(data)
	pkg := ""
	if m := reJavaPkg.FindSubmatch(data); m != nil {
		pkg = string(m[1])
	}

	var types []Symbol
	for _, m := range reJavaType.FindAllSubmatchIndex(data, -1) {
		types = append(types, Symbol{
			Name: string(data[m[4]:m[5]]),
			Kind: string(data[m[2]:m[3]]),
			Line: li.lineOf(m[2]),
		})
	}

	out := make([]Symbol, 0, len(types))
	for _, t := range types {
		out = append(out, Symbol{Name: joinSym(pkg, t.Name), Kind: t.Kind, Line: t.Line})
	}
	for _, m := range reJavaMeth.FindAllSubmatchIndex(data, -1) {
		ret := strings.Fields(string(data[m[2]:m[3]]))
		if len(ret) == 0 {
			continue
		}
		if _, skip := javaNotTypes[ret[0]]; skip {
			continue
		}
		line := li.lineOf(m[2])
		out = append(out, Symbol{
			Name: joinSym(pkg, typeAt(types, line), string(data[m[4]:m[5]])),
			Kind: "method",
			Line: line,
		})
	}
	for _, m := range reJavaCtor.FindAllSubmatchIndex(data, -1) {
		line := li.lineOf(m[2])
		typ := typeAt(types, line)
		name := string(data[m[2]:m[3]])
		if name != typ {
			continue
		}
		out = append(out, Symbol{Name: joinSym(pkg, typ, name), Kind: "ctor", Line: line})
	}
	return out
}
