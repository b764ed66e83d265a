package index

import "regexp"

var (
	reKtPkg  = regexp.MustCompile(`(?m)^\s*package\s+([A-Za-z_][\w.]*)`)
	reKtType = regexp.MustCompile(`(?m)^\s*(?:(?:public|internal|private|protected|data|sealed|abstract|open|enum|annotation|inner|value)\s+)*(class|interface|object)\s+([A-Za-z_]\w*)`)
	// fun name( | fun Receiver.name( | fun <T> name(
	reKtFun = regexp.MustCompile(`(?m)^\s*(?:(?:public|internal|private|protected|override|open|suspend|inline|operator|infix|tailrec|abstract)\s+)*fun\s+(?:<[^>]*>\s*)?(?:[A-Za-z_][\w<>?, ]*\.)?([A-Za-z_]\w*)\s*\(`)
)

// extractKotlin collects type and function declarations. Functions are
// qualified with the closest preceding type.
func extractKotlin(data []byte) []Symbol {
	li := newLineIndex(data)
	pkg := ""
	if m := reKtPkg.FindSubmatch(data); m != nil {
		pkg = string(m[1])
	}

	var types []Symbol
	for _, m := range reKtType.FindAllSubmatchIndex(data, -1) {
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
	for _, m := range reKtFun.FindAllSubmatchIndex(data, -1) {
		line := li.lineOf(m[2])
		name := string(data[m[2]:m[3]])
		out = append(out, Symbol{
			Name: joinSym(pkg, typeAt(types, line), name),
			Kind: "method",
			Line: line,
		})
	}
	return out
}
