package resolution

import (
	"go/token"
	"strings"
	"unicode"
)

// ExportedName converts a ruleset name to an exported Go identifier:
// "Region" stays "Region", "use_dual_stack" becomes "UseDualStack".
func ExportedName(name string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" {
		return "Param"
	}
	if unicode.IsDigit(rune(out[0])) {
		return "P" + out
	}
	return out
}

// LocalName converts a ruleset name to an unexported Go identifier:
// "UseFIPS" becomes "useFIPS", "URL" becomes "url", "FIPSEnabled"
// becomes "fipsEnabled".
func LocalName(name string) string {
	runes := []rune(ExportedName(name))
	lead := 0
	for lead < len(runes) && unicode.IsUpper(runes[lead]) {
		lead++
	}
	if lead > 1 && lead < len(runes) {
		lead--
	}
	for i := 0; i < lead; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	out := string(runes)
	if token.IsKeyword(out) || predeclared[out] {
		return out + "_"
	}
	return out
}

// predeclared lists identifiers a local must not shadow because generated
// code refers to them.
var predeclared = map[string]bool{
	"true": true, "false": true, "nil": true, "any": true, "bool": true,
	"string": true, "int": true, "len": true, "make": true, "append": true,
	"rulesrt": true, "errors": true, "json": true, "testing": true,
}

// reserved names are generated-code locals parameters and assignments
// may not take.
var reserved = map[string]bool{
	varConfig:  true,
	varAlloc:   true,
	varScratch: true,
	varDidPass: true,
	varUnwind:  true,
	varErr:     true,
}

// intermediatePrefix starts every endpoint construction local.
const intermediatePrefix = "ep"

// isIntermediate reports whether name could collide with an endpoint
// construction local such as epURL or epHeader0.
func isIntermediate(name string) bool {
	rest, ok := strings.CutPrefix(name, intermediatePrefix)
	return ok && rest != "" && unicode.IsUpper([]rune(rest)[0])
}
