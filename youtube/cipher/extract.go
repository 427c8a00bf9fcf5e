package cipher

import (
	"regexp"
	"strings"

	"github.com/ytget/ytstream/internal/logger"
)

// Anchors preceding the call sites of the two transform functions inside the
// player script. The script is minified but these idioms have been stable
// across player revisions.
const (
	decipherCallAnchor      = `a.set("alr","yes");c&&(c=`
	decipherCallAnchorRight = `(decodeURIC`
	ncodeCallAnchor         = `c=a.get(b))&&(c=`
	ncodeCallAnchorRight    = `(c)`
	manipulationsAnchor     = `a=a.split("");`

	// Closing idiom of the n-transform function. Its body routinely holds
	// string literals with lone bracket characters that defeat balancing,
	// so slicing falls back to this fixed suffix.
	ncodeClosingIdiom = `+a}return b.join("")}`
)

// ncodeNameFallbackRe finds candidate single-argument function assignments
// when the call-site anchor is missing; the n-transform body is then
// recognized by its characteristic exception tag.
var ncodeNameFallbackRe = regexp.MustCompile(`(?s);\s*([a-zA-Z0-9_$]+)\s*=\s*function\([a-zA-Z0-9_$]+\)\s*\{`)

// Function is one callable transform sliced out of the player script. Body
// is self-contained source: evaluating it defines Name in scope.
type Function struct {
	Name string
	Body string
}

// Functions holds the per-script function pair. Either field is nil when its
// anchor was not found; callers treat nil as "no transform available".
type Functions struct {
	Decipher   *Function
	NTransform *Function
}

// ExtractFunctions locates the decipher and n-transform functions in raw
// player script text. Extraction misses are not errors: the corresponding
// field is simply nil.
func ExtractFunctions(body string) Functions {
	log := logger.WithComponent(logger.ComponentCipher)

	fns := Functions{
		Decipher:   extractDecipher(body),
		NTransform: extractNcode(body),
	}
	log.Debug("extracted player functions", map[string]interface{}{
		"decipher":    fns.Decipher != nil,
		"n_transform": fns.NTransform != nil,
	})
	return fns
}

// extractDecipher slices out the signature decipher function, prepending the
// helper object it manipulates the signature with so the two are executable
// together.
func extractDecipher(body string) *Function {
	name := between(body, decipherCallAnchor, decipherCallAnchorRight)
	if name == "" {
		return nil
	}

	funcStart := name + "=function(a)"
	ndx := strings.Index(body, funcStart)
	if ndx < 0 {
		return nil
	}

	sub := body[ndx+len(funcStart):]
	funcBody, ok := CutAfterJS(sub)
	if !ok {
		return nil
	}

	source := "var " + funcStart + funcBody + ";"
	if helper := extractManipulations(body, source); helper != "" {
		source = helper + ";" + source
	}
	source = strings.ReplaceAll(source, "\n", "")

	return &Function{Name: name, Body: source}
}

// extractManipulations locates the helper object the decipher function calls
// (reverse/splice/swap table) and returns its object-literal source, or ""
// when the decipher body references none.
func extractManipulations(body, caller string) string {
	helperName := between(caller, manipulationsAnchor, ".")
	if helperName == "" {
		return ""
	}

	helperStart := "var " + helperName + "={"
	ndx := strings.Index(body, helperStart)
	if ndx < 0 {
		return ""
	}

	sub := body[ndx+len(helperStart)-1:]
	helperBody, ok := CutAfterJS(sub)
	if !ok {
		return ""
	}

	return "var " + helperName + "=" + helperBody
}

// extractNcode slices out the n-parameter transform function.
func extractNcode(body string) *Function {
	name := between(body, ncodeCallAnchor, ncodeCallAnchorRight)

	// The call site may index into an alias array: X[0](c). Resolve the
	// actual name from the array declaration.
	if strings.Contains(name, "[") {
		alias := strings.SplitN(name, "[", 2)[0]
		name = between(body, "var "+alias+"=[", "]")
	}

	if name == "" {
		name = ncodeNameByExceptionTag(body)
	}
	if name == "" {
		return nil
	}

	funcStart := name + "=function(a)"
	ndx := strings.Index(body, funcStart)
	if ndx < 0 {
		return nil
	}

	sub := body[ndx+len(funcStart):]
	funcBody, ok := CutAfterJS(sub)
	if !ok {
		end := strings.Index(sub, ncodeClosingIdiom)
		if end < 0 {
			return nil
		}
		funcBody = sub[:end+len(ncodeClosingIdiom)]
	}

	source := "var " + funcStart + funcBody + ";"
	source = strings.ReplaceAll(source, "\n", "")

	return &Function{Name: name, Body: source}
}

// ncodeNameByExceptionTag scans function assignments for the body carrying
// the n-transform's distinctive enhanced_except_ marker.
func ncodeNameByExceptionTag(body string) string {
	var name string
	for _, caps := range ncodeNameFallbackRe.FindAllStringSubmatchIndex(body, -1) {
		candidate := body[caps[2]:caps[3]]
		start := caps[1]
		end := strings.Index(body[start:], "};")
		if end < 0 {
			continue
		}
		if strings.Contains(body[start:start+end], "enhanced_except_") {
			name = candidate
		}
	}
	return name
}
