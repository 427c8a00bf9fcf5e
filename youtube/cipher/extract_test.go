package cipher

import (
	"strings"
	"testing"
)

// testPlayerScript is a minified-player-shaped fixture: a helper object, a
// decipher function using it, an n-transform function, and the two call
// sites the anchors key on.
const testPlayerScript = `var _yt_player={};(function(g){
var Zq={rv:function(a){a.reverse()},sp:function(a,b){a.splice(0,b)},sw:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c}};
var DC=function(a){a=a.split("");Zq.rv(a,2);Zq.sp(a,1);Zq.sw(a,3);return a.join("")};
var NT=function(a){var b=a.split("");b.reverse();return b.join("")};
g.load=function(a,c){a.set("alr","yes");c&&(c=DC(decodeURIComponent(c)),a.set("sig",c))};
g.fetch=function(a,b){var c;(c=a.get(b))&&(c=NT(c),a.set(b,c))};
})(_yt_player);`

func TestExtractFunctions(t *testing.T) {
	fns := ExtractFunctions(testPlayerScript)

	if fns.Decipher == nil {
		t.Fatal("decipher function not extracted")
	}
	if fns.Decipher.Name != "DC" {
		t.Errorf("decipher name = %q, want DC", fns.Decipher.Name)
	}
	if !strings.Contains(fns.Decipher.Body, "var Zq=") {
		t.Error("decipher body should prepend the helper object")
	}
	if !strings.Contains(fns.Decipher.Body, "var DC=function(a)") {
		t.Error("decipher body should define the function")
	}

	if fns.NTransform == nil {
		t.Fatal("n-transform function not extracted")
	}
	if fns.NTransform.Name != "NT" {
		t.Errorf("n-transform name = %q, want NT", fns.NTransform.Name)
	}
	if !strings.Contains(fns.NTransform.Body, "var NT=function(a)") {
		t.Error("n-transform body should define the function")
	}
}

func TestExtractFunctions_AnchorsMissing(t *testing.T) {
	fns := ExtractFunctions("var unrelated=function(a){return a};")

	if fns.Decipher != nil {
		t.Error("decipher should be nil when anchor is absent")
	}
	if fns.NTransform != nil {
		t.Error("n-transform should be nil when anchor is absent")
	}
}

func TestExtractNcode_AliasArray(t *testing.T) {
	script := `var Xk=[NT];var NT=function(a){var b=a.split("");b.reverse();return b.join("")};
g.fetch=function(a,b){var c;(c=a.get(b))&&(c=Xk[0](c),a.set(b,c))};`

	fns := ExtractFunctions(script)
	if fns.NTransform == nil {
		t.Fatal("n-transform not extracted through alias array")
	}
	if fns.NTransform.Name != "NT" {
		t.Errorf("n-transform name = %q, want NT", fns.NTransform.Name)
	}
}

func TestExtractNcode_ClosingIdiomFallback(t *testing.T) {
	// The function never balances before end of input; the slice must
	// fall back to the fixed closing idiom.
	script := `g.fetch=function(a,b){var c;(c=a.get(b))&&(c=NT(c),a.set(b,c))};
NT=function(a){var b=a.split("");switch(b.length){case 2:{b.reverse();b[0]+=""+a}return b.join("")}`

	fns := ExtractFunctions(script)
	if fns.NTransform == nil {
		t.Fatal("n-transform not extracted")
	}
	if !strings.HasSuffix(strings.TrimSuffix(fns.NTransform.Body, ";"), `+a}return b.join("")}`) {
		t.Errorf("fallback slice should end at the closing idiom, got %q", fns.NTransform.Body)
	}
}

func TestExtractNcode_ExceptionTagFallback(t *testing.T) {
	script := `;NT=function(a){try{return a.split("").reverse().join("")}catch(d){return"enhanced_except_abc-"+a}};`

	fns := ExtractFunctions(script)
	if fns.NTransform == nil {
		t.Fatal("n-transform not extracted via exception tag")
	}
	if fns.NTransform.Name != "NT" {
		t.Errorf("n-transform name = %q, want NT", fns.NTransform.Name)
	}
}

func TestExtractFunctionsCached_SameScriptSharesPair(t *testing.T) {
	first := ExtractFunctionsCached(testPlayerScript)
	second := ExtractFunctionsCached(testPlayerScript)

	if first.Decipher == nil || second.Decipher == nil {
		t.Fatal("decipher not extracted")
	}
	if first.Decipher.Body != second.Decipher.Body {
		t.Error("cached extraction should return the same function pair")
	}
}
