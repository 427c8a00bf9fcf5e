package cipher

import (
	"testing"
)

func TestCutAfterJS_Object(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain object", `{"a": 1, "b": 1}`, `{"a": 1, "b": 1}`, true},
		{"trailing junk", `{"a": 1, "b": 1}abcd`, `{"a": 1, "b": 1}`, true},
		{"bracket inside string", `{"a": "}1", "b": 1}abcd`, `{"a": "}1", "b": 1}`, true},
		{"escaped quote inside string", `{"a": "\"}1", "b": 1}abcd`, `{"a": "\"}1", "b": 1}`, true},
		{"single quoted", `{"a": '}1', "b": 1}abcd`, `{"a": '}1', "b": 1}`, true},
		{"template literal", "{\"a\": `}1`, \"b\": 1}abcd", "{\"a\": `}1`, \"b\": 1}", true},
		{"array", `[1, 2, 3]tail`, `[1, 2, 3]`, true},
		{"nested", `{"a": {"b": [1, {"c": 2}]}}x`, `{"a": {"b": [1, {"c": 2}]}}`, true},
		{"bracket inside block comment", `{"a": /* } */ 1}tail`, `{"a": /* } */ 1}`, true},
		{"unterminated block comment", `{"a": /* } 1}`, ``, false},
		{"never balances", `{"a": 1`, ``, false},
		{"no opening bracket", `abc`, ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CutAfterJS(tt.input)
			if ok != tt.ok {
				t.Fatalf("CutAfterJS(%q) ok=%v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("CutAfterJS(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCutAfterJS_RegexLiteral(t *testing.T) {
	input := `{"a": /\}\{/, "b": 1}tail`
	want := `{"a": /\}\{/, "b": 1}`

	got, ok := CutAfterJS(input)
	if !ok {
		t.Fatalf("CutAfterJS(%q) failed", input)
	}
	if got != want {
		t.Errorf("CutAfterJS(%q) = %q, want %q", input, got, want)
	}
}

func TestCutAfterJS_DivisionIsNotRegex(t *testing.T) {
	// The slash after an identifier is division; treating it as a regex
	// start would swallow the closing brace.
	input := `{a:function(b){return b/2}}tail`
	want := `{a:function(b){return b/2}}`

	got, ok := CutAfterJS(input)
	if !ok {
		t.Fatalf("CutAfterJS(%q) failed", input)
	}
	if got != want {
		t.Errorf("CutAfterJS(%q) = %q, want %q", input, got, want)
	}
}

func TestCutAfterJS_FunctionBody(t *testing.T) {
	input := `{a=a.split("");Zq.rv(a,2);return a.join("")};var next=1`
	want := `{a=a.split("");Zq.rv(a,2);return a.join("")}`

	got, ok := CutAfterJS(input)
	if !ok {
		t.Fatalf("CutAfterJS failed")
	}
	if got != want {
		t.Errorf("CutAfterJS = %q, want %q", got, want)
	}
}

func TestBetween(t *testing.T) {
	tests := []struct {
		haystack, left, right, want string
	}{
		{"var x=fn(decodeURIC", "var x=", "(decodeURIC", "fn"},
		{"no anchors here", "missing", ")", ""},
		{"left only)", "left", "missing", ""},
		{"a[b[c]d", "a[", "]", "b[c"},
	}

	for _, tt := range tests {
		if got := between(tt.haystack, tt.left, tt.right); got != tt.want {
			t.Errorf("between(%q, %q, %q) = %q, want %q", tt.haystack, tt.left, tt.right, got, tt.want)
		}
	}
}
