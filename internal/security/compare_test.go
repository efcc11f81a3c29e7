package security

import "testing"

func TestTokenEqual(t *testing.T) {
	if !TokenEqual("abc.def.ghi", "abc.def.ghi") {
		t.Error("equal tokens should compare true")
	}
	if TokenEqual("abc.def.ghi", "abc.def.ghX") {
		t.Error("different tokens should compare false")
	}
	if TokenEqual("abc", "abcd") {
		t.Error("different lengths should compare false")
	}
	if !TokenEqual("", "") {
		t.Error("two empty strings should compare true")
	}
}
