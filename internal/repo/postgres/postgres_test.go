package postgres

import "testing"

func TestDeref(t *testing.T) {
	if deref(nil) {
		t.Fatalf("nil should deref false")
	}
	v := true
	if !deref(&v) {
		t.Fatalf("true pointer should deref true")
	}
	v = false
	if deref(&v) {
		t.Fatalf("false pointer should deref false")
	}
}
