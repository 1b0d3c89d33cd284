package token

import "testing"

// Test looking up keyword values succeeds, and unknown identifiers fall
// back to IDENT.
func TestLookup(t *testing.T) {
	for key, val := range keywords {
		if LookupIdentifier(key) != val {
			t.Errorf("lookup of %s failed", key)
		}
	}

	if LookupIdentifier("some_var") != IDENT {
		t.Errorf("expected an unknown identifier to resolve to IDENT")
	}
}

func TestPositionString(t *testing.T) {
	p := Position{File: "main.tack", Line: 3, Column: 7}
	if p.String() != "main.tack:3:7" {
		t.Errorf("unexpected position rendering: %s", p.String())
	}
}
