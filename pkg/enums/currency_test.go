package enums

import "testing"

func TestParseCurrency(t *testing.T) {
	for _, in := range []string{"cad", "CAD", " Cad "} {
		got, err := ParseCurrency(in)
		if err != nil || got != CurrencyCAD {
			t.Fatalf("ParseCurrency(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseCurrency("usd"); err == nil {
		t.Fatal("expected usd to be rejected")
	}
}
