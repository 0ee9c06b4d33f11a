package config

import (
	"os"
	"regexp"
	"testing"
)

func TestREADMEConfigDefaultsStayInSync(t *testing.T) {
	data, err := os.ReadFile("../../README.md")
	if err != nil {
		t.Fatalf("read README: %v", err)
	}
	readme := string(data)

	assertDocDefault(t, readme, "arb.arbitrage_threshold", "0.98")
	assertDocDefault(t, readme, "arb.token_amount_usd", "5")
	assertDocDefault(t, readme, "copy.copy_size", "100")
	assertDocDefault(t, readme, "risk.max_open_orders", "6")
	assertDocDefault(t, readme, "risk.max_position_per_market", "50")
}

func assertDocDefault(t *testing.T, readme, field, want string) {
	t.Helper()
	pattern := "\\| `" + regexp.QuoteMeta(field) + "` \\| [^\\n]*? \\| `([^`]+)` \\|"
	re := regexp.MustCompile(pattern)
	m := re.FindStringSubmatch(readme)
	if len(m) != 2 {
		t.Fatalf("field %q not found in README config table", field)
	}
	if m[1] != want {
		t.Fatalf("README default mismatch for %s: want %s got %s", field, want, m[1])
	}
}
