package directory

import "testing"

func testDirectory(t *testing.T) *Directory {
	t.Helper()
	d, err := New(
		map[string]string{
			"consultant": "+15550100",
			"hr":         "+15550101",
			"it":         "+15550102",
		},
		map[string]string{
			"sales":    "consultant",
			"strategy": "consultant",
		},
		"consultant",
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return d
}

func TestResolve_AliasesShareDestination(t *testing.T) {
	d := testDirectory(t)
	want := d.Resolve("consultant")
	for _, kw := range []string{"sales", "strategy", "Consultant", "SALES"} {
		if got := d.Resolve(kw); got != want {
			t.Fatalf("Resolve(%q) = %q, want %q", kw, got, want)
		}
	}
}

func TestResolve_UnknownFallsBackToDefault(t *testing.T) {
	d := testDirectory(t)
	for _, kw := range []string{"", "  ", "unknown-word", "finance"} {
		if got := d.Resolve(kw); got != "+15550100" {
			t.Fatalf("Resolve(%q) = %q, want default", kw, got)
		}
	}
}

func TestResolve_CaseInsensitive(t *testing.T) {
	d := testDirectory(t)
	if got := d.Resolve("  HR "); got != "+15550101" {
		t.Fatalf("Resolve(HR) = %q", got)
	}
}

func TestCanonical(t *testing.T) {
	d := testDirectory(t)
	if got := d.Canonical("Sales"); got != "sales" {
		t.Fatalf("Canonical(Sales) = %q", got)
	}
	if got := d.Canonical("nope"); got != "consultant" {
		t.Fatalf("Canonical(nope) = %q", got)
	}
}

func TestNew_RejectsBadInput(t *testing.T) {
	if _, err := New(nil, nil, "consultant"); err == nil {
		t.Fatalf("expected error for empty departments")
	}
	if _, err := New(map[string]string{"hr": "+1"}, map[string]string{"sales": "consultant"}, "hr"); err == nil {
		t.Fatalf("expected error for dangling alias")
	}
	if _, err := New(map[string]string{"hr": "+1"}, nil, "consultant"); err == nil {
		t.Fatalf("expected error for unknown default")
	}
}
