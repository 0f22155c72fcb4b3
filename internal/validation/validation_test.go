package validation

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	if err := ValidateUsername("platinum_admin"); err != nil {
		t.Fatalf("valid username rejected: %v", err)
	}
	for _, bad := range []string{"ab", "this-username-is-way-too-long-really", "has space", "has<script>"} {
		if err := ValidateUsername(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestValidateSessionToken(t *testing.T) {
	valid := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	if err := ValidateSessionToken(valid); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	for _, bad := range []string{"", "short", valid[:63] + "G"} {
		if err := ValidateSessionToken(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestValidateExternalID(t *testing.T) {
	if err := ValidateExternalID("202406123456"); err != nil {
		t.Fatalf("valid id rejected: %v", err)
	}
	for _, bad := range []string{"", "has/slash", "has space"} {
		if err := ValidateExternalID(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestValidateRegistration(t *testing.T) {
	if err := ValidateRegistration(""); err != nil {
		t.Fatal("empty registration must be allowed")
	}
	if err := ValidateRegistration("LP22 ABC"); err != nil {
		t.Fatalf("valid plate rejected: %v", err)
	}
	for _, bad := range []string{"lp22 abc", "WAY TOO LONG PLATE", "AB12-CDE"} {
		if err := ValidateRegistration(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	got, err := SanitizeText("  Great   <script>  service  ", 100)
	if err != nil {
		t.Fatalf("sanitize failed: %v", err)
	}
	if strings.ContainsAny(got, "<>\"'&") {
		t.Fatalf("markup characters survived: %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Fatalf("whitespace not collapsed: %q", got)
	}

	if _, err := SanitizeText("<>", 100); err == nil {
		t.Fatal("expected empty-after-strip text to be rejected")
	}
}
