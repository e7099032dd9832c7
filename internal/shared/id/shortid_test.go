package id

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		got, err := Generate(DefaultLength)
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if len(got) != DefaultLength {
			t.Fatalf("expected length %d, got %d", DefaultLength, len(got))
		}
		for _, r := range got {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("unexpected character %q in ID %s", r, got)
			}
		}
		if seen[got] {
			t.Fatalf("duplicate ID generated: %s", got)
		}
		seen[got] = true
	}
}

func TestGenerateZeroLengthUsesDefault(t *testing.T) {
	got, err := Generate(0)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(got) != DefaultLength {
		t.Fatalf("expected default length %d, got %d", DefaultLength, len(got))
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	got, err := GenerateWithPrefix(PrefixProduct, 8)
	if err != nil {
		t.Fatalf("GenerateWithPrefix returned error: %v", err)
	}
	if !strings.HasPrefix(got, "prod_") {
		t.Fatalf("expected prod_ prefix, got %s", got)
	}
	if len(got) != len("prod_")+8 {
		t.Fatalf("unexpected length for %s", got)
	}
}

func TestParsePrefixedID(t *testing.T) {
	tests := []struct {
		input      string
		wantPrefix string
		wantShort  string
		wantErr    bool
	}{
		{"prod_xK9mP2vL3nQ", "prod", "xK9mP2vL3nQ", false},
		{"acct_abc123", "acct", "abc123", false},
		{"ent_a_b", "ent", "a_b", false},
		{"noprefix", "", "", true},
		{"_novalue", "", "", true},
		{"trailing_", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		prefix, short, err := ParsePrefixedID(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePrefixedID(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePrefixedID(%q): unexpected error %v", tt.input, err)
			continue
		}
		if prefix != tt.wantPrefix || short != tt.wantShort {
			t.Errorf("ParsePrefixedID(%q) = (%q, %q), want (%q, %q)", tt.input, prefix, short, tt.wantPrefix, tt.wantShort)
		}
	}
}

func TestValidatePrefix(t *testing.T) {
	if err := ValidatePrefix("prod_abc", PrefixProduct); err != nil {
		t.Errorf("expected valid prefix, got %v", err)
	}
	if err := ValidatePrefix("acct_abc", PrefixProduct); err == nil {
		t.Error("expected prefix mismatch error")
	}
	if err := ValidatePrefix("garbage", PrefixProduct); err == nil {
		t.Error("expected parse error")
	}
}

func FuzzParsePrefixedID(f *testing.F) {
	seeds := []string{
		"prod_xK9mP2vL3nQ",
		"acct_abc123",
		"ent_grant",
		"noprefix",
		"_",
		"",
		"a_b_c",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		prefix, short, err := ParsePrefixedID(input)
		if err != nil {
			return
		}
		if prefix == "" || short == "" {
			t.Fatalf("accepted input %q with empty component", input)
		}
		if prefix+"_"+short != input {
			t.Fatalf("round trip mismatch for %q: got %q + %q", input, prefix, short)
		}
	})
}
