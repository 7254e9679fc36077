package auth

import "testing"

func TestGenerateTempPassword_Format(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		pw, err := GenerateTempPassword()
		if err != nil {
			t.Fatalf("GenerateTempPassword failed: %v", err)
		}
		if !IsTempPassword(pw) {
			t.Fatalf("unexpected format: %q", pw)
		}
		if len(pw) != len(TempPasswordPrefix)+TempPasswordSuffixLen {
			t.Fatalf("unexpected length %d for %q", len(pw), pw)
		}
	}
}

func TestGenerateTempPassword_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		pw, err := GenerateTempPassword()
		if err != nil {
			t.Fatalf("GenerateTempPassword failed: %v", err)
		}
		seen[pw] = true
	}

	// 36^6 possibilities; 50 draws colliding more than once is not plausible.
	if len(seen) < 49 {
		t.Errorf("expected mostly unique passwords, got %d distinct of 50", len(seen))
	}
}

func TestIsTempPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"tempabc123", true},
		{"temp000000", true},
		{"tempABC123", false},
		{"temp12345", false},
		{"temp1234567", false},
		{"abcd123456", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsTempPassword(tt.in); got != tt.want {
			t.Errorf("IsTempPassword(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
