package semver

import "testing"

func TestNewVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "1.2.3", "1.2.3", false},
		{"v prefix stripped", "v4.25.3", "4.25.3", false},
		{"zeros", "0.0.0", "0.0.0", false},
		{"two components", "1.2", "", true},
		{"four components", "1.2.3.4", "", true},
		{"non numeric major", "x.2.3", "", true},
		{"non numeric patch", "1.2.z", "", true},
		{"negative component", "1.-2.3", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVersion(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewVersion(%q) expected error, got %v", tt.input, v)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewVersion(%q) unexpected error: %v", tt.input, err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("NewVersion(%q).String() = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"25.3.0", true},
		{"v1.62.1", true},
		{"1.62", false},
		{"latest", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValid(tt.input); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
