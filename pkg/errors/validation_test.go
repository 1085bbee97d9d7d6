package errors

import "testing"

func TestValidateGroupName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"weight class", "125", false},
		{"named group", "heavyweight-2026", false},
		{"with spaces", "D1 141", false},
		{"empty", "", true},
		{"traversal", "../etc", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"control", "a\tb", true},
		{"null byte", "a\x00b", true},
		{"too long", string(make([]byte, 300)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGroupName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateGroupName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidGroup) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidGroup)
			}
		})
	}
}

func TestValidateCompetitorID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"w-1001", false},
		{"John Smith (PSU)", false},
		{"", true},
		{" padded", true},
		{"trailing ", true},
		{"bell\a", true},
	}
	for _, tt := range tests {
		err := ValidateCompetitorID(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCompetitorID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
