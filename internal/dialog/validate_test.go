package dialog

import "testing"

func TestValidMobile(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"9876543210", true},
		{"6000000000", true},
		{" 7123456789 ", true},
		{"0876543210", false},
		{"98765", false},
		{"98765432100", false},
		{"98765a3210", false},
		{"९८७६५४३२१०", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidMobile(tt.input); got != tt.want {
			t.Errorf("ValidMobile(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseAreaWard(t *testing.T) {
	tests := []struct {
		input    string
		area     string
		ward     string
		accepted bool
	}{
		{"Ring Road, Ward 5", "Ring Road", "Ward 5", true},
		{"Alkapuri,ward 12", "Alkapuri", "Ward 12", true},
		{"  Old City ,  WARD 3 ", "Old City", "Ward 3", true},
		{"Ring Road", "", "", false},
		{"Ring Road, 5", "", "", false},
		{"Ring Road, Ward five", "", "", false},
		{", Ward 5", "", "", false},
		{"A, B, Ward 5", "", "", false},
	}
	for _, tt := range tests {
		area, ward, ok := ParseAreaWard(tt.input)
		if ok != tt.accepted || area != tt.area || ward != tt.ward {
			t.Errorf("ParseAreaWard(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.input, area, ward, ok, tt.area, tt.ward, tt.accepted)
		}
	}
}

func TestParseChoice(t *testing.T) {
	if n, ok := ParseChoice(" 4 ", 4); !ok || n != 4 {
		t.Errorf("expected 4, got %d %v", n, ok)
	}
	for _, input := range []string{"0", "5", "two", "", "1.5"} {
		if _, ok := ParseChoice(input, 4); ok {
			t.Errorf("ParseChoice(%q) should be rejected", input)
		}
	}
}

func TestParseYesNo(t *testing.T) {
	tests := []struct {
		input string
		want  Answer
	}{
		{"yes", AnswerYes},
		{"Yes please", AnswerYes},
		{"Y", AnswerYes},
		{"haan ji", AnswerYes},
		{"हाँ", AnswerYes},
		{"હા", AnswerYes},
		{"no", AnswerNo},
		{"No, not yet", AnswerNo},
		{"nahi", AnswerNo},
		{"नहीं", AnswerNo},
		{"ના", AnswerNo},
		{"yes no", AnswerInvalid},
		{"maybe", AnswerInvalid},
		{"nothing", AnswerInvalid},
		{"yesterday", AnswerInvalid},
		{"", AnswerInvalid},
	}
	for _, tt := range tests {
		if got := ParseYesNo(tt.input); got != tt.want {
			t.Errorf("ParseYesNo(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
