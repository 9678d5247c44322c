package fuzzy

import "testing"

func TestMatch(t *testing.T) {
	cases := []struct {
		query, candidate string
		want             bool
	}{
		{"paracetamol", "Paracetamol", true},
		{"para", "Paracetamol 500mg", true},
		{"paracetamle", "Paracetamol", true},
		{"PANADOL", "panadol extra", true},
		{"aspirin", "Paracetamol", false},
		{"", "Paracetamol", false},
		{"paracetamol", "", false},
	}
	for _, c := range cases {
		if got := Match(c.query, c.candidate); got != c.want {
			t.Fatalf("Match(%q, %q) = %v, want %v", c.query, c.candidate, got, c.want)
		}
	}
}

func TestScore_SubstringBeatsTypo(t *testing.T) {
	sub := Score("amox", "Amoxicillin 250mg capsules")
	typo := Score("amoxicilin", "Amoxicillin")
	if sub != 0 {
		t.Fatalf("substring score = %v, want 0", sub)
	}
	if typo <= 0 || typo > threshold {
		t.Fatalf("typo score = %v, want within (0, %v]", typo, threshold)
	}
}
