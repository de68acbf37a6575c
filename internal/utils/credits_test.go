package utils

import "testing"

func TestParseCreditsAcceptsTwoDecimalPlaces(t *testing.T) {
	d, err := ParseCredits(" 10.50 ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if FormatCredits(d) != "10.50" {
		t.Fatalf("unexpected format: %s", FormatCredits(d))
	}
}

func TestParseCreditsRejectsSubCentPrecision(t *testing.T) {
	if _, err := ParseCredits("10.505"); err == nil {
		t.Fatalf("expected precision rejection")
	}
}

func TestParseCreditsRejectsGarbage(t *testing.T) {
	if _, err := ParseCredits("ten"); err == nil {
		t.Fatalf("expected parse error")
	}
}
