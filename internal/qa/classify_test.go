package qa

import "testing"

func TestParseClassificationRelated(t *testing.T) {
	c := ParseClassification("The answer is 42.\nRELATEDNESS: RELATED")
	if !c.Related {
		t.Error("expected Related=true")
	}
	if c.Text != "The answer is 42." {
		t.Errorf("Text = %q", c.Text)
	}
}

func TestParseClassificationUnrelatedCaseInsensitive(t *testing.T) {
	c := ParseClassification("Off topic.\nrelatedness:   unrelated  ")
	if c.Related {
		t.Error("expected Related=false")
	}
}

func TestParseClassificationMissingTagFailsOpen(t *testing.T) {
	c := ParseClassification("Just an answer with no tag.")
	if !c.Related {
		t.Error("missing tag should fail open to Related=true")
	}
	if c.Text != "Just an answer with no tag." {
		t.Errorf("Text = %q", c.Text)
	}
}

func TestParseClassificationTrailingBlankLines(t *testing.T) {
	c := ParseClassification("An answer.\nRELATEDNESS: RELATED\n\n\n")
	if !c.Related {
		t.Error("expected Related=true")
	}
}

func TestStripCitations(t *testing.T) {
	got := StripCitations("The sky is blue ([source](https://example.com/1)) today.")
	want := "The sky is blue  today."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStripCitationsDropsHeadingsAndCitationLines(t *testing.T) {
	got := StripCitations("The answer.\n## Sources\n- [1] example.com\n\nMore text.")
	want := "The answer. More text."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTruncateSentences(t *testing.T) {
	got := TruncateSentences("First one. Second one. Third one.", 2)
	want := "First one. Second one."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTruncateSentencesFewerThanLimit(t *testing.T) {
	got := TruncateSentences("Only one.", 2)
	want := "Only one."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIsResumeIntent(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"continue reading", true},
		{"Continue Reading.", true},
		{"  go on!  ", true},
		{"please continue reading", true},
		{"resume reading please", true},
		{"what is this about", false},
	}
	for _, tt := range tests {
		if got := IsResumeIntent(tt.in); got != tt.want {
			t.Errorf("IsResumeIntent(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
