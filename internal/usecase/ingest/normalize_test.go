package ingest

import (
	"testing"
)

func TestNormalizeTextEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n", "\t \n "} {
		steps := NormalizeText(text)
		if steps == nil {
			t.Fatalf("NormalizeText(%q) = nil, want empty slice", text)
		}
		if len(steps) != 0 {
			t.Fatalf("NormalizeText(%q) len = %d", text, len(steps))
		}
	}
}

func TestNormalizeTextOrderIsContiguous(t *testing.T) {
	steps := NormalizeText("first\n\nsecond\n   \nthird")
	if len(steps) != 3 {
		t.Fatalf("NormalizeText() len = %d", len(steps))
	}
	for i, step := range steps {
		if step.Order != i+1 {
			t.Fatalf("step %d order = %d", i, step.Order)
		}
	}
	if steps[2].Description != "third" {
		t.Fatalf("step 3 description = %q", steps[2].Description)
	}
}

func TestNormalizeTextStripsBulletPrefix(t *testing.T) {
	steps := NormalizeText("3. Click submit\n10.Verify dialog")
	if len(steps) != 2 {
		t.Fatalf("NormalizeText() len = %d", len(steps))
	}
	// The literal bullet number is discarded; order reflects position.
	if steps[0].Order != 1 || steps[0].Description != "Click submit" {
		t.Fatalf("step 1 = %+v", steps[0])
	}
	if steps[1].Order != 2 || steps[1].Description != "Verify dialog" {
		t.Fatalf("step 2 = %+v", steps[1])
	}
}

func TestNormalizeTextCollapsesWhitespace(t *testing.T) {
	steps := NormalizeText("open   the \t settings   page")
	if len(steps) != 1 {
		t.Fatalf("NormalizeText() len = %d", len(steps))
	}
	if steps[0].Description != "open the settings page" {
		t.Fatalf("description = %q", steps[0].Description)
	}
}

func TestNormalizeTextEscapesHTMLOnce(t *testing.T) {
	steps := NormalizeText("expect <b>bold & loud</b>")
	if len(steps) != 1 {
		t.Fatalf("NormalizeText() len = %d", len(steps))
	}
	want := "expect &lt;b&gt;bold &amp; loud&lt;/b&gt;"
	if steps[0].Description != want {
		t.Fatalf("description = %q, want %q", steps[0].Description, want)
	}
}
