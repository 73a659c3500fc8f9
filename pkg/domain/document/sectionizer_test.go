package document

import (
	"strings"
	"testing"
)

func TestSectionize_FullDocument(t *testing.T) {
	raw := `# Title Here

A one line pitch.

## Summary of Changes

- bullet one

## Execution Steps

### Step 1: Do it

- action

## Manual Testing Plan

- check it
`
	sections, diags := Sectionize(raw)

	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if sections.Title != "Title Here" {
		t.Errorf("Title = %q", sections.Title)
	}
	if sections.Tagline != "A one line pitch." {
		t.Errorf("Tagline = %q", sections.Tagline)
	}
	if len(collectBullets(sections.Summary)) != 1 {
		t.Errorf("summary bullets = %v", sections.Summary)
	}
	if len(sections.Execution) == 0 {
		t.Error("execution span is empty")
	}
	if len(collectBullets(sections.Testing)) != 1 {
		t.Errorf("testing bullets = %v", sections.Testing)
	}
}

func TestSectionize_MissingSections(t *testing.T) {
	sections, diags := Sectionize("# Only a Title\n")

	if sections.Title != "Only a Title" {
		t.Errorf("Title = %q", sections.Title)
	}

	count := 0
	for _, d := range diags {
		if d.Code == CodeMissingSection {
			count++
			if d.Severity != SeverityWarning {
				t.Errorf("S1 severity = %s, want warning", d.Severity)
			}
		}
	}
	// summary, execution, testing
	if count != 3 {
		t.Errorf("S1 diagnostics = %d, want 3", count)
	}
}

func TestSectionize_UnknownSectionPreserved(t *testing.T) {
	raw := `# Plan

## Summary of changes

- stuff

## Rollback Strategy

- revert the commit

## Execution Steps

### Step 1: Go

- do

## Manual testing plan

- verify
`
	sections, diags := Sectionize(raw)

	if len(sections.Unclassified) != 1 {
		t.Fatalf("unclassified = %d, want 1", len(sections.Unclassified))
	}
	if sections.Unclassified[0].Heading != "Rollback Strategy" {
		t.Errorf("heading = %q", sections.Unclassified[0].Heading)
	}
	if len(collectBullets(sections.Unclassified[0].Lines)) != 1 {
		t.Errorf("unclassified lines = %v", sections.Unclassified[0].Lines)
	}

	found := false
	for _, d := range diags {
		if d.Code == CodeUnknownSection {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an %s diagnostic, got %v", CodeUnknownSection, diags)
	}
}

func TestSectionize_OutOfOrderSections(t *testing.T) {
	raw := `# Plan

## Manual testing plan

- verify

## Execution Steps

### Step 1: Go

- do

## Summary of changes

- stuff
`
	_, diags := Sectionize(raw)

	count := 0
	for _, d := range diags {
		if d.Code == CodeSectionOrder {
			count++
		}
	}
	if count != 2 {
		t.Errorf("S3 diagnostics = %d, want 2: %v", count, diags)
	}
}

func TestNormalizeHeading(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Summary of Changes:", "summary of changes"},
		{"  EXECUTION  STEPS ", "execution steps"},
		{"Manual testing plan!", "manual testing plan"},
	}

	for _, tt := range tests {
		if got := normalizeHeading(tt.in); got != tt.want {
			t.Errorf("normalizeHeading(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassifyHeading(t *testing.T) {
	tests := []struct {
		in   string
		want sectionRole
	}{
		{"Summary of changes", roleSummary},
		{"Execution Steps", roleExecution},
		{"Manual testing plan", roleTesting},
		{"Test Plan", roleTesting},
		{"Rollback Strategy", roleUnknown},
	}

	for _, tt := range tests {
		if got := classifyHeading(tt.in); got != tt.want {
			t.Errorf("classifyHeading(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBulletText(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"- a thing", "a thing", true},
		{"* starred", "starred", true},
		{"  - indented", "indented", true},
		{"not a bullet", "", false},
		{"-no space", "", false},
	}

	for _, tt := range tests {
		got, ok := bulletText(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("bulletText(%q) = %q, %v", tt.in, got, ok)
		}
	}
}

func TestSectionize_LongLines(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	raw := "# Plan\n\n## Summary of changes\n\n- " + long + "\n"

	sections, _ := Sectionize(raw)
	bullets := collectBullets(sections.Summary)
	if len(bullets) != 1 || len(bullets[0]) != len(long) {
		t.Fatalf("long bullet not preserved, got %d bullets", len(bullets))
	}
}
