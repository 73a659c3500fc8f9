package document

import "testing"

func validDoc() *Document {
	return &Document{
		Title:   "Valid Plan",
		Tagline: "Does things",
		Steps: []Step{
			{
				Index: 1, Declared: 1, Title: "First",
				SubSteps: []SubStep{
					{Label: "1.1", Ordinal: 1, Title: "Part one", Actions: []Action{{Text: "do a"}}},
				},
			},
			{
				Index: 2, Declared: 2, Title: "Second",
				Actions: []Action{{Text: "do b"}},
			},
		},
		TestingItems: []TestingItem{{Text: "verify it"}},
	}
}

func hasCode(diags []Diagnostic, code string) *Diagnostic {
	for i, d := range diags {
		if d.Code == code {
			return &diags[i]
		}
	}
	return nil
}

func TestValidate_ValidDocument(t *testing.T) {
	res := Validate(validDoc(), Strict)
	if !res.Valid {
		t.Fatalf("expected valid, got %v", res.Diagnostics)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %v", res.Diagnostics)
	}
}

func TestValidate_EmptyDocumentIsFatal(t *testing.T) {
	res := Validate(&Document{}, Strict)
	if res.Valid {
		t.Fatal("expected invalid")
	}

	count := 0
	for _, d := range res.Diagnostics {
		if d.Code == CodeEmptyDocument {
			count++
			if d.Severity != SeverityFatal {
				t.Errorf("V1 severity = %s, want fatal", d.Severity)
			}
		}
	}
	// no title and no steps
	if count != 2 {
		t.Errorf("V1 diagnostics = %d, want 2", count)
	}
}

func TestValidate_NonContiguousSteps(t *testing.T) {
	doc := validDoc()
	doc.Steps[1].Declared = 3

	strict := Validate(doc, Strict)
	if strict.Valid {
		t.Fatal("strict mode should reject non-contiguous declared numbering")
	}
	d := hasCode(strict.Diagnostics, CodeNonContiguousSteps)
	if d == nil || d.Severity != SeverityFatal {
		t.Fatalf("strict V2 = %+v", d)
	}

	lenient := Validate(doc, Lenient)
	if !lenient.Valid {
		t.Fatal("lenient mode should downgrade V2 to a warning")
	}
	d = hasCode(lenient.Diagnostics, CodeNonContiguousSteps)
	if d == nil || d.Severity != SeverityWarning {
		t.Fatalf("lenient V2 = %+v", d)
	}
}

func TestValidate_SubStepMismatchAlwaysFatal(t *testing.T) {
	doc := validDoc()
	doc.Steps[0].SubSteps[0].Label = "3.1"

	for _, mode := range []ValidationMode{Strict, Lenient} {
		res := Validate(doc, mode)
		if res.Valid {
			t.Errorf("mode %v: expected invalid", mode)
		}
		d := hasCode(res.Diagnostics, CodeSubStepMismatch)
		if d == nil || d.Severity != SeverityFatal {
			t.Errorf("mode %v: V3 = %+v", mode, d)
		}
	}
}

func TestValidate_DuplicateTitlesWarn(t *testing.T) {
	doc := validDoc()
	doc.Steps[1].Title = "First"

	res := Validate(doc, Strict)
	if !res.Valid {
		t.Fatalf("duplicates should not invalidate: %v", res.Diagnostics)
	}
	d := hasCode(res.Diagnostics, CodeDuplicateTitle)
	if d == nil || d.Severity != SeverityWarning {
		t.Fatalf("V4 = %+v", d)
	}
}

func TestValidate_MissingTestingPlanWarns(t *testing.T) {
	doc := validDoc()
	doc.TestingItems = nil

	res := Validate(doc, Strict)
	if !res.Valid {
		t.Fatalf("missing testing plan should not invalidate: %v", res.Diagnostics)
	}
	if hasCode(res.Diagnostics, CodeNoTestingPlan) == nil {
		t.Errorf("expected a %s diagnostic, got %v", CodeNoTestingPlan, res.Diagnostics)
	}
}

func TestValidate_EmptyActionWarns(t *testing.T) {
	doc := validDoc()
	doc.Steps[1].Actions = append(doc.Steps[1].Actions, Action{Text: "   "})

	res := Validate(doc, Strict)
	if !res.Valid {
		t.Fatalf("empty action should not invalidate: %v", res.Diagnostics)
	}
	d := hasCode(res.Diagnostics, CodeEmptyAction)
	if d == nil {
		t.Fatal("expected a V6 diagnostic")
	}
	if d.NodePath != "2.0.2" {
		t.Errorf("V6 node path = %q, want 2.0.2", d.NodePath)
	}
}
