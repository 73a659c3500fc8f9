package document

import "testing"

func TestJSONExportSatisfiesSchema(t *testing.T) {
	doc, diags := Parse(samplePlan)
	if HasFatal(diags) {
		t.Fatalf("sample plan parse failed: %v", diags)
	}

	data, err := MarshalJSONExport(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	violations, err := CheckJSONExport(data)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("export violates schema: %v", violations)
	}
}

func TestCheckJSONExport_RejectsBadShape(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing steps", `{"title": "x"}`},
		{"empty title", `{"title": "", "steps": [{"index": 1, "title": "a"}]}`},
		{"zero index", `{"title": "x", "steps": [{"index": 0, "title": "a"}]}`},
		{"bad ref kind", `{"title": "x", "steps": [{"index": 1, "title": "a",
			"actions": [{"text": "t", "references": [{"raw": "r", "kind": "nope"}]}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations, err := CheckJSONExport([]byte(tt.data))
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if len(violations) == 0 {
				t.Error("expected schema violations")
			}
		})
	}
}
