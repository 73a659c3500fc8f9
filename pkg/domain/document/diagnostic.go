package document

import "fmt"

// Severity grades a diagnostic. Fatal diagnostics block tracker
// construction; warnings never do.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityFatal   Severity = "fatal"
)

// Diagnostic codes. S-codes come from the sectionizer, P-codes from the
// outline parser, V-codes from the schema validator.
const (
	CodeMissingSection   = "S1"
	CodeUnknownSection   = "S2"
	CodeSectionOrder     = "S3"
	CodeNumberingGap     = "P1"
	CodeMalformedHeading = "P2"

	CodeEmptyDocument      = "V1"
	CodeNonContiguousSteps = "V2"
	CodeSubStepMismatch    = "V3"
	CodeDuplicateTitle     = "V4"
	CodeNoTestingPlan      = "V5"
	CodeEmptyAction        = "V6"
)

// Diagnostic reports a structural issue found while sectionizing, parsing
// or validating a document. Diagnostics are returned as data, never thrown.
type Diagnostic struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	NodePath string   `json:"node_path,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	if d.NodePath != "" {
		return fmt.Sprintf("[%s/%s] %s: %s", d.Code, d.Severity, d.NodePath, d.Message)
	}
	return fmt.Sprintf("[%s/%s] %s", d.Code, d.Severity, d.Message)
}

// HasFatal reports whether any diagnostic in the list is fatal.
func HasFatal(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

func warn(code, path, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityWarning, NodePath: path, Message: fmt.Sprintf(format, args...)}
}

func fatal(code, path, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityFatal, NodePath: path, Message: fmt.Sprintf(format, args...)}
}
