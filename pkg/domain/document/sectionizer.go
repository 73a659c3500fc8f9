package document

import (
	"bufio"
	"strings"
)

// Sections holds the raw text spans of a document split by section role.
// The sectionizer never fails outright: unknown headings are kept in the
// Unclassified bucket and reported as warnings so evolving templates keep
// parsing.
type Sections struct {
	Title        string
	Tagline      string
	Summary      []string
	Execution    []string
	Testing      []string
	Unclassified []UnknownSection
}

// UnknownSection preserves a section that matched no known role.
type UnknownSection struct {
	Heading string
	Lines   []string
}

type sectionRole int

const (
	roleNone sectionRole = iota
	roleSummary
	roleExecution
	roleTesting
	roleUnknown
)

// normalizeHeading lowercases a heading and strips punctuation so template
// wording variance ("Summary of Changes:", "summary of changes") still
// matches.
func normalizeHeading(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func classifyHeading(text string) sectionRole {
	norm := normalizeHeading(text)
	switch {
	case strings.Contains(norm, "summary"):
		return roleSummary
	case strings.Contains(norm, "execution") && strings.Contains(norm, "step"):
		return roleExecution
	case strings.Contains(norm, "testing") || strings.Contains(norm, "test plan"):
		return roleTesting
	default:
		return roleUnknown
	}
}

// headingLevel returns the markdown heading level of a line, or 0 if the
// line is not a heading.
func headingLevel(line string) int {
	trimmed := strings.TrimLeft(line, " ")
	n := 0
	for n < len(trimmed) && trimmed[n] == '#' {
		n++
	}
	if n == 0 || n >= len(trimmed) || trimmed[n] != ' ' {
		return 0
	}
	return n
}

func headingText(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
}

// Sectionize splits raw document text into labeled spans. Required sections
// that are missing yield S1 warnings; unknown level-2 headings yield S2 and
// land in Unclassified; sections appearing out of the conventional order
// yield S3. None of these abort the split.
func Sectionize(raw string) (*Sections, []Diagnostic) {
	var diags []Diagnostic
	sections := &Sections{}

	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	current := roleNone
	var currentUnknown *UnknownSection
	seenTitle := false
	taglineDone := false
	lastRole := roleNone

	appendLine := func(line string) {
		switch current {
		case roleSummary:
			sections.Summary = append(sections.Summary, line)
		case roleExecution:
			sections.Execution = append(sections.Execution, line)
		case roleTesting:
			sections.Testing = append(sections.Testing, line)
		case roleUnknown:
			if currentUnknown != nil {
				currentUnknown.Lines = append(currentUnknown.Lines, line)
			}
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		level := headingLevel(line)

		if level == 1 && !seenTitle {
			sections.Title = headingText(line)
			seenTitle = true
			continue
		}

		if level == 2 {
			taglineDone = true
			role := classifyHeading(headingText(line))
			if role == roleUnknown {
				diags = append(diags, warn(CodeUnknownSection, "",
					"unrecognized section %q preserved as unclassified", headingText(line)))
				sections.Unclassified = append(sections.Unclassified, UnknownSection{Heading: headingText(line)})
				currentUnknown = &sections.Unclassified[len(sections.Unclassified)-1]
			} else {
				if role < lastRole {
					diags = append(diags, warn(CodeSectionOrder, "",
						"section %q appears out of the conventional order", headingText(line)))
				}
				lastRole = role
				currentUnknown = nil
			}
			current = role
			continue
		}

		// The tagline is the first non-empty line after the title, before
		// any section heading.
		if seenTitle && !taglineDone && current == roleNone {
			if strings.TrimSpace(line) != "" {
				sections.Tagline = strings.TrimSpace(line)
				taglineDone = true
			}
			continue
		}

		appendLine(line)
	}

	if !seenTitle {
		diags = append(diags, warn(CodeMissingSection, "", "no level-1 title heading found"))
	}
	if len(sections.Summary) == 0 {
		diags = append(diags, warn(CodeMissingSection, "", "missing section: summary of changes"))
	}
	if len(sections.Execution) == 0 {
		diags = append(diags, warn(CodeMissingSection, "", "missing section: execution steps"))
	}
	if len(sections.Testing) == 0 {
		diags = append(diags, warn(CodeMissingSection, "", "missing section: manual testing plan"))
	}

	return sections, diags
}

// bulletText returns the content of a bullet line, or "" and false when the
// line is not a bullet.
func bulletText(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		return strings.TrimSpace(trimmed[2:]), true
	}
	return "", false
}

// collectBullets extracts bullet texts from a raw section span.
func collectBullets(lines []string) []string {
	var out []string
	for _, line := range lines {
		if text, ok := bulletText(line); ok && text != "" {
			out = append(out, text)
		}
	}
	return out
}
