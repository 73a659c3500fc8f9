package document

import (
	"regexp"
	"strings"
)

var (
	boldRe = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	codeRe = regexp.MustCompile("`([^`]+)`")
	extRe  = regexp.MustCompile(`\.[A-Za-z0-9]{1,10}$`)
)

// ExtractReferences pulls path-like tokens out of an action's raw text.
// A token qualifies when it is bolded or code-spanned and contains a slash,
// ends in a file extension, or is a code span (shell tokens are usually
// code-spanned without any path shape). Extraction is best-effort and never
// fails.
func ExtractReferences(text string) []PathReference {
	var refs []PathReference

	for _, m := range boldRe.FindAllStringSubmatch(text, -1) {
		token := strings.TrimSpace(m[1])
		if token == "" || !looksPathLike(token) {
			continue
		}
		refs = append(refs, PathReference{Raw: token, Kind: classify(token, false)})
	}

	for _, m := range codeRe.FindAllStringSubmatch(text, -1) {
		token := strings.TrimSpace(m[1])
		if token == "" {
			continue
		}
		refs = append(refs, PathReference{Raw: token, Kind: classify(token, true)})
	}

	return refs
}

func looksPathLike(token string) bool {
	if strings.ContainsAny(token, " \t") && !strings.Contains(token, "/") {
		return false
	}
	return strings.Contains(token, "/") || extRe.MatchString(token)
}

// classify infers the reference kind from trailing slash, extension and
// code-span styling, in that order.
func classify(token string, codeSpan bool) RefKind {
	switch {
	case strings.HasSuffix(token, "/"):
		return RefDirectory
	case extRe.MatchString(token):
		return RefFile
	case codeSpan:
		return RefCommand
	default:
		return RefUnknown
	}
}
