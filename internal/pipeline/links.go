package pipeline

import "strings"

// RepoBasePlaceholder is replaced with the target's repository base in
// every source file. Content authors depend on this exact token.
const RepoBasePlaceholder = "{REPO_BASE}"

// RewriteLinks substitutes every RepoBasePlaceholder in text with base.
// The result is not validated as a URL.
func RewriteLinks(text, base string) string {
	return strings.ReplaceAll(text, RepoBasePlaceholder, base)
}
