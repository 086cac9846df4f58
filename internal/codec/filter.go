package codec

import (
	"regexp"
	"strings"

	"github.com/klauern/snippetsync/internal/scope"
)

// unicodeSpace matches one Unicode whitespace character.
const unicodeSpace = `[\s\x{0b}\p{Z}\x{1c}-\x{1f}\x{85}]`

var (
	// commentLine matches lines VS Code tolerates but strict JSON loaders reject:
	// indentation, a // marker, then whitespace. Whitespace includes the
	// Unicode separators (U+3000 ideographic space and friends), not only ASCII.
	commentLine = regexp.MustCompile(`^` + unicodeSpace + `+//` + unicodeSpace + `+`)

	// scopeDecl matches a single-line "scope": "<value>" declaration.
	scopeDecl = regexp.MustCompile(`"scope":\s*"([^"]+)"`)
)

// IsCommentLine reports whether the line is a whole-line // comment.
func IsCommentLine(line string) bool {
	return commentLine.MatchString(line)
}

// FilterAndRewrite drops comment-only lines and translates every scope
// declaration from VS Code identifiers to Neovim filetypes. Output lines keep
// their input order; nothing is added.
func FilterAndRewrite(lines []string, tr *scope.Translator) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if IsCommentLine(line) {
			continue
		}
		out = append(out, RewriteScope(line, tr))
	}
	return out
}

// RewriteScope translates the tokens of every "scope" declaration in line and
// leaves the rest of the line untouched. Lines without a declaration are
// returned as is.
func RewriteScope(line string, tr *scope.Translator) string {
	if !scopeDecl.MatchString(line) {
		return line
	}
	return scopeDecl.ReplaceAllStringFunc(line, func(decl string) string {
		value := scopeDecl.FindStringSubmatch(decl)[1]
		tokens := strings.Split(value, ",")
		for i, token := range tokens {
			tokens[i] = tr.Translate(strings.TrimSpace(token), scope.VSCodeToNvim)
		}
		return `"scope": "` + strings.Join(tokens, ",") + `"`
	})
}

// SplitLines splits text after each newline so that joining the result
// reproduces the input exactly.
func SplitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
