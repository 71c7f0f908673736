package persona

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Redaction is a span the censor removed, and what it put in its place
type Redaction struct {
	Removed     string
	Replacement string
}

// Redactions diffs raw against cleaned text at word granularity and
// reports removed spans. Pure insertions are not redactions.
func Redactions(raw, cleaned string) []Redaction {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToRunes(splitWords(raw), splitWords(cleaned))
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(a, b, false), lines)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var out []Redaction
	for i := 0; i < len(diffs); i++ {
		if diffs[i].Type != diffmatchpatch.DiffDelete {
			continue
		}
		r := Redaction{Removed: joinWords(diffs[i].Text)}
		if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
			r.Replacement = joinWords(diffs[i+1].Text)
			i++
		}
		if r.Removed != "" {
			out = append(out, r)
		}
	}
	return out
}

// splitWords puts one word per line so the line diff works on words
func splitWords(s string) string {
	return strings.Join(strings.Fields(s), "\n") + "\n"
}

func joinWords(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
