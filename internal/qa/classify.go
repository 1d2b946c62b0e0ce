// Package qa implements the question-answering cycle: transcribing a
// listener's interruption, deciding whether it is a resume-reading intent or
// a genuine question, calling the QA-LLM port, and synthesizing the answer
// sentence by sentence back to the client.
package qa

import (
	"regexp"
	"strings"
)

// relatednessLine matches the classification tag a QA-LLM answer carries on
// its final non-empty line, tolerant of casing and trailing whitespace.
var relatednessLine = regexp.MustCompile(`(?i)^\s*RELATEDNESS\s*:\s*(RELATED|UNRELATED)\s*$`)

// citationClusterPattern matches inline markdown citation clusters of the
// form "([label](url))" that a QA-LLM answer may embed.
var citationClusterPattern = regexp.MustCompile(`\(\[[^\]]*\]\([^)]*\)\)`)

// Classification is the result of parsing a raw QA-LLM answer.
type Classification struct {
	Text    string
	Related bool
}

// ParseClassification splits the trailing RELATEDNESS tag off a raw answer.
// The tag is only recognized on the final non-empty line; if it is absent,
// the answer is treated as related (fail open, since most answers are).
func ParseClassification(raw string) Classification {
	lines := strings.Split(raw, "\n")

	lastNonEmpty := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			lastNonEmpty = i
			break
		}
	}
	if lastNonEmpty == -1 {
		return Classification{Text: "", Related: true}
	}

	if m := relatednessLine.FindStringSubmatch(lines[lastNonEmpty]); m != nil {
		body := strings.TrimSpace(strings.Join(lines[:lastNonEmpty], "\n"))
		return Classification{Text: body, Related: strings.EqualFold(m[1], "RELATED")}
	}

	return Classification{Text: strings.TrimSpace(raw), Related: true}
}

// StripCitations removes inline markdown citation clusters, drops heading
// and citation-list lines, and rejoins the remaining lines with single
// spaces.
func StripCitations(text string) string {
	stripped := citationClusterPattern.ReplaceAllString(text, "")

	var kept []string
	for _, line := range strings.Split(stripped, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "##") || strings.HasPrefix(trimmed, "- [") {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, " ")
}

// TruncateSentences keeps at most n sentences of text, splitting on '.', '?',
// and '!' the same way the chunker does, and re-joining with a single space.
func TruncateSentences(text string, n int) string {
	var sentences []string
	var cur strings.Builder

	flush := func() {
		s := strings.TrimSpace(cur.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		cur.Reset()
	}

	for _, r := range text {
		cur.WriteRune(r)
		if r == '.' || r == '?' || r == '!' {
			flush()
			if len(sentences) >= n {
				break
			}
		}
	}
	if len(sentences) < n {
		flush()
	}
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	return strings.Join(sentences, " ")
}

// resumeIntents are the phrases that mean "stop asking, keep reading",
// matched case-insensitively against the transcribed question, trimmed and
// stripped of trailing punctuation.
var resumeIntents = []string{
	"continue reading",
	"resume reading",
	"go on",
}

// IsResumeIntent reports whether a transcribed utterance should be treated
// as a request to resume reading rather than a question.
func IsResumeIntent(transcript string) bool {
	normalized := strings.ToLower(strings.TrimSpace(transcript))
	normalized = strings.TrimRight(normalized, ".!? ")
	for _, intent := range resumeIntents {
		if strings.Contains(normalized, intent) {
			return true
		}
	}
	return false
}
