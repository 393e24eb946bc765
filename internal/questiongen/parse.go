package questiongen

import "strings"

const (
	questionLabel = "Question:"
	answerLabel   = "Expected Answer:"
)

// parseLabeled extracts the question and expected answer from a labeled
// reply. With joinTrailing set, every line after the expected answer is
// folded into it.
func parseLabeled(reply string, joinTrailing bool) (question, expected string) {
	lines := strings.Split(strings.TrimSpace(reply), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, questionLabel):
			question = strings.TrimSpace(strings.TrimPrefix(line, questionLabel))
		case strings.HasPrefix(line, answerLabel):
			expected = strings.TrimSpace(strings.TrimPrefix(line, answerLabel))
			if !joinTrailing {
				continue
			}
			for _, rest := range lines[i+1:] {
				if rest = strings.TrimSpace(rest); rest != "" {
					expected += " " + rest
				}
			}
			return strings.TrimSpace(question), strings.TrimSpace(expected)
		}
	}
	return question, expected
}
