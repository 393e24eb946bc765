package tutor

import "strings"

// hedgePhrases mark a student reply as non-committal.
var hedgePhrases = []string{"not sure", "don't know", "idk", "no idea"}

// questionPhrases mark a student message as a question to the tutor.
var questionPhrases = []string{"what is", "how do", "why does", "can you explain", "what does"}

// reasoningWords suggest the student is explaining rather than reciting.
var reasoningWords = []string{"because", "since", "therefore", "complexity", "time", "space"}

const (
	transitionMinTurns       = 4
	transitionWindow         = 4
	transitionMinSubstantive = 2
)

// IsStudentQuestion reports whether a student message is a question for
// the tutor rather than an answer.
func IsStudentQuestion(text string) bool {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "?") {
		return true
	}
	lower := strings.ToLower(text)
	for _, p := range questionPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// isSubstantive reports whether a reply has more than three words and no
// hedge phrase.
func isSubstantive(reply string) bool {
	if len(strings.Fields(reply)) <= 3 {
		return false
	}
	lower := strings.ToLower(reply)
	for _, p := range hedgePhrases {
		if strings.Contains(lower, p) {
			return false
		}
	}
	return true
}

// shouldTransition decides whether the tutor should move to a new aspect
// of the concept. It needs at least two full exchanges and two substantive
// student replies among the last four turns.
func shouldTransition(t Transcript) bool {
	if len(t) < transitionMinTurns {
		return false
	}
	n := 0
	for _, turn := range t.Tail(transitionWindow) {
		if turn.Role == RoleStudent && isSubstantive(turn.Content) {
			n++
		}
	}
	return n >= transitionMinSubstantive
}

// isImproving compares the latest reply with the student's first answer.
// Two of three signals are required: a reply at least 20% longer, a
// reasoning word, or more sentences.
func isImproving(t Transcript, latest string) bool {
	if len(t) < 3 {
		return false
	}
	first := t.FirstStudentTurn()

	signals := 0
	if float64(len(latest)) > float64(len(first))*1.2 {
		signals++
	}
	lower := strings.ToLower(latest)
	for _, w := range reasoningWords {
		if strings.Contains(lower, w) {
			signals++
			break
		}
	}
	if strings.Count(latest, ".") > strings.Count(first, ".") {
		signals++
	}
	return signals >= 2
}
