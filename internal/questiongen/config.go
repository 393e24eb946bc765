package questiongen

// Style selects the prompt and reply format.
type Style string

const (
	// StyleLabeled asks for a "Question:" / "Expected Answer:" reply.
	StyleLabeled Style = "labeled"

	// StylePlain asks for the bare question text. Used by the class-scoped
	// flow, which grades with a scored rubric instead of an expected answer.
	StylePlain Style = "plain"
)

// Config controls the behavior of the Generator.
type Config struct {
	Style Style

	// ConceptMaxTokens is the token budget for concept-level questions.
	ConceptMaxTokens int

	// SectionMaxTokens is the token budget for section-level questions.
	SectionMaxTokens int

	// PlainMaxTokens is the token budget for StylePlain questions.
	PlainMaxTokens int

	// PlainTemperature is only sent with StylePlain prompts.
	PlainTemperature float64

	// ReviewProbability is the chance of revisiting an earlier section
	// once the learner is past the first one.
	ReviewProbability float64
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		Style:             StyleLabeled,
		ConceptMaxTokens:  500,
		SectionMaxTokens:  300,
		PlainMaxTokens:    200,
		PlainTemperature:  0.7,
		ReviewProbability: 0.3,
	}
}
