package questiongen

import "github.com/abhisek/studyagent/internal/concept"

// Rand is the random source used for section review and question type
// choices. *math/rand/v2.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// reviewWeights biases prior-section review toward weaker sections.
var reviewWeights = map[concept.Level]float64{
	concept.LevelUnknown:  3,
	concept.LevelLearning: 2,
	concept.LevelFamiliar: 1.5,
}

func reviewWeight(l concept.Level) float64 {
	if w, ok := reviewWeights[l]; ok {
		return w
	}
	return 1
}

// focusSection returns the index of the first section that is not yet
// mastered and records it as the concept's current section. Once every
// section is mastered it cycles on the current index.
func focusSection(c *concept.Concept) int {
	for i, s := range c.Sections {
		if s.Mastery != concept.LevelMastered {
			c.CurrentSection = i
			return i
		}
	}
	c.CurrentSection = c.CurrentSection % len(c.Sections)
	if c.CurrentSection < 0 {
		c.CurrentSection = 0
	}
	return c.CurrentSection
}

// pickSection chooses the section to ask about. Past the first section
// there is a fixed chance to revisit an earlier one instead.
func pickSection(c *concept.Concept, rng Rand, reviewProbability float64) int {
	idx := focusSection(c)
	if idx == 0 || rng.Float64() >= reviewProbability {
		return idx
	}
	if prior := pickReviewSection(c.Sections[:idx], rng); prior >= 0 {
		return prior
	}
	return idx
}

// pickReviewSection makes a weighted random choice among earlier sections.
// Returns -1 when there are none.
func pickReviewSection(prior []concept.Section, rng Rand) int {
	if len(prior) == 0 {
		return -1
	}

	var total float64
	for _, s := range prior {
		total += reviewWeight(s.Mastery)
	}

	r := rng.Float64() * total
	for i, s := range prior {
		r -= reviewWeight(s.Mastery)
		if r < 0 {
			return i
		}
	}
	return len(prior) - 1
}

// sectionShape maps a section's mastery to its question type and difficulty.
func sectionShape(l concept.Level) (string, concept.Difficulty) {
	switch l {
	case concept.LevelUnknown:
		return TypeBasicRecall, concept.DifficultyBasic
	case concept.LevelLearning:
		return TypeUnderstanding, concept.DifficultyBasic
	case concept.LevelFamiliar:
		return TypeApplication, concept.DifficultyIntermediate
	default:
		return TypeSynthesis, concept.DifficultyAdvanced
	}
}

// conceptShape maps concept mastery to a question type and difficulty.
// FAMILIAR and PROFICIENT pick between two types at random.
func conceptShape(l concept.Level, rng Rand) (string, concept.Difficulty) {
	switch l {
	case concept.LevelUnknown, concept.LevelLearning:
		return TypeRecall, concept.DifficultyBasic
	case concept.LevelFamiliar:
		return choose(rng, TypeRecall, TypeApplication), concept.DifficultyIntermediate
	case concept.LevelProficient:
		return choose(rng, TypeApplication, TypeSynthesis), concept.DifficultyAdvanced
	default:
		return TypeSynthesis, concept.DifficultyExpert
	}
}

// plainShape is the class-scoped mapping, which has no random type.
func plainShape(l concept.Level) (string, concept.Difficulty) {
	switch l {
	case concept.LevelUnknown, concept.LevelLearning:
		return TypeRecall, concept.DifficultyBasic
	case concept.LevelFamiliar:
		return TypeApplication, concept.DifficultyIntermediate
	case concept.LevelProficient:
		return TypeApplication, concept.DifficultyAdvanced
	default:
		return TypeSynthesis, concept.DifficultyExpert
	}
}

func choose(rng Rand, a, b string) string {
	if rng.Float64() < 0.5 {
		return a
	}
	return b
}
