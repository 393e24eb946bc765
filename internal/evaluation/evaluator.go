package evaluation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/llm"
	"github.com/abhisek/studyagent/internal/questiongen"
)

const (
	fallbackFeedback       = "Could not grade this answer right now. Review the study material and compare it with your answer."
	fallbackScoredFeedback = "Answer received. Please review the concept material for better understanding."
	unparsedFeedback       = "Unable to evaluate answer"
)

// FallbackHints are returned when the grader is unavailable.
var FallbackHints = []string{
	"Try to be more specific",
	"Review the key concepts",
	"Think about the main principles",
}

// Evaluator grades free-text answers through an LLM provider. None of its
// methods fail; service errors degrade to heuristics.
type Evaluator struct {
	provider llm.Provider
	config   Config
	logger   *zap.Logger
}

// New creates an Evaluator. logger may be nil.
func New(provider llm.Provider, cfg Config, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{provider: provider, config: cfg, logger: logger}
}

// Evaluate grades answer against q using the labeled Score/Feedback/Hints
// reply format.
func (e *Evaluator) Evaluate(ctx context.Context, q questiongen.Question, answer string) Result {
	ctx = llm.WithPurpose(ctx, llm.PurposeEvaluate)

	prompt := render(labeledTemplate, promptData{
		Question: q.Text,
		Expected: q.ExpectedAnswer,
		Answer:   answer,
	})

	reply, err := llm.Complete(ctx, e.provider, prompt, e.config.MaxTokens)
	if err != nil {
		e.logger.Warn("answer evaluation failed, using length heuristic",
			zap.String("concept_id", q.ConceptID), zap.Error(err))
		return e.fallbackResult(answer)
	}
	return parseLabeledResult(reply)
}

func (e *Evaluator) fallbackResult(answer string) Result {
	correct := e.longEnough(answer)
	label := LabelIncorrect
	if correct {
		label = LabelPartial
	}
	return Result{
		Correct:  correct,
		Label:    label,
		Feedback: fallbackFeedback,
		Hints:    append([]string(nil), FallbackHints...),
		Fallback: true,
	}
}

func (e *Evaluator) longEnough(answer string) bool {
	return len(strings.TrimSpace(answer)) > e.config.MinAnswerLength
}

// parseLabeledResult reads a Score/Feedback/Hints reply. A missing score
// reads as Incorrect.
func parseLabeledResult(reply string) Result {
	res := Result{Label: LabelIncorrect, Feedback: unparsedFeedback}
	for _, line := range strings.Split(strings.TrimSpace(reply), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Score:"):
			res.Label = ParseLabel(strings.TrimPrefix(line, "Score:"))
		case strings.HasPrefix(line, "Feedback:"):
			res.Feedback = strings.TrimSpace(strings.TrimPrefix(line, "Feedback:"))
		case strings.HasPrefix(line, "Hints:"):
			for _, h := range strings.Split(strings.TrimPrefix(line, "Hints:"), "|") {
				if h = strings.TrimSpace(h); h != "" {
					res.Hints = append(res.Hints, h)
				}
			}
		}
	}
	res.Correct = res.Label.Passing()
	return res
}

// EvaluateScored grades answer with a 0-100 rubric, using the concept's
// content as context.
func (e *Evaluator) EvaluateScored(ctx context.Context, q questiongen.Question, answer string, c *concept.Concept) Scored {
	ctx = llm.WithPurpose(ctx, llm.PurposeEvaluateScored)

	prompt := render(scoredTemplate, promptData{
		Question: q.Text,
		Expected: q.ExpectedAnswer,
		Answer:   answer,
		Context:  c.Content,
	})

	resp, err := e.provider.Generate(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Schema:      ScoredSchema,
		MaxTokens:   e.config.ScoredMaxTokens,
		Temperature: e.config.ScoredTemperature,
	})

	var out Scored
	if err == nil {
		err = resp.Decode(&out)
	}
	if err != nil {
		e.logger.Warn("scored evaluation failed, using length heuristic",
			zap.String("concept_id", c.ID), zap.Error(err))
		return Scored{
			Correct:  e.longEnough(answer),
			Score:    50,
			Feedback: fallbackScoredFeedback,
			Fallback: true,
		}
	}

	out.Score = min(max(out.Score, 0), 100)
	return out
}

// IdentifyWeaknesses names up to three weakness areas shown by an
// incorrect answer. It returns ["general understanding"] when the service
// fails or names nothing usable.
func (e *Evaluator) IdentifyWeaknesses(ctx context.Context, c *concept.Concept, answer, expected string) []string {
	ctx = llm.WithPurpose(ctx, llm.PurposeWeakness)

	prompt := render(weaknessTemplate, promptData{
		Topic:    c.Name,
		Expected: expected,
		Answer:   answer,
		Areas:    Taxonomy,
	})

	reply, err := llm.Complete(ctx, e.provider, prompt, e.config.WeaknessMaxTokens)
	if err != nil {
		e.logger.Warn("weakness identification failed",
			zap.String("concept_id", c.ID), zap.Error(err))
		return []string{GeneralUnderstanding}
	}

	areas := parseWeaknesses(reply)
	if len(areas) == 0 {
		return []string{GeneralUnderstanding}
	}
	return areas
}
