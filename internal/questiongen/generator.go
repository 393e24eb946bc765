package questiongen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/llm"
)

// Generator produces questions scaled to a concept's mastery using an LLM
// provider. It never fails: when the provider errors or the reply cannot
// be parsed, a template question is returned.
type Generator struct {
	provider llm.Provider
	config   Config
	logger   *zap.Logger

	mu  sync.Mutex
	rng Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand sets the random source for section review and type choices.
func WithRand(r Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New creates a Generator with the given provider and config.
func New(provider llm.Provider, cfg Config, opts ...Option) *Generator {
	seed := uint64(time.Now().UnixNano())
	g := &Generator{
		provider: provider,
		config:   cfg,
		logger:   zap.NewNop(),
		rng:      rand.New(rand.NewPCG(seed, seed>>17)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a question for c. For concepts with notes sections it
// targets one section and updates c.CurrentSection to the focus section.
func (g *Generator) Generate(ctx context.Context, c *concept.Concept) Question {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestion)

	if g.config.Style == StylePlain {
		return g.generatePlain(ctx, c)
	}
	if c.HasSections() {
		return g.generateForSection(ctx, c)
	}
	return g.generateForConcept(ctx, c)
}

func (g *Generator) generateForConcept(ctx context.Context, c *concept.Concept) Question {
	g.mu.Lock()
	qtype, difficulty := conceptShape(c.Mastery, g.rng)
	g.mu.Unlock()

	q := Question{
		ConceptID:    c.ID,
		Difficulty:   difficulty,
		Type:         qtype,
		SectionIndex: -1,
	}

	reply, err := llm.Complete(ctx, g.provider, buildConceptPrompt(c, qtype, difficulty), g.config.ConceptMaxTokens)
	if err != nil {
		g.logger.Warn("question generation failed, using fallback",
			zap.String("concept_id", c.ID), zap.Error(err))
		q.Difficulty = concept.DifficultyBasic
		q.Type = TypeBasic
		q.Text = fallbackText(c.Name)
		q.ExpectedAnswer = FallbackExpectedAnswer
		q.Fallback = true
		return q
	}

	q.Text, q.ExpectedAnswer = parseLabeled(reply, true)
	if q.Text == "" {
		g.logger.Debug("no question in reply", zap.String("concept_id", c.ID))
		q.Text = fallbackText(c.Name)
		q.Fallback = true
	}
	if q.ExpectedAnswer == "" {
		q.ExpectedAnswer = FallbackExpectedAnswer
	}
	return q
}

func (g *Generator) generateForSection(ctx context.Context, c *concept.Concept) Question {
	g.mu.Lock()
	idx := pickSection(c, g.rng, g.config.ReviewProbability)
	g.mu.Unlock()

	section := c.Sections[idx]
	qtype, difficulty := sectionShape(section.Mastery)

	q := Question{
		ConceptID:    c.ID,
		Difficulty:   difficulty,
		Type:         qtype + "_" + section.ID,
		SectionID:    section.ID,
		SectionIndex: idx,
	}

	reply, err := llm.Complete(ctx, g.provider, buildSectionPrompt(section, qtype, difficulty), g.config.SectionMaxTokens)
	if err != nil {
		g.logger.Warn("section question generation failed, using fallback",
			zap.String("concept_id", c.ID), zap.String("section_id", section.ID), zap.Error(err))
		q.Difficulty = concept.DifficultyBasic
		q.Type = TypeBasic + "_" + section.ID
		q.Text = fallbackText(strings.ToLower(section.Title))
		q.ExpectedAnswer = FallbackExpectedAnswer
		q.Fallback = true
		return q
	}

	q.Text, q.ExpectedAnswer = parseLabeled(reply, false)
	if q.Text == "" {
		q.Text = fallbackText(strings.ToLower(section.Title))
		q.Fallback = true
	}
	if q.ExpectedAnswer == "" {
		q.ExpectedAnswer = FallbackExpectedAnswer
	}
	return q
}

func (g *Generator) generatePlain(ctx context.Context, c *concept.Concept) Question {
	qtype, difficulty := plainShape(c.Mastery)
	q := Question{
		ConceptID:    c.ID,
		Difficulty:   difficulty,
		Type:         qtype,
		SectionIndex: -1,
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildPlainPrompt(c, difficulty)}},
		MaxTokens:   g.config.PlainMaxTokens,
		Temperature: g.config.PlainTemperature,
	})
	if err == nil {
		q.Text = strings.TrimSpace(resp.Text)
	}
	if q.Text == "" {
		g.logger.Warn("plain question generation failed, using fallback",
			zap.String("concept_id", c.ID), zap.Error(err))
		q.Text = fmt.Sprintf("Explain the key points about %s.", c.Name)
		q.ExpectedAnswer = "Key concepts and principles"
		q.Type = TypeRecall
		q.Fallback = true
	}
	return q
}

func fallbackText(topic string) string {
	return fmt.Sprintf("What can you tell me about %s?", topic)
}
