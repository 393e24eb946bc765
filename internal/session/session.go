// Package session is the top-level study API. It picks due concepts,
// grades single answers, runs tutoring conversations and reports progress,
// tying together the store, scheduler, question generator, evaluator and
// tutor.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/evaluation"
	"github.com/abhisek/studyagent/internal/ingest"
	"github.com/abhisek/studyagent/internal/llm"
	"github.com/abhisek/studyagent/internal/lock"
	"github.com/abhisek/studyagent/internal/mastery"
	"github.com/abhisek/studyagent/internal/notify"
	"github.com/abhisek/studyagent/internal/questiongen"
	"github.com/abhisek/studyagent/internal/store"
	"github.com/abhisek/studyagent/internal/tutor"
)

var (
	// ErrNotFound is returned when a referenced concept does not exist.
	ErrNotFound = store.ErrNotFound

	// ErrValidation is returned for malformed input. Nothing is written
	// when it is returned.
	ErrValidation = tutor.ErrValidation
)

// Grader grades answers in both the labeled and the scored format.
type Grader interface {
	Evaluate(ctx context.Context, q questiongen.Question, answer string) evaluation.Result
	EvaluateScored(ctx context.Context, q questiongen.Question, answer string, c *concept.Concept) evaluation.Scored
	IdentifyWeaknesses(ctx context.Context, c *concept.Concept, answer, expected string) []string
}

// Extractor proposes concepts from free-form notes.
type Extractor interface {
	Extract(ctx context.Context, notes string) ([]ingest.Draft, error)
}

// EvalMode selects how single answers are graded.
type EvalMode string

const (
	// EvalLabeled grades with Correct / Partially Correct / Incorrect and
	// returns hints.
	EvalLabeled EvalMode = "labeled"

	// EvalScored grades with a 0-100 score.
	EvalScored EvalMode = "scored"
)

// Config controls the orchestrator.
type Config struct {
	EvalMode EvalMode
	Tutor    tutor.Config
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		EvalMode: EvalLabeled,
		Tutor:    tutor.DefaultConfig(),
	}
}

// Deps are the collaborators of an Orchestrator. Repo, Questions, Grader
// and Provider are required.
type Deps struct {
	Repo      store.Repo
	Questions tutor.QuestionSource
	Grader    Grader
	Provider  llm.Provider

	// Extractor is optional. Without it ExtractConcepts creates nothing.
	Extractor Extractor

	Mastery   *mastery.Service
	Locker    lock.Locker
	Publisher notify.Publisher
	Logger    *zap.Logger
	Now       func() time.Time
}

// Orchestrator is safe for concurrent use. Writes to one concept are
// serialized through the locker.
type Orchestrator struct {
	repo      store.Repo
	questions tutor.QuestionSource
	grader    Grader
	extractor Extractor
	mastery   *mastery.Service
	locker    lock.Locker
	publisher notify.Publisher
	tutor     *tutor.Controller
	logger    *zap.Logger
	now       func() time.Time
	config    Config
}

// New creates an Orchestrator.
func New(deps Deps, cfg Config) *Orchestrator {
	if deps.Mastery == nil {
		deps.Mastery = mastery.NewService(nil)
	}
	if deps.Locker == nil {
		deps.Locker = lock.NewLocal()
	}
	if deps.Publisher == nil {
		deps.Publisher = notify.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.EvalMode == "" {
		cfg.EvalMode = EvalLabeled
	}

	return &Orchestrator{
		repo:      deps.Repo,
		questions: deps.Questions,
		grader:    deps.Grader,
		extractor: deps.Extractor,
		mastery:   deps.Mastery,
		locker:    deps.Locker,
		publisher: deps.Publisher,
		tutor: tutor.New(tutor.Deps{
			Repo:      deps.Repo,
			Questions: deps.Questions,
			Grader:    deps.Grader,
			Provider:  deps.Provider,
			Mastery:   deps.Mastery,
			Locker:    deps.Locker,
			Logger:    deps.Logger,
			Now:       deps.Now,
		}, cfg.Tutor),
		logger: deps.Logger,
		now:    deps.Now,
		config: cfg,
	}
}

// includeStruggling reports whether UNKNOWN concepts without a streak stay
// in rotation regardless of their review time. It follows the policy.
func (o *Orchestrator) includeStruggling() bool {
	return o.mastery.Scheduler().Policy().KeepDue(concept.LevelUnknown, 0)
}
