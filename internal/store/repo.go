package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/studyagent/internal/concept"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a conditional mastery update lost a race
	// with another writer.
	ErrConflict = errors.New("concurrent update conflict")
)

// Review session types.
const (
	SessionTypePractice     = "practice"
	SessionTypeConversation = "conversation"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match ("" = any)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// DueQuery selects concepts eligible for review.
type DueQuery struct {
	ClassID string // "" = all classes
	Now     time.Time

	// IncludeStruggling also returns UNKNOWN concepts with a streak below
	// three, regardless of their next review time.
	IncludeStruggling bool
}

// MasteryUpdate carries the fields written after an evaluated answer.
type MasteryUpdate struct {
	ConceptID     string
	Mastery       concept.Level
	CorrectStreak int
	ReviewCount   int
	LastReviewed  time.Time
	NextReview    time.Time

	// ExpectReviewCount guards the write: the update applies only if the
	// stored review count still matches. Negative disables the check.
	ExpectReviewCount int
}

// ReviewSession is an append-only record of one practice answer or one
// finished tutoring conversation.
type ReviewSession struct {
	ID                 string
	ConceptID          string
	Question           string
	UserAnswer         string
	Correct            bool
	Timestamp          time.Time
	HintsUsed          int
	FollowUpQuestions  int
	WeaknessIdentified bool
	Feedback           string
	SessionType        string
	ConversationData   string
}

// Weakness aggregates repeated trouble with one area of a concept.
type Weakness struct {
	ConceptID        string
	Area             string
	Severity         int
	TimesEncountered int
	LastEncountered  time.Time
}

// ConceptRepo persists concepts and their mastery state.
type ConceptRepo interface {
	// CreateConcept inserts a concept and its sections.
	CreateConcept(ctx context.Context, c *concept.Concept) error

	// GetConcept returns the concept with its sections, or ErrNotFound.
	GetConcept(ctx context.Context, id string) (*concept.Concept, error)

	// ListConcepts returns concepts in a class ordered by next review.
	// An empty classID lists every class.
	ListConcepts(ctx context.Context, classID string) ([]*concept.Concept, error)

	// ListDue returns concepts ordered by mastery, streak, then next review.
	ListDue(ctx context.Context, q DueQuery) ([]*concept.Concept, error)

	// CountDue counts the concepts ListDue would return.
	CountDue(ctx context.Context, q DueQuery) (int, error)

	// MasteryHistogram counts concepts per mastery level.
	MasteryHistogram(ctx context.Context, classID string) (map[concept.Level]int, error)

	// UpdateMastery writes the scheduler's output for one concept.
	UpdateMastery(ctx context.Context, u MasteryUpdate) error

	// UpdateSections writes section progress and the current section index.
	UpdateSections(ctx context.Context, conceptID string, current int, sections []concept.Section) error
}

// ReviewRepo records review history and weaknesses.
type ReviewRepo interface {
	// AppendReviewSession inserts a review session. ID and Timestamp are
	// filled in when empty.
	AppendReviewSession(ctx context.Context, rs *ReviewSession) error

	// ListReviewSessions returns a concept's sessions, newest first.
	ListReviewSessions(ctx context.Context, conceptID string, limit int) ([]ReviewSession, error)

	// UpsertWeakness increments the counter for an existing (concept, area)
	// pair and refreshes its severity and timestamp, or inserts a new pair.
	UpsertWeakness(ctx context.Context, conceptID, area string, severity int, at time.Time) error

	// ListWeaknesses returns weaknesses by severity then frequency.
	ListWeaknesses(ctx context.Context, conceptID string) ([]Weakness, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event, or nil if absent.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

// Repo is the full persistence surface used by the study engine.
type Repo interface {
	ConceptRepo
	ReviewRepo

	// WithTx runs fn inside a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Repo) error) error
}
