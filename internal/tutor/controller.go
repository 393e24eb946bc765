// Package tutor runs open-ended tutoring conversations about one concept.
// A conversation never ends on a correct answer; it continues until the
// caller ends it, and only then is a review session and the final mastery
// update recorded.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/evaluation"
	"github.com/abhisek/studyagent/internal/llm"
	"github.com/abhisek/studyagent/internal/lock"
	"github.com/abhisek/studyagent/internal/mastery"
	"github.com/abhisek/studyagent/internal/questiongen"
	"github.com/abhisek/studyagent/internal/store"
)

// ErrValidation is returned for empty replies and for operations on a
// conversation that has already ended. State is never modified when it is
// returned.
var ErrValidation = errors.New("invalid request")

// weaknessSeverity is the severity recorded for weaknesses found during a
// conversation.
const weaknessSeverity = 1

// QuestionSource writes the opening question of a conversation.
type QuestionSource interface {
	Generate(ctx context.Context, c *concept.Concept) questiongen.Question
}

// Grader grades replies and names weaknesses in wrong ones.
type Grader interface {
	Evaluate(ctx context.Context, q questiongen.Question, answer string) evaluation.Result
	IdentifyWeaknesses(ctx context.Context, c *concept.Concept, answer, expected string) []string
}

// Config controls the token budgets of tutor replies.
type Config struct {
	GuideMaxTokens  int
	AnswerMaxTokens int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		GuideMaxTokens:  100,
		AnswerMaxTokens: 400,
	}
}

// Deps are the collaborators of a Controller. Repo, Questions, Grader and
// Provider are required.
type Deps struct {
	Repo      store.Repo
	Questions QuestionSource
	Grader    Grader
	Provider  llm.Provider

	// Mastery applies the final outcome. Defaults to StreakPolicy.
	Mastery *mastery.Service

	// Locker serializes the final write per concept. Defaults to an
	// in-process locker.
	Locker lock.Locker

	Logger *zap.Logger
	Now    func() time.Time
}

// Controller drives tutoring conversations. It holds no per-conversation
// state and can serve many conversations at once.
type Controller struct {
	repo      store.Repo
	questions QuestionSource
	grader    Grader
	provider  llm.Provider
	mastery   *mastery.Service
	locker    lock.Locker
	logger    *zap.Logger
	now       func() time.Time
	config    Config
}

// New creates a Controller.
func New(deps Deps, cfg Config) *Controller {
	c := &Controller{
		repo:      deps.Repo,
		questions: deps.Questions,
		grader:    deps.Grader,
		provider:  deps.Provider,
		mastery:   deps.Mastery,
		locker:    deps.Locker,
		logger:    deps.Logger,
		now:       deps.Now,
		config:    cfg,
	}
	if c.mastery == nil {
		c.mastery = mastery.NewService(nil)
	}
	if c.locker == nil {
		c.locker = lock.NewLocal()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Start opens a conversation about the concept with a generated question.
// Existing weaknesses of the concept seed the state's weakness areas.
func (c *Controller) Start(ctx context.Context, conceptID string) (*State, error) {
	con, err := c.repo.GetConcept(ctx, conceptID)
	if err != nil {
		return nil, fmt.Errorf("start conversation: %w", err)
	}

	weaknesses, err := c.repo.ListWeaknesses(ctx, conceptID)
	if err != nil {
		return nil, fmt.Errorf("start conversation: %w", err)
	}

	q := c.questions.Generate(ctx, con)

	st := &State{
		ConceptID:   con.ID,
		ConceptName: con.Name,
		Question:    q,
		Phase:       PhaseStarted,
	}
	for _, w := range weaknesses {
		st.WeaknessAreas = append(st.WeaknessAreas, w.Area)
	}
	st.addTurn(RoleTutor, q.Text)

	c.logger.Debug("conversation started",
		zap.String("concept_id", con.ID),
		zap.Bool("fallback_question", q.Fallback))
	return st, nil
}

// Continue grades a student reply against the opening question and answers
// with a guiding response: a topic change or a follow-up question when the
// reply is correct, a hint when it is not. Weaknesses found in an incorrect
// reply are recorded and the conversation is marked for remediation.
func (c *Controller) Continue(ctx context.Context, st *State, reply string) (ContinueResult, error) {
	if err := checkOpen(st); err != nil {
		return ContinueResult{}, err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return ContinueResult{}, fmt.Errorf("%w: empty response", ErrValidation)
	}

	con, err := c.repo.GetConcept(ctx, st.ConceptID)
	if err != nil {
		return ContinueResult{}, fmt.Errorf("continue conversation: %w", err)
	}

	turns := appendTurn(st.Turns, RoleStudent, reply)

	graded := c.grader.Evaluate(ctx, st.Question, reply)
	guide, transitioned := c.guide(ctx, con, reply, turns, graded.Correct)

	var weaknesses []string
	if !graded.Correct {
		weaknesses = c.grader.IdentifyWeaknesses(ctx, con, reply, st.Question.ExpectedAnswer)
		now := c.now()
		err := c.repo.WithTx(ctx, func(tx store.Repo) error {
			for _, w := range weaknesses {
				if err := tx.UpsertWeakness(ctx, con.ID, w, weaknessSeverity, now); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return ContinueResult{}, fmt.Errorf("record weaknesses for %s: %w", con.ID, err)
		}
	}

	improving := isImproving(turns, reply)

	st.Attempts++
	st.Turns = appendTurn(turns, RoleTutor, guide)
	st.Phase = PhaseContinuing
	if !graded.Correct {
		st.addWeaknesses(weaknesses)
		st.NeedsRemediation = true
	}

	return ContinueResult{
		Status:           StatusContinuing,
		Correct:          graded.Correct,
		Label:            graded.Label,
		GuidingResponse:  guide,
		Transitioned:     transitioned,
		Improving:        improving,
		Attempts:         st.Attempts,
		NeedsRemediation: st.NeedsRemediation,
		Weaknesses:       weaknesses,
	}, nil
}

// AnswerQuestion answers a question the student asked instead of replying.
// Both turns are added to the transcript; it does not count as an attempt.
func (c *Controller) AnswerQuestion(ctx context.Context, st *State, question string) (QuestionResult, error) {
	if err := checkOpen(st); err != nil {
		return QuestionResult{}, err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return QuestionResult{}, fmt.Errorf("%w: empty question", ErrValidation)
	}

	con, err := c.repo.GetConcept(ctx, st.ConceptID)
	if err != nil {
		return QuestionResult{}, fmt.Errorf("answer question: %w", err)
	}

	turns := appendTurn(st.Turns, RoleStudent, question)
	prompt := render(answerTemplate, promptData{
		Topic:    con.Name,
		Reply:    question,
		History:  turns.Tail(historyWindow).String(),
		Material: con.Content,
	})

	var res QuestionResult
	reply, err := llm.Complete(llm.WithPurpose(ctx, llm.PurposeAnswer), c.provider, prompt, c.config.AnswerMaxTokens)
	if err != nil {
		c.logger.Warn("answering student question failed, using fallback",
			zap.String("concept_id", con.ID), zap.Error(err))
		res = QuestionResult{
			Answer:   fmt.Sprintf("That's a great question about %s! Let me think about that...", con.Name),
			FollowUp: "What specific aspect would you like to explore further?",
			Fallback: true,
		}
	} else {
		res.Answer, res.FollowUp = parseAnswer(reply)
		if res.Answer == "" {
			res.Answer = "That's a great question! Let me explain..."
		}
	}

	tutorTurn := res.Answer
	if res.FollowUp != "" {
		tutorTurn += "\n" + res.FollowUp
	}
	st.Turns = appendTurn(turns, RoleTutor, tutorTurn)
	st.Phase = PhaseContinuing
	return res, nil
}

// End finishes the conversation. It records one review session and applies
// the final mastery outcome in a single transaction, mastery first. A
// conversation without any student reply records nothing.
func (c *Controller) End(ctx context.Context, st *State) (EndResult, error) {
	if err := checkOpen(st); err != nil {
		return EndResult{}, err
	}

	res := EndResult{
		Status:            StatusCompleted,
		TotalAttempts:     st.Attempts,
		RemediationNeeded: st.NeedsRemediation,
		Transcript:        st.Turns,
	}
	if st.Attempts == 0 {
		st.Phase = PhaseEnded
		return res, nil
	}

	data, err := st.Turns.Marshal()
	if err != nil {
		return EndResult{}, err
	}

	unlock, err := c.locker.Lock(ctx, lock.ConceptKey(st.ConceptID))
	if err != nil {
		return EndResult{}, fmt.Errorf("end conversation: %w", err)
	}
	defer unlock()

	now := c.now()
	rs := &store.ReviewSession{
		ConceptID:          st.ConceptID,
		Question:           st.OriginalQuestion(),
		UserAnswer:         st.Turns.FirstStudentTurn(),
		Correct:            !st.NeedsRemediation,
		Timestamp:          now,
		HintsUsed:          0,
		FollowUpQuestions:  max(st.Attempts-1, 0),
		WeaknessIdentified: st.NeedsRemediation,
		SessionType:        store.SessionTypeConversation,
		ConversationData:   data,
	}

	outcome := finalOutcome(st.Attempts, st.NeedsRemediation)

	var update *mastery.Update
	err = c.repo.WithTx(ctx, func(tx store.Repo) error {
		if outcome != outcomeSkip {
			_, u, err := c.mastery.RecordOutcome(ctx, tx, st.ConceptID, outcome == outcomeSuccess, 0, now)
			if err != nil {
				return err
			}
			update = &u
		}
		return tx.AppendReviewSession(ctx, rs)
	})
	if err != nil {
		return EndResult{}, fmt.Errorf("end conversation for %s: %w", st.ConceptID, err)
	}

	st.Phase = PhaseEnded

	res.Recorded = true
	res.SessionID = rs.ID
	res.Timestamp = rs.Timestamp
	res.MasteryApplied = update != nil
	res.Update = update

	c.logger.Info("conversation ended",
		zap.String("concept_id", st.ConceptID),
		zap.Int("attempts", st.Attempts),
		zap.Bool("remediation", st.NeedsRemediation),
		zap.Bool("mastery_applied", res.MasteryApplied))
	return res, nil
}

// guide writes the tutor's reply to a graded student turn. turns already
// includes the student's reply.
func (c *Controller) guide(ctx context.Context, con *concept.Concept, reply string, turns Transcript, correct bool) (string, bool) {
	tmpl := hintTemplate
	transition := false
	if correct {
		transition = shouldTransition(turns)
		tmpl = followUpTemplate
		if transition {
			tmpl = transitionTemplate
		}
	}

	prompt := render(tmpl, promptData{
		Topic:    con.Name,
		Reply:    reply,
		History:  turns.Tail(historyWindow).String(),
		Material: con.Content,
	})

	text, err := llm.Complete(llm.WithPurpose(ctx, llm.PurposeGuide), c.provider, prompt, c.config.GuideMaxTokens)
	if err != nil {
		c.logger.Warn("guiding response failed, using fallback",
			zap.String("concept_id", con.ID), zap.Error(err))
		return fallbackGuide(con.Name, correct), transition
	}
	return text, transition
}

func fallbackGuide(name string, correct bool) string {
	name = strings.ToLower(name)
	if correct {
		return fmt.Sprintf("Good! What's one advantage of using %s?", name)
	}
	return fmt.Sprintf("Think about what makes %s special compared to other data structures.", name)
}

type outcome int

const (
	outcomeFailure outcome = iota
	outcomeSuccess
	outcomeSkip
)

// finalOutcome maps a finished conversation to a mastery outcome. Short
// clean conversations count as a success. Long remediation conversations
// are not penalized.
func finalOutcome(attempts int, remediation bool) outcome {
	switch {
	case !remediation && attempts <= 2:
		return outcomeSuccess
	case remediation && attempts > 3:
		return outcomeSkip
	default:
		return outcomeFailure
	}
}

func checkOpen(st *State) error {
	if st == nil {
		return fmt.Errorf("%w: no conversation", ErrValidation)
	}
	if st.Ended() {
		return fmt.Errorf("%w: conversation already ended", ErrValidation)
	}
	return nil
}

// appendTurn returns a copy of t with one more turn, leaving t untouched.
func appendTurn(t Transcript, role Role, content string) Transcript {
	out := make(Transcript, len(t), len(t)+1)
	copy(out, t)
	return append(out, Turn{Role: role, Content: content})
}
