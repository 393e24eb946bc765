package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyagent/internal/concept"
)

var (
	t0      = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	errBoom = errors.New("boom")
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func seedConcept(t *testing.T, repo Repo, id string, level concept.Level, streak int, next time.Time) *concept.Concept {
	t.Helper()
	c := &concept.Concept{
		ID:            id,
		ClassID:       "algo-101",
		Name:          "Concept " + id,
		Content:       "content of " + id,
		Mastery:       level,
		CorrectStreak: streak,
		NextReview:    next,
		CreatedAt:     t0.Add(-48 * time.Hour),
	}
	require.NoError(t, repo.CreateConcept(context.Background(), c))
	return c
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}
	for _, tt := range tests {
		var got string
		require.NoError(t, s.DB().QueryRow("PRAGMA "+tt.pragma).Scan(&got))
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestConceptRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.Repo()
	ctx := context.Background()

	c := &concept.Concept{
		ID:         "c1",
		Name:       "Binary Trees",
		Content:    "A tree where each node has at most two children.",
		Difficulty: concept.DifficultyIntermediate,
		NextReview: t0,
		CreatedAt:  t0,
		Sections: []concept.Section{
			{ID: "s1", Title: "Definition", Content: "nodes", Order: 0},
			{ID: "s2", Title: "Traversal", Content: "in-order", Order: 1},
		},
	}
	require.NoError(t, repo.CreateConcept(ctx, c))

	got, err := repo.GetConcept(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, concept.DefaultClassID, got.ClassID)
	assert.Equal(t, "Binary Trees", got.Name)
	assert.Equal(t, concept.DifficultyIntermediate, got.Difficulty)
	assert.Nil(t, got.LastReviewed)
	assert.True(t, got.NextReview.Equal(t0))
	require.Len(t, got.Sections, 2)
	assert.Equal(t, "Traversal", got.Sections[1].Title)
}

func TestGetConcept_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Repo().GetConcept(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDue_OrderAndStruggling(t *testing.T) {
	s := openTestStore(t)
	repo := s.Repo()
	ctx := context.Background()

	seedConcept(t, repo, "familiar", concept.LevelFamiliar, 0, t0.Add(-time.Hour))
	seedConcept(t, repo, "learning-late", concept.LevelLearning, 1, t0.Add(-2*time.Hour))
	seedConcept(t, repo, "learning-early", concept.LevelLearning, 0, t0.Add(-time.Hour))
	seedConcept(t, repo, "future", concept.LevelProficient, 0, t0.Add(72*time.Hour))
	seedConcept(t, repo, "struggling", concept.LevelUnknown, 1, t0.Add(24*time.Hour))

	due, err := repo.ListDue(ctx, DueQuery{ClassID: "algo-101", Now: t0})
	require.NoError(t, err)
	assert.Equal(t, []string{"learning-late", "learning-early", "familiar"}, ids(due))

	due, err = repo.ListDue(ctx, DueQuery{ClassID: "algo-101", Now: t0, IncludeStruggling: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"struggling", "learning-late", "learning-early", "familiar"}, ids(due))

	n, err := repo.CountDue(ctx, DueQuery{ClassID: "algo-101", Now: t0, IncludeStruggling: true})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	due, err = repo.ListDue(ctx, DueQuery{ClassID: "other", Now: t0, IncludeStruggling: true})
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestListDue_OverdueBeforeLowStreak(t *testing.T) {
	s := openTestStore(t)
	repo := s.Repo()

	seedConcept(t, repo, "due-now", concept.LevelFamiliar, 0, t0)
	seedConcept(t, repo, "overdue-week", concept.LevelFamiliar, 2, t0.Add(-7*24*time.Hour))
	seedConcept(t, repo, "tie-streak-2", concept.LevelLearning, 2, t0.Add(-time.Hour))
	seedConcept(t, repo, "tie-streak-0", concept.LevelLearning, 0, t0.Add(-time.Hour))

	due, err := repo.ListDue(context.Background(), DueQuery{ClassID: "algo-101", Now: t0})
	require.NoError(t, err)
	assert.Equal(t, []string{"tie-streak-0", "tie-streak-2", "overdue-week", "due-now"}, ids(due))
}

func TestUpdateMastery(t *testing.T) {
	s := openTestStore(t)
	repo := s.Repo()
	ctx := context.Background()
	seedConcept(t, repo, "c1", concept.LevelLearning, 2, t0)

	err := repo.UpdateMastery(ctx, MasteryUpdate{
		ConceptID:         "c1",
		Mastery:           concept.LevelFamiliar,
		CorrectStreak:     0,
		ReviewCount:       1,
		LastReviewed:      t0,
		NextReview:        t0.Add(96 * time.Hour),
		ExpectReviewCount: 0,
	})
	require.NoError(t, err)

	got, err := repo.GetConcept(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, concept.LevelFamiliar, got.Mastery)
	assert.Equal(t, 1, got.ReviewCount)
	assert.Equal(t, 0, got.CorrectStreak)
	require.NotNil(t, got.LastReviewed)
	assert.True(t, got.LastReviewed.Equal(t0))
	assert.True(t, got.NextReview.Equal(t0.Add(96*time.Hour)))

	// A second writer computed from the stale review count loses.
	err = repo.UpdateMastery(ctx, MasteryUpdate{ConceptID: "c1", ReviewCount: 1, ExpectReviewCount: 0})
	assert.ErrorIs(t, err, ErrConflict)

	err = repo.UpdateMastery(ctx, MasteryUpdate{ConceptID: "nope", ExpectReviewCount: -1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertWeakness_IncrementsAndTakesLatestSeverity(t *testing.T) {
	s := openTestStore(t)
	repo := s.Repo()
	ctx := context.Background()
	seedConcept(t, repo, "c1", concept.LevelUnknown, 0, t0)

	require.NoError(t, repo.UpsertWeakness(ctx, "c1", "time complexity understanding", 1, t0))
	require.NoError(t, repo.UpsertWeakness(ctx, "c1", "time complexity understanding", 3, t0.Add(time.Hour)))
	require.NoError(t, repo.UpsertWeakness(ctx, "c1", "implementation details", 1, t0))

	ws, err := repo.ListWeaknesses(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, ws, 2)

	assert.Equal(t, "time complexity understanding", ws[0].Area)
	assert.Equal(t, 2, ws[0].TimesEncountered)
	assert.Equal(t, 3, ws[0].Severity)
	assert.True(t, ws[0].LastEncountered.Equal(t0.Add(time.Hour)))
	assert.Equal(t, 1, ws[1].TimesEncountered)
}

func TestReviewSessions(t *testing.T) {
	s := openTestStore(t)
	repo := s.Repo()
	ctx := context.Background()
	seedConcept(t, repo, "c1", concept.LevelUnknown, 0, t0)

	first := &ReviewSession{ConceptID: "c1", Question: "q1", UserAnswer: "a1", Correct: true, Timestamp: t0}
	second := &ReviewSession{
		ConceptID:          "c1",
		Question:           "q2",
		UserAnswer:         "a2",
		Timestamp:          t0.Add(time.Minute),
		FollowUpQuestions:  2,
		WeaknessIdentified: true,
		SessionType:        SessionTypeConversation,
		ConversationData:   `[{"role":"tutor","content":"q2"}]`,
	}
	require.NoError(t, repo.AppendReviewSession(ctx, first))
	require.NoError(t, repo.AppendReviewSession(ctx, second))
	assert.NotEmpty(t, first.ID)

	got, err := repo.ListReviewSessions(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q2", got[0].Question)
	assert.Equal(t, SessionTypeConversation, got[0].SessionType)
	assert.Equal(t, second.ConversationData, got[0].ConversationData)
	assert.Equal(t, SessionTypePractice, got[1].SessionType)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	repo := s.Repo()
	ctx := context.Background()
	seedConcept(t, repo, "c1", concept.LevelLearning, 0, t0)

	err := repo.WithTx(ctx, func(tx Repo) error {
		if err := tx.UpdateMastery(ctx, MasteryUpdate{
			ConceptID: "c1", Mastery: concept.LevelMastered, ReviewCount: 1,
			LastReviewed: t0, NextReview: t0, ExpectReviewCount: 0,
		}); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	got, err := repo.GetConcept(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, concept.LevelLearning, got.Mastery)
	assert.Equal(t, 0, got.ReviewCount)
}

func TestMasteryHistogram(t *testing.T) {
	s := openTestStore(t)
	repo := s.Repo()
	seedConcept(t, repo, "a", concept.LevelUnknown, 0, t0)
	seedConcept(t, repo, "b", concept.LevelUnknown, 0, t0)
	seedConcept(t, repo, "c", concept.LevelMastered, 0, t0)

	hist, err := repo.MasteryHistogram(context.Background(), "algo-101")
	require.NoError(t, err)
	assert.Equal(t, 2, hist[concept.LevelUnknown])
	assert.Equal(t, 0, hist[concept.LevelLearning])
	assert.Equal(t, 1, hist[concept.LevelMastered])
}

func TestUpdateSections(t *testing.T) {
	s := openTestStore(t)
	repo := s.Repo()
	ctx := context.Background()

	c := &concept.Concept{
		ID: "c1", Name: "Heaps", NextReview: t0, CreatedAt: t0,
		Sections: []concept.Section{{ID: "s1", Title: "Shape"}, {ID: "s2", Title: "Order", Order: 1}},
	}
	require.NoError(t, repo.CreateConcept(ctx, c))

	c.Sections[1].Mastery = concept.LevelFamiliar
	c.Sections[1].TimesStudied = 3
	studied := t0.Add(time.Hour)
	c.Sections[1].LastStudied = &studied
	require.NoError(t, repo.UpdateSections(ctx, "c1", 1, c.Sections))

	got, err := repo.GetConcept(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentSection)
	assert.Equal(t, concept.LevelFamiliar, got.Sections[1].Mastery)
	assert.Equal(t, 3, got.Sections[1].TimesStudied)
	require.NotNil(t, got.Sections[1].LastStudied)
	assert.Nil(t, got.Sections[0].LastStudied)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	events := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, events.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "mock", Model: "m1", Purpose: "question-gen", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true,
	}))
	require.NoError(t, events.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "mock", Model: "m1", Purpose: "evaluation", InputTokens: 20, OutputTokens: 7, LatencyMs: 300,
		ErrorMessage: "boom",
	}))

	list, err := events.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "evaluation", list[0].Purpose)
	assert.False(t, list[0].Success)

	filtered, err := events.QueryLLMEvents(ctx, QueryOpts{Purpose: "question-gen"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	e, err := events.GetLLMEvent(ctx, filtered[0].ID)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, 10, e.InputTokens)

	missing, err := events.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byModel, err := events.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	assert.Equal(t, 2, byModel[0].Calls)
	assert.Equal(t, 30, byModel[0].InputTokens)
	assert.Equal(t, int64(200), byModel[0].AvgLatencyMs)
}

func ids(cs []*concept.Concept) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}
