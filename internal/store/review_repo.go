package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

func (r *sqlRepo) AppendReviewSession(ctx context.Context, rs *ReviewSession) error {
	if rs.ID == "" {
		rs.ID = uuid.NewString()
	}
	if rs.Timestamp.IsZero() {
		rs.Timestamp = time.Now()
	}
	if rs.SessionType == "" {
		rs.SessionType = SessionTypePractice
	}

	query, args := r.builder().Insert(tableSessions).
		Columns("id", "concept_id", "question", "user_answer", "correct", "timestamp",
			"hints_used", "follow_up_questions", "weakness_identified", "feedback",
			"session_type", "conversation_data").
		Values(rs.ID, rs.ConceptID, rs.Question, rs.UserAnswer, rs.Correct, ts(rs.Timestamp),
			rs.HintsUsed, rs.FollowUpQuestions, rs.WeaknessIdentified, rs.Feedback,
			rs.SessionType, rs.ConversationData).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert review session: %w", err)
	}
	return nil
}

func (r *sqlRepo) ListReviewSessions(ctx context.Context, conceptID string, limit int) ([]ReviewSession, error) {
	sel := r.builder().Select("id", "concept_id", "question", "user_answer", "correct", "timestamp",
		"hints_used", "follow_up_questions", "weakness_identified", "feedback",
		"session_type", "conversation_data").
		From(entsql.Table(tableSessions)).
		Where(entsql.EQ("concept_id", conceptID)).
		OrderBy(entsql.Desc("timestamp"))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query review sessions: %w", err)
	}
	defer rows.Close()

	var out []ReviewSession
	for rows.Next() {
		var rs ReviewSession
		if err := rows.Scan(&rs.ID, &rs.ConceptID, &rs.Question, &rs.UserAnswer, &rs.Correct,
			&rs.Timestamp, &rs.HintsUsed, &rs.FollowUpQuestions, &rs.WeaknessIdentified,
			&rs.Feedback, &rs.SessionType, &rs.ConversationData); err != nil {
			return nil, fmt.Errorf("scan review session: %w", err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

func (r *sqlRepo) UpsertWeakness(ctx context.Context, conceptID, area string, severity int, at time.Time) error {
	query, args := r.builder().Insert(tableWeaknesses).
		Columns("concept_id", "area", "severity", "times_encountered", "last_encountered").
		Values(conceptID, area, severity, 1, ts(at)).
		OnConflict(
			entsql.ConflictColumns("concept_id", "area"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("severity")
				u.SetExcluded("last_encountered")
				u.Add("times_encountered", 1)
			}),
		).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert weakness %q: %w", area, err)
	}
	return nil
}

func (r *sqlRepo) ListWeaknesses(ctx context.Context, conceptID string) ([]Weakness, error) {
	query, args := r.builder().Select("concept_id", "area", "severity", "times_encountered", "last_encountered").
		From(entsql.Table(tableWeaknesses)).
		Where(entsql.EQ("concept_id", conceptID)).
		OrderBy(entsql.Desc("severity"), entsql.Desc("times_encountered")).
		Query()

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query weaknesses: %w", err)
	}
	defer rows.Close()

	var out []Weakness
	for rows.Next() {
		var w Weakness
		if err := rows.Scan(&w.ConceptID, &w.Area, &w.Severity, &w.TimesEncountered, &w.LastEncountered); err != nil {
			return nil, fmt.Errorf("scan weakness: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
