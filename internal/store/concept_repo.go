package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/studyagent/internal/concept"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqlRepo implements Repo on top of database/sql with ent's query builders.
// db is nil when the repo is bound to a transaction.
type sqlRepo struct {
	q       querier
	db      *sql.DB
	dialect string
}

func (r *sqlRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

func (r *sqlRepo) WithTx(ctx context.Context, fn func(Repo) error) error {
	if r.db == nil {
		// Already inside a transaction.
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&sqlRepo{q: tx, dialect: r.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ts normalizes timestamps so stored values compare correctly as text in
// SQLite and fit Postgres precision.
func ts(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

var conceptSelectColumns = []string{
	"id", "class_id", "name", "content", "mastery", "review_count",
	"correct_streak", "difficulty", "last_reviewed", "next_review",
	"created_at", "current_section",
}

func (r *sqlRepo) CreateConcept(ctx context.Context, c *concept.Concept) error {
	if c.ClassID == "" {
		c.ClassID = concept.DefaultClassID
	}
	if c.Difficulty == 0 {
		c.Difficulty = concept.DifficultyBasic
	}

	var lastReviewed any
	if c.LastReviewed != nil {
		lastReviewed = ts(*c.LastReviewed)
	}

	query, args := r.builder().Insert(tableConcepts).
		Columns(conceptSelectColumns...).
		Values(
			c.ID, c.ClassID, c.Name, c.Content, int(c.Mastery), c.ReviewCount,
			c.CorrectStreak, int(c.Difficulty), lastReviewed, ts(c.NextReview),
			ts(c.CreatedAt), c.CurrentSection,
		).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert concept: %w", err)
	}

	for i := range c.Sections {
		if err := r.insertSection(ctx, c.ID, &c.Sections[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *sqlRepo) insertSection(ctx context.Context, conceptID string, s *concept.Section) error {
	var lastStudied any
	if s.LastStudied != nil {
		lastStudied = ts(*s.LastStudied)
	}

	query, args := r.builder().Insert(tableSections).
		Columns("concept_id", "section_id", "title", "content", "ord",
			"mastery", "correct_streak", "times_studied", "last_studied").
		Values(conceptID, s.ID, s.Title, s.Content, s.Order,
			int(s.Mastery), s.CorrectStreak, s.TimesStudied, lastStudied).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert section %q: %w", s.ID, err)
	}
	return nil
}

func (r *sqlRepo) GetConcept(ctx context.Context, id string) (*concept.Concept, error) {
	query, args := r.builder().Select(conceptSelectColumns...).
		From(entsql.Table(tableConcepts)).
		Where(entsql.EQ("id", id)).
		Query()

	c, err := scanConcept(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("concept %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get concept: %w", err)
	}

	if err := r.loadSections(ctx, []*concept.Concept{c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *sqlRepo) ListConcepts(ctx context.Context, classID string) ([]*concept.Concept, error) {
	sel := r.builder().Select(conceptSelectColumns...).
		From(entsql.Table(tableConcepts)).
		OrderBy("next_review", "created_at")
	if classID != "" {
		sel.Where(entsql.EQ("class_id", classID))
	}
	return r.queryConcepts(ctx, sel)
}

func (r *sqlRepo) ListDue(ctx context.Context, q DueQuery) ([]*concept.Concept, error) {
	sel := r.builder().Select(conceptSelectColumns...).
		From(entsql.Table(tableConcepts)).
		Where(duePredicate(q)).
		OrderBy(entsql.Asc("mastery"), entsql.Asc("next_review"), entsql.Asc("correct_streak"))
	return r.queryConcepts(ctx, sel)
}

func (r *sqlRepo) CountDue(ctx context.Context, q DueQuery) (int, error) {
	query, args := r.builder().Select(entsql.Count("*")).
		From(entsql.Table(tableConcepts)).
		Where(duePredicate(q)).
		Query()

	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count due: %w", err)
	}
	return n, nil
}

func duePredicate(q DueQuery) *entsql.Predicate {
	due := entsql.LTE("next_review", ts(q.Now))
	if q.IncludeStruggling {
		due = entsql.Or(due, entsql.And(
			entsql.EQ("mastery", int(concept.LevelUnknown)),
			entsql.LT("correct_streak", 3),
		))
	}
	if q.ClassID != "" {
		return entsql.And(entsql.EQ("class_id", q.ClassID), due)
	}
	return due
}

func (r *sqlRepo) MasteryHistogram(ctx context.Context, classID string) (map[concept.Level]int, error) {
	sel := r.builder().Select("mastery", entsql.Count("*")).
		From(entsql.Table(tableConcepts)).
		GroupBy("mastery")
	if classID != "" {
		sel.Where(entsql.EQ("class_id", classID))
	}

	query, args := sel.Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("mastery histogram: %w", err)
	}
	defer rows.Close()

	hist := make(map[concept.Level]int, len(concept.AllLevels()))
	for _, l := range concept.AllLevels() {
		hist[l] = 0
	}
	for rows.Next() {
		var level, n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, fmt.Errorf("scan histogram: %w", err)
		}
		hist[concept.Level(level)] = n
	}
	return hist, rows.Err()
}

func (r *sqlRepo) UpdateMastery(ctx context.Context, u MasteryUpdate) error {
	where := entsql.EQ("id", u.ConceptID)
	if u.ExpectReviewCount >= 0 {
		where = entsql.And(where, entsql.EQ("review_count", u.ExpectReviewCount))
	}

	query, args := r.builder().Update(tableConcepts).
		Set("mastery", int(u.Mastery)).
		Set("correct_streak", u.CorrectStreak).
		Set("review_count", u.ReviewCount).
		Set("last_reviewed", ts(u.LastReviewed)).
		Set("next_review", ts(u.NextReview)).
		Where(where).
		Query()

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update mastery: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update mastery: %w", err)
	}
	if n > 0 {
		return nil
	}

	if _, err := r.GetConcept(ctx, u.ConceptID); err != nil {
		return err
	}
	return fmt.Errorf("concept %q: %w", u.ConceptID, ErrConflict)
}

func (r *sqlRepo) UpdateSections(ctx context.Context, conceptID string, current int, sections []concept.Section) error {
	query, args := r.builder().Update(tableConcepts).
		Set("current_section", current).
		Where(entsql.EQ("id", conceptID)).
		Query()
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update current section: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("concept %q: %w", conceptID, ErrNotFound)
	}

	for _, s := range sections {
		upd := r.builder().Update(tableSections).
			Set("mastery", int(s.Mastery)).
			Set("correct_streak", s.CorrectStreak).
			Set("times_studied", s.TimesStudied)
		if s.LastStudied != nil {
			upd.Set("last_studied", ts(*s.LastStudied))
		} else {
			upd.SetNull("last_studied")
		}
		query, args := upd.Where(entsql.And(
			entsql.EQ("concept_id", conceptID),
			entsql.EQ("section_id", s.ID),
		)).Query()
		if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update section %q: %w", s.ID, err)
		}
	}
	return nil
}

func (r *sqlRepo) queryConcepts(ctx context.Context, sel *entsql.Selector) ([]*concept.Concept, error) {
	query, args := sel.Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query concepts: %w", err)
	}
	defer rows.Close()

	var out []*concept.Concept
	for rows.Next() {
		c, err := scanConcept(rows)
		if err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.loadSections(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadSections attaches sections to the given concepts with one query.
func (r *sqlRepo) loadSections(ctx context.Context, cs []*concept.Concept) error {
	if len(cs) == 0 {
		return nil
	}

	byID := make(map[string]*concept.Concept, len(cs))
	ids := make([]any, 0, len(cs))
	for _, c := range cs {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	query, args := r.builder().Select("concept_id", "section_id", "title", "content", "ord",
		"mastery", "correct_streak", "times_studied", "last_studied").
		From(entsql.Table(tableSections)).
		Where(entsql.In("concept_id", ids...)).
		OrderBy("concept_id", "ord").
		Query()

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			conceptID   string
			s           concept.Section
			mastery     int
			lastStudied sql.NullTime
		)
		if err := rows.Scan(&conceptID, &s.ID, &s.Title, &s.Content, &s.Order,
			&mastery, &s.CorrectStreak, &s.TimesStudied, &lastStudied); err != nil {
			return fmt.Errorf("scan section: %w", err)
		}
		s.Mastery = concept.Level(mastery)
		if lastStudied.Valid {
			t := lastStudied.Time
			s.LastStudied = &t
		}
		if c, ok := byID[conceptID]; ok {
			c.Sections = append(c.Sections, s)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConcept(row rowScanner) (*concept.Concept, error) {
	var (
		c            concept.Concept
		mastery      int
		difficulty   int
		lastReviewed sql.NullTime
	)
	err := row.Scan(&c.ID, &c.ClassID, &c.Name, &c.Content, &mastery, &c.ReviewCount,
		&c.CorrectStreak, &difficulty, &lastReviewed, &c.NextReview,
		&c.CreatedAt, &c.CurrentSection)
	if err != nil {
		return nil, err
	}
	c.Mastery = concept.Level(mastery)
	c.Difficulty = concept.Difficulty(difficulty)
	if lastReviewed.Valid {
		t := lastReviewed.Time
		c.LastReviewed = &t
	}
	return &c, nil
}
