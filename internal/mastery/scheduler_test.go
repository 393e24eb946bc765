package mastery

import (
	"testing"
	"time"

	"github.com/abhisek/studyagent/internal/concept"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newConcept(level concept.Level, streak int) *concept.Concept {
	return &concept.Concept{
		ID:            "c1",
		Name:          "Hash Tables",
		Mastery:       level,
		CorrectStreak: streak,
		ReviewCount:   4,
		CreatedAt:     testNow.Add(-72 * time.Hour),
		NextReview:    testNow,
	}
}

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func TestIntervalTable(t *testing.T) {
	want := map[concept.Level]int{
		concept.LevelUnknown:    1,
		concept.LevelLearning:   2,
		concept.LevelFamiliar:   4,
		concept.LevelProficient: 7,
		concept.LevelMastered:   14,
	}
	for level, d := range want {
		if got := IntervalDays(level); got != d {
			t.Errorf("IntervalDays(%s) = %d, want %d", level, got, d)
		}
	}
}

func TestStreakPolicy_PromotesOnThirdSuccess(t *testing.T) {
	s := NewScheduler(StreakPolicy{Threshold: 3})
	c := newConcept(concept.LevelLearning, 0)

	for i := 1; i <= 2; i++ {
		u := s.Apply(c, true, 0, testNow)
		if u.Mastery != concept.LevelLearning {
			t.Fatalf("answer %d: mastery = %s, want LEARNING", i, u.Mastery)
		}
		if u.CorrectStreak != i {
			t.Fatalf("answer %d: streak = %d, want %d", i, u.CorrectStreak, i)
		}
		u.ApplyTo(c)
	}

	u := s.Apply(c, true, 0, testNow)
	if u.Mastery != concept.LevelFamiliar {
		t.Fatalf("mastery = %s, want FAMILIAR", u.Mastery)
	}
	if u.CorrectStreak != 0 {
		t.Errorf("streak = %d, want reset to 0", u.CorrectStreak)
	}
	if !u.Transition.Promoted() {
		t.Error("expected a promotion transition")
	}
	if got := u.NextReview.Sub(testNow); got != days(4) {
		t.Errorf("next review in %s, want 4 days", got)
	}
}

func TestStreakPolicy_PromotionCountMatchesStreaks(t *testing.T) {
	s := NewScheduler(StreakPolicy{Threshold: 3})
	c := newConcept(concept.LevelUnknown, 0)

	for n := 1; n <= 20; n++ {
		prev := c.Mastery
		u := s.Apply(c, true, 0, testNow)
		if u.Mastery-prev > 1 {
			t.Fatalf("answer %d jumped from %s to %s", n, prev, u.Mastery)
		}
		u.ApplyTo(c)

		want := concept.Level(n / 3)
		if want > concept.LevelMastered {
			want = concept.LevelMastered
		}
		if c.Mastery != want {
			t.Fatalf("after %d successes mastery = %s, want %s", n, c.Mastery, want)
		}
	}
}

func TestStreakPolicy_ThreeSuccessesFromUnknownDoNotMaster(t *testing.T) {
	s := NewScheduler(nil)
	c := newConcept(concept.LevelUnknown, 0)
	for range 3 {
		s.Apply(c, true, 0, testNow).ApplyTo(c)
	}
	if c.Mastery != concept.LevelLearning {
		t.Errorf("mastery = %s, want LEARNING", c.Mastery)
	}
}

func TestStreakPolicy_FailureDemotesToFloor(t *testing.T) {
	s := NewScheduler(StreakPolicy{})

	tests := []struct {
		from concept.Level
		want concept.Level
	}{
		{concept.LevelMastered, concept.LevelProficient},
		{concept.LevelFamiliar, concept.LevelLearning},
		{concept.LevelLearning, concept.LevelLearning},
		{concept.LevelUnknown, concept.LevelUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			u := s.Apply(newConcept(tt.from, 2), false, 0, testNow)
			if u.Mastery != tt.want {
				t.Errorf("mastery = %s, want %s", u.Mastery, tt.want)
			}
			if u.CorrectStreak != 0 {
				t.Errorf("streak = %d, want 0", u.CorrectStreak)
			}
			if got := u.NextReview.Sub(testNow); got != days(1) {
				t.Errorf("next review in %s, want 1 day", got)
			}
		})
	}
}

func TestApply_HintsBreakStreak(t *testing.T) {
	s := NewScheduler(StreakPolicy{})
	u := s.Apply(newConcept(concept.LevelFamiliar, 2), true, 1, testNow)

	if u.Success {
		t.Error("answer with hints should not count as a clean success")
	}
	if u.CorrectStreak != 0 {
		t.Errorf("streak = %d, want 0", u.CorrectStreak)
	}
	if u.Mastery != concept.LevelLearning {
		t.Errorf("mastery = %s, want LEARNING", u.Mastery)
	}
	// A correct answer still earns the level's interval.
	if got := u.NextReview.Sub(testNow); got != days(2) {
		t.Errorf("next review in %s, want 2 days", got)
	}
}

func TestApply_PersistedFields(t *testing.T) {
	s := NewScheduler(nil)
	c := newConcept(concept.LevelProficient, 0)
	u := s.Apply(c, true, 0, testNow)

	if u.ReviewCount != 5 || u.PrevReviewCount != 4 {
		t.Errorf("review count = %d (prev %d), want 5 (prev 4)", u.ReviewCount, u.PrevReviewCount)
	}
	if !u.LastReviewed.Equal(testNow) {
		t.Errorf("last reviewed = %v, want %v", u.LastReviewed, testNow)
	}
	if got := u.NextReview.Sub(testNow); got != days(7) {
		t.Errorf("next review in %s, want 7 days", got)
	}
	if c.ReviewCount != 4 {
		t.Error("Apply must not mutate the input concept")
	}
}

func TestApply_MasteredStaysMastered(t *testing.T) {
	s := NewScheduler(StreakPolicy{Threshold: 1})
	u := s.Apply(newConcept(concept.LevelMastered, 0), true, 0, testNow)
	if u.Mastery != concept.LevelMastered {
		t.Errorf("mastery = %s, want MASTERED", u.Mastery)
	}
	if u.Transition != nil {
		t.Errorf("unexpected transition %+v", u.Transition)
	}
	if got := u.NextReview.Sub(testNow); got != days(14) {
		t.Errorf("next review in %s, want 14 days", got)
	}
}

func TestApply_NextReviewNotBeforeCreation(t *testing.T) {
	s := NewScheduler(EagerPolicy{})
	c := newConcept(concept.LevelUnknown, 0)
	c.CreatedAt = testNow.Add(time.Hour)

	u := s.Apply(c, false, 0, testNow)
	if u.NextReview.Before(c.CreatedAt) {
		t.Errorf("next review %v precedes creation %v", u.NextReview, c.CreatedAt)
	}
}

func TestEagerPolicy_ImmediatePromotionFromUnknown(t *testing.T) {
	s := NewScheduler(EagerPolicy{})
	u := s.Apply(newConcept(concept.LevelUnknown, 0), true, 0, testNow)

	if u.Mastery != concept.LevelLearning {
		t.Fatalf("mastery = %s, want LEARNING", u.Mastery)
	}
	if u.CorrectStreak != 0 {
		t.Errorf("streak = %d, want 0", u.CorrectStreak)
	}
	if got := u.NextReview.Sub(testNow); got != days(2) {
		t.Errorf("next review in %s, want 2 days", got)
	}
}

func TestEagerPolicy_PromotesAfterTwo(t *testing.T) {
	s := NewScheduler(EagerPolicy{})
	c := newConcept(concept.LevelLearning, 0)

	s.Apply(c, true, 0, testNow).ApplyTo(c)
	if c.Mastery != concept.LevelLearning || c.CorrectStreak != 1 {
		t.Fatalf("after one success: %s streak %d", c.Mastery, c.CorrectStreak)
	}
	s.Apply(c, true, 0, testNow).ApplyTo(c)
	if c.Mastery != concept.LevelFamiliar || c.CorrectStreak != 0 {
		t.Fatalf("after two successes: %s streak %d", c.Mastery, c.CorrectStreak)
	}
}

func TestEagerPolicy_UnknownStaysDue(t *testing.T) {
	s := NewScheduler(EagerPolicy{})
	u := s.Apply(newConcept(concept.LevelLearning, 1), false, 0, testNow)

	if u.Mastery != concept.LevelUnknown {
		t.Fatalf("mastery = %s, want UNKNOWN", u.Mastery)
	}
	if !u.NextReview.Equal(testNow) {
		t.Errorf("next review = %v, want now", u.NextReview)
	}
	if u.Transition == nil || u.Transition.Trigger != "demotion" {
		t.Errorf("expected demotion transition, got %+v", u.Transition)
	}
}

func TestApplySection(t *testing.T) {
	s := NewScheduler(StreakPolicy{Threshold: 3})
	sec := &concept.Section{ID: "s1", Mastery: concept.LevelLearning, CorrectStreak: 2}

	s.ApplySection(sec, true, 0, testNow)
	if sec.Mastery != concept.LevelFamiliar || sec.CorrectStreak != 0 {
		t.Errorf("section = %s streak %d, want FAMILIAR streak 0", sec.Mastery, sec.CorrectStreak)
	}
	if sec.TimesStudied != 1 || sec.LastStudied == nil {
		t.Errorf("study bookkeeping not updated: %+v", sec)
	}
}

func TestPolicyByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", PolicyStreak, false},
		{"streak", PolicyStreak, false},
		{"eager", PolicyEager, false},
		{"sm2", "", true},
	}
	for _, tt := range tests {
		p, err := PolicyByName(tt.name, 0)
		if (err != nil) != tt.wantErr {
			t.Errorf("PolicyByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err == nil && p.Name() != tt.want {
			t.Errorf("PolicyByName(%q) = %s, want %s", tt.name, p.Name(), tt.want)
		}
	}
}
