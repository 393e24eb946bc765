package session

import (
	"context"
	"fmt"
	"math"

	"github.com/abhisek/studyagent/internal/concept"
	"github.com/abhisek/studyagent/internal/store"
)

// Progress summarizes mastery across a class.
type Progress struct {
	Total     int
	Due       int
	Histogram map[concept.Level]int

	// AverageMastery is the mean level (0-4), rounded to two decimals.
	AverageMastery float64
}

// Count returns the number of concepts at level l.
func (p *Progress) Count(l concept.Level) int {
	return p.Histogram[l]
}

// Progress reports totals for classID ("" for all classes).
func (o *Orchestrator) Progress(ctx context.Context, classID string) (*Progress, error) {
	hist, err := o.repo.MasteryHistogram(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("progress: %w", err)
	}

	due, err := o.repo.CountDue(ctx, store.DueQuery{
		ClassID:           classID,
		Now:               o.now(),
		IncludeStruggling: o.includeStruggling(),
	})
	if err != nil {
		return nil, fmt.Errorf("progress: %w", err)
	}

	p := &Progress{Due: due, Histogram: make(map[concept.Level]int, len(hist))}
	sum := 0
	for level, n := range hist {
		p.Histogram[level] = n
		p.Total += n
		sum += int(level) * n
	}
	if p.Total > 0 {
		p.AverageMastery = math.Round(float64(sum)/float64(p.Total)*100) / 100
	}
	return p, nil
}
