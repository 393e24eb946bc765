package llm

import (
	"context"
	"slices"
)

// Purposes recorded on every llm_requests row.
const (
	PurposeQuestion       = "question"
	PurposeEvaluate       = "evaluate"
	PurposeEvaluateScored = "evaluate-scored"
	PurposeWeakness       = "weakness"
	PurposeGuide          = "guide"
	PurposeAnswer         = "answer"
	PurposeExtract        = "extract"
	PurposeUnknown        = "unknown"
)

var purposes = []string{
	PurposeQuestion,
	PurposeEvaluate,
	PurposeEvaluateScored,
	PurposeWeakness,
	PurposeGuide,
	PurposeAnswer,
	PurposeExtract,
}

type purposeKey struct{}

// WithPurpose labels the calls made with ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return PurposeUnknown
}

// Purposes lists the labels the study flows attach to model calls.
func Purposes() []string {
	return slices.Clone(purposes)
}

// KnownPurpose reports whether p is one of Purposes.
func KnownPurpose(p string) bool {
	return slices.Contains(purposes, p)
}
