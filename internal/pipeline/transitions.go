package pipeline

import (
	"fmt"
	"slices"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

// NormalizeEnabled dedupes stages and sorts them into canonical order.
// An empty input enables every stage. In Review is always required.
func NormalizeEnabled(stages []types.Stage) ([]types.Stage, error) {
	if len(stages) == 0 {
		return Stages(), nil
	}
	seen := make(map[types.Stage]bool, len(stages))
	for _, s := range stages {
		if !IsValidStage(s) {
			return nil, types.Invalid("enabled_stages", fmt.Sprintf("unknown stage %q", s))
		}
		seen[s] = true
	}
	if !seen[types.StageInReview] {
		return nil, types.Invalid("enabled_stages", "in_review must be enabled")
	}
	out := make([]types.Stage, 0, len(seen))
	for _, s := range Stages() {
		if seen[s] {
			out = append(out, s)
		}
	}
	return out, nil
}

// NextStage returns the first enabled stage after current in canonical order.
func NextStage(current types.Stage, enabled []types.Stage) (types.Stage, bool) {
	pos := order(current)
	if pos < 0 {
		return "", false
	}
	for _, s := range Stages()[pos+1:] {
		if slices.Contains(enabled, s) {
			return s, true
		}
	}
	return "", false
}

// HasNextStages reports whether any enabled stage follows current.
func HasNextStages(current types.Stage, enabled []types.Stage) bool {
	_, ok := NextStage(current, enabled)
	return ok
}

// ValidateMove checks that an application at (current, currentSub) may move to target.
// Only forward moves into enabled stages are allowed; skipping enabled stages is permitted.
func ValidateMove(current types.Stage, currentSub types.SubStage, target types.Stage, enabled []types.Stage) error {
	if !IsValidStage(target) {
		return types.Invalid("stage", fmt.Sprintf("unknown stage %q", target))
	}
	if !slices.Contains(enabled, target) {
		return types.Invalid("stage", fmt.Sprintf("stage %s is not enabled for this job", StageDisplayName(target)))
	}
	if IsTerminal(currentSub) {
		return types.Invalid("stage", fmt.Sprintf("application is %s and can no longer move", SubStageDisplayName(currentSub)))
	}
	if target == current {
		return types.Invalid("stage", fmt.Sprintf("application is already in %s", StageDisplayName(target)))
	}
	if order(target) < order(current) {
		return types.Invalid("stage", fmt.Sprintf("cannot move back from %s to %s", StageDisplayName(current), StageDisplayName(target)))
	}
	return nil
}

// ValidateSubStage checks that an application in stage may change from currentSub to next.
func ValidateSubStage(stage types.Stage, currentSub, next types.SubStage) error {
	if !IsValidSubStage(stage, next) {
		return types.Invalid("sub_stage", fmt.Sprintf("%q is not a sub-stage of %s", next, StageDisplayName(stage)))
	}
	if IsTerminal(currentSub) {
		return types.Invalid("sub_stage", fmt.Sprintf("application is %s and can no longer move", SubStageDisplayName(currentSub)))
	}
	if next == currentSub {
		return types.Invalid("sub_stage", fmt.Sprintf("application is already %s", SubStageDisplayName(next)))
	}
	return nil
}

// ValidateReject checks that an application on currentSub can be rejected.
func ValidateReject(currentSub types.SubStage) error {
	if IsTerminal(currentSub) {
		return types.Invalid("sub_stage", fmt.Sprintf("application is %s and can no longer move", SubStageDisplayName(currentSub)))
	}
	return nil
}

// Advance returns the sub-stage a child event moves the application to, if the current
// stage defines one. Sub-stages only move forward through the stage's table, so a
// terminal, unchanged or later current sub-stage yields false.
func Advance(stage types.Stage, currentSub, want types.SubStage) (types.SubStage, bool) {
	if IsTerminal(currentSub) || !IsValidSubStage(stage, want) {
		return "", false
	}
	subs := SubStages(stage)
	if slices.Index(subs, currentSub) >= slices.Index(subs, want) {
		return "", false
	}
	return want, true
}
