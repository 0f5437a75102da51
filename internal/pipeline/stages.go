// Package pipeline defines the hiring stage machine: the ordered stages, the sub-stages
// each stage allows, and the rules for moving an application between them.
package pipeline

import (
	"slices"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

// StageDefinition describes one stage. The first sub-stage is the one an application
// lands on when it enters the stage.
type StageDefinition struct {
	Stage       types.Stage
	DisplayName string
	SubStages   []types.SubStage
}

// stageRegistry holds every stage in canonical order
var stageRegistry = []StageDefinition{
	{
		Stage:       types.StageInReview,
		DisplayName: "In Review",
		SubStages: []types.SubStage{
			types.SubStagePending,
			types.SubStageProfileReviewed,
			types.SubStageRejected,
		},
	},
	{
		Stage:       types.StageShortlisted,
		DisplayName: "Shortlisted",
		SubStages: []types.SubStage{
			types.SubStageReadyForInterview,
			types.SubStageContacted,
			types.SubStageRejected,
		},
	},
	{
		Stage:       types.StageInterview,
		DisplayName: "Interview",
		SubStages: []types.SubStage{
			types.SubStageNotScheduled,
			types.SubStageScheduled,
			types.SubStageCompleted,
			types.SubStageEvaluationPending,
			types.SubStageRejected,
		},
	},
	{
		Stage:       types.StageTechnicalTask,
		DisplayName: "Technical Task",
		SubStages: []types.SubStage{
			types.SubStageNotAssigned,
			types.SubStageAssigned,
			types.SubStageSubmitted,
			types.SubStageUnderReview,
			types.SubStageCompleted,
			types.SubStageRejected,
		},
	},
	{
		Stage:       types.StageCompensation,
		DisplayName: "Compensation",
		SubStages: []types.SubStage{
			types.SubStageInitiated,
			types.SubStageNegotiating,
			types.SubStageApproved,
			types.SubStageRejected,
		},
	},
	{
		Stage:       types.StageOffer,
		DisplayName: "Offer",
		SubStages: []types.SubStage{
			types.SubStageNotSent,
			types.SubStageSent,
			types.SubStageSigned,
			types.SubStageDeclined,
			types.SubStageHired,
			types.SubStageRejected,
		},
	},
}

var subStageNames = map[types.SubStage]string{
	types.SubStagePending:           "Pending",
	types.SubStageProfileReviewed:   "Profile Reviewed",
	types.SubStageReadyForInterview: "Ready for Interview",
	types.SubStageContacted:         "Contacted",
	types.SubStageNotScheduled:      "Not Scheduled",
	types.SubStageScheduled:         "Scheduled",
	types.SubStageCompleted:         "Completed",
	types.SubStageEvaluationPending: "Evaluation Pending",
	types.SubStageNotAssigned:       "Not Assigned",
	types.SubStageAssigned:          "Assigned",
	types.SubStageSubmitted:         "Submitted",
	types.SubStageUnderReview:       "Under Review",
	types.SubStageInitiated:         "Initiated",
	types.SubStageNegotiating:       "Negotiating",
	types.SubStageApproved:          "Approved",
	types.SubStageNotSent:           "Not Sent",
	types.SubStageSent:              "Sent",
	types.SubStageSigned:            "Signed",
	types.SubStageDeclined:          "Declined",
	types.SubStageHired:             "Hired",
	types.SubStageRejected:          "Rejected",
}

// Stages returns all stages in canonical order.
func Stages() []types.Stage {
	out := make([]types.Stage, len(stageRegistry))
	for i, def := range stageRegistry {
		out[i] = def.Stage
	}
	return out
}

func lookup(stage types.Stage) (StageDefinition, int, bool) {
	for i, def := range stageRegistry {
		if def.Stage == stage {
			return def, i, true
		}
	}
	return StageDefinition{}, -1, false
}

// order returns the canonical position of stage, or -1 for an unknown stage.
func order(stage types.Stage) int {
	_, idx, _ := lookup(stage)
	return idx
}

// IsValidStage reports whether stage is a known stage.
func IsValidStage(stage types.Stage) bool {
	_, _, ok := lookup(stage)
	return ok
}

// StageDisplayName returns the human readable name of stage, or the raw value when unknown.
func StageDisplayName(stage types.Stage) string {
	if def, _, ok := lookup(stage); ok {
		return def.DisplayName
	}
	return string(stage)
}

// SubStages returns the sub-stages allowed in stage.
func SubStages(stage types.Stage) []types.SubStage {
	def, _, ok := lookup(stage)
	if !ok {
		return nil
	}
	return slices.Clone(def.SubStages)
}

// InitialSubStage returns the sub-stage an application is given on entering stage.
func InitialSubStage(stage types.Stage) types.SubStage {
	def, _, ok := lookup(stage)
	if !ok {
		return ""
	}
	return def.SubStages[0]
}

// IsValidSubStage reports whether sub belongs to stage.
func IsValidSubStage(stage types.Stage, sub types.SubStage) bool {
	def, _, ok := lookup(stage)
	return ok && slices.Contains(def.SubStages, sub)
}

// SubStageDisplayName returns the human readable name of sub.
func SubStageDisplayName(sub types.SubStage) string {
	if name, ok := subStageNames[sub]; ok {
		return name
	}
	return string(sub)
}

// IsTerminal reports whether an application on sub can no longer move.
func IsTerminal(sub types.SubStage) bool {
	switch sub {
	case types.SubStageRejected, types.SubStageDeclined, types.SubStageHired:
		return true
	}
	return false
}
