// Package types provides type definitions for structured data used throughout the hiring pipeline.
package types

// Stage is a top-level hiring pipeline phase.
type Stage string

// Pipeline stages in their canonical order.
const (
	StageInReview      Stage = "in_review"
	StageShortlisted   Stage = "shortlisted"
	StageInterview     Stage = "interview"
	StageTechnicalTask Stage = "technical_task"
	StageCompensation  Stage = "compensation"
	StageOffer         Stage = "offer"
)

// SubStage is a finer-grained status within a Stage.
type SubStage string

// In Review sub-stages
const (
	SubStagePending         SubStage = "pending"
	SubStageProfileReviewed SubStage = "profile_reviewed"
)

// Shortlisted sub-stages
const (
	SubStageReadyForInterview SubStage = "ready_for_interview"
	SubStageContacted         SubStage = "contacted"
)

// Interview sub-stages
const (
	SubStageNotScheduled      SubStage = "not_scheduled"
	SubStageScheduled         SubStage = "scheduled"
	SubStageCompleted         SubStage = "completed"
	SubStageEvaluationPending SubStage = "evaluation_pending"
)

// Technical Task sub-stages (completed is shared with Interview)
const (
	SubStageNotAssigned SubStage = "not_assigned"
	SubStageAssigned    SubStage = "assigned"
	SubStageSubmitted   SubStage = "submitted"
	SubStageUnderReview SubStage = "under_review"
)

// Compensation sub-stages
const (
	SubStageInitiated   SubStage = "initiated"
	SubStageNegotiating SubStage = "negotiating"
	SubStageApproved    SubStage = "approved"
)

// Offer sub-stages
const (
	SubStageNotSent  SubStage = "not_sent"
	SubStageSent     SubStage = "sent"
	SubStageSigned   SubStage = "signed"
	SubStageDeclined SubStage = "declined"
	SubStageHired    SubStage = "hired"
)

// SubStageRejected exists in every stage.
const SubStageRejected SubStage = "rejected"
