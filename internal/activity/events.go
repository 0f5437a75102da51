// Package activity turns domain events into audit rows on an application.
package activity

import "github.com/jonathan/hiring-pipeline/internal/types"

// Event is one domain occurrence worth recording. Each concrete type maps to exactly one
// activity type.
type Event interface {
	event()
}

type ApplicationSubmitted struct {
	JobTitle string
	Score    int
}

type ApplicationRescored struct {
	Previous int
	Score    int
}

type StageChanged struct {
	From    types.Stage
	To      types.Stage
	FromSub types.SubStage
	ToSub   types.SubStage
	Reason  string
}

type SubStageChanged struct {
	Stage types.Stage
	From  types.SubStage
	To    types.SubStage
}

type ApplicationRejected struct {
	Stage  types.Stage
	From   types.SubStage
	Reason string
}

type InterviewScheduled struct{ Interview *types.Interview }
type InterviewCompleted struct{ Interview *types.Interview }
type InterviewCancelled struct{ Interview *types.Interview }
type InterviewFeedbackAdded struct{ Interview *types.Interview }
type InterviewDetailsUpdated struct {
	Interview *types.Interview
	Fields    []string
}

type TaskAssigned struct{ Task *types.TechnicalTask }
type TaskSubmitted struct{ Task *types.TechnicalTask }
type TaskReviewStarted struct{ Task *types.TechnicalTask }
type TaskCompleted struct{ Task *types.TechnicalTask }
type TaskDeleted struct{ Task *types.TechnicalTask }
type TaskDetailsUpdated struct {
	Task   *types.TechnicalTask
	Fields []string
}

type OfferSent struct{ Offer *types.OfferDocument }
type OfferSigned struct{ Offer *types.OfferDocument }
type OfferDeclined struct{ Offer *types.OfferDocument }
type OfferDetailsUpdated struct {
	Offer  *types.OfferDocument
	Fields []string
}

type CompensationInitiated struct{ Compensation *types.Compensation }
type CompensationSent struct{ Compensation *types.Compensation }
type CompensationApproved struct{ Compensation *types.Compensation }
type CompensationDeclined struct{ Compensation *types.Compensation }
type CompensationDetailsUpdated struct {
	Compensation *types.Compensation
	Fields       []string
}

type MeetingScheduled struct{ Meeting *types.CompensationMeeting }
type MeetingCompleted struct{ Meeting *types.CompensationMeeting }
type MeetingCancelled struct{ Meeting *types.CompensationMeeting }
type MeetingDetailsUpdated struct {
	Meeting *types.CompensationMeeting
	Fields  []string
}

type CommentAdded struct{ Comment *types.Comment }

func (ApplicationSubmitted) event()       {}
func (ApplicationRescored) event()        {}
func (StageChanged) event()               {}
func (SubStageChanged) event()            {}
func (ApplicationRejected) event()        {}
func (InterviewScheduled) event()         {}
func (InterviewCompleted) event()         {}
func (InterviewCancelled) event()         {}
func (InterviewFeedbackAdded) event()     {}
func (InterviewDetailsUpdated) event()    {}
func (TaskAssigned) event()               {}
func (TaskSubmitted) event()              {}
func (TaskReviewStarted) event()          {}
func (TaskCompleted) event()              {}
func (TaskDeleted) event()                {}
func (TaskDetailsUpdated) event()         {}
func (OfferSent) event()                  {}
func (OfferSigned) event()                {}
func (OfferDeclined) event()              {}
func (OfferDetailsUpdated) event()        {}
func (CompensationInitiated) event()      {}
func (CompensationSent) event()           {}
func (CompensationApproved) event()       {}
func (CompensationDeclined) event()       {}
func (CompensationDetailsUpdated) event() {}
func (MeetingScheduled) event()           {}
func (MeetingCompleted) event()           {}
func (MeetingCancelled) event()           {}
func (MeetingDetailsUpdated) event()      {}
func (CommentAdded) event()               {}
