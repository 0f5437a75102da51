package activity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/hiring-pipeline/internal/pipeline"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// Entry is the rendered form of an Event
type Entry struct {
	Type        types.ActivityType
	Title       string
	Description string
	Metadata    map[string]string
}

const dateLayout = "Jan 2, 2006 15:04 MST"

// Describe maps an event to its activity type, title, description and metadata.
// It has no side effects.
func Describe(e Event) Entry {
	switch ev := e.(type) {
	case ApplicationSubmitted:
		return Entry{
			Type:        types.ActivityApplicationSubmitted,
			Title:       "Application Submitted",
			Description: fmt.Sprintf("Applied for %s", ev.JobTitle),
			Metadata:    map[string]string{"ats_score": strconv.Itoa(ev.Score)},
		}

	case ApplicationRescored:
		return Entry{
			Type:        types.ActivityApplicationRescored,
			Title:       "Resume Rescored",
			Description: fmt.Sprintf("ATS score changed from %d to %d", ev.Previous, ev.Score),
			Metadata: map[string]string{
				"previous_score": strconv.Itoa(ev.Previous),
				"ats_score":      strconv.Itoa(ev.Score),
			},
		}

	case StageChanged:
		desc := fmt.Sprintf("Moved from %s to %s", pipeline.StageDisplayName(ev.From), pipeline.StageDisplayName(ev.To))
		meta := map[string]string{
			"previous_stage":     string(ev.From),
			"next_stage":         string(ev.To),
			"previous_sub_stage": string(ev.FromSub),
			"next_sub_stage":     string(ev.ToSub),
		}
		if ev.Reason != "" {
			desc += ": " + ev.Reason
			meta["reason"] = ev.Reason
		}
		return Entry{
			Type:        types.ActivityStageChange,
			Title:       fmt.Sprintf("Moved to %s", pipeline.StageDisplayName(ev.To)),
			Description: desc,
			Metadata:    meta,
		}

	case SubStageChanged:
		return Entry{
			Type:  types.ActivitySubStageChange,
			Title: fmt.Sprintf("Status changed to %s", pipeline.SubStageDisplayName(ev.To)),
			Description: fmt.Sprintf("%s: %s to %s", pipeline.StageDisplayName(ev.Stage),
				pipeline.SubStageDisplayName(ev.From), pipeline.SubStageDisplayName(ev.To)),
			Metadata: map[string]string{
				"stage":              string(ev.Stage),
				"previous_sub_stage": string(ev.From),
				"next_sub_stage":     string(ev.To),
			},
		}

	case ApplicationRejected:
		meta := map[string]string{
			"stage":              string(ev.Stage),
			"previous_sub_stage": string(ev.From),
		}
		desc := fmt.Sprintf("Rejected at %s", pipeline.StageDisplayName(ev.Stage))
		if ev.Reason != "" {
			desc += ": " + ev.Reason
			meta["reason"] = ev.Reason
		}
		return Entry{Type: types.ActivityApplicationRejected, Title: "Application Rejected", Description: desc, Metadata: meta}

	case InterviewScheduled:
		iv := ev.Interview
		return Entry{
			Type:        types.ActivityInterviewScheduled,
			Title:       "Interview Scheduled",
			Description: fmt.Sprintf("%s (%s) scheduled for %s", iv.Title, iv.Type, iv.ScheduledDate.UTC().Format(dateLayout)),
			Metadata:    interviewMeta(iv),
		}
	case InterviewCompleted:
		iv := ev.Interview
		desc := fmt.Sprintf("%s completed", iv.Title)
		if iv.Rating != nil {
			desc += fmt.Sprintf(" with rating %d/5", *iv.Rating)
		}
		return Entry{Type: types.ActivityInterviewCompleted, Title: "Interview Completed", Description: desc, Metadata: interviewMeta(iv)}
	case InterviewCancelled:
		iv := ev.Interview
		desc := fmt.Sprintf("%s cancelled", iv.Title)
		if iv.CancelReason != "" {
			desc += ": " + iv.CancelReason
		}
		return Entry{Type: types.ActivityInterviewCancelled, Title: "Interview Cancelled", Description: desc, Metadata: interviewMeta(iv)}
	case InterviewFeedbackAdded:
		iv := ev.Interview
		desc := fmt.Sprintf("Feedback recorded for %s", iv.Title)
		if iv.Rating != nil {
			desc += fmt.Sprintf(" (rating %d/5)", *iv.Rating)
		}
		return Entry{Type: types.ActivityInterviewFeedbackAdded, Title: "Interview Feedback Added", Description: desc, Metadata: interviewMeta(iv)}
	case InterviewDetailsUpdated:
		return Entry{
			Type:        types.ActivityInterviewUpdated,
			Title:       "Interview Updated",
			Description: fmt.Sprintf("%s updated: %s", ev.Interview.Title, strings.Join(ev.Fields, ", ")),
			Metadata:    withFields(interviewMeta(ev.Interview), ev.Fields),
		}

	case TaskAssigned:
		desc := fmt.Sprintf("%s assigned", ev.Task.Title)
		if ev.Task.DueDate != nil {
			desc += fmt.Sprintf(", due %s", ev.Task.DueDate.UTC().Format(dateLayout))
		}
		return Entry{Type: types.ActivityTaskAssigned, Title: "Technical Task Assigned", Description: desc, Metadata: taskMeta(ev.Task)}
	case TaskSubmitted:
		return Entry{Type: types.ActivityTaskSubmitted, Title: "Technical Task Submitted", Description: fmt.Sprintf("%s submitted", ev.Task.Title), Metadata: taskMeta(ev.Task)}
	case TaskReviewStarted:
		return Entry{Type: types.ActivityTaskUnderReview, Title: "Technical Task Under Review", Description: fmt.Sprintf("Review started for %s", ev.Task.Title), Metadata: taskMeta(ev.Task)}
	case TaskCompleted:
		desc := fmt.Sprintf("%s reviewed", ev.Task.Title)
		if ev.Task.Rating != nil {
			desc += fmt.Sprintf(" with rating %d/5", *ev.Task.Rating)
		}
		return Entry{Type: types.ActivityTaskCompleted, Title: "Technical Task Completed", Description: desc, Metadata: taskMeta(ev.Task)}
	case TaskDeleted:
		return Entry{Type: types.ActivityTaskDeleted, Title: "Technical Task Deleted", Description: fmt.Sprintf("%s was withdrawn", ev.Task.Title), Metadata: taskMeta(ev.Task)}
	case TaskDetailsUpdated:
		return Entry{
			Type:        types.ActivityTaskUpdated,
			Title:       "Technical Task Updated",
			Description: fmt.Sprintf("%s updated: %s", ev.Task.Title, strings.Join(ev.Fields, ", ")),
			Metadata:    withFields(taskMeta(ev.Task), ev.Fields),
		}

	case OfferSent:
		return Entry{Type: types.ActivityOfferSent, Title: "Offer Sent", Description: offerDescription("Offer letter sent", ev.Offer), Metadata: offerMeta(ev.Offer)}
	case OfferSigned:
		return Entry{Type: types.ActivityOfferAccepted, Title: "Offer Accepted", Description: "Candidate signed the offer letter", Metadata: offerMeta(ev.Offer)}
	case OfferDeclined:
		desc := "Candidate declined the offer"
		if ev.Offer.DeclineReason != "" {
			desc += ": " + ev.Offer.DeclineReason
		}
		return Entry{Type: types.ActivityOfferDeclined, Title: "Offer Declined", Description: desc, Metadata: offerMeta(ev.Offer)}
	case OfferDetailsUpdated:
		return Entry{
			Type:        types.ActivityOfferUpdated,
			Title:       "Offer Updated",
			Description: fmt.Sprintf("Offer updated: %s", strings.Join(ev.Fields, ", ")),
			Metadata:    withFields(offerMeta(ev.Offer), ev.Fields),
		}

	case CompensationInitiated:
		return Entry{Type: types.ActivityCompensationInitiated, Title: "Compensation Initiated", Description: "Compensation discussion started", Metadata: compensationMeta(ev.Compensation)}
	case CompensationSent:
		desc := "Compensation proposal sent"
		if ev.Compensation.CompanyProposed != nil {
			desc += ": " + money(*ev.Compensation.CompanyProposed, ev.Compensation.Currency)
		}
		return Entry{Type: types.ActivityCompensationSent, Title: "Compensation Proposal Sent", Description: desc, Metadata: compensationMeta(ev.Compensation)}
	case CompensationApproved:
		desc := "Compensation approved"
		if ev.Compensation.FinalAgreed != nil {
			desc += ": " + money(*ev.Compensation.FinalAgreed, ev.Compensation.Currency)
		}
		return Entry{Type: types.ActivityCompensationApproved, Title: "Compensation Approved", Description: desc, Metadata: compensationMeta(ev.Compensation)}
	case CompensationDeclined:
		return Entry{Type: types.ActivityCompensationDeclined, Title: "Compensation Declined", Description: "Compensation proposal declined", Metadata: compensationMeta(ev.Compensation)}
	case CompensationDetailsUpdated:
		return Entry{
			Type:        types.ActivityCompensationUpdated,
			Title:       "Compensation Updated",
			Description: fmt.Sprintf("Compensation updated: %s", strings.Join(ev.Fields, ", ")),
			Metadata:    withFields(compensationMeta(ev.Compensation), ev.Fields),
		}

	case MeetingScheduled:
		m := ev.Meeting
		return Entry{
			Type:        types.ActivityMeetingScheduled,
			Title:       "Compensation Meeting Scheduled",
			Description: fmt.Sprintf("%s meeting scheduled for %s", strings.ReplaceAll(string(m.Mode), "_", " "), m.ScheduledDate.UTC().Format(dateLayout)),
			Metadata:    meetingMeta(m),
		}
	case MeetingCompleted:
		return Entry{Type: types.ActivityMeetingCompleted, Title: "Compensation Meeting Completed", Description: "Compensation meeting held", Metadata: meetingMeta(ev.Meeting)}
	case MeetingCancelled:
		return Entry{Type: types.ActivityMeetingCancelled, Title: "Compensation Meeting Cancelled", Description: "Compensation meeting cancelled", Metadata: meetingMeta(ev.Meeting)}
	case MeetingDetailsUpdated:
		return Entry{
			Type:        types.ActivityMeetingUpdated,
			Title:       "Compensation Meeting Updated",
			Description: fmt.Sprintf("Meeting updated: %s", strings.Join(ev.Fields, ", ")),
			Metadata:    withFields(meetingMeta(ev.Meeting), ev.Fields),
		}

	case CommentAdded:
		return Entry{
			Type:        types.ActivityCommentAdded,
			Title:       "Comment Added",
			Description: truncate(ev.Comment.Text, 200),
			Metadata:    map[string]string{"comment_id": ev.Comment.ID.String()},
		}
	}
	panic(fmt.Sprintf("activity: unhandled event %T", e))
}

func interviewMeta(iv *types.Interview) map[string]string {
	m := map[string]string{
		"interview_id":   iv.ID.String(),
		"status":         string(iv.Status),
		"scheduled_date": iv.ScheduledDate.UTC().Format(time.RFC3339),
	}
	if iv.Rating != nil {
		m["rating"] = strconv.Itoa(*iv.Rating)
	}
	return m
}

func taskMeta(t *types.TechnicalTask) map[string]string {
	m := map[string]string{"task_id": t.ID.String(), "status": string(t.Status)}
	if t.Rating != nil {
		m["rating"] = strconv.Itoa(*t.Rating)
	}
	return m
}

func offerMeta(o *types.OfferDocument) map[string]string {
	m := map[string]string{"offer_id": o.ID.String(), "status": string(o.Status)}
	if o.Document.Filename != "" {
		m["filename"] = o.Document.Filename
	}
	return m
}

func compensationMeta(c *types.Compensation) map[string]string {
	return map[string]string{"compensation_id": c.ID.String(), "status": string(c.Status)}
}

func meetingMeta(m *types.CompensationMeeting) map[string]string {
	return map[string]string{
		"meeting_id":     m.ID.String(),
		"status":         string(m.Status),
		"scheduled_date": m.ScheduledDate.UTC().Format(time.RFC3339),
	}
}

func withFields(m map[string]string, fields []string) map[string]string {
	m["updated_fields"] = strings.Join(fields, ",")
	return m
}

func offerDescription(prefix string, o *types.OfferDocument) string {
	if o.OfferAmount == nil {
		return prefix
	}
	return fmt.Sprintf("%s: %s", prefix, money(*o.OfferAmount, o.Currency))
}

func money(amount float64, currency string) string {
	s := strconv.FormatFloat(amount, 'f', -1, 64)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
