package ats

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-pipeline/internal/notify"
	"github.com/jonathan/hiring-pipeline/internal/pipeline"
	"github.com/jonathan/hiring-pipeline/internal/scoring"
	"github.com/jonathan/hiring-pipeline/internal/storage"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

var fixedNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

type stubScorer struct {
	result scoring.Result
	calls  int
}

func (s *stubScorer) Score(context.Context, scoring.Requirements, string, string) scoring.Result {
	s.calls++
	return s.result
}

type stubExtractor struct {
	text string
	err  error
}

func (e stubExtractor) ExtractText([]byte, string) (string, error) {
	return e.text, e.err
}

type recordingSender struct {
	mu    sync.Mutex
	notes []notify.Notification
}

func (r *recordingSender) Dispatch(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingSender) sent() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.notes...)
}

type harness struct {
	svc      *Service
	store    *MemoryStore
	blobs    *storage.MemoryStore
	scorer   *stubScorer
	sender   *recordingSender
	employer types.Actor
	seeker   types.Actor
	job      *types.Job
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:  NewMemoryStore(),
		blobs:  storage.NewMemoryStore("https://files.test"),
		scorer: &stubScorer{result: scoring.Result{Score: 72, Reasoning: "solid Go background", MissingKeywords: []string{"kubernetes"}}},
		sender: &recordingSender{},
	}
	h.svc = NewService(Deps{
		Store:     h.store,
		Uploader:  storage.NewUploader(h.blobs, 0),
		Scorer:    h.scorer,
		Extractor: stubExtractor{text: "Senior Go engineer with Postgres experience"},
		Notifier:  h.sender,
		Now:       func() time.Time { return fixedNow },
	})

	h.employer = h.addUser(t, "Dana Hiring", "dana@acme.test", types.RoleEmployer)
	h.seeker = h.addUser(t, "Sam Seeker", "sam@example.test", types.RoleSeeker)

	job, err := h.svc.CreateJob(context.Background(), h.employer, types.CreateJobRequest{
		Title:        "Backend Engineer",
		Description:  "Build hiring infrastructure",
		Requirements: []string{"5 years Go"},
		Skills:       []string{"go", "postgres"},
	})
	require.NoError(t, err)
	h.job = job
	return h
}

func (h *harness) addUser(t *testing.T, name, email string, role types.Role) types.Actor {
	t.Helper()
	id, err := h.store.CreateUser(context.Background(), name, email, "", role)
	require.NoError(t, err)
	return types.Actor{ID: id, Name: name, Role: role}
}

// activityTypes returns the activity types of an application in write order.
func (h *harness) activityTypes(t *testing.T, applicationID uuid.UUID) []types.ActivityType {
	t.Helper()
	activities, err := h.store.ListActivities(context.Background(), applicationID)
	require.NoError(t, err)
	out := make([]types.ActivityType, 0, len(activities))
	for i := len(activities) - 1; i >= 0; i-- {
		out = append(out, activities[i].Type)
	}
	return out
}

// failingStore fails every activity write made inside a transaction.
type failingStore struct {
	*MemoryStore
	err error
}

type failingRepo struct {
	Repository
	err error
}

func (r failingRepo) CreateActivity(context.Context, *types.Activity) error { return r.err }

func (s failingStore) InTx(ctx context.Context, fn func(tx Repository) error) error {
	return s.MemoryStore.InTx(ctx, func(tx Repository) error {
		return fn(failingRepo{Repository: tx, err: s.err})
	})
}

func resumeFile() storage.File {
	return storage.File{Filename: "sam resume.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4 resume")}
}

func (h *harness) apply(t *testing.T) *types.Application {
	t.Helper()
	app, err := h.svc.SubmitApplication(context.Background(), h.seeker, h.job.ID, "I would love to join", resumeFile())
	require.NoError(t, err)
	return app
}

func (h *harness) moveTo(t *testing.T, appID uuid.UUID, stage types.Stage) *types.Application {
	t.Helper()
	app, err := h.svc.MoveToStage(context.Background(), h.employer, appID, types.MoveStageRequest{Stage: stage})
	require.NoError(t, err)
	return app
}

func (h *harness) otherEmployer(t *testing.T) types.Actor {
	return h.addUser(t, "Eve Rival", uuid.NewString()+"@rival.test", types.RoleEmployer)
}

func ptr[T any](v T) *T { return &v }

func TestCreateJob_DefaultsToAllStages(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, types.JobStatusOpen, h.job.Status)
	assert.Equal(t, pipeline.Stages(), h.job.EnabledStages)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, h.job.Skills)
	assert.Equal(t, []string{"5 years Go"}, h.job.Requirements)

	_, err := h.svc.CreateJob(context.Background(), h.seeker, types.CreateJobRequest{Title: "Nope", Description: "x"})
	var forbidden *types.ErrForbidden
	assert.ErrorAs(t, err, &forbidden)
}

func TestSubmitApplication(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	app := h.apply(t)

	assert.Equal(t, types.StageInReview, app.Stage)
	assert.Equal(t, pipeline.InitialSubStage(types.StageInReview), app.SubStage)
	assert.Equal(t, 72, app.ATSScore)
	assert.Equal(t, []string{"kubernetes"}, app.MissingKeywords)
	assert.Equal(t, "sam_resume.pdf", app.Resume.Filename)
	assert.Contains(t, app.Resume.URL, "https://files.test/resumes/"+app.ID.String())
	assert.Equal(t, []types.ActivityType{types.ActivityApplicationSubmitted}, h.activityTypes(t, app.ID))

	_, err := h.svc.SubmitApplication(ctx, h.seeker, h.job.ID, "", resumeFile())
	var conflict *types.ErrConflict
	assert.ErrorAs(t, err, &conflict, "second application to the same job")

	_, err = h.svc.SubmitApplication(ctx, h.employer, h.job.ID, "", resumeFile())
	var forbidden *types.ErrForbidden
	assert.ErrorAs(t, err, &forbidden)
}

func TestSubmitApplication_Rejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.CloseJob(ctx, h.employer, h.job.ID)
	require.NoError(t, err)

	_, err = h.svc.SubmitApplication(ctx, h.seeker, h.job.ID, "", resumeFile())
	var invalid *types.ErrValidation
	assert.ErrorAs(t, err, &invalid, "closed job")

	_, err = h.svc.SubmitApplication(ctx, h.seeker, uuid.New(), "", resumeFile())
	var notFound *types.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestMoveToStage_RecordsStageChange(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)

	moved, err := h.svc.MoveToStage(ctx, h.employer, app.ID, types.MoveStageRequest{Stage: types.StageShortlisted, Reason: "strong profile"})
	require.NoError(t, err)

	assert.Equal(t, types.StageShortlisted, moved.Stage)
	assert.Equal(t, pipeline.InitialSubStage(types.StageShortlisted), moved.SubStage)
	assert.Equal(t, app.Version+1, moved.Version)

	activities, err := h.svc.ListActivities(ctx, h.employer, app.ID)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	change := activities[0]
	assert.Equal(t, types.ActivityStageChange, change.Type)
	assert.Equal(t, "in_review", change.Metadata["previous_stage"])
	assert.Equal(t, "shortlisted", change.Metadata["next_stage"])
	assert.Equal(t, h.employer.ID, change.PerformedBy)
	assert.Equal(t, "Dana Hiring", change.PerformedByName)
	assert.Equal(t, fixedNow, change.CreatedAt)
}

func TestMoveToStage_Rejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	job, err := h.svc.UpdateJobStages(ctx, h.employer, h.job.ID, types.UpdateJobStagesRequest{
		EnabledStages: []types.Stage{types.StageInReview, types.StageInterview, types.StageOffer},
	})
	require.NoError(t, err)
	require.NotContains(t, job.EnabledStages, types.StageShortlisted)

	app := h.apply(t)
	h.moveTo(t, app.ID, types.StageInterview)

	tests := []struct {
		name  string
		actor types.Actor
		id    uuid.UUID
		stage types.Stage
		check func(t *testing.T, err error)
	}{
		{"disabled stage", h.employer, app.ID, types.StageShortlisted, func(t *testing.T, err error) {
			var invalid *types.ErrValidation
			assert.ErrorAs(t, err, &invalid)
		}},
		{"backwards", h.employer, app.ID, types.StageInReview, func(t *testing.T, err error) {
			var invalid *types.ErrValidation
			assert.ErrorAs(t, err, &invalid)
		}},
		{"same stage", h.employer, app.ID, types.StageInterview, func(t *testing.T, err error) {
			var invalid *types.ErrValidation
			assert.ErrorAs(t, err, &invalid)
		}},
		{"unknown application", h.employer, uuid.New(), types.StageOffer, func(t *testing.T, err error) {
			var notFound *types.ErrNotFound
			assert.ErrorAs(t, err, &notFound)
		}},
		{"seeker", h.seeker, app.ID, types.StageOffer, func(t *testing.T, err error) {
			var forbidden *types.ErrForbidden
			assert.ErrorAs(t, err, &forbidden)
		}},
		{"other employer", h.otherEmployer(t), app.ID, types.StageOffer, func(t *testing.T, err error) {
			var forbidden *types.ErrForbidden
			assert.ErrorAs(t, err, &forbidden)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(h.activityTypes(t, app.ID))
			_, err := h.svc.MoveToStage(ctx, tt.actor, tt.id, types.MoveStageRequest{Stage: tt.stage})
			require.Error(t, err)
			tt.check(t, err)
			assert.Len(t, h.activityTypes(t, app.ID), before, "failed move writes no activity")
		})
	}
}

func TestUpdateJobStages_KeepsOccupiedStages(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)
	h.moveTo(t, app.ID, types.StageInterview)

	_, err := h.svc.UpdateJobStages(ctx, h.employer, h.job.ID, types.UpdateJobStagesRequest{
		EnabledStages: []types.Stage{types.StageInReview, types.StageOffer},
	})
	var invalid *types.ErrValidation
	assert.ErrorAs(t, err, &invalid)
}

func TestUpdateSubStageAndReject(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)

	updated, err := h.svc.UpdateSubStage(ctx, h.employer, app.ID, types.UpdateSubStageRequest{SubStage: types.SubStageProfileReviewed})
	require.NoError(t, err)
	assert.Equal(t, types.SubStageProfileReviewed, updated.SubStage)

	_, err = h.svc.UpdateSubStage(ctx, h.employer, app.ID, types.UpdateSubStageRequest{SubStage: types.SubStageScheduled})
	var invalid *types.ErrValidation
	assert.ErrorAs(t, err, &invalid, "sub-stage of another stage")

	rejected, err := h.svc.RejectApplication(ctx, h.employer, app.ID, types.RejectRequest{Reason: "position filled"})
	require.NoError(t, err)
	assert.Equal(t, types.SubStageRejected, rejected.SubStage)
	assert.Equal(t, types.StageInReview, rejected.Stage)

	notes := h.sender.sent()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.TemplateApplicationRejected, notes[0].Template)
	assert.Equal(t, "sam@example.test", notes[0].To)
	assert.Equal(t, "position filled", notes[0].Data.(notify.ApplicationRejectedData).Reason)

	_, err = h.svc.MoveToStage(ctx, h.employer, app.ID, types.MoveStageRequest{Stage: types.StageShortlisted})
	assert.ErrorAs(t, err, &invalid, "rejected applications stay put")
	_, err = h.svc.RejectApplication(ctx, h.employer, app.ID, types.RejectRequest{})
	assert.ErrorAs(t, err, &invalid, "already rejected")

	assert.Equal(t, []types.ActivityType{
		types.ActivityApplicationSubmitted,
		types.ActivitySubStageChange,
		types.ActivityApplicationRejected,
	}, h.activityTypes(t, app.ID))
}

func TestNextStage(t *testing.T) {
	h := newHarness(t)
	app := h.apply(t)

	resp, err := h.svc.NextStage(context.Background(), h.seeker, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StageInReview, resp.Current)
	assert.True(t, resp.HasNext)
	require.NotNil(t, resp.Next)
	assert.Equal(t, types.StageShortlisted, *resp.Next)

	h.moveTo(t, app.ID, types.StageOffer)
	resp, err = h.svc.NextStage(context.Background(), h.employer, app.ID)
	require.NoError(t, err)
	assert.False(t, resp.HasNext)
	assert.Nil(t, resp.Next)
}

func TestInterviewLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)
	h.moveTo(t, app.ID, types.StageInterview)

	iv, err := h.svc.ScheduleInterview(ctx, h.employer, types.ScheduleInterviewRequest{
		ApplicationID: app.ID,
		Title:         "Technical Round",
		Type:          types.InterviewOnline,
		ScheduledDate: time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC),
		MeetingLink:   "https://meet.example.com/abc",
	})
	require.NoError(t, err)
	assert.Equal(t, types.MeetingScheduled, iv.Status)
	assert.Equal(t, 60, iv.DurationMinutes)
	assert.Equal(t, types.VideoExternal, iv.VideoType)

	stored, err := h.store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SubStageScheduled, stored.SubStage)

	notes := h.sender.sent()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.TemplateInterviewScheduled, notes[0].Template)

	completed, err := h.svc.UpdateInterview(ctx, h.employer, iv.ID, types.UpdateInterviewRequest{
		Status:   ptr(types.MeetingCompleted),
		Rating:   ptr(4),
		Feedback: ptr("Great system design answers"),
	})
	require.NoError(t, err)
	assert.Equal(t, types.MeetingCompleted, completed.Status)
	require.NotNil(t, completed.Rating)
	assert.Equal(t, 4, *completed.Rating)

	rated, err := h.svc.UpdateInterview(ctx, h.employer, iv.ID, types.UpdateInterviewRequest{Rating: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, types.MeetingCompleted, rated.Status, "feedback leaves the status alone")
	assert.Equal(t, 5, *rated.Rating)
	assert.Equal(t, "Great system design answers", rated.Feedback)

	before := len(h.activityTypes(t, app.ID))
	_, err = h.svc.CompleteInterview(ctx, h.employer, iv.ID, types.CompleteInterviewRequest{})
	var invalid *types.ErrValidation
	assert.ErrorAs(t, err, &invalid)
	assert.Len(t, h.activityTypes(t, app.ID), before, "no activity for a repeated completion")

	_, err = h.svc.UpdateInterview(ctx, h.employer, iv.ID, types.UpdateInterviewRequest{
		InterviewDetailsPatch: types.InterviewDetailsPatch{Title: ptr("Renamed")},
	})
	assert.ErrorAs(t, err, &invalid, "completed interviews cannot be rescheduled")

	assert.Equal(t, []types.ActivityType{
		types.ActivityApplicationSubmitted,
		types.ActivityStageChange,
		types.ActivityInterviewScheduled,
		types.ActivityInterviewCompleted,
		types.ActivityInterviewFeedbackAdded,
	}, h.activityTypes(t, app.ID))
}

func TestScheduleInterview_Venue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)
	when := fixedNow.Add(48 * time.Hour)

	inApp, err := h.svc.ScheduleInterview(ctx, h.employer, types.ScheduleInterviewRequest{
		ApplicationID: app.ID, Title: "Intro", Type: types.InterviewOnline, ScheduledDate: when, VideoType: types.VideoInApp,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, inApp.WebRTCRoomID)

	_, err = h.svc.ScheduleInterview(ctx, h.employer, types.ScheduleInterviewRequest{
		ApplicationID: app.ID, Title: "Intro", Type: types.InterviewOnline, ScheduledDate: when,
	})
	var invalid *types.ErrValidation
	assert.ErrorAs(t, err, &invalid, "external video without a link")

	_, err = h.svc.ScheduleInterview(ctx, h.employer, types.ScheduleInterviewRequest{
		ApplicationID: app.ID, Title: "Onsite", Type: types.InterviewOffline, ScheduledDate: when,
	})
	assert.ErrorAs(t, err, &invalid, "offline without a location")

	stored, err := h.store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StageInReview, stored.Stage, "scheduling outside the interview stage leaves the stage alone")
}

func TestCancelInterview(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)

	iv, err := h.svc.ScheduleInterview(ctx, h.employer, types.ScheduleInterviewRequest{
		ApplicationID: app.ID, Title: "Onsite", Type: types.InterviewOffline,
		ScheduledDate: fixedNow.Add(time.Hour), Location: "HQ",
	})
	require.NoError(t, err)

	cancelled, err := h.svc.UpdateInterview(ctx, h.employer, iv.ID, types.UpdateInterviewRequest{
		Status: ptr(types.MeetingCancelled), CancelReason: ptr("candidate unavailable"),
	})
	require.NoError(t, err)
	assert.Equal(t, types.MeetingCancelled, cancelled.Status)
	assert.Equal(t, "candidate unavailable", cancelled.CancelReason)

	_, err = h.svc.AddInterviewFeedback(ctx, h.employer, iv.ID, types.InterviewFeedbackRequest{Rating: ptr(3)})
	var invalid *types.ErrValidation
	assert.ErrorAs(t, err, &invalid)
}

func TestTaskLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)
	h.moveTo(t, app.ID, types.StageTechnicalTask)

	brief := &storage.File{Filename: "brief.md", ContentType: "text/markdown", Data: []byte("# Build a cache")}
	task, err := h.svc.AssignTask(ctx, h.employer, types.AssignTaskRequest{
		ApplicationID: app.ID, Title: "Cache", Description: "Build an LRU cache",
	}, brief)
	require.NoError(t, err)
	assert.Equal(t, types.TaskAssigned, task.Status)
	assert.Equal(t, "brief.md", task.Document.Filename)

	_, err = h.svc.SubmitTask(ctx, h.seeker, task.ID, types.SubmitTaskRequest{}, nil)
	var invalid *types.ErrValidation
	assert.ErrorAs(t, err, &invalid, "submission needs a file or link")

	submitted, err := h.svc.SubmitTask(ctx, h.seeker, task.ID, types.SubmitTaskRequest{SubmissionLink: "https://github.com/sam/cache"}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.TaskSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)
	assert.Equal(t, fixedNow, *submitted.SubmittedAt)

	err = h.svc.DeleteTask(ctx, h.employer, task.ID)
	assert.ErrorAs(t, err, &invalid, "submitted tasks cannot be deleted")

	reviewing, err := h.svc.UpdateTask(ctx, h.employer, task.ID, types.UpdateTaskRequest{Status: ptr(types.TaskUnderReview)})
	require.NoError(t, err)
	assert.Equal(t, types.TaskUnderReview, reviewing.Status)

	done, err := h.svc.UpdateTask(ctx, h.employer, task.ID, types.UpdateTaskRequest{
		Status: ptr(types.TaskCompleted), Rating: ptr(5), Feedback: ptr("clean code"),
	})
	require.NoError(t, err)
	assert.Equal(t, types.TaskCompleted, done.Status)
	assert.Equal(t, "clean code", done.Feedback)

	stored, err := h.store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SubStageCompleted, stored.SubStage)
}

func TestDeleteTask(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)

	task, err := h.svc.AssignTask(ctx, h.employer, types.AssignTaskRequest{
		ApplicationID: app.ID, Title: "Cache", Description: "Build an LRU cache",
	}, nil)
	require.NoError(t, err)

	err = h.svc.DeleteTask(ctx, h.seeker, task.ID)
	var forbidden *types.ErrForbidden
	assert.ErrorAs(t, err, &forbidden)

	require.NoError(t, h.svc.DeleteTask(ctx, h.employer, task.ID))
	tasks, err := h.svc.ListTasks(ctx, h.employer, app.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Contains(t, h.activityTypes(t, app.ID), types.ActivityTaskDeleted)

	err = h.svc.DeleteTask(ctx, h.employer, task.ID)
	var notFound *types.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestOfferRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)
	h.moveTo(t, app.ID, types.StageOffer)

	letter := &storage.File{Filename: "offer.pdf", ContentType: "application/pdf", Data: []byte("%PDF offer")}
	offer, err := h.svc.SendOffer(ctx, h.employer, types.SendOfferRequest{
		ApplicationID: app.ID, OfferAmount: ptr(120000.0), Currency: "usd",
	}, letter)
	require.NoError(t, err)
	assert.Equal(t, "USD", offer.Currency)
	assert.Equal(t, "offer.pdf", offer.Document.Filename)

	offers, err := h.svc.ListOffers(ctx, h.seeker, app.ID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, offer.Document.URL, offers[0].Document.URL)
	assert.Equal(t, offer.Document.Filename, offers[0].Document.Filename)

	_, err = h.svc.SignOffer(ctx, h.employer, offer.ID, nil)
	var forbidden *types.ErrForbidden
	assert.ErrorAs(t, err, &forbidden, "only the candidate signs")

	signed, err := h.svc.SignOffer(ctx, h.seeker, offer.ID, &storage.File{Filename: "signed.pdf", ContentType: "application/pdf", Data: []byte("%PDF signed")})
	require.NoError(t, err)
	assert.Equal(t, types.OfferSigned, signed.Status)
	assert.Equal(t, "signed.pdf", signed.SignedDocument.Filename)

	stored, err := h.store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SubStageSigned, stored.SubStage)

	_, err = h.svc.DeclineOffer(ctx, h.seeker, offer.ID, types.DeclineOfferRequest{})
	var invalid *types.ErrValidation
	assert.ErrorAs(t, err, &invalid, "signed offers cannot be declined")

	_, err = h.svc.SendOffer(ctx, h.employer, types.SendOfferRequest{ApplicationID: app.ID}, nil)
	assert.ErrorAs(t, err, &invalid, "letter is required")
}

func TestCompensationFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)
	h.moveTo(t, app.ID, types.StageCompensation)

	comp, err := h.svc.InitiateCompensation(ctx, h.employer, types.InitiateCompensationRequest{
		ApplicationID: app.ID, CandidateExpected: ptr(130000.0), CompanyProposed: ptr(120000.0), Currency: "eur",
	})
	require.NoError(t, err)
	assert.Equal(t, types.CompensationNotSent, comp.Status)
	assert.Equal(t, []string{}, comp.Benefits)

	_, err = h.svc.InitiateCompensation(ctx, h.employer, types.InitiateCompensationRequest{ApplicationID: app.ID})
	var conflict *types.ErrConflict
	assert.ErrorAs(t, err, &conflict)

	sent, err := h.svc.SendCompensationProposal(ctx, h.employer, comp.ID)
	require.NoError(t, err)
	assert.Equal(t, types.CompensationSent, sent.Status)

	_, err = h.svc.SendCompensationProposal(ctx, h.employer, comp.ID)
	var invalid *types.ErrValidation
	assert.ErrorAs(t, err, &invalid)

	approved, err := h.svc.ApproveCompensation(ctx, h.employer, comp.ID, types.ApproveCompensationRequest{})
	require.NoError(t, err)
	require.NotNil(t, approved.FinalAgreed)
	assert.Equal(t, 120000.0, *approved.FinalAgreed)

	stored, err := h.store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SubStageApproved, stored.SubStage)

	got, err := h.svc.GetCompensation(ctx, h.seeker, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.CompensationAccepted, got.Status)
}

func TestCompensationMeeting(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)
	h.moveTo(t, app.ID, types.StageCompensation)

	meeting, err := h.svc.ScheduleCompensationMeeting(ctx, h.employer, types.ScheduleMeetingRequest{
		ApplicationID: app.ID, Mode: types.MeetingCall, ScheduledDate: fixedNow.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, types.MeetingScheduled, meeting.Status)

	stored, err := h.store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SubStageNegotiating, stored.SubStage)

	notes := h.sender.sent()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.TemplateCompensationMeetingScheduled, notes[0].Template)

	_, err = h.svc.UpdateMeeting(ctx, h.employer, meeting.ID, types.UpdateMeetingRequest{
		MeetingDetailsPatch: types.MeetingDetailsPatch{Mode: ptr(types.MeetingInPerson)},
	})
	var invalid *types.ErrValidation
	assert.ErrorAs(t, err, &invalid, "in-person meetings need a location")

	done, err := h.svc.UpdateMeeting(ctx, h.employer, meeting.ID, types.UpdateMeetingRequest{Status: ptr(types.MeetingCompleted)})
	require.NoError(t, err)
	assert.Equal(t, types.MeetingCompleted, done.Status)

	_, err = h.svc.CancelMeeting(ctx, h.employer, meeting.ID)
	assert.ErrorAs(t, err, &invalid)
}

func TestCommentsAreEmployerOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)

	comment, err := h.svc.AddComment(ctx, h.employer, app.ID, types.AddCommentRequest{Text: "  promising  "})
	require.NoError(t, err)
	assert.Equal(t, "promising", comment.Text)
	assert.Equal(t, types.StageInReview, comment.Stage)

	_, err = h.svc.AddComment(ctx, h.seeker, app.ID, types.AddCommentRequest{Text: "hi"})
	var forbidden *types.ErrForbidden
	assert.ErrorAs(t, err, &forbidden)

	detail, err := h.svc.GetApplication(ctx, h.seeker, app.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Comments)

	detail, err = h.svc.GetApplication(ctx, h.employer, app.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Comments, 1)
}

func TestGetApplication_Authorization(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)

	other := h.addUser(t, "Olive", "olive@example.test", types.RoleSeeker)
	_, err := h.svc.GetApplication(ctx, other, app.ID)
	var forbidden *types.ErrForbidden
	assert.ErrorAs(t, err, &forbidden)

	_, err = h.svc.GetApplication(ctx, h.otherEmployer(t), app.ID)
	assert.ErrorAs(t, err, &forbidden)

	_, err = h.svc.ListActivities(ctx, h.seeker, app.ID)
	assert.ErrorAs(t, err, &forbidden)
}

func TestKanban(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first := h.apply(t)
	second := h.addUser(t, "Kim", "kim@example.test", types.RoleSeeker)
	other, err := h.svc.SubmitApplication(ctx, second, h.job.ID, "", resumeFile())
	require.NoError(t, err)
	h.moveTo(t, first.ID, types.StageShortlisted)
	h.moveTo(t, other.ID, types.StageShortlisted)

	board, err := h.svc.Kanban(ctx, h.employer, h.job.ID)
	require.NoError(t, err)

	assert.Equal(t, h.job.EnabledStages, board.Stages)
	for _, stage := range h.job.EnabledStages {
		column, ok := board.Columns[stage]
		assert.True(t, ok, "column for %s", stage)
		assert.NotNil(t, column)
	}
	assert.Empty(t, board.Columns[types.StageInReview])
	shortlisted := board.Columns[types.StageShortlisted]
	require.Len(t, shortlisted, 2)
	assert.Equal(t, other.ID, shortlisted[0].ID, "most recently updated first")
	assert.Equal(t, "Kim", shortlisted[0].SeekerName)

	_, err = h.svc.Kanban(ctx, h.otherEmployer(t), h.job.ID)
	var forbidden *types.ErrForbidden
	assert.ErrorAs(t, err, &forbidden)
}

func TestBuildKanban_DropsUnknownStages(t *testing.T) {
	job := &types.Job{ID: uuid.New(), EnabledStages: []types.Stage{types.StageInReview, types.StageOffer}}
	board := BuildKanban(job, []types.ApplicationSummary{
		{ID: uuid.New(), Stage: types.StageInReview},
		{ID: uuid.New(), Stage: types.StageInterview},
	})

	assert.Len(t, board.Columns, 2)
	assert.Len(t, board.Columns[types.StageInReview], 1)
	assert.Empty(t, board.Columns[types.StageOffer])
}

func TestRescoreApplication(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)

	h.scorer.result = scoring.Result{Score: 88, Reasoning: "now matches", MissingKeywords: []string{}}
	rescored, err := h.svc.RescoreApplication(ctx, h.employer, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 88, rescored.ATSScore)
	assert.Equal(t, 2, h.scorer.calls)

	activities, err := h.svc.ListActivities(ctx, h.employer, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ActivityApplicationRescored, activities[0].Type)
	assert.Equal(t, "72", activities[0].Metadata["previous_score"])
}

func TestActivityFailureRollsBackMutation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)

	failing := NewService(Deps{
		Store:     failingStore{MemoryStore: h.store, err: errors.New("activity table unavailable")},
		Uploader:  storage.NewUploader(h.blobs, 0),
		Scorer:    h.scorer,
		Extractor: stubExtractor{},
		Notifier:  h.sender,
	})
	_, err := failing.RejectApplication(ctx, h.employer, app.ID, types.RejectRequest{})
	require.Error(t, err)

	stored, err := h.store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StageInReview, stored.Stage)
	assert.Equal(t, app.SubStage, stored.SubStage)
	assert.Equal(t, app.Version, stored.Version)
	assert.Empty(t, h.sender.sent(), "no email for a rolled back rejection")
	assert.Equal(t, []types.ActivityType{types.ActivityApplicationSubmitted}, h.activityTypes(t, app.ID))
}

func TestEveryMutationWritesOneActivity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)

	steps := []func() error{
		func() error { _, err := h.svc.MoveToStage(ctx, h.employer, app.ID, types.MoveStageRequest{Stage: types.StageInterview}); return err },
		func() error {
			_, err := h.svc.ScheduleInterview(ctx, h.employer, types.ScheduleInterviewRequest{
				ApplicationID: app.ID, Title: "Round 1", Type: types.InterviewOffline, ScheduledDate: fixedNow, Location: "HQ",
			})
			return err
		},
		func() error { _, err := h.svc.AddComment(ctx, h.employer, app.ID, types.AddCommentRequest{Text: "ok"}); return err },
		func() error { _, err := h.svc.MoveToStage(ctx, h.employer, app.ID, types.MoveStageRequest{Stage: types.StageCompensation}); return err },
		func() error {
			_, err := h.svc.InitiateCompensation(ctx, h.employer, types.InitiateCompensationRequest{ApplicationID: app.ID})
			return err
		},
		func() error { _, err := h.svc.RescoreApplication(ctx, h.employer, app.ID); return err },
	}
	for i, step := range steps {
		before := len(h.activityTypes(t, app.ID))
		require.NoError(t, step(), "step %d", i)
		assert.Len(t, h.activityTypes(t, app.ID), before+1, "step %d", i)

		stored, err := h.store.GetApplication(ctx, app.ID)
		require.NoError(t, err)
		assert.True(t, pipeline.IsValidSubStage(stored.Stage, stored.SubStage), "step %d left %s/%s", i, stored.Stage, stored.SubStage)
	}
}

func TestRejectedApplication_ClosesChildRecords(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)
	h.moveTo(t, app.ID, types.StageOffer)

	letter := &storage.File{Filename: "offer.pdf", ContentType: "application/pdf", Data: []byte("%PDF offer")}
	offer, err := h.svc.SendOffer(ctx, h.employer, types.SendOfferRequest{ApplicationID: app.ID}, letter)
	require.NoError(t, err)
	task, err := h.svc.AssignTask(ctx, h.employer, types.AssignTaskRequest{
		ApplicationID: app.ID, Title: "Cache", Description: "Build an LRU cache",
	}, nil)
	require.NoError(t, err)

	_, err = h.svc.RejectApplication(ctx, h.employer, app.ID, types.RejectRequest{Reason: "position filled"})
	require.NoError(t, err)
	before := h.activityTypes(t, app.ID)

	steps := map[string]func() error{
		"sign offer": func() error { _, err := h.svc.SignOffer(ctx, h.seeker, offer.ID, nil); return err },
		"decline offer": func() error {
			_, err := h.svc.DeclineOffer(ctx, h.seeker, offer.ID, types.DeclineOfferRequest{})
			return err
		},
		"submit task": func() error {
			_, err := h.svc.SubmitTask(ctx, h.seeker, task.ID, types.SubmitTaskRequest{SubmissionLink: "https://github.com/sam/cache"}, nil)
			return err
		},
		"send offer": func() error {
			_, err := h.svc.SendOffer(ctx, h.employer, types.SendOfferRequest{ApplicationID: app.ID}, letter)
			return err
		},
		"assign task": func() error {
			_, err := h.svc.AssignTask(ctx, h.employer, types.AssignTaskRequest{ApplicationID: app.ID, Title: "Again", Description: "Another cache"}, nil)
			return err
		},
	}
	for name, step := range steps {
		t.Run(name, func(t *testing.T) {
			var invalid *types.ErrValidation
			assert.ErrorAs(t, step(), &invalid)
		})
	}

	assert.Equal(t, before, h.activityTypes(t, app.ID))
	offers, err := h.store.ListOffers(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, types.OfferSent, offers[0].Status)
	stored, err := h.store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TaskAssigned, stored.Status)
}

// interleavingStore runs hook once just before the next transaction starts.
type interleavingStore struct {
	*MemoryStore
	hook func()
}

func (s *interleavingStore) InTx(ctx context.Context, fn func(tx Repository) error) error {
	if hook := s.hook; hook != nil {
		s.hook = nil
		hook()
	}
	return s.MemoryStore.InTx(ctx, fn)
}

func TestChildCreation_SeesRejectionCommittedMeanwhile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)

	store := &interleavingStore{MemoryStore: h.store}
	svc := NewService(Deps{
		Store:     store,
		Uploader:  storage.NewUploader(h.blobs, 0),
		Scorer:    h.scorer,
		Extractor: stubExtractor{},
		Notifier:  h.sender,
		Now:       func() time.Time { return fixedNow },
	})
	store.hook = func() {
		_, err := h.svc.RejectApplication(ctx, h.employer, app.ID, types.RejectRequest{})
		require.NoError(t, err)
	}

	_, err := svc.AssignTask(ctx, h.employer, types.AssignTaskRequest{ApplicationID: app.ID, Title: "Cache", Description: "Build an LRU cache"}, nil)
	var invalid *types.ErrValidation
	require.ErrorAs(t, err, &invalid)

	tasks, err := h.store.ListTasks(ctx, app.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, []types.ActivityType{
		types.ActivityApplicationSubmitted,
		types.ActivityApplicationRejected,
	}, h.activityTypes(t, app.ID))
}

func TestSecondOffer_KeepsSignedSubStage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	app := h.apply(t)
	h.moveTo(t, app.ID, types.StageOffer)

	letter := &storage.File{Filename: "offer.pdf", ContentType: "application/pdf", Data: []byte("%PDF offer")}
	first, err := h.svc.SendOffer(ctx, h.employer, types.SendOfferRequest{ApplicationID: app.ID}, letter)
	require.NoError(t, err)
	_, err = h.svc.SignOffer(ctx, h.seeker, first.ID, nil)
	require.NoError(t, err)

	_, err = h.svc.SendOffer(ctx, h.employer, types.SendOfferRequest{ApplicationID: app.ID, Notes: "revised bonus"}, letter)
	require.NoError(t, err)

	stored, err := h.store.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SubStageSigned, stored.SubStage)
}
