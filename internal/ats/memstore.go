package ats

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/hiring-pipeline/internal/db"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// MemoryStore is a Store held in process memory. It backs local development without a
// database. InTx runs units of work one at a time, snapshots every table, and restores
// the snapshot when the callback fails. Writes made outside InTx wait for a running
// transaction to finish so a rollback never discards them. Reads are not isolated and
// may observe a transaction's uncommitted writes.
type MemoryStore struct {
	*memState
	inTx bool
}

type memState struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users      map[uuid.UUID]db.User
	jobs       map[uuid.UUID]types.Job
	apps       map[uuid.UUID]types.Application
	interviews map[uuid.UUID]types.Interview
	tasks      map[uuid.UUID]types.TechnicalTask
	offers     map[uuid.UUID]types.OfferDocument
	comps      map[uuid.UUID]types.Compensation
	meetings   map[uuid.UUID]types.CompensationMeeting
	comments   []types.Comment
	activities []types.Activity

	clock time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{memState: &memState{
		users:      map[uuid.UUID]db.User{},
		jobs:       map[uuid.UUID]types.Job{},
		apps:       map[uuid.UUID]types.Application{},
		interviews: map[uuid.UUID]types.Interview{},
		tasks:      map[uuid.UUID]types.TechnicalTask{},
		offers:     map[uuid.UUID]types.OfferDocument{},
		comps:      map[uuid.UUID]types.Compensation{},
		meetings:   map[uuid.UUID]types.CompensationMeeting{},
	}}
}

// exclusive serialises a write with InTx. The view handed to an InTx callback
// already holds the lock.
func (m *MemoryStore) exclusive() func() {
	if m.inTx {
		return func() {}
	}
	m.txMu.Lock()
	return m.txMu.Unlock
}

// tick returns a write timestamp that is strictly after the previous one.
func (m *MemoryStore) tick() time.Time {
	now := time.Now().UTC()
	if !now.After(m.clock) {
		now = m.clock.Add(time.Microsecond)
	}
	m.clock = now
	return now
}

type memSnapshot struct {
	users      map[uuid.UUID]db.User
	jobs       map[uuid.UUID]types.Job
	apps       map[uuid.UUID]types.Application
	interviews map[uuid.UUID]types.Interview
	tasks      map[uuid.UUID]types.TechnicalTask
	offers     map[uuid.UUID]types.OfferDocument
	comps      map[uuid.UUID]types.Compensation
	meetings   map[uuid.UUID]types.CompensationMeeting
	comments   []types.Comment
	activities []types.Activity
}

func (m *MemoryStore) InTx(_ context.Context, fn func(tx Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snap := memSnapshot{
		users:      maps.Clone(m.users),
		jobs:       maps.Clone(m.jobs),
		apps:       maps.Clone(m.apps),
		interviews: maps.Clone(m.interviews),
		tasks:      maps.Clone(m.tasks),
		offers:     maps.Clone(m.offers),
		comps:      maps.Clone(m.comps),
		meetings:   maps.Clone(m.meetings),
		comments:   slices.Clone(m.comments),
		activities: slices.Clone(m.activities),
	}
	m.mu.Unlock()

	if err := fn(&MemoryStore{memState: m.memState, inTx: true}); err != nil {
		m.mu.Lock()
		m.users, m.jobs, m.apps = snap.users, snap.jobs, snap.apps
		m.interviews, m.tasks, m.offers = snap.interviews, snap.tasks, snap.offers
		m.comps, m.meetings = snap.comps, snap.meetings
		m.comments, m.activities = snap.comments, snap.activities
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemoryStore) CreateUser(_ context.Context, name, email, phone string, role types.Role) (uuid.UUID, error) {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			return uuid.Nil, &types.ErrConflict{Message: "email already registered"}
		}
	}
	now := m.tick()
	u := db.User{ID: uuid.New(), Name: name, Email: email, Phone: phone, Role: role, CreatedAt: now, UpdatedAt: now}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *MemoryStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := m.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (m *MemoryStore) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return types.NotFound("user", userID)
	}
	u.PasswordHash, u.PasswordSet = passwordHash, true
	u.UpdatedAt = m.tick()
	m.users[userID] = u
	return nil
}

func (m *MemoryStore) CreateJob(_ context.Context, j *types.Job) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	j.CreatedAt = m.tick()
	j.UpdatedAt = j.CreatedAt
	m.jobs[j.ID] = *j
	return nil
}

func (m *MemoryStore) GetJob(_ context.Context, id uuid.UUID) (*types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	j.EnabledStages = slices.Clone(j.EnabledStages)
	return &j, nil
}

func (m *MemoryStore) ListJobsByEmployer(_ context.Context, employerID uuid.UUID) ([]types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := []types.Job{}
	for _, j := range m.jobs {
		if j.EmployerID == employerID {
			jobs = append(jobs, j)
		}
	}
	slices.SortFunc(jobs, func(a, b types.Job) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return jobs, nil
}

func (m *MemoryStore) UpdateJob(_ context.Context, j *types.Job) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[j.ID]; !ok {
		return types.NotFound("job", j.ID)
	}
	j.UpdatedAt = m.tick()
	m.jobs[j.ID] = *j
	return nil
}

func (m *MemoryStore) CreateApplication(_ context.Context, a *types.Application) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.apps {
		if existing.JobID == a.JobID && existing.SeekerID == a.SeekerID {
			return &types.ErrConflict{Message: "you have already applied to this job"}
		}
	}
	if a.Version == 0 {
		a.Version = 1
	}
	a.CreatedAt = m.tick()
	a.UpdatedAt = a.CreatedAt
	m.apps[a.ID] = *a
	return nil
}

func (m *MemoryStore) GetApplication(_ context.Context, id uuid.UUID) (*types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *MemoryStore) ListApplicationsBySeeker(_ context.Context, seekerID uuid.UUID) ([]types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apps := []types.Application{}
	for _, a := range m.apps {
		if a.SeekerID == seekerID {
			apps = append(apps, a)
		}
	}
	slices.SortFunc(apps, func(a, b types.Application) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return apps, nil
}

func (m *MemoryStore) ListApplicationSummaries(_ context.Context, jobID uuid.UUID) ([]types.ApplicationSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.ApplicationSummary{}
	for _, a := range m.apps {
		if a.JobID != jobID {
			continue
		}
		u := m.users[a.SeekerID]
		out = append(out, types.ApplicationSummary{
			ID: a.ID, JobID: a.JobID, SeekerID: a.SeekerID, SeekerName: u.Name, SeekerEmail: u.Email,
			Stage: a.Stage, SubStage: a.SubStage, ATSScore: a.ATSScore, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
		})
	}
	slices.SortFunc(out, func(a, b types.ApplicationSummary) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(a.ID.String(), b.ID.String()))
	})
	return out, nil
}

func (m *MemoryStore) UpdateApplicationStage(_ context.Context, a *types.Application) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.apps[a.ID]
	if !ok || stored.Version != a.Version {
		return &types.ErrConflict{Message: "application was modified by another request, reload and try again"}
	}
	stored.Stage, stored.SubStage = a.Stage, a.SubStage
	stored.Version++
	stored.UpdatedAt = m.tick()
	m.apps[a.ID] = stored
	a.Version, a.UpdatedAt = stored.Version, stored.UpdatedAt
	return nil
}

func (m *MemoryStore) UpdateApplicationScore(_ context.Context, a *types.Application) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.apps[a.ID]
	if !ok {
		return types.NotFound("application", a.ID)
	}
	stored.ATSScore, stored.ATSReasoning, stored.MissingKeywords = a.ATSScore, a.ATSReasoning, a.MissingKeywords
	stored.UpdatedAt = m.tick()
	m.apps[a.ID] = stored
	a.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemoryStore) TouchApplication(_ context.Context, id uuid.UUID) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.apps[id]; ok {
		stored.UpdatedAt = m.tick()
		m.apps[id] = stored
	}
	return nil
}

func (m *MemoryStore) CreateInterview(_ context.Context, i *types.Interview) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	i.CreatedAt = m.tick()
	i.UpdatedAt = i.CreatedAt
	m.interviews[i.ID] = *i
	return nil
}

func (m *MemoryStore) GetInterview(_ context.Context, id uuid.UUID) (*types.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.interviews[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (m *MemoryStore) ListInterviews(_ context.Context, applicationID uuid.UUID) ([]types.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.Interview{}
	for _, i := range m.interviews {
		if i.ApplicationID == applicationID {
			out = append(out, i)
		}
	}
	slices.SortFunc(out, func(a, b types.Interview) int { return a.ScheduledDate.Compare(b.ScheduledDate) })
	return out, nil
}

func (m *MemoryStore) UpdateInterview(_ context.Context, i *types.Interview) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.interviews[i.ID]; !ok {
		return types.NotFound("interview", i.ID)
	}
	i.UpdatedAt = m.tick()
	m.interviews[i.ID] = *i
	return nil
}

func (m *MemoryStore) CreateTask(_ context.Context, t *types.TechnicalTask) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	t.CreatedAt = m.tick()
	t.UpdatedAt = t.CreatedAt
	m.tasks[t.ID] = *t
	return nil
}

func (m *MemoryStore) GetTask(_ context.Context, id uuid.UUID) (*types.TechnicalTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *MemoryStore) ListTasks(_ context.Context, applicationID uuid.UUID) ([]types.TechnicalTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.TechnicalTask{}
	for _, t := range m.tasks {
		if t.ApplicationID == applicationID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b types.TechnicalTask) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (m *MemoryStore) UpdateTask(_ context.Context, t *types.TechnicalTask) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		return types.NotFound("technical task", t.ID)
	}
	t.UpdatedAt = m.tick()
	m.tasks[t.ID] = *t
	return nil
}

func (m *MemoryStore) DeleteTask(_ context.Context, id uuid.UUID) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return types.NotFound("technical task", id)
	}
	delete(m.tasks, id)
	return nil
}

func (m *MemoryStore) CreateOffer(_ context.Context, o *types.OfferDocument) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	o.CreatedAt = m.tick()
	o.UpdatedAt = o.CreatedAt
	m.offers[o.ID] = *o
	return nil
}

func (m *MemoryStore) GetOffer(_ context.Context, id uuid.UUID) (*types.OfferDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *MemoryStore) ListOffers(_ context.Context, applicationID uuid.UUID) ([]types.OfferDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.OfferDocument{}
	for _, o := range m.offers {
		if o.ApplicationID == applicationID {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b types.OfferDocument) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (m *MemoryStore) UpdateOffer(_ context.Context, o *types.OfferDocument) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.offers[o.ID]; !ok {
		return types.NotFound("offer", o.ID)
	}
	o.UpdatedAt = m.tick()
	m.offers[o.ID] = *o
	return nil
}

func (m *MemoryStore) CreateCompensation(_ context.Context, c *types.Compensation) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.comps {
		if existing.ApplicationID == c.ApplicationID {
			return &types.ErrConflict{Message: "compensation already initiated for this application"}
		}
	}
	c.CreatedAt = m.tick()
	c.UpdatedAt = c.CreatedAt
	m.comps[c.ID] = *c
	return nil
}

func (m *MemoryStore) GetCompensation(_ context.Context, id uuid.UUID) (*types.Compensation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comps[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *MemoryStore) GetCompensationByApplication(_ context.Context, applicationID uuid.UUID) (*types.Compensation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.comps {
		if c.ApplicationID == applicationID {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) UpdateCompensation(_ context.Context, c *types.Compensation) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comps[c.ID]; !ok {
		return types.NotFound("compensation", c.ID)
	}
	c.UpdatedAt = m.tick()
	m.comps[c.ID] = *c
	return nil
}

func (m *MemoryStore) CreateMeeting(_ context.Context, mt *types.CompensationMeeting) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	mt.CreatedAt = m.tick()
	mt.UpdatedAt = mt.CreatedAt
	m.meetings[mt.ID] = *mt
	return nil
}

func (m *MemoryStore) GetMeeting(_ context.Context, id uuid.UUID) (*types.CompensationMeeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.meetings[id]
	if !ok {
		return nil, nil
	}
	return &mt, nil
}

func (m *MemoryStore) ListMeetings(_ context.Context, applicationID uuid.UUID) ([]types.CompensationMeeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.CompensationMeeting{}
	for _, mt := range m.meetings {
		if mt.ApplicationID == applicationID {
			out = append(out, mt)
		}
	}
	slices.SortFunc(out, func(a, b types.CompensationMeeting) int { return a.ScheduledDate.Compare(b.ScheduledDate) })
	return out, nil
}

func (m *MemoryStore) UpdateMeeting(_ context.Context, mt *types.CompensationMeeting) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.meetings[mt.ID]; !ok {
		return types.NotFound("compensation meeting", mt.ID)
	}
	mt.UpdatedAt = m.tick()
	m.meetings[mt.ID] = *mt
	return nil
}

func (m *MemoryStore) CreateComment(_ context.Context, c *types.Comment) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	c.CreatedAt = m.tick()
	m.comments = append(m.comments, *c)
	return nil
}

func (m *MemoryStore) ListComments(_ context.Context, applicationID uuid.UUID) ([]types.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.Comment{}
	for _, c := range m.comments {
		if c.ApplicationID == applicationID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateActivity(_ context.Context, a *types.Activity) error {
	defer m.exclusive()()
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = m.tick()
	}
	m.activities = append(m.activities, *a)
	return nil
}

func (m *MemoryStore) ListActivities(_ context.Context, applicationID uuid.UUID) ([]types.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.Activity{}
	for i := len(m.activities) - 1; i >= 0; i-- {
		if m.activities[i].ApplicationID == applicationID {
			out = append(out, m.activities[i])
		}
	}
	return out, nil
}
