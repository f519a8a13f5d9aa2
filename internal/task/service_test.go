// AngelaMos | 2026
// service_test.go

package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wemanage-app/backend/internal/core"
	"github.com/wemanage-app/backend/internal/middleware"
)

type fakeRepo struct {
	nextID int64
	tasks  map[int64]*Task
	teams  map[int64]map[int64]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		nextID: 1,
		tasks:  make(map[int64]*Task),
		teams:  make(map[int64]map[int64]bool),
	}
}

func (f *fakeRepo) Create(_ context.Context, t *Task) error {
	t.ID = f.nextID
	f.nextID++
	clone := *t
	f.tasks[t.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Task, error) {
	if t, ok := f.tasks[id]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) ListByProject(
	_ context.Context,
	projectID int64,
) ([]Task, error) {
	var out []Task
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	return out, nil
}

// ListAccessible mirrors the SQL predicate: assigned to the user, or in
// a project the user is a member of.
func (f *fakeRepo) ListAccessible(_ context.Context, userID int64) ([]Task, error) {
	var out []Task
	for _, t := range f.tasks {
		assigned := t.AssignedTo != nil && *t.AssignedTo == userID
		if assigned || f.teams[userID][t.ProjectID] {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]Task, error) {
	out := make([]Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, t *Task) error {
	if _, ok := f.tasks[t.ID]; !ok {
		return core.ErrNotFound
	}
	clone := *t
	f.tasks[t.ID] = &clone
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.tasks[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeRepo) countByStatus(tasks []Task) []StatusCount {
	byStatus := make(map[Status]int)
	for _, t := range tasks {
		byStatus[t.Status]++
	}
	out := make([]StatusCount, 0, len(byStatus))
	for status, count := range byStatus {
		out = append(out, StatusCount{Status: status, Count: count})
	}
	return out
}

func (f *fakeRepo) CountByStatusAccessible(
	ctx context.Context,
	userID int64,
) ([]StatusCount, error) {
	tasks, _ := f.ListAccessible(ctx, userID)
	return f.countByStatus(tasks), nil
}

func (f *fakeRepo) CountByStatusAll(ctx context.Context) ([]StatusCount, error) {
	tasks, _ := f.ListAll(ctx)
	return f.countByStatus(tasks), nil
}

func (f *fakeRepo) CountByStatusProject(
	ctx context.Context,
	projectID int64,
) ([]StatusCount, error) {
	tasks, _ := f.ListByProject(ctx, projectID)
	return f.countByStatus(tasks), nil
}

func (f *fakeRepo) Count(_ context.Context) (int, error) {
	return len(f.tasks), nil
}

// fakeAccess allows a fixed set of project ids per user; admins always
// pass, mirroring the real gate.
type fakeAccess struct {
	allowed map[int64]map[int64]bool
}

func (f *fakeAccess) CheckAccess(
	_ context.Context,
	identity *middleware.Identity,
	projectID int64,
) error {
	if identity.IsAdmin() {
		return nil
	}
	if f.allowed[identity.UserID][projectID] {
		return nil
	}
	return core.ErrForbidden
}

type assignmentEvent struct {
	userID  int64
	taskID  int64
	title   string
	updated bool
}

type fakeNotifier struct {
	events []assignmentEvent
	err    error
}

func (f *fakeNotifier) NotifyTaskAssigned(
	_ context.Context,
	userID, taskID int64,
	title string,
) error {
	return f.record(userID, taskID, title, false)
}

func (f *fakeNotifier) NotifyTaskUpdated(
	_ context.Context,
	userID, taskID int64,
	title string,
) error {
	return f.record(userID, taskID, title, true)
}

func (f *fakeNotifier) record(
	userID, taskID int64,
	title string,
	updated bool,
) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, assignmentEvent{
		userID:  userID,
		taskID:  taskID,
		title:   title,
		updated: updated,
	})
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeNotifier) {
	repo := newFakeRepo()
	repo.teams = map[int64]map[int64]bool{
		5: {100: true},
	}
	notifier := &fakeNotifier{}
	access := &fakeAccess{allowed: map[int64]map[int64]bool{
		5: {100: true},
	}}
	return NewService(repo, access, notifier), repo, notifier
}

func member() *middleware.Identity {
	return &middleware.Identity{UserID: 5, Role: "USER"}
}

func outsider() *middleware.Identity {
	return &middleware.Identity{UserID: 6, Role: "USER"}
}

func admin() *middleware.Identity {
	return &middleware.Identity{UserID: 1, Role: "ADMIN"}
}

func TestCreateGatedByProjectAccess(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, outsider(), CreateTaskRequest{
		ProjectID: 100,
		Title:     "Ship it",
	})
	assert.ErrorIs(t, err, core.ErrForbidden)

	resp, err := svc.Create(ctx, member(), CreateTaskRequest{
		ProjectID: 100,
		Title:     "Ship it",
	})
	require.NoError(t, err)
	assert.Equal(t, string(StatusTodo), resp.Status)
	assert.Equal(t, string(PriorityMedium), resp.Priority)
}

func TestCreateNotifiesAssignee(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()

	assignee := int64(9)
	resp, err := svc.Create(ctx, member(), CreateTaskRequest{
		ProjectID:  100,
		Title:      "Review design",
		AssignedTo: &assignee,
	})
	require.NoError(t, err)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, assignee, notifier.events[0].userID)
	assert.Equal(t, resp.ID, notifier.events[0].taskID)
	assert.Equal(t, "Review design", notifier.events[0].title)
}

func TestUpdatePartial(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, member(), CreateTaskRequest{
		ProjectID:   100,
		Title:       "Ship it",
		Description: "before",
	})
	require.NoError(t, err)

	status := "DONE"
	resp, err := svc.Update(ctx, member(), created.ID, UpdateTaskRequest{
		Status: &status,
	})
	require.NoError(t, err)

	assert.Equal(t, "DONE", resp.Status)
	assert.Equal(t, "Ship it", resp.Title)
	assert.Equal(t, "before", resp.Description)
	assert.Equal(t, StatusDone, repo.tasks[created.ID].Status)
}

func TestUpdateReassignmentNotifies(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()

	first := int64(9)
	created, err := svc.Create(ctx, member(), CreateTaskRequest{
		ProjectID:  100,
		Title:      "Ship it",
		AssignedTo: &first,
	})
	require.NoError(t, err)
	require.Len(t, notifier.events, 1)

	// Re-saving with the same assignee stays quiet.
	_, err = svc.Update(ctx, member(), created.ID, UpdateTaskRequest{
		AssignedTo: &first,
	})
	require.NoError(t, err)
	assert.Len(t, notifier.events, 1)
	assert.False(t, notifier.events[0].updated)

	second := int64(10)
	_, err = svc.Update(ctx, member(), created.ID, UpdateTaskRequest{
		AssignedTo: &second,
	})
	require.NoError(t, err)
	require.Len(t, notifier.events, 2)
	assert.Equal(t, second, notifier.events[1].userID)
	assert.True(t, notifier.events[1].updated)
}

func TestNotificationFailureDoesNotFailWrite(t *testing.T) {
	svc, repo, notifier := newTestService()
	notifier.err = core.ErrNotFound
	ctx := context.Background()

	assignee := int64(9)
	resp, err := svc.Create(ctx, member(), CreateTaskRequest{
		ProjectID:  100,
		Title:      "Ship it",
		AssignedTo: &assignee,
	})
	require.NoError(t, err)
	_, ok := repo.tasks[resp.ID]
	assert.True(t, ok)
}

func TestListIncludesTasksAssignedOutsideTeam(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// User 6 is not on project 100's team but gets a task assigned.
	assignee := int64(6)
	created, err := svc.Create(ctx, member(), CreateTaskRequest{
		ProjectID:  100,
		Title:      "Handed over",
		AssignedTo: &assignee,
	})
	require.NoError(t, err)

	visible, err := svc.List(ctx, outsider(), 0)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, created.ID, visible[0].ID)

	// The assignment shows up in their report too.
	report, err := svc.Report(ctx, outsider(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
}

func TestGetGated(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, member(), CreateTaskRequest{
		ProjectID: 100,
		Title:     "Ship it",
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, outsider(), created.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Get(ctx, admin(), created.ID)
	assert.NoError(t, err)
}

func TestReport(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	statuses := []string{"TO_DO", "DONE", "DONE", "IN_PROGRESS"}
	for _, status := range statuses {
		s := status
		_, err := svc.Create(ctx, member(), CreateTaskRequest{
			ProjectID: 100,
			Title:     "Task " + s,
			Status:    s,
		})
		require.NoError(t, err)
	}

	report, err := svc.Report(ctx, member(), 0)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Done)
	assert.Equal(t, 1, report.ToDo)
	assert.Equal(t, 1, report.InProgress)
	assert.Equal(t, 50, report.CompletionRate)
}

func TestReportProjectFilterGated(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	done := "DONE"
	_, err := svc.Create(ctx, member(), CreateTaskRequest{
		ProjectID: 100,
		Title:     "Finished",
		Status:    done,
	})
	require.NoError(t, err)

	_, err = svc.Report(ctx, outsider(), 100)
	assert.ErrorIs(t, err, core.ErrForbidden)

	report, err := svc.Report(ctx, member(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Done)
	assert.Equal(t, 100, report.CompletionRate)
}

func TestReportEmpty(t *testing.T) {
	svc, _, _ := newTestService()

	report, err := svc.Report(context.Background(), member(), 0)
	require.NoError(t, err)

	assert.Zero(t, report.Total)
	assert.Zero(t, report.CompletionRate)
}
