package core

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payroll.service/internal/core/model"
)

// fakeRepo is an in-memory WorkHoursRepository mirroring the store's
// approval semantics: inserts land unapproved and edits reset the flag.
type fakeRepo struct {
	entries map[int64]model.WorkHoursEntry
	nextID  int64
	stats   model.EmployeeStatistics

	lastFrom time.Time
	lastTo   time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[int64]model.WorkHoursEntry), nextID: 1}
}

func (r *fakeRepo) Create(_ context.Context, entry model.WorkHoursEntry) (int64, error) {
	entry.ID = r.nextID
	entry.Approved = false
	r.entries[entry.ID] = entry
	r.nextID++
	return entry.ID, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*model.WorkHoursEntry, error) {
	entry, ok := r.entries[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &entry, nil
}

func (r *fakeRepo) ListByEmployee(_ context.Context, employeeID int64) ([]model.WorkHoursEntry, error) {
	var out []model.WorkHoursEntry
	for _, e := range r.entries {
		if e.EmployeeID == employeeID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) ListAll(_ context.Context) ([]model.WorkHoursEntry, error) {
	var out []model.WorkHoursEntry
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) ListByEmployeeAndDateRange(ctx context.Context, employeeID int64, from, to time.Time) ([]model.WorkHoursEntry, error) {
	r.lastFrom, r.lastTo = from, to
	all, _ := r.ListByEmployee(ctx, employeeID)
	var out []model.WorkHoursEntry
	for _, e := range all {
		if !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.WorkHoursEntry, error) {
	all, _ := r.ListAll(ctx)
	var out []model.WorkHoursEntry
	for _, e := range all {
		if !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepo) Edit(_ context.Context, id int64, date time.Time, workTypeID int64, start, end *time.Time, comment string) error {
	entry, ok := r.entries[id]
	if !ok {
		return model.ErrNotFound
	}
	entry.Date = date
	entry.WorkTypeID = workTypeID
	entry.StartTime = start
	entry.EndTime = end
	entry.Comment = comment
	entry.Approved = false
	r.entries[id] = entry
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.entries[id]; !ok {
		return model.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *fakeRepo) Approve(_ context.Context, id int64) error {
	entry, ok := r.entries[id]
	if !ok {
		return model.ErrNotFound
	}
	entry.Approved = true
	r.entries[id] = entry
	return nil
}

func (r *fakeRepo) EmployeeStatistics(_ context.Context, employeeID int64) (*model.EmployeeStatistics, error) {
	stats := r.stats
	stats.EmployeeID = employeeID
	return &stats, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func clockTime(hour, minute int) *time.Time {
	t := time.Date(0, time.January, 1, hour, minute, 0, 0, time.UTC)
	return &t
}

func validCreateInput() CreateEntryInput {
	return CreateEntryInput{
		EmployeeID: 7,
		Date:       time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC),
		WorkTypeID: 1,
		StartTime:  clockTime(9, 0),
		EndTime:    clockTime(17, 30),
		Comment:    "regular day",
	}
}

func TestCreateEntry(t *testing.T) {
	repo := newFakeRepo()
	svc := NewWorkHoursService(repo)

	id, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	entry, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, entry.Approved, "new entries must start unapproved")
	assert.Equal(t, int64(7), entry.EmployeeID)
	assert.InDelta(t, 8.5, entry.Hours(), 1e-9)
}

func TestCreateEntryValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateEntryInput)
	}{
		{"missing employee", func(in *CreateEntryInput) { in.EmployeeID = 0 }},
		{"missing date", func(in *CreateEntryInput) { in.Date = time.Time{} }},
		{"missing work type", func(in *CreateEntryInput) { in.WorkTypeID = 0 }},
		{"start without end", func(in *CreateEntryInput) { in.EndTime = nil }},
		{"end without start", func(in *CreateEntryInput) { in.StartTime = nil }},
		{"end before start", func(in *CreateEntryInput) {
			in.StartTime = clockTime(17, 0)
			in.EndTime = clockTime(9, 0)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := NewWorkHoursService(repo)

			in := validCreateInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in)
			var validationErr *model.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Empty(t, repo.entries, "invalid input must not reach the store")
		})
	}
}

func TestCreateEntryWithoutTimes(t *testing.T) {
	repo := newFakeRepo()
	svc := NewWorkHoursService(repo)

	in := validCreateInput()
	in.StartTime = nil
	in.EndTime = nil

	id, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	entry, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, entry.HasDuration())
}

func TestEditResetsApproval(t *testing.T) {
	repo := newFakeRepo()
	svc := NewWorkHoursService(repo)

	id, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)
	require.NoError(t, svc.Approve(context.Background(), id))

	entry, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.True(t, entry.Approved)

	err = svc.Edit(context.Background(), id, EditEntryInput{
		Date:       entry.Date,
		WorkTypeID: entry.WorkTypeID,
		StartTime:  clockTime(10, 0),
		EndTime:    clockTime(18, 0),
		Comment:    "corrected times",
	})
	require.NoError(t, err)

	entry, err = svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, entry.Approved, "edit must send the entry back through review")
	assert.Equal(t, "corrected times", entry.Comment)
}

func TestEditValidation(t *testing.T) {
	repo := newFakeRepo()
	svc := NewWorkHoursService(repo)

	id, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	err = svc.Edit(context.Background(), id, EditEntryInput{
		Date:       time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC),
		WorkTypeID: 1,
		StartTime:  clockTime(9, 0),
	})
	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestEditMissingEntry(t *testing.T) {
	svc := NewWorkHoursService(newFakeRepo())

	err := svc.Edit(context.Background(), 42, EditEntryInput{
		Date:       time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC),
		WorkTypeID: 1,
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestApproveIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewWorkHoursService(repo)

	id, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	require.NoError(t, svc.Approve(context.Background(), id))
	require.NoError(t, svc.Approve(context.Background(), id))

	entry, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, entry.Approved)
}

func TestApproveMissingEntry(t *testing.T) {
	svc := NewWorkHoursService(newFakeRepo())
	assert.ErrorIs(t, svc.Approve(context.Background(), 42), model.ErrNotFound)
}

func TestDeleteEntry(t *testing.T) {
	repo := newFakeRepo()
	svc := NewWorkHoursService(repo)

	id, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)
	require.NoError(t, svc.Approve(context.Background(), id), "approved entries are deletable too")

	require.NoError(t, svc.Delete(context.Background(), id))

	_, err = svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), id), model.ErrNotFound)
}

func TestListByEmployeeAndDateRange(t *testing.T) {
	repo := newFakeRepo()
	svc := NewWorkHoursService(repo)

	for _, day := range []int{10, 12, 20} {
		in := validCreateInput()
		in.Date = time.Date(2024, time.June, day, 0, 0, 0, 0, time.UTC)
		_, err := svc.Create(context.Background(), in)
		require.NoError(t, err)
	}

	entries, err := svc.ListByEmployeeAndDateRange(context.Background(), 7,
		time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
