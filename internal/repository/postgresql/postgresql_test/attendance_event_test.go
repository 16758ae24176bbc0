package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	orgID     string
	branchA   string
	branchB   string
	deviceID  string
	aliceID   string
	bobID     string
	day       time.Time
	setup     *TestDatabaseSetup
	eventRepo attendance.EventRepository
	directory attendance.EmployeeDirectory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	setup, ok, err := NewTestDatabase(ctx)
	if !ok {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, err)
	t.Cleanup(setup.Close)
	require.NoError(t, setup.TruncateAllTables(ctx))

	f := &fixture{
		orgID:     uuid.NewString(),
		branchA:   uuid.NewString(),
		branchB:   uuid.NewString(),
		day:       time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		setup:     setup,
		eventRepo: postgresql.NewAttendanceEventRepository(setup.DB),
		directory: postgresql.NewEmployeeRepository(setup.DB),
	}

	f.aliceID = f.insertEmployee(t, "Alice", "Anderson", "0001-0001")
	f.bobID = f.insertEmployee(t, "Bob", "Brown", "0001-0002")

	err = setup.DB.QueryRow(ctx, `
		INSERT INTO devices (organization_id, branch_id, name)
		VALUES ($1, $2, 'Lobby Gate')
		RETURNING id
	`, f.orgID, f.branchA).Scan(&f.deviceID)
	require.NoError(t, err)

	return f
}

func (f *fixture) insertEmployee(t *testing.T, first, last, code string) string {
	t.Helper()
	var id string
	err := f.setup.DB.QueryRow(context.Background(), `
		INSERT INTO employees (organization_id, first_name, last_name, employee_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, f.orgID, first, last, code).Scan(&id)
	require.NoError(t, err)
	return id
}

func (f *fixture) insertEvent(t *testing.T, branchID string, employeeID *string, eventType attendance.EventType, ts time.Time) string {
	t.Helper()
	var id string
	err := f.setup.DB.QueryRow(context.Background(), `
		INSERT INTO attendance_events (organization_id, branch_id, employee_id, device_id, event_type, timestamp, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, f.orgID, branchID, employeeID, f.deviceID, string(eventType), ts, map[string]any{"source": "test"}).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestAttendanceEventRepository_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.insertEvent(t, f.branchA, &f.aliceID, attendance.EventTypeCheckIn, f.day.Add(9*time.Hour))
	f.insertEvent(t, f.branchA, &f.aliceID, attendance.EventTypeCheckOut, f.day.Add(17*time.Hour))
	f.insertEvent(t, f.branchB, &f.bobID, attendance.EventTypeCheckIn, f.day.Add(8*time.Hour))
	f.insertEvent(t, f.branchA, nil, attendance.EventTypeCheckIn, f.day.Add(10*time.Hour))
	f.insertEvent(t, f.branchA, &f.aliceID, attendance.EventTypeCheckIn, f.day.AddDate(0, 0, 1).Add(9*time.Hour))

	start := f.day
	end := f.day.AddDate(0, 0, 1)

	t.Run("window is half open and ordered ascending", func(t *testing.T) {
		events, err := f.eventRepo.List(ctx, attendance.EventQuery{OrganizationID: f.orgID, Start: &start, End: &end})
		require.NoError(t, err)
		require.Len(t, events, 4)
		for i := 1; i < len(events); i++ {
			assert.False(t, events[i].Timestamp.Before(events[i-1].Timestamp))
		}
	})

	t.Run("joins employee and device", func(t *testing.T) {
		events, err := f.eventRepo.List(ctx, attendance.EventQuery{OrganizationID: f.orgID, EmployeeID: &f.aliceID, Start: &start, End: &end})
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.NotNil(t, events[0].Employee)
		assert.Equal(t, "Alice Anderson", events[0].Employee.FullName())
		assert.Equal(t, "0001-0001", events[0].Employee.EmployeeCode)
		require.NotNil(t, events[0].Device)
		assert.Equal(t, "Lobby Gate", events[0].Device.Name)
		assert.Equal(t, "test", events[0].Metadata["source"])
	})

	t.Run("guest events have no employee join", func(t *testing.T) {
		checkIn := attendance.EventTypeCheckIn
		events, err := f.eventRepo.List(ctx, attendance.EventQuery{OrganizationID: f.orgID, BranchID: &f.branchA, EventType: &checkIn, Start: &start, End: &end})
		require.NoError(t, err)
		require.Len(t, events, 2)
		guests := 0
		for _, ev := range events {
			if ev.IsGuest() {
				guests++
				assert.Nil(t, ev.Employee)
			}
		}
		assert.Equal(t, 1, guests)
	})

	t.Run("branch scope list", func(t *testing.T) {
		events, err := f.eventRepo.List(ctx, attendance.EventQuery{OrganizationID: f.orgID, BranchIDs: []string{f.branchB}})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, f.bobID, *events[0].EmployeeID)
	})

	t.Run("pagination newest first with count", func(t *testing.T) {
		query := attendance.EventQuery{OrganizationID: f.orgID, NewestFirst: true, Limit: 2, Offset: 0}
		events, err := f.eventRepo.List(ctx, query)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.True(t, events[0].Timestamp.After(events[1].Timestamp))

		total, err := f.eventRepo.Count(ctx, query)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
	})

	t.Run("other organization sees nothing", func(t *testing.T) {
		events, err := f.eventRepo.List(ctx, attendance.EventQuery{OrganizationID: uuid.NewString()})
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestAttendanceEventRepository_GetAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.insertEvent(t, f.branchA, &f.bobID, attendance.EventTypeCheckOut, f.day.Add(18*time.Hour))

	ev, err := f.eventRepo.GetByID(ctx, id, f.orgID)
	require.NoError(t, err)
	assert.Equal(t, attendance.EventTypeCheckOut, ev.EventType)
	assert.Equal(t, f.branchA, ev.BranchID)

	_, err = f.eventRepo.GetByID(ctx, id, uuid.NewString())
	assert.ErrorIs(t, err, attendance.ErrEventNotFound)

	err = postgresql.WithTransaction(ctx, f.setup.DB, func(txCtx context.Context) error {
		return f.eventRepo.Delete(txCtx, id, f.orgID)
	})
	require.NoError(t, err)

	_, err = f.eventRepo.GetByID(ctx, id, f.orgID)
	assert.ErrorIs(t, err, attendance.ErrEventNotFound)

	err = f.eventRepo.Delete(ctx, id, f.orgID)
	assert.ErrorIs(t, err, attendance.ErrEventNotFound)
}

func TestEmployeeRepository_Resolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	emp, err := f.directory.ResolveEmployee(ctx, f.aliceID, f.orgID)
	require.NoError(t, err)
	require.NotNil(t, emp)
	assert.Equal(t, "Alice", emp.FirstName)

	missing, err := f.directory.ResolveEmployee(ctx, uuid.NewString(), f.orgID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	unknown := uuid.NewString()
	byID, err := f.directory.GetByIDs(ctx, f.orgID, []string{f.aliceID, f.bobID, unknown})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
	assert.Equal(t, "Bob Brown", byID[f.bobID].FullName())
	_, ok := byID[unknown]
	assert.False(t, ok)

	empty, err := f.directory.GetByIDs(ctx, f.orgID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
