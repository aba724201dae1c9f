package timesheet

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tempora-hq/tempora/internal/periods"
	"github.com/tempora-hq/tempora/internal/shared"
)

type memEntryRepo struct {
	mu      sync.Mutex
	active  *periods.Period
	entries map[uuid.UUID]TimeEntry
	order   []uuid.UUID
	records []ValidationRecord
	nextRec int64
}

func newMemEntryRepo(active *periods.Period) *memEntryRepo {
	return &memEntryRepo{
		active:  active,
		entries: make(map[uuid.UUID]TimeEntry),
	}
}

type memEntryTx struct {
	repo *memEntryRepo
}

// WithTx serializes callers the way the advisory lock does in postgres.
func (r *memEntryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, &memEntryTx{repo: r})
}

func (r *memEntryRepo) Get(ctx context.Context, id uuid.UUID) (TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *memEntryRepo) get(id uuid.UUID) (TimeEntry, error) {
	entry, ok := r.entries[id]
	if !ok {
		return TimeEntry{}, ErrEntryNotFound
	}
	return entry, nil
}

func (r *memEntryRepo) ListByTuple(ctx context.Context, userID int64, year int, semester periods.Semester) ([]TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []TimeEntry
	for _, id := range r.order {
		e := r.entries[id]
		if e.UserID == userID && e.Year == year && e.Semester == semester {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEntryRepo) ListByUser(ctx context.Context, userID int64) ([]TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []TimeEntry
	for _, id := range r.order {
		if e := r.entries[id]; e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEntryRepo) SumHours(ctx context.Context, userID int64, year int, semester periods.Semester) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sumHours(userID, year, semester), nil
}

func (r *memEntryRepo) sumHours(userID int64, year int, semester periods.Semester) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range r.entries {
		if e.UserID == userID && e.Year == year && e.Semester == semester {
			sum = sum.Add(e.Hours)
		}
	}
	return sum
}

func (r *memEntryRepo) StatusCounts(ctx context.Context, userID int64, year int, semester periods.Semester) ([]StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[EntryStatus]int)
	for _, e := range r.entries {
		if e.UserID == userID && e.Year == year && e.Semester == semester {
			counts[e.Status]++
		}
	}
	out := make([]StatusCount, 0, len(counts))
	for status, count := range counts {
		out = append(out, StatusCount{Status: status, Count: count})
	}
	return out, nil
}

func (r *memEntryRepo) History(ctx context.Context, entryID uuid.UUID) ([]ValidationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ValidationRecord
	for _, rec := range r.records {
		if rec.EntryID == entryID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (t *memEntryTx) ActivePeriod(ctx context.Context) (periods.Period, error) {
	if t.repo.active == nil {
		return periods.Period{}, periods.ErrNoActivePeriod
	}
	return *t.repo.active, nil
}

func (t *memEntryTx) AcquireBudgetLock(ctx context.Context, userID int64, year int, semester periods.Semester) error {
	return nil
}

func (t *memEntryTx) SumHours(ctx context.Context, userID int64, year int, semester periods.Semester) (decimal.Decimal, error) {
	return t.repo.sumHours(userID, year, semester), nil
}

func (t *memEntryTx) GetForUpdate(ctx context.Context, id uuid.UUID) (TimeEntry, error) {
	return t.repo.get(id)
}

func (t *memEntryTx) Insert(ctx context.Context, entry TimeEntry) error {
	t.repo.entries[entry.ID] = entry
	t.repo.order = append(t.repo.order, entry.ID)
	return nil
}

func (t *memEntryTx) UpdateContent(ctx context.Context, entry TimeEntry) error {
	stored, err := t.repo.get(entry.ID)
	if err != nil {
		return err
	}
	stored.ProjectID = entry.ProjectID
	stored.ActivityID = entry.ActivityID
	stored.Hours = entry.Hours
	stored.Comment = entry.Comment
	stored.UpdatedAt = entry.UpdatedAt
	t.repo.entries[entry.ID] = stored
	return nil
}

func (t *memEntryTx) UpdateStatus(ctx context.Context, entry TimeEntry) error {
	stored, err := t.repo.get(entry.ID)
	if err != nil {
		return err
	}
	stored.Status = entry.Status
	stored.UpdatedAt = entry.UpdatedAt
	stored.LastValidatedBy = entry.LastValidatedBy
	stored.LastValidatedAt = entry.LastValidatedAt
	t.repo.entries[entry.ID] = stored
	return nil
}

func (t *memEntryTx) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := t.repo.get(id); err != nil {
		return err
	}
	delete(t.repo.entries, id)
	for i, oid := range t.repo.order {
		if oid == id {
			t.repo.order = append(t.repo.order[:i], t.repo.order[i+1:]...)
			break
		}
	}
	return nil
}

func (t *memEntryTx) AppendValidationRecord(ctx context.Context, rec ValidationRecord) (ValidationRecord, error) {
	t.repo.nextRec++
	rec.ID = t.repo.nextRec
	t.repo.records = append(t.repo.records, rec)
	return rec, nil
}

var (
	_ Repository   = (*memEntryRepo)(nil)
	_ TxRepository = (*memEntryTx)(nil)
)

func activePeriod() *periods.Period {
	return &periods.Period{ID: 1, Year: 2025, Semester: periods.SemesterS1, IsActive: true}
}

func newTestService(repo Repository) *Service {
	return NewService(repo, NewLedger(decimal.NewFromInt(DefaultCeilingHours)), nil, nil)
}

func hours(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var (
	staff     = shared.Principal{UserID: 7, Role: shared.RoleStaff}
	validator = shared.Principal{UserID: 42, Role: shared.RolePMSU}
	admin     = shared.Principal{UserID: 1, Role: shared.RoleAdmin}
	manager   = shared.Principal{UserID: 99, Role: shared.RoleManagement}
)

func TestSubmitReservesWithinCeiling(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("470")})
	require.NoError(t, err)

	// 15 more would breach the 480 ceiling.
	_, err = svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("15")})
	require.ErrorIs(t, err, ErrBudgetExceeded)

	// 10 fits exactly.
	_, err = svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("10")})
	require.NoError(t, err)

	remaining, err := svc.Remaining(ctx, staff.UserID, 2025, periods.SemesterS1)
	require.NoError(t, err)
	require.True(t, remaining.IsZero(), "remaining = %s", remaining)
}

func TestSubmitValidation(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("0")})
	require.ErrorIs(t, err, ErrInvalidHours)

	_, err = svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("-3")})
	require.ErrorIs(t, err, ErrInvalidHours)

	_, err = svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 0, ActivityID: 2, Hours: hours("8")})
	require.ErrorIs(t, err, ErrMissingReference)

	_, err = svc.Submit(ctx, manager, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("8")})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSubmitRequiresActivePeriod(t *testing.T) {
	repo := newMemEntryRepo(nil)
	svc := newTestService(repo)

	_, err := svc.Submit(context.Background(), staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("8")})
	require.ErrorIs(t, err, ErrPeriodMismatch)
}

func TestSubmitStampsActivePeriodTuple(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)

	entry, err := svc.Submit(context.Background(), staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("7.5")})
	require.NoError(t, err)
	require.Equal(t, 2025, entry.Year)
	require.Equal(t, periods.SemesterS1, entry.Semester)
	require.Equal(t, StatusPending, entry.Status)
	require.Equal(t, staff.UserID, entry.UserID)
}

func TestConcurrentSubmissionsNeverOverrunCeiling(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	const workers = 10
	chunk := hours("100")

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: chunk})
		}(i)
	}
	wg.Wait()

	committed := 0
	for _, err := range errs {
		if err == nil {
			committed++
		} else {
			require.ErrorIs(t, err, ErrBudgetExceeded)
		}
	}
	// 4 x 100 fit under 480, the fifth and later must be refused.
	require.Equal(t, 4, committed)

	consumed, err := svc.Consumed(ctx, staff.UserID, 2025, periods.SemesterS1)
	require.NoError(t, err)
	require.True(t, consumed.LessThanOrEqual(decimal.NewFromInt(DefaultCeilingHours)))
}

func TestSubmitForDelegation(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	entry, err := svc.SubmitFor(ctx, admin, staff.UserID, SubmitEntryInput{ProjectID: 3, ActivityID: 4, Hours: hours("6")})
	require.NoError(t, err)
	require.Equal(t, staff.UserID, entry.UserID)

	_, err = svc.SubmitFor(ctx, shared.Principal{UserID: 8, Role: shared.RoleStaff}, staff.UserID, SubmitEntryInput{ProjectID: 3, ActivityID: 4, Hours: hours("6")})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestEditExcludesOwnHoursFromBudgetCheck(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("400")})
	require.NoError(t, err)
	entry, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("70")})
	require.NoError(t, err)

	// 70 -> 80 keeps the total at the ceiling exactly.
	newHours := hours("80")
	updated, err := svc.Edit(ctx, validator, entry.ID, EditEntryInput{Hours: &newHours})
	require.NoError(t, err)
	require.True(t, updated.Hours.Equal(newHours))

	// 80 -> 90 would overrun.
	over := hours("90")
	_, err = svc.Edit(ctx, validator, entry.ID, EditEntryInput{Hours: &over})
	require.ErrorIs(t, err, ErrBudgetExceeded)
}

func TestEditDoesNotTouchStatus(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	entry, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("8")})
	require.NoError(t, err)
	_, err = svc.Transition(ctx, validator, entry.ID, TransitionInput{Status: StatusRejected, Comment: "wrong project"})
	require.NoError(t, err)

	projectID := int64(5)
	updated, err := svc.Edit(ctx, validator, entry.ID, EditEntryInput{ProjectID: &projectID})
	require.NoError(t, err)
	require.Equal(t, StatusRejected, updated.Status, "edits must not reset the workflow")
}

func TestEditRequiresPrivilege(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	entry, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("8")})
	require.NoError(t, err)

	comment := "mine"
	_, err = svc.Edit(ctx, staff, entry.ID, EditEntryInput{Comment: &comment})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestEditRejectedWhenPeriodClosed(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	entry, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("8")})
	require.NoError(t, err)

	// The reporting window moves on to the next semester.
	repo.active = &periods.Period{ID: 2, Year: 2025, Semester: periods.SemesterS2, IsActive: true}

	newHours := hours("9")
	_, err = svc.Edit(ctx, validator, entry.ID, EditEntryInput{Hours: &newHours})
	require.ErrorIs(t, err, ErrPeriodMismatch)
}

func TestDeleteOwnerOnlyWhilePending(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	entry, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("8")})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, staff, entry.ID))

	entry, err = svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("8")})
	require.NoError(t, err)
	_, err = svc.Transition(ctx, validator, entry.ID, TransitionInput{Status: StatusApproved})
	require.NoError(t, err)

	// The owner cannot remove a decided entry, a privileged role can.
	require.ErrorIs(t, svc.Delete(ctx, staff, entry.ID), ErrPermissionDenied)
	require.NoError(t, svc.Delete(ctx, validator, entry.ID))
}

func TestDeleteReleasesBudget(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	entry, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("480")})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("1")})
	require.ErrorIs(t, err, ErrBudgetExceeded)

	require.NoError(t, svc.Delete(ctx, staff, entry.ID))
	_, err = svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("480")})
	require.NoError(t, err)
}

func TestTransitionWalk(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	entry, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("8")})
	require.NoError(t, err)

	updated, err := svc.Transition(ctx, validator, entry.ID, TransitionInput{Status: StatusRevised, Comment: "split by activity"})
	require.NoError(t, err)
	require.Equal(t, StatusRevised, updated.Status)

	updated, err = svc.Transition(ctx, validator, entry.ID, TransitionInput{Status: StatusRejected, Comment: "still wrong"})
	require.NoError(t, err)
	require.Equal(t, StatusRejected, updated.Status)

	updated, err = svc.Transition(ctx, validator, entry.ID, TransitionInput{Status: StatusApproved})
	require.NoError(t, err)
	require.Equal(t, StatusApproved, updated.Status)
	require.NotNil(t, updated.LastValidatedBy)
	require.Equal(t, validator.UserID, *updated.LastValidatedBy)

	// APPROVED is terminal.
	_, err = svc.Transition(ctx, validator, entry.ID, TransitionInput{Status: StatusRejected})
	require.ErrorIs(t, err, ErrInvalidTransition)

	history, err := svc.History(ctx, entry.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, StatusRevised, history[0].Status)
	require.Equal(t, StatusRejected, history[1].Status)
	require.Equal(t, StatusApproved, history[2].Status)
	require.Equal(t, "split by activity", history[0].Comment)
}

func TestTransitionRequiresValidatorRole(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	entry, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("8")})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, staff, entry.ID, TransitionInput{Status: StatusApproved})
	require.ErrorIs(t, err, ErrPermissionDenied)
	_, err = svc.Transition(ctx, manager, entry.ID, TransitionInput{Status: StatusApproved})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGetRestrictsToOwnerOrReviewers(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	entry, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("8")})
	require.NoError(t, err)

	_, err = svc.Get(ctx, staff, entry.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, validator, entry.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, manager, entry.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, shared.Principal{UserID: 8, Role: shared.RoleStaff}, entry.ID)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestConsumedPlusRemainingEqualsCeiling(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	for _, h := range []string{"7.5", "120.25", "33"} {
		_, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours(h)})
		require.NoError(t, err)
	}

	consumed, err := svc.Consumed(ctx, staff.UserID, 2025, periods.SemesterS1)
	require.NoError(t, err)
	remaining, err := svc.Remaining(ctx, staff.UserID, 2025, periods.SemesterS1)
	require.NoError(t, err)
	require.True(t, consumed.Add(remaining).Equal(decimal.NewFromInt(DefaultCeilingHours)))
}

func TestAllApproved(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	// No entries: not approvable.
	ok, err := svc.AllApproved(ctx, staff.UserID, 2025, periods.SemesterS1)
	require.NoError(t, err)
	require.False(t, ok)

	first, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("8")})
	require.NoError(t, err)
	second, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("4")})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, validator, first.ID, TransitionInput{Status: StatusApproved})
	require.NoError(t, err)

	ok, err = svc.AllApproved(ctx, staff.UserID, 2025, periods.SemesterS1)
	require.NoError(t, err)
	require.False(t, ok, "one entry still pending")

	_, err = svc.Transition(ctx, validator, second.ID, TransitionInput{Status: StatusApproved})
	require.NoError(t, err)

	ok, err = svc.AllApproved(ctx, staff.UserID, 2025, periods.SemesterS1)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestHistoryUnknownEntry(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)

	_, err := svc.History(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestWithNowControlsTimestamps(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return fixed })

	entry, err := svc.Submit(context.Background(), staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("8")})
	require.NoError(t, err)
	require.Equal(t, fixed, entry.CreatedAt)
	require.Equal(t, fixed, entry.UpdatedAt)
}

type memInvalidator struct {
	bumps int
}

func (m *memInvalidator) Bump(ctx context.Context) error {
	m.bumps++
	return nil
}

func TestEntryMutationsInvalidateSummaries(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	inv := &memInvalidator{}
	svc.WithInvalidator(inv)
	ctx := context.Background()

	entry, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("10")})
	require.NoError(t, err)
	require.Equal(t, 1, inv.bumps, "a new entry changes the aggregated hours")

	newHours := hours("12")
	_, err = svc.Edit(ctx, admin, entry.ID, EditEntryInput{Hours: &newHours})
	require.NoError(t, err)
	require.Equal(t, 2, inv.bumps, "an edit changes the aggregated hours")

	// A rejected reservation committed nothing, so nothing to invalidate.
	_, err = svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("480")})
	require.ErrorIs(t, err, ErrBudgetExceeded)
	require.Equal(t, 2, inv.bumps)

	// Status changes leave hours and grouping untouched.
	_, err = svc.Transition(ctx, validator, entry.ID, TransitionInput{Status: StatusApproved})
	require.NoError(t, err)
	require.Equal(t, 2, inv.bumps)

	require.NoError(t, svc.Delete(ctx, admin, entry.ID))
	require.Equal(t, 3, inv.bumps, "a delete releases hours back")
}

func TestListForUserSpansPeriods(t *testing.T) {
	repo := newMemEntryRepo(activePeriod())
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("8")})
	require.NoError(t, err)

	repo.active = &periods.Period{ID: 2, Year: 2025, Semester: periods.SemesterS2, IsActive: true}
	second, err := svc.Submit(ctx, staff, SubmitEntryInput{ProjectID: 1, ActivityID: 2, Hours: hours("4")})
	require.NoError(t, err)

	all, err := svc.ListForUser(ctx, staff.UserID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, first.ID, all[0].ID)
	require.Equal(t, second.ID, all[1].ID)

	s1Only, err := svc.ListByTuple(ctx, staff.UserID, 2025, periods.SemesterS1)
	require.NoError(t, err)
	require.Len(t, s1Only, 1)
	require.Equal(t, first.ID, s1Only[0].ID)
}
