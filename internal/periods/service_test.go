package periods

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tempora-hq/tempora/internal/shared"
)

type memPeriodRepo struct {
	mu      sync.Mutex
	periods map[int64]Period
	nextID  int64
}

func newMemPeriodRepo() *memPeriodRepo {
	return &memPeriodRepo{periods: make(map[int64]Period)}
}

func (r *memPeriodRepo) Insert(ctx context.Context, year int, semester Semester) (Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.periods {
		if p.Year == year && p.Semester == semester {
			return Period{}, ErrPeriodExists
		}
	}
	r.nextID++
	now := time.Now()
	p := Period{ID: r.nextID, Year: year, Semester: semester, CreatedAt: now, UpdatedAt: now}
	r.periods[p.ID] = p
	return p, nil
}

// Activate holds the mutex across clear and set, mirroring the registry
// advisory lock the real repository takes before touching any row.
func (r *memPeriodRepo) Activate(ctx context.Context, id int64) (Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.periods[id]
	if !ok {
		return Period{}, ErrPeriodNotFound
	}
	for pid, p := range r.periods {
		if p.IsActive {
			p.IsActive = false
			r.periods[pid] = p
		}
	}
	target.IsActive = true
	target.UpdatedAt = time.Now()
	r.periods[id] = target
	return target, nil
}

func (r *memPeriodRepo) GetActive(ctx context.Context) (Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.periods {
		if p.IsActive {
			return p, nil
		}
	}
	return Period{}, ErrNoActivePeriod
}

func (r *memPeriodRepo) Get(ctx context.Context, id int64) (Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.periods[id]
	if !ok {
		return Period{}, ErrPeriodNotFound
	}
	return p, nil
}

func (r *memPeriodRepo) List(ctx context.Context) ([]Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Period, 0, len(r.periods))
	for _, p := range r.periods {
		out = append(out, p)
	}
	return out, nil
}

var _ Repository = (*memPeriodRepo)(nil)

var registryAdmin = shared.Principal{UserID: 1, Role: shared.RoleAdmin}

func TestCreateRejectsDuplicateTuple(t *testing.T) {
	svc := NewService(newMemPeriodRepo(), nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, registryAdmin, 2025, SemesterS1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, registryAdmin, 2025, SemesterS1)
	require.ErrorIs(t, err, ErrPeriodExists)

	// Same year, other semester is fine.
	_, err = svc.Create(ctx, registryAdmin, 2025, SemesterS2)
	require.NoError(t, err)
}

func TestCreateRejectsImplausibleYear(t *testing.T) {
	svc := NewService(newMemPeriodRepo(), nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, registryAdmin, 1999, SemesterS1)
	require.ErrorIs(t, err, ErrInvalidYear)
	_, err = svc.Create(ctx, registryAdmin, 2101, SemesterS1)
	require.ErrorIs(t, err, ErrInvalidYear)
}

func TestActivateSwapsActiveFlag(t *testing.T) {
	svc := NewService(newMemPeriodRepo(), nil, nil)
	ctx := context.Background()

	s1, err := svc.Create(ctx, registryAdmin, 2025, SemesterS1)
	require.NoError(t, err)
	s2, err := svc.Create(ctx, registryAdmin, 2025, SemesterS2)
	require.NoError(t, err)

	_, err = svc.Activate(ctx, registryAdmin, s1.ID)
	require.NoError(t, err)

	// Activating S2 deactivates S1 in the same swap.
	_, err = svc.Activate(ctx, registryAdmin, s2.ID)
	require.NoError(t, err)

	active, err := svc.GetActive(ctx)
	require.NoError(t, err)
	require.Equal(t, s2.ID, active.ID)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	activeCount := 0
	for _, p := range list {
		if p.IsActive {
			activeCount++
		}
	}
	require.Equal(t, 1, activeCount)
}

func TestActivateUnknownPeriod(t *testing.T) {
	svc := NewService(newMemPeriodRepo(), nil, nil)

	_, err := svc.Activate(context.Background(), registryAdmin, 404)
	require.ErrorIs(t, err, ErrPeriodNotFound)
}

func TestConcurrentActivationsLeaveOneActive(t *testing.T) {
	repo := newMemPeriodRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	ids := make([]int64, 0, 6)
	for year := 2023; year <= 2025; year++ {
		for _, semester := range []Semester{SemesterS1, SemesterS2} {
			p, err := svc.Create(ctx, registryAdmin, year, semester)
			require.NoError(t, err)
			ids = append(ids, p.ID)
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			_, errs[i] = svc.Activate(ctx, registryAdmin, id)
		}(i, id)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	activeCount := 0
	for _, p := range list {
		if p.IsActive {
			activeCount++
		}
	}
	require.Equal(t, 1, activeCount)
}

func TestIsAllowed(t *testing.T) {
	svc := NewService(newMemPeriodRepo(), nil, nil)
	ctx := context.Background()

	// No active period accepts nothing.
	ok, err := svc.IsAllowed(ctx, 2025, SemesterS1)
	require.NoError(t, err)
	require.False(t, ok)

	p, err := svc.Create(ctx, registryAdmin, 2025, SemesterS1)
	require.NoError(t, err)
	_, err = svc.Activate(ctx, registryAdmin, p.ID)
	require.NoError(t, err)

	ok, err = svc.IsAllowed(ctx, 2025, SemesterS1)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.IsAllowed(ctx, 2025, SemesterS2)
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = svc.IsAllowed(ctx, 2024, SemesterS1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestParseSemester(t *testing.T) {
	s, err := ParseSemester("S1")
	require.NoError(t, err)
	require.Equal(t, SemesterS1, s)
	s, err = ParseSemester("S2")
	require.NoError(t, err)
	require.Equal(t, SemesterS2, s)
	_, err = ParseSemester("S3")
	require.Error(t, err)
	_, err = ParseSemester("")
	require.Error(t, err)
}
