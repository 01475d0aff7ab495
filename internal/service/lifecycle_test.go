package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nagarik-sewa/backend/internal/directory"
	"github.com/nagarik-sewa/backend/internal/models"
	"github.com/nagarik-sewa/backend/internal/store"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// clock is a settable Now() for the services.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testDirectory() *directory.Directory {
	return directory.New([]models.Office{
		{
			ID: "dao_ktm", Name: "DAO Kathmandu", OfficeType: "district_administration_office",
			District: "Kathmandu", Province: "Bagmati Province",
			Services: []models.OfficeService{{ID: "citizenship", Name: "Citizenship Certificate"}},
		},
		{
			ID: "dao_lal", Name: "DAO Lalitpur", OfficeType: "district_administration_office",
			District: "Lalitpur", Province: "Bagmati Province",
		},
		{
			ID: "dao_kaski", Name: "DAO Kaski", OfficeType: "district_administration_office",
			District: "Kaski", Province: "Gandaki Province",
		},
	})
}

func newTestVisitService() (*VisitService, *clock) {
	c := &clock{t: t0}
	svc := NewVisitService(store.NewMemoryStore(), testDirectory(), zerolog.Nop())
	svc.Now = c.now
	return svc, c
}

func validRating() RatingInput {
	return RatingInput{
		OverallRating:            5,
		StaffBehaviorRating:      4,
		CleanlinessRating:        3,
		ProcessEfficiencyRating:  4,
		InformationClarityRating: 5,
	}
}

func TestStartVisitRequiresIDs(t *testing.T) {
	svc, _ := newTestVisitService()
	ctx := context.Background()

	var validationErr *ValidationError
	if _, err := svc.StartVisit(ctx, "", "citizenship", ""); !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for empty office_id, got %v", err)
	}
	if _, err := svc.StartVisit(ctx, "dao_ktm", "", ""); !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for empty service_id, got %v", err)
	}
}

func TestStartVisitCreatesRunningVisit(t *testing.T) {
	svc, _ := newTestVisitService()
	visit, err := svc.StartVisit(context.Background(), "dao_ktm", "citizenship", "user-7")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if visit.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if visit.State != models.VisitRunning {
		t.Fatalf("expected RUNNING, got %s", visit.State)
	}
	if !visit.StartTime.Equal(t0) {
		t.Fatalf("expected start %v, got %v", t0, visit.StartTime)
	}
	if visit.EndTime != nil {
		t.Fatalf("end time must be unset on start")
	}
}

func TestEndVisitComputesFlooredWait(t *testing.T) {
	svc, c := newTestVisitService()
	ctx := context.Background()

	visit, err := svc.StartVisit(ctx, "dao_ktm", "citizenship", "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	c.advance(17*time.Minute + 32*time.Second)

	ended, err := svc.EndVisit(ctx, visit.ID, models.ServiceSuccess)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if ended.State != models.VisitEnded {
		t.Fatalf("expected ENDED, got %s", ended.State)
	}
	if ended.WaitDurationMinutes == nil || *ended.WaitDurationMinutes != 17 {
		t.Fatalf("expected wait 17 minutes, got %v", ended.WaitDurationMinutes)
	}
	if ended.ServiceStatus != models.ServiceSuccess {
		t.Fatalf("expected SUCCESS, got %s", ended.ServiceStatus)
	}
	if ended.EndTime == nil || ended.EndTime.Before(ended.StartTime) {
		t.Fatalf("end time must be set and not precede start time")
	}
}

func TestEndVisitRejectsBadStatus(t *testing.T) {
	svc, _ := newTestVisitService()
	var validationErr *ValidationError
	if _, err := svc.EndVisit(context.Background(), "whatever", "MAYBE"); !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestEndVisitUnknownID(t *testing.T) {
	svc, _ := newTestVisitService()
	var notFound *NotFoundError
	if _, err := svc.EndVisit(context.Background(), "missing", models.ServiceSuccess); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestEndVisitNotIdempotent(t *testing.T) {
	svc, _ := newTestVisitService()
	ctx := context.Background()

	visit, _ := svc.StartVisit(ctx, "dao_ktm", "citizenship", "")
	if _, err := svc.EndVisit(ctx, visit.ID, models.ServiceSuccess); err != nil {
		t.Fatalf("first end: %v", err)
	}

	var stateErr *StateTransitionError
	if _, err := svc.EndVisit(ctx, visit.ID, models.ServiceFailed); !errors.As(err, &stateErr) {
		t.Fatalf("expected StateTransitionError on second end, got %v", err)
	}
}

func TestSubmitRatingBeforeEnd(t *testing.T) {
	svc, _ := newTestVisitService()
	ctx := context.Background()

	visit, _ := svc.StartVisit(ctx, "dao_ktm", "citizenship", "")
	var stateErr *StateTransitionError
	if _, err := svc.SubmitRating(ctx, visit.ID, validRating()); !errors.As(err, &stateErr) {
		t.Fatalf("expected StateTransitionError for rate-before-end, got %v", err)
	}
}

func TestSubmitRatingFlow(t *testing.T) {
	svc, _ := newTestVisitService()
	ctx := context.Background()

	visit, _ := svc.StartVisit(ctx, "dao_ktm", "citizenship", "")
	if _, err := svc.EndVisit(ctx, visit.ID, models.ServiceSuccess); err != nil {
		t.Fatalf("end: %v", err)
	}

	no := false
	input := validRating()
	input.AskedForBribe = &no
	input.WaitReason = "long_queue"

	rating, err := svc.SubmitRating(ctx, visit.ID, input)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rating.VisitID != visit.ID {
		t.Fatalf("rating bound to wrong visit")
	}

	updated, err := svc.Store.GetVisit(ctx, visit.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.State != models.VisitRated {
		t.Fatalf("expected RATED, got %s", updated.State)
	}

	// Second rating is rejected, never merged.
	var stateErr *StateTransitionError
	if _, err := svc.SubmitRating(ctx, visit.ID, validRating()); !errors.As(err, &stateErr) {
		t.Fatalf("expected StateTransitionError on duplicate rating, got %v", err)
	}
}

func TestSubmitRatingValidation(t *testing.T) {
	svc, _ := newTestVisitService()
	ctx := context.Background()

	visit, _ := svc.StartVisit(ctx, "dao_ktm", "citizenship", "")
	if _, err := svc.EndVisit(ctx, visit.ID, models.ServiceSuccess); err != nil {
		t.Fatalf("end: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*RatingInput)
	}{
		{"overall too low", func(in *RatingInput) { in.OverallRating = 0 }},
		{"overall too high", func(in *RatingInput) { in.OverallRating = 6 }},
		{"staff out of range", func(in *RatingInput) { in.StaffBehaviorRating = -1 }},
		{"clarity out of range", func(in *RatingInput) { in.InformationClarityRating = 9 }},
		{"unknown wait reason", func(in *RatingInput) { in.WaitReason = "monsoon" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRating()
			tc.mutate(&in)
			var validationErr *ValidationError
			if _, err := svc.SubmitRating(ctx, visit.ID, in); !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	// Visit must still be ratable after rejected payloads.
	if _, err := svc.SubmitRating(ctx, visit.ID, validRating()); err != nil {
		t.Fatalf("valid rating after rejections: %v", err)
	}
}

func TestConcurrentEndExactlyOneWins(t *testing.T) {
	svc, c := newTestVisitService()
	ctx := context.Background()

	visit, _ := svc.StartVisit(ctx, "dao_ktm", "citizenship", "")
	c.advance(10 * time.Minute)

	statuses := []models.ServiceStatus{models.ServiceSuccess, models.ServiceFailed}
	errs := make([]error, len(statuses))
	var wg sync.WaitGroup
	for i, status := range statuses {
		wg.Add(1)
		go func(i int, status models.ServiceStatus) {
			defer wg.Done()
			_, errs[i] = svc.EndVisit(ctx, visit.ID, status)
		}(i, status)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		var stateErr *StateTransitionError
		var conflictErr *ConflictError
		if errors.As(err, &stateErr) || errors.As(err, &conflictErr) {
			losses++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("expected exactly one winner, got %d wins / %d losses", wins, losses)
	}

	ended, _ := svc.Store.GetVisit(ctx, visit.ID)
	if ended.State != models.VisitEnded {
		t.Fatalf("expected ENDED, got %s", ended.State)
	}
}

func TestVisitStatusLiveWait(t *testing.T) {
	svc, c := newTestVisitService()
	ctx := context.Background()

	visit, _ := svc.StartVisit(ctx, "dao_ktm", "citizenship", "")
	c.advance(25 * time.Minute)

	status, err := svc.VisitStatus(ctx, visit.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.CurrentWaitMinutes != 25 {
		t.Fatalf("expected live wait 25, got %d", status.CurrentWaitMinutes)
	}
	if status.OfficeName != "DAO Kathmandu" || status.ServiceName != "Citizenship Certificate" {
		t.Fatalf("directory names not resolved: %+v", status)
	}
	if status.HasRating {
		t.Fatalf("running visit cannot have a rating")
	}
}

func TestActiveVisitsMonitoring(t *testing.T) {
	svc, c := newTestVisitService()
	ctx := context.Background()

	first, _ := svc.StartVisit(ctx, "dao_ktm", "citizenship", "")
	second, _ := svc.StartVisit(ctx, "dao_lal", "citizenship", "")
	c.advance(8 * time.Minute)
	if _, err := svc.EndVisit(ctx, second.ID, models.ServiceFailed); err != nil {
		t.Fatalf("end: %v", err)
	}

	active, err := svc.ActiveVisits(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active visit, got %d", len(active))
	}
	if active[0].VisitID != first.ID || active[0].CurrentWaitMinutes != 8 {
		t.Fatalf("unexpected active visit: %+v", active[0])
	}
	if active[0].District != "Kathmandu" {
		t.Fatalf("expected district resolved, got %q", active[0].District)
	}
}
