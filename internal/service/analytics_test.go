package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nagarik-sewa/backend/internal/models"
	"github.com/nagarik-sewa/backend/internal/store"
)

// harness wires lifecycle + analytics over one memory store and clock so
// tests populate records through the real state machine.
type harness struct {
	visits    *VisitService
	analytics *AnalyticsService
	clock     *clock
}

func newHarness() *harness {
	c := &clock{t: t0}
	s := store.NewMemoryStore()
	dir := testDirectory()
	visits := NewVisitService(s, dir, zerolog.Nop())
	visits.Now = c.now
	analytics := NewAnalyticsService(s, dir, zerolog.Nop())
	analytics.Now = c.now
	return &harness{visits: visits, analytics: analytics, clock: c}
}

// endedVisit runs a visit through start and end with the given wait.
func (h *harness) endedVisit(t *testing.T, officeID string, wait time.Duration, status models.ServiceStatus) models.Visit {
	t.Helper()
	visit, err := h.visits.StartVisit(context.Background(), officeID, "citizenship", "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	h.clock.advance(wait)
	ended, err := h.visits.EndVisit(context.Background(), visit.ID, status)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	h.clock.advance(-wait)
	return ended
}

// ratedVisit additionally submits a rating.
func (h *harness) ratedVisit(t *testing.T, officeID string, wait time.Duration, status models.ServiceStatus, in RatingInput) models.Visit {
	t.Helper()
	visit := h.endedVisit(t, officeID, wait, status)
	if _, err := h.visits.SubmitRating(context.Background(), visit.ID, in); err != nil {
		t.Fatalf("rate: %v", err)
	}
	return visit
}

func TestOfficeAnalyticsZeroVisits(t *testing.T) {
	h := newHarness()
	a, err := h.analytics.OfficeAnalytics(context.Background(), "dao_ktm")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if a.TotalVisits != 0 || a.SuccessRate != 0 || a.BribeRate != 0 ||
		a.AvgOverallRating != 0 || a.AvgWaitTimeMinutes != 0 {
		t.Fatalf("zero-visit office must be all zero, got %+v", a)
	}
}

func TestOfficeAnalyticsSingleRatedVisit(t *testing.T) {
	h := newHarness()
	no := false
	in := validRating()
	in.OverallRating = 5
	in.AskedForBribe = &no
	h.ratedVisit(t, "dao_ktm", 20*time.Minute, models.ServiceSuccess, in)

	a, err := h.analytics.OfficeAnalytics(context.Background(), "dao_ktm")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if a.TotalVisits != 1 || a.SuccessfulVisits != 1 || a.FailedVisits != 0 {
		t.Fatalf("unexpected counts: %+v", a)
	}
	if a.SuccessRate != 1.0 {
		t.Fatalf("expected success rate 1.0, got %v", a.SuccessRate)
	}
	if a.AvgOverallRating != 5.0 {
		t.Fatalf("expected avg overall 5.0, got %v", a.AvgOverallRating)
	}
	if a.BribeRate != 0.0 || a.BribeReports != 0 {
		t.Fatalf("expected no bribe reports, got %+v", a)
	}
	if a.AvgWaitTimeMinutes != 20 {
		t.Fatalf("expected avg wait 20, got %v", a.AvgWaitTimeMinutes)
	}
}

func TestOfficeAnalyticsRunningVisitsExcluded(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	if _, err := h.visits.StartVisit(ctx, "dao_ktm", "citizenship", ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.endedVisit(t, "dao_ktm", 10*time.Minute, models.ServiceFailed)

	a, err := h.analytics.OfficeAnalytics(ctx, "dao_ktm")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if a.TotalVisits != 1 {
		t.Fatalf("running visit must not count, got total %d", a.TotalVisits)
	}
	if a.FailedVisits != 1 || a.SuccessRate != 0 {
		t.Fatalf("unexpected outcome stats: %+v", a)
	}
}

func TestOfficeAnalyticsEndedVsRatedSplit(t *testing.T) {
	h := newHarness()
	yes := true

	// Two ended-only visits, one rated visit with a bribe report.
	h.endedVisit(t, "dao_ktm", 10*time.Minute, models.ServiceSuccess)
	h.endedVisit(t, "dao_ktm", 30*time.Minute, models.ServiceFailed)
	in := validRating()
	in.OverallRating = 3
	in.AskedForBribe = &yes
	h.ratedVisit(t, "dao_ktm", 20*time.Minute, models.ServiceSuccess, in)

	a, err := h.analytics.OfficeAnalytics(context.Background(), "dao_ktm")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if a.TotalVisits != 3 || a.RatedVisits != 1 {
		t.Fatalf("expected 3 total / 1 rated, got %d / %d", a.TotalVisits, a.RatedVisits)
	}
	if a.AvgWaitTimeMinutes != 20 {
		t.Fatalf("expected avg wait 20 over all ended visits, got %v", a.AvgWaitTimeMinutes)
	}
	if a.MinWaitTimeMinutes != 10 || a.MaxWaitTimeMinutes != 30 {
		t.Fatalf("expected wait range [10,30], got [%d,%d]", a.MinWaitTimeMinutes, a.MaxWaitTimeMinutes)
	}
	// Rating-derived fields cover the single rated visit only.
	if a.AvgOverallRating != 3.0 {
		t.Fatalf("expected avg overall 3.0, got %v", a.AvgOverallRating)
	}
	if a.BribeReports != 1 || a.BribeRate != 1.0 {
		t.Fatalf("expected bribe rate 1.0 over rated visits, got %+v", a)
	}
	if a.SuccessRate < 0 || a.SuccessRate > 1 {
		t.Fatalf("success rate out of range: %v", a.SuccessRate)
	}
	if a.SuccessRate != 2.0/3.0 {
		t.Fatalf("expected success rate 2/3, got %v", a.SuccessRate)
	}
}

func TestAggregateMatchesIncrementalExpectations(t *testing.T) {
	// aggregate is a pure function of the snapshot; feeding it the same
	// records twice must give identical results.
	h := newHarness()
	h.endedVisit(t, "dao_ktm", 15*time.Minute, models.ServiceSuccess)
	h.ratedVisit(t, "dao_ktm", 45*time.Minute, models.ServiceFailed, validRating())

	records, err := h.visits.Store.OfficeRecords(context.Background(), "dao_ktm")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	first := aggregate("dao_ktm", records, t0)
	second := aggregate("dao_ktm", records, t0)
	if first != second {
		t.Fatalf("aggregate not deterministic:\n%+v\n%+v", first, second)
	}
}
