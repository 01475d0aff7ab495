package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nagarik-sewa/backend/internal/models"
	"github.com/nagarik-sewa/backend/internal/store"
)

// waitScoreCap is the wait time (minutes) at which the normalized
// efficiency score floors at zero.
const waitScoreCap = 60.0

// AnalyticsService computes per-office statistics, rankings and
// multi-office comparisons over the visit/rating population.
type AnalyticsService struct {
	Store  store.VisitStore
	Dir    Directory
	Logger zerolog.Logger
	Now    func() time.Time
}

func NewAnalyticsService(s store.VisitStore, dir Directory, logger zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{Store: s, Dir: dir, Logger: logger, Now: time.Now}
}

// OfficeAnalytics recomputes the office's aggregate from one store
// snapshot. Only ENDED and RATED visits count; rating averages cover RATED
// visits only. A zero-visit office is a valid all-zero result, not an
// error.
func (s *AnalyticsService) OfficeAnalytics(ctx context.Context, officeID string) (models.OfficeAnalytics, error) {
	records, err := s.Store.OfficeRecords(ctx, officeID)
	if err != nil {
		return models.OfficeAnalytics{}, err
	}
	return aggregate(officeID, records, s.Now().UTC()), nil
}

func aggregate(officeID string, records []store.VisitRecord, now time.Time) models.OfficeAnalytics {
	a := models.OfficeAnalytics{OfficeID: officeID, LastUpdated: now}

	var waitSum int
	var overallSum, staffSum, cleanSum, efficiencySum, claritySum int
	for _, rec := range records {
		v := rec.Visit
		if v.State != models.VisitEnded && v.State != models.VisitRated {
			continue
		}
		a.TotalVisits++
		switch v.ServiceStatus {
		case models.ServiceSuccess:
			a.SuccessfulVisits++
		case models.ServiceFailed:
			a.FailedVisits++
		}
		if v.WaitDurationMinutes != nil {
			w := *v.WaitDurationMinutes
			waitSum += w
			if a.TotalVisits == 1 || w < a.MinWaitTimeMinutes {
				a.MinWaitTimeMinutes = w
			}
			if w > a.MaxWaitTimeMinutes {
				a.MaxWaitTimeMinutes = w
			}
		}
		if v.State != models.VisitRated || rec.Rating == nil {
			continue
		}
		r := rec.Rating
		a.RatedVisits++
		overallSum += r.OverallRating
		staffSum += r.StaffBehaviorRating
		cleanSum += r.CleanlinessRating
		efficiencySum += r.ProcessEfficiencyRating
		claritySum += r.InformationClarityRating
		if r.AskedForBribe != nil && *r.AskedForBribe {
			a.BribeReports++
		}
	}

	if a.TotalVisits > 0 {
		a.SuccessRate = float64(a.SuccessfulVisits) / float64(a.TotalVisits)
		a.AvgWaitTimeMinutes = float64(waitSum) / float64(a.TotalVisits)
	}
	if a.RatedVisits > 0 {
		n := float64(a.RatedVisits)
		a.AvgOverallRating = float64(overallSum) / n
		a.AvgStaffBehavior = float64(staffSum) / n
		a.AvgCleanliness = float64(cleanSum) / n
		a.AvgEfficiency = float64(efficiencySum) / n
		a.AvgInformationClarity = float64(claritySum) / n
		a.BribeRate = float64(a.BribeReports) / n
	}
	return a
}

// metricValue extracts the raw ranking value for a metric. The derived
// efficiency and integrity metrics reuse the comparison normalization so
// that "higher is better" holds for every rankable metric.
func metricValue(a models.OfficeAnalytics, metric string) (float64, bool) {
	switch metric {
	case "success_rate":
		return a.SuccessRate, true
	case "overall_rating":
		return a.AvgOverallRating, true
	case "staff_behavior":
		return a.AvgStaffBehavior, true
	case "cleanliness":
		return a.AvgCleanliness, true
	case "process_efficiency":
		return a.AvgEfficiency, true
	case "information_clarity":
		return a.AvgInformationClarity, true
	case "efficiency":
		return waitScore(a), true
	case "integrity":
		return integrityScore(a), true
	}
	return 0, false
}

// waitScore maps average wait time onto [0,1]: 0 minutes scores 1, the cap
// and beyond score 0. Offices with no ended visits score 0.
func waitScore(a models.OfficeAnalytics) float64 {
	if a.TotalVisits == 0 {
		return 0
	}
	score := 1 - a.AvgWaitTimeMinutes/waitScoreCap
	if score < 0 {
		return 0
	}
	return score
}

func integrityScore(a models.OfficeAnalytics) float64 {
	if a.TotalVisits == 0 {
		return 0
	}
	return 1 - a.BribeRate
}
