package service

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nagarik-sewa/backend/internal/directory"
	"github.com/nagarik-sewa/backend/internal/models"
)

// dashboardMinVisits is the sample floor for the dashboard leaderboards.
const dashboardMinVisits = 3

// ProvinceStats summarizes all offices of one province.
type ProvinceStats struct {
	TotalVisits    int     `json:"total_visits"`
	SuccessRate    float64 `json:"success_rate"`
	AvgRating      float64 `json:"avg_rating"`
	AvgWaitMinutes float64 `json:"avg_wait_minutes"`
}

// Dashboard is the operator landing view: national totals plus the
// leaderboards the original analytics screen showed.
type Dashboard struct {
	TotalOffices     int                      `json:"total_offices"`
	TotalVisits      int                      `json:"total_visits"`
	AvgSuccessRate   float64                  `json:"avg_success_rate"`
	AvgOverallRating float64                  `json:"avg_overall_rating"`
	TopRated         []RankEntry              `json:"top_rated_offices"`
	MostEfficient    []RankEntry              `json:"most_efficient_offices"`
	LowestRated      []RankEntry              `json:"lowest_rated_offices"`
	BribeReports     []RankEntry              `json:"offices_with_bribe_reports"`
	ProvincialStats  map[string]ProvinceStats `json:"provincial_stats"`
	LastUpdated      time.Time                `json:"last_updated"`
}

func (s *AnalyticsService) Dashboard(ctx context.Context) (Dashboard, error) {
	offices := s.Dir.Offices(directory.ScopeNational, "")

	all := make([]models.OfficeAnalytics, len(offices))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rankConcurrency)
	for i, office := range offices {
		i, office := i, office
		g.Go(func() error {
			analytics, err := s.OfficeAnalytics(gctx, office.ID)
			if err != nil {
				return err
			}
			all[i] = analytics
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		TotalOffices:    len(offices),
		ProvincialStats: make(map[string]ProvinceStats),
		LastUpdated:     s.Now().UTC(),
	}

	var successTotal, ratedTotal int
	var ratingSum float64
	type provinceAcc struct {
		visits, success, rated int
		ratingSum, waitSum     float64
	}
	provinces := make(map[string]*provinceAcc)
	for i, a := range all {
		d.TotalVisits += a.TotalVisits
		successTotal += a.SuccessfulVisits
		ratingSum += a.AvgOverallRating * float64(a.RatedVisits)
		ratedTotal += a.RatedVisits

		acc := provinces[offices[i].Province]
		if acc == nil {
			acc = &provinceAcc{}
			provinces[offices[i].Province] = acc
		}
		acc.visits += a.TotalVisits
		acc.success += a.SuccessfulVisits
		acc.ratingSum += a.AvgOverallRating * float64(a.RatedVisits)
		acc.rated += a.RatedVisits
		acc.waitSum += a.AvgWaitTimeMinutes * float64(a.TotalVisits)
	}
	if d.TotalVisits > 0 {
		d.AvgSuccessRate = float64(successTotal) / float64(d.TotalVisits)
	}
	if ratedTotal > 0 {
		d.AvgOverallRating = ratingSum / float64(ratedTotal)
	}
	for province, acc := range provinces {
		stats := ProvinceStats{TotalVisits: acc.visits}
		if acc.visits > 0 {
			stats.SuccessRate = float64(acc.success) / float64(acc.visits)
			stats.AvgWaitMinutes = acc.waitSum / float64(acc.visits)
		}
		if acc.rated > 0 {
			stats.AvgRating = acc.ratingSum / float64(acc.rated)
		}
		d.ProvincialStats[province] = stats
	}

	board := func(metric string, ascending bool) []RankEntry {
		entries := make([]RankEntry, 0, len(all))
		for i, a := range all {
			if a.TotalVisits < dashboardMinVisits {
				continue
			}
			value, _ := metricValue(a, metric)
			entries = append(entries, RankEntry{
				OfficeID:    offices[i].ID,
				OfficeName:  offices[i].Name,
				District:    offices[i].District,
				Province:    offices[i].Province,
				MetricValue: value,
				TotalVisits: a.TotalVisits,
			})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].MetricValue != entries[j].MetricValue {
				if ascending {
					return entries[i].MetricValue < entries[j].MetricValue
				}
				return entries[i].MetricValue > entries[j].MetricValue
			}
			if entries[i].TotalVisits != entries[j].TotalVisits {
				return entries[i].TotalVisits > entries[j].TotalVisits
			}
			return entries[i].OfficeID < entries[j].OfficeID
		})
		if len(entries) > 5 {
			entries = entries[:5]
		}
		for i := range entries {
			entries[i].Rank = i + 1
		}
		return entries
	}

	d.TopRated = board("overall_rating", false)
	d.MostEfficient = board("efficiency", false)
	d.LowestRated = board("overall_rating", true)

	bribes := make([]RankEntry, 0)
	for i, a := range all {
		if a.BribeReports == 0 {
			continue
		}
		bribes = append(bribes, RankEntry{
			OfficeID:    offices[i].ID,
			OfficeName:  offices[i].Name,
			District:    offices[i].District,
			Province:    offices[i].Province,
			MetricValue: float64(a.BribeReports),
			TotalVisits: a.TotalVisits,
		})
	}
	sort.Slice(bribes, func(i, j int) bool {
		if bribes[i].MetricValue != bribes[j].MetricValue {
			return bribes[i].MetricValue > bribes[j].MetricValue
		}
		return bribes[i].OfficeID < bribes[j].OfficeID
	})
	if len(bribes) > 10 {
		bribes = bribes[:10]
	}
	for i := range bribes {
		bribes[i].Rank = i + 1
	}
	d.BribeReports = bribes

	return d, nil
}
