package service

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nagarik-sewa/backend/internal/directory"
	"github.com/nagarik-sewa/backend/internal/models"
)

// RankEntry is one row of a ranking: an office, its raw metric value and
// the sample size behind it.
type RankEntry struct {
	Rank        int     `json:"rank"`
	OfficeID    string  `json:"office_id"`
	OfficeName  string  `json:"office_name"`
	District    string  `json:"district"`
	Province    string  `json:"province"`
	MetricValue float64 `json:"metric_value"`
	TotalVisits int     `json:"total_visits"`
}

// RankRequest scopes a ranking. MinVisits keeps offices with a thin sample
// out of the board so a single rater cannot dominate it.
type RankRequest struct {
	Scope     string
	ScopeKey  string
	Metric    string
	MinVisits int
	Limit     int
}

func (r RankRequest) validate() error {
	switch r.Scope {
	case directory.ScopeNational:
	case directory.ScopeProvince, directory.ScopeDistrict:
		if r.ScopeKey == "" {
			return &ValidationError{Field: "scope_key", Reason: "required for " + r.Scope + " scope"}
		}
	default:
		return &ValidationError{Field: "scope", Reason: "must be national, province or district"}
	}
	if _, ok := metricValue(models.OfficeAnalytics{}, r.Metric); !ok {
		return &ValidationError{Field: "metric", Reason: "unknown metric " + r.Metric}
	}
	if r.MinVisits < 0 {
		return &ValidationError{Field: "min_visits", Reason: "must not be negative"}
	}
	return nil
}

// rankConcurrency bounds the parallel per-office aggregation scans.
const rankConcurrency = 8

// Rank orders the offices in scope by the requested metric, descending.
// Ties break by total_visits descending, then office_id ascending, so the
// order is fully deterministic.
func (s *AnalyticsService) Rank(ctx context.Context, req RankRequest) ([]RankEntry, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	offices := s.Dir.Offices(req.Scope, req.ScopeKey)
	entries := make([]*RankEntry, len(offices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rankConcurrency)
	for i, office := range offices {
		i, office := i, office
		g.Go(func() error {
			analytics, err := s.OfficeAnalytics(gctx, office.ID)
			if err != nil {
				return err
			}
			if analytics.TotalVisits < req.MinVisits {
				return nil
			}
			value, _ := metricValue(analytics, req.Metric)
			entries[i] = &RankEntry{
				OfficeID:    office.ID,
				OfficeName:  office.Name,
				District:    office.District,
				Province:    office.Province,
				MetricValue: value,
				TotalVisits: analytics.TotalVisits,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := make([]RankEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			ranked = append(ranked, *e)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].MetricValue != ranked[j].MetricValue {
			return ranked[i].MetricValue > ranked[j].MetricValue
		}
		if ranked[i].TotalVisits != ranked[j].TotalVisits {
			return ranked[i].TotalVisits > ranked[j].TotalVisits
		}
		return ranked[i].OfficeID < ranked[j].OfficeID
	})
	if req.Limit > 0 && len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}
