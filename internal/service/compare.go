package service

import (
	"context"

	"github.com/nagarik-sewa/backend/internal/models"
)

// DefaultCompareMetrics is the radar chart set used when the caller does
// not name metrics explicitly.
var DefaultCompareMetrics = []string{
	"overall_rating",
	"staff_behavior",
	"cleanliness",
	"efficiency",
	"integrity",
}

var compareMetricInfo = map[string]string{
	"overall_rating":      "Overall satisfaction rating",
	"staff_behavior":      "Staff helpfulness and behavior rating",
	"cleanliness":         "Office cleanliness and environment rating",
	"process_efficiency":  "Process speed rating",
	"information_clarity": "Clarity of information provided",
	"efficiency":          "Service efficiency based on wait time",
	"integrity":           "Corruption-free service (higher = fewer bribe reports)",
}

// OfficeScores is one office's row in a comparison: every requested metric
// normalized onto [0,1].
type OfficeScores struct {
	OfficeID   string             `json:"office_id"`
	OfficeName string             `json:"office_name"`
	District   string             `json:"district"`
	Scores     map[string]float64 `json:"scores"`
}

// Comparison is rectangular: every requested office appears with every
// requested metric, zero-visit offices included with all-zero scores.
type Comparison struct {
	Offices     []OfficeScores    `json:"offices"`
	Metrics     []string          `json:"metrics"`
	MetricsInfo map[string]string `json:"metrics_info"`
}

// Compare normalizes the requested metrics for each office onto a common
// 0-1 scale. Star ratings map via (raw-1)/4, efficiency derives from
// average wait time, integrity from the bribe rate.
func (s *AnalyticsService) Compare(ctx context.Context, officeIDs, metrics []string) (Comparison, error) {
	if len(officeIDs) == 0 {
		return Comparison{}, &ValidationError{Field: "office_ids", Reason: "at least one office required"}
	}
	if len(metrics) == 0 {
		metrics = DefaultCompareMetrics
	}
	for _, m := range metrics {
		if _, ok := compareMetricInfo[m]; !ok {
			return Comparison{}, &ValidationError{Field: "metrics", Reason: "unknown metric " + m}
		}
	}

	result := Comparison{
		Metrics:     metrics,
		MetricsInfo: make(map[string]string, len(metrics)),
	}
	for _, m := range metrics {
		result.MetricsInfo[m] = compareMetricInfo[m]
	}

	for _, officeID := range officeIDs {
		analytics, err := s.OfficeAnalytics(ctx, officeID)
		if err != nil {
			return Comparison{}, err
		}
		row := OfficeScores{
			OfficeID: officeID,
			Scores:   make(map[string]float64, len(metrics)),
		}
		if office, ok := s.Dir.Office(officeID); ok {
			row.OfficeName = office.Name
			row.District = office.District
		}
		for _, m := range metrics {
			row.Scores[m] = normalizedScore(analytics, m)
		}
		result.Offices = append(result.Offices, row)
	}
	return result, nil
}

func normalizedScore(a models.OfficeAnalytics, metric string) float64 {
	switch metric {
	case "overall_rating":
		return starScore(a, a.AvgOverallRating)
	case "staff_behavior":
		return starScore(a, a.AvgStaffBehavior)
	case "cleanliness":
		return starScore(a, a.AvgCleanliness)
	case "process_efficiency":
		return starScore(a, a.AvgEfficiency)
	case "information_clarity":
		return starScore(a, a.AvgInformationClarity)
	case "efficiency":
		return waitScore(a)
	case "integrity":
		return integrityScore(a)
	}
	return 0
}

// starScore maps a 1-5 star average onto [0,1], clamped. Offices with no
// rated visits score 0.
func starScore(a models.OfficeAnalytics, raw float64) float64 {
	if a.RatedVisits == 0 {
		return 0
	}
	score := (raw - 1) / 4
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
