package models

import "time"

type VisitState string

const (
	VisitRunning VisitState = "RUNNING"
	VisitEnded   VisitState = "ENDED"
	VisitRated   VisitState = "RATED"
)

type ServiceStatus string

const (
	ServiceSuccess ServiceStatus = "SUCCESS"
	ServiceFailed  ServiceStatus = "FAILED"
)

// Visit is one citizen's timed interaction with an office for a specific
// service. Version is bumped on every write and used for optimistic
// concurrency control in the store.
type Visit struct {
	ID                  string        `json:"visit_id"`
	OfficeID            string        `json:"office_id"`
	ServiceID           string        `json:"service_id"`
	UserID              string        `json:"user_id,omitempty"`
	StartTime           time.Time     `json:"start_time"`
	EndTime             *time.Time    `json:"end_time,omitempty"`
	WaitDurationMinutes *int          `json:"wait_duration_minutes,omitempty"`
	ServiceStatus       ServiceStatus `json:"service_status,omitempty"`
	State               VisitState    `json:"state"`
	Version             int64         `json:"-"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// Rating holds the feedback for exactly one ended visit. The ternary
// questions use *bool: nil means the citizen skipped the question.
type Rating struct {
	VisitID                  string    `json:"visit_id"`
	OverallRating            int       `json:"overall_rating"`
	StaffBehaviorRating      int       `json:"staff_behavior_rating"`
	CleanlinessRating        int       `json:"office_cleanliness_rating"`
	ProcessEfficiencyRating  int       `json:"process_efficiency_rating"`
	InformationClarityRating int       `json:"information_clarity_rating"`
	AskedForBribe            *bool     `json:"asked_for_bribe,omitempty"`
	StaffHelpful             *bool     `json:"staff_helpful,omitempty"`
	ProcessClear             *bool     `json:"process_clear,omitempty"`
	DocumentsSufficient      *bool     `json:"documents_sufficient,omitempty"`
	WouldRecommend           *bool     `json:"would_recommend,omitempty"`
	WaitReason               string    `json:"wait_reason,omitempty"`
	Suggestions              string    `json:"suggestions,omitempty"`
	Complaints               string    `json:"complaints,omitempty"`
	CreatedAt                time.Time `json:"created_at"`
}

// OfficeAnalytics is a pure function of the visit/rating population of one
// office; it is recomputed on demand, never stored as source of truth.
// Rates are fractions in [0,1]. A zero-visit office yields the zero value
// for every rate and average.
type OfficeAnalytics struct {
	OfficeID              string    `json:"office_id"`
	TotalVisits           int       `json:"total_visits"`
	SuccessfulVisits      int       `json:"successful_visits"`
	FailedVisits          int       `json:"failed_visits"`
	SuccessRate           float64   `json:"success_rate"`
	AvgWaitTimeMinutes    float64   `json:"avg_wait_time_minutes"`
	MinWaitTimeMinutes    int       `json:"min_wait_time_minutes"`
	MaxWaitTimeMinutes    int       `json:"max_wait_time_minutes"`
	RatedVisits           int       `json:"rated_visits"`
	AvgOverallRating      float64   `json:"avg_overall_rating"`
	AvgStaffBehavior      float64   `json:"avg_staff_behavior"`
	AvgCleanliness        float64   `json:"avg_cleanliness"`
	AvgEfficiency         float64   `json:"avg_efficiency"`
	AvgInformationClarity float64   `json:"avg_information_clarity"`
	BribeReports          int       `json:"bribe_reports"`
	BribeRate             float64   `json:"bribe_rate"`
	LastUpdated           time.Time `json:"last_updated"`
}

// Office is a directory entry. The core treats office/service ids as opaque
// references; the directory owns the catalog.
type Office struct {
	ID         string          `json:"office_id"`
	Name       string          `json:"name"`
	NameNepali string          `json:"name_nepali,omitempty"`
	OfficeType string          `json:"office_type"`
	District   string          `json:"district"`
	Province   string          `json:"province"`
	Services   []OfficeService `json:"services,omitempty"`
}

type OfficeService struct {
	ID         string `json:"service_id"`
	Name       string `json:"service_name"`
	NameNepali string `json:"service_name_nepali,omitempty"`
}

// WaitReasons are the accepted wait_reason values, from the feedback form.
var WaitReasons = []string{
	"lunch_break",
	"system_down",
	"staff_absent",
	"long_queue",
	"document_issue",
	"payment_issue",
	"verification",
	"other",
}

func ValidWaitReason(reason string) bool {
	for _, r := range WaitReasons {
		if r == reason {
			return true
		}
	}
	return false
}
