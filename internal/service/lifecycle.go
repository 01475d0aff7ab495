package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nagarik-sewa/backend/internal/models"
	"github.com/nagarik-sewa/backend/internal/store"
)

// Directory is the read-only office catalog collaborator. The lifecycle
// never validates office/service existence against it; it is only used to
// resolve display names and ranking scopes.
type Directory interface {
	Office(id string) (models.Office, bool)
	Offices(scope, scopeKey string) []models.Office
	OfficesByDistrict(district, officeType string) []models.Office
	Districts() map[string][]string
}

// VisitService drives the visit state machine:
// RUNNING -> ENDED (EndVisit) -> RATED (SubmitRating).
type VisitService struct {
	Store  store.VisitStore
	Dir    Directory
	Logger zerolog.Logger
	Now    func() time.Time
}

func NewVisitService(s store.VisitStore, dir Directory, logger zerolog.Logger) *VisitService {
	return &VisitService{Store: s, Dir: dir, Logger: logger, Now: time.Now}
}

func (s *VisitService) StartVisit(ctx context.Context, officeID, serviceID, userID string) (models.Visit, error) {
	if officeID == "" {
		return models.Visit{}, &ValidationError{Field: "office_id", Reason: "required"}
	}
	if serviceID == "" {
		return models.Visit{}, &ValidationError{Field: "service_id", Reason: "required"}
	}

	now := s.Now().UTC()
	visit := models.Visit{
		ID:        uuid.NewString(),
		OfficeID:  officeID,
		ServiceID: serviceID,
		UserID:    userID,
		StartTime: now,
		State:     models.VisitRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.CreateVisit(ctx, visit); err != nil {
		return models.Visit{}, err
	}
	s.Logger.Info().Str("visit_id", visit.ID).Str("office_id", officeID).Msg("visit started")
	return visit, nil
}

// EndVisit stops the clock. It is deliberately not idempotent: a second end
// would silently move the end-time and corrupt the wait duration, so it
// fails with a StateTransitionError instead.
func (s *VisitService) EndVisit(ctx context.Context, visitID string, status models.ServiceStatus) (models.Visit, error) {
	if status != models.ServiceSuccess && status != models.ServiceFailed {
		return models.Visit{}, &ValidationError{Field: "service_status", Reason: "must be SUCCESS or FAILED"}
	}

	for attempt := 0; attempt < 2; attempt++ {
		visit, err := s.Store.GetVisit(ctx, visitID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return models.Visit{}, &NotFoundError{Resource: "visit", ID: visitID}
			}
			return models.Visit{}, err
		}
		if visit.State != models.VisitRunning {
			return models.Visit{}, &StateTransitionError{VisitID: visitID, State: string(visit.State), Action: "end"}
		}

		now := s.Now().UTC()
		end := now
		if end.Before(visit.StartTime) {
			end = visit.StartTime
		}
		minutes := int(end.Sub(visit.StartTime) / time.Minute)
		visit.EndTime = &end
		visit.WaitDurationMinutes = &minutes
		visit.ServiceStatus = status
		visit.State = models.VisitEnded
		visit.UpdatedAt = now

		updated, err := s.Store.UpdateVisit(ctx, visit)
		if err == nil {
			s.Logger.Info().Str("visit_id", visitID).Int("wait_minutes", minutes).
				Str("status", string(status)).Msg("visit ended")
			return updated, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return models.Visit{}, err
		}
		// Lost the race; re-read to report the real state. If someone else
		// already ended the visit the retry turns this into a
		// StateTransitionError, which callers treat as "already recorded".
	}
	return models.Visit{}, &ConflictError{VisitID: visitID}
}

// RatingInput carries the feedback payload for SubmitRating. Ternary
// answers are *bool: nil means the question was skipped.
type RatingInput struct {
	OverallRating            int
	StaffBehaviorRating      int
	CleanlinessRating        int
	ProcessEfficiencyRating  int
	InformationClarityRating int
	AskedForBribe            *bool
	StaffHelpful             *bool
	ProcessClear             *bool
	DocumentsSufficient      *bool
	WouldRecommend           *bool
	WaitReason               string
	Suggestions              string
	Complaints               string
}

func (in RatingInput) validate() error {
	stars := []struct {
		field string
		value int
	}{
		{"overall_rating", in.OverallRating},
		{"staff_behavior_rating", in.StaffBehaviorRating},
		{"office_cleanliness_rating", in.CleanlinessRating},
		{"process_efficiency_rating", in.ProcessEfficiencyRating},
		{"information_clarity_rating", in.InformationClarityRating},
	}
	for _, s := range stars {
		if s.value < 1 || s.value > 5 {
			return &ValidationError{Field: s.field, Reason: "must be between 1 and 5"}
		}
	}
	if in.WaitReason != "" && !models.ValidWaitReason(in.WaitReason) {
		return &ValidationError{Field: "wait_reason", Reason: "unknown wait reason"}
	}
	return nil
}

// SubmitRating attaches feedback to an ended visit and moves it to RATED.
// Exactly one rating per visit; duplicates are rejected, never merged.
func (s *VisitService) SubmitRating(ctx context.Context, visitID string, in RatingInput) (models.Rating, error) {
	if err := in.validate(); err != nil {
		return models.Rating{}, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		visit, err := s.Store.GetVisit(ctx, visitID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return models.Rating{}, &NotFoundError{Resource: "visit", ID: visitID}
			}
			return models.Rating{}, err
		}
		if visit.State != models.VisitEnded {
			return models.Rating{}, &StateTransitionError{VisitID: visitID, State: string(visit.State), Action: "rate"}
		}

		now := s.Now().UTC()
		rating := models.Rating{
			VisitID:                  visitID,
			OverallRating:            in.OverallRating,
			StaffBehaviorRating:      in.StaffBehaviorRating,
			CleanlinessRating:        in.CleanlinessRating,
			ProcessEfficiencyRating:  in.ProcessEfficiencyRating,
			InformationClarityRating: in.InformationClarityRating,
			AskedForBribe:            in.AskedForBribe,
			StaffHelpful:             in.StaffHelpful,
			ProcessClear:             in.ProcessClear,
			DocumentsSufficient:      in.DocumentsSufficient,
			WouldRecommend:           in.WouldRecommend,
			WaitReason:               in.WaitReason,
			Suggestions:              in.Suggestions,
			Complaints:               in.Complaints,
			CreatedAt:                now,
		}
		visit.State = models.VisitRated
		visit.UpdatedAt = now

		if _, err := s.Store.SaveRating(ctx, visit, rating); err != nil {
			if errors.Is(err, store.ErrRatingExists) {
				return models.Rating{}, &StateTransitionError{VisitID: visitID, State: string(models.VisitRated), Action: "rate"}
			}
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			return models.Rating{}, err
		}
		s.Logger.Info().Str("visit_id", visitID).Int("overall", in.OverallRating).Msg("rating submitted")
		return rating, nil
	}
	return models.Rating{}, &ConflictError{VisitID: visitID}
}

// VisitStatus is the live view of a visit used by the timer screen.
type VisitStatus struct {
	Visit              models.Visit `json:"visit"`
	OfficeName         string       `json:"office_name"`
	ServiceName        string       `json:"service_name"`
	CurrentWaitMinutes int          `json:"current_wait_minutes"`
	HasRating          bool         `json:"has_rating"`
}

func (s *VisitService) VisitStatus(ctx context.Context, visitID string) (VisitStatus, error) {
	visit, err := s.Store.GetVisit(ctx, visitID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return VisitStatus{}, &NotFoundError{Resource: "visit", ID: visitID}
		}
		return VisitStatus{}, err
	}

	status := VisitStatus{Visit: visit, HasRating: visit.State == models.VisitRated}
	if visit.WaitDurationMinutes != nil {
		status.CurrentWaitMinutes = *visit.WaitDurationMinutes
	} else {
		status.CurrentWaitMinutes = int(s.Now().UTC().Sub(visit.StartTime) / time.Minute)
	}
	if office, ok := s.Dir.Office(visit.OfficeID); ok {
		status.OfficeName = office.Name
		for _, svc := range office.Services {
			if svc.ID == visit.ServiceID {
				status.ServiceName = svc.Name
			}
		}
	}
	return status, nil
}

// ActiveVisit is one RUNNING visit in the admin monitoring view.
type ActiveVisit struct {
	VisitID            string    `json:"visit_id"`
	OfficeID           string    `json:"office_id"`
	OfficeName         string    `json:"office_name"`
	District           string    `json:"district"`
	ServiceID          string    `json:"service_id"`
	StartTime          time.Time `json:"start_time"`
	CurrentWaitMinutes int       `json:"current_wait_minutes"`
}

func (s *VisitService) ActiveVisits(ctx context.Context) ([]ActiveVisit, error) {
	visits, err := s.Store.ActiveVisits(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Now().UTC()
	out := make([]ActiveVisit, 0, len(visits))
	for _, v := range visits {
		av := ActiveVisit{
			VisitID:            v.ID,
			OfficeID:           v.OfficeID,
			ServiceID:          v.ServiceID,
			StartTime:          v.StartTime,
			CurrentWaitMinutes: int(now.Sub(v.StartTime) / time.Minute),
		}
		if office, ok := s.Dir.Office(v.OfficeID); ok {
			av.OfficeName = office.Name
			av.District = office.District
		}
		out = append(out, av)
	}
	return out, nil
}
