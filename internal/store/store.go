package store

import (
	"context"
	"errors"

	"github.com/nagarik-sewa/backend/internal/models"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrAlreadyExists   = errors.New("record already exists")
	ErrVersionConflict = errors.New("version conflict")
	ErrRatingExists    = errors.New("rating already exists for visit")
)

// VisitRecord pairs a visit with its rating, if any. OfficeRecords returns
// these from a single consistent snapshot, so a visit is never observed as
// ENDED in one field and RATED in another.
type VisitRecord struct {
	Visit  models.Visit
	Rating *models.Rating
}

// VisitStore owns Visit and Rating records. Writes use optimistic
// versioning: UpdateVisit and SaveRating only apply when the passed visit's
// Version matches the stored one, and return ErrVersionConflict otherwise.
type VisitStore interface {
	CreateVisit(ctx context.Context, visit models.Visit) error
	GetVisit(ctx context.Context, id string) (models.Visit, error)
	// UpdateVisit replaces the stored visit if versions match and returns
	// the stored record with its bumped version.
	UpdateVisit(ctx context.Context, visit models.Visit) (models.Visit, error)
	// SaveRating atomically applies the visit update (same CAS rules as
	// UpdateVisit) and inserts the rating. A second rating for the same
	// visit fails with ErrRatingExists.
	SaveRating(ctx context.Context, visit models.Visit, rating models.Rating) (models.Visit, error)
	GetRating(ctx context.Context, visitID string) (models.Rating, error)
	// OfficeRecords returns a consistent snapshot of all visits for the
	// office, each paired with its rating when present.
	OfficeRecords(ctx context.Context, officeID string) ([]VisitRecord, error)
	// ActiveVisits returns all visits still in the RUNNING state.
	ActiveVisits(ctx context.Context) ([]models.Visit, error)
	Ping(ctx context.Context) error
	Close()
}
