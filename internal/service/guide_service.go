package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/guide-store/internal/domain"
	"github.com/spec-kit/guide-store/internal/repository"
	apperrors "github.com/spec-kit/guide-store/pkg/util/errorutil"
)

// AccessEvaluator decides whether a user may view protected guide content.
// The purchase service provides the single authoritative implementation.
type AccessEvaluator interface {
	CanView(ctx context.Context, userID, guideID string) (bool, error)
}

// GuideService serves the catalog read paths.
type GuideService struct {
	guides repository.GuideRepository
	access AccessEvaluator
}

// NewGuideService constructs the service.
func NewGuideService(guides repository.GuideRepository, access AccessEvaluator) *GuideService {
	return &GuideService{guides: guides, access: access}
}

// ListActive returns active guides, newest first.
func (s *GuideService) ListActive(ctx context.Context) ([]domain.Guide, error) {
	return s.guides.ListActive(ctx)
}

// GetBySlug returns a guide and whether the viewer may see its content.
// viewerID is empty for anonymous callers.
func (s *GuideService) GetBySlug(ctx context.Context, slug, viewerID string) (*domain.Guide, bool, error) {
	guide, err := s.guides.GetBySlug(ctx, slug)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, apperrors.NewNotFound("guide")
		}
		return nil, false, err
	}

	hasAccess, err := s.access.CanView(ctx, viewerID, guide.ID)
	if err != nil {
		return nil, false, err
	}
	return guide, hasAccess, nil
}
