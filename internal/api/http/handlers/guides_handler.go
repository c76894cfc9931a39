package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/guide-store/internal/api/dto"
	"github.com/spec-kit/guide-store/internal/auth"
	"github.com/spec-kit/guide-store/internal/domain"
	"github.com/spec-kit/guide-store/internal/service"
)

// GuidesHandler serves the catalog read endpoints.
type GuidesHandler struct {
	service *service.GuideService
}

// NewGuidesHandler constructs handler.
func NewGuidesHandler(guideService *service.GuideService) *GuidesHandler {
	return &GuidesHandler{service: guideService}
}

// List GET /api/guides.
func (h *GuidesHandler) List(c *fiber.Ctx) error {
	guides, err := h.service.ListActive(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.GuideSummary, 0, len(guides))
	for i := range guides {
		items = append(items, guideSummary(&guides[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/guides/:slug. The content body is included only when the
// viewer holds a completed purchase.
func (h *GuidesHandler) Get(c *fiber.Ctx) error {
	viewerID := ""
	if principal, ok := auth.PrincipalFromContext(c); ok {
		viewerID = principal.User.ID
	}

	guide, hasAccess, err := h.service.GetBySlug(c.Context(), c.Params("slug"), viewerID)
	if err != nil {
		return err
	}

	resp := dto.GuideDetailResponse{
		GuideSummary: guideSummary(guide),
		HasAccess:    hasAccess,
	}
	if hasAccess {
		resp.Content = guide.Content
	}
	return c.JSON(fiber.Map{"data": resp})
}

func guideSummary(guide *domain.Guide) dto.GuideSummary {
	return dto.GuideSummary{
		ID:           guide.ID,
		Slug:         guide.Slug,
		Title:        guide.Title,
		Description:  guide.Description,
		CoverImage:   guide.CoverImage,
		Price:        guide.Price,
		Currency:     guide.Currency,
		PriceDisplay: dto.FormatPrice(guide.Price, guide.Currency),
		CreatedAt:    guide.CreatedAt,
	}
}
