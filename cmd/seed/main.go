// Command seed applies migrations and loads a demo guide catalog so the
// storefront has something to sell in development environments. Guides whose
// slug already exists are left untouched.
package main

import (
	"context"
	"log"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/spec-kit/guide-store/internal/config"
	"github.com/spec-kit/guide-store/internal/domain"
	"github.com/spec-kit/guide-store/internal/observability"
	"github.com/spec-kit/guide-store/internal/persistence"
	"github.com/spec-kit/guide-store/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	guides := repository.NewGuideRepository(pg.PoolHandle())

	for _, g := range demoGuides(cfg.Stripe.Currency) {
		guide := g
		if err := guides.Create(ctx, &guide); err != nil {
			logger.Fatal("failed to seed guide", zap.String("slug", guide.Slug), zap.Error(err))
		}
		logger.Info("seeded guide", zap.String("slug", guide.Slug))
	}

	logger.Info("seeding complete")
}

func demoGuides(currency string) []domain.Guide {
	items := []struct {
		title       string
		description string
		cover       string
		price       int64
		content     string
	}{
		{
			title:       "Krakow Old Town Weekend",
			description: "Two days across the Main Square, Wawel Castle and the best pierogi spots locals actually eat at.",
			cover:       "https://images.example.com/guides/krakow-old-town.jpg",
			price:       1999,
			content:     "Day 1\n\nStart at St. Mary's Basilica before the crowds...",
		},
		{
			title:       "Kazimierz Food & Street Art",
			description: "An evening route through the former Jewish quarter: zapiekanka stands, hidden courtyards and murals.",
			cover:       "https://images.example.com/guides/kazimierz.jpg",
			price:       1499,
			content:     "Begin at Plac Nowy\n\nThe rotunda in the middle serves the city's best zapiekanki...",
		},
		{
			title:       "Day Trips from Krakow",
			description: "Wieliczka Salt Mine, Ojcow National Park and Zakopane without a car.",
			cover:       "https://images.example.com/guides/day-trips.jpg",
			price:       2499,
			content:     "Wieliczka\n\nTake the SKA1 train from the main station...",
		},
	}

	guides := make([]domain.Guide, 0, len(items))
	for _, item := range items {
		guides = append(guides, domain.Guide{
			Slug:        slug.Make(item.title),
			Title:       item.title,
			Description: item.description,
			CoverImage:  item.cover,
			Price:       item.price,
			Currency:    currency,
			Content:     item.content,
			IsActive:    true,
		})
	}
	return guides
}
