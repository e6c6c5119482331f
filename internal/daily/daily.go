// internal/daily/daily.go
package daily

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fitmenu/internal/models"
	"fitmenu/internal/planner"
)

type MenuFetcher interface {
	FetchMenu(ctx context.Context) (*models.Menu, error)
}

type MenuSaver interface {
	SaveMenu(ctx context.Context, menu *models.Menu) error
}

// Result is the day's menu with supplements already appended.
type Result struct {
	Menu *models.Menu  `json:"menu"`
	Plan *planner.Plan `json:"plan"`
}

// Service produces today's plan. saver may be nil, in which case nothing is
// persisted.
type Service struct {
	fetcher     MenuFetcher
	saver       MenuSaver
	targets     planner.Targets
	supplements []planner.Supplement
	logger      *zap.Logger
}

func NewService(fetcher MenuFetcher, saver MenuSaver, targets planner.Targets, supplements []planner.Supplement, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher:     fetcher,
		saver:       saver,
		targets:     targets,
		supplements: supplements,
		logger:      logger,
	}
}

func (s *Service) Targets() planner.Targets {
	return s.targets
}

// Today scrapes the menu, tops it up and, when save is set, stores it.
func (s *Service) Today(ctx context.Context, save bool) (*Result, error) {
	menu, err := s.fetcher.FetchMenu(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menu: %w", err)
	}

	plan, err := planner.Apply(menu, s.targets, s.supplements)
	if err != nil {
		return nil, fmt.Errorf("failed to plan menu: %w", err)
	}

	s.logger.Info("menu planned",
		zap.String("date", menu.Date),
		zap.Int("foods", len(menu.Foods)),
		zap.Int("supplements", len(plan.Added)),
		zap.Uint32("calories", plan.CaloriesAfter),
		zap.Uint32("proteins", plan.ProteinsAfter))

	if save {
		if s.saver == nil {
			return nil, fmt.Errorf("failed to save menu: no storage configured")
		}
		if err := s.saver.SaveMenu(ctx, menu); err != nil {
			return nil, fmt.Errorf("failed to save menu: %w", err)
		}
		s.logger.Debug("menu saved", zap.String("id", menu.ID))
	}

	return &Result{Menu: menu, Plan: plan}, nil
}
