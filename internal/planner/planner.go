// Package planner tops a scraped menu up to the daily calorie target with
// supplemental foods.
package planner

import (
	"errors"
	"fmt"

	"fitmenu/internal/config"
	"fitmenu/internal/models"
)

var ErrInvalidSupplement = errors.New("invalid supplement")

type Targets struct {
	Calories uint32 `json:"calories"`
	Proteins uint32 `json:"proteins"`
}

// Supplement is a reference portion of a food and the share of the calorie
// deficit it should cover.
type Supplement struct {
	Food   models.Food
	Weight float64
}

type Plan struct {
	Targets        Targets       `json:"targets"`
	CaloriesBefore uint32        `json:"calories_before"`
	CaloriesAfter  uint32        `json:"calories_after"`
	ProteinsBefore uint32        `json:"proteins_before"`
	ProteinsAfter  uint32        `json:"proteins_after"`
	Added          []models.Food `json:"added"`
}

// FromConfig converts configured supplements. When no weight is set the
// deficit is split evenly.
func FromConfig(cfgs []config.SupplementConfig) []Supplement {
	var total float64
	for _, c := range cfgs {
		total += c.Weight
	}
	out := make([]Supplement, 0, len(cfgs))
	for _, c := range cfgs {
		weight := c.Weight
		if total == 0 {
			weight = 1 / float64(len(cfgs))
		}
		out = append(out, Supplement{
			Food: models.Food{
				Description: c.Description,
				Quantity:    c.Quantity,
				Calories:    c.Calories,
				Proteins:    c.Proteins,
			},
			Weight: weight,
		})
	}
	return out
}

// Apply appends scaled supplements to menu when it is below the calorie
// target. Each supplement gets Weight times the deficit in calories; its
// quantity and proteins scale by the same factor.
func Apply(menu *models.Menu, targets Targets, supplements []Supplement) (*Plan, error) {
	for _, s := range supplements {
		if s.Food.Description == "" || s.Food.Calories == 0 {
			return nil, fmt.Errorf("%w: %q needs a description and calories", ErrInvalidSupplement, s.Food.Description)
		}
		if s.Weight < 0 {
			return nil, fmt.Errorf("%w: %q has negative weight %v", ErrInvalidSupplement, s.Food.Description, s.Weight)
		}
	}

	plan := &Plan{
		Targets:        targets,
		CaloriesBefore: menu.TotalCalories(),
		ProteinsBefore: menu.TotalProteins(),
		Added:          []models.Food{},
	}

	if plan.CaloriesBefore < targets.Calories {
		deficit := float64(targets.Calories - plan.CaloriesBefore)
		for _, s := range supplements {
			scale := s.Weight * deficit / float64(s.Food.Calories)
			food := s.Food.Scale(scale)
			food.Supplemental = true
			menu.AddFood(food)
			plan.Added = append(plan.Added, food)
		}
	}

	plan.CaloriesAfter = menu.TotalCalories()
	plan.ProteinsAfter = menu.TotalProteins()
	return plan, nil
}

// NeedsSupplements reports whether the menu was short of the calorie target.
func (p *Plan) NeedsSupplements() bool {
	return p.CaloriesBefore < p.Targets.Calories
}

// Summary renders the plan as console lines.
func (p *Plan) Summary() []string {
	var lines []string
	if !p.NeedsSupplements() {
		lines = append(lines, fmt.Sprintf("The menu has a total of %d(%s) = %d kcals. No additional food is needed.",
			p.Targets.Calories, delta(p.CaloriesBefore, p.Targets.Calories), p.CaloriesBefore))
	} else {
		lines = append(lines, fmt.Sprintf("The menu has a total of %d(%s) = %d kcals. Computing additional food ...",
			p.Targets.Calories, delta(p.CaloriesBefore, p.Targets.Calories), p.CaloriesBefore))
		for _, food := range p.Added {
			lines = append(lines, fmt.Sprintf("Added food %q with weight %d grams", food.Description, food.Quantity))
		}
		lines = append(lines, fmt.Sprintf("The new menu has a total of %d(%s) = %d kcals.",
			p.Targets.Calories, delta(p.CaloriesAfter, p.Targets.Calories), p.CaloriesAfter))
	}
	lines = append(lines, fmt.Sprintf("The menu has a total of %d(%s) = %dg of proteins.",
		p.Targets.Proteins, delta(p.ProteinsAfter, p.Targets.Proteins), p.ProteinsAfter))
	return lines
}

func delta(actual, target uint32) string {
	return fmt.Sprintf("%+d", int64(actual)-int64(target))
}
