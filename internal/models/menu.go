// internal/models/menu.go
package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidFood is returned by Food.Validate.
var ErrInvalidFood = errors.New("invalid food")

type Food struct {
	Description  string `json:"description"`
	Quantity     uint32 `json:"quantity"` // grams
	Calories     uint32 `json:"calories"` // kcal
	Proteins     uint32 `json:"proteins"` // grams
	Supplemental bool   `json:"supplemental,omitempty"`
}

// Validate reports whether every field of f carries a usable value.
func (f Food) Validate() error {
	switch {
	case f.Description == "":
		return fmt.Errorf("%w: empty description", ErrInvalidFood)
	case f.Quantity == 0:
		return fmt.Errorf("%w: zero quantity for %q", ErrInvalidFood, f.Description)
	case f.Calories == 0:
		return fmt.Errorf("%w: zero calories for %q", ErrInvalidFood, f.Description)
	case f.Proteins == 0:
		return fmt.Errorf("%w: zero proteins for %q", ErrInvalidFood, f.Description)
	}
	return nil
}

// Scale returns a copy of f with quantity, calories and proteins multiplied
// by scale and rounded to the nearest integer.
func (f Food) Scale(scale float64) Food {
	return Food{
		Description:  f.Description,
		Quantity:     scaleUint(f.Quantity, scale),
		Calories:     scaleUint(f.Calories, scale),
		Proteins:     scaleUint(f.Proteins, scale),
		Supplemental: f.Supplemental,
	}
}

func scaleUint(v uint32, scale float64) uint32 {
	scaled := float64(v)*scale + 0.5
	switch {
	case !(scaled >= 1):
		return 0
	case scaled >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(scaled)
}

// addSat adds without wrapping past math.MaxUint32.
func addSat(a, b uint32) uint32 {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}
	return a + b
}

func (f Food) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", f.Description)
	fmt.Fprintf(&b, "Calories: %d kcals\n", f.Calories)
	fmt.Fprintf(&b, "Proteins: %dg\n", f.Proteins)
	return b.String()
}

type Menu struct {
	ID        string    `json:"id,omitempty"`
	Date      string    `json:"date"`
	ProgramID string    `json:"program_id,omitempty"`
	Foods     []Food    `json:"foods"`
	FetchedAt time.Time `json:"fetched_at"`
}

func NewMenu(date string) *Menu {
	return &Menu{Date: date, Foods: []Food{}}
}

func (m *Menu) AddFood(food Food) {
	m.Foods = append(m.Foods, food)
}

func (m *Menu) TotalCalories() uint32 {
	var total uint32
	for _, food := range m.Foods {
		total = addSat(total, food.Calories)
	}
	return total
}

func (m *Menu) TotalProteins() uint32 {
	var total uint32
	for _, food := range m.Foods {
		total = addSat(total, food.Proteins)
	}
	return total
}

// Rule separates food blocks in the console report.
var Rule = strings.Repeat("-", 60)

func (m *Menu) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Menu for date %s\n", m.Date)
	b.WriteString(Rule + "\n")
	for _, food := range m.Foods {
		b.WriteString(food.String())
		b.WriteString(Rule + "\n")
	}
	fmt.Fprintf(&b, "Total menu calories %d kcals\n", m.TotalCalories())
	fmt.Fprintf(&b, "Total menu proteins %dg\n", m.TotalProteins())
	return b.String()
}
