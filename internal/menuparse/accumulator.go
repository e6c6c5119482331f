// internal/menuparse/accumulator.go
package menuparse

import (
	"fmt"

	"fitmenu/internal/models"
)

// fieldSet records which fields of the in-progress record have been seen.
type fieldSet [fieldCount]bool

func (s fieldSet) empty() bool {
	return s == fieldSet{}
}

func (s fieldSet) complete() bool {
	for _, seen := range s {
		if !seen {
			return false
		}
	}
	return true
}

func (s fieldSet) fields() []Field {
	var out []Field
	for i, seen := range s {
		if seen {
			out = append(out, Field(i))
		}
	}
	return out
}

// Accumulator assembles one food record from fragments that may arrive in
// any order. It is not safe for concurrent use.
type Accumulator struct {
	food models.Food
	seen fieldSet
}

// Ingest tests fragment against every matcher. It returns the finished
// record once all four fields are known, nil while the record is partial.
func (a *Accumulator) Ingest(fragment string) (*models.Food, error) {
	if description, ok := MatchDescription(fragment); ok {
		if err := a.mark(FieldDescription, fragment); err != nil {
			return nil, err
		}
		a.food.Description = description
	}

	numbers := []struct {
		field Field
		match func(string) (uint32, bool, error)
		dst   *uint32
	}{
		{FieldQuantity, MatchQuantity, &a.food.Quantity},
		{FieldCalories, MatchCalories, &a.food.Calories},
		{FieldProteins, MatchProteins, &a.food.Proteins},
	}
	for _, n := range numbers {
		value, ok, err := n.match(fragment)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := a.mark(n.field, fragment); err != nil {
			return nil, err
		}
		*n.dst = value
	}

	if !a.seen.complete() {
		return nil, nil
	}
	if err := a.food.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	food := a.food
	a.Reset()
	return &food, nil
}

func (a *Accumulator) mark(field Field, fragment string) error {
	if a.seen[field] {
		return &FieldError{Field: field, Fragment: fragment, Err: ErrDuplicateField}
	}
	a.seen[field] = true
	return nil
}

// Empty reports whether no field of a new record has been seen yet.
func (a *Accumulator) Empty() bool {
	return a.seen.empty()
}

// Pending returns the fields collected for the record in progress.
func (a *Accumulator) Pending() []Field {
	return a.seen.fields()
}

func (a *Accumulator) Reset() {
	a.food = models.Food{}
	a.seen = fieldSet{}
}
