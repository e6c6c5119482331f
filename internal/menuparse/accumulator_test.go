package menuparse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitmenu/internal/models"
)

var chickenFragments = []string{
	"\nChicken Breast: grilled",
	"Gramaj: 150g",
	"250 kcal",
	"proteine: 30g",
}

var chicken = models.Food{
	Description: "Chicken Breast: grilled",
	Quantity:    150,
	Calories:    250,
	Proteins:    30,
}

func permutations(in []string) [][]string {
	if len(in) <= 1 {
		return [][]string{append([]string(nil), in...)}
	}
	var out [][]string
	for i := range in {
		rest := make([]string, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{in[i]}, p...))
		}
	}
	return out
}

func TestAccumulator_OrderIndependent(t *testing.T) {
	orders := permutations(chickenFragments)
	require.Len(t, orders, 24)

	for _, order := range orders {
		var acc Accumulator
		var emitted []models.Food
		for _, fragment := range order {
			food, err := acc.Ingest(fragment)
			require.NoError(t, err, "order %q", order)
			if food != nil {
				emitted = append(emitted, *food)
			}
		}
		require.Len(t, emitted, 1, "order %q", order)
		assert.Equal(t, chicken, emitted[0])
		assert.True(t, acc.Empty())
	}
}

func TestAccumulator_EmitsOnlyOnLastField(t *testing.T) {
	var acc Accumulator

	for _, fragment := range chickenFragments[:3] {
		food, err := acc.Ingest(fragment)
		require.NoError(t, err)
		assert.Nil(t, food)
	}
	assert.False(t, acc.Empty())
	assert.Equal(t, []Field{FieldDescription, FieldQuantity, FieldCalories}, acc.Pending())

	food, err := acc.Ingest(chickenFragments[3])
	require.NoError(t, err)
	require.NotNil(t, food)
	assert.Equal(t, chicken, *food)
}

func TestAccumulator_IgnoresUnrelatedFragments(t *testing.T) {
	var acc Accumulator

	food, err := acc.Ingest("\n")
	require.NoError(t, err)
	assert.Nil(t, food)
	food, err = acc.Ingest("Alergeni: lapte, oua, gluten")
	require.NoError(t, err)
	assert.Nil(t, food)
	assert.True(t, acc.Empty())
}

func TestAccumulator_DuplicateField(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		field     Field
	}{
		{"description", []string{"\nChicken Breast: grilled", "\n-Rice"}, FieldDescription},
		{"quantity", []string{"Gramaj: 150g", "Gramaj: 200g"}, FieldQuantity},
		{"calories", []string{"\nChicken Breast: grilled", "250 kcal", "Gramaj: 150g", "260 kcal"}, FieldCalories},
		{"proteins", []string{"proteine: 30g", "proteine: 31g"}, FieldProteins},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var acc Accumulator
			var err error
			for _, fragment := range tt.fragments {
				if _, err = acc.Ingest(fragment); err != nil {
					break
				}
			}

			require.ErrorIs(t, err, ErrDuplicateField)
			assert.NotErrorIs(t, err, ErrInvalidRecord)
			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, tt.field, fieldErr.Field)
			assert.Equal(t, tt.fragments[len(tt.fragments)-1], fieldErr.Fragment)
		})
	}
}

func TestAccumulator_TwoFieldsInOneFragment(t *testing.T) {
	var acc Accumulator

	food, err := acc.Ingest("\n-Shake proteic 250 kcal")
	require.NoError(t, err)
	assert.Nil(t, food)
	assert.Equal(t, []Field{FieldDescription, FieldCalories}, acc.Pending())

	_, err = acc.Ingest("\n-Shake 300 kcal")
	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, FieldDescription, fieldErr.Field)
}

func TestAccumulator_ValidationFailure(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
	}{
		{"zero quantity", []string{"\nChicken Breast: grilled", "Gramaj: 0g", "250 kcal", "proteine: 30g"}},
		{"zero calories", []string{"\nChicken Breast: grilled", "Gramaj: 150g", "0 kcal", "proteine: 30g"}},
		{"zero proteins", []string{"\nChicken Breast: grilled", "Gramaj: 150g", "250 kcal", "proteine: 0g"}},
		{"empty description", []string{"\n-", "Gramaj: 150g", "250 kcal", "proteine: 30g"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var acc Accumulator
			var err error
			for _, fragment := range tt.fragments {
				if _, err = acc.Ingest(fragment); err != nil {
					break
				}
			}

			require.ErrorIs(t, err, ErrInvalidRecord)
			assert.ErrorIs(t, err, models.ErrInvalidFood)
			assert.NotErrorIs(t, err, ErrDuplicateField)
		})
	}
}

func TestAccumulator_MalformedNumber(t *testing.T) {
	var acc Accumulator

	_, err := acc.Ingest("proteine: 4294967296g")

	assert.ErrorIs(t, err, ErrMalformedNumber)
	assert.True(t, acc.Empty())
}

func TestAccumulator_Reset(t *testing.T) {
	var acc Accumulator
	_, err := acc.Ingest("Gramaj: 150g")
	require.NoError(t, err)

	acc.Reset()

	assert.True(t, acc.Empty())
	assert.Empty(t, acc.Pending())
}
