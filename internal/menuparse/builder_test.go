package menuparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"fitmenu/internal/models"
)

func TestBuilder_RoundTrip(t *testing.T) {
	b := NewBuilder("2024-01-05", zaptest.NewLogger(t))

	for _, fragment := range chickenFragments {
		require.NoError(t, b.Feed(fragment))
	}
	menu, err := b.Finish()

	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", menu.Date)
	assert.Equal(t, []models.Food{chicken}, menu.Foods)
	assert.True(t, b.acc.Empty())
}

func TestBuildMenu(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		want  []models.Food
	}{
		{
			name:  "no nodes",
			nodes: nil,
			want:  []models.Food{},
		},
		{
			name:  "header only",
			nodes: []string{"\nMeniul zilei: luni"},
			want:  []models.Food{},
		},
		{
			name:  "header is skipped even if it looks like a description",
			nodes: append([]string{"\nMeniul zilei: luni"}, chickenFragments...),
			want:  []models.Food{chicken},
		},
		{
			name: "records in page order with noise",
			nodes: []string{
				"header",
				"\n",
				"\n-Omleta cu spanac",
				"Gramaj: 200g",
				"Alergeni: oua",
				"proteine: 18g",
				"280 kcal",
				"\n",
				"\nPranz: pui cu orez",
				"340 kcal",
				"Gramaje: 350 g",
				"proteine: 42 g",
			},
			want: []models.Food{
				{Description: "Omleta cu spanac", Quantity: 200, Calories: 280, Proteins: 18},
				{Description: "Pranz: pui cu orez", Quantity: 350, Calories: 340, Proteins: 42},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			menu, err := BuildMenu("2024-01-05", tt.nodes, zaptest.NewLogger(t))

			require.NoError(t, err)
			assert.Equal(t, tt.want, menu.Foods)
		})
	}
}

func TestBuildMenu_Truncated(t *testing.T) {
	nodes := []string{"header", "\nChicken Breast: grilled", "Gramaj: 150g"}

	menu, err := BuildMenu("2024-01-05", nodes, nil)

	assert.Nil(t, menu)
	require.ErrorIs(t, err, ErrIncompleteRecord)
	assert.Contains(t, err.Error(), "description")
	assert.Contains(t, err.Error(), "quantity")
	assert.Equal(t, "incomplete_record", Kind(err))
}

func TestBuildMenu_StopsOnFirstError(t *testing.T) {
	nodes := append([]string{"header"}, chickenFragments...)
	nodes = append(nodes, "250 kcal", "260 kcal")

	menu, err := BuildMenu("2024-01-05", nodes, nil)

	assert.Nil(t, menu)
	assert.ErrorIs(t, err, ErrDuplicateField)
	assert.Equal(t, "duplicate_field", Kind(err))
}

func TestBuildMenu_InvalidRecord(t *testing.T) {
	nodes := []string{"header", "\nChicken Breast: grilled", "Gramaj: 0g", "250 kcal", "proteine: 30g"}

	menu, err := BuildMenu("2024-01-05", nodes, nil)

	assert.Nil(t, menu)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Equal(t, "invalid_record", Kind(err))
}
