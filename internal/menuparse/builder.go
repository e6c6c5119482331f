// internal/menuparse/builder.go
package menuparse

import (
	"fmt"

	"go.uber.org/zap"

	"fitmenu/internal/models"
)

// Builder turns the text nodes of a menu page into a menu.
type Builder struct {
	menu   *models.Menu
	acc    Accumulator
	logger *zap.Logger
}

func NewBuilder(date string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		menu:   models.NewMenu(date),
		logger: logger,
	}
}

// Feed passes one fragment to the accumulator and appends the record it
// completes, if any.
func (b *Builder) Feed(fragment string) error {
	food, err := b.acc.Ingest(fragment)
	if err != nil {
		return err
	}
	if food == nil {
		if !b.acc.Empty() {
			b.logger.Debug("partial food record",
				zap.String("fragment", fragment),
				zap.String("fields", fmt.Sprint(b.acc.Pending())))
		}
		return nil
	}
	b.logger.Debug("food record complete",
		zap.String("description", food.Description),
		zap.Uint32("quantity", food.Quantity),
		zap.Uint32("calories", food.Calories),
		zap.Uint32("proteins", food.Proteins))
	b.menu.AddFood(*food)
	return nil
}

// Finish returns the menu. Input that stops in the middle of a record is an
// error and no menu is returned.
func (b *Builder) Finish() (*models.Menu, error) {
	if !b.acc.Empty() {
		return nil, fmt.Errorf("%w: saw %v", ErrIncompleteRecord, b.acc.Pending())
	}
	return b.menu, nil
}

// BuildMenu parses the text nodes of a menu detail container. The first node
// is the container header and carries no data.
func BuildMenu(date string, nodes []string, logger *zap.Logger) (*models.Menu, error) {
	b := NewBuilder(date, logger)
	if len(nodes) > 0 {
		nodes = nodes[1:]
	}
	for _, node := range nodes {
		if err := b.Feed(node); err != nil {
			return nil, err
		}
	}
	return b.Finish()
}
