// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fitmenu/internal/models"
)

var ErrMenuNotFound = errors.New("menu not found")

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    PRAGMA foreign_keys = ON;

    CREATE TABLE IF NOT EXISTS menus (
        id TEXT PRIMARY KEY,
        date TEXT NOT NULL,
        program_id TEXT NOT NULL,
        total_calories INTEGER NOT NULL,
        total_proteins INTEGER NOT NULL,
        fetched_at TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS foods (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        menu_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        description TEXT NOT NULL,
        quantity INTEGER NOT NULL,
        calories INTEGER NOT NULL,
        proteins INTEGER NOT NULL,
        supplemental INTEGER NOT NULL DEFAULT 0,
        FOREIGN KEY (menu_id) REFERENCES menus(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_menus_date ON menus(date);
    CREATE INDEX IF NOT EXISTS idx_foods_menu_id ON foods(menu_id);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveMenu stores menu with its foods in page order. A menu without an ID
// gets a fresh one.
func (s *SQLiteStorage) SaveMenu(ctx context.Context, menu *models.Menu) error {
	if menu.ID == "" {
		menu.ID = uuid.NewString()
	}
	if menu.FetchedAt.IsZero() {
		menu.FetchedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	menuQuery := `
        INSERT INTO menus (id, date, program_id, total_calories, total_proteins, fetched_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err = tx.ExecContext(ctx, menuQuery,
		menu.ID, menu.Date, menu.ProgramID, menu.TotalCalories(), menu.TotalProteins(),
		menu.FetchedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert menu: %w", err)
	}

	foodQuery := `
        INSERT INTO foods (menu_id, position, description, quantity, calories, proteins, supplemental)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	for i, food := range menu.Foods {
		_, err = tx.ExecContext(ctx, foodQuery,
			menu.ID, i, food.Description, food.Quantity, food.Calories, food.Proteins, food.Supplemental)
		if err != nil {
			return fmt.Errorf("failed to insert food: %w", err)
		}
	}

	return tx.Commit()
}

// GetMenus returns stored menus, newest first. startDate and endDate are
// inclusive YYYY-MM-DD bounds; empty means unbounded.
func (s *SQLiteStorage) GetMenus(ctx context.Context, startDate, endDate string, limit int) ([]*models.Menu, error) {
	query := `
        SELECT id, date, program_id, fetched_at
        FROM menus
        WHERE 1=1
    `
	args := []interface{}{}

	if startDate != "" {
		query += " AND date >= ?"
		args = append(args, startDate)
	}
	if endDate != "" {
		query += " AND date <= ?"
		args = append(args, endDate)
	}

	query += " ORDER BY date DESC, fetched_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query menus: %w", err)
	}

	var menus []*models.Menu
	for rows.Next() {
		menu, err := scanMenu(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		menus = append(menus, menu)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate menus: %w", err)
	}
	rows.Close()

	// Foods are loaded after the menu cursor is closed; the pool has one connection.
	for _, menu := range menus {
		if err := s.loadFoodsForMenu(ctx, menu); err != nil {
			return nil, fmt.Errorf("failed to load foods for menu %s: %w", menu.ID, err)
		}
	}

	return menus, nil
}

// GetMenuByDate returns the most recently fetched menu for date.
func (s *SQLiteStorage) GetMenuByDate(ctx context.Context, date string) (*models.Menu, error) {
	menus, err := s.GetMenus(ctx, date, date, 1)
	if err != nil {
		return nil, err
	}
	if len(menus) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMenuNotFound, date)
	}
	return menus[0], nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMenu(row scanner) (*models.Menu, error) {
	menu := &models.Menu{}
	var fetchedAtStr string

	if err := row.Scan(&menu.ID, &menu.Date, &menu.ProgramID, &fetchedAtStr); err != nil {
		return nil, fmt.Errorf("failed to scan menu: %w", err)
	}

	fetchedAt, err := time.Parse(time.RFC3339, fetchedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fetched_at: %w", err)
	}
	menu.FetchedAt = fetchedAt

	return menu, nil
}

func (s *SQLiteStorage) loadFoodsForMenu(ctx context.Context, menu *models.Menu) error {
	query := `
        SELECT description, quantity, calories, proteins, supplemental
        FROM foods
        WHERE menu_id = ?
        ORDER BY position
    `

	rows, err := s.db.QueryContext(ctx, query, menu.ID)
	if err != nil {
		return fmt.Errorf("failed to query foods: %w", err)
	}
	defer rows.Close()

	foods := []models.Food{}
	for rows.Next() {
		food := models.Food{}

		err := rows.Scan(&food.Description, &food.Quantity, &food.Calories, &food.Proteins, &food.Supplemental)
		if err != nil {
			return fmt.Errorf("failed to scan food: %w", err)
		}

		foods = append(foods, food)
	}

	menu.Foods = foods
	return rows.Err()
}
