package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/foodking/internal/domain/menu"
)

const (
	menuColumns = `id, name, description, price, image, category, is_available, created_at, updated_at`

	getMenuItemByIDSQL = `SELECT ` + menuColumns + ` FROM menu_items WHERE id = $1`

	getMenuItemsByIDsSQL = `SELECT ` + menuColumns + ` FROM menu_items WHERE id = ANY($1)`

	createMenuItemSQL = `INSERT INTO menu_items (` + menuColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	upsertMenuItemSQL = createMenuItemSQL + `
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, description = EXCLUDED.description, price = EXCLUDED.price,
			image = EXCLUDED.image, category = EXCLUDED.category, is_available = EXCLUDED.is_available,
			updated_at = EXCLUDED.updated_at`

	updateMenuItemSQL = `UPDATE menu_items
		SET name = $2, description = $3, price = $4, image = $5, category = $6, is_available = $7, updated_at = $8
		WHERE id = $1`

	deleteMenuItemSQL = `DELETE FROM menu_items WHERE id = $1`
)

var _ menu.Repository = (*MenuRepository)(nil)

// MenuRepository implements menu.Repository backed by PostgreSQL.
type MenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

// List returns menu items grouped by category, newest first within each.
func (r *MenuRepository) List(ctx context.Context, f menu.Filter) ([]menu.Item, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		args = append(args, string(f.Category))
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Available != nil {
		args = append(args, *f.Available)
		where = append(where, fmt.Sprintf("is_available = $%d", len(args)))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + menuColumns + ` FROM menu_items`)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY category, created_at DESC")

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

// GetByID returns a single menu item by its identifier.
func (r *MenuRepository) GetByID(ctx context.Context, id string) (*menu.Item, error) {
	rows, err := r.pool.Query(ctx, getMenuItemByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting menu item %q: %w", id, err)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanMenuItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, menu.ErrNotFound
		}
		return nil, fmt.Errorf("getting menu item %q: %w", id, err)
	}
	return &it, nil
}

// GetByIDs returns menu items matching any of the given IDs in no particular
// order. Unknown IDs are skipped.
func (r *MenuRepository) GetByIDs(ctx context.Context, ids []string) ([]menu.Item, error) {
	rows, err := r.pool.Query(ctx, getMenuItemsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting menu items by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

// Create inserts a new menu item.
func (r *MenuRepository) Create(ctx context.Context, it *menu.Item) error {
	if _, err := r.pool.Exec(ctx, createMenuItemSQL, menuItemArgs(it)...); err != nil {
		return fmt.Errorf("creating menu item %q: %w", it.ID, err)
	}
	return nil
}

// Upsert inserts it or overwrites the item with the same ID.
func (r *MenuRepository) Upsert(ctx context.Context, it *menu.Item) error {
	if _, err := r.pool.Exec(ctx, upsertMenuItemSQL, menuItemArgs(it)...); err != nil {
		return fmt.Errorf("upserting menu item %q: %w", it.ID, err)
	}
	return nil
}

// Update overwrites the mutable fields of an existing item.
func (r *MenuRepository) Update(ctx context.Context, it *menu.Item) error {
	tag, err := r.pool.Exec(ctx, updateMenuItemSQL,
		it.ID, it.Name, it.Description, it.Price, it.Image, string(it.Category), it.IsAvailable, it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating menu item %q: %w", it.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

// Delete removes an item. Placed orders keep their snapshot.
func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteMenuItemSQL, id)
	if err != nil {
		return fmt.Errorf("deleting menu item %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrNotFound
	}
	return nil
}

func menuItemArgs(it *menu.Item) []any {
	return []any{
		it.ID, it.Name, it.Description, it.Price, it.Image,
		string(it.Category), it.IsAvailable, it.CreatedAt, it.UpdatedAt,
	}
}

func scanMenuItem(row pgx.CollectableRow) (menu.Item, error) {
	var (
		it       menu.Item
		category string
	)
	err := row.Scan(
		&it.ID, &it.Name, &it.Description, &it.Price, &it.Image,
		&category, &it.IsAvailable, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return menu.Item{}, fmt.Errorf("scanning menu item: %w", err)
	}
	it.Category = menu.Category(category)
	return it, nil
}
