package category

import (
	"context"
	"database/sql"

	"pantry-be/internal/apperror"
	"pantry-be/internal/db"
	"pantry-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, c *Category) error
	List(ctx context.Context, search string) ([]*Category, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Category) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, slug)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, c.ID, c.Name, c.Slug).Scan(&c.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrCategoryExists.WithCause(err)
		}
		logger.FromCtx(ctx).Error("failed to insert category",
			zap.String("layer", "repository"),
			zap.String("name", c.Name),
			zap.Error(err),
		)
		return apperror.Wrap(err, "create category")
	}
	return nil
}

func (r *repository) List(ctx context.Context, search string) ([]*Category, error) {
	query := `SELECT id, name, slug, created_at FROM categories`
	args := []any{}

	if search != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperror.Wrap(err, "list categories")
	}
	defer rows.Close()

	categories := []*Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, apperror.Wrap(err, "scan category")
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

// Delete removes the category; the schema nulls category_id on its products.
func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, "delete category")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
