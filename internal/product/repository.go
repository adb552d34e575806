package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pantry-be/internal/apperror"
	"pantry-be/internal/db"
	"pantry-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// AfterWrite runs inside the write transaction once the product and variant
// rows are in place.
type AfterWrite func(tx db.DBTX) error

type Repository interface {
	Create(ctx context.Context, p *Product, then AfterWrite) error
	Update(ctx context.Context, p *Product, then AfterWrite) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, opts ListOptions) ([]*Product, int, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(conn *sql.DB) Repository {
	return &repository{db: conn}
}

const productColumns = `
	p.id, p.name, p.slug, p.description, p.image_url, p.category_id,
	p.price, p.stock, p.is_active, p.created_at, p.updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.ImageURL, &p.CategoryID,
		&p.Price, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Variants = []Variant{}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p *Product, then AfterWrite) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateProduct"),
		zap.String("product_id", p.ID),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO products (
				id, name, slug, description, image_url, category_id,
				price, stock, is_active
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING created_at
		`,
			p.ID, p.Name, p.Slug, p.Description, p.ImageURL, p.CategoryID,
			p.Price, p.Stock, p.IsActive,
		).Scan(&p.CreatedAt)
		if err != nil {
			return err
		}

		if err := upsertVariants(ctx, tx, p.ID, p.Variants); err != nil {
			return err
		}
		return runAfterWrite(tx, then)
	})
	if err != nil {
		log.Error("failed to create product", zap.Error(err))
		if db.IsUniqueViolation(err) {
			return ErrSlugTaken.WithCause(err)
		}
		return apperror.Wrap(err, "create product")
	}

	return nil
}

// upsertVariants inserts new units and updates the price/order of existing
// ones. Stock of an existing unit is left untouched.
func upsertVariants(ctx context.Context, tx db.DBTX, productID string, variants []Variant) error {
	for i, v := range variants {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_variants (id, product_id, uom, price, stock, position)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (product_id, uom)
			DO UPDATE SET price = EXCLUDED.price, position = EXCLUDED.position
		`, v.ID, productID, v.UOM, v.Price, v.Stock, i)
		if err != nil {
			return fmt.Errorf("upsert variant %q: %w", v.UOM, err)
		}
	}
	return nil
}

func runAfterWrite(tx db.DBTX, then AfterWrite) error {
	if then == nil {
		return nil
	}
	return then(tx)
}

func (r *repository) Update(ctx context.Context, p *Product, then AfterWrite) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateProduct"),
		zap.String("product_id", p.ID),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET name = $1, slug = $2, description = $3, image_url = $4,
				category_id = $5, price = $6, is_active = $7, updated_at = NOW()
			WHERE id = $8
		`,
			p.Name, p.Slug, p.Description, p.ImageURL,
			p.CategoryID, p.Price, p.IsActive, p.ID,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrProductNotFound
		}

		uoms := make([]string, 0, len(p.Variants))
		for _, v := range p.Variants {
			uoms = append(uoms, v.UOM)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM product_variants
			WHERE product_id = $1 AND NOT (uom = ANY($2))
		`, p.ID, pq.Array(uoms)); err != nil {
			return err
		}

		if err := upsertVariants(ctx, tx, p.ID, p.Variants); err != nil {
			return err
		}
		return runAfterWrite(tx, then)
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return err
		}
		log.Error("failed to update product", zap.Error(err))
		if db.IsUniqueViolation(err) {
			return ErrSlugTaken.WithCause(err)
		}
		return apperror.Wrap(err, "update product")
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	return r.getOne(ctx, "p.id = $1", id)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.getOne(ctx, "p.slug = $1", slug)
}

func (r *repository) getOne(ctx context.Context, where string, arg any) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products p WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, apperror.Wrap(err, "get product")
	}

	if err := r.attachVariants(ctx, []*Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]*Product, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListProducts"),
		zap.Int("limit", opts.Limit),
		zap.Int("page", opts.Page),
	)

	where := []string{}
	args := []any{}

	if opts.Search != nil && *opts.Search != "" {
		args = append(args, "%"+*opts.Search+"%")
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.slug ILIKE $%d)", len(args), len(args)))
	}
	if opts.CategoryID != nil && *opts.CategoryID != "" {
		args = append(args, *opts.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if opts.OnlyActive {
		where = append(where, "p.is_active = TRUE")
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products p"+whereSQL, args...,
	).Scan(&total); err != nil {
		log.Error("failed to count products", zap.Error(err))
		return nil, 0, apperror.Wrap(err, "count products")
	}

	query := "SELECT " + productColumns + " FROM products p" + whereSQL +
		fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	log.Debug("executing list products query", zap.String("query", query))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, 0, apperror.Wrap(err, "list products")
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, apperror.Wrap(err, "scan product")
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.Wrap(err, "iterate products")
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *repository) attachVariants(ctx context.Context, products []*Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, 0, len(products))
	byID := make(map[string]*Product, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, uom, price, stock
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY product_id, position
	`, pq.Array(ids))
	if err != nil {
		return apperror.Wrap(err, "load variants")
	}
	defer rows.Close()

	for rows.Next() {
		var v Variant
		var productID string
		if err := rows.Scan(&v.ID, &productID, &v.UOM, &v.Price, &v.Stock); err != nil {
			return apperror.Wrap(err, "scan variant")
		}
		if p, ok := byID[productID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	return rows.Err()
}

// Delete removes the product and its variants. Stock transactions keep the
// product name they captured and stay readable.
func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, "delete product")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}
