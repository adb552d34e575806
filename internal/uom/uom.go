// Package uom holds the admin pick-list of units of measure. Variant units
// on products are free strings and are not checked against this list.
package uom

import (
	"context"
	"database/sql"
	"strings"

	"pantry-be/internal/apperror"
	"pantry-be/internal/db"
	"pantry-be/internal/utils"
)

var ErrUOMExists = apperror.Conflict("uom already exists")

type UOM struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type CreateInput struct {
	Code  string `json:"code" validate:"required,max=32"`
	Label string `json:"label" validate:"required,max=100"`
}

type Repository interface {
	Create(ctx context.Context, u UOM) error
	List(ctx context.Context) ([]UOM, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u UOM) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO uoms (code, label) VALUES ($1, $2)`, u.Code, u.Label)
	if db.IsUniqueViolation(err) {
		return ErrUOMExists.WithCause(err)
	}
	return apperror.Wrap(err, "create uom")
}

func (r *repository) List(ctx context.Context) ([]UOM, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, label FROM uoms ORDER BY code`)
	if err != nil {
		return nil, apperror.Wrap(err, "list uoms")
	}
	defer rows.Close()

	out := []UOM{}
	for rows.Next() {
		var u UOM
		if err := rows.Scan(&u.Code, &u.Label); err != nil {
			return nil, apperror.Wrap(err, "scan uom")
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*UOM, error)
	List(ctx context.Context) ([]UOM, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*UOM, error) {
	input.Code = strings.TrimSpace(input.Code)
	input.Label = strings.TrimSpace(input.Label)
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	u := UOM{Code: input.Code, Label: input.Label}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *service) List(ctx context.Context) ([]UOM, error) {
	return s.repo.List(ctx)
}
