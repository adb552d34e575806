package product

import (
	"context"
	"errors"
	"testing"

	"pantry-be/internal/apperror"
	"pantry-be/internal/db"
	"pantry-be/internal/inventory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p *Product, then AfterWrite) error {
	if err := m.Called(ctx, p).Error(0); err != nil {
		return err
	}
	return runAfterWrite(nil, then)
}

func (m *MockRepository) Update(ctx context.Context, p *Product, then AfterWrite) error {
	if err := m.Called(ctx, p).Error(0); err != nil {
		return err
	}
	return runAfterWrite(nil, then)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, opts ListOptions) ([]*Product, int, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Product), args.Int(1), args.Error(2)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockStock struct {
	mock.Mock
}

func (m *MockStock) AdjustTx(ctx context.Context, tx db.DBTX, in inventory.AdjustInput) (*inventory.AdjustResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.AdjustResult), args.Error(1)
}

func openingFor(productUOM string, qty int) func(inventory.AdjustInput) bool {
	return func(in inventory.AdjustInput) bool {
		if in.Type != inventory.TypeAdjustment || in.Quantity != qty ||
			in.Reason == nil || *in.Reason != OpeningStockReason {
			return false
		}
		if productUOM == "" {
			return in.VariantSKU == nil
		}
		return in.VariantSKU != nil && *in.VariantSKU == productUOM
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		stock := new(MockStock)
		svc := NewService(repo, stock)

		repo.On("Create", ctx, mock.MatchedBy(func(p *Product) bool {
			return p.Slug == "basmati-rice" && len(p.Variants) == 2 && p.IsActive &&
				p.Variants[0].Stock == 0 && p.Variants[1].Stock == 0
		})).Return(nil)
		stock.On("AdjustTx", ctx, mock.MatchedBy(openingFor("500g", 10))).
			Return(&inventory.AdjustResult{NewStock: 10}, nil).Once()
		stock.On("AdjustTx", ctx, mock.MatchedBy(openingFor("1kg", 4))).
			Return(&inventory.AdjustResult{NewStock: 4}, nil).Once()

		p, err := svc.Create(ctx, CreateInput{
			Name: "  Basmati Rice ",
			Variants: []VariantInput{
				{UOM: "500g", Price: 60, Stock: 10},
				{UOM: "1kg", Price: 110, Stock: 4},
			},
		})

		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "Basmati Rice", p.Name)
		assert.Equal(t, 14, p.EffectiveStock())
		assert.NotEqual(t, p.Variants[0].ID, p.Variants[1].ID)
		repo.AssertExpectations(t)
		stock.AssertExpectations(t)
	})

	t.Run("SingleSKUOpeningStock", func(t *testing.T) {
		repo := new(MockRepository)
		stock := new(MockStock)
		svc := NewService(repo, stock)

		repo.On("Create", ctx, mock.MatchedBy(func(p *Product) bool { return p.Stock == 0 })).Return(nil)
		stock.On("AdjustTx", ctx, mock.MatchedBy(openingFor("", 25))).
			Return(&inventory.AdjustResult{NewStock: 25}, nil).Once()

		p, err := svc.Create(ctx, CreateInput{Name: "Salt", Price: 20, Stock: 25})
		require.NoError(t, err)
		assert.Equal(t, 25, p.Stock)
		stock.AssertExpectations(t)
	})

	t.Run("NoOpeningStock", func(t *testing.T) {
		repo := new(MockRepository)
		stock := new(MockStock)
		svc := NewService(repo, stock)

		repo.On("Create", ctx, mock.Anything).Return(nil)

		p, err := svc.Create(ctx, CreateInput{Name: "Salt", Price: 20})
		require.NoError(t, err)
		assert.Equal(t, 0, p.Stock)
		stock.AssertNotCalled(t, "AdjustTx", mock.Anything, mock.Anything)
	})

	t.Run("OpeningStockFailure", func(t *testing.T) {
		repo := new(MockRepository)
		stock := new(MockStock)
		svc := NewService(repo, stock)

		repo.On("Create", ctx, mock.Anything).Return(nil)
		stock.On("AdjustTx", ctx, mock.Anything).Return(nil, inventory.ErrStockLimit)

		_, err := svc.Create(ctx, CreateInput{Name: "Salt", Price: 20, Stock: 25})
		assert.ErrorIs(t, err, inventory.ErrStockLimit)
	})

	t.Run("OpeningStockTooLarge", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockStock))

		_, err := svc.Create(ctx, CreateInput{Name: "Salt", Stock: inventory.MaxQuantity + 1})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})

	t.Run("DuplicateUOM", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockStock))

		_, err := svc.Create(ctx, CreateInput{
			Name: "Tea",
			Variants: []VariantInput{
				{UOM: "box", Price: 10},
				{UOM: "Box", Price: 12},
			},
		})

		assert.ErrorIs(t, err, ErrDuplicateUOM)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("MissingName", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockStock))

		_, err := svc.Create(ctx, CreateInput{Name: "  "})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})

	t.Run("InactiveByRequest", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockStock))
		inactive := false

		repo.On("Create", ctx, mock.Anything).Return(nil)

		p, err := svc.Create(ctx, CreateInput{Name: "Salt", Price: 20, IsActive: &inactive})
		require.NoError(t, err)
		assert.False(t, p.IsActive)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	existing := func() *Product {
		return &Product{
			ID:    "p1",
			Name:  "Rice",
			Slug:  "rice",
			Price: 50,
			Variants: []Variant{
				{ID: "v1", UOM: "1kg", Price: 100, Stock: 7},
			},
		}
	}

	t.Run("NoFields", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockStock))

		_, err := svc.Update(ctx, UpdateInput{ID: "p1"})
		assert.ErrorIs(t, err, ErrNoFieldsUpdate)
	})

	t.Run("KeepsVariantStock", func(t *testing.T) {
		repo := new(MockRepository)
		stock := new(MockStock)
		svc := NewService(repo, stock)

		repo.On("GetByID", ctx, "p1").Return(existing(), nil)
		repo.On("Update", ctx, mock.Anything).Return(nil)
		stock.On("AdjustTx", ctx, mock.MatchedBy(openingFor("5kg", 3))).
			Return(&inventory.AdjustResult{NewStock: 3}, nil).Once()

		variants := []VariantInput{
			{UOM: "1kg", Price: 120, Stock: 999},
			{UOM: "5kg", Price: 550, Stock: 3},
		}
		p, err := svc.Update(ctx, UpdateInput{ID: "p1", Variants: &variants})

		require.NoError(t, err)
		require.Len(t, p.Variants, 2)
		assert.Equal(t, "v1", p.Variants[0].ID)
		assert.Equal(t, 7, p.Variants[0].Stock)
		assert.Equal(t, 120.0, p.Variants[0].Price)
		assert.Equal(t, 3, p.Variants[1].Stock)
		stock.AssertExpectations(t)
	})

	t.Run("UnitCaseChangeKeepsStock", func(t *testing.T) {
		repo := new(MockRepository)
		stock := new(MockStock)
		svc := NewService(repo, stock)

		cur := existing()
		cur.Variants[0].Stock = 40
		repo.On("GetByID", ctx, "p1").Return(cur, nil)
		repo.On("Update", ctx, mock.Anything).Return(nil)

		variants := []VariantInput{{UOM: "1KG", Price: 105, Stock: 0}}
		p, err := svc.Update(ctx, UpdateInput{ID: "p1", Variants: &variants})

		require.NoError(t, err)
		require.Len(t, p.Variants, 1)
		assert.Equal(t, "v1", p.Variants[0].ID)
		assert.Equal(t, "1kg", p.Variants[0].UOM)
		assert.Equal(t, 40, p.Variants[0].Stock)
		assert.Equal(t, 105.0, p.Variants[0].Price)
		stock.AssertNotCalled(t, "AdjustTx", mock.Anything, mock.Anything)
	})

	t.Run("RenameChangesSlug", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockStock))
		name := "Brown Rice"

		repo.On("GetByID", ctx, "p1").Return(existing(), nil)
		repo.On("Update", ctx, mock.Anything).Return(nil)

		p, err := svc.Update(ctx, UpdateInput{ID: "p1", Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "brown-rice", p.Slug)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockStock))
		price := 10.0

		repo.On("GetByID", ctx, "missing").Return(nil, ErrProductNotFound)

		_, err := svc.Update(ctx, UpdateInput{ID: "missing", Price: &price})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("NormalizesPaging", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockStock))

		repo.On("List", ctx, mock.MatchedBy(func(o ListOptions) bool {
			return o.Page == 1 && o.Limit == maxListLimit
		})).Return([]*Product{{ID: "p1"}}, 1, nil)

		res, err := svc.List(ctx, ListOptions{Page: -3, Limit: 500})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Equal(t, maxListLimit, res.Limit)
	})

	t.Run("DefaultLimit", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockStock))

		repo.On("List", ctx, mock.MatchedBy(func(o ListOptions) bool {
			return o.Limit == defaultListLimit
		})).Return([]*Product{}, 0, nil)

		res, err := svc.List(ctx, ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, res.Items)
	})

	t.Run("RepoError", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockStock))

		repo.On("List", ctx, mock.Anything).Return(nil, 0, errors.New("db down"))

		_, err := svc.List(ctx, ListOptions{})
		assert.Error(t, err)
	})
}

func TestProduct_EffectivePrice(t *testing.T) {
	t.Run("NoVariants", func(t *testing.T) {
		p := &Product{Price: 25}

		price, err := p.EffectivePrice("")
		require.NoError(t, err)
		assert.Equal(t, 25.0, price)

		price, err = p.EffectivePrice(DefaultUOM)
		require.NoError(t, err)
		assert.Equal(t, 25.0, price)

		_, err = p.EffectivePrice("kg")
		assert.ErrorIs(t, err, ErrVariantNotFound)
	})

	t.Run("WithVariants", func(t *testing.T) {
		p := &Product{Price: 25, Stock: 100, Variants: []Variant{
			{UOM: "kg", Price: 90, Stock: 2},
			{UOM: "g", Price: 1, Stock: 3},
		}}

		price, err := p.EffectivePrice("kg")
		require.NoError(t, err)
		assert.Equal(t, 90.0, price)
		assert.Equal(t, 5, p.EffectiveStock())

		_, err = p.EffectivePrice(DefaultUOM)
		assert.ErrorIs(t, err, ErrVariantNotFound)
	})
}
