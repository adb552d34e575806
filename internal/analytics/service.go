package analytics

import (
	"context"
	"time"

	"pantry-be/internal/apperror"
	"pantry-be/internal/inventory"
	"pantry-be/internal/logger"
	"pantry-be/internal/utils"

	"go.uber.org/zap"
)

const (
	TopProductLimit = 5
	// DefaultWindow is used when no range is given.
	DefaultWindow = 30 * 24 * time.Hour
)

var ErrInvalidRange = apperror.Validation("from must be before to")

type StockReporter interface {
	LowStock(ctx context.Context) ([]inventory.LowStockItem, error)
}

type Service interface {
	Summary(ctx context.Context, from, to time.Time) (*Summary, error)
}

type service struct {
	repo  Repository
	stock StockReporter
	now   func() time.Time
}

func NewService(repo Repository, stock StockReporter) Service {
	return &service{repo: repo, stock: stock, now: time.Now}
}

// Summary fills a zero to with now and a zero from with DefaultWindow
// before to.
func (s *service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Summary"),
	)

	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.Add(-DefaultWindow)
	}
	if !from.Before(to) {
		return nil, ErrInvalidRange
	}

	t, err := s.repo.Totals(ctx, from, to)
	if err != nil {
		log.Error("failed to load order totals", zap.Error(err))
		return nil, err
	}

	top, err := s.repo.TopProducts(ctx, from, to, TopProductLimit)
	if err != nil {
		log.Error("failed to load top products", zap.Error(err))
		return nil, err
	}
	if top == nil {
		top = []TopProduct{}
	}

	low, err := s.stock.LowStock(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		From:           from,
		To:             to,
		Revenue:        utils.RoundMoney(t.revenue),
		OrderCount:     t.orders,
		PaidOrderCount: t.paidOrders,
		POS:            ChannelStats{Orders: t.posOrders, Revenue: utils.RoundMoney(t.posRevenue)},
		Online:         ChannelStats{Orders: t.onlineOrders, Revenue: utils.RoundMoney(t.onlineRevenue)},
		TopProducts:    top,
		LowStockCount:  len(low),
	}
	if t.paidOrders > 0 {
		sum.AverageOrderValue = utils.RoundMoney(t.revenue / float64(t.paidOrders))
	}
	return sum, nil
}
