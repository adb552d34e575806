package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Totals(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	mock.ExpectQuery(`(?s)SELECT\s+COUNT\(\*\).*FROM orders.*status <> 'CANCELLED'`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"a", "b", "c", "d", "e", "f", "g"}).
			AddRow(5, 4, 1200.5, 3, 700.5, 2, 500.0))

	got, err := repo.Totals(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, &totalsRow{
		orders: 5, paidOrders: 4, revenue: 1200.5,
		posOrders: 3, posRevenue: 700.5,
		onlineOrders: 2, onlineRevenue: 500,
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_TopProducts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	mock.ExpectQuery(`(?s)FROM order_items oi.*GROUP BY oi.product_id.*LIMIT \$3`).
		WithArgs(from, to, 5).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "qty", "revenue"}).
			AddRow("p1", "Rice", 12, 1440.0).
			AddRow("p2", "Biscuits", 7, 210.0))

	got, err := repo.TopProducts(context.Background(), from, to, 5)
	require.NoError(t, err)
	assert.Equal(t, []TopProduct{
		{ProductID: "p1", Name: "Rice", Qty: 12, Revenue: 1440},
		{ProductID: "p2", Name: "Biscuits", Qty: 7, Revenue: 210},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
