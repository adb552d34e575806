package analytics

import "time"

type ChannelStats struct {
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type TopProduct struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Qty       int     `json:"qty"`
	Revenue   float64 `json:"revenue"`
}

// Summary covers non-cancelled orders created in [From, To). Revenue only
// counts paid orders.
type Summary struct {
	From              time.Time    `json:"from"`
	To                time.Time    `json:"to"`
	Revenue           float64      `json:"revenue"`
	OrderCount        int          `json:"orderCount"`
	PaidOrderCount    int          `json:"paidOrderCount"`
	AverageOrderValue float64      `json:"averageOrderValue"`
	POS               ChannelStats `json:"pos"`
	Online            ChannelStats `json:"online"`
	TopProducts       []TopProduct `json:"topProducts"`
	LowStockCount     int          `json:"lowStockCount"`
}

type totalsRow struct {
	orders        int
	paidOrders    int
	revenue       float64
	posOrders     int
	posRevenue    float64
	onlineOrders  int
	onlineRevenue float64
}
