package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportInput is the already-fetched business data a report is built from.
// The engine never mutates it. Missing slices are treated as empty and
// their sections are skipped.
type ReportInput struct {
	Summary        SalesSummary        `json:"summary"`
	Series         []DailySales        `json:"series,omitempty"`
	TopProducts    []ProductRank       `json:"topProducts,omitempty"`
	CategoryStats  []CategoryCount     `json:"categoryStats,omitempty"`
	StockMovements []StockMovement     `json:"stockMovements,omitempty"`
	UserStats      []RoleCount         `json:"userStats,omitempty"`
	Customers      []CustomerPurchases `json:"customers,omitempty"`
}

// SalesSummary holds the period totals. A JSON null amount decodes to zero.
type SalesSummary struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
	TotalOrders  int64           `json:"totalOrders"`
}

// Outstanding is revenue minus collected. It is negative when more was
// collected than billed in the period.
func (s SalesSummary) Outstanding() decimal.Decimal {
	return s.TotalRevenue.Sub(s.TotalPaid)
}

// DailySales is one point of the per-day series. Date is the day key as
// produced by the sales aggregation (YYYY-MM-DD).
type DailySales struct {
	Date            string          `json:"date"`
	OrderCount      int64           `json:"orderCount"`
	Revenue         decimal.Decimal `json:"revenue"`
	AmountCollected decimal.Decimal `json:"amountCollected"`
}

// ProductRank is one entry of the best sellers list, highest revenue first.
type ProductRank struct {
	Name         string          `json:"name"`
	QuantitySold decimal.Decimal `json:"quantitySold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type StockMovement struct {
	MovementType  string          `json:"movementType"`
	Count         int64           `json:"count"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
}

type RoleCount struct {
	Role  string `json:"role"`
	Count int64  `json:"count"`
}

// CustomerPurchases aggregates one customer's orders in the period.
// Empty contact fields are rendered as the placeholder glyph.
type CustomerPurchases struct {
	Name          string            `json:"name"`
	Phone         string            `json:"phone,omitempty"`
	Email         string            `json:"email,omitempty"`
	GSTIN         string            `json:"gstin,omitempty"`
	Address       string            `json:"address,omitempty"`
	TotalOrders   int64             `json:"totalOrders"`
	TotalSpent    decimal.Decimal   `json:"totalSpent"`
	LastOrderDate *time.Time        `json:"lastOrderDate,omitempty"`
	Products      []CustomerProduct `json:"products,omitempty"`
}

type CustomerProduct struct {
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}
