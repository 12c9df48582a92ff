package reportsapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sriamman/reportdesk/pkg/reporting"
)

// envelope is the wrapper every reports API response comes in.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// SalesReport is the payload of /reports/sales?groupBy=day.
type SalesReport struct {
	Summary SalesSummary `json:"summary"`
	Chart   []SalesPoint `json:"chart"`
}

type SalesSummary struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
	TotalOrders  int64           `json:"totalOrders"`
}

// SalesPoint is one aggregation bucket; ID is the day key.
type SalesPoint struct {
	ID      string          `json:"_id"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
	Paid    decimal.Decimal `json:"paid"`
}

// ProductReport is the payload of /reports/products.
type ProductReport struct {
	TopProducts   []ProductTotal  `json:"topProducts"`
	CategoryStats []CategoryTotal `json:"categoryStats"`
}

type ProductTotal struct {
	ID        string          `json:"_id"`
	TotalSold decimal.Decimal `json:"totalSold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type CategoryTotal struct {
	ID    string `json:"_id"`
	Count int64  `json:"count"`
}

// AnalyticsReport is the payload of /reports/analytics.
type AnalyticsReport struct {
	StockMovements []MovementTotal `json:"stockMovements"`
	UserStats      []RoleTotal     `json:"userStats"`
}

type MovementTotal struct {
	ID       string          `json:"_id"`
	Count    int64           `json:"count"`
	TotalQty decimal.Decimal `json:"totalQty"`
}

type RoleTotal struct {
	ID    string `json:"_id"`
	Count int64  `json:"count"`
}

// CustomerReport is the payload of /reports/customers.
type CustomerReport struct {
	Customers []CustomerTotal `json:"customers"`
}

type CustomerTotal struct {
	ID            string          `json:"_id"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	GSTIN         string          `json:"gstin"`
	Address       string          `json:"address"`
	TotalOrders   int64           `json:"totalOrders"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
	LastOrderDate *time.Time      `json:"lastOrderDate"`
	Products      []CustomerItem  `json:"products"`
}

type CustomerItem struct {
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// applySales copies the sales payload into in.
func applySales(in *reporting.ReportInput, s *SalesReport) {
	in.Summary = reporting.SalesSummary{
		TotalRevenue: s.Summary.TotalRevenue,
		TotalPaid:    s.Summary.TotalPaid,
		TotalOrders:  s.Summary.TotalOrders,
	}
	in.Series = make([]reporting.DailySales, 0, len(s.Chart))
	for _, p := range s.Chart {
		in.Series = append(in.Series, reporting.DailySales{
			Date:            p.ID,
			OrderCount:      p.Orders,
			Revenue:         p.Revenue,
			AmountCollected: p.Paid,
		})
	}
}

func applyProducts(in *reporting.ReportInput, p *ProductReport, withCategories bool) {
	in.TopProducts = make([]reporting.ProductRank, 0, len(p.TopProducts))
	for _, t := range p.TopProducts {
		in.TopProducts = append(in.TopProducts, reporting.ProductRank{
			Name:         t.ID,
			QuantitySold: t.TotalSold,
			Revenue:      t.Revenue,
		})
	}
	if !withCategories {
		return
	}
	in.CategoryStats = make([]reporting.CategoryCount, 0, len(p.CategoryStats))
	for _, c := range p.CategoryStats {
		in.CategoryStats = append(in.CategoryStats, reporting.CategoryCount{Category: c.ID, Count: c.Count})
	}
}

func applyAnalytics(in *reporting.ReportInput, a *AnalyticsReport) {
	in.StockMovements = make([]reporting.StockMovement, 0, len(a.StockMovements))
	for _, m := range a.StockMovements {
		in.StockMovements = append(in.StockMovements, reporting.StockMovement{
			MovementType:  m.ID,
			Count:         m.Count,
			TotalQuantity: m.TotalQty,
		})
	}
	in.UserStats = make([]reporting.RoleCount, 0, len(a.UserStats))
	for _, u := range a.UserStats {
		in.UserStats = append(in.UserStats, reporting.RoleCount{Role: u.ID, Count: u.Count})
	}
}

func applyCustomers(in *reporting.ReportInput, c *CustomerReport) {
	if c == nil {
		return
	}
	in.Customers = make([]reporting.CustomerPurchases, 0, len(c.Customers))
	for _, cust := range c.Customers {
		products := make([]reporting.CustomerProduct, 0, len(cust.Products))
		for _, item := range cust.Products {
			products = append(products, reporting.CustomerProduct(item))
		}
		in.Customers = append(in.Customers, reporting.CustomerPurchases{
			Name:          cust.ID,
			Phone:         cust.Phone,
			Email:         cust.Email,
			GSTIN:         cust.GSTIN,
			Address:       cust.Address,
			TotalOrders:   cust.TotalOrders,
			TotalSpent:    cust.TotalSpent,
			LastOrderDate: cust.LastOrderDate,
			Products:      products,
		})
	}
}
