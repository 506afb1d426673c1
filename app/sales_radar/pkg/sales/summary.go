package sales

import (
	"sort"

	"github.com/shopspring/decimal"
)

const uncategorized = "Other"

var (
	platinumFloor = decimal.NewFromInt(10_000_000)
	goldFloor     = decimal.NewFromInt(5_000_000)
	silverFloor   = decimal.NewFromInt(1_000_000)
	hundred       = decimal.NewFromInt(100)
)

// RevenueTier 按收入划分客户等级，下界包含在本级内
func RevenueTier(revenue decimal.Decimal) Tier {
	switch {
	case revenue.GreaterThanOrEqual(platinumFloor):
		return TierPlatinum
	case revenue.GreaterThanOrEqual(goldFloor):
		return TierGold
	case revenue.GreaterThanOrEqual(silverFloor):
		return TierSilver
	default:
		return TierBronze
	}
}

type set map[string]struct{}

func (s set) add(k string) { s[k] = struct{}{} }

type customerAcc struct {
	account    string
	revenue    decimal.Decimal
	products   set
	categories set
	orders     set
}

type productAcc struct {
	item      string
	name      string
	revenue   decimal.Decimal
	quantity  decimal.Decimal
	customers set
}

type categoryAcc struct {
	name     string
	revenue  decimal.Decimal
	quantity decimal.Decimal
	orders   set
}

// Summarise 将订单行汇总为客户、产品、类别三个维度
//
// 三个维度都按收入降序排列，收入相同时保持首次出现的顺序。
func Summarise(lines []SalesLine) *Summary {
	var (
		customers  []*customerAcc
		products   []*productAcc
		categories []*categoryAcc
		byCustomer = map[string]*customerAcc{}
		byProduct  = map[string]*productAcc{}
		byCategory = map[string]*categoryAcc{}
		allOrders  = set{}
		grand      decimal.Decimal
		orphan     decimal.Decimal
		orphans    int
	)

	for _, l := range lines {
		allOrders.add(l.SalesOrderNum)
		amount := decimal.NewFromFloat(l.LineAmount)
		qty := decimal.NewFromFloat(l.Quantity)

		if l.CustomerAccount == "" {
			orphans++
			orphan = orphan.Add(amount)
			continue
		}
		grand = grand.Add(amount)

		cat := l.Category
		if cat == "" {
			cat = uncategorized
		}

		c, ok := byCustomer[l.CustomerAccount]
		if !ok {
			c = &customerAcc{account: l.CustomerAccount, products: set{}, categories: set{}, orders: set{}}
			byCustomer[l.CustomerAccount] = c
			customers = append(customers, c)
		}
		c.revenue = c.revenue.Add(amount)
		c.products.add(l.ItemNumber)
		c.categories.add(cat)
		c.orders.add(l.SalesOrderNum)

		p, ok := byProduct[l.ItemNumber]
		if !ok {
			p = &productAcc{item: l.ItemNumber, name: l.ProductName, customers: set{}}
			byProduct[l.ItemNumber] = p
			products = append(products, p)
		}
		p.revenue = p.revenue.Add(amount)
		p.quantity = p.quantity.Add(qty)
		p.customers.add(l.CustomerAccount)

		g, ok := byCategory[cat]
		if !ok {
			g = &categoryAcc{name: cat, orders: set{}}
			byCategory[cat] = g
			categories = append(categories, g)
		}
		g.revenue = g.revenue.Add(amount)
		g.quantity = g.quantity.Add(qty)
		g.orders.add(l.SalesOrderNum)
	}

	// 用未舍入的精确值排序，避免舍入后出现假并列
	sort.SliceStable(customers, func(i, j int) bool { return customers[i].revenue.GreaterThan(customers[j].revenue) })
	sort.SliceStable(products, func(i, j int) bool { return products[i].revenue.GreaterThan(products[j].revenue) })
	sort.SliceStable(categories, func(i, j int) bool { return categories[i].revenue.GreaterThan(categories[j].revenue) })

	s := &Summary{
		CustomerStats:  make([]CustomerSummary, 0, len(customers)),
		ProductStats:   make([]ProductSummary, 0, len(products)),
		CategoryStats:  make([]CategorySummary, 0, len(categories)),
		GrandTotal:     round2(grand),
		TotalCustomers: len(customers),
		TotalOrders:    len(allOrders),
		TotalLines:     len(lines),
		TopCustomer:    "N/A",
		TopProduct:     "N/A",
		OrphanLines:    orphans,
		OrphanRevenue:  round2(orphan),
	}

	for _, c := range customers {
		orders := len(c.orders)
		avg := decimal.Zero
		if orders > 0 {
			avg = c.revenue.Div(decimal.NewFromInt(int64(orders)))
		}
		pct := decimal.Zero
		if grand.IsPositive() {
			pct = c.revenue.Div(grand).Mul(hundred)
		}
		s.CustomerStats = append(s.CustomerStats, CustomerSummary{
			CustomerAccount:  c.account,
			TotalRevenue:     round2(c.revenue),
			TotalOrders:      orders,
			UniqueProducts:   len(c.products),
			UniqueCategories: len(c.categories),
			AvgOrderValue:    round2(avg),
			RevenuePct:       pct.Round(4).InexactFloat64(),
			RevenueTier:      RevenueTier(c.revenue),
		})
	}

	for _, p := range products {
		s.ProductStats = append(s.ProductStats, ProductSummary{
			ItemNumber:    p.item,
			ProductName:   p.name,
			TotalRevenue:  round2(p.revenue),
			TotalQuantity: round2(p.quantity),
			CustomerCount: len(p.customers),
		})
	}

	for _, g := range categories {
		s.CategoryStats = append(s.CategoryStats, CategorySummary{
			Category: g.name,
			Revenue:  round2(g.revenue),
			Quantity: round2(g.quantity),
			Orders:   len(g.orders),
		})
	}

	if len(s.CustomerStats) > 0 {
		s.TopCustomer = s.CustomerStats[0].CustomerAccount
	}
	if len(s.ProductStats) > 0 {
		s.TopProduct = s.ProductStats[0].ProductName
	}
	return s
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
