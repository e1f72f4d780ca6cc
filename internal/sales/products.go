package sales

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// TopProduct is the best-selling (product, unit price) group at a location.
type TopProduct struct {
	StoreLocation string  `json:"store_location"`
	ProductDetail string  `json:"product_detail"`
	UnitPrice     float64 `json:"unit_price"`
	Qty           int64   `json:"transaction_qty"`
}

type productPriceKey struct {
	location string
	product  string
	price    float64
}

func compareProductPrice(a, b productPriceKey) int {
	if c := cmp.Compare(a.location, b.location); c != 0 {
		return c
	}
	if c := cmp.Compare(a.product, b.product); c != 0 {
		return c
	}
	return cmp.Compare(a.price, b.price)
}

// TopProductByLocation picks, per store location, the product with the
// largest summed quantity. Products sold at several prices are separate
// groups. The result is ordered by quantity, descending.
func TopProductByLocation(t *Table) ([]TopProduct, error) {
	const op = "TopProductByLocation"
	if err := t.require(op, ColStoreLocation, ColProductDetail, ColUnitPrice, ColTransactionQty); err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return nil, &EmptyInputError{Operation: op}
	}

	sums := make(map[productPriceKey]int64)
	t.Each(func(_ int, tx Transaction) {
		sums[productPriceKey{tx.StoreLocation, tx.ProductDetail, tx.UnitPrice}] += tx.Qty
	})
	keys := make([]productPriceKey, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareProductPrice)

	var out []TopProduct
	for _, k := range keys {
		qty := sums[k]
		n := len(out)
		if n > 0 && out[n-1].StoreLocation == k.location {
			if qty > out[n-1].Qty {
				out[n-1] = TopProduct{k.location, k.product, k.price, qty}
			}
			continue
		}
		out = append(out, TopProduct{k.location, k.product, k.price, qty})
	}

	slices.SortStableFunc(out, func(a, b TopProduct) int {
		return cmp.Compare(b.Qty, a.Qty)
	})
	return out, nil
}

// ProductQty is a product's summed quantity.
type ProductQty struct {
	ProductDetail string `json:"product_detail"`
	Qty           int64  `json:"transaction_qty"`
}

// CategoryProducts ranks the products of one category.
type CategoryProducts struct {
	ProductCategory string       `json:"product_category"`
	Products        []ProductQty `json:"products"`
}

// ProductSalesWithinCategory returns, for every category in order of first
// appearance, its products ranked by total quantity ascending.
func ProductSalesWithinCategory(t *Table) ([]CategoryProducts, error) {
	const op = "ProductSalesWithinCategory"
	if err := t.require(op, ColProductCategory, ColProductDetail, ColTransactionQty); err != nil {
		return nil, err
	}

	categories := newFirstSeen[string]()
	sums := make(map[pair[string, string]]int64)
	t.Each(func(_ int, tx Transaction) {
		categories.add(tx.ProductCategory)
		sums[pair[string, string]{tx.ProductCategory, tx.ProductDetail}] += tx.Qty
	})

	byCategory := make(map[string][]ProductQty, len(categories.order))
	for _, k := range sortedPairs(sums) {
		byCategory[k.A] = append(byCategory[k.A], ProductQty{ProductDetail: k.B, Qty: sums[k]})
	}

	out := make([]CategoryProducts, 0, len(categories.order))
	for _, c := range categories.order {
		products := byCategory[c]
		slices.SortStableFunc(products, func(a, b ProductQty) int {
			return cmp.Compare(a.Qty, b.Qty)
		})
		out = append(out, CategoryProducts{ProductCategory: c, Products: products})
	}
	return out, nil
}

// HourQty is a quantity sold during one hour at one location.
type HourQty struct {
	StoreLocation string `json:"store_location"`
	Hour          int    `json:"hour"`
	Qty           int64  `json:"transaction_qty"`
}

// HourLocationQty describes the sale lines of one (hour, location) cell.
type HourLocationQty struct {
	Hour          int     `json:"hour"`
	StoreLocation string  `json:"store_location"`
	Lines         int     `json:"lines"`
	TotalQty      int64   `json:"total_qty"`
	MeanQty       float64 `json:"mean_qty"`
}

// LocationQty is a location's summed quantity.
type LocationQty struct {
	StoreLocation string `json:"store_location"`
	Qty           int64  `json:"transaction_qty"`
}

// LowestSellerProfile describes when and where the weakest product sells.
type LowestSellerProfile struct {
	ProductDetail string            `json:"product_detail"`
	TotalQty      int64             `json:"total_qty"`
	PeakHours     []HourQty         `json:"peak_hours"`
	Distribution  []HourLocationQty `json:"distribution"`
	ByLocation    []LocationQty     `json:"by_location"`
	QtyCap        int               `json:"qty_cap"`
}

// LowestSellingProductProfile finds the product with the smallest total
// quantity (ties go to the first name alphabetically) and profiles its sales
// by location and hour. QtyCap carries p.HourlyQtyCap through for charting.
func LowestSellingProductProfile(t *Table, p Params) (LowestSellerProfile, error) {
	const op = "LowestSellingProductProfile"
	if err := t.require(op, ColProductDetail, ColTransactionQty, ColStoreLocation); err != nil {
		return LowestSellerProfile{}, err
	}
	if err := t.requireHour(op); err != nil {
		return LowestSellerProfile{}, err
	}
	if t.Len() == 0 {
		return LowestSellerProfile{}, &EmptyInputError{Operation: op}
	}

	totals := make(map[string]int64)
	t.Each(func(_ int, tx Transaction) {
		totals[tx.ProductDetail] += tx.Qty
	})
	products := sortedKeys(totals)
	slices.SortStableFunc(products, func(a, b string) int {
		return cmp.Compare(totals[a], totals[b])
	})
	lowest := products[0]

	hourOf := hourResolver(t)
	type cell struct {
		lines int
		qty   int64
	}
	cells := make(map[pair[int, string]]*cell)
	byLocation := make(map[string]int64)
	t.Each(func(_ int, tx Transaction) {
		if tx.ProductDetail != lowest {
			return
		}
		k := pair[int, string]{hourOf(tx), tx.StoreLocation}
		c, ok := cells[k]
		if !ok {
			c = &cell{}
			cells[k] = c
		}
		c.lines++
		c.qty += tx.Qty
		byLocation[tx.StoreLocation] += tx.Qty
	})

	profile := LowestSellerProfile{
		ProductDetail: lowest,
		TotalQty:      totals[lowest],
		QtyCap:        p.HourlyQtyCap,
	}

	for _, k := range sortedPairs(cells) {
		c := cells[k]
		profile.Distribution = append(profile.Distribution, HourLocationQty{
			Hour:          k.A,
			StoreLocation: k.B,
			Lines:         c.lines,
			TotalQty:      c.qty,
			MeanQty:       float64(c.qty) / float64(c.lines),
		})
	}

	// Peak hour per location: scan (location, hour) in natural order and keep
	// the first maximum.
	byLocHour := make(map[pair[string, int]]int64, len(cells))
	for k, c := range cells {
		byLocHour[pair[string, int]{k.B, k.A}] = c.qty
	}
	for _, k := range sortedPairs(byLocHour) {
		qty := byLocHour[k]
		n := len(profile.PeakHours)
		if n > 0 && profile.PeakHours[n-1].StoreLocation == k.A {
			if qty > profile.PeakHours[n-1].Qty {
				profile.PeakHours[n-1] = HourQty{k.A, k.B, qty}
			}
			continue
		}
		profile.PeakHours = append(profile.PeakHours, HourQty{k.A, k.B, qty})
	}

	for _, loc := range sortedKeys(byLocation) {
		profile.ByLocation = append(profile.ByLocation, LocationQty{StoreLocation: loc, Qty: byLocation[loc]})
	}
	return profile, nil
}

// ProductRevenue is one location's revenue from a single product.
type ProductRevenue struct {
	StoreLocation string          `json:"store_location"`
	Qty           int64           `json:"transaction_qty"`
	UnitPrice     float64         `json:"unit_price"` // first price seen at the location
	Revenue       decimal.Decimal `json:"total_revenue"`
}

// NamedProductRevenue is the per-location revenue of one product.
type NamedProductRevenue struct {
	ProductDetail string           `json:"product_detail"`
	Locations     []ProductRevenue `json:"locations"`
}

// RevenueForNamedProduct sums revenue of p.FocusProduct per location, highest
// first. Locations that never sold the product are absent.
func RevenueForNamedProduct(t *Table, p Params) (NamedProductRevenue, error) {
	const op = "RevenueForNamedProduct"
	if err := t.require(op, ColProductDetail, ColStoreLocation, ColTransactionQty, ColUnitPrice); err != nil {
		return NamedProductRevenue{}, err
	}

	acc := make(map[string]*ProductRevenue)
	t.Each(func(_ int, tx Transaction) {
		if tx.ProductDetail != p.FocusProduct {
			return
		}
		r, ok := acc[tx.StoreLocation]
		if !ok {
			r = &ProductRevenue{StoreLocation: tx.StoreLocation, UnitPrice: tx.UnitPrice}
			acc[tx.StoreLocation] = r
		}
		r.Qty += tx.Qty
		r.Revenue = r.Revenue.Add(Revenue(tx))
	})

	out := NamedProductRevenue{ProductDetail: p.FocusProduct, Locations: []ProductRevenue{}}
	for _, loc := range sortedKeys(acc) {
		out.Locations = append(out.Locations, *acc[loc])
	}
	slices.SortStableFunc(out.Locations, func(a, b ProductRevenue) int {
		return b.Revenue.Cmp(a.Revenue)
	})
	return out, nil
}
