package sales

import "github.com/shopspring/decimal"

// PriceTierQty splits a location's quantity around the overall mean price.
type PriceTierQty struct {
	StoreLocation string `json:"store_location"`
	LowerQty      int64  `json:"lower"`
	HigherQty     int64  `json:"higher"`
}

// PriceTierSales is the result of PriceTierSalesByLocation.
type PriceTierSales struct {
	MeanPrice decimal.Decimal `json:"mean_price"`
	Locations []PriceTierQty  `json:"locations"`
}

// PriceTierSalesByLocation classifies each line as "lower" (unit price below
// the unweighted mean over all lines) or "higher" and sums quantity per
// location and tier. A price equal to the mean is "higher". Locations keep
// their order of first appearance.
func PriceTierSalesByLocation(t *Table) (PriceTierSales, error) {
	const op = "PriceTierSalesByLocation"
	if err := t.require(op, ColUnitPrice, ColTransactionQty, ColStoreLocation); err != nil {
		return PriceTierSales{}, err
	}

	out := PriceTierSales{Locations: []PriceTierQty{}}
	if t.Len() == 0 {
		return out, nil
	}

	sum := decimal.Zero
	t.Each(func(_ int, tx Transaction) {
		sum = sum.Add(decimal.NewFromFloat(tx.UnitPrice))
	})
	out.MeanPrice = sum.Div(decimal.NewFromInt(int64(t.Len())))

	locations := newFirstSeen[string]()
	tiers := make(map[string]*PriceTierQty)
	t.Each(func(_ int, tx Transaction) {
		locations.add(tx.StoreLocation)
		q, ok := tiers[tx.StoreLocation]
		if !ok {
			q = &PriceTierQty{StoreLocation: tx.StoreLocation}
			tiers[tx.StoreLocation] = q
		}
		if decimal.NewFromFloat(tx.UnitPrice).LessThan(out.MeanPrice) {
			q.LowerQty += tx.Qty
		} else {
			q.HigherQty += tx.Qty
		}
	})
	for _, loc := range locations.order {
		out.Locations = append(out.Locations, *tiers[loc])
	}
	return out, nil
}

// CategoryMean is a category's mean line quantity.
type CategoryMean struct {
	ProductCategory string  `json:"product_category"`
	MeanQty         float64 `json:"mean_qty"`
}

// CategoryExtremes holds a location's best and worst category.
type CategoryExtremes struct {
	StoreLocation string       `json:"store_location"`
	Highest       CategoryMean `json:"highest"`
	Lowest        CategoryMean `json:"lowest"`
}

// CategoryExtremesResult is the result of MinMaxCategoryByLocation.
type CategoryExtremesResult struct {
	Window    Window             `json:"window"`
	Locations []CategoryExtremes `json:"locations"`
}

// MinMaxCategoryByLocation finds, per location, the categories with the
// highest and lowest mean line quantity over the trailing p.TrailingMonths
// window. On ties the category first in name order wins.
func MinMaxCategoryByLocation(t *Table, p Params) (CategoryExtremesResult, error) {
	const op = "MinMaxCategoryByLocation"
	if err := t.require(op, ColTransactionDate, ColStoreLocation, ColProductCategory, ColTransactionQty); err != nil {
		return CategoryExtremesResult{}, err
	}

	out := CategoryExtremesResult{Locations: []CategoryExtremes{}}
	w, ok := TrailingWindow(t, p.TrailingMonths)
	if !ok {
		return out, nil
	}
	out.Window = w

	type acc struct {
		n   int
		sum int64
	}
	groups := make(map[pair[string, string]]*acc)
	t.Each(func(_ int, tx Transaction) {
		if !w.Contains(tx.Date) {
			return
		}
		k := pair[string, string]{tx.StoreLocation, tx.ProductCategory}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.n++
		a.sum += tx.Qty
	})

	for _, k := range sortedPairs(groups) {
		a := groups[k]
		m := CategoryMean{ProductCategory: k.B, MeanQty: float64(a.sum) / float64(a.n)}
		n := len(out.Locations)
		if n == 0 || out.Locations[n-1].StoreLocation != k.A {
			out.Locations = append(out.Locations, CategoryExtremes{StoreLocation: k.A, Highest: m, Lowest: m})
			continue
		}
		cur := &out.Locations[n-1]
		if m.MeanQty > cur.Highest.MeanQty {
			cur.Highest = m
		}
		if m.MeanQty < cur.Lowest.MeanQty {
			cur.Lowest = m
		}
	}
	return out, nil
}

// CategorySales is the result of CategorySalesByLocation.
type CategorySales struct {
	Window Window                         `json:"window"`
	Matrix Matrix[string, string, int64] `json:"matrix"`
}

// CategorySalesByLocation sums quantity per location and category over the
// trailing p.TrailingMonths window.
func CategorySalesByLocation(t *Table, p Params) (CategorySales, error) {
	const op = "CategorySalesByLocation"
	if err := t.require(op, ColStoreLocation, ColProductCategory, ColTransactionQty, ColTransactionDate); err != nil {
		return CategorySales{}, err
	}

	w, ok := TrailingWindow(t, p.TrailingMonths)
	sums := make(map[pair[string, string]]int64)
	if ok {
		t.Each(func(_ int, tx Transaction) {
			if w.Contains(tx.Date) {
				sums[pair[string, string]{tx.StoreLocation, tx.ProductCategory}] += tx.Qty
			}
		})
	}
	return CategorySales{Window: w, Matrix: buildMatrix(sums)}, nil
}
