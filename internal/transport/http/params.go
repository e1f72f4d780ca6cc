package http

import (
	"net/http"

	"salestracker/internal/middleware"
	"salestracker/internal/sales"
)

// viewQuery holds the query parameters that override the default Params.
type viewQuery struct {
	Location string `json:"location" validate:"required,max=100"`
	Product  string `json:"product" validate:"required,max=100"`
	Months   int    `json:"months" validate:"min=1,max=36"`
	QtyCap   int    `json:"qty_cap" validate:"min=1,max=1000"`
}

// parseParams reads location, product, months and qty_cap on top of defaults.
func parseParams(r *http.Request, v *middleware.Validator, defaults sales.Params) (sales.Params, error) {
	q := viewQuery{
		Location: middleware.QueryString(r, "location", defaults.FocusLocation),
		Product:  middleware.QueryString(r, "product", defaults.FocusProduct),
	}

	var err error
	if q.Months, err = middleware.QueryInt(r, "months", defaults.TrailingMonths); err != nil {
		return sales.Params{}, err
	}
	if q.QtyCap, err = middleware.QueryInt(r, "qty_cap", defaults.HourlyQtyCap); err != nil {
		return sales.Params{}, err
	}
	if err := v.ValidateStruct(q); err != nil {
		return sales.Params{}, err
	}

	return sales.Params{
		FocusLocation:  q.Location,
		FocusProduct:   q.Product,
		TrailingMonths: q.Months,
		HourlyQtyCap:   q.QtyCap,
	}, nil
}
