package models

// SaleLine is one product and quantity in a bulk sale.
type SaleLine struct {
	ProductID string
	Quantity  int64
}

// Sale is the outcome of a recorded bulk sale.
type Sale struct {
	Products []*Product
	Total    float64
}
