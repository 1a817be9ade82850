package domain

import "strings"

// MealPackage is a priced subscription tier a member can sign up for.
type MealPackage struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// NewMealPackage validates name and price.
func NewMealPackage(name string, price float64) (*MealPackage, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Invalid("meal package name is required")
	}
	if err := ValidateAmount("price", price); err != nil {
		return nil, err
	}
	return &MealPackage{Name: name, Price: price}, nil
}

// Due is the outstanding balance for a member who has paid totalPaid.
func (p *MealPackage) Due(totalPaid float64) float64 {
	return p.Price - totalPaid
}
