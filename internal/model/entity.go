// Package model defines the domain types shared across the application.
package model

import (
	"fmt"
	"time"
)

// User is a person purchases are recorded for.
type User struct {
	CreatedAt time.Time `json:"createdAt,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ID        int64     `json:"id"`
}

// Shop is a place a purchase happened at.
type Shop struct {
	CreatedAt time.Time `json:"createdAt,omitempty"`
	Name      string    `json:"name"`
	ID        int64     `json:"id"`
}

// Category groups products. Its name is the natural key: two products
// naming the same category (case-insensitive) share one row.
type Category struct {
	CreatedAt time.Time `json:"createdAt,omitempty"`
	Name      string    `json:"name"`
	ID        int64     `json:"id"`
}

// UnitType describes how a product's quantity is measured.
type UnitType string

// Supported unit types.
const (
	UnitTypeUnit    UnitType = "unit"
	UnitTypeKg      UnitType = "kg"
	UnitTypeG       UnitType = "g"
	UnitTypeLiter   UnitType = "liter"
	UnitTypeMl      UnitType = "ml"
	UnitTypeBill    UnitType = "bill"
	UnitTypeSession UnitType = "session"
	UnitTypeMinute  UnitType = "minute"
	UnitTypeHour    UnitType = "hour"
)

// ParseUnitType validates a unit type string. An empty string defaults
// to UnitTypeUnit.
func ParseUnitType(s string) (UnitType, error) {
	if s == "" {
		return UnitTypeUnit, nil
	}
	ut := UnitType(s)
	switch ut {
	case UnitTypeUnit, UnitTypeKg, UnitTypeG, UnitTypeLiter, UnitTypeMl,
		UnitTypeBill, UnitTypeSession, UnitTypeMinute, UnitTypeHour:
		return ut, nil
	}
	return "", fmt.Errorf("unknown unit type %q", s)
}

// IsValid reports whether the unit type is one of the supported values.
func (u UnitType) IsValid() bool {
	_, err := ParseUnitType(string(u))
	return err == nil && u != ""
}

// Product is something that can appear on a purchase line.
type Product struct {
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	Name       string    `json:"name"`
	Reference  string    `json:"reference,omitempty"`
	UnitType   UnitType  `json:"unitType"`
	CategoryID *int64    `json:"categoryId,omitempty"`
	ID         int64     `json:"id"`
}

// ProductInput carries the fields needed to create a product.
type ProductInput struct {
	Name       string   `json:"name"`
	Reference  string   `json:"reference,omitempty"`
	UnitType   UnitType `json:"unitType"`
	CategoryID *int64   `json:"categoryId,omitempty"`
}
