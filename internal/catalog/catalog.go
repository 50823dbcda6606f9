// Package catalog holds the records collected from the car catalog:
// brands, the series under them and the fuel-type vocabulary used to
// label series.
package catalog

import (
	"fmt"
	"strings"
)

type Brand struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Status is the sale status of a series, the numeric values are the
// `sellingId` values used by the listing endpoint.
type Status int

const (
	StatusDiscontinued Status = 1
	StatusOnSale       Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOnSale:
		return "on-sale"
	case StatusDiscontinued:
		return "discontinued"
	}
	return "unknown"
}

// Label is the status as the site displays it.
func (s Status) Label() string {
	switch s {
	case StatusOnSale:
		return "在售"
	case StatusDiscontinued:
		return "停售"
	}
	return "未知"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "on-sale":
		*s = StatusOnSale
	case "discontinued":
		*s = StatusDiscontinued
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

type Series struct {
	BrandID     int      `json:"brand_id"`
	BrandName   string   `json:"brand_name"`
	FactoryName string   `json:"factory_name"`
	SeriesID    int64    `json:"series_id"`
	SeriesName  string   `json:"series_name"`
	PriceRange  string   `json:"price_range"`
	Level       string   `json:"level"`
	Status      Status   `json:"status"`
	FuelTypes   []string `json:"fuel_types"`
}

// FuelTypeList renders FuelTypes as a single delimited cell.
func (s Series) FuelTypeList() string {
	return strings.Join(s.FuelTypes, ", ")
}

// FuelUnknown is the only label reported when no fuel type could be resolved.
const FuelUnknown = "unknown"

// FuelTypes is the ordered list of fuel-type labels searched for in the
// series configuration payload. Resolution reports matches in this order.
var FuelTypes = []string{
	"纯电动",
	"插电式混合动力",
	"增程式",
	"汽油",
	"柴油",
	"油电混合",
	"天然气",
	"汽油电驱",
	"甲醇",
	"氢燃料",
	"48V轻混系统汽油",
	"24V轻混系统",
}

// EnergyTypes maps the listing endpoint's `energyId` filter values to the
// label the site shows for them.
var EnergyTypes = map[int]string{
	1: "汽油",
	2: "增程式",
	3: "插电混动",
	4: "纯电动",
	5: "柴油",
	6: "油电混合",
	7: "氢燃料",
}
