// Package menu loads the restaurant menu into typed structures with an
// explicit built-in default, replacing the loosely-shaped JSON lookups the
// till used to do.
package menu

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/shopspring/decimal"

	"caisse-system/internal/common/logger"
	"caisse-system/internal/domain"
)

// The menu file groups items under display sections, each carrying one VAT
// rate and one routing category:
//
//	{"Entrées": {"tva_rate": 10, "category": "alimentation", "items": {"Salade César": 8.5}}}
type section struct {
	TVARate  float64            `json:"tva_rate"`
	Category string             `json:"category"`
	Items    map[string]float64 `json:"items"`
}

type Item struct {
	Name     string
	Price    decimal.Decimal
	VATRate  decimal.Decimal
	Category string
}

type Section struct {
	Name  string
	Items []Item
}

type Menu struct {
	Sections []Section
}

// Default is the fallback menu used when the file is missing or corrupt.
func Default() *Menu {
	return &Menu{Sections: []Section{{
		Name: "Entrées",
		Items: []Item{
			{Name: "Charcuterie", Price: decimal.NewFromFloat(18.0), VATRate: decimal.NewFromInt(10), Category: "alimentation"},
			{Name: "Salade César", Price: decimal.NewFromFloat(8.5), VATRate: decimal.NewFromInt(10), Category: "alimentation"},
		},
	}}}
}

// Load reads the menu file. A missing or unparseable file falls back to the
// default menu; the fallback is logged, never fatal.
func Load(path string, lg *logger.Logger) *Menu {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			lg.Warn("menu_unreadable", map[string]any{"path": path, "error": err.Error()})
		} else {
			lg.Warn("menu_missing", map[string]any{"path": path})
		}
		return Default()
	}
	var raw map[string]section
	if err := json.Unmarshal(data, &raw); err != nil {
		corrupt := &domain.CorruptStateError{Path: path, Err: err}
		lg.Warn("menu_corrupt", map[string]any{"error": corrupt.Error()})
		return Default()
	}

	m := &Menu{}
	for name, sec := range raw {
		s := Section{Name: name}
		for itemName, price := range sec.Items {
			s.Items = append(s.Items, Item{
				Name:     itemName,
				Price:    decimal.NewFromFloat(price),
				VATRate:  decimal.NewFromFloat(sec.TVARate),
				Category: sec.Category,
			})
		}
		sort.Slice(s.Items, func(i, j int) bool { return s.Items[i].Name < s.Items[j].Name })
		m.Sections = append(m.Sections, s)
	}
	sort.Slice(m.Sections, func(i, j int) bool { return m.Sections[i].Name < m.Sections[j].Name })
	return m
}

// Find looks an item up by name across all sections.
func (m *Menu) Find(name string) (Item, bool) {
	for _, s := range m.Sections {
		for _, it := range s.Items {
			if it.Name == name {
				return it, true
			}
		}
	}
	return Item{}, false
}

// Line builds an order line from a menu item.
func (it Item) Line() (domain.LineItem, error) {
	return domain.NewLineItem(it.Name, it.Price, it.VATRate, it.Category)
}
