package services

import (
	"strings"

	"github.com/RedSkyFlow/Goose/internal/models"
)

// Display categories for proposal line items, in presentation order.
const (
	CategoryHardware = "Hardware & Implementation"
	CategorySoftware = "Software & Licensing"
	CategoryManaged  = "Managed Services"
)

// ComputeTotal sums price × quantity over the selected items. Pure; re-run
// on every selection change — no cached total is trusted once the
// selection moves.
func ComputeTotal(items []models.ProposalItem, selected map[string]bool) float64 {
	var total float64
	for _, it := range items {
		if selected[it.ID] {
			total += it.Price * float64(it.Quantity)
		}
	}
	return total
}

// ItemGroup is one non-empty display category with its subtotal restricted
// to the current selection.
type ItemGroup struct {
	Category string                `json:"category"`
	Items    []models.ProposalItem `json:"items"`
	Subtotal float64               `json:"subtotal"`
}

// Classify maps one item to its display category: recurring charges are
// Managed Services; items named after licenses or software are Software &
// Licensing; everything else is Hardware & Implementation.
func Classify(item models.ProposalItem) string {
	if item.Type == models.ItemTypeRecurring {
		return CategoryManaged
	}
	name := strings.ToLower(item.Name)
	if strings.Contains(name, "license") || strings.Contains(name, "software") {
		return CategorySoftware
	}
	return CategoryHardware
}

// GroupByCategory partitions items into display categories, omitting empty
// ones, with per-group subtotals over the selection. Deterministic: group
// order is fixed, item order within a group follows the input.
func GroupByCategory(items []models.ProposalItem, selected map[string]bool) []ItemGroup {
	byCat := map[string][]models.ProposalItem{}
	for _, it := range items {
		cat := Classify(it)
		byCat[cat] = append(byCat[cat], it)
	}
	groups := make([]ItemGroup, 0, 3)
	for _, cat := range []string{CategoryHardware, CategorySoftware, CategoryManaged} {
		catItems := byCat[cat]
		if len(catItems) == 0 {
			continue
		}
		groups = append(groups, ItemGroup{
			Category: cat,
			Items:    catItems,
			Subtotal: ComputeTotal(catItems, selected),
		})
	}
	return groups
}

// Selection is the recipient's client-local set of included item ids. It
// never touches storage until Accept commits it.
type Selection struct {
	included map[string]bool
	locked   bool
}

// NewSelection starts with every item included, the state a proposal opens in.
func NewSelection(items []models.ProposalItem) *Selection {
	s := &Selection{included: make(map[string]bool, len(items))}
	for _, it := range items {
		s.included[it.ID] = true
	}
	return s
}

// Toggle flips membership of id. Silently a no-op once locked; toggling
// twice restores the prior state.
func (s *Selection) Toggle(id string) {
	if s.locked {
		return
	}
	if s.included[id] {
		delete(s.included, id)
	} else {
		s.included[id] = true
	}
}

// Lock freezes the selection. Called when the proposal reaches a state
// where the agreed scope must not drift.
func (s *Selection) Lock() { s.locked = true }

func (s *Selection) Locked() bool { return s.locked }

func (s *Selection) Has(id string) bool { return s.included[id] }

// IDs returns the included ids as a set usable by ComputeTotal.
func (s *Selection) IDs() map[string]bool {
	out := make(map[string]bool, len(s.included))
	for id := range s.included {
		out[id] = true
	}
	return out
}

// SelectedSet builds a membership set from a list of item ids.
func SelectedSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
