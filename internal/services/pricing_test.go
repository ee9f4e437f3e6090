package services

import (
	"testing"

	"github.com/RedSkyFlow/Goose/internal/models"
)

func sampleItems() []models.ProposalItem {
	return []models.ProposalItem{
		{ID: "a", Name: "UniFi Access Points", Price: 100, Quantity: 2},
		{ID: "b", Name: "Installation Labor", Price: 50, Quantity: 1},
		{ID: "c", Name: "Controller Software License", Price: 20, Quantity: 3},
		{ID: "d", Name: "Network Monitoring", Price: 75, Quantity: 1, Type: models.ItemTypeRecurring},
	}
}

func TestComputeTotalSelectedOnly(t *testing.T) {
	items := sampleItems()
	sel := NewSelection(items)
	if got := ComputeTotal(items, sel.IDs()); got != 100*2+50+20*3+75 {
		t.Fatalf("full selection total = %v", got)
	}
	sel.Toggle("b")
	if got := ComputeTotal(items, sel.IDs()); got != 100*2+20*3+75 {
		t.Fatalf("total after deselect b = %v", got)
	}
	if ComputeTotal(items, SelectedSet(nil)) != 0 {
		t.Fatalf("empty selection must total 0")
	}
}

func TestToggleTwiceRestoresTotal(t *testing.T) {
	items := sampleItems()
	sel := NewSelection(items)
	before := ComputeTotal(items, sel.IDs())
	sel.Toggle("a")
	sel.Toggle("a")
	if after := ComputeTotal(items, sel.IDs()); after != before {
		t.Fatalf("double toggle changed total: before=%v after=%v", before, after)
	}
}

func TestToggleNoOpWhenLocked(t *testing.T) {
	items := sampleItems()
	sel := NewSelection(items)
	sel.Lock()
	sel.Toggle("a")
	if !sel.Has("a") {
		t.Fatalf("toggle on locked selection must be a no-op")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		item models.ProposalItem
		want string
	}{
		{models.ProposalItem{Name: "Security Gateway"}, CategoryHardware},
		{models.ProposalItem{Name: "Controller Software License"}, CategorySoftware},
		{models.ProposalItem{Name: "ANNUAL LICENSE Renewal"}, CategorySoftware},
		{models.ProposalItem{Name: "Monitoring", Type: models.ItemTypeRecurring}, CategoryManaged},
		// recurring wins even when the name mentions software
		{models.ProposalItem{Name: "Software Support Plan", Type: models.ItemTypeRecurring}, CategoryManaged},
	}
	for _, c := range cases {
		if got := Classify(c.item); got != c.want {
			t.Fatalf("Classify(%q,%s) = %q, want %q", c.item.Name, c.item.Type, got, c.want)
		}
	}
}

func TestGroupByCategorySubtotalsAndOmission(t *testing.T) {
	items := sampleItems()
	sel := SelectedSet([]string{"a", "c", "d"})
	groups := GroupByCategory(items, sel)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups got %d", len(groups))
	}
	want := map[string]float64{
		CategoryHardware: 200, // "b" deselected
		CategorySoftware: 60,
		CategoryManaged:  75,
	}
	var grand float64
	for _, g := range groups {
		if g.Subtotal != want[g.Category] {
			t.Fatalf("%s subtotal = %v want %v", g.Category, g.Subtotal, want[g.Category])
		}
		grand += g.Subtotal
	}
	if total := ComputeTotal(items, sel); grand != total {
		t.Fatalf("group subtotals %v do not add up to total %v", grand, total)
	}

	// Empty categories are omitted entirely.
	onlyHardware := []models.ProposalItem{{ID: "x", Name: "Switch", Price: 10, Quantity: 1}}
	groups = GroupByCategory(onlyHardware, SelectedSet([]string{"x"}))
	if len(groups) != 1 || groups[0].Category != CategoryHardware {
		t.Fatalf("unexpected groups: %#v", groups)
	}
}

func TestProjectProposalUsesSignedSelectionWhenLocked(t *testing.T) {
	items := sampleItems()
	final := 200.0
	p := &models.Proposal{
		Status:             models.ProposalStatusAccepted,
		Items:              items,
		SelectedItemIDs:    []string{"a"},
		FinalAcceptedValue: &final,
	}
	view := ProjectProposal(p)
	if !view.IsLocked {
		t.Fatalf("accepted proposal must project as locked")
	}
	if view.GrandTotal != 200 {
		t.Fatalf("grand total over signed selection = %v", view.GrandTotal)
	}
	if view.Deposit != 100 {
		t.Fatalf("deposit = %v want 100", view.Deposit)
	}

	p.Status = models.ProposalStatusSent
	p.SelectedItemIDs = nil
	p.FinalAcceptedValue = nil
	view = ProjectProposal(p)
	if view.IsLocked {
		t.Fatalf("sent proposal must not be locked")
	}
	if view.GrandTotal != ComputeTotal(items, NewSelection(items).IDs()) {
		t.Fatalf("unsigned projection must include every item")
	}
}
