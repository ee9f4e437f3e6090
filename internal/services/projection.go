package services

import "github.com/RedSkyFlow/Goose/internal/models"

// ProposalView is the recipient-facing read projection of a proposal:
// grouped items with subtotals, the grand total over the effective
// selection, and the deposit due. Pure function of the stored proposal;
// no side effects, safe to compute repeatedly and concurrently.
type ProposalView struct {
	Proposal   *models.Proposal `json:"proposal"`
	Groups     []ItemGroup      `json:"groups"`
	GrandTotal float64          `json:"grand_total"`
	Deposit    float64          `json:"deposit"`
	IsLocked   bool             `json:"is_locked"`
}

// ProjectProposal assembles the view. Before acceptance every item counts
// toward the total (the selection a proposal opens with); after acceptance
// the persisted signed selection is authoritative.
func ProjectProposal(p *models.Proposal) ProposalView {
	var selected map[string]bool
	if p.Status.Locked() && p.SelectedItemIDs != nil {
		selected = SelectedSet(p.SelectedItemIDs)
	} else {
		selected = make(map[string]bool, len(p.Items))
		for _, it := range p.Items {
			selected[it.ID] = true
		}
	}
	return ProposalView{
		Proposal:   p,
		Groups:     GroupByCategory(p.Items, selected),
		GrandTotal: ComputeTotal(p.Items, selected),
		Deposit:    DepositAmount(p),
		IsLocked:   p.Status.Locked(),
	}
}
