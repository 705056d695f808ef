package domain

import (
	"time"

	"github.com/replanhq/replan/internal/planning"
)

// ProposalRequest asks for planned orders for one item at one location.
// AsOf is the reference date for lateness; when zero the server's current
// date applies. SupplierID is only meaningful for purchase proposals.
type ProposalRequest struct {
	ItemID     int64     `json:"item_id" binding:"required"`
	Location   string    `json:"location"`
	SupplierID int64     `json:"supplier_id"`
	AsOf       time.Time `json:"as_of"`
	Horizon    int       `json:"horizon"`
}

// ProductionProposalResponse wraps the production adapter's output
type ProductionProposalResponse struct {
	ItemID    int64                              `json:"item_id"`
	Location  string                             `json:"location"`
	AsOf      time.Time                          `json:"as_of"`
	Proposals []planning.ProductionOrderProposal `json:"proposals"`
}

// PurchaseProposalResponse wraps the purchasing adapter's output
type PurchaseProposalResponse struct {
	ItemID    int64                            `json:"item_id"`
	Location  string                           `json:"location"`
	AsOf      time.Time                        `json:"as_of"`
	Proposals []planning.PurchaseOrderProposal `json:"proposals"`
}
