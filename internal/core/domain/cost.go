package domain

// CostEstimate is an advisory cost range for one operation kind. Ranges are
// intentionally coarse: exact ledger fees are only known after submission,
// and the estimate exists to force explicit intent before spending real
// value, not to price operations.
type CostEstimate struct {
	Operation         OperationKind `json:"operation"`
	EstimatedCostUSD  string        `json:"estimated_cost_usd"`
	EstimatedCostHbar string        `json:"estimated_cost_hbar"`
	Advisory          string        `json:"advisory"`
}
