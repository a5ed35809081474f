package model

// Movement is one entry in the tool movement ledger. Entries are
// append-only; ToolName, Location and Status are snapshots taken at the
// moment of the event and survive later edits or deletion of the tool.
type Movement struct {
	ToolID         int64  `json:"tool_id"`
	ToolName       string `json:"tool_name"`
	Action         string `json:"action"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Responsible    string `json:"responsible"`
	Detail         string `json:"detail"`
	Location       string `json:"location,omitempty"`
	Status         string `json:"status,omitempty"`
	ExpectedReturn string `json:"expected_return,omitempty"`
}

// Ledger actions.
const (
	ActionLoan   = "Préstamo"
	ActionReturn = "Devolución"
)

// Display formats for denormalized ledger date/time snapshots.
const (
	DateFormat     = "02/01/2006"
	TimeFormat     = "15:04"
	DateTimeFormat = "02/01/2006 15:04:05"
)
