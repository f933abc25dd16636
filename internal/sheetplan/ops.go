package sheetplan

// OpKind discriminates MutationOp variants.
type OpKind string

const (
	OpInsertRows       OpKind = "insertRows"
	OpWriteCell        OpKind = "writeCell"
	OpDeleteRows       OpKind = "deleteRows"
	OpSetTabVisibility OpKind = "setTabVisibility"
	OpDeleteTab        OpKind = "deleteTab"
)

// MutationOp is one structural spreadsheet mutation. Rows are 1-based. The
// planner emits ops in an order that keeps a sequential application of the
// plan consistent: each op's row numbers already account for the row-count
// changes of every op emitted before it.
type MutationOp struct {
	Kind OpKind `json:"kind"`
	Tab  string `json:"tab,omitempty"`

	// insertRows: Count rows are inserted immediately before BeforeRow.
	BeforeRow int `json:"beforeRow,omitempty"`
	Count     int `json:"count,omitempty"`

	// writeCell
	Row   int    `json:"row,omitempty"`
	Col   string `json:"col,omitempty"`
	Value string `json:"value,omitempty"`

	// deleteRows: row indices in descending order so each deletion leaves
	// the remaining indices valid.
	Rows []int `json:"rows,omitempty"`

	// setTabVisibility
	Hidden bool `json:"hidden,omitempty"`
}
