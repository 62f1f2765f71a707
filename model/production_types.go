package model

// Department selects which pair of target/actual tables a submission
// lands in. The three departments share one row shape; cutting ignores
// StageID, sewing requires it.
type Department string

const (
	DeptCutting   Department = "cutting"
	DeptSewing    Department = "sewing"
	DeptFinishing Department = "finishing"
)

func (d Department) Valid() bool {
	switch d {
	case DeptCutting, DeptSewing, DeptFinishing:
		return true
	}
	return false
}

type ProductionTarget struct {
	ID          string  `db:"id" json:"id"`
	FactoryID   string  `db:"factory_id" json:"factoryId"`
	LineID      string  `db:"line_id" json:"lineId"`
	WorkOrderID string  `db:"work_order_id" json:"workOrderId"`
	WorkDate    string  `db:"work_date" json:"workDate"`
	StageID     string  `db:"stage_id" json:"stageId,omitempty"`
	TargetQty   float64 `db:"target_qty" json:"targetQty"`
	Manpower    int     `db:"manpower" json:"manpower"`
	WorkHours   float64 `db:"work_hours" json:"workHours"`
	SubmittedBy string  `db:"submitted_by" json:"submittedBy"`
}

type ProductionActual struct {
	ID             string  `db:"id" json:"id"`
	FactoryID      string  `db:"factory_id" json:"factoryId"`
	LineID         string  `db:"line_id" json:"lineId"`
	WorkOrderID    string  `db:"work_order_id" json:"workOrderId"`
	WorkDate       string  `db:"work_date" json:"workDate"`
	StageID        string  `db:"stage_id" json:"stageId,omitempty"`
	Quantity       float64 `db:"quantity" json:"quantity"`
	Layers         int     `db:"layers" json:"layers,omitempty"`
	DefectQty      float64 `db:"defect_qty" json:"defectQty,omitempty"`
	BlockerTypeID  string  `db:"blocker_type_id" json:"blockerTypeId,omitempty"`
	BlockerMinutes int     `db:"blocker_minutes" json:"blockerMinutes,omitempty"`
	PackedQty      float64 `db:"packed_qty" json:"packedQty,omitempty"`
	RejectQty      float64 `db:"reject_qty" json:"rejectQty,omitempty"`
	Remarks        string  `db:"remarks" json:"remarks"`
	SubmittedBy    string  `db:"submitted_by" json:"submittedBy"`
}

// RunningTotal accompanies every saved actual: today's quantity plus the
// historical sum for the same order/department, and the balance still to
// produce against the order quantity.
type RunningTotal struct {
	Today      float64 `json:"today"`
	Cumulative float64 `json:"cumulative"`
	OrderQty   float64 `json:"orderQty"`
	Balance    float64 `json:"balance"`
}
