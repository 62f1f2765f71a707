package model

// DashboardFilters narrows the daily summary queries. Empty fields match all.
type DashboardFilters struct {
	StartDate string
	EndDate   string
	UnitID    string
	FloorID   string
	LineID    string
}

// LineDaySummary is one dashboard row: a line's figures for one date and
// department, targets and actuals side by side.
type LineDaySummary struct {
	WorkDate   string  `db:"work_date" json:"workDate"`
	LineID     string  `db:"line_id" json:"lineId"`
	LineName   string  `db:"line_name" json:"lineName"`
	FloorName  string  `db:"floor_name" json:"floorName"`
	UnitName   string  `db:"unit_name" json:"unitName"`
	Department string  `db:"department" json:"department"`
	TargetQty  float64 `db:"target_qty" json:"targetQty"`
	ActualQty  float64 `db:"actual_qty" json:"actualQty"`
	DefectQty  float64 `db:"defect_qty" json:"defectQty"`
	Efficiency float64 `json:"efficiency"`
}

// BlockerSummary rolls up sewing downtime by blocker type.
type BlockerSummary struct {
	BlockerTypeID string `db:"blocker_type_id" json:"blockerTypeId"`
	BlockerName   string `db:"blocker_name" json:"blockerName"`
	Occurrences   int    `db:"occurrences" json:"occurrences"`
	TotalMinutes  int    `db:"total_minutes" json:"totalMinutes"`
}

// OrderProgress tracks one work order across the three departments.
type OrderProgress struct {
	WorkOrderID   string  `db:"work_order_id" json:"workOrderId"`
	OrderNo       string  `db:"order_no" json:"orderNo"`
	Style         string  `db:"style" json:"style"`
	OrderQty      float64 `db:"order_qty" json:"orderQty"`
	CutQty        float64 `db:"cut_qty" json:"cutQty"`
	SewnQty       float64 `db:"sewn_qty" json:"sewnQty"`
	FinishedQty   float64 `db:"finished_qty" json:"finishedQty"`
	CutBalance    float64 `json:"cutBalance"`
	SewBalance    float64 `json:"sewBalance"`
	FinishBalance float64 `json:"finishBalance"`
}
