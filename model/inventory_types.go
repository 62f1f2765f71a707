package model

// Bin card transaction flags.
const (
	BinTxnReceive = 1
	BinTxnIssue   = 2
)

type BinCard struct {
	ID           string `db:"id" json:"id"`
	FactoryID    string `db:"factory_id" json:"factoryId"`
	CardNo       string `db:"card_no" json:"cardNo"`
	WorkOrderID  string `db:"work_order_id" json:"workOrderId"`
	MaterialName string `db:"material_name" json:"materialName"`
	UnitName     string `db:"unit_name" json:"unitName"`
}

type BinCardTransaction struct {
	ID         string  `db:"id" json:"id"`
	BinCardID  string  `db:"bin_card_id" json:"binCardId"`
	TxnDate    string  `db:"txn_date" json:"txnDate"`
	Flag       int     `db:"flag" json:"flag"`
	Quantity   float64 `db:"quantity" json:"quantity"`
	ChallanNo  string  `db:"challan_no" json:"challanNo"`
	Remarks    string  `db:"remarks" json:"remarks"`
	CreatedAt  string  `db:"created_at" json:"createdAt"`
	RecordedBy string  `db:"recorded_by" json:"recordedBy"`
}

// LedgerRow is a bin card transaction with the balance after it was applied.
type LedgerRow struct {
	BinCardTransaction
	Received float64 `json:"received"`
	Issued   float64 `json:"issued"`
	Balance  float64 `json:"balance"`
}
