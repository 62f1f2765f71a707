package model

import "github.com/shopspring/decimal"

const (
	OrderStatusOpen   = "open"
	OrderStatusClosed = "closed"
)

type WorkOrder struct {
	ID           string          `db:"id" json:"id"`
	FactoryID    string          `db:"factory_id" json:"factoryId"`
	OrderNo      string          `db:"order_no" json:"orderNo"`
	Style        string          `db:"style" json:"style"`
	Buyer        string          `db:"buyer" json:"buyer"`
	Color        string          `db:"color" json:"color"`
	SizeRange    string          `db:"size_range" json:"sizeRange"`
	OrderQty     float64         `db:"order_qty" json:"orderQty"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unitPrice"`
	Status       string          `db:"status" json:"status"`
	DeliveryDate string          `db:"delivery_date" json:"deliveryDate"`
}

// WorkOrderFilters narrows the work order list endpoint.
type WorkOrderFilters struct {
	Status string
	Buyer  string
	Style  string
}
