package model

// Factory is the tenant root. Every other row carries its id.
type Factory struct {
	ID                 string `db:"id" json:"id"`
	Name               string `db:"name" json:"name"`
	Subdomain          string `db:"subdomain" json:"subdomain"`
	PlanTier           string `db:"plan_tier" json:"planTier"`
	SubscriptionStatus string `db:"subscription_status" json:"subscriptionStatus"`
	CreatedAt          string `db:"created_at" json:"createdAt"`
}

type Unit struct {
	ID        string `db:"id" json:"id"`
	FactoryID string `db:"factory_id" json:"factoryId"`
	Name      string `db:"name" json:"name"`
}

type Floor struct {
	ID        string `db:"id" json:"id"`
	FactoryID string `db:"factory_id" json:"factoryId"`
	UnitID    string `db:"unit_id" json:"unitId"`
	Name      string `db:"name" json:"name"`
}

type Line struct {
	ID        string `db:"id" json:"id"`
	FactoryID string `db:"factory_id" json:"factoryId"`
	FloorID   string `db:"floor_id" json:"floorId"`
	Name      string `db:"name" json:"name"`
	IsActive  bool   `db:"is_active" json:"isActive"`
}

type Stage struct {
	ID        string `db:"id" json:"id"`
	FactoryID string `db:"factory_id" json:"factoryId"`
	Name      string `db:"name" json:"name"`
	SeqNo     int    `db:"seq_no" json:"seqNo"`
}

type BlockerType struct {
	ID        string `db:"id" json:"id"`
	FactoryID string `db:"factory_id" json:"factoryId"`
	Name      string `db:"name" json:"name"`
}
