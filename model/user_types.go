package model

// Role names stored in user_roles.role.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

type Profile struct {
	ID           string `db:"id" json:"id"`
	FactoryID    string `db:"factory_id" json:"factoryId"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	FullName     string `db:"full_name" json:"fullName"`
	Language     string `db:"language" json:"language"`
	IsActive     bool   `db:"is_active" json:"isActive"`
	CreatedAt    string `db:"created_at" json:"createdAt"`
}

// UserView is a profile joined with its roles and line assignments,
// as returned by the user management endpoints.
type UserView struct {
	Profile
	Roles   []string `json:"roles"`
	LineIDs []string `json:"lineIds"`
}
