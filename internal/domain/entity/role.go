package entity

// Role represents a user role in the system
type Role struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Relationships
	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants
const (
	RoleIDAdmin     = 1
	RoleIDReviewer  = 2
	RoleIDPhysician = 3
)

// RoleNames constants
const (
	RoleAdmin     = "admin"
	RoleReviewer  = "reviewer"
	RolePhysician = "physician"
)

// DefaultRoles is the seed set written by migrations.
var DefaultRoles = []Role{
	{ID: RoleIDAdmin, RoleName: RoleAdmin, Description: "Platform administrator"},
	{ID: RoleIDReviewer, RoleName: RoleReviewer, Description: "Onboarding reviewer"},
	{ID: RoleIDPhysician, RoleName: RolePhysician, Description: "Physician applicant"},
}

// RoleNameByID resolves a role id to its name.
func RoleNameByID(id int) string {
	switch id {
	case RoleIDAdmin:
		return RoleAdmin
	case RoleIDReviewer:
		return RoleReviewer
	case RoleIDPhysician:
		return RolePhysician
	default:
		return ""
	}
}
