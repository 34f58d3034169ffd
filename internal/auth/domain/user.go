package domain

import "time"

// Role is the field-operations role of a user.
type Role string

const (
	RoleMerchandiser Role = "merchandiser"
	RoleManager      Role = "manager"
	RoleAdmin        Role = "admin"
)

// CanManage reports whether the role may assign tasks and run supervisors.
func (r Role) CanManage() bool {
	return r == RoleManager || r == RoleAdmin
}

type User struct {
	ID        string    `json:"id" gorm:"primaryKey" firestore:"-"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null" firestore:"email"`
	Password  string    `json:"-" firestore:"passwordHash"` // Never return password in JSON
	Name      string    `json:"name" firestore:"name"`
	Role      Role      `json:"role" gorm:"default:merchandiser" firestore:"role"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
