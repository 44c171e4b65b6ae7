package models

// UserRole is carried in the staff session token.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleWaiter  UserRole = "WAITER"
	RoleKitchen UserRole = "KITCHEN"
	RoleCashier UserRole = "CASHIER"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleWaiter, RoleKitchen, RoleCashier:
		return true
	}
	return false
}

// Staff identifies the signed-in user behind a print request.
type Staff struct {
	Uid       string   `json:"uid"`
	Email     string   `json:"email" validate:"email,required"`
	Name      string   `json:"name" validate:"required,min=2,max=100"`
	User_role UserRole `json:"user_role" validate:"required,eq=ADMIN|eq=WAITER|eq=KITCHEN|eq=CASHIER"`
}
