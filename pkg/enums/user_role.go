package enums

type UserRole string

const (
	UserRoleClient  UserRole = "client"
	UserRolePartner UserRole = "partner"
	UserRoleAdmin   UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleClient,
	UserRolePartner,
	UserRoleAdmin,
}

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	return contains(validUserRoles, r)
}

func ParseUserRole(value string) (UserRole, error) {
	return parse(validUserRoles, value, "user role")
}
