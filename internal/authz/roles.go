package authz

const (
	RoleOrganization = 10
	RoleReviewer     = 40
	RoleAdmin        = 50
)

func IsReviewer(roleID int) bool {
	return roleID == RoleReviewer || roleID == RoleAdmin
}
