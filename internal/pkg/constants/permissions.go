package constants

const (
	ViewData         = "view_data"
	ManageProperties = "manage_properties"
	ManageRooms      = "manage_rooms"
	ManageBookings   = "manage_bookings"
	ManageMenu       = "manage_menu"
	ManageOrders     = "manage_orders"
	TakePayment      = "take_payment"
	InviteUser       = "invite_user"
	RemoveUser       = "remove_user"
	AssignRole       = "assign_role"
	ManageAdmins     = "manage_admins"
	UpdateTenant     = "update_tenant"
)

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewData:         {Staff, Manager, Admin, Owner},
	ManageProperties: {Admin, Owner},
	ManageRooms:      {Manager, Admin, Owner},
	ManageBookings:   {Staff, Manager, Admin, Owner},
	ManageMenu:       {Manager, Admin, Owner},
	ManageOrders:     {Staff, Manager, Admin, Owner},
	TakePayment:      {Manager, Admin, Owner},
	InviteUser:       {Admin, Owner},
	RemoveUser:       {Admin, Owner},
	AssignRole:       {Admin, Owner},
	ManageAdmins:     {Owner},
	UpdateTenant:     {Admin, Owner},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
