package rbac

import "hr-calendar/internal/domain"

const (
	ResourceEvent    = "event"
	ResourceLeave    = "leave"
	ResourceBalance  = "balance"
	ResourceEmployee = "employee"
	ResourceFile     = "file"
	ResourceRBAC     = "rbac"

	ActionRead      = "read"
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionDelete    = "delete"
	ActionDecide    = "decide"
	ActionFilterAny = "filter_any"
	ActionReadAny   = "read_any"
	ActionManage    = "manage"
)

// RoleInheritance lists (role, parent) pairs: a role gets every permission
// of its parent.
var RoleInheritance = [][]string{
	{domain.RoleCEO, domain.RoleAdmin},
	{domain.RoleAdmin, domain.RoleSupervisor},
	{domain.RoleSupervisor, domain.RoleEmployee},
}

// DefaultPolicies lists (role, resource, action) grants.
var DefaultPolicies = [][]string{
	{domain.RoleEmployee, ResourceEvent, ActionRead},
	{domain.RoleEmployee, ResourceEvent, ActionCreate},
	{domain.RoleEmployee, ResourceEvent, ActionUpdate},
	{domain.RoleEmployee, ResourceEvent, ActionDelete},
	{domain.RoleEmployee, ResourceLeave, ActionRead},
	{domain.RoleEmployee, ResourceLeave, ActionCreate},
	{domain.RoleEmployee, ResourceBalance, ActionRead},
	{domain.RoleEmployee, ResourceFile, ActionRead},
	{domain.RoleEmployee, ResourceEmployee, ActionRead},

	{domain.RoleSupervisor, ResourceLeave, ActionDecide},

	{domain.RoleAdmin, ResourceEvent, ActionFilterAny},
	{domain.RoleAdmin, ResourceBalance, ActionReadAny},
	{domain.RoleAdmin, ResourceEmployee, ActionManage},
	{domain.RoleAdmin, ResourceRBAC, ActionRead},
}
