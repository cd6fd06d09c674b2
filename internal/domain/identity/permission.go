package identity

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ledgerly/backend/internal/domain/shared"
)

// Permission modules
const (
	ModuleAccount  = "account"
	ModuleBranding = "branding"
	ModuleUser     = "user"
	ModuleRole     = "role"
	ModuleProduct  = "product"
	ModuleCustomer = "customer"
	ModuleInvoice  = "invoice"
	ModulePayment  = "payment"
	ModuleExpense  = "expense"
	ModuleRevenue  = "revenue"
	ModuleActivity = "activity"
)

// Permission actions
const (
	ActionView        = "view"
	ActionCreate      = "create"
	ActionUpdate      = "update"
	ActionDelete      = "delete"
	ActionAdjustStock = "adjust_stock"
	ActionConfirm     = "confirm"
	ActionUnconfirm   = "unconfirm"
	ActionCancel      = "cancel"
	ActionPrint       = "print"
)

// WildcardAction grants every action of a module ("invoice:*")
const WildcardAction = "*"

// permissionCatalog lists every grantable permission, grouped by module
var permissionCatalog = map[string][]string{
	ModuleAccount:  {ActionView, ActionUpdate},
	ModuleBranding: {ActionView, ActionUpdate},
	ModuleUser:     {ActionView, ActionCreate, ActionUpdate, ActionDelete},
	ModuleRole:     {ActionView, ActionCreate, ActionUpdate, ActionDelete},
	ModuleProduct:  {ActionView, ActionCreate, ActionUpdate, ActionDelete, ActionAdjustStock},
	ModuleCustomer: {ActionView, ActionCreate, ActionUpdate, ActionDelete},
	ModuleInvoice:  {ActionView, ActionCreate, ActionUpdate, ActionDelete, ActionConfirm, ActionUnconfirm, ActionCancel, ActionPrint},
	ModulePayment:  {ActionView, ActionCreate, ActionDelete},
	ModuleExpense:  {ActionView, ActionCreate, ActionUpdate, ActionDelete},
	ModuleRevenue:  {ActionView, ActionCreate, ActionUpdate, ActionDelete},
	ModuleActivity: {ActionView},
}

var permissionPartRegex = regexp.MustCompile(`^[a-z][a-z_]*$`)

// Permission is a functional permission in module:action form
type Permission struct {
	Code   string
	Module string
	Action string
}

// NewPermission builds a permission and checks it against the catalog.
// The module wildcard ("module:*") is accepted for any known module.
func NewPermission(module, action string) (Permission, error) {
	module = strings.ToLower(strings.TrimSpace(module))
	action = strings.ToLower(strings.TrimSpace(action))

	if !permissionPartRegex.MatchString(module) {
		return Permission{}, shared.NewDomainError("INVALID_PERMISSION", "Permission module must contain only lowercase letters and underscores")
	}
	actions, ok := permissionCatalog[module]
	if !ok {
		return Permission{}, shared.NewDomainError("INVALID_PERMISSION", "Unknown permission module: "+module)
	}
	if action != WildcardAction && !containsString(actions, action) {
		return Permission{}, shared.NewDomainError("INVALID_PERMISSION", "Unknown permission: "+module+":"+action)
	}

	return Permission{
		Code:   module + ":" + action,
		Module: module,
		Action: action,
	}, nil
}

// ParsePermission parses a "module:action" code
func ParsePermission(code string) (Permission, error) {
	parts := strings.SplitN(strings.TrimSpace(code), ":", 2)
	if len(parts) != 2 {
		return Permission{}, shared.NewDomainError("INVALID_PERMISSION", "Permission code must be in format 'module:action'")
	}
	return NewPermission(parts[0], parts[1])
}

// ParsePermissions parses and deduplicates a list of codes, preserving order
func ParsePermissions(codes []string) ([]Permission, error) {
	seen := make(map[string]struct{}, len(codes))
	perms := make([]Permission, 0, len(codes))
	for _, code := range codes {
		p, err := ParsePermission(code)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p.Code]; dup {
			continue
		}
		seen[p.Code] = struct{}{}
		perms = append(perms, p)
	}
	return perms, nil
}

// PermissionCode joins a module and action
func PermissionCode(module, action string) string {
	return module + ":" + action
}

// ModulePermissions is one module of the catalog
type ModulePermissions struct {
	Module      string   `json:"module"`
	Permissions []string `json:"permissions"`
}

// PermissionCatalog returns the catalog grouped by module, sorted by module name
func PermissionCatalog() []ModulePermissions {
	modules := make([]string, 0, len(permissionCatalog))
	for m := range permissionCatalog {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	result := make([]ModulePermissions, 0, len(modules))
	for _, m := range modules {
		codes := make([]string, 0, len(permissionCatalog[m]))
		for _, a := range permissionCatalog[m] {
			codes = append(codes, PermissionCode(m, a))
		}
		result = append(result, ModulePermissions{Module: m, Permissions: codes})
	}
	return result
}

// AllPermissionCodes returns every concrete permission code of the catalog
func AllPermissionCodes() []string {
	var codes []string
	for _, group := range PermissionCatalog() {
		codes = append(codes, group.Permissions...)
	}
	return codes
}

// PermissionSet is the effective set of permissions of a user
type PermissionSet struct {
	all   bool
	codes map[string]struct{}
}

// NewPermissionSet builds a set from permission codes
func NewPermissionSet(codes ...string) PermissionSet {
	set := PermissionSet{codes: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		set.codes[c] = struct{}{}
	}
	return set
}

// AllPermissions returns the set that grants everything
func AllPermissions() PermissionSet {
	return PermissionSet{all: true, codes: map[string]struct{}{}}
}

// IsAll reports whether the set grants everything
func (s PermissionSet) IsAll() bool {
	return s.all
}

// Has reports whether code is granted, directly or through a module wildcard
func (s PermissionSet) Has(code string) bool {
	if s.all {
		return true
	}
	if _, ok := s.codes[code]; ok {
		return true
	}
	if idx := strings.IndexByte(code, ':'); idx > 0 {
		if _, ok := s.codes[code[:idx+1]+WildcardAction]; ok {
			return true
		}
	}
	return false
}

// Codes returns the granted codes sorted alphabetically
func (s PermissionSet) Codes() []string {
	codes := make([]string, 0, len(s.codes))
	for c := range s.codes {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// ResolvePermissions computes the effective permissions of a user.
// Super-admins get everything; other users get the union of their enabled roles.
func ResolvePermissions(user *User, roles []*Role) PermissionSet {
	if user == nil {
		return NewPermissionSet()
	}
	if user.IsSuperAdmin {
		return AllPermissions()
	}

	assigned := make(map[string]struct{}, len(user.RoleIDs))
	for _, id := range user.RoleIDs {
		assigned[id.String()] = struct{}{}
	}

	set := NewPermissionSet()
	for _, role := range roles {
		if role == nil || !role.IsEnabled {
			continue
		}
		if _, ok := assigned[role.ID.String()]; !ok {
			continue
		}
		for _, p := range role.Permissions {
			set.codes[p.Code] = struct{}{}
		}
	}
	return set
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
