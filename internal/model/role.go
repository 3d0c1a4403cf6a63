package model

// Role is a tenant membership role. Roles form a total order; authorization
// checks compare levels, never strings.
type Role string

const (
	RoleReadonly Role = "readonly"
	RoleUser     Role = "user"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

var roleLevels = map[Role]int{
	RoleReadonly: 0,
	RoleUser:     1,
	RoleManager:  2,
	RoleAdmin:    3,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the role's position in the hierarchy. Unknown roles rank
// below readonly so a corrupted value never grants access.
func (r Role) Level() int {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return -1
}

// AtLeast reports whether r grants at least the privileges of required.
func (r Role) AtLeast(required Role) bool {
	return r.Valid() && required.Valid() && r.Level() >= required.Level()
}
