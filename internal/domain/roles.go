package domain

import "encoding/json"

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
	RoleUser  Role = "USER"
)

// rolePriority orders roles for display only. Access checks use set membership.
var rolePriority = map[Role]int{
	RoleAdmin: 3,
	RoleStaff: 2,
	RoleUser:  1,
}

func (r Role) Valid() bool {
	_, ok := rolePriority[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}

// FilterValidRoles accepts role names or {"name": ...} objects as decoded from JSON
// and keeps the recognised ones in their original order.
func FilterValidRoles(raw []any) []Role {
	out := make([]Role, 0, len(raw))
	for _, v := range raw {
		var name string
		switch r := v.(type) {
		case string:
			name = r
		case Role:
			name = string(r)
		case map[string]any:
			name, _ = r["name"].(string)
		}
		if role := Role(name); role.Valid() {
			out = append(out, role)
		}
	}
	return out
}

// HasRequiredRole reports whether the user holds at least one of the required roles.
func HasRequiredRole[R ~string](userRoles []R, required []Role) bool {
	if userRoles == nil {
		return false
	}
	held := make(map[Role]struct{}, len(userRoles))
	for _, r := range userRoles {
		if role := Role(r); role.Valid() {
			held[role] = struct{}{}
		}
	}
	for _, r := range required {
		if _, ok := held[r]; ok {
			return true
		}
	}
	return false
}

// HighestRole picks the highest priority valid role, USER when there is none.
func HighestRole[R ~string](roles []R) Role {
	highest := Role("")
	for _, r := range roles {
		role := Role(r)
		if !role.Valid() {
			continue
		}
		if rolePriority[role] > rolePriority[highest] {
			highest = role
		}
	}
	if highest == "" {
		return RoleUser
	}
	return highest
}

func RoleLabel(r Role) string {
	return string(r)
}

func RoleColor(r Role) string {
	switch r {
	case RoleAdmin:
		return "red"
	case RoleStaff:
		return "blue"
	case RoleUser:
		return "green"
	default:
		return "default"
	}
}

// RoleSet decodes a roles array of names or objects, dropping unknown roles.
type RoleSet []Role

func (s *RoleSet) UnmarshalJSON(b []byte) error {
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = FilterValidRoles(raw)
	return nil
}
