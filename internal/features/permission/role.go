package permission

import (
	"strings"
	"unicode"
)

const AdministratorName = "Administrator"

// Role is either Administrator or a free-text standard role.
type Role struct {
	name  string
	admin bool
}

// ParseRole canonicalises a raw role. "admin" and "administrator" in any case
// become Administrator; anything else is lower-cased with the first letter
// upper-cased.
func ParseRole(raw string) Role {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch lower {
	case "":
		return Role{}
	case "admin", "administrator":
		return Role{name: AdministratorName, admin: true}
	}
	r := []rune(lower)
	return Role{name: string(unicode.ToUpper(r[0])) + string(r[1:])}
}

func Administrator() Role {
	return Role{name: AdministratorName, admin: true}
}

func (r Role) String() string        { return r.name }
func (r Role) IsAdministrator() bool { return r.admin }
func (r Role) IsZero() bool          { return r.name == "" }
