package permission

// Update is a requested change to a user's role and/or permissions.
// Nil fields were not supplied.
type Update struct {
	Role        *string
	Permissions *Patch
}

// State is what is currently stored for the user.
type State struct {
	Role        string
	Permissions *Flags
}

// Result is what must be persisted. Nil fields are left untouched.
type Result struct {
	Role        *Role
	Permissions *Flags
}

// Merge resolves each flag as incoming, then existing, then defaults.
func Merge(incoming Patch, existing *Flags, defaults Flags) Flags {
	var out Flags
	for _, flag := range AllFlags {
		switch {
		case incoming.Get(flag) != nil:
			out.Set(flag, *incoming.Get(flag))
		case existing != nil:
			out.Set(flag, existing.Get(flag))
		default:
			out.Set(flag, defaults.Get(flag))
		}
	}
	return out
}

// Normalize computes the role and permissions to persist for an update.
//
// An Administrator role always carries every flag. Setting the role to an
// admin alias discards any supplied permissions; an existing Administrator
// keeps every flag unless the same update demotes it. Demotion alone does
// not clear flags.
func Normalize(update Update, existing State) Result {
	var res Result

	var role Role
	if update.Role != nil {
		role = ParseRole(*update.Role)
	}

	if role.IsAdministrator() {
		all := AllGranted()
		res.Role = &role
		res.Permissions = &all
		return res
	}

	if !role.IsZero() {
		res.Role = &role
	}

	if update.Permissions != nil {
		merged := Merge(*update.Permissions, existing.Permissions, Defaults())
		res.Permissions = &merged
	}

	demoted := !role.IsZero()
	if res.Permissions != nil && !demoted && ParseRole(existing.Role).IsAdministrator() {
		all := AllGranted()
		res.Permissions = &all
	}

	return res
}

// Effective returns the flags used for access checks. Administrators get
// every flag; users whose permissions were never configured are not gated.
func Effective(role string, stored *Flags) Flags {
	if ParseRole(role).IsAdministrator() || stored == nil {
		return AllGranted()
	}
	return *stored
}
