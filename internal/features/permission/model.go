package permission

// Flag names one area of the application a user can be granted.
type Flag string

const (
	Dashboard Flag = "dashboard"
	Leads     Flag = "leads"
	Calendar  Flag = "calendar"
	Email     Flag = "email"
	Settings  Flag = "settings"
	Inventory Flag = "inventory"
	Favorites Flag = "favorites"
	MLS       Flag = "mls"
)

// AllFlags lists every flag in storage order
var AllFlags = []Flag{Dashboard, Leads, Calendar, Email, Settings, Inventory, Favorites, MLS}

// Flags is the stored permission map of a user
type Flags struct {
	Dashboard bool `bson:"dashboard" json:"dashboard"`
	Leads     bool `bson:"leads" json:"leads"`
	Calendar  bool `bson:"calendar" json:"calendar"`
	Email     bool `bson:"email" json:"email"`
	Settings  bool `bson:"settings" json:"settings"`
	Inventory bool `bson:"inventory" json:"inventory"`
	Favorites bool `bson:"favorites" json:"favorites"`
	MLS       bool `bson:"mls" json:"mls"`
}

// Patch carries a partial permission update; nil means "not supplied".
type Patch struct {
	Dashboard *bool `json:"dashboard,omitempty"`
	Leads     *bool `json:"leads,omitempty"`
	Calendar  *bool `json:"calendar,omitempty"`
	Email     *bool `json:"email,omitempty"`
	Settings  *bool `json:"settings,omitempty"`
	Inventory *bool `json:"inventory,omitempty"`
	Favorites *bool `json:"favorites,omitempty"`
	MLS       *bool `json:"mls,omitempty"`
}

// Defaults is the fallback used when neither the update nor the stored user has a value.
func Defaults() Flags {
	return Flags{}
}

// AllGranted returns a map with every flag set
func AllGranted() Flags {
	var f Flags
	for _, flag := range AllFlags {
		f.Set(flag, true)
	}
	return f
}

func (f Flags) Get(flag Flag) bool {
	switch flag {
	case Dashboard:
		return f.Dashboard
	case Leads:
		return f.Leads
	case Calendar:
		return f.Calendar
	case Email:
		return f.Email
	case Settings:
		return f.Settings
	case Inventory:
		return f.Inventory
	case Favorites:
		return f.Favorites
	case MLS:
		return f.MLS
	}
	return false
}

func (f *Flags) Set(flag Flag, v bool) {
	switch flag {
	case Dashboard:
		f.Dashboard = v
	case Leads:
		f.Leads = v
	case Calendar:
		f.Calendar = v
	case Email:
		f.Email = v
	case Settings:
		f.Settings = v
	case Inventory:
		f.Inventory = v
	case Favorites:
		f.Favorites = v
	case MLS:
		f.MLS = v
	}
}

func (p Patch) Get(flag Flag) *bool {
	switch flag {
	case Dashboard:
		return p.Dashboard
	case Leads:
		return p.Leads
	case Calendar:
		return p.Calendar
	case Email:
		return p.Email
	case Settings:
		return p.Settings
	case Inventory:
		return p.Inventory
	case Favorites:
		return p.Favorites
	case MLS:
		return p.MLS
	}
	return nil
}

// PatchOf turns a full map into a patch that sets every flag
func PatchOf(f Flags) Patch {
	var p Patch
	for _, flag := range AllFlags {
		v := f.Get(flag)
		switch flag {
		case Dashboard:
			p.Dashboard = &v
		case Leads:
			p.Leads = &v
		case Calendar:
			p.Calendar = &v
		case Email:
			p.Email = &v
		case Settings:
			p.Settings = &v
		case Inventory:
			p.Inventory = &v
		case Favorites:
			p.Favorites = &v
		case MLS:
			p.MLS = &v
		}
	}
	return p
}
