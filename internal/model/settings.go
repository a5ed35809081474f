package model

// Settings holds the four ordered registries consulted by validation
// and forms. Categories and fuel types are editable; statuses and
// locations only change through restore or settings import.
type Settings struct {
	ToolCategories []string `json:"toolCategories"`
	FuelTypes      []string `json:"fuelTypes"`
	ToolStatuses   []string `json:"toolStatuses"`
	Locations      []string `json:"locations"`
}

// Default registry seed values.
var (
	DefaultToolCategories = []string{"Eléctrica", "Manual", "Hidráulica", "Neumática", "Medición", "Seguridad"}
	DefaultFuelTypes      = []string{"93 Octanos", "95 Octanos", "97 Octanos", "Diesel", "Kerosene", "Gas"}
	DefaultToolStatuses   = []string{StatusAvailable, StatusLoaned, StatusMaintenance, StatusDamaged, StatusLost}
	DefaultLocations      = []string{"Bodega A", "Bodega B", "Taller", "Campo", "Oficina"}
)

// DefaultSettings returns a fresh copy of the seed registries.
func DefaultSettings() Settings {
	return Settings{
		ToolCategories: append([]string(nil), DefaultToolCategories...),
		FuelTypes:      append([]string(nil), DefaultFuelTypes...),
		ToolStatuses:   append([]string(nil), DefaultToolStatuses...),
		Locations:      append([]string(nil), DefaultLocations...),
	}
}

// Clone returns a deep copy of the settings.
func (s Settings) Clone() Settings {
	return Settings{
		ToolCategories: append([]string(nil), s.ToolCategories...),
		FuelTypes:      append([]string(nil), s.FuelTypes...),
		ToolStatuses:   append([]string(nil), s.ToolStatuses...),
		Locations:      append([]string(nil), s.Locations...),
	}
}

// Contains reports whether value is a member of the list (case-sensitive).
func Contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
