package domain

import "time"

type OperatingHours struct {
	Day       string `json:"day"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	IsOpen    bool   `json:"is_open"`
}

// Settings is the single restaurant-wide configuration row. TaxRate and
// ServiceCharge are percentages in [0,100].
type Settings struct {
	RestaurantName     string           `json:"restaurant_name"`
	Address            string           `json:"address"`
	Phone              string           `json:"phone"`
	TaxRate            float64          `json:"tax_rate"`
	ServiceCharge      float64          `json:"service_charge"`
	OperatingHours     []OperatingHours `json:"operating_hours"`
	SoundNotifications bool             `json:"sound_notifications"`
	AutoPrint          bool             `json:"auto_print"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// DefaultSettings are written on first read when no settings row exists yet.
func DefaultSettings() Settings {
	days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	hours := make([]OperatingHours, 0, len(days))
	for _, day := range days {
		hours = append(hours, OperatingHours{Day: day, OpenTime: "10:00", CloseTime: "22:00", IsOpen: true})
	}
	return Settings{
		RestaurantName:     "Metro Restaurant",
		TaxRate:            10,
		ServiceCharge:      0,
		OperatingHours:     hours,
		SoundNotifications: true,
	}
}
