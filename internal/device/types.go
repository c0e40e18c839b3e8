package device

// RTSPCamera is a network camera the backend records from.
type RTSPCamera struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	IP          string `json:"ip"`
	Port        int    `json:"port"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Path        string `json:"path"`
	Sensibility int    `json:"sensibility"`
}

// MagneticReed is a door or window contact sensor wired to a GPIO pin.
type MagneticReed struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	GPIOPin      int    `json:"gpio_pin_number"`
	NormallyOpen bool   `json:"normally_open"`
}

// ReedState is the live open/closed reading of a reed sensor.
type ReedState struct {
	GPIOPin int  `json:"gpio_pin_number"`
	Open    bool `json:"open"`
}

// Inventory is the combined device listing, fetched concurrently from
// both backend collections.
type Inventory struct {
	Cameras []RTSPCamera   `json:"cameras"`
	Reeds   []MagneticReed `json:"reeds"`
}
