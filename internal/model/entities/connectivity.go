package entities

import "fmt"

// Connectivity tracks the outcome of the last poll against the device.
// The zero value is Disconnected: nothing has been read yet.
type Connectivity int

const (
	Disconnected Connectivity = iota
	Connected
)

func (c Connectivity) String() string {
	if c == Connected {
		return "CONNECTED"
	}
	return "DISCONNECTED"
}

func (c Connectivity) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Connectivity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "CONNECTED":
		*c = Connected
	case "DISCONNECTED":
		*c = Disconnected
	default:
		return fmt.Errorf("unknown connectivity %q", b)
	}
	return nil
}
