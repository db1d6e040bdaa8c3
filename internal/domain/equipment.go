package domain

// Device describes one piece of equipment declared in an agent's probe
// document. DeviceUUID is the identity key.
type Device struct {
	DeviceID     string `json:"deviceId,omitempty"`
	DeviceName   string `json:"deviceName,omitempty"`
	DeviceUUID   string `json:"deviceUUID,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	Description  string `json:"description,omitempty"`
}

// DataItem is a measurable channel belonging to the device identified by
// DeviceUUID.
type DataItem struct {
	Category   string `json:"category,omitempty"`
	ID         string `json:"id,omitempty"`
	DeviceUUID string `json:"deviceUUID,omitempty"`
	Name       string `json:"name,omitempty"`
	Type       string `json:"type,omitempty"`
}

// Catalog is the result of one probe: devices and their data items in
// document order.
type Catalog struct {
	Devices   []Device
	DataItems []DataItem
}
