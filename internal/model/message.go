// Package model defines shared message structures for the control link.
package model

// ControlMessage is sent by the operator app over the control link (JSON).
// Type selects which fields are meaningful.
type ControlMessage struct {
	Type string `json:"type"` // "credentials" | "setpoint"

	// credentials
	NetworkID string `json:"network_id,omitempty"`
	Secret    string `json:"secret,omitempty"`

	// setpoint (clamped by the link on receipt)
	Lateral      int `json:"lateral"`      // -100..100
	Longitudinal int `json:"longitudinal"` // 0 backward, 100 forward
	Speed        int `json:"speed"`        // 0..100
	Decay        int `json:"decay"`        // 0 fast, 1 slow
}

// BatteryMessage is pushed by the rover to the operator app (JSON).
type BatteryMessage struct {
	Type    string  `json:"type"` // always "battery"
	Percent float64 `json:"percent"`
}

// LinkStatus is the diagnostics snapshot served on the link's /status route.
type LinkStatus struct {
	Paired             bool   `json:"paired"`
	CredentialsPending bool   `json:"credentials_pending"`
	Lateral            int    `json:"lateral"`
	Longitudinal       int    `json:"longitudinal"`
	Speed              int    `json:"speed"`
	Decay              int    `json:"decay"`
	Session            string `json:"session,omitempty"`
}
