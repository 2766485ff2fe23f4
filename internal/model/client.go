package model

// Client is a single speaker endpoint, bound 1:1 to a Snapcast client by MAC.
// ClientIndex is 1-based and statically assigned from configuration.
type Client struct {
	ClientIndex int `json:"clientIndex"`

	Name      string `json:"name"`
	MAC       string `json:"mac"`
	Connected bool   `json:"connected"`

	Volume int  `json:"volume"` // 0..100
	Mute   bool `json:"mute"`

	LatencyMs int `json:"latencyMs"` // -2000..2000

	ZoneIndex int `json:"zoneIndex"` // 1..N, always set (default from config)

	SnapcastClientID string `json:"-"`
}

func (c Client) Clone() Client { return c }
