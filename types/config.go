package types

import "errors"

// Device configuration, embedded per device ID and published on "config/<key>".

type Role string

const (
	RoleRemote Role = "remote"
	RoleLight  Role = "light"
)

// ButtonPin binds a logical button to a physical pin.
type ButtonPin struct {
	Button Button `yaml:"button"`
	Pin    int    `yaml:"pin"`
}

// UnmarshalYAML reads the 1-based label used in configs.
func (b *Button) UnmarshalYAML(unmarshal func(any) error) error {
	var n int
	if err := unmarshal(&n); err != nil {
		return err
	}
	if n < 1 || n > NumButtons {
		return errors.New("button must be 1..4")
	}
	*b = Button(n - 1)
	return nil
}

func (b Button) MarshalYAML() (any, error) { return b.Number(), nil }

// RadioConfig selects the broadcast transport.
// Port: "" => simulated air (host), "uartN" (rp2) or a serial device path (host).
type RadioConfig struct {
	Channel uint8  `yaml:"channel"`
	Addr    MAC    `yaml:"addr"`
	Port    string `yaml:"port,omitempty"`
	Baud    uint32 `yaml:"baud,omitempty"`
	TX      int    `yaml:"tx,omitempty"`
	RX      int    `yaml:"rx,omitempty"`
}

// PairingConfig describes the point-to-point bus used once at startup.
// An empty Bus skips pairing.
type PairingConfig struct {
	Bus  string `yaml:"bus"`  // e.g. "i2c0"
	Addr uint16 `yaml:"addr"` // target address of the light
	SDA  int    `yaml:"sda,omitempty"`
	SCL  int    `yaml:"scl,omitempty"`
	Hz   uint32 `yaml:"hz,omitempty"`
}

type StripConfig struct {
	Pin    int `yaml:"pin"`
	Pixels int `yaml:"pixels"`
}

type RemoteConfig struct {
	Buttons   []ButtonPin   `yaml:"buttons"`
	// ActiveLow left out follows the pull: pressed reads low unless pulled down.
	ActiveLow *bool         `yaml:"active_low,omitempty"`
	Pull      string        `yaml:"pull"` // "up","down","none"
	Radio     RadioConfig   `yaml:"radio"`
	Pairing   PairingConfig `yaml:"pairing"`
}

// PressedLow reports the level a pressed button reads.
func (c RemoteConfig) PressedLow() bool {
	if c.ActiveLow != nil {
		return *c.ActiveLow
	}
	return c.Pull != "down"
}

type LightConfig struct {
	Strips     []StripConfig `yaml:"strips"`
	Brightness uint8         `yaml:"brightness"`
	Radio      RadioConfig   `yaml:"radio"`
	Pairing    PairingConfig `yaml:"pairing"`
	// Peer, when set, skips the pairing exchange and trusts this remote.
	Peer MAC `yaml:"peer,omitempty"`
}

// Validate reports configuration errors before any peripheral is claimed.
func (c RemoteConfig) Validate() error {
	if len(c.Buttons) == 0 || len(c.Buttons) > 32 {
		return errors.New("remote: 1..32 buttons required")
	}
	seenB := map[Button]bool{}
	seenP := map[int]bool{}
	for _, bp := range c.Buttons {
		if !bp.Button.Valid() {
			return errors.New("remote: unknown button")
		}
		if seenB[bp.Button] || seenP[bp.Pin] {
			return errors.New("remote: button or pin bound twice")
		}
		seenB[bp.Button] = true
		seenP[bp.Pin] = true
	}
	if c.Radio.Addr.IsZero() || c.Radio.Addr.IsBroadcast() {
		return errors.New("remote: radio address required")
	}
	return nil
}

func (c LightConfig) Validate() error {
	if len(c.Strips) == 0 {
		return errors.New("light: at least one strip required")
	}
	seen := map[int]bool{}
	for _, s := range c.Strips {
		if s.Pixels <= 0 {
			return errors.New("light: strip without pixels")
		}
		if seen[s.Pin] {
			return errors.New("light: two strips on one pin")
		}
		seen[s.Pin] = true
	}
	if c.Radio.Addr.IsZero() || c.Radio.Addr.IsBroadcast() {
		return errors.New("light: radio address required")
	}
	if c.Pairing.Bus == "" && c.Peer.IsZero() {
		return errors.New("light: no pairing bus and no preset peer")
	}
	if c.Pairing.Bus != "" && !c.Peer.IsZero() {
		return errors.New("light: pairing bus and preset peer are exclusive")
	}
	return nil
}

// HeartbeatConfig sets the status line period in seconds; 0 keeps the default.
type HeartbeatConfig struct {
	Interval int `yaml:"interval"`
}
