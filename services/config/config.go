// Package config resolves a device's YAML configuration and publishes each
// section as a retained message on config/<key>.
package config

import (
	"context"
	"errors"
	"os"

	"spark-go/bus"
	"spark-go/errcode"
	"spark-go/services/pairing"
	"spark-go/types"

	"gopkg.in/yaml.v2"
)

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key used for device ID

	defaultBaud = 115200
	defaultHz   = 100_000
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Document is one device's configuration. A section left out of the YAML
// stays nil and is not published.
type Document struct {
	Remote    *types.RemoteConfig    `yaml:"remote,omitempty"`
	Light     *types.LightConfig     `yaml:"light,omitempty"`
	Heartbeat *types.HeartbeatConfig `yaml:"heartbeat,omitempty"`
}

// Parse decodes raw strictly, fills defaults and validates every section.
func Parse(raw []byte) (Document, error) {
	var d Document
	if err := yaml.UnmarshalStrict(raw, &d); err != nil {
		return Document{}, &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "yaml", Err: err}
	}
	if d.Remote == nil && d.Light == nil {
		return Document{}, errcode.Wrap(errcode.InvalidParams, "config", "no remote or light section")
	}
	if r := d.Remote; r != nil {
		if r.Pull == "" {
			r.Pull = "up"
		}
		if r.ActiveLow == nil {
			low := r.PressedLow()
			r.ActiveLow = &low
		}
		fillRadio(&r.Radio)
		fillPairing(&r.Pairing)
		if err := r.Validate(); err != nil {
			return Document{}, errcode.Wrap(errcode.InvalidParams, "config", err.Error())
		}
	}
	if l := d.Light; l != nil {
		fillRadio(&l.Radio)
		fillPairing(&l.Pairing)
		if err := l.Validate(); err != nil {
			return Document{}, errcode.Wrap(errcode.InvalidParams, "config", err.Error())
		}
	}
	return d, nil
}

func fillRadio(r *types.RadioConfig) {
	if r.Port != "" && r.Baud == 0 {
		r.Baud = defaultBaud
	}
}

func fillPairing(p *types.PairingConfig) {
	if p.Bus == "" {
		return
	}
	if p.Addr == 0 {
		p.Addr = pairing.DefaultAddr
	}
	if p.Hz == 0 {
		p.Hz = defaultHz
	}
}

// Load parses the embedded config for device.
func Load(device string) (Document, error) {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return Document{}, errors.New("no embedded config for device: " + device)
	}
	return Parse(raw)
}

// LoadFile parses a YAML file from the host filesystem.
func LoadFile(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return Parse(raw)
}

// Publish retains every present section on config/<key>.
func Publish(conn *bus.Connection, d Document) {
	if d.Remote != nil {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, "remote"), *d.Remote, true))
	}
	if d.Light != nil {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, "light"), *d.Light, true))
	}
	if d.Heartbeat != nil {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, "heartbeat"), *d.Heartbeat, true))
	}
}

// Await blocks until config/<key> carries a T, normally the retained copy
// delivered on subscribe.
func Await[T any](ctx context.Context, conn *bus.Connection, key string) (T, error) {
	var zero T
	sub := conn.Subscribe(bus.T(configPrefix, key))
	defer conn.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case msg := <-sub.Channel():
			if v, ok := msg.Payload.(T); ok {
				return v, nil
			}
			println("[config] ignoring", key, "payload of unexpected type")
		}
	}
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig resolves the device named in ctx and publishes its sections.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}
	d, err := Load(device)
	if err != nil {
		return err
	}
	Publish(conn, d)
	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			println("[config] publish failed:", err.Error())
		}
	}()
}
