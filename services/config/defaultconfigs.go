package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw YAML bytes for that device
// -----------------------------------------------------------------------------

// Pico remote: four buttons to ground, pairing controller on i2c0 (GP4/GP5),
// radio module bridged on uart0 (GP0/GP1).
const cfgRemote = `
remote:
  buttons:
    - {button: 1, pin: 2}
    - {button: 2, pin: 3}
    - {button: 3, pin: 6}
    - {button: 4, pin: 7}
  active_low: true
  pull: up
  radio:
    channel: 11
    addr: "c8:f0:9e:2c:28:8c"
    port: uart0
    tx: 0
    rx: 1
  pairing:
    bus: i2c0
    addr: 0x23
    sda: 4
    scl: 5
heartbeat:
  interval: 10
`

// Pico light: four 8-pixel strips, pairing target on i2c0.
const cfgLight = `
light:
  strips:
    - {pin: 16, pixels: 8}
    - {pin: 17, pixels: 8}
    - {pin: 18, pixels: 8}
    - {pin: 19, pixels: 8}
  brightness: 25
  radio:
    channel: 11
    addr: "02:00:00:00:00:01"
    port: uart0
    tx: 0
    rx: 1
  pairing:
    bus: i2c0
    addr: 0x23
    sda: 4
    scl: 5
heartbeat:
  interval: 10
`

// Both devices in one host process sharing a simulated world.
const cfgSim = `
remote:
  buttons:
    - {button: 1, pin: 2}
    - {button: 2, pin: 3}
    - {button: 3, pin: 6}
    - {button: 4, pin: 7}
  active_low: true
  radio:
    channel: 11
    addr: "c8:f0:9e:2c:28:8c"
  pairing:
    bus: i2c0
light:
  strips:
    - {pin: 16, pixels: 8}
    - {pin: 17, pixels: 8}
    - {pin: 18, pixels: 8}
    - {pin: 19, pixels: 8}
  radio:
    channel: 11
    addr: "02:00:00:00:00:01"
  pairing:
    bus: i2c0
`

var embeddedConfigs = map[string][]byte{
	"remote": []byte(cfgRemote),
	"light":  []byte(cfgLight),
	"sim":    []byte(cfgSim),
}
