// cmd/spark-light is the light controller firmware.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"spark-go/bus"
	"spark-go/services/config"
	"spark-go/services/hal/provider"
	"spark-go/services/heartbeat"
	"spark-go/services/light"
	"spark-go/types"
)

const device = "light"

func main() {
	cfgPath := flag.String("config", "", "YAML config file (defaults to the embedded one)")
	flag.Parse()

	time.Sleep(2 * time.Second)
	println("[main] boot", device)

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, device)
	b := bus.NewBus(4)
	cfgConn := b.NewConnection("config")
	ui := b.NewConnection("ui")

	if *cfgPath != "" {
		d, err := config.LoadFile(*cfgPath)
		if err != nil {
			fatal("config", err)
		}
		config.Publish(cfgConn, d)
	} else {
		config.NewConfigService().Start(ctx, cfgConn)
	}

	var hb heartbeat.Service
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	// Animation state changes are rare enough to log.
	anim := ui.Subscribe(bus.T(device, "animation"))
	go func() {
		for m := range anim.Channel() {
			if v, ok := m.Payload.(types.AnimationValue); ok {
				println("[monitor] animation", string(v.State))
			}
		}
	}()

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	cfg, err := config.Await[types.LightConfig](waitCtx, ui, device)
	cancel()
	if err != nil {
		fatal("config", err)
	}

	reg := provider.Default(device)
	defer reg.Close()
	println("[main] starting light with", len(cfg.Strips), "strips")
	if err := light.Run(ctx, cfg, reg, b.NewConnection(device)); err != nil {
		fatal("light", err)
	}
}

func fatal(what string, err error) {
	println("[main]", what, "failed:", err.Error())
	os.Exit(1)
}
