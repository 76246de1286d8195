// cmd/spark-remote is the button remote firmware. On rp2040 builds it drives
// the board; on the host it runs against a private simulated world, which is
// only useful with a serial radio port in -config.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"spark-go/bus"
	"spark-go/services/config"
	"spark-go/services/hal/provider"
	"spark-go/services/heartbeat"
	"spark-go/services/remote"
	"spark-go/types"
)

const device = "remote"

func main() {
	cfgPath := flag.String("config", "", "YAML config file (defaults to the embedded one)")
	flag.Parse()

	// Allow USB CDC to enumerate before we print.
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

	mon := ui.Subscribe(bus.T(device, "#"))
	go func() {
		for m := range mon.Channel() {
			printTopicWith("[monitor] <-", m.Topic)
		}
	}()

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	cfg, err := config.Await[types.RemoteConfig](waitCtx, ui, device)
	cancel()
	if err != nil {
		fatal("config", err)
	}

	reg := provider.Default(device)
	defer reg.Close()
	println("[main] starting remote with", len(cfg.Buttons), "buttons")
	if err := remote.Run(ctx, cfg, reg, b.NewConnection(device)); err != nil {
		fatal("remote", err)
	}
}

func fatal(what string, err error) {
	println("[main]", what, "failed:", err.Error())
	printMem()
	os.Exit(1)
}

func printTopicWith(prefix string, t bus.Topic) {
	print(prefix)
	print(" ")
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			print("/")
		}
		switch v := t.At(i).(type) {
		case string:
			print(v)
		case int:
			print(v)
		default:
			print("?")
		}
	}
	println()
}

// printMem prints a compact snapshot of runtime memory stats.
func printMem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	println(
		"[mem]",
		"alloc:", uint32(ms.Alloc),
		"heapInuse:", uint32(ms.HeapInuse),
		"heapSys:", uint32(ms.HeapSys),
	)
}
