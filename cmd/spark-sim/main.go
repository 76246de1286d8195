//go:build !rp2040

// cmd/spark-sim runs the remote and the light in one process over a
// simulated world: shared air, pairing link and GPIO you can press from
// stdin or a -script.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"spark-go/bus"
	"spark-go/services/config"
	"spark-go/services/hal/core"
	"spark-go/services/hal/provider"
	"spark-go/services/light"
	"spark-go/services/remote"
	"spark-go/types"
	"spark-go/x/mathx"
)

const pressHold = 20 * time.Millisecond

type sim struct {
	doc   config.Document
	world *provider.World
	rreg  *provider.HostRegistry
	lreg  *provider.HostRegistry
	pins  map[types.Button]int
	conn  *bus.Connection
}

func main() {
	cfgPath := flag.String("config", "", "YAML config with remote and light sections (defaults to the embedded sim config)")
	script := flag.String("script", "", "commands separated by ';' instead of stdin, e.g. \"1 1; wait 800; 2 3\"")
	loss := flag.Float64("loss", 0, "probability in [0,1) that a radio datagram is lost")
	verbose := flag.Bool("v", false, "print every bus message")
	flag.Parse()

	doc, err := loadDoc(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newSim(doc)
	if *loss > 0 {
		p := mathx.Clamp(*loss, 0, 0.99)
		s.world.Air.SetDrop(func(core.Datagram) bool { return rand.Float64() < p })
	}

	b := bus.NewBus(16)
	s.conn = b.NewConnection("sim")
	config.Publish(b.NewConnection("config"), doc)
	s.monitor(*verbose)

	errs := make(chan error, 2)
	go func() { errs <- light.Run(ctx, *doc.Light, s.lreg, b.NewConnection("light")) }()
	go func() { errs <- remote.Run(ctx, *doc.Remote, s.rreg, b.NewConnection("remote")) }()

	if err := s.awaitPairing(ctx, errs); err != nil {
		fmt.Fprintln(os.Stderr, "startup:", err)
		os.Exit(1)
	}

	var lines []string
	if *script != "" {
		lines = splitScript(*script)
	}
	s.drive(ctx, lines)

	// Let the last gesture flush and its animation run out.
	time.Sleep(remote.QuietPeriod + light.AnimationDuration + 200*time.Millisecond)
	s.printStats()
	cancel()
}

func loadDoc(path string) (config.Document, error) {
	var (
		d   config.Document
		err error
	)
	if path != "" {
		d, err = config.LoadFile(path)
	} else {
		d, err = config.Load("sim")
	}
	if err != nil {
		return d, err
	}
	if d.Remote == nil || d.Light == nil {
		return d, errors.New("sim needs both remote and light sections")
	}
	return d, nil
}

func newSim(doc config.Document) *sim {
	w := provider.NewWorld()
	s := &sim{
		doc:   doc,
		world: w,
		rreg:  w.NewRegistry("remote"),
		lreg:  w.NewRegistry("light"),
		pins:  map[types.Button]int{},
	}
	for _, bp := range doc.Remote.Buttons {
		s.pins[bp.Button] = bp.Pin
	}
	return s
}

func (s *sim) monitor(verbose bool) {
	if verbose {
		all := s.conn.Subscribe(bus.T(bus.MultiWild))
		go func() {
			for m := range all.Channel() {
				fmt.Printf("# %s %+v\n", topicString(m.Topic), m.Payload)
			}
		}()
		return
	}
	for _, t := range []bus.Topic{
		bus.T("remote", "gesture"),
		bus.T("light", "gesture"),
		bus.T("light", "animation"),
	} {
		sub := s.conn.Subscribe(t)
		go func() {
			for m := range sub.Channel() {
				fmt.Printf("# %s %s\n", topicString(m.Topic), describe(m.Payload))
			}
		}()
	}
}

// awaitPairing returns once both devices have published their pairing.
func (s *sim) awaitPairing(ctx context.Context, errs <-chan error) error {
	sub := s.conn.Subscribe(bus.T(bus.SingleWild, "pairing"))
	defer sub.Unsubscribe()
	timeout := time.After(5 * time.Second)
	for seen := 0; seen < 2; {
		select {
		case m := <-sub.Channel():
			v := m.Payload.(types.PairingValue)
			fmt.Printf("# %s %s <-> %s\n", topicString(m.Topic), v.Own, v.Peer)
			seen++
		case err := <-errs:
			return err
		case <-timeout:
			return errors.New("pairing did not complete")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// drive runs scripted lines, or reads stdin when there are none.
func (s *sim) drive(ctx context.Context, lines []string) {
	if lines != nil {
		for _, l := range lines {
			if !s.exec(ctx, l) {
				return
			}
		}
		return
	}
	fmt.Println("buttons 1..4, 'wait <ms>', 'strips', 'stats', 'quit'")
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if !s.exec(ctx, sc.Text()) {
			return
		}
	}
}

// exec runs one line and reports whether to keep reading.
func (s *sim) exec(ctx context.Context, line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	steps, err := parseLine(line)
	if err != nil {
		fmt.Println("?", err)
		return true
	}
	for _, st := range steps {
		if ctx.Err() != nil {
			return false
		}
		switch st.kind {
		case stepPress:
			s.press(st.button)
		case stepWait:
			time.Sleep(st.wait)
		case stepStrips:
			s.printStrips()
		case stepStats:
			s.printStats()
		case stepQuit:
			return false
		}
	}
	return true
}

func (s *sim) press(b types.Button) {
	n, ok := s.pins[b]
	if !ok {
		fmt.Println("?", b, "is not wired")
		return
	}
	pin := s.rreg.Pin(n)
	active := !s.doc.Remote.PressedLow()
	pin.Drive(active)
	time.Sleep(pressHold)
	pin.Drive(!active)
	time.Sleep(pressHold)
}

func (s *sim) printStrips() {
	for _, sc := range s.doc.Light.Strips {
		st := s.lreg.Strip(sc.Pin)
		if st == nil {
			continue
		}
		c := st.Pixels()[0]
		fmt.Printf("strip pin %d: #%02x%02x%02x x%d\n", sc.Pin, c.R, c.G, c.B, st.Len())
	}
}

func (s *sim) printStats() {
	sub := s.conn.Subscribe(bus.T("light", "radio"))
	defer sub.Unsubscribe()
	select {
	case m := <-sub.Channel():
		st := m.Payload.(types.RadioStats)
		fmt.Printf("light radio: accepted=%d filtered=%d malformed=%d bad_version=%d unknown_tag=%d\n",
			st.Accepted, st.Filtered, st.Malformed, st.BadVersion, st.UnknownTag)
	default:
		fmt.Println("light radio: nothing received")
	}
	fmt.Printf("air: lost=%d\n", s.world.Air.Lost())
}

func topicString(t bus.Topic) string {
	parts := make([]string, t.Len())
	for i := range parts {
		parts[i] = fmt.Sprint(t.At(i))
	}
	return strings.Join(parts, "/")
}

func describe(p any) string {
	switch v := p.(type) {
	case types.GestureValue:
		if v.From.IsZero() {
			return v.Sequence.String()
		}
		return v.Sequence.String() + " from " + v.From.String()
	case types.AnimationValue:
		return string(v.State)
	}
	return fmt.Sprintf("%+v", p)
}
