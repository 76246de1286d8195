//go:build !rp2040

package main

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"spark-go/types"
)

// Script syntax, one command per line or separated by ';':
//
//	1 1 2      press buttons in turn (labels 1..4)
//	wait 800   sleep for 800ms
//	strips     print the current strip colours
//	stats      print radio counters
//	quit       stop reading input

type stepKind uint8

const (
	stepPress stepKind = iota
	stepWait
	stepStrips
	stepStats
	stepQuit
)

type step struct {
	kind   stepKind
	button types.Button
	wait   time.Duration
}

var errEmpty = errors.New("empty command")

// parseLine turns one command into steps. A line of button labels becomes
// one press step per label.
func parseLine(line string) ([]step, error) {
	f := strings.Fields(line)
	if len(f) == 0 {
		return nil, errEmpty
	}
	switch f[0] {
	case "wait", "w":
		if len(f) != 2 {
			return nil, errors.New("wait takes one argument in ms")
		}
		ms, err := strconv.Atoi(f[1])
		if err != nil || ms < 0 {
			return nil, errors.New("bad wait: " + f[1])
		}
		return []step{{kind: stepWait, wait: time.Duration(ms) * time.Millisecond}}, nil
	case "strips":
		return []step{{kind: stepStrips}}, nil
	case "stats":
		return []step{{kind: stepStats}}, nil
	case "quit", "q":
		return []step{{kind: stepQuit}}, nil
	}
	steps := make([]step, 0, len(f))
	for _, tok := range f {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 1 || n > types.NumButtons {
			return nil, errors.New("unknown command or button: " + tok)
		}
		steps = append(steps, step{kind: stepPress, button: types.Button(n - 1)})
	}
	return steps, nil
}

// splitScript splits a -script flag into command lines.
func splitScript(s string) []string {
	var out []string
	for _, l := range strings.Split(s, ";") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
