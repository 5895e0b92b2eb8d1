package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chronolink/internal/config"
	"chronolink/internal/device"
	"chronolink/internal/framing"
	"chronolink/internal/pps"
	"chronolink/internal/serialport"
	"chronolink/internal/session"
	"chronolink/internal/transport/transporttest"
)

type bench struct {
	s     *session.Session
	c     *console
	out   *bytes.Buffer
	chans map[string]*transporttest.Channel
}

// newBench opens a session with one port per profile on scripted channels.
func newBench(t *testing.T, scripts map[string]*transporttest.Channel) *bench {
	t.Helper()
	cfg := config.Config{Ports: []config.PortConfig{
		{Name: "osc", Device: "/dev/ttyUSB0", Profile: device.KindGPSDO, Baud: 115200, Timeout: 200 * time.Millisecond},
		{Name: "rx", Device: "/dev/ttyACM0", Profile: device.KindGNSS, Baud: 9600, Timeout: 200 * time.Millisecond},
		{Name: "clock", Device: "/dev/ttyS1", Profile: device.KindCSAC, Baud: 57600, Timeout: 200 * time.Millisecond},
	}}
	chans := map[string]*transporttest.Channel{}
	open := func(pc serialport.Config) (serialport.Port, error) {
		ch, ok := scripts[pc.Device]
		if !ok {
			ch = transporttest.New()
		}
		ch.Name = pc.Device
		chans[pc.Device] = ch
		return ch, nil
	}
	s, err := session.Open(cfg, open, zerolog.Nop())
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	cur, _ := s.Port(0)
	out := &bytes.Buffer{}
	return &bench{s: s, c: newConsole(s, cur, nil, out), out: out, chans: chans}
}

func TestConsole_Identify(t *testing.T) {
	b := newBench(t, map[string]*transporttest.Channel{
		"/dev/ttyUSB0": transporttest.New("Jackson Labs, FireFly-IIA, 1234, 0.9", ""),
	})
	if err := b.c.exec(".idn"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got := b.out.String(); got != "Jackson Labs, FireFly-IIA, 1234, 0.9\n" {
		t.Fatalf("out=%q", got)
	}
}

func TestConsole_QueryAbsorbsSentences(t *testing.T) {
	b := newBench(t, map[string]*transporttest.Channel{
		"/dev/ttyUSB0": transporttest.New("$GPGGA,123519*47", "", "1", ""),
	})
	if err := b.c.exec("SYNC:LOCK?"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if err := b.c.exec(".nmea"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got := b.out.String(); got != "1\n$GPGGA,123519*47\n" {
		t.Fatalf("out=%q", got)
	}
	if w := b.chans["/dev/ttyUSB0"].Written(); len(w) != 1 || w[0] != "SYNC:LOCK?\r\n" {
		t.Fatalf("written=%q", w)
	}
}

func TestConsole_UBXPollDecodes(t *testing.T) {
	reply := framing.EncodeUBX(framing.ClassMON, framing.IDMonVer, []byte("ROM"))
	rx := transporttest.New()
	rx.PushBytes(reply)

	b := newBench(t, map[string]*transporttest.Channel{"/dev/ttyACM0": rx})
	if err := b.c.exec(".use rx"); err != nil {
		t.Fatalf("use: %v", err)
	}
	if err := b.c.exec(".ubx monver"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	out := b.out.String()
	if !strings.HasPrefix(out, framing.Escape(reply)+"\n") {
		t.Fatalf("out=%q", out)
	}
	if !strings.Contains(out, "class=0x0a id=0x04 len=3 ck=true") {
		t.Fatalf("decoded frame missing: %q", out)
	}
	if w := rx.Written(); len(w) != 1 || w[0] != "\xb5\x62\x0a\x04\x00\x00\x0e\x34" {
		t.Fatalf("written=%q", w)
	}
}

func TestConsole_UnsupportedForProfile(t *testing.T) {
	b := newBench(t, nil)
	if err := b.c.exec(".use 1"); err != nil {
		t.Fatalf("use: %v", err)
	}
	err := b.c.exec(".idn")
	if err == nil || err.Error() != ".idn not supported by gnss profile" {
		t.Fatalf("err=%v", err)
	}
}

func TestConsole_BaudIgnoresNonMembers(t *testing.T) {
	b := newBench(t, nil)
	if err := b.c.exec(".baud 9601"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if err := b.c.exec(".baud 19200"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got := b.out.String(); got != "baud=115200\nbaud=19200\n" {
		t.Fatalf("out=%q", got)
	}
}

func TestConsole_CSACGuards(t *testing.T) {
	b := newBench(t, nil)
	if err := b.c.exec(".use clock"); err != nil {
		t.Fatalf("use: %v", err)
	}
	if err := b.c.exec(".steer abs 30000000"); !errors.Is(err, device.ErrOutOfRange) {
		t.Fatalf("steer err=%v want ErrOutOfRange", err)
	}
	if err := b.c.exec(".lock yes"); !errors.Is(err, device.ErrLockNotConfirmed) {
		t.Fatalf("lock err=%v want ErrLockNotConfirmed", err)
	}
	if w := b.chans["/dev/ttyS1"].Written(); len(w) != 0 {
		t.Fatalf("written=%q want nothing", w)
	}

	if err := b.c.exec(".lock " + string(device.ConfirmSteerLock)); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if w := b.chans["/dev/ttyS1"].Written(); len(w) != 1 || w[0] != "!FL\r\n" {
		t.Fatalf("written=%q", w)
	}
}

func TestConsole_PPSRequiresMonitor(t *testing.T) {
	b := newBench(t, nil)
	if err := b.c.exec(".pps"); err == nil {
		t.Fatalf("expected error without monitor")
	}

	b.c.pps = pps.New(pps.Config{Chip: "gpiochip0", Line: 4})
	if err := b.c.exec(".pps"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if !strings.HasPrefix(b.out.String(), "edges=0 missed=0") {
		t.Fatalf("out=%q", b.out.String())
	}
}

func TestRunConsole_StopsAtQuit(t *testing.T) {
	b := newBench(t, map[string]*transporttest.Channel{
		"/dev/ttyUSB0": transporttest.New("Jackson Labs, FireFly-IIA, 1234, 0.9", ""),
	})
	script := ".ports\n.bogus\n\n.quit\n.idn\n"
	var prompts, errOut bytes.Buffer
	ed := newScriptEditor(strings.NewReader(script), &prompts)

	if err := runConsole(b.c, ed, &errOut); err != nil {
		t.Fatalf("runConsole: %v", err)
	}
	if !strings.Contains(errOut.String(), "unknown command .bogus") {
		t.Fatalf("errOut=%q", errOut.String())
	}
	if !strings.Contains(b.out.String(), "* 0 osc") {
		t.Fatalf("ports listing=%q", b.out.String())
	}
	if strings.Count(prompts.String(), "osc> ") != 4 {
		t.Fatalf("prompts=%q", prompts.String())
	}
	if w := b.chans["/dev/ttyUSB0"].Written(); len(w) != 0 {
		t.Fatalf("command after .quit ran: %q", w)
	}
}

func TestRunConsole_EOFEnds(t *testing.T) {
	b := newBench(t, nil)
	ed := newScriptEditor(strings.NewReader(".help\n"), nil)
	if err := runConsole(b.c, ed, &bytes.Buffer{}); err != nil {
		t.Fatalf("runConsole: %v", err)
	}
	if !strings.Contains(b.out.String(), ".ubx <msg>") {
		t.Fatalf("help missing: %q", b.out.String())
	}
}
