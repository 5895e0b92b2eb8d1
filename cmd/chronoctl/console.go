package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"chronolink/internal/device"
	"chronolink/internal/framing"
	"chronolink/internal/pps"
	"chronolink/internal/session"
)

var errQuit = errors.New("quit")

type (
	identifier interface{ Identify() (string, error) }
	querier    interface{ Query(string) (string, error) }
	sentences  interface {
		Listen() (string, error)
		Drain() string
	}
	ubxPoller interface {
		MonVer() (string, error)
		MonHW() (string, error)
		NavPVT() (string, error)
		NavTimeUTC() (string, error)
		CfgTP5() (string, error)
	}
)

// console runs dot-commands and raw queries against one selected port.
type console struct {
	s   *session.Session
	cur *session.Port
	pps *pps.Monitor
	out io.Writer
}

func newConsole(s *session.Session, cur *session.Port, mon *pps.Monitor, out io.Writer) *console {
	return &console{s: s, cur: cur, pps: mon, out: out}
}

func (c *console) prompt() string {
	return c.cur.Name() + "> "
}

// exec runs one input line. It returns errQuit for .quit.
func (c *console) exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, ".") {
		return c.query(line)
	}

	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case ".quit", ".exit":
		return errQuit
	case ".help":
		c.help()
		return nil
	case ".ports":
		c.ports()
		return nil
	case ".use":
		return c.use(args)
	case ".idn":
		id, ok := c.cur.Profile.(identifier)
		if !ok {
			return c.unsupported(cmd)
		}
		return c.print(id.Identify())
	case ".listen":
		n, ok := c.cur.Profile.(sentences)
		if !ok {
			return c.unsupported(cmd)
		}
		return c.print(n.Listen())
	case ".nmea":
		n, ok := c.cur.Profile.(sentences)
		if !ok {
			return c.unsupported(cmd)
		}
		fmt.Fprintln(c.out, n.Drain())
		return nil
	case ".ubx":
		return c.ubx(args)
	case ".raw":
		if len(args) != 1 {
			return fmt.Errorf("usage: .raw <\\xNN...>")
		}
		return c.print(c.cur.Transport.QueryRaw(args[0]))
	case ".baud":
		n, err := intArg(cmd, args)
		if err != nil {
			return err
		}
		got, err := c.cur.Transport.SetBaud(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "baud=%d\n", got)
		return nil
	case ".timeout":
		n, err := intArg(cmd, args)
		if err != nil {
			return err
		}
		if err := c.cur.Transport.SetTimeout(n); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "timeout=%dms\n", c.cur.Transport.Timeout())
		return nil
	case ".steer":
		return c.steer(args)
	case ".telemetry":
		cs, ok := c.cur.Profile.(*device.CSAC)
		if !ok {
			return c.unsupported(cmd)
		}
		if err := c.print(cs.TelemetryHeader()); err != nil {
			return err
		}
		return c.print(cs.TelemetryData())
	case ".lock":
		cs, ok := c.cur.Profile.(*device.CSAC)
		if !ok {
			return c.unsupported(cmd)
		}
		phrase := strings.TrimSpace(strings.TrimPrefix(line, cmd))
		if err := cs.LockSteeringIrrevocably(device.LockConfirmation(phrase)); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "steer value latched")
		return nil
	case ".pps":
		if c.pps == nil {
			return fmt.Errorf("pps monitor not enabled")
		}
		snap := c.pps.Snapshot()
		fmt.Fprintf(c.out, "edges=%d missed=%d interval=%s jitter=%s max_jitter=%s\n",
			snap.Edges, snap.Missed, snap.Interval, snap.Jitter, snap.MaxJitter)
		if snap.LastError != "" {
			fmt.Fprintf(c.out, "last_error=%s\n", snap.LastError)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %s (try .help)", cmd)
	}
}

// query sends a free-form line. Profiles with a query surface route it
// through their sentence absorber.
func (c *console) query(line string) error {
	if q, ok := c.cur.Profile.(querier); ok {
		return c.print(q.Query(line))
	}
	return c.print(c.cur.Transport.Query(line))
}

func (c *console) ubx(args []string) error {
	u, ok := c.cur.Profile.(ubxPoller)
	if !ok {
		return c.unsupported(".ubx")
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: .ubx monver|monhw|pvt|timeutc|tp5")
	}
	var (
		reply string
		err   error
	)
	switch strings.ToLower(args[0]) {
	case "monver":
		reply, err = u.MonVer()
	case "monhw":
		reply, err = u.MonHW()
	case "pvt":
		reply, err = u.NavPVT()
	case "timeutc":
		reply, err = u.NavTimeUTC()
	case "tp5":
		reply, err = u.CfgTP5()
	default:
		return fmt.Errorf("unknown ubx message %q", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, reply)

	frames, err := device.Decode(reply)
	if err != nil {
		return err
	}
	for _, f := range frames {
		fmt.Fprintf(c.out, "  @%d class=0x%02x id=0x%02x len=%d ck=%v payload=%s\n",
			f.Offset, f.Class, f.ID, len(f.Payload), f.ChecksumOK, framing.Escape(f.Payload))
	}
	return nil
}

func (c *console) steer(args []string) error {
	cs, ok := c.cur.Profile.(*device.CSAC)
	if !ok {
		return c.unsupported(".steer")
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: .steer abs|rel <pp15>")
	}
	v, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf(".steer: %w", err)
	}
	switch args[0] {
	case "abs":
		return c.print(cs.SteerAbsolute(v))
	case "rel":
		return c.print(cs.SteerRelative(v))
	default:
		return fmt.Errorf("usage: .steer abs|rel <pp15>")
	}
}

func (c *console) use(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: .use <name|index>")
	}
	var (
		p   *session.Port
		err error
	)
	if i, convErr := strconv.Atoi(args[0]); convErr == nil {
		p, err = c.s.Port(i)
	} else {
		p, err = c.s.ByName(args[0])
	}
	if err != nil {
		return err
	}
	c.cur = p
	return nil
}

func (c *console) ports() {
	for i, p := range c.s.Ports() {
		mark := " "
		if p == c.cur {
			mark = "*"
		}
		t := p.Transport
		fmt.Fprintf(c.out, "%s %d %-8s %-6s %s baud=%d timeout=%dms\n",
			mark, i, p.Name(), p.Profile.Kind(), t.Location(), t.Baud(), t.Timeout())
	}
}

func (c *console) help() {
	fmt.Fprint(c.out, `.ports                 list ports
.use <name|index>      select a port
.idn                   *IDN? on SCPI instruments
.listen                read and buffer NMEA sentences
.nmea                  print and clear buffered NMEA sentences
.ubx <msg>             poll monver, monhw, pvt, timeutc or tp5
.raw <\xNN...>         send escaped bytes, print escaped reply
.baud <rate>           set link rate
.timeout <ms>          set read timeout
.steer abs|rel <pp15>  CSAC frequency steering
.telemetry             CSAC telemetry header and data
.lock <confirmation>   CSAC irrevocable steer latch
.pps                   1PPS monitor statistics
.quit                  exit
anything else is sent as a query
`)
}

func (c *console) print(reply string, err error) error {
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, reply)
	return err
}

func (c *console) unsupported(cmd string) error {
	return fmt.Errorf("%s not supported by %s profile", cmd, c.cur.Profile.Kind())
}

func intArg(cmd string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s <n>", cmd)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cmd, err)
	}
	return n, nil
}
