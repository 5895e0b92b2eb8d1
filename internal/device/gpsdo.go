package device

import (
	"fmt"
	"strconv"

	"chronolink/internal/transport"
)

// SyncSource selects the 1PPS reference a GPSDO disciplines against.
type SyncSource int

const (
	// SourceGPS uses the internal receiver.
	SourceGPS SyncSource = iota
	// SourceExternal uses the external 1PPS input.
	SourceExternal
	// SourceAuto prefers the internal receiver and falls back to external.
	SourceAuto
)

func (s SyncSource) String() string {
	switch s {
	case SourceGPS:
		return "GPS"
	case SourceExternal:
		return "EXT"
	case SourceAuto:
		return "AUTO"
	default:
		return fmt.Sprintf("SyncSource(%d)", int(s))
	}
}

const (
	gpsdoBaud      = 115200
	gpsdoTimeoutMS = 100
)

// gpsdoSerialBauds are the rates the oscillator's own RS-232 port accepts.
var gpsdoSerialBauds = []int{9600, 19200, 38400, 57600, 115200}

// GPSDO is a GPS disciplined oscillator with a Jackson Labs style SCPI
// surface (FireFly IA OCXO, GPSTCXO). The oscillator can be told to emit NMEA
// sentences; those are absorbed out of query replies and kept for Sentences.
type GPSDO struct {
	Base
	*SCPI
	*NMEA
}

// NewGPSDO sets 115200 baud and a 100 ms timeout on t.
func NewGPSDO(t *transport.Transport) (*GPSDO, error) {
	n := NewNMEA(t)
	g := &GPSDO{
		Base: NewBase(t),
		SCPI: NewSCPI(NewQueryResponseWithSentences(t, n)),
		NMEA: n,
	}
	if err := g.applyDefaults(gpsdoBaud, gpsdoTimeoutMS); err != nil {
		return nil, fmt.Errorf("gpsdo defaults: %w", err)
	}
	return g, nil
}

func (g *GPSDO) Kind() string { return KindGPSDO }

// GPS returns receiver configuration, position, speed and height.
func (g *GPSDO) GPS() (string, error) { return g.Query("GPS?") }

func (g *GPSDO) TrackedSatellites() (string, error) { return g.Query("GPS:SAT:TRA:COUN?") }

// VisibleSatellites returns how many SVs the almanac says should be visible.
func (g *GPSDO) VisibleSatellites() (string, error) { return g.Query("GPS:SAT:VIS:COUN?") }

// SetGPGGARate sets the GPGGA output period in seconds, 0 disables. The
// firmware ignores it during the first 4 minutes of operation.
func (g *GPSDO) SetGPGGARate(sec int) error { return g.rateCommand("GPS:GPGGA", sec) }

// SetGGASTRate sets the period of the extended GGA sentence that carries
// lock state and oscillator health. Disabled for the first 7 minutes.
func (g *GPSDO) SetGGASTRate(sec int) error { return g.rateCommand("GPS:GGAST", sec) }

func (g *GPSDO) SetGPRMCRate(sec int) error { return g.rateCommand("GPS:GPRMC", sec) }

// SetXYZSPRate sets the XYZ speed report period. Needs firmware 0.909+.
func (g *GPSDO) SetXYZSPRate(sec int) error { return g.rateCommand("GPS:XYZSP", sec) }

func (g *GPSDO) rateCommand(cmd string, sec int) error {
	if err := checkInt(cmd, sec, 0, 255); err != nil {
		return err
	}
	return g.Command(cmd + " " + strconv.Itoa(sec))
}

// PTime returns date, UTC time, timezone and the GPSDO-to-GPS time shift.
func (g *GPSDO) PTime() (string, error) { return g.Query("PTIME?") }

func (g *GPSDO) Date() (string, error) { return g.Query("PTIM:DATE?") }

func (g *GPSDO) Time() (string, error) { return g.Query("PTIM:TIME?") }

// TimeString returns UTC time with colon separators.
func (g *GPSDO) TimeString() (string, error) { return g.Query("PTIM:TIME:STR?") }

// TimeInterval returns the GPSDO to GPS time shift at 1e-10 s resolution.
// Same value as SyncTimeInterval.
func (g *GPSDO) TimeInterval() (string, error) { return g.Query("PTIM:TINT?") }

// Sync returns the synchronization status block: source, state, lock,
// health, holdover duration, FEE and time interval.
func (g *GPSDO) Sync() (string, error) { return g.Query("SYNC?") }

func (g *GPSDO) SetSyncSource(src SyncSource) error {
	switch src {
	case SourceGPS, SourceExternal, SourceAuto:
	default:
		return &RangeError{Command: "SYNC:SOUR:MODE", Value: src.String(), Allowed: "{GPS, EXT, AUTO}"}
	}
	return g.Command("SYNC:SOUR:MODE " + src.String())
}

func (g *GPSDO) SyncSourceState() (string, error) { return g.Query("SYNC:SOUR:STATE?") }

func (g *GPSDO) HoldoverDuration() (string, error) { return g.Query("SYNC:HOLD:DUR?") }

// InitiateHoldover forces the oscillator into holdover.
func (g *GPSDO) InitiateHoldover() error { return g.Command("SYNC:HOLD:INIT") }

// RecoverHoldover ends a holdover started with InitiateHoldover.
func (g *GPSDO) RecoverHoldover() error { return g.Command("SYNC:HOLD:REC:INIT") }

func (g *GPSDO) SyncTimeInterval() (string, error) { return g.Query("SYNC:TINT?") }

// SyncImmediate realigns to the reference 1PPS. Ignored in holdover.
func (g *GPSDO) SyncImmediate() error { return g.Command("SYNC:IMME") }

// FrequencyErrorEstimate is measured over 1000 s; values under 1e-12 are
// noise.
func (g *GPSDO) FrequencyErrorEstimate() (string, error) { return g.Query("SYNC:FEE?") }

func (g *GPSDO) Lock() (string, error) { return g.Query("SYNC:LOCK?") }

// Health returns the health bitmask, 0x000 when healthy and locked.
func (g *GPSDO) Health() (string, error) { return g.Query("SYNC:HEALTH?") }

// EFCRelative returns the electronic frequency control value in percent.
func (g *GPSDO) EFCRelative() (string, error) { return g.Query("DIAG:ROSC:EFC:REL?") }

// EFCAbsolute returns the electronic frequency control value in volts.
func (g *GPSDO) EFCAbsolute() (string, error) { return g.Query("DIAG:ROSC:EFC:ABS?") }

func (g *GPSDO) SystemStatus() (string, error) { return g.Query("SYST:STAT?") }

func (g *GPSDO) Echo() (string, error) { return g.Query("SYST:COMM:SER:ECHO?") }

// SetEcho toggles RS-232 command echo. Eat assumes echo is on.
func (g *GPSDO) SetEcho(on bool) error { return g.Command("SYST:COMM:SER:ECHO " + onOff(on)) }

func (g *GPSDO) Prompt() (string, error) { return g.Query("SYST:COMM:SER:PRO?") }

// SetPrompt toggles the "scpi >" prompt. Eat assumes the prompt is on.
func (g *GPSDO) SetPrompt(on bool) error { return g.Command("SYST:COMM:SER:PRO " + onOff(on)) }

func (g *GPSDO) SerialBaud() (string, error) { return g.Query("SYST:COMM:SER:BAUD?") }

// SetSerialBaud changes the oscillator's port rate. The host side is not
// changed; call Transport().SetBaud afterwards or the link is lost.
func (g *GPSDO) SetSerialBaud(rate int) error {
	const cmd = "SYST:COMM:SER:BAUD"
	if err := checkMember(cmd, rate, gpsdoSerialBauds); err != nil {
		return err
	}
	return g.Command(cmd + " " + strconv.Itoa(rate))
}

// Servo returns the servo loop parameters in use.
func (g *GPSDO) Servo() (string, error) { return g.Query("SERV?") }

// SetCoarseDAC sets the coarse DAC behind the EFC, [0, 255].
func (g *GPSDO) SetCoarseDAC(v int) error {
	const cmd = "SERV:COARSD"
	if err := checkInt(cmd, v, 0, 255); err != nil {
		return err
	}
	return g.Command(cmd + " " + strconv.Itoa(v))
}

// SetEFCScale sets the PID proportional coefficient, [0, 500]. Typical
// values: 0.7 for a double oven OCXO, 6.0 for a single oven.
func (g *GPSDO) SetEFCScale(v float64) error { return g.floatCommand("SERV:EFCS", v, 0, 500) }

// SetEFCDamping sets the DAC low pass filter, [0, 4000], typically [2, 50].
func (g *GPSDO) SetEFCDamping(v float64) error { return g.floatCommand("SERV:EFCD", v, 0, 4000) }

// SetTempCo sets the temperature compensation coefficient, [-4000, 4000].
func (g *GPSDO) SetTempCo(v float64) error { return g.floatCommand("SERV:TEMPCO", v, -4000, 4000) }

// SetAging sets the OCXO aging coefficient, [-10, 10].
func (g *GPSDO) SetAging(v float64) error { return g.floatCommand("SERV:AGING", v, -10, 10) }

// SetPhaseCo sets the PID integral coefficient, [-100, 100], typically
// [10, 30].
func (g *GPSDO) SetPhaseCo(v float64) error { return g.floatCommand("SERV:PHASECO", v, -100, 100) }

func (g *GPSDO) floatCommand(cmd string, v, lo, hi float64) error {
	if err := checkFloat(cmd, v, lo, hi); err != nil {
		return err
	}
	return g.Command(cmd + " " + formatFloat(v))
}

// PPSOffset returns the offset to UTC in nanoseconds.
func (g *GPSDO) PPSOffset() (string, error) { return g.Query("SERV:1PPS?") }

// SetPPSOffset sets the offset to UTC in 16.7 ns steps.
func (g *GPSDO) SetPPSOffset(steps int) error {
	return g.Command("SERV:1PPS " + strconv.Itoa(steps))
}

// SetTrace sets the debug trace period in seconds, 0 disables. Needs
// firmware 0.913+.
func (g *GPSDO) SetTrace(sec int) error {
	const cmd = "SERV:TRAC"
	if sec < 0 {
		return &RangeError{Command: cmd, Value: strconv.Itoa(sec), Allowed: "[0, +inf)"}
	}
	return g.Command(cmd + " " + strconv.Itoa(sec))
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
