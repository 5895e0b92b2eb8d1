package device

import (
	"fmt"
	"strconv"

	"chronolink/internal/transport"
)

const (
	csacBaud      = 57600
	csacTimeoutMS = 100

	// steerLimit bounds frequency steering, in parts per 1e15.
	steerLimit = 20000000
)

// LockConfirmation must be ConfirmSteerLock for LockSteeringIrrevocably to
// transmit anything.
type LockConfirmation string

// ConfirmSteerLock acknowledges that the steer latch has a limited number of
// hardware write cycles.
const ConfirmSteerLock LockConfirmation = "I understand the steer latch has finite write cycles"

// CSAC is a Microsemi SA.45s chip scale atomic clock. It speaks short
// '!'-prefixed commands, not SCPI.
type CSAC struct {
	Base
	*QueryResponse
}

// NewCSAC sets 57600 baud and a 100 ms timeout on t.
func NewCSAC(t *transport.Transport) (*CSAC, error) {
	c := &CSAC{Base: NewBase(t), QueryResponse: NewQueryResponse(t)}
	if err := c.applyDefaults(csacBaud, csacTimeoutMS); err != nil {
		return nil, fmt.Errorf("csac defaults: %w", err)
	}
	return c, nil
}

func (c *CSAC) Kind() string { return KindCSAC }

// TelemetryHeader returns the column names for TelemetryData.
func (c *CSAC) TelemetryHeader() (string, error) { return c.Query("!6") }

// TelemetryData returns one CSV telemetry row.
func (c *CSAC) TelemetryData() (string, error) { return c.Query("!^") }

// SteerAbsolute sets the frequency offset, in pp1e15, and returns the unit's
// reply.
func (c *CSAC) SteerAbsolute(pp15 int) (string, error) { return c.steer("!FA", pp15) }

// SteerRelative adds pp15 to the current frequency offset.
func (c *CSAC) SteerRelative(pp15 int) (string, error) { return c.steer("!FD", pp15) }

func (c *CSAC) steer(cmd string, v int) (string, error) {
	if err := checkInt(cmd, v, -steerLimit, steerLimit); err != nil {
		return "", err
	}
	return c.Query(cmd + strconv.Itoa(v))
}

// LockSteeringIrrevocably latches the current steer value into non-volatile
// memory. The latch supports a finite number of writes over the life of the
// unit. Nothing is sent unless confirm is ConfirmSteerLock.
func (c *CSAC) LockSteeringIrrevocably(confirm LockConfirmation) error {
	if confirm != ConfirmSteerLock {
		return ErrLockNotConfirmed
	}
	return c.Command("!FL")
}
