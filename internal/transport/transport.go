package transport

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chronolink/internal/framing"
)

// Channel is an opened, addressable serial channel handed over by the session.
// The Transport never opens or closes it.
type Channel interface {
	// Location identifies the channel, typically the device path.
	Location() string
	WriteBytes(p []byte) error
	// ReadChunk performs one underlying read. It returns an empty slice and a
	// nil error when the channel stayed quiet for its configured timeout.
	ReadChunk() ([]byte, error)
	SetBaud(rate int) error
	SetTimeout(d time.Duration) error
}

const (
	// EatDefault is the number of reads Eat discards when a command echoes
	// itself and a prompt.
	EatDefault = 2

	DefaultMaxChunks  = 4096
	DefaultTerminator = "\r\n"
)

// Transport owns the protocol-facing side of one channel: baud and timeout
// bookkeeping, command writes, and the drain loop that assembles replies.
//
// A Transport is not safe for concurrent use. A query writes and then drains;
// callers sharing one Transport between profiles must serialize so no other
// write lands in between.
type Transport struct {
	idx      int
	location string
	ch       Channel

	baud      int
	timeoutMS int

	terminator string
	maxChunks  int
	log        zerolog.Logger
}

// Config holds optional Transport settings. Zero values select the defaults.
type Config struct {
	// Terminator is appended by Write. Empty means DefaultTerminator.
	Terminator string
	// MaxChunks bounds the number of non-empty chunks a single drain accepts.
	MaxChunks int
	// Logger receives writes at debug and reads at trace. Nil disables logging.
	Logger *zerolog.Logger
}

// New wraps an opened channel with default settings.
func New(idx int, ch Channel) *Transport {
	return NewWithConfig(idx, ch, Config{})
}

// NewWithConfig wraps an opened channel. Baud and timeout start unset (0)
// until the session or a device profile configures them.
func NewWithConfig(idx int, ch Channel, cfg Config) *Transport {
	t := &Transport{
		idx:        idx,
		ch:         ch,
		terminator: cfg.Terminator,
		maxChunks:  cfg.MaxChunks,
		log:        zerolog.Nop(),
	}
	if t.terminator == "" {
		t.terminator = DefaultTerminator
	}
	if t.maxChunks <= 0 {
		t.maxChunks = DefaultMaxChunks
	}
	if cfg.Logger != nil {
		t.log = *cfg.Logger
	}
	if ch != nil {
		t.location = ch.Location()
	}
	t.log = t.log.With().Int("port", idx).Str("location", t.location).Logger()
	return t
}

func (t *Transport) Index() int       { return t.idx }
func (t *Transport) Location() string { return t.location }

// Baud returns the current baud rate; 0 means unset or custom.
func (t *Transport) Baud() int { return t.baud }

// Timeout returns the current timeout in milliseconds; 0 means none applied.
func (t *Transport) Timeout() int { return t.timeoutMS }

// SetBaud applies rate when it is a member of the baud table and differs
// from the current rate, and returns the rate in effect afterwards.
// Non-members are ignored without error. 0 is recorded but not pushed to the
// channel, since it only marks the rate as custom.
func (t *Transport) SetBaud(rate int) (int, error) {
	if rate == t.baud || !ValidBaud(rate) {
		return t.baud, nil
	}
	if rate != 0 {
		if t.ch == nil {
			return t.baud, ErrClosed
		}
		if err := t.ch.SetBaud(rate); err != nil {
			return t.baud, fmt.Errorf("set baud %d on %s: %w", rate, t.location, err)
		}
	}
	t.log.Debug().Int("baud", rate).Int("prev", t.baud).Msg("baud changed")
	t.baud = rate
	return t.baud, nil
}

// SetTimeout applies ms to the channel when it differs from the current value.
func (t *Transport) SetTimeout(ms int) error {
	if ms == t.timeoutMS {
		return nil
	}
	if t.ch == nil {
		return ErrClosed
	}
	if err := t.ch.SetTimeout(time.Duration(ms) * time.Millisecond); err != nil {
		return fmt.Errorf("set timeout %dms on %s: %w", ms, t.location, err)
	}
	t.timeoutMS = ms
	return nil
}

// Write transmits one command line, appending the terminator if missing.
func (t *Transport) Write(cmd string) error {
	if t.ch == nil {
		return ErrClosed
	}
	line := cmd
	if t.terminator != "" && !strings.HasSuffix(line, t.terminator) {
		line += t.terminator
	}
	t.log.Debug().Str("cmd", cmd).Msg("write")
	if err := t.ch.WriteBytes([]byte(line)); err != nil {
		return fmt.Errorf("write %q to %s: %w", cmd, t.location, err)
	}
	return nil
}

// WriteRaw decodes a `\xNN` escaped packet and transmits the bytes as-is.
func (t *Transport) WriteRaw(escaped string) error {
	if t.ch == nil {
		return ErrClosed
	}
	b, err := framing.Unescape(escaped)
	if err != nil {
		return err
	}
	t.log.Debug().Str("raw", escaped).Msg("write raw")
	if err := t.ch.WriteBytes(b); err != nil {
		return fmt.Errorf("write %d raw bytes to %s: %w", len(b), t.location, err)
	}
	return nil
}

// Read drains the channel: after a non-empty first read it keeps reading,
// joining chunks with "\n", until a read comes back empty. Trailing
// whitespace is trimmed from every chunk. An empty first read returns "".
func (t *Transport) Read() (string, error) {
	var sb strings.Builder
	err := t.drain(func(chunk []byte) bool {
		s := strings.TrimRight(string(chunk), " \t\r\n\v\f")
		if s == "" {
			return false
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s)
		return true
	})
	out := sb.String()
	t.log.Trace().Str("reply", out).Msg("read")
	return out, err
}

// ReadRaw drains like Read but concatenates chunks untouched, escaped to
// `\xNN` text, with no separator.
func (t *Transport) ReadRaw() (string, error) {
	var sb strings.Builder
	err := t.drain(func(chunk []byte) bool {
		if len(chunk) == 0 {
			return false
		}
		sb.WriteString(framing.Escape(chunk))
		return true
	})
	out := sb.String()
	t.log.Trace().Str("reply", out).Msg("read raw")
	return out, err
}

// drain issues reads until accept reports an empty chunk, the channel
// fails, or maxChunks chunks have been accepted.
func (t *Transport) drain(accept func(chunk []byte) bool) error {
	if t.ch == nil {
		return ErrClosed
	}
	for n := 0; ; n++ {
		if n == t.maxChunks {
			return ErrDrainLimit
		}
		chunk, err := t.ch.ReadChunk()
		if err != nil {
			return fmt.Errorf("read from %s: %w", t.location, err)
		}
		if !accept(chunk) {
			return nil
		}
	}
}

// Query writes cmd and drains the reply.
func (t *Transport) Query(cmd string) (string, error) {
	if err := t.Write(cmd); err != nil {
		return "", err
	}
	return t.Read()
}

// QueryRaw writes an escaped packet and drains the escaped reply.
func (t *Transport) QueryRaw(escaped string) (string, error) {
	if err := t.WriteRaw(escaped); err != nil {
		return "", err
	}
	return t.ReadRaw()
}

// Eat issues n reads and discards them. It is meant for commands whose only
// output is the echoed command line and a prompt; it does not look at what
// it throws away.
func (t *Transport) Eat(n int) error {
	if t.ch == nil {
		return ErrClosed
	}
	for i := 0; i < n; i++ {
		if _, err := t.ch.ReadChunk(); err != nil {
			return fmt.Errorf("read from %s: %w", t.location, err)
		}
	}
	return nil
}
