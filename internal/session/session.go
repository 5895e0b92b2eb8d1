package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"chronolink/internal/config"
	"chronolink/internal/device"
	"chronolink/internal/serialport"
	"chronolink/internal/transport"
)

var (
	ErrNoPort = errors.New("session: no such port")
	ErrClosed = errors.New("session: closed")
)

// Opener opens one channel. serialport.Open in production.
type Opener func(serialport.Config) (serialport.Port, error)

// Port is one configured instrument: its channel, the Transport over it and
// the device profile built on that Transport.
type Port struct {
	Config    config.PortConfig
	Transport *transport.Transport
	Profile   device.Profile

	ch serialport.Port
}

func (p *Port) Name() string { return p.Config.Name }

// Session owns every channel it opened. The port list is fixed at Open.
type Session struct {
	ports  []*Port
	byName map[string]int
	log    zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// Open opens each configured port in order. If any port fails, channels
// already opened are closed before the error is returned.
func Open(cfg config.Config, open Opener, log zerolog.Logger) (*Session, error) {
	if open == nil {
		open = serialport.Open
	}
	s := &Session{
		byName: make(map[string]int, len(cfg.Ports)),
		log:    log,
	}
	for i, pc := range cfg.Ports {
		p, err := s.openPort(i, pc, open)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("port %s: %w", pc.Name, err)
		}
		s.byName[pc.Name] = i
		s.ports = append(s.ports, p)
	}
	return s, nil
}

func (s *Session) openPort(idx int, pc config.PortConfig, open Opener) (*Port, error) {
	ch, err := open(serialport.Config{
		Driver:  pc.Driver,
		Device:  pc.Device,
		Baud:    pc.Baud,
		Timeout: pc.Timeout,
	})
	if err != nil {
		return nil, err
	}

	plog := s.log.With().Str("name", pc.Name).Str("profile", pc.Profile).Logger()
	t := transport.NewWithConfig(idx, ch, transport.Config{Logger: &plog})

	// The profile applies its power-up defaults; configured values win.
	prof, err := device.Open(pc.Profile, t)
	if err == nil {
		err = t.SetTimeout(int(pc.Timeout.Milliseconds()))
	}
	if err == nil {
		_, err = t.SetBaud(pc.Baud)
	}
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	plog.Info().Str("device", pc.Device).Str("driver", pc.Driver).Int("baud", t.Baud()).Int("timeout_ms", t.Timeout()).Msg("port opened")
	return &Port{Config: pc, Transport: t, Profile: prof, ch: ch}, nil
}

// Len is the number of open ports.
func (s *Session) Len() int { return len(s.ports) }

// Port returns the i-th configured port.
func (s *Session) Port(i int) (*Port, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(s.ports) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrNoPort, i, len(s.ports))
	}
	return s.ports[i], nil
}

// ByName returns the port with the configured name.
func (s *Session) ByName(name string) (*Port, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	i, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoPort, name)
	}
	return s.ports[i], nil
}

// Ports returns the ports in configuration order.
func (s *Session) Ports() []*Port {
	out := make([]*Port, len(s.ports))
	copy(out, s.ports)
	return out
}

func (s *Session) usable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close closes every channel exactly once. Later calls return nil.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ports := s.ports
	s.mu.Unlock()

	var errs []error
	for _, p := range ports {
		if err := p.ch.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", p.Config.Name, err))
			continue
		}
		s.log.Info().Str("name", p.Config.Name).Msg("port closed")
	}
	return errors.Join(errs...)
}
