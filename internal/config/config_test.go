package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"chronolink/internal/serialport"
)

func writeTempConfig(t *testing.T, name, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

func TestLoad_RequiresPorts(t *testing.T) {
	path := writeTempConfig(t, "cfg.yaml", "log:\n  level: debug\n")
	_, err := Load(path)
	requireErrEq(t, err, "ports must contain at least one entry")
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, "cfg.yaml", "ports:\n  - device: /dev/ttyUSB0\n    profile: GPSDO\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	p := cfg.Ports[0]
	if p.Name != "port0" {
		t.Fatalf("name=%q want port0", p.Name)
	}
	if p.Profile != "gpsdo" {
		t.Fatalf("profile=%q want gpsdo", p.Profile)
	}
	if p.Baud != 115200 {
		t.Fatalf("baud=%d want 115200", p.Baud)
	}
	if p.Timeout != DefaultTimeout {
		t.Fatalf("timeout=%s want %s", p.Timeout, DefaultTimeout)
	}
	if p.Driver != serialport.DefaultDriver() {
		t.Fatalf("driver=%q want %q", p.Driver, serialport.DefaultDriver())
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log.level=%q want info", cfg.Log.Level)
	}
}

func TestLoad_ExplicitValuesKept(t *testing.T) {
	path := writeTempConfig(t, "cfg.yml", `
log:
  level: WARN
  no_color: true
ports:
  - name: rx
    device: /dev/ttyACM0
    profile: gnss
    driver: tarm
    baud: 38400
    timeout: 500ms
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	p, ok := cfg.Port("rx")
	if !ok {
		t.Fatalf("port rx not found")
	}
	if p.Baud != 38400 || p.Timeout != 500*time.Millisecond || p.Driver != serialport.DriverTarm {
		t.Fatalf("port=%+v", p)
	}
	if cfg.Log.Level != "warn" || !cfg.Log.NoColor {
		t.Fatalf("log=%+v", cfg.Log)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeTempConfig(t, "cfg.toml", `
[log]
level = "debug"

[[ports]]
name = "clock"
device = "/dev/ttyS1"
profile = "csac"
timeout = "1s"

[[ports]]
name = "board"
device = "/dev/ttyS2"
profile = "fpga"
driver = "bugst"

[pps]
enable = true
line = 17
port = "clock"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Ports) != 2 {
		t.Fatalf("ports=%d want 2", len(cfg.Ports))
	}
	if cfg.Ports[0].Baud != 57600 || cfg.Ports[0].Timeout != time.Second {
		t.Fatalf("clock=%+v", cfg.Ports[0])
	}
	if cfg.Ports[1].Baud != 57600 || cfg.Ports[1].Driver != serialport.DriverBugst {
		t.Fatalf("board=%+v", cfg.Ports[1])
	}
	if !cfg.PPS.Enable || cfg.PPS.Chip != DefaultPPSChip || cfg.PPS.Line != 17 {
		t.Fatalf("pps=%+v", cfg.PPS)
	}
}

func TestLoad_PortValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "DeviceRequired",
			body: "ports:\n  - profile: gpsdo\n",
			want: "ports[0].device is required",
		},
		{
			name: "ProfileRequired",
			body: "ports:\n  - device: /dev/ttyS0\n",
			want: "ports[0].profile is required",
		},
		{
			name: "UnknownProfile",
			body: "ports:\n  - device: /dev/ttyS0\n    profile: rubidium\n",
			want: "ports[0].profile must be one of gpsdo, gnss, csac, fpga",
		},
		{
			name: "UnknownDriver",
			body: "ports:\n  - device: /dev/ttyS0\n    profile: gnss\n    driver: usb\n",
			want: "ports[0].driver must be one of termios, bugst, tarm",
		},
		{
			name: "BaudNotInTable",
			body: "ports:\n  - device: /dev/ttyS0\n    profile: gnss\n    baud: 9601\n",
			want: "ports[0].baud 9601 is not a supported rate",
		},
		{
			name: "NegativeTimeout",
			body: "ports:\n  - device: /dev/ttyS0\n    profile: gnss\n    timeout: -1s\n",
			want: "ports[0].timeout must be >= 0",
		},
		{
			name: "SubMillisecondTimeout",
			body: "ports:\n  - device: /dev/ttyS0\n    profile: gnss\n    timeout: 1500us\n",
			want: "ports[0].timeout must be a whole number of milliseconds",
		},
		{
			name: "DuplicateName",
			body: "ports:\n  - name: a\n    device: /dev/ttyS0\n    profile: gnss\n  - name: a\n    device: /dev/ttyS1\n    profile: csac\n",
			want: `ports[1].name "a" duplicates ports[0].name`,
		},
		{
			name: "PPSUnknownPort",
			body: "ports:\n  - device: /dev/ttyS0\n    profile: gpsdo\npps:\n  enable: true\n  port: nope\n",
			want: `pps.port "nope" does not name a configured port`,
		},
		{
			name: "PPSNegativeLine",
			body: "ports:\n  - device: /dev/ttyS0\n    profile: gpsdo\npps:\n  enable: true\n  line: -2\n",
			want: "pps.line must be >= 0",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempConfig(t, "cfg.yaml", tc.body)
			_, err := Load(path)
			requireErrEq(t, err, tc.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
