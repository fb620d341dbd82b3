package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/womat/debug"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = writeFile(t, "rcswitch.yaml", `
emulate: true
transmitter:
  gpio: 4
  protocol: 2
  repeat: 5
  pulselength: 320
receiver:
  gpio: 22
  terminator: pullup
  polltime: 250
debug:
  flag: debug
mqtt:
  connection: tcp://127.0.0.1:1883
  topic: home/rf
`)

	if err := c.LoadConfig(); err != nil {
		t.Fatal(err)
	}

	if !c.Emulate {
		t.Error("emulate not set")
	}
	if c.Transmitter != (TransmitterConfig{Gpio: 4, Protocol: 2, Repeat: 5, PulseLength: 320}) {
		t.Errorf("transmitter = %+v", c.Transmitter)
	}
	if c.Receiver.Gpio != 22 || c.Receiver.Terminator != "pullup" || c.Receiver.PollTime != 250*time.Millisecond {
		t.Errorf("receiver = %+v", c.Receiver)
	}
	// not in the file, the default is kept
	if c.Receiver.Tolerance != 60 || c.Receiver.Separation != 4300 {
		t.Errorf("receiver defaults = %+v", c.Receiver)
	}
	if c.Debug.Flag != debug.Warning|debug.Info|debug.Error|debug.Fatal|debug.Debug {
		t.Errorf("debug flag = %v", c.Debug.Flag)
	}
	if c.MQTT.Connection != "tcp://127.0.0.1:1883" || c.MQTT.Topic != "home/rf" || c.MQTT.ClientID != "rcswitch" {
		t.Errorf("mqtt = %+v", c.MQTT)
	}
}

func TestLoadTOML(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = writeFile(t, "rcswitch.toml", `
[transmitter]
gpio = -1

[receiver]
tolerance = 40
separation = 2000

[webserver]
url = "http://127.0.0.1:4444"

[webserver.webservices]
send = false
`)

	if err := c.LoadConfig(); err != nil {
		t.Fatal(err)
	}

	if c.Transmitter.Gpio != -1 || c.Transmitter.Repeat != 10 {
		t.Errorf("transmitter = %+v", c.Transmitter)
	}
	if c.Receiver.Tolerance != 40 || c.Receiver.Separation != 2000 {
		t.Errorf("receiver = %+v", c.Receiver)
	}
	if c.Webserver.URL != "http://127.0.0.1:4444" || c.Webserver.Webservices["send"] {
		t.Errorf("webserver = %+v", c.Webserver)
	}
	if c.Debug.File != os.Stderr || c.Debug.Flag != debug.Standard {
		t.Errorf("debug = %+v", c.Debug)
	}
}

func TestFlagOverridesDebugLevel(t *testing.T) {
	c := NewConfig()
	c.Flag.Debug = "trace"
	if err := c.LoadConfig(); err != nil {
		t.Fatal(err)
	}
	if c.Debug.Flag != debug.Full {
		t.Errorf("debug flag = %v, want %v", c.Debug.Flag, debug.Full)
	}
}

func TestLoadErrors(t *testing.T) {
	c := NewConfig()
	c.Flag.ConfigFile = writeFile(t, "rcswitch.json", "{}")
	if err := c.LoadConfig(); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("LoadConfig() = %v, want %v", err, ErrUnknownFormat)
	}

	c = NewConfig()
	c.Flag.ConfigFile = filepath.Join(t.TempDir(), "missing.yaml")
	if err := c.LoadConfig(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig() = %v, want %v", err, os.ErrNotExist)
	}
}
