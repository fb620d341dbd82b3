package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
)

// ErrUnknownFormat is returned if the config file extension is neither yaml nor toml.
var ErrUnknownFormat = errors.New("unknown config file format")

// Config holds the application configuration. Attention!
// Each of the struct fields must be in the format
// first letter uppercase -> followed by CamelCase as in the config file.
// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	Flag        FlagConfig        `yaml:"-" toml:"-"`
	Emulate     bool              `yaml:"emulate" toml:"emulate"`
	Transmitter TransmitterConfig `yaml:"transmitter" toml:"transmitter"`
	Receiver    ReceiverConfig    `yaml:"receiver" toml:"receiver"`
	Debug       DebugConfig       `yaml:"debug" toml:"debug"`
	Webserver   WebserverConfig   `yaml:"webserver" toml:"webserver"`
	MQTT        MQTTConfig        `yaml:"mqtt" toml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	Version    bool
	Debug      string
	ConfigFile string
}

// TransmitterConfig defines the struct of the transmitter configuration and configuration file.
// A negative gpio disables the transmitter.
type TransmitterConfig struct {
	Gpio        int    `yaml:"gpio" toml:"gpio"`
	Protocol    int    `yaml:"protocol" toml:"protocol"`
	Repeat      int    `yaml:"repeat" toml:"repeat"`
	PulseLength uint32 `yaml:"pulselength" toml:"pulselength"`
}

// ReceiverConfig defines the struct of the receiver configuration and configuration file.
// A negative gpio disables the receiver.
type ReceiverConfig struct {
	Gpio        int           `yaml:"gpio" toml:"gpio"`
	Terminator  string        `yaml:"terminator" toml:"terminator"`
	Tolerance   uint32        `yaml:"tolerance" toml:"tolerance"`
	Separation  uint32        `yaml:"separation" toml:"separation"`
	PollTime    time.Duration `yaml:"-" toml:"-"`
	PollTimeInt int           `yaml:"polltime" toml:"polltime"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url" toml:"url"`
	Webservices map[string]bool `yaml:"webservices" toml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection string `yaml:"connection" toml:"connection"`
	ClientID   string `yaml:"clientid" toml:"clientid"`
	Topic      string `yaml:"topic" toml:"topic"`
}

// DebugConfig defines the struct of the debug configuration and configuration file
type DebugConfig struct {
	File       io.WriteCloser `yaml:"-" toml:"-"`
	Flag       int            `yaml:"-" toml:"-"`
	FlagString string         `yaml:"flag" toml:"flag"`
	FileString string         `yaml:"file" toml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Flag: FlagConfig{},
		Transmitter: TransmitterConfig{
			Gpio:     17,
			Protocol: 1,
			Repeat:   10,
		},
		Receiver: ReceiverConfig{
			Gpio:        27,
			Terminator:  "none",
			Tolerance:   60,
			Separation:  4300,
			PollTimeInt: 100,
		},
		Debug: DebugConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version": true,
				"health":  true,
				"data":    true,
				"send":    true,
			},
		},
		MQTT: MQTTConfig{
			Connection: "",
			ClientID:   "rcswitch",
			Topic:      "rcswitch/received",
		},
	}
}

func (c *Config) LoadConfig() error {
	if c.Flag.ConfigFile != "" {
		if err := c.readConfigFile(); err != nil {
			return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
		}
	}

	if c.Flag.Debug != "" {
		c.Debug.FlagString = c.Flag.Debug
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Debug.FileString, err)
	}

	c.Receiver.PollTime = time.Duration(c.Receiver.PollTimeInt) * time.Millisecond
	return nil
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	switch strings.ToLower(filepath.Ext(c.Flag.ConfigFile)) {
	case ".yaml", ".yml":
		return yaml.NewDecoder(file).Decode(c)
	case ".toml":
		_, err = toml.NewDecoder(file).Decode(c)
		return err
	default:
		return ErrUnknownFormat
	}
}

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Debug.FlagString {
	case "trace", "full":
		c.Debug.Flag = debug.Full
	case "debug":
		c.Debug.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "error":
		c.Debug.Flag = debug.Error | debug.Fatal
	default:
		c.Debug.Flag = debug.Standard
	}

	switch c.Debug.FileString {
	case "stderr", "":
		c.Debug.File = os.Stderr
	case "stdout":
		c.Debug.File = os.Stdout
	default:
		if c.Debug.File, err = os.OpenFile(c.Debug.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}
