package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"
	"rcswitch/pkg/app"
	"rcswitch/pkg/app/config"
	"rcswitch/pkg/raspberry"
	"rcswitch/pkg/receiver"
	"rcswitch/pkg/transmitter"
)

const defaultConfigFile = "/opt/womat/config/" + app.MODULE + ".yaml"

func main() {
	exitCode := 1
	defer func() {
		os.Exit(exitCode)
	}()

	// cfg holds the application configuration
	cfg := config.NewConfig()

	cliApp := &cli.App{
		Name:    app.MODULE,
		Usage:   "send and receive codes of 433/315MHz remote power sockets",
		Version: app.VERSION,
		Description: "Encode codes into the pulses of the rc-switch protocols and send them with a cheap RF transmitter," +
			"\n decode the codes received by a RF receiver and write them to mqtt." +
			"\n The transmitter and the receiver are connected to the gpio pins of a raspberry pi.",
		UsageText: "rcswitch [--config <file>] [--log error|standard|debug|trace] [command]" +
			"\n\nEXAMPLE:" +
			"\n\tstart the daemon and use the configuration file rcswitch.yaml" +
			"\n\t\trcswitch --config /opt/womat/rcswitch.yaml" +
			"\n\tsend the tri-state code 0FFF0FFFFFFF with protocol 1" +
			"\n\t\trcswitch send --tristate 0FFF0FFFFFFF --protocol 1",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &cfg.Flag.ConfigFile, Value: defaultConfigFile, Usage: "load configuration from `FILE`"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &cfg.Flag.Debug, Value: "", Usage: "`LEVEL` defines the log level (error|standard|debug|trace)"},
		},
		Commands: []*cli.Command{
			{
				Name:      "send",
				Usage:     "send a code word and exit",
				UsageText: "rcswitch send --binary <word> | --tristate <word> | --code <n> --length <bits> [--protocol <id>] [--repeat <n>]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "binary", Aliases: []string{"b"}, Usage: "binary code `WORD` of 0 and 1"},
					&cli.StringFlag{Name: "tristate", Aliases: []string{"t"}, Usage: "tri-state code `WORD` of 0, 1 and F"},
					&cli.Uint64Flag{Name: "code", Usage: "decimal `CODE`, requires --length"},
					&cli.IntFlag{Name: "length", Usage: "count of `BITS` of --code"},
					&cli.IntFlag{Name: "protocol", Aliases: []string{"p"}, Usage: "protocol `ID` 1..6"},
					&cli.IntFlag{Name: "repeat", Aliases: []string{"r"}, Usage: "`COUNT` of frame repetitions"},
					&cli.UintFlag{Name: "pulselength", Usage: "base pulse length in `µs`"},
					&cli.IntFlag{Name: "gpio", Usage: "BCM `NUMBER` of the transmitter pin"},
				},
				Action: func(ctx *cli.Context) error {
					if err := loadConfig(cfg); err != nil {
						return err
					}
					defer closeDebug(cfg)
					return send(ctx, cfg)
				},
			},
			{
				Name:      "receive",
				Usage:     "print the received codes until interrupted",
				UsageText: "rcswitch receive [--gpio <number>] [--tolerance <percent>]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "gpio", Usage: "BCM `NUMBER` of the receiver pin"},
					&cli.UintFlag{Name: "tolerance", Usage: "allowed pulse deviation in `PERCENT`"},
				},
				Action: func(ctx *cli.Context) error {
					if err := loadConfig(cfg); err != nil {
						return err
					}
					defer closeDebug(cfg)
					return receive(ctx, cfg)
				},
			},
		},
		Action: func(ctx *cli.Context) error {
			if err := loadConfig(cfg); err != nil {
				return err
			}
			defer closeDebug(cfg)

			a, err := app.New(cfg)
			defer func() {
				debug.InfoLog.Printf("closing app %s", app.Version())
				_ = a.Close()
			}()

			if err != nil {
				return err
			}

			debug.InfoLog.Printf("starting app %s", app.Version())
			if err = a.Run(); err != nil {
				return err
			}

			// capture exit signals to ensure resources are released on exit.
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			// wait for am os.Interrupt signal (CTRL C)
			sig := <-quit
			debug.InfoLog.Printf("Got %s signal. Aborting...", sig)

			return nil
		},
	}

	// we expect to have more command line flags in the future - sort them
	sort.Sort(cli.FlagsByName(cliApp.Flags))
	sort.Sort(cli.CommandsByName(cliApp.Commands))

	err := cliApp.Run(os.Args)
	if err != nil {
		debug.FatalLog.Print(err)
		exitCode = 1
		return
	}

	exitCode = 0
	return
}

// loadConfig reads the configuration file and starts logging.
// A missing default configuration file is accepted, the defaults are used.
func loadConfig(cfg *config.Config) error {
	if cfg.Flag.ConfigFile == defaultConfigFile {
		if _, err := os.Stat(defaultConfigFile); os.IsNotExist(err) {
			cfg.Flag.ConfigFile = ""
		}
	}

	if err := cfg.LoadConfig(); err != nil {
		return err
	}

	debug.SetDebug(cfg.Debug.File, cfg.Debug.Flag)
	return nil
}

func closeDebug(cfg *config.Config) {
	if cfg.Debug.File == os.Stderr || cfg.Debug.File == os.Stdout {
		return
	}

	debug.InfoLog.Printf("closing debug file %s", cfg.Debug.FileString)
	_ = cfg.Debug.File.Close()
}

// send transmits the code word given by the command line flags.
func send(ctx *cli.Context, cfg *config.Config) error {
	var code uint64
	var length int
	var err error

	switch {
	case ctx.IsSet("binary"):
		code, length, err = transmitter.EncodeBinary(ctx.String("binary"))
	case ctx.IsSet("tristate"):
		code, length, err = transmitter.EncodeTriState(ctx.String("tristate"))
	case ctx.IsSet("length"):
		code, length = ctx.Uint64("code"), ctx.Int("length")
		if length < 1 || length > transmitter.MaxBits {
			err = fmt.Errorf("length %d: %w", length, transmitter.ErrCodeTooLong)
		}
	default:
		return fmt.Errorf("one of --binary, --tristate or --length is required")
	}
	if err != nil {
		return err
	}

	if ctx.IsSet("gpio") {
		cfg.Transmitter.Gpio = ctx.Int("gpio")
	}
	if ctx.IsSet("protocol") {
		cfg.Transmitter.Protocol = ctx.Int("protocol")
	}
	if ctx.IsSet("repeat") {
		cfg.Transmitter.Repeat = ctx.Int("repeat")
	}
	if ctx.IsSet("pulselength") {
		cfg.Transmitter.PulseLength = uint32(ctx.Uint("pulselength"))
	}

	pin, err := raspberry.NewOutput(cfg.Transmitter.Gpio)
	if err != nil {
		return fmt.Errorf("can't open transmitter pin %v: %w", cfg.Transmitter.Gpio, err)
	}
	defer func() { _ = pin.Close() }()

	tx := transmitter.New(nil)
	tx.SetOutput(pin)
	tx.SetProtocol(cfg.Transmitter.Protocol)
	tx.SetPulseLength(cfg.Transmitter.PulseLength)
	tx.SetRepeat(cfg.Transmitter.Repeat)

	debug.InfoLog.Printf("sending %0*b with protocol %d", length, code, tx.Protocol())
	tx.SendBits(code, length)
	return nil
}

// receive prints every received code until an os.Interrupt signal (CTRL C) is caught.
func receive(ctx *cli.Context, cfg *config.Config) error {
	if ctx.IsSet("gpio") {
		cfg.Receiver.Gpio = ctx.Int("gpio")
	}
	if ctx.IsSet("tolerance") {
		cfg.Receiver.Tolerance = uint32(ctx.Uint("tolerance"))
	}

	chip, err := raspberry.Open()
	if err != nil {
		return fmt.Errorf("can't open gpio: %w", err)
	}
	defer func() { _ = chip.Close() }()

	rx := receiver.New(receiver.Config{
		Tolerance:  cfg.Receiver.Tolerance,
		Separation: cfg.Receiver.Separation,
	})
	defer func() { _ = rx.Close() }()

	line, err := chip.NewLine(cfg.Receiver.Gpio, cfg.Receiver.Terminator, rx.HandleEdge)
	if err != nil {
		return fmt.Errorf("can't open receiver line %v: %w", cfg.Receiver.Gpio, err)
	}
	defer func() { _ = line.Close() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	poll := cfg.Receiver.PollTime
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case sig := <-quit:
			debug.InfoLog.Printf("Got %s signal. Aborting...", sig)
			return nil
		case <-ticker.C:
			if r, ok := rx.Take(); ok {
				fmt.Fprintf(ctx.App.Writer, "Received %d / %dbit Protocol: %d Delay: %dµs\n", r.Value, r.BitLength, r.Protocol, r.Delay)
			}
		}
	}
}
