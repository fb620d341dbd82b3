package app

import (
	"net/url"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
	"rcswitch/pkg/app/config"
	"rcswitch/pkg/mqtt"
	"rcswitch/pkg/raspberry"
	"rcswitch/pkg/receiver"
	"rcswitch/pkg/transmitter"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// chip is the gpio character device of the receiver line
	chip *raspberry.Chip
	// line is the requested receiver line
	line *raspberry.Line
	// pin is the memory mapped transmitter pin
	pin *raspberry.OutputPin

	// transmitter sends the codes of the send requests
	transmitter *transmitter.Transmitter
	// sendMu serializes send requests, each of them may change protocol and repetitions
	sendMu sync.Mutex

	// receiver decodes the edges of the receiver line
	receiver *receiver.Receiver

	// last is the last received code
	last struct {
		sync.RWMutex
		data Received
	}

	// quit stops the receive service, done is closed after it returned
	quit      chan struct{}
	done      chan struct{}
	running   bool
	closeOnce sync.Once

	// restart signals application restart
	restart chan struct{}
	// shutdown signals application shutdown
	shutdown chan struct{}
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:  fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt: mqtt.New(),

		receiver: receiver.New(receiver.Config{
			Tolerance:  config.Receiver.Tolerance,
			Separation: config.Receiver.Separation,
		}),

		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		restart:  make(chan struct{}),
		shutdown: make(chan struct{}),
	}, err
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	app.running = true
	go app.mqtt.Service()
	go app.runWebServer()
	go app.service()

	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	if app.config.Emulate {
		app.initLoopback()
	} else if err = app.initRadio(); err != nil {
		return err
	}

	app.transmitter.SetProtocol(app.config.Transmitter.Protocol)
	app.transmitter.SetPulseLength(app.config.Transmitter.PulseLength)
	app.transmitter.SetRepeat(app.config.Transmitter.Repeat)

	if err = app.mqtt.Connect(app.config.MQTT.Connection, app.config.MQTT.ClientID); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	// initDefaultRoutes should be always called last because it may access things like app.transmitter
	// which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// Restart returns the read only restart channel.
// Restart is used to be able to react on application restart. (see cmd/rcswitch.go)
func (app *App) Restart() <-chan struct{} {
	return app.restart
}

// Shutdown returns the read only shutdown channel.
// Shutdown is used to be able to react on application shutdown. (see cmd/rcswitch.go)
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

// Close stops the services and releases the gpio lines.
func (app *App) Close() error {
	if app.web == nil {
		return nil
	}

	app.closeOnce.Do(func() {
		_ = app.web.Shutdown()

		close(app.quit)
		if app.running {
			// the receive service is the only publisher, the mqtt queue is closed after it returned
			<-app.done
			close(app.mqtt.C)
		}
		_ = app.mqtt.Disconnect()

		// the line must not deliver edges to a closed receiver
		_ = app.line.Close()
		_ = app.chip.Close()
		_ = app.receiver.Close()

		if app.transmitter != nil {
			app.transmitter.Disable()
		}
		if app.pin != nil {
			_ = app.pin.Close()
		}
	})
	return nil
}
