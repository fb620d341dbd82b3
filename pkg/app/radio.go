package app

import (
	"github.com/womat/debug"
	"rcswitch/pkg/raspberry"
	"rcswitch/pkg/transmitter"
)

// initRadio connects the transmitter and the receiver to the gpio pins of the raspberry pi.
// A negative gpio number disables the transmitter or the receiver.
func (app *App) initRadio() (err error) {
	app.transmitter = transmitter.New(nil)

	if gpio := app.config.Transmitter.Gpio; gpio >= 0 {
		if app.pin, err = raspberry.NewOutput(gpio); err != nil {
			debug.ErrorLog.Printf("can't open transmitter pin %v: %v", gpio, err)
			return err
		}
		app.transmitter.SetOutput(app.pin)
		debug.InfoLog.Printf("transmitter enabled on gpio %v", gpio)
	}

	if gpio := app.config.Receiver.Gpio; gpio >= 0 {
		if app.chip, err = raspberry.Open(); err != nil {
			debug.ErrorLog.Printf("can't open gpio: %v", err)
			return err
		}

		if app.line, err = app.chip.NewLine(gpio, app.config.Receiver.Terminator, app.receiver.HandleEdge); err != nil {
			debug.ErrorLog.Printf("can't open receiver line %v: %v", gpio, err)
			return err
		}
		debug.InfoLog.Printf("receiver enabled on gpio %v", gpio)
	}

	return nil
}

// initLoopback wires the transmitter to the receiver without radio hardware.
// Every sent code is received by the own receiver.
func (app *App) initLoopback() {
	l := raspberry.NewLoopback()
	l.Watch(app.receiver.HandleEdge)

	app.transmitter = transmitter.New(l)
	app.transmitter.SetOutput(l)
	debug.InfoLog.Print("emulate radio by a loopback line")
}
