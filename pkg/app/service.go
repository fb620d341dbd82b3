package app

import (
	"time"

	"github.com/womat/debug"
	"rcswitch/pkg/decoder"
)

// Received is a received code with the time it was taken from the receiver.
type Received struct {
	TimeStamp time.Time `json:"timestamp"`
	decoder.Result
}

// service polls the receiver for new codes until the application is closed.
// It saves the code to the app main structure and sends it to the mqtt broker.
func (app *App) service() {
	defer close(app.done)

	poll := app.config.Receiver.PollTime
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-app.quit:
			return
		case <-ticker.C:
			r, ok := app.receiver.Take()
			if !ok {
				continue
			}

			d := Received{TimeStamp: time.Now(), Result: r}
			debug.InfoLog.Printf("received %v / %d bit (protocol %d, delay %dµs)", r.Value, r.BitLength, r.Protocol, r.Delay)

			app.last.Lock()
			app.last.data = d
			app.last.Unlock()

			if err := app.mqtt.Publish(app.config.MQTT.Topic, d); err != nil {
				debug.ErrorLog.Printf("sendMQTT marshal: %v", err)
			}
		}
	}
}

// lastReceived returns the last received code.
func (app *App) lastReceived() Received {
	app.last.RLock()
	defer app.last.RUnlock()
	return app.last.data
}
