package app

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
	"rcswitch/pkg/transmitter"
)

// sendRequest is the body of a send request.
// Exactly one of Binary, TriState or Length (with Code) defines the code word,
// zero values of Protocol, Repeat and PulseLength use the configured ones.
type sendRequest struct {
	Binary      string `json:"binary"`
	TriState    string `json:"tristate"`
	Code        uint64 `json:"code"`
	Length      int    `json:"length"`
	Protocol    int    `json:"protocol"`
	Repeat      int    `json:"repeat"`
	PulseLength uint32 `json:"pulselength"`
}

type sendResponse struct {
	Code     uint64 `json:"code"`
	Length   int    `json:"length"`
	Protocol int    `json:"protocol"`
	Repeat   int    `json:"repeat"`
}

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleData returns the last received code.
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		return ctx.JSON(app.lastReceived())
	}
}

// HandleSend transmits the code word of the request body.
// output example:
//  {"code":1364,"length":24,"protocol":1,"repeat":10}
func (app *App) HandleSend() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request send")

		var req sendRequest
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		resp, err := app.send(req)
		switch {
		case errors.Is(err, transmitter.ErrInvalidSymbol), errors.Is(err, transmitter.ErrCodeTooLong), errors.Is(err, errNoCode):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, errTransmitterDisabled):
			return fiber.NewError(http.StatusServiceUnavailable, err.Error())
		case err != nil:
			return err
		}

		return ctx.JSON(resp)
	}
}

var (
	errNoCode              = errors.New("no code word in request")
	errTransmitterDisabled = errors.New("transmitter disabled")
)

// send encodes the code word of req and transmits it.
func (app *App) send(req sendRequest) (sendResponse, error) {
	var code uint64
	var length int
	var err error

	switch {
	case req.Binary != "":
		code, length, err = transmitter.EncodeBinary(req.Binary)
	case req.TriState != "":
		code, length, err = transmitter.EncodeTriState(req.TriState)
	case req.Length > 0 && req.Length <= transmitter.MaxBits:
		code, length = req.Code, req.Length
	case req.Length > transmitter.MaxBits:
		err = transmitter.ErrCodeTooLong
	default:
		err = errNoCode
	}
	if err != nil {
		return sendResponse{}, err
	}

	if app.transmitter == nil || !app.transmitter.Enabled() {
		return sendResponse{}, errTransmitterDisabled
	}

	app.sendMu.Lock()
	defer app.sendMu.Unlock()

	p, r, pl := req.Protocol, req.Repeat, req.PulseLength
	if p == 0 {
		p = app.config.Transmitter.Protocol
	}
	if r == 0 {
		r = app.config.Transmitter.Repeat
	}
	if pl == 0 {
		pl = app.config.Transmitter.PulseLength
	}

	app.transmitter.SetProtocol(p)
	app.transmitter.SetPulseLength(pl)
	app.transmitter.SetRepeat(r)
	app.transmitter.SendBits(code, length)

	return sendResponse{
		Code:     code,
		Length:   length,
		Protocol: int(app.transmitter.Protocol()),
		Repeat:   app.transmitter.Repeat(),
	}, nil
}
