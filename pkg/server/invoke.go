package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"phonecleaner/pkg/channel"
	"phonecleaner/pkg/log"

	"github.com/labstack/echo/v4"
)

// Error codes carried next to "error" in failure bodies.
const (
	CodeNotImplemented  = "NOT_IMPLEMENTED"
	CodeChannelNotFound = "CHANNEL_NOT_FOUND"
	CodeBadRequest      = "BAD_REQUEST"
	CodeInternal        = "INTERNAL"
)

const maxCallBodyBytes = 1 << 20

// Envelope is the wire form of a channel response.
type Envelope struct {
	Result any    `json:"result"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
}

// classify maps a dispatch error to an HTTP status and error code.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, channel.ErrNotImplemented):
		return http.StatusNotImplemented, CodeNotImplemented, channel.ErrNotImplemented.Error()
	case errors.Is(err, channel.ErrChannelNotFound):
		return http.StatusNotFound, CodeChannelNotFound, err.Error()
	default:
		return http.StatusInternalServerError, CodeInternal, "channel handler failed"
	}
}

// dispatch runs call on name and renders the outcome as an envelope.
func (cs *ChannelServer) dispatch(ctx context.Context, name string, call channel.MethodCall) (int, Envelope) {
	result, err := cs.messenger.Invoke(ctx, name, call)
	if err != nil {
		status, code, msg := classify(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Str("channel", name).Str("method", call.Method).Msg("Channel call failed")
		}
		return status, Envelope{Error: msg, Code: code}
	}

	return http.StatusOK, Envelope{Result: result}
}

// invokeChannel handles POST /channels/<name> with a JSON method call body.
func (cs *ChannelServer) invokeChannel(ctx echo.Context) error {
	name := strings.Trim(ctx.Param("*"), "/")
	if name == "" {
		return ctx.JSON(http.StatusBadRequest, Envelope{
			Error: "channel name is required",
			Code:  CodeBadRequest,
		})
	}

	var call channel.MethodCall
	body := io.LimitReader(ctx.Request().Body, maxCallBodyBytes)
	if err := json.NewDecoder(body).Decode(&call); err != nil {
		log.Warn().Err(err).Str("channel", name).Msg("Malformed method call body")
		return ctx.JSON(http.StatusBadRequest, Envelope{
			Error: "malformed method call",
			Code:  CodeBadRequest,
		})
	}

	log.Debug().Str("channel", name).Str("method", call.Method).Msg("Method call received")

	status, envelope := cs.dispatch(ctx.Request().Context(), name, call)
	return ctx.JSON(status, envelope)
}
