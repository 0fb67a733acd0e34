// Package transport drives the per-tick network loop: decoding
// inbound datagrams, routing them to per-InnerKind handlers,
// retransmitting unacked lossless packets, and flushing queued
// outbound broadcasts.
package transport

import (
	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/internal/logger"
)

// Handler processes one decoded inbound packet body for a given
// sender. Returning an error never tears down the chat: the
// dispatcher logs it and moves on.
type Handler func(sender [32]byte, payload []byte) error

// Dispatcher routes inbound inner packets to the handler registered
// for their InnerKind. Unregistered kinds are logged and dropped.
type Dispatcher struct {
	handlers map[codec.InnerKind]Handler
	log      logger.Logger
}

// NewDispatcher constructs an empty Dispatcher.
func NewDispatcher(log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Get()
	}
	return &Dispatcher{handlers: make(map[codec.InnerKind]Handler), log: log}
}

// Register binds h as the handler for kind, replacing any previous
// registration.
func (d *Dispatcher) Register(kind codec.InnerKind, h Handler) {
	d.handlers[kind] = h
}

// Dispatch routes one decoded packet. Handler errors are logged with
// context and swallowed; an unregistered kind is logged at debug
// level and dropped.
func (d *Dispatcher) Dispatch(kind codec.InnerKind, sender [32]byte, payload []byte) {
	h, ok := d.handlers[kind]
	if !ok {
		d.log.Debug("transport: no handler registered", logger.String("inner_kind", kind.String()))
		return
	}
	if err := h(sender, payload); err != nil {
		d.log.Warn("transport: handler failed", logger.String("inner_kind", kind.String()), logger.Err(err))
	}
}
