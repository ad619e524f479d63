// Package storage serves the storage channel. The channel recognises a single
// method, getTotalDiskSpace; every other method name is answered with
// channel.ErrNotImplemented.
package storage

import (
	"context"

	"phonecleaner/pkg/channel"
	"phonecleaner/pkg/diskspace"
	"phonecleaner/pkg/log"
	"phonecleaner/pkg/metrics"
)

const (
	ChannelName             = "com.phonecleaner.app/storage"
	MethodGetTotalDiskSpace = "getTotalDiskSpace"
)

// DiskSpaceQuerier reports total capacity in bytes and never fails.
type DiskSpaceQuerier interface {
	TotalDiskSpace() diskspace.Reading
}

// Handler dispatches storage channel calls.
type Handler struct {
	disk DiskSpaceQuerier
}

// NewHandler returns a storage channel handler backed by disk.
func NewHandler(disk DiskSpaceQuerier) *Handler {
	return &Handler{disk: disk}
}

// Handle answers a single method call. Arguments are ignored.
func (h *Handler) Handle(_ context.Context, call channel.MethodCall) (any, error) {
	if call.Method == MethodGetTotalDiskSpace {
		metrics.ChannelInvocationsTotal.WithLabelValues(ChannelName, call.Method, metrics.OutcomeOK).Inc()
		return h.disk.TotalDiskSpace(), nil
	}

	// Unknown names are not used as a label to keep metric cardinality bounded.
	metrics.ChannelInvocationsTotal.WithLabelValues(ChannelName, "other", metrics.OutcomeNotImplemented).Inc()
	return nil, channel.ErrNotImplemented
}

// Attach registers the handler on the storage channel of m.
func (h *Handler) Attach(m *channel.Messenger) {
	m.SetMethodCallHandler(ChannelName, h.Handle)
	log.Info().Str("channel", ChannelName).Msg("Storage channel attached")
}
