package linkserver

import (
	"context"
	"encoding/binary"
	"strconv"
	"time"

	"github.com/calliope-space/telemhist/internal/core/codec"
	"github.com/calliope-space/telemhist/internal/core/domain"
	"github.com/calliope-space/telemhist/internal/history"
	"github.com/calliope-space/telemhist/internal/telemetry/logger"
	"github.com/calliope-space/telemhist/internal/telemetry/metric"
)

// Subservice identifiers.
const (
	SubserviceSetCapacity byte = 0x01
	SubserviceGetCapacity byte = 0x02
	SubserviceGetHistory  byte = 0x03
)

// Response status bytes.
const (
	StatusOK     byte = 0x00
	StatusFailed byte = 0xFF
)

// getHistoryRequestSize is the fixed GET-HISTORY payload: limit (u16),
// before-slot (u16), before-time (u32).
const getHistoryRequestSize = 8

// SendFunc delivers one response frame payload to the peer.
type SendFunc func(payload []byte) error

// Handler dispatches request frames to the history store.
type Handler struct {
	store   *history.Store
	logger  logger.Logger
	metrics *metric.Registry
}

// NewHandler creates a request handler.
func NewHandler(store *history.Store, log logger.Logger, metrics *metric.Registry) *Handler {
	if log == nil {
		log = logger.Default()
	}
	if metrics == nil {
		metrics = metric.NewRegistry()
	}
	return &Handler{store: store, logger: log, metrics: metrics}
}

// Handle processes one request frame and sends the response frame(s).
// GET-HISTORY sends one frame per record; everything else sends exactly
// one. A handler error means the connection should be dropped; protocol
// level failures are reported to the peer via StatusFailed instead.
func (h *Handler) Handle(ctx context.Context, req []byte, send SendFunc) error {
	if len(req) < 1 {
		h.observe(0xFF, StatusFailed, time.Now())
		return domain.ErrMalformedRequest.WithDetails("empty request frame")
	}

	sub := req[0]
	payload := req[1:]
	start := time.Now()

	switch sub {
	case SubserviceSetCapacity:
		return h.handleSetCapacity(ctx, payload, send, start)
	case SubserviceGetCapacity:
		return h.handleGetCapacity(payload, send, start)
	case SubserviceGetHistory:
		return h.handleGetHistory(ctx, payload, send, start)
	default:
		// An unknown subservice is reported and survived. The link
		// stays up for the next request.
		h.logger.Warn("illegal subservice requested",
			"subservice", sub,
			"error", domain.ErrIllegalSubservice)
		h.observe(sub, StatusFailed, start)
		return send([]byte{sub, StatusFailed})
	}
}

func (h *Handler) handleSetCapacity(ctx context.Context, payload []byte, send SendFunc, start time.Time) error {
	if len(payload) != 2 {
		h.observe(SubserviceSetCapacity, StatusFailed, start)
		return send([]byte{SubserviceSetCapacity, StatusFailed})
	}

	capacity := binary.BigEndian.Uint16(payload)
	if err := h.store.Resize(ctx, capacity); err != nil {
		h.logger.Warn("capacity change rejected",
			"capacity", capacity, "error", err)
		h.observe(SubserviceSetCapacity, StatusFailed, start)
		return send([]byte{SubserviceSetCapacity, StatusFailed})
	}

	h.logger.Info("capacity changed", "capacity", capacity)
	h.observe(SubserviceSetCapacity, StatusOK, start)
	return send([]byte{SubserviceSetCapacity, StatusOK})
}

func (h *Handler) handleGetCapacity(payload []byte, send SendFunc, start time.Time) error {
	if len(payload) != 0 {
		h.observe(SubserviceGetCapacity, StatusFailed, start)
		return send([]byte{SubserviceGetCapacity, StatusFailed})
	}

	resp := make([]byte, 4)
	resp[0] = SubserviceGetCapacity
	resp[1] = StatusOK
	binary.BigEndian.PutUint16(resp[2:], h.store.Capacity())

	h.observe(SubserviceGetCapacity, StatusOK, start)
	return send(resp)
}

func (h *Handler) handleGetHistory(ctx context.Context, payload []byte, send SendFunc, start time.Time) error {
	if len(payload) != getHistoryRequestSize {
		h.observe(SubserviceGetHistory, StatusFailed, start)
		return send([]byte{SubserviceGetHistory, StatusFailed})
	}

	limit := binary.BigEndian.Uint16(payload[0:2])
	beforeSlot := domain.SlotID(binary.BigEndian.Uint16(payload[2:4]))
	beforeTime := binary.BigEndian.Uint32(payload[4:8])

	err := h.store.FetchPage(ctx, limit, beforeSlot, beforeTime,
		func(snap *domain.Snapshot) error {
			resp := make([]byte, 2, 2+codec.SnapshotSize())
			resp[0] = SubserviceGetHistory
			resp[1] = StatusOK
			resp = append(resp, codec.EncodeSnapshot(snap)...)
			return send(resp)
		})
	if err != nil {
		h.logger.Warn("history page failed",
			"limit", limit,
			"before_slot", beforeSlot,
			"before_time", beforeTime,
			"error", err)
		h.observe(SubserviceGetHistory, StatusFailed, start)
		return send([]byte{SubserviceGetHistory, StatusFailed})
	}

	h.observe(SubserviceGetHistory, StatusOK, start)
	return nil
}

func (h *Handler) observe(sub, status byte, start time.Time) {
	name := subserviceName(sub)
	h.metrics.RequestsTotal.WithLabelValues(name, statusName(status)).Inc()
	h.metrics.RequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

func subserviceName(sub byte) string {
	switch sub {
	case SubserviceSetCapacity:
		return "set_capacity"
	case SubserviceGetCapacity:
		return "get_capacity"
	case SubserviceGetHistory:
		return "get_history"
	default:
		return "unknown_" + strconv.Itoa(int(sub))
	}
}

func statusName(status byte) string {
	if status == StatusOK {
		return "ok"
	}
	return "failed"
}
