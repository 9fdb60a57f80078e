// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes the server's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ActiveSessions tracks the number of sessions currently resident in the
// session store.
var ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "whiteboard_active_sessions",
	Help: "number of whiteboard sessions currently held in memory",
})

// ActiveConnections tracks currently attached peers across all sessions.
var ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "whiteboard_active_connections",
	Help: "number of peers currently connected",
})

// ConnectionsTotal counts accepted WebSocket connections.
var ConnectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "whiteboard_connections_total",
	Help: "counter of accepted WebSocket connections",
})

// MessagesReceived counts decoded inbound messages by wire type, whether or
// not the applier then accepts them.
var MessagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "whiteboard_messages_received_total",
	Help: "counter of decoded inbound messages",
}, []string{"type"})

// DecodeErrors counts inbound frames dropped because they failed to decode.
var DecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "whiteboard_decode_errors_total",
	Help: "counter of inbound frames dropped due to decode failure",
})

// FramesSent counts frames enqueued to peer outbound queues.
var FramesSent = promauto.NewCounter(prometheus.CounterOpts{
	Name: "whiteboard_frames_sent_total",
	Help: "counter of frames enqueued for delivery to peers",
})

// DroppedPeers counts peers disconnected because their outbound queue
// overflowed.
var DroppedPeers = promauto.NewCounter(prometheus.CounterOpts{
	Name: "whiteboard_dropped_peers_total",
	Help: "counter of peers dropped due to outbound queue overflow",
})

// SnapshotWrites counts successful session snapshot writes.
var SnapshotWrites = promauto.NewCounter(prometheus.CounterOpts{
	Name: "whiteboard_snapshot_writes_total",
	Help: "counter of session snapshots written to disk",
})

// SnapshotErrors counts failed session snapshot writes.
var SnapshotErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "whiteboard_snapshot_errors_total",
	Help: "counter of session snapshot writes that failed",
})
