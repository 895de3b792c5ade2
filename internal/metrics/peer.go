// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesProcessed tracks relay messages processed by a peer client.
	MessagesProcessed = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "peer",
			Name:      "messages_processed_total",
			Help:      "Total number of relay messages processed",
		},
		[]string{"tag", "status"}, // the peer client records tag "round"; success/failure
	)

	// RetriesExhausted counts rounds where a peer gave up after MaxRetry
	// attempts without collecting every peer's message.
	RetriesExhausted = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "peer",
			Name:      "retries_exhausted_total",
			Help:      "Total number of rounds abandoned after exhausting the retry budget",
		},
	)

	// TransientErrors counts recoverable wire errors returned by the relay
	// (NOT_YOUR_TURN, STATE_NOT_INITIALIZED) that triggered a resend.
	TransientErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "peer",
			Name:      "transient_errors_total",
			Help:      "Total number of transient relay errors that triggered a resend",
		},
		[]string{"error"},
	)

	// RoundDuration tracks how long a peer spends completing one protocol
	// round (send + poll-until-collected).
	RoundDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "peer",
			Name:      "round_duration_seconds",
			Help:      "Time to complete one protocol round",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"round"},
	)
)
