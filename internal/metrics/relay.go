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
	// SessionsCreated tracks relay sessions created.
	SessionsCreated = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "sessions_created_total",
			Help:      "Total number of relay sessions created",
		},
		[]string{"status"}, // success, failure
	)

	// SessionsActive tracks relay sessions currently in Initialized state.
	SessionsActive = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "sessions_active",
			Help:      "Number of relay sessions currently initialized",
		},
	)

	// SessionsAborted tracks relay sessions that transitioned to Aborted.
	SessionsAborted = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "sessions_aborted_total",
			Help:      "Total number of relay sessions aborted, by reason",
		},
		[]string{"reason"},
	)

	// SessionDuration tracks the time a relay session spends in each state.
	SessionDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "session_duration_seconds",
			Help:      "Time spent in a relay session state",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"state"}, // uninitialized, initialized
	)

	// TurnAdvances counts turn handoffs within a session.
	TurnAdvances = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "turn_advances_total",
			Help:      "Total number of relay turn advances",
		},
	)
)
