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
	// EddsaOperations tracks scalar/point operations performed by a peer.
	EddsaOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eddsa",
			Name:      "operations_total",
			Help:      "Total number of EdDSA key-generation and signing operations",
		},
		[]string{"operation"}, // keygen, nonce, aggregate_key, partial_sign, aggregate_signature, verify
	)

	// EddsaErrors tracks randomness and scalar-reduction failures, rejected
	// commitments and failed verifications.
	EddsaErrors = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eddsa",
			Name:      "errors_total",
			Help:      "Total number of EdDSA protocol errors",
		},
		[]string{"operation", "reason"}, // e.g. keygen/rand_read, commitment/mismatch, verify/bad_signature
	)

	// EddsaOperationDuration tracks operation durations.
	EddsaOperationDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "eddsa",
			Name:      "operation_duration_seconds",
			Help:      "EdDSA operation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 15),
		},
		[]string{"operation"},
	)
)
