// Copyright 2024 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package h323

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "livekit"
	metricsSubsystem = "h323"
)

// Switch outcomes used as the "result" label.
const (
	resultStarted     = "started"
	resultUnsupported = "unsupported"
	resultBusy        = "busy"
	resultRejected    = "rejected"
	resultSucceeded   = "succeeded"
	resultFailed      = "failed"
	resultFallback    = "fallback"
)

// Metrics collects connection level counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	connections     prometheus.Gauge
	faxSwitches     *prometheus.CounterVec
	faxFallbacks    prometheus.Counter
	bearerInvalid   *prometheus.CounterVec
	formatsFiltered *prometheus.CounterVec
}

// NewMetrics creates connection metrics and registers them if reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "connections_active",
			Help:      "Number of active H.323 connections",
		}),
		faxSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "fax_switch_total",
			Help:      "Fax/audio media switches by target mode and result",
		}, []string{"target", "result"}),
		faxFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "fax_fallback_total",
			Help:      "Fax switches rejected by the remote party and reverted to audio",
		}),
		bearerInvalid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "bearer_capability_invalid_total",
			Help:      "Bearer capability values ignored because they failed validation",
		}, []string{"source"}),
		formatsFiltered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "formats_filtered_total",
			Help:      "Media formats removed from negotiation because they are not on the allow list",
		}, []string{"set"}),
	}
	if reg != nil {
		reg.MustRegister(m.connections, m.faxSwitches, m.faxFallbacks, m.bearerInvalid, m.formatsFiltered)
	}
	return m
}

func (m *Metrics) connectionOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) connectionClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

func (m *Metrics) faxSwitch(target Mode, result string) {
	if m == nil {
		return
	}
	m.faxSwitches.WithLabelValues(target.String(), result).Inc()
}

func (m *Metrics) faxFallback() {
	if m == nil {
		return
	}
	m.faxFallbacks.Inc()
}

func (m *Metrics) invalidBearer(source string) {
	if m == nil {
		return
	}
	m.bearerInvalid.WithLabelValues(source).Inc()
}

func (m *Metrics) filtered(set string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.formatsFiltered.WithLabelValues(set).Add(float64(n))
}
