/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package envelope

import "github.com/prometheus/client_golang/prometheus"

// Decode outcomes used as the "outcome" label.
const (
	OutcomeOK              = "ok"
	OutcomeMalformed       = "malformed"
	OutcomeTypeMismatch    = "type_mismatch"
	OutcomeTooNew          = "too_new"
	OutcomeUnknownRevision = "unknown_revision"
	OutcomePayload         = "payload_error"
)

// Metrics holds the envelope counters.
type Metrics struct {
	EncodedTotal *prometheus.CounterVec
	DecodedTotal *prometheus.CounterVec
}

// NewMetrics creates the envelope counters and registers them on
// registry. A nil registry leaves them unregistered.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		EncodedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dxrev_envelope_encoded_total",
				Help: "Total number of envelopes encoded",
			},
			[]string{"type", "format"},
		),
		DecodedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dxrev_envelope_decoded_total",
				Help: "Total number of envelopes read, by outcome",
			},
			[]string{"type", "format", "outcome"},
		),
	}

	if registry != nil {
		registry.MustRegister(m.EncodedTotal, m.DecodedTotal)
	}
	return m
}

func (m *Metrics) encoded(typ, format string) {
	if m == nil {
		return
	}
	m.EncodedTotal.WithLabelValues(typ, format).Inc()
}

func (m *Metrics) decoded(typ, format, outcome string) {
	if m == nil {
		return
	}
	m.DecodedTotal.WithLabelValues(typ, format, outcome).Inc()
}
