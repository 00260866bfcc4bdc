package enroll

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID int

const (
	MetricEnrollmentSubmit MetricID = iota
	MetricEnrollmentSuccess
	MetricEnrollmentFailure
	MetricOTPSend
	MetricOTPVerifySuccess
	MetricOTPVerifyFailure
	MetricPINApplied
	MetricPINFailed
	MetricSignInSuccess
	MetricSignInFailure
	MetricSignOut
	MetricRecoveryRequest
	MetricPasswordReset
	MetricGateAllowed
	MetricGateRedirected

	metricCount
)

var metricNames = map[MetricID]string{
	MetricEnrollmentSubmit:  "enrollment_submit",
	MetricEnrollmentSuccess: "enrollment_success",
	MetricEnrollmentFailure: "enrollment_failure",
	MetricOTPSend:           "otp_send",
	MetricOTPVerifySuccess:  "otp_verify_success",
	MetricOTPVerifyFailure:  "otp_verify_failure",
	MetricPINApplied:        "pin_applied",
	MetricPINFailed:         "pin_failed",
	MetricSignInSuccess:     "sign_in_success",
	MetricSignInFailure:     "sign_in_failure",
	MetricSignOut:           "sign_out",
	MetricRecoveryRequest:   "recovery_request",
	MetricPasswordReset:     "password_reset",
	MetricGateAllowed:       "gate_allowed",
	MetricGateRedirected:    "gate_redirected",
}

// String returns the snake_case metric name.
func (id MetricID) String() string {
	if name, ok := metricNames[id]; ok {
		return name
	}
	return "unknown"
}

// Metrics holds the engine's in-process counters.
type Metrics struct {
	counters [metricCount]atomic.Uint64
}

func newMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{}
}

// Inc adds one to the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id < 0 || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricCount)),
	}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
