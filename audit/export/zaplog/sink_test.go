package zaplog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	enroll "github.com/novextrustpay/enroll"
)

func TestSinkEmitsSuccessAtInfo(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewSink(zap.New(core))

	sink.Emit(context.Background(), enroll.AuditEvent{
		Timestamp: time.Now(),
		EventType: enroll.EventOTPVerify,
		Email:     "a@b.com",
		Success:   true,
		Metadata:  map[string]string{"purpose": "signup"},
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, enroll.EventOTPVerify, fields["event_type"])
	assert.Equal(t, "a@b.com", fields["email"])
	assert.Equal(t, "signup", fields["meta_purpose"])
}

func TestSinkEmitsFailureAtWarn(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := NewSink(zap.New(core))

	sink.Emit(context.Background(), enroll.AuditEvent{
		Timestamp: time.Now(),
		EventType: enroll.EventPINApply,
		Success:   false,
		Error:     errors.New("pin rejected").Error(),
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "pin rejected", entries[0].ContextMap()["error"])
}

func TestSinkNilLoggerDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		NewSink(nil).Emit(context.Background(), enroll.AuditEvent{})
	})
}
