// Package telemetry holds the OpenTelemetry counters recorded by the token
// services. The caller owns the MeterProvider.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/dmitrijs2005/gophauth"

const (
	FlowRegister = "register"
	FlowLogin    = "login"
	FlowRefresh  = "refresh"
)

var ErrNilMeter = errors.New("nil meter")

// Metrics is safe to use as a nil pointer, in which case nothing is recorded.
type Metrics struct {
	issued   metric.Int64Counter
	rejected metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}

	issued, err := meter.Int64Counter("gophauth.tokens.issued",
		metric.WithDescription("Access/refresh token pairs issued"))
	if err != nil {
		return nil, fmt.Errorf("create counter gophauth.tokens.issued: %w", err)
	}

	rejected, err := meter.Int64Counter("gophauth.refresh.rejected",
		metric.WithDescription("Refresh attempts rejected, by failure code"))
	if err != nil {
		return nil, fmt.Errorf("create counter gophauth.refresh.rejected: %w", err)
	}

	return &Metrics{issued: issued, rejected: rejected}, nil
}

// NewGlobal uses the global MeterProvider, a no-op until an SDK is installed.
func NewGlobal() (*Metrics, error) {
	return New(otel.Meter(meterName))
}

func (m *Metrics) IssuedInc(ctx context.Context, flow string) {
	if m == nil {
		return
	}
	m.issued.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", flow)))
}

func (m *Metrics) RejectedInc(ctx context.Context, code int) {
	if m == nil {
		return
	}
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.Int("code", code)))
}
