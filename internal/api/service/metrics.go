package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("api.service")
	meter  = otel.Meter("api.service")
)

type counters struct {
	loginAttempts metric.Int64Counter
	registrations metric.Int64Counter
	taskOps       metric.Int64Counter
}

var serviceCounters = newCounters()

func newCounters() counters {
	var c counters
	var err error
	if c.loginAttempts, err = meter.Int64Counter("auth.login.attempts",
		metric.WithDescription("Login attempts by outcome")); err != nil {
		slog.Error("failed to create counter", "name", "auth.login.attempts", "error", err)
	}
	if c.registrations, err = meter.Int64Counter("auth.registrations",
		metric.WithDescription("Registrations by outcome")); err != nil {
		slog.Error("failed to create counter", "name", "auth.registrations", "error", err)
	}
	if c.taskOps, err = meter.Int64Counter("tasks.operations",
		metric.WithDescription("Successful task operations by kind")); err != nil {
		slog.Error("failed to create counter", "name", "tasks.operations", "error", err)
	}
	return c
}

func count(ctx context.Context, counter metric.Int64Counter, key, value string) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String(key, value)))
}
