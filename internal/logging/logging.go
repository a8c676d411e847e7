// Package logging bridges eventbus events to a zerolog logger.
package logging

import (
	"context"

	eventbus "github.com/hanpama/graphmask/internal/eventbus"
	events "github.com/hanpama/graphmask/internal/events"
	reqid "github.com/hanpama/graphmask/internal/reqid"

	"github.com/rs/zerolog"
)

// Attach subscribes logging handlers to the global event bus. The returned
// function removes them again.
func Attach(logger zerolog.Logger) (detach func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPStart) {
			rid, _ := reqid.FromContext(ctx)
			logger.Debug().
				Int64("request_id", rid).
				Str("method", e.Request.Method).
				Str("path", e.Request.URL.Path).
				Msg("http request")
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			rid, _ := reqid.FromContext(ctx)
			logger.Info().
				Int64("request_id", rid).
				Int("status", e.Status).
				Dur("duration", e.Duration).
				Msg("http response")
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLStart) {
			rid, _ := reqid.FromContext(ctx)
			logger.Debug().
				Int64("request_id", rid).
				Str("operation_name", e.OperationName).
				Str("operation_type", e.OperationType).
				Msg("graphql operation")
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
			rid, _ := reqid.FromContext(ctx)
			ev := logger.Info()
			if len(e.Errors) > 0 {
				ev = logger.Warn().Errs("errors", e.Errors)
			}
			ev.Int64("request_id", rid).
				Str("operation_name", e.OperationName).
				Str("operation_type", e.OperationType).
				Int("error_count", len(e.Errors)).
				Dur("duration", e.Duration).
				Msg("graphql operation done")
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.ViewResolved) {
			rid, _ := reqid.FromContext(ctx)
			logger.Debug().
				Int64("request_id", rid).
				Int("types", e.SchemaTypes).
				Int("hidden_types", e.HiddenTypes).
				Int("passes", e.Passes).
				Dur("duration", e.Duration).
				Msg("schema view resolved")
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
