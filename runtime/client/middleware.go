package client

import (
	"context"
	"log/slog"
	"time"
)

// QueryEvent represents a query execution event
type QueryEvent struct {
	Query    string
	Args     []interface{}
	Duration time.Duration
	Error    error
	Start    time.Time
	End      time.Time
}

// Middleware is a function that intercepts queries
type Middleware func(ctx context.Context, event *QueryEvent, next func() error) error

// runMiddleware executes exec through the middleware chain
func runMiddleware(ctx context.Context, middlewares []Middleware, query string, args []interface{}, exec func() error) error {
	if len(middlewares) == 0 {
		return exec()
	}

	event := &QueryEvent{
		Query: query,
		Args:  args,
		Start: time.Now(),
	}

	var next func() error
	index := 0

	next = func() error {
		if index >= len(middlewares) {
			err := exec()
			event.End = time.Now()
			event.Duration = event.End.Sub(event.Start)
			event.Error = err
			return err
		}

		middleware := middlewares[index]
		index++
		return middleware(ctx, event, next)
	}

	return next()
}

// LoggingMiddleware logs every statement at debug level and failures at warn
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if err != nil {
			logger.WarnContext(ctx, "query failed", "sql", event.Query, "args", len(event.Args), "error", err)
		} else {
			logger.DebugContext(ctx, "query", "sql", event.Query, "args", len(event.Args), "duration", event.Duration)
		}
		return err
	}
}

// TimingMiddleware creates a middleware that measures query execution time
func TimingMiddleware(onTiming func(query string, duration time.Duration)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if onTiming != nil {
			onTiming(event.Query, event.Duration)
		}
		return err
	}
}

// ErrorMiddleware creates a middleware that handles errors
func ErrorMiddleware(onError func(query string, err error)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if err != nil && onError != nil {
			onError(event.Query, err)
		}
		return err
	}
}
