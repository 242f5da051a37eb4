package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Telemetry is strictly fire-and-forget: events feed dashboards and debugging,
// never authoritative state. Emit failures are logged and swallowed.

// Event is one product event (session_started, step_submitted, ...)
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Service   string         `json:"service"`
	Event     string         `json:"event"`
	UserID    string         `json:"user_id,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Emitter publishes events to whatever sinks are configured
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

type emitter struct {
	zapLogger   *zap.Logger
	redisClient *redis.Client
	stream      string
	maxLen      int64
	serviceName string
}

// Options configures the optional Redis Streams sink
type Options struct {
	ServiceName string
	RedisClient *redis.Client // nil disables the stream sink
	Stream      string
	StreamMax   int64
}

// New builds an emitter that always writes structured events to stdout via
// zap and additionally appends to a Redis stream when a client is supplied
func New(opts Options) (Emitter, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	stream := opts.Stream
	if stream == "" {
		stream = "stratix:events"
	}
	maxLen := opts.StreamMax
	if maxLen <= 0 {
		maxLen = 100000
	}

	return &emitter{
		zapLogger:   zapLogger,
		redisClient: opts.RedisClient,
		stream:      stream,
		maxLen:      maxLen,
		serviceName: opts.ServiceName,
	}, nil
}

func (e *emitter) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Service == "" {
		event.Service = e.serviceName
	}

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("event", event.Event),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}
	e.zapLogger.Info("telemetry_event", fields...)

	if e.redisClient == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		e.zapLogger.Debug("telemetry marshal failed", zap.Error(err))
		return
	}

	// Bounded stream so an unread sink cannot grow without limit
	err = e.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: e.stream,
		MaxLen: e.maxLen,
		Approx: true,
		Values: map[string]any{"payload": payload},
	}).Err()
	if err != nil {
		e.zapLogger.Debug("telemetry stream append failed", zap.Error(err))
	}
}

// Nop returns an emitter that drops everything, for tests
func Nop() Emitter {
	return nopEmitter{}
}

type nopEmitter struct{}

func (nopEmitter) Emit(ctx context.Context, event Event) {}
