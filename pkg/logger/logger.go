package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/procurehub/portal/pkg/env"
	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options configures the structured logger. Format defaults to PORTAL_LOG_FORMAT
// and then to JSON. Fields are attached to every entry.
type Options struct {
	ServiceName string
	Level       zerolog.Level
	WarnStack   bool
	Format      string
	Fields      map[string]any
	Output      io.Writer
}

// Logger wraps zerolog and carries request-scoped fields through context.
type Logger struct {
	base      *zerolog.Logger
	warnStack bool
}

type ctxKey struct{}

func New(opts Options) *Logger {
	if opts.Level == zerolog.NoLevel {
		opts.Level = zerolog.InfoLevel
	}
	if opts.Format == "" {
		opts.Format = env.Get("PORTAL_LOG_FORMAT", FormatJSON)
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	if strings.EqualFold(opts.Format, FormatConsole) {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
			NoColor:    env.Bool("PORTAL_LOG_NO_COLOR", false),
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	builder := zerolog.New(output).With().Timestamp().Str("service", opts.ServiceName)
	for _, k := range sortedKeys(opts.Fields) {
		builder = builder.Interface(k, opts.Fields[k])
	}
	base := builder.Logger().Level(opts.Level)

	return &Logger{base: &base, warnStack: opts.WarnStack}
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) entry(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if e, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
			return e
		}
	}
	return l.base
}

func (l *Logger) attach(ctx context.Context, e zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, &e)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.attach(ctx, l.entry(ctx).With().Interface(key, value).Logger())
}

// WithFields attaches fields in key order so entries are stable across runs.
func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	builder := l.entry(ctx).With()
	for _, k := range sortedKeys(fields) {
		builder = builder.Interface(k, fields[k])
	}
	return l.attach(ctx, builder.Logger())
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

// WithActor tags entries with the authenticated caller.
func (l *Logger) WithActor(ctx context.Context, userID, role string) context.Context {
	return l.attach(ctx, l.entry(ctx).With().Str("user_id", userID).Str("actor_role", role).Logger())
}

func (l *Logger) WithOrderID(ctx context.Context, orderID string) context.Context {
	return l.WithField(ctx, "order_id", orderID)
}

func (l *Logger) WithQuotationID(ctx context.Context, quotationID string) context.Context {
	return l.WithField(ctx, "quotation_id", quotationID)
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.entry(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.entry(ctx).Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	event := l.entry(ctx).Warn()
	if l.warnStack {
		event = event.Str("stack", stackTrace())
	}
	event.Msg(msg)
}

// Error always records a stack trace.
func (l *Logger) Error(ctx context.Context, msg string, err error) {
	event := l.entry(ctx).Error()
	if err != nil {
		event = event.Err(err)
	}
	event.Str("stack", stackTrace()).Msg(msg)
}

func stackTrace() string {
	return strings.TrimSpace(string(debug.Stack()))
}

func sortedKeys(fields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
