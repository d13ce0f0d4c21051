package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ErrorDetailKey holds the structured fields of errors that implement
// zerolog.LogObjectMarshaler, such as LoadError or ValidationError.
const ErrorDetailKey = "error_detail"

// ErrFmtHandler is a slog handler that expands the "error" attribute the
// same way ZerologLogger does: the structured fields of the error go to
// "error_detail" and its cockroachdb/errors stack trace to "stacktrace".
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps handler with an ErrFmtHandler.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{
		handler: handler,
	}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var extra []slog.Attr
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		extra = errorAttrs(attr)
		return false
	})
	if len(extra) > 0 {
		r.AddAttrs(extra...)
	}
	return eh.handler.Handle(ctx, r)
}

// WithAttrs expands an error given through slog.Logger.With as well.
func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := attrs
	for _, a := range attrs {
		if a.Key == ErrAttrKey {
			out = append(append([]slog.Attr(nil), attrs...), errorAttrs(a)...)
			break
		}
	}
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(out)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

func errorAttrs(attr slog.Attr) []slog.Attr {
	err, ok := attr.Value.Any().(error)
	if !ok {
		return nil
	}
	var out []slog.Attr
	if m, ok := errorDetail(err); ok {
		out = append(out, slog.Any(ErrorDetailKey, renderObject(m)))
	}
	if st := extractStacktrace(err); st != "" {
		out = append(out, slog.String(StacktraceAttrKey, st))
	}
	return out
}

// errorDetail finds the first error in the chain that can log its own fields.
func errorDetail(err error) (zerolog.LogObjectMarshaler, bool) {
	var m zerolog.LogObjectMarshaler
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}

// renderObject encodes m with zerolog so that both loggers print the same
// fields.
func renderObject(m zerolog.LogObjectMarshaler) json.RawMessage {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	zl.Log().EmbedObject(m).Send()
	return json.RawMessage(bytes.TrimSpace(buf.Bytes()))
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
