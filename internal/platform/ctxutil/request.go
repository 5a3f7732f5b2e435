package ctxutil

import "context"

type requestKey struct{}

// Request carries the correlation ids and caller identity of one HTTP request.
// Middlewares fill it in place as the request moves down the chain.
type Request struct {
	TraceID   string
	RequestID string
	UserID    string
}

func WithRequest(ctx context.Context, r *Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

func FromContext(ctx context.Context) *Request {
	if ctx == nil {
		return nil
	}
	if r, ok := ctx.Value(requestKey{}).(*Request); ok {
		return r
	}
	return nil
}

// Ensure returns the request attached to ctx, attaching an empty one if needed.
func Ensure(ctx context.Context) (context.Context, *Request) {
	if r := FromContext(ctx); r != nil {
		return ctx, r
	}
	r := &Request{}
	return WithRequest(ctx, r), r
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	if r := FromContext(ctx); r != nil {
		return r.UserID
	}
	return ""
}

// LogFields renders the non-empty ids as logger key/value pairs.
func LogFields(ctx context.Context) []any {
	r := FromContext(ctx)
	if r == nil {
		return nil
	}
	var out []any
	if r.TraceID != "" {
		out = append(out, "trace_id", r.TraceID)
	}
	if r.RequestID != "" {
		out = append(out, "request_id", r.RequestID)
	}
	if r.UserID != "" {
		out = append(out, "user_id", r.UserID)
	}
	return out
}
