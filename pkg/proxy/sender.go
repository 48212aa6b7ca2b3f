package proxy

import (
	"context"
	"net/http"

	"github.com/etenders-ocds/ocds-proxy/pkg/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"
)

// Sender delivers a Response through a hosting runtime.
type Sender interface {
	Send(resp *Response) error
}

// ResponseWriterSender delivers responses through a net/http ResponseWriter.
type ResponseWriterSender struct {
	W http.ResponseWriter
}

// Send copies headers, writes the status and, if present, the body.
func (s ResponseWriterSender) Send(resp *Response) error {
	header := s.W.Header()
	for key, values := range resp.Header {
		header[key] = append([]string(nil), values...)
	}

	s.W.WriteHeader(resp.Status)

	if len(resp.Body) == 0 {
		return nil
	}
	_, err := s.W.Write(resp.Body)
	return err
}

// GinSender delivers responses through a gin context.
type GinSender struct {
	C *gin.Context
}

// Send sets headers on the gin writer and renders the body as raw data.
func (s GinSender) Send(resp *Response) error {
	for key := range resp.Header {
		s.C.Header(key, resp.Header.Get(key))
	}

	if len(resp.Body) == 0 {
		s.C.Status(resp.Status)
		s.C.Writer.WriteHeaderNow()
		return nil
	}

	s.C.Data(resp.Status, resp.Header.Get("Content-Type"), resp.Body)
	if err := s.C.Errors.Last(); err != nil {
		return err
	}
	return nil
}

// ServeHTTP makes the proxy usable as a plain net/http handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, id := p.inbound(r)

	resp := p.Handle(ctx, RequestFromHTTP(r))
	resp.Header.Set(HeaderRequestID, id)

	if err := (ResponseWriterSender{W: w}).Send(resp); err != nil {
		p.logger.Warn().Err(err).Str("request_id", id).Msg("Failed to write response")
	}
}

// GinHandler returns a gin handler serving every proxy route. It is meant to
// be registered for the proxy routes and as the NoRoute handler, so that
// unroutable paths still receive the proxy's 404.
func (p *Proxy) GinHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, id := p.inbound(c.Request)

		resp := p.Handle(ctx, RequestFromHTTP(c.Request))
		resp.Header.Set(HeaderRequestID, id)

		if err := (GinSender{C: c}).Send(resp); err != nil {
			p.logger.Warn().Err(err).Str("request_id", id).Msg("Failed to write response")
		}
		c.Abort()
	}
}

// maxRequestIDLength caps inbound request ids; a UUID is 36 characters.
const maxRequestIDLength = 128

// validRequestID reports whether an inbound X-Request-ID can be echoed and
// logged as is: non-empty, bounded, and limited to [A-Za-z0-9._:-].
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}

// inbound derives the handling context for r: the inbound trace context and a
// request ID, reused from X-Request-ID when the caller supplied a valid one.
func (p *Proxy) inbound(r *http.Request) (context.Context, string) {
	id := r.Header.Get(HeaderRequestID)
	if !validRequestID(id) {
		id = uuid.NewString()
	}

	ctx := p.propagators.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx = logging.ContextWithRequestID(ctx, id)
	return ctx, id
}
