// Package proxy relays approved requests to the protected upstream.
package proxy

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"sharp/config"
	deliverycontext "sharp/internal/delivery/context"
	"sharp/internal/errors"
	"sharp/internal/version"

	"github.com/labstack/echo/v4"
)

// Forwarder owns the single reverse proxy to the upstream origin. The
// request is relayed whole: method, path, query, headers and body all pass
// through untouched, and the response streams back without buffering.
type Forwarder struct {
	proxy  *httputil.ReverseProxy
	logger *slog.Logger
}

// NewForwarder builds the forwarder from the configured upstream URL.
func NewForwarder(cfg *config.Config, logger *slog.Logger) (*Forwarder, error) {
	upstream, err := url.Parse(cfg.Upstream.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid upstream url %q", cfg.Upstream.URL)
	}
	if upstream.Scheme == "" || upstream.Host == "" {
		return nil, errors.Errorf("upstream url %q must include scheme and host", cfg.Upstream.URL)
	}

	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		// An unreachable upstream is the gateway's own failure to relay,
		// reported as 502 with a diagnostic body. It is never a deny.
		deliverycontext.GetLoggerOrDefault(r.Context(), logger).Error("Upstream relay failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)

		w.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprintf(w, "failed to connect to upstream server\n%v\n\n%s", err, version.String)
	}

	return &Forwarder{proxy: proxy, logger: logger}, nil
}

// Handle relays one approved request.
func (f *Forwarder) Handle(c echo.Context) error {
	f.proxy.ServeHTTP(c.Response(), c.Request())

	return nil
}
