package otf_api

import (
	"log/slog"
	"net/http"
)

type internalRoundTripper func(*http.Request) (*http.Response, error)

func (rt internalRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req)
}

// Middleware wraps a RoundTripper with extra behavior.
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain applies middlewares to rt, innermost first.
func Chain(rt http.RoundTripper, middlewares ...Middleware) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}

	for _, m := range middlewares {
		rt = m(rt)
	}

	return rt
}

// AddHeader sets a static header on every request.
func AddHeader(key string, value string) Middleware {
	return func(rt http.RoundTripper) http.RoundTripper {
		return internalRoundTripper(func(req *http.Request) (*http.Response, error) {
			header := req.Header

			if header == nil {
				header = make(http.Header)
			}

			header.Set(key, value)

			return rt.RoundTrip(req)
		})
	}
}

// TraceRequests emits a debug line per request. Query parameters are logged;
// headers are not, so tokens never reach the log.
func TraceRequests(logger *slog.Logger) Middleware {
	return func(rt http.RoundTripper) http.RoundTripper {
		return internalRoundTripper(func(req *http.Request) (*http.Response, error) {
			logger.Debug("api request",
				"method", req.Method,
				"host", req.URL.Host,
				"path", req.URL.Path,
				"params", req.URL.RawQuery,
			)
			return rt.RoundTrip(req)
		})
	}
}
