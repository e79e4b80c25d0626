package dihttp

import (
	"log/slog"
	"net/http"

	di "github.com/graftlabs/graft"
	"github.com/graftlabs/graft/dicontext"
)

// RequestScopeMiddleware creates a new child container scope for each
// request. The scope is closed after the request has been processed.
//
// The current [*http.Request] is registered with the scope, so it can be
// used as a dependency for [di.Scoped] bindings.
//
// The scope is stored on the request context and can be accessed using
// [dicontext.Scope], [dicontext.Resolve], or [dicontext.MustResolve].
//
// The middleware has the standard func(http.Handler) http.Handler shape, so
// it can be mounted on any router that supports net/http middleware,
// including chi.
//
// Available options:
//   - [WithScopeOptions] sets [di.ContainerOption]s to use when creating each request scope.
//   - [WithNewScopeErrorHandler] sets the error handler for when a new scope cannot be created.
//   - [WithScopeCloseErrorHandler] sets the error handler for when closing the scope fails.
func RequestScopeMiddleware(c *di.Container, opts ...ScopeMiddlewareOption) func(http.Handler) http.Handler {
	mw := &scopeMiddleware{
		c:               c,
		newScopeHandler: defaultNewScopeErrorHandler,
		closeHandler:    defaultScopeCloseErrorHandler,
	}
	for _, opt := range opts {
		opt.applyScopeMiddleware(mw)
	}

	return func(next http.Handler) http.Handler {
		mw.next = next
		return mw
	}
}

// NewScopeErrorHandler is a function that writes an error response to the
// client. It is called by the scope middleware when creating the request
// scope fails.
//
// The default handler logs the error to [slog.Default] and writes a
// 500 Internal Server Error response.
type NewScopeErrorHandler = func(w http.ResponseWriter, r *http.Request, err error)

func defaultNewScopeErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "error creating new HTTP request scope", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// ScopeCloseErrorHandler is a function that handles errors from closing the
// request scope after the request has completed.
//
// The default handler logs the error to [slog.Default].
type ScopeCloseErrorHandler = func(r *http.Request, err error)

func defaultScopeCloseErrorHandler(r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "error closing HTTP request scope", "error", err)
}

type scopeMiddleware struct {
	c               *di.Container
	opts            []di.ContainerOption
	newScopeHandler NewScopeErrorHandler
	closeHandler    ScopeCloseErrorHandler
	next            http.Handler
}

func (m *scopeMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	opts := append(m.opts,
		// Register the *http.Request with the new scope
		di.WithBinding(r),
	)

	scope, err := m.c.NewScope(opts...)
	if err != nil {
		if m.newScopeHandler != nil {
			m.newScopeHandler(w, r, err)
		}
		return
	}

	ctx := dicontext.WithScope(r.Context(), scope)
	m.next.ServeHTTP(w, r.WithContext(ctx))

	err = scope.Close(ctx)
	if err != nil && m.closeHandler != nil {
		m.closeHandler(r, err)
	}
}
