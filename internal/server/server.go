package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"rentapply/internal/metrics"
	"rentapply/internal/workflow"
	"rentapply/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// DocumentFiles serves stored document bodies.
type DocumentFiles interface {
	Open(ctx context.Context, applicationID, documentID string) (*types.Document, io.ReadCloser, error)
}

// Sessions persists workflow state between requests.
type Sessions interface {
	Load(ctx context.Context, id string) (*workflow.State, error)
	Save(ctx context.Context, id string, state *workflow.State) error
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) (func(), error)
}

type Service struct {
	logger  *logrus.Logger
	config  *types.Config
	deps    workflow.Deps
	files   DocumentFiles
	auth    Authenticator
	metrics *metrics.Metrics

	sessions Sessions
	newID    func() string
	cookie   *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	deps workflow.Deps,
	files DocumentFiles,
	sessions Sessions,
	newSessionID func() string,
	auth Authenticator,
	m *metrics.Metrics,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := cookieKey(config.CookieHashKey, 32)
	if err != nil {
		return nil, fmt.Errorf("decode COOKIE_HASH_KEY: %w", err)
	}
	blockKey, err := cookieKey(config.CookieBlockKey, 32)
	if err != nil {
		return nil, fmt.Errorf("decode COOKIE_BLOCK_KEY: %w", err)
	}
	if config.CookieHashKey == "" || config.CookieBlockKey == "" {
		logger.Warn("cookie keys not configured, generated ephemeral keys; sessions will not survive a restart")
	}

	if deps.Logger == nil {
		deps.Logger = logger
	}
	if deps.Recorder == nil && m != nil {
		deps.Recorder = m
	}

	s := &Service{
		logger:   logger,
		config:   config,
		deps:     deps,
		files:    files,
		auth:     auth,
		metrics:  m,
		sessions: sessions,
		newID:    newSessionID,
		cookie:   securecookie.New(hashKey, blockKey),
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	// redirect before routing so /workflow/ does not 404
	s.server.Handler = s.StripTrailingSlash(mux)

	return s, nil
}

func cookieKey(encoded string, size int) ([]byte, error) {
	if encoded == "" {
		return securecookie.GenerateRandomKey(size), nil
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.Handle("/healthz", route("/healthz", http.HandlerFunc(s.handleHealth)), http.MethodGet)
	r.Handle("/metrics", route("/metrics", s.metrics.Handler()), http.MethodGet)

	// the route is tagged ahead of auth so rejected requests are still
	// observed under their pattern
	authed := func(pattern string, fn http.HandlerFunc, method string) {
		r.Handle(pattern, route(pattern, s.RequireAuth(fn)), method)
	}

	authed("/workflow", s.handleGetWorkflow, http.MethodGet)
	authed("/workflow", s.handlePostWorkflow, http.MethodPost)

	authed("/workflow/next", s.handlePostNext, http.MethodPost)
	authed("/workflow/back", s.handlePostBack, http.MethodPost)
	authed("/workflow/goto", s.handlePostGoTo, http.MethodPost)

	authed("/workflow/application/draft", s.handlePostDraft, http.MethodPost)
	authed("/workflow/application/submit", s.handlePostSubmit, http.MethodPost)

	authed("/workflow/documents", s.handlePostDocuments, http.MethodPost)
	authed("/workflow/documents/:documentID", s.handleGetDocument, http.MethodGet)

	authed("/workflow/lease", s.handlePostLease, http.MethodPost)
	authed("/workflow/contract/sign", s.handlePostSign, http.MethodPost)
	authed("/workflow/contract/download", s.handleGetContractDownload, http.MethodGet)

	authed("/workflow/payment", s.handlePostPayment, http.MethodPost)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) identityFromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(contextKeyIdentity).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, fmt.Errorf("user id not found in context")
	}
	return id, nil
}
