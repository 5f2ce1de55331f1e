package agent

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"

	v1 "github.com/erikmagkekse/nfs-manager/agent/api/v1"
	"github.com/erikmagkekse/nfs-manager/exports"
	"github.com/erikmagkekse/nfs-manager/model"
	"github.com/erikmagkekse/nfs-manager/provision"
	"github.com/erikmagkekse/nfs-manager/utils"

	"github.com/labstack/echo/v5"
	"github.com/rs/zerolog/log"
)

type Agent struct {
	cfg     *model.AgentConfig
	version string
	commit  string
	echo    *echo.Echo
	ready   bool
}

func NewAgent(cfg *model.AgentConfig, version, commit string) *Agent {
	return &Agent{cfg: cfg, version: version, commit: commit}
}

func (a *Agent) Start(ctx context.Context) error {
	tokens := parseTokens(a.cfg.Tokens)
	if len(tokens) == 0 {
		return fmt.Errorf("AGENT_TOKENS must contain at least one name:token pair")
	}
	log.Info().Int("count", len(tokens)).Msg("api tokens configured")

	prov, err := provision.New(a.cfg.Provision, &utils.ShellRunner{})
	if err != nil {
		return fmt.Errorf("provisioner config: %w", err)
	}

	features := map[string]string{
		"service_unit":   a.cfg.Provision.ServiceUnit,
		"export_options": a.cfg.Provision.Options,
	}
	if a.cfg.ReconcileInterval > 0 {
		features["nfs_reconcile"] = a.cfg.ReconcileInterval.String()
	}

	h := &v1.Handler{
		Provisioner: prov,
		ReadOptions: exports.ReadOptions{IncludeUnnamed: a.cfg.Provision.Exports.IncludeUnnamed},
	}
	a.echo = NewServer(h, tokens, a.version, a.commit, features)
	a.ready = true

	if a.cfg.ReconcileInterval > 0 {
		r := &Reconciler{File: prov.ExportsFile(), Exporter: prov.Exporter()}
		r.Start(ctx, a.cfg.ReconcileInterval)
	}

	go a.serve(ctx)
	return nil
}

// NewServer wires the routes. Health and metrics are unauthenticated.
func NewServer(h *v1.Handler, tokens map[string]string, version, commit string, features map[string]string) *echo.Echo {
	e := echo.New()
	e.Use(v1.MetricsMiddleware())

	e.GET("/healthz", v1.Healthz(version, commit, features))
	e.GET("/metrics", v1.MetricsHandler())

	api := e.Group("/v1", v1.AuthMiddleware(tokens))
	api.GET("/exports", h.ListExports)
	api.GET("/exports/active", h.ListActiveExports)
	api.POST("/exports", h.CreateExport)

	return e
}

func (a *Agent) serve(ctx context.Context) {
	s := &http.Server{
		Addr:    a.cfg.ListenAddr,
		Handler: a.echo,
	}
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	var err error
	if a.cfg.TLSCert != "" && a.cfg.TLSKey != "" {
		s.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		log.Info().Str("addr", a.cfg.ListenAddr).Msg("starting agent with TLS")
		err = s.ListenAndServeTLS(a.cfg.TLSCert, a.cfg.TLSKey)
	} else {
		log.Warn().Str("addr", a.cfg.ListenAddr).Msg("starting agent without TLS - set AGENT_TLS_CERT and AGENT_TLS_KEY for production")
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("agent server failed")
	}
}

func (a *Agent) IsReady() bool {
	return a.ready
}

// parseTokens parses "name:token,name:token" into map[token]name.
// Returns nil if input is empty.
func parseTokens(s string) map[string]string {
	if s == "" {
		return nil
	}
	m := make(map[string]string)
	for _, entry := range strings.Split(s, ",") {
		name, token, ok := strings.Cut(strings.TrimSpace(entry), ":")
		name, token = strings.TrimSpace(name), strings.TrimSpace(token)
		if ok && name != "" && token != "" {
			m[token] = name
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
