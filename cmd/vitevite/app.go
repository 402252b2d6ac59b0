package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/jrsteele09/viteviteapp/api"
	"github.com/jrsteele09/viteviteapp/credentials"
	"github.com/jrsteele09/viteviteapp/credentials/filetier"
	"github.com/jrsteele09/viteviteapp/credentials/redistier"
	"github.com/jrsteele09/viteviteapp/gateway"
	"github.com/jrsteele09/viteviteapp/internal/config"
	"github.com/jrsteele09/viteviteapp/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// app is everything a command needs, wired from configuration
type app struct {
	cfg      config.Config
	out      io.Writer
	errOut   io.Writer
	logger   zerolog.Logger
	registry *prometheus.Registry

	store    *credentials.Store
	auth     *api.AuthClient
	client   *api.Client
	sessions *session.Manager

	closers []func() error
}

func newApp(cfg config.Config, out, errOut io.Writer) (*app, error) {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	a := &app{
		cfg:      cfg,
		out:      out,
		errOut:   errOut,
		logger:   zerolog.New(zerolog.ConsoleWriter{Out: errOut}).Level(level).With().Timestamp().Logger(),
		registry: prometheus.NewRegistry(),
	}

	durable, err := a.durableTier()
	if err != nil {
		return nil, err
	}
	ephemeral := filetier.NewSession(cfg.GetSessionFile(), cfg.GetProfile())
	a.store = credentials.NewStore(durable, ephemeral, credentials.WithLogger(a.logger))

	httpClient := &http.Client{Timeout: cfg.GetRequestTimeout()}
	a.auth = api.NewAuthClient(cfg.GetAPIURL(), httpClient)
	gw := gateway.New(a.store, a.auth,
		gateway.WithTimeout(cfg.GetRequestTimeout()),
		gateway.WithLogger(a.logger),
		gateway.WithMetrics(gateway.NewMetrics(a.registry)),
		gateway.WithLogoutFunc(a.onForcedLogout),
	)
	a.client = api.New(cfg.GetAPIURL(), gw, api.WithAdminGate(a.store))
	a.sessions = session.NewManager(a.auth, a.store, session.WithRevoker(a.client), session.WithLogger(a.logger))
	return a, nil
}

// durableTier is Redis when an address is configured, otherwise the credentials file
func (a *app) durableTier() (credentials.Tier, error) {
	if addr := a.cfg.GetRedisAddr(); addr != "" {
		tier, err := redistier.Dial(addr, a.cfg.GetRedisPassword(), a.cfg.GetRedisDB(), a.cfg.GetProfile())
		if err != nil {
			return nil, fmt.Errorf("connect credential store: %w", err)
		}
		a.closers = append(a.closers, tier.Close)
		return tier, nil
	}
	return filetier.New(a.cfg.GetCredentialsFile(), a.cfg.GetProfile()), nil
}

// onForcedLogout plays the part of sending the user back to the login screen
func (a *app) onForcedLogout(_ context.Context, reason error) {
	a.logger.Debug().Err(reason).Msg("forced logout")
	fmt.Fprintln(a.errOut, "session expired, please log in again")
	fmt.Fprintln(a.errOut, "run: vitevite login")
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// dumpMetrics writes the gateway counters gathered during the command
func (a *app) dumpMetrics() error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			sort.Strings(labels)
			fmt.Fprintf(a.errOut, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
		}
	}
	return nil
}
