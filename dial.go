// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kbase/taxon-api/internal/logging"
)

// Dial builds a Client for cfg using the transport it names. When cfg has a
// user and password but no token, Dial logs in first. Options override the
// service version and logger taken from cfg.
func Dial(ctx context.Context, cfg Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dial, ok := lookupTransport(cfg.Transport)
	if !ok {
		return nil, fmt.Errorf("unknown transport: %s (available: %v)", cfg.Transport, AvailableTransports())
	}

	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = logging.NewLoggerFromEnv(cfg.LogEnvironment).Logger
	}

	if cfg.Token == "" && cfg.User != "" {
		token, err := Login(ctx, newHTTPClient(cfg.ReadTimeout(), cfg.TrustAllCertificates), cfg.AuthURL, cfg.User, cfg.Password)
		if err != nil {
			return nil, err
		}
		logger.Debug("logged in", zap.String("user", cfg.User))
		cfg.Token = token
	}

	caller, err := dial(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	base := []ClientOption{
		WithServiceVersion(cfg.ServiceVersion),
		WithLogger(logger),
	}
	return New(caller, append(base, opts...)...), nil
}

// dialJSON creates the HTTP JSON-RPC caller
func dialJSON(_ context.Context, cfg Config, log *zap.Logger) (Caller, error) {
	caller, err := NewHTTPCaller(cfg.URL,
		WithToken(cfg.Token),
		WithReadTimeout(cfg.ReadTimeout()),
		WithInsecureHTTP(cfg.AllowInsecureHTTP),
		WithTrustAllCertificates(cfg.TrustAllCertificates),
		WithStreamingMode(cfg.StreamingMode),
		WithMaxRetries(cfg.MaxRetries),
		WithCallerLogger(log),
	)
	if err != nil {
		return nil, err
	}
	return caller, nil
}
