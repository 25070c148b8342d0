//go:build grpc

// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/kbase/taxon-api/internal/logging"
)

func init() {
	// Register gRPC transport when build tag is enabled
	registerTransport(TransportGRPC, dialGRPC)
}

// grpcCodec carries the JSON-RPC envelope as a gRPC message. Replies are
// kept as raw bytes so they go through the same decoding as HTTP replies.
type grpcCodec struct {
	codec Codec
}

func (c grpcCodec) Marshal(v any) ([]byte, error) {
	return c.codec.Encode(v)
}

func (c grpcCodec) Unmarshal(data []byte, v any) error {
	if raw, ok := v.(*[]byte); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	return c.codec.Decode(data, v)
}

func (grpcCodec) Name() string { return "json" }

func dialGRPC(_ context.Context, cfg Config, log *zap.Logger) (Caller, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid service url %q", cfg.URL)
	}
	secure := u.Scheme == "https"

	creds := insecure.NewCredentials()
	if secure {
		creds = credentials.NewTLS(&tls.Config{InsecureSkipVerify: cfg.TrustAllCertificates}) //nolint:gosec
	}
	conn, err := grpc.NewClient(u.Host, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, errors.Wrap(err, "grpc dial")
	}
	return &grpcCaller{
		conn:          conn,
		codec:         grpcCodec{codec: defaultCodec},
		token:         cfg.Token,
		secure:        secure,
		allowInsecure: cfg.AllowInsecureHTTP,
		timeout:       cfg.ReadTimeout(),
		log:           logging.Wrap(log).Named("grpc"),
	}, nil
}

type grpcCaller struct {
	conn          *grpc.ClientConn
	codec         grpcCodec
	token         string
	secure        bool
	allowInsecure bool
	timeout       time.Duration
	log           *logging.Logger
}

// grpcMethod turns "TaxonAPI.get_parent" into "/TaxonAPI/get_parent".
func grpcMethod(method string) string {
	return "/" + strings.Replace(method, ".", "/", 1)
}

func (c *grpcCaller) Call(ctx context.Context, method string, params []interface{}, opts CallOptions) ([]json.RawMessage, error) {
	if opts.AuthRequired {
		if err := checkCredentials(method, c.token, c.secure, c.allowInsecure); err != nil {
			return nil, err
		}
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", c.token)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if params == nil {
		params = []interface{}{}
	}

	env := &rpcRequest{
		Version: protocolVersion,
		Method:  method,
		Params:  params,
		ID:      uuid.NewString(),
	}
	if opts.ServiceVersion != "" {
		env.Context = &rpcContext{ServiceVersion: opts.ServiceVersion}
	}

	c.log.Debug("sending gRPC request", zap.String("method", method))

	var reply []byte
	if err := c.conn.Invoke(ctx, grpcMethod(method), env, &reply, grpc.ForceCodec(c.codec)); err != nil {
		return nil, grpcError(method, err)
	}
	return decodeResponse(method, http.StatusOK, reply)
}

func grpcError(method string, err error) error {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return &AuthError{Method: method, Message: st.Message(), Err: err}
	case codes.Internal, codes.Unimplemented, codes.InvalidArgument, codes.DataLoss:
		return &ProtocolError{Method: method, Reason: st.Message(), Code: int(st.Code()), Err: err}
	default:
		return &TransportError{Method: method, Err: err}
	}
}

func (c *grpcCaller) Close() error {
	return c.conn.Close()
}
