// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbase/taxon-api/internal/logging"
)

const testToken = "VALIDTOKEN"

func newTestHTTPCaller(t *testing.T, url string, opts ...CallerOption) *HTTPCaller {
	t.Helper()
	opts = append([]CallerOption{
		WithInsecureHTTP(true),
		WithCallerLogger(logging.NewTestLogger().Logger),
	}, opts...)
	caller, err := NewHTTPCaller(url, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = caller.Close() })
	return caller
}

func newFakeClient(t *testing.T, opts ...CallerOption) (*Client, *fakeTaxonAPI) {
	t.Helper()
	fake, srv := newFakeTaxonAPI(t, testToken)
	opts = append([]CallerOption{WithToken(testToken)}, opts...)
	return New(newTestHTTPCaller(t, srv.URL, opts...)), fake
}

func TestChildrenPointBackToParent(t *testing.T) {
	ctx := context.Background()
	client, _ := newFakeClient(t)

	children, err := client.GetChildren(ctx, "1/3/1")
	require.NoError(t, err)
	assert.Equal(t, []ObjectReference{"1/4/1", "1/5/1"}, children)

	for _, child := range children {
		parent, err := client.GetParent(ctx, child)
		require.NoError(t, err)
		assert.Equal(t, ObjectReference("1/3/1"), parent)
	}

	root, err := client.GetParent(ctx, "1/1/1")
	require.NoError(t, err)
	assert.Equal(t, ObjectReference(""), root)
}

func TestLineageMatchesParentChain(t *testing.T) {
	ctx := context.Background()
	client, _ := newFakeClient(t)

	var chain []ObjectReference
	for ref := ObjectReference("1/4/1"); ; {
		parent, err := client.GetParent(ctx, ref)
		require.NoError(t, err)
		if parent == "" {
			break
		}
		chain = append(chain, parent)
		ref = parent
	}

	lineage, err := client.GetDecoratedScientificLineage(ctx, GetDecoratedScientificLineageParams{Ref: "1/4/1"})
	require.NoError(t, err)
	assert.Len(t, lineage.DecoratedScientificLineage, len(chain))
	assert.Equal(t, ObjectReference("1/1/1"), lineage.DecoratedScientificLineage[0].Ref)
	assert.Equal(t, chain, refsOf(lineage.Lineage().Lineage))

	names, err := client.GetScientificLineage(ctx, "1/4/1")
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "Bacteria", "Proteobacteria"}, names)
}

func TestEnvelopeOnTheWire(t *testing.T) {
	ctx := context.Background()
	client, fake := newFakeClient(t)

	name, err := client.GetScientificName(ctx, "1/4/1")
	require.NoError(t, err)
	assert.Equal(t, "Escherichia coli", name)

	_, err = client.WithServiceVersion("dev").GetTaxonomicID(ctx, "1/4/1")
	require.NoError(t, err)

	seen := fake.requests()
	require.Len(t, seen, 2)

	first := seen[0]
	assert.Equal(t, "1.1", first.body.Version)
	assert.Equal(t, "TaxonAPI.get_scientific_name", first.body.Method)
	assert.NotEmpty(t, first.body.ID)
	require.Len(t, first.body.Params, 1)
	assert.JSONEq(t, `"1/4/1"`, string(first.body.Params[0]))
	assert.Nil(t, first.body.Context)
	assert.Equal(t, testToken, first.authorization)
	assert.Equal(t, "application/json", first.header.Get("Content-Type"))

	second := seen[1]
	require.NotNil(t, second.body.Context)
	assert.Equal(t, "dev", second.body.Context.ServiceVersion)
	assert.NotEqual(t, first.body.ID, second.body.ID)
}

func TestStatusSendsNoCredentials(t *testing.T) {
	fake, srv := newFakeTaxonAPI(t, testToken)
	client := New(newTestHTTPCaller(t, srv.URL))

	status, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OK", status["state"])

	seen := fake.requests()
	require.Len(t, seen, 1)
	assert.Empty(t, seen[0].authorization)
	assert.Empty(t, seen[0].body.Params)
}

func TestMissingTokenFailsLocally(t *testing.T) {
	fake, srv := newFakeTaxonAPI(t, testToken)
	client := New(newTestHTTPCaller(t, srv.URL))

	_, err := client.GetParent(context.Background(), "1/4/1")
	var ae *AuthError
	require.True(t, errors.As(err, &ae), "got %v", err)
	assert.Equal(t, "TaxonAPI.get_parent", ae.Method)
	assert.Empty(t, fake.requests())
}

func TestCredentialsNeverSentOverPlainHTTP(t *testing.T) {
	fake, srv := newFakeTaxonAPI(t, testToken)
	caller, err := NewHTTPCaller(srv.URL, WithToken(testToken))
	require.NoError(t, err)
	client := New(caller)

	_, err = client.GetParent(context.Background(), "1/4/1")
	var ae *AuthError
	require.True(t, errors.As(err, &ae), "got %v", err)
	assert.Empty(t, fake.requests())

	_, err = client.Status(context.Background())
	assert.NoError(t, err)
}

func TestTrustAllCertificates(t *testing.T) {
	fake := &fakeTaxonAPI{token: testToken}
	srv := httptest.NewTLSServer(fake)
	t.Cleanup(srv.Close)

	strict := New(newTestHTTPCaller(t, srv.URL, WithToken(testToken)))
	_, err := strict.GetParent(context.Background(), "1/4/1")
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %v", err)

	trusting := New(newTestHTTPCaller(t, srv.URL, WithToken(testToken), WithTrustAllCertificates(true)))
	parent, err := trusting.GetParent(context.Background(), "1/4/1")
	require.NoError(t, err)
	assert.Equal(t, ObjectReference("1/3/1"), parent)
}

func TestInvalidTokenIsAuthError(t *testing.T) {
	_, srv := newFakeTaxonAPI(t, testToken)
	client := New(newTestHTTPCaller(t, srv.URL, WithToken("EXPIRED")))

	_, err := client.GetKingdom(context.Background(), "1/4/1")
	var ae *AuthError
	require.True(t, errors.As(err, &ae), "got %v", err)
	assert.Contains(t, ae.Message, "Token validation failed")
}

func TestServerErrorIsProtocolError(t *testing.T) {
	client, _ := newFakeClient(t)

	_, err := client.GetScientificName(context.Background(), "9/9/9")
	var pe *ProtocolError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, -32500, pe.Code)
	assert.Equal(t, "TaxonAPI.get_scientific_name", pe.Method)
}

func TestHTTPStatusMapping(t *testing.T) {
	for _, tt := range []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   "go away",
			check: func(t *testing.T, err error) {
				var ae *AuthError
				assert.True(t, errors.As(err, &ae), "got %v", err)
			},
		},
		{
			name:   "bad gateway with html",
			status: http.StatusBadGateway,
			body:   "<html>upstream down</html>",
			check: func(t *testing.T, err error) {
				var te *TransportError
				assert.True(t, errors.As(err, &te), "got %v", err)
			},
		},
		{
			name:   "ok with html",
			status: http.StatusOK,
			body:   "<html>maintenance</html>",
			check: func(t *testing.T, err error) {
				var pe *ProtocolError
				assert.True(t, errors.As(err, &pe), "got %v", err)
			},
		},
		{
			name:   "ok with null result",
			status: http.StatusOK,
			body:   `{"version":"1.1","result":null}`,
			check: func(t *testing.T, err error) {
				var pe *ProtocolError
				assert.True(t, errors.As(err, &pe), "got %v", err)
			},
		},
		{
			name:   "ok with empty result",
			status: http.StatusOK,
			body:   `{"version":"1.1","result":[]}`,
			check: func(t *testing.T, err error) {
				var pe *ProtocolError
				assert.True(t, errors.As(err, &pe), "got %v", err)
			},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			client := New(newTestHTTPCaller(t, srv.URL, WithToken(testToken)))
			_, err := client.GetDomain(context.Background(), "1/4/1")
			tt.check(t, err)
		})
	}
}

func TestReadTimeoutIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	client := New(newTestHTTPCaller(t, srv.URL, WithToken(testToken), WithReadTimeout(50*time.Millisecond)))
	_, err := client.GetAliases(context.Background(), "1/4/1")
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, "TaxonAPI.get_aliases", te.Method)
}

func TestStreamingModeSendsChunkedBody(t *testing.T) {
	client, fake := newFakeClient(t, WithStreamingMode(true))

	parent, err := client.GetParent(context.Background(), "1/4/1")
	require.NoError(t, err)
	assert.Equal(t, ObjectReference("1/3/1"), parent)

	seen := fake.requests()
	require.Len(t, seen, 1)
	assert.Equal(t, int64(-1), seen[0].contentLength)
}

func TestRequestOptions(t *testing.T) {
	client, fake := newFakeClient(t, WithRequestOptions(
		WithHeader("X-Request-Source", "taxonapi-test"),
		WithQueryParam("trace", "1"),
	))

	_, err := client.GetParent(context.Background(), "1/4/1")
	require.NoError(t, err)

	seen := fake.requests()
	require.Len(t, seen, 1)
	assert.Equal(t, "taxonapi-test", seen[0].header.Get("X-Request-Source"))
	assert.Equal(t, "trace=1", seen[0].query)
}

// droppingServer closes the connection without replying to the first
// failures requests, then serves the fake taxonomy.
func droppingServer(t *testing.T, failures int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	fake := &fakeTaxonAPI{token: testToken}
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= failures {
			conn, _, err := w.(http.Hijacker).Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		fake.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &attempts
}

func TestTransientFailuresAreRetriedWhenEnabled(t *testing.T) {
	srv, attempts := droppingServer(t, 1)
	client := New(newTestHTTPCaller(t, srv.URL, WithToken(testToken), WithMaxRetries(2)))

	parent, err := client.GetParent(context.Background(), "1/4/1")
	require.NoError(t, err)
	assert.Equal(t, ObjectReference("1/3/1"), parent)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestNoRetryByDefault(t *testing.T) {
	srv, attempts := droppingServer(t, 1)
	client := New(newTestHTTPCaller(t, srv.URL, WithToken(testToken)))

	_, err := client.GetParent(context.Background(), "1/4/1")
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestServerErrorsAreNotRetried(t *testing.T) {
	fake, srv := newFakeTaxonAPI(t, testToken)
	client := New(newTestHTTPCaller(t, srv.URL, WithToken(testToken), WithMaxRetries(3)))

	_, err := client.GetParent(context.Background(), "9/9/9")
	var pe *ProtocolError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Len(t, fake.requests(), 1)
}

func TestNewHTTPCallerRejectsBadInput(t *testing.T) {
	_, err := NewHTTPCaller("ftp://kbase.us/services/taxonomy_api")
	assert.Error(t, err)

	_, err = NewHTTPCaller("https://kbase.us/services/taxonomy_api", WithMaxRetries(-1))
	assert.Error(t, err)
}

func TestConcurrentCallsShareOneClient(t *testing.T) {
	client, fake := newFakeClient(t)
	refs := []ObjectReference{"1/1/1", "1/2/1", "1/3/1", "1/4/1", "1/5/1"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		ref := refs[i%len(refs)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := client.GetScientificName(context.Background(), ref)
			assert.NoError(t, err)
			assert.Equal(t, fakeTaxonomy[ref].name, name)
		}()
	}
	wg.Wait()
	assert.Len(t, fake.requests(), 20)
}

type countingCodec struct {
	JSONCodec
	encoded atomic.Int32
}

func (c *countingCodec) Encode(v interface{}) ([]byte, error) {
	c.encoded.Add(1)
	return c.JSONCodec.Encode(v)
}

func TestCustomCodecEncodesEnvelope(t *testing.T) {
	codec := &countingCodec{}
	client, fake := newFakeClient(t, WithCodec(codec))

	parent, err := client.GetParent(context.Background(), "1/4/1")
	require.NoError(t, err)
	assert.Equal(t, ObjectReference("1/3/1"), parent)
	assert.Equal(t, int32(1), codec.encoded.Load())
	assert.Len(t, fake.requests(), 1)
}

func TestCustomHTTPClient(t *testing.T) {
	fake := &fakeTaxonAPI{token: testToken}
	srv := httptest.NewTLSServer(fake)
	t.Cleanup(srv.Close)

	// srv.Client trusts the test certificate without disabling verification.
	client := New(newTestHTTPCaller(t, srv.URL, WithToken(testToken), WithHTTPClient(srv.Client())))
	parent, err := client.GetParent(context.Background(), "1/4/1")
	require.NoError(t, err)
	assert.Equal(t, ObjectReference("1/3/1"), parent)
}

// signallingCodec reports when a streamed encode has finished.
type signallingCodec struct {
	JSONCodec
	done chan error
}

func (c signallingCodec) EncodeTo(w io.Writer, v interface{}) error {
	err := c.JSONCodec.EncodeTo(w, v)
	c.done <- err
	return err
}

func TestStreamingEncoderStopsWhenRequestCannotBeBuilt(t *testing.T) {
	codec := signallingCodec{done: make(chan error, 1)}
	caller := newTestHTTPCaller(t, "http://localhost", WithStreamingMode(true), WithCodec(codec))
	caller.url = &url.URL{Scheme: "http", Host: "bad host"}

	env := &rpcRequest{Version: "1.1", Method: "TaxonAPI.get_parent", Params: []interface{}{"1/4/1"}, ID: "1"}
	_, err := caller.roundTrip(context.Background(), env, nil, false)
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %v", err)

	select {
	case err := <-codec.done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("streaming encoder still blocked")
	}
}
