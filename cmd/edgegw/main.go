// Command edgegw is a small demonstration gateway wiring the core
// packages together into the SNI-routed MITM HTTPS scenario worked
// through in original_source/examples/tls_sni_proxy_mitm.rs: a listener
// peeks each ClientHello's SNI, terminates TLS locally for hosts under
// the configured MITM set (minting leaf certificates on demand) and
// tunnels everything else untouched, byte for byte, to the SNI's own
// host:443.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/edgeproxy/edgeproxy/internal/config"
	"github.com/edgeproxy/edgeproxy/internal/extmap"
	"github.com/edgeproxy/edgeproxy/internal/grpcneg"
	"github.com/edgeproxy/edgeproxy/internal/mitm"
	"github.com/edgeproxy/edgeproxy/internal/requestid"
)

const examplePayload = `<!doctype html>
<html><body><h1>edgegw</h1><p>served locally for the MITM'd example host.</p></body></html>
`

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("edgegw: build logger: %v", err)
	}
	defer logger.Sync()

	env, err := config.LoadEnvConfig()
	if err != nil {
		logger.Fatal("invalid environment configuration", zap.Error(err))
	}
	runtime := config.NewDefaultRuntimeConfig()
	runtime.MITMHosts = orDefault(env.MITMHosts, []string{"example.com", "ramaproxy.org"})

	if profilePath := os.Getenv("EDGEGW_CONFIG_PROFILE"); profilePath != "" {
		profile, err := config.LoadProfileFile(profilePath)
		if err != nil {
			logger.Fatal("failed to load config profile", zap.String("path", profilePath), zap.Error(err))
		}
		config.ApplyProfile(runtime, profile)
		logger.Info("applied config profile", zap.String("path", profilePath))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw, err := newGateway(env, runtime, logger)
	if err != nil {
		logger.Fatal("failed to build gateway", zap.Error(err))
	}
	defer gw.certCache.Stop()

	logSampleGRPCNegotiation(logger)

	addr := net.JoinHostPort(env.ListenAddress, strconv.Itoa(env.ListenPort))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", addr), zap.Error(err))
	}
	logger.Info("edgegw listening", zap.String("addr", addr), zap.Strings("mitm_hosts", runtime.MITMHosts))

	go gw.serve(ctx, listener)

	<-ctx.Done()
	logger.Info("shutting down")
	_ = listener.Close()
}

// gateway bundles the SNI router, the on-demand cert cache, and the MITM
// HTTP handler this process serves intercepted connections through.
type gateway struct {
	router    *mitm.SNIRouter
	certCache *mitm.CertCache
	handler   http.Handler
	logger    *zap.Logger
}

func newGateway(env *config.EnvConfig, runtime *config.RuntimeConfig, logger *zap.Logger) (*gateway, error) {
	exact, parents := splitMITMHosts(runtime.MITMHosts)
	router := mitm.NewSNIRouter(443, exact, parents)

	issuer := &selfSignedIssuer{}
	certCache, err := mitm.NewCertCache(issuer, mitm.CertCacheConfig{SweepSchedule: env.MITMCertSweep})
	if err != nil {
		return nil, err
	}

	proxy := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = "https"
			req.URL.Host = req.Host
		},
	}
	handler := mitm.NewHandler(proxy, "edgegw-sni-proxy")
	for _, host := range exact {
		if host == "example.com" {
			handler.Local[host] = mitm.LocalPayload{ContentType: "text/html; charset=utf-8", Body: []byte(examplePayload)}
		}
	}
	handler.ParentDomains = parents

	producer := requestIDProducer(runtime.RequestIDProducer)
	chained := withRequestID(handler, runtime.RequestIDHeader, producer, logger)

	return &gateway{router: router, certCache: certCache, handler: chained, logger: logger}, nil
}

func (g *gateway) serve(ctx context.Context, listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			g.logger.Warn("accept error", zap.Error(err))
			continue
		}
		go g.handleConn(ctx, conn)
	}
}

func (g *gateway) handleConn(ctx context.Context, conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("panic handling connection", zap.Any("recover", r))
		}
	}()

	sni, wrapped, err := mitm.PeekClientHelloSNI(conn)
	if err != nil && !errors.Is(err, mitm.ErrNoServerName) {
		g.logger.Debug("failed to peek ClientHello SNI, closing connection", zap.Error(err))
		conn.Close()
		return
	}

	route := g.router.Route(sni)
	switch route.Decision {
	case mitm.DecisionTunnel:
		g.tunnel(wrapped, route)
	default:
		g.terminateAndServe(ctx, wrapped, sni)
	}
}

// tunnel forwards wrapped untouched to route's destination, splicing both
// directions until either side closes.
func (g *gateway) tunnel(wrapped net.Conn, route mitm.Route) {
	defer wrapped.Close()

	upstream, err := net.DialTimeout("tcp", net.JoinHostPort(route.TunnelHost, strconv.Itoa(route.TunnelPort)), 10*time.Second)
	if err != nil {
		g.logger.Warn("tunnel dial failed", zap.String("host", route.TunnelHost), zap.Error(err))
		return
	}
	defer upstream.Close()

	done := make(chan struct{}, 2)
	go func() { io.Copy(upstream, wrapped); done <- struct{}{} }()
	go func() { io.Copy(wrapped, upstream); done <- struct{}{} }()
	<-done
}

// terminateAndServe performs the local TLS handshake (minting a leaf
// certificate on demand) and serves HTTP over the resulting connection,
// threading the observed SNI into the request context so the handler can
// route on it even when the HTTP Host header disagrees.
func (g *gateway) terminateAndServe(ctx context.Context, wrapped net.Conn, sni string) {
	tlsConfig := &tls.Config{
		GetCertificate: g.certCache.GetCertificate,
	}
	tlsConn := tls.Server(wrapped, tlsConfig)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		g.logger.Debug("MITM handshake failed", zap.String("sni", sni), zap.Error(err))
		tlsConn.Close()
		return
	}

	handler := g.handler
	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(mitm.WithIngressSNI(r.Context(), sni))
			handler.ServeHTTP(w, r)
		}),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	srv.Serve(&singleConnListener{conn: tlsConn})
}

// withRequestID attaches a per-request extmap.Map and runs the
// Set/Propagate pair around handler, logging the resolved id.
func withRequestID(handler http.Handler, headerName string, producer requestid.MakeRequestId, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ext := extmap.New()
		requestid.Set(ext, r, headerName, producer)
		requestid.Propagate(ext, w.Header(), headerName)

		start := time.Now()
		handler.ServeHTTP(w, r)
		logger.Info("request served",
			zap.String("host", r.Host),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func requestIDProducer(name string) requestid.MakeRequestId {
	switch strings.ToLower(name) {
	case "nanoid":
		return requestid.NanoIDProducer{}
	default:
		return requestid.UUIDv4Producer{}
	}
}

func logSampleGRPCNegotiation(logger *zap.Logger) {
	var enabled grpcneg.EnabledEncodings
	enabled.Enable(grpcneg.Gzip)

	if enc, status := grpcneg.Negotiate("gzip", enabled); status == nil {
		logger.Debug("sample grpc negotiation succeeded", zap.String("encoding", string(enc)))
	}
	if _, status := grpcneg.Negotiate("br", enabled); status != nil {
		logger.Debug("sample grpc negotiation rejected unsupported encoding", zap.String("message", status.Message))
	}
}

func splitMITMHosts(hosts []string) (exact, parents []string) {
	for _, h := range hosts {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		exact = append(exact, h)
		parents = append(parents, h)
	}
	return exact, parents
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

// singleConnListener adapts a single already-accepted net.Conn to the
// net.Listener interface so *http.Server can serve it without owning a
// real socket, mirroring how net/http/httptest.Server bridges a listener
// to a fixed connection.
type singleConnListener struct {
	conn net.Conn
	done bool
}

func (l *singleConnListener) Accept() (net.Conn, error) {
	if l.done {
		return nil, io.EOF
	}
	l.done = true
	return l.conn, nil
}

func (l *singleConnListener) Close() error   { return nil }
func (l *singleConnListener) Addr() net.Addr { return l.conn.LocalAddr() }

// selfSignedIssuer mints ephemeral self-signed leaf certificates,
// standing in for a real ACME-backed mitm.Issuer (see internal/mitm/acme.go)
// when the process has no ACME account configured.
type selfSignedIssuer struct{}

func (selfSignedIssuer) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	return issueSelfSigned(hello.ServerName)
}
