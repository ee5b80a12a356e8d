package mitm

import (
	"context"
	"net"
	"net/http"
	"net/http/httputil"
	"strings"
)

type ingressSNIKey struct{}

// WithIngressSNI attaches the SNI observed at the TLS layer to ctx, the
// way rama threads its IngressSNI extension down from the SNI router to
// the HTTP service.
func WithIngressSNI(ctx context.Context, sni string) context.Context {
	return context.WithValue(ctx, ingressSNIKey{}, sni)
}

func ingressSNIFromContext(ctx context.Context) (string, bool) {
	sni, ok := ctx.Value(ingressSNIKey{}).(string)
	return sni, ok && sni != ""
}

// ProxyViaHeader is injected on both the forwarded request and its
// response for hosts under a tracked parent domain, matching
// tls_sni_proxy_mitm.rs's x-proxy-via header.
const ProxyViaHeader = "X-Proxy-Via"

// LocalPayload is a canned response served for a specific host instead of
// forwarding anywhere, mirroring the Rust example's hardcoded HTML
// response for example.com.
type LocalPayload struct {
	ContentType string
	Body        []byte
}

// Handler implements the MITM HTTP routing layer described in
// tls_sni_proxy_mitm.rs's HttpsMITMService: a request for a known local
// host gets a canned payload, a request for a subdomain of a tracked
// parent domain is forwarded with an injected via-header on both legs,
// and everything else is forwarded verbatim.
type Handler struct {
	Local         map[string]LocalPayload
	ParentDomains []string
	ViaValue      string
	Proxy         *httputil.ReverseProxy
}

// NewHandler builds a Handler that forwards through proxy and tags
// subdomain-of-parent-domain traffic with viaValue.
func NewHandler(proxy *httputil.ReverseProxy, viaValue string) *Handler {
	return &Handler{Local: make(map[string]LocalPayload), ViaValue: viaValue, Proxy: proxy}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	domain := h.domainFor(r)
	if domain == "" {
		h.forward(w, r, false)
		return
	}
	if payload, ok := h.Local[strings.ToLower(domain)]; ok {
		if payload.ContentType != "" {
			w.Header().Set("Content-Type", payload.ContentType)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload.Body)
		return
	}
	h.forward(w, r, isSubdomainOfAny(strings.ToLower(domain), h.ParentDomains))
}

// domainFor resolves the destination host for r: prefer the SNI observed
// at the TLS layer, falling back to the HTTP request's own Host the way
// rama falls back to RequestContext's authority when no IngressSNI
// extension is present.
func (h *Handler) domainFor(r *http.Request) string {
	if sni, ok := ingressSNIFromContext(r.Context()); ok {
		return sni
	}
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	if stripped, _, err := net.SplitHostPort(host); err == nil {
		return stripped
	}
	return host
}

func (h *Handler) forward(w http.ResponseWriter, r *http.Request, injectVia bool) {
	if h.Proxy == nil {
		http.Error(w, "mitm: no upstream configured", http.StatusBadGateway)
		return
	}
	if !injectVia {
		h.Proxy.ServeHTTP(w, r)
		return
	}

	r.Header.Set(ProxyViaHeader, h.ViaValue)
	proxy := *h.Proxy
	originalModifyResponse := h.Proxy.ModifyResponse
	proxy.ModifyResponse = func(resp *http.Response) error {
		resp.Header.Set(ProxyViaHeader, h.ViaValue)
		if originalModifyResponse != nil {
			return originalModifyResponse(resp)
		}
		return nil
	}
	proxy.ServeHTTP(w, r)
}
