// Package corepipe defines the async Service/Layer contract every protocol
// engine in this module is built on top of: given an input request and an
// ambient context, a Service produces either a response or an error,
// suspending arbitrarily in between.
package corepipe

import "context"

// Service is the uniform async request/response abstraction. Implementations
// must be safe for concurrent use across goroutines.
type Service[Req, Resp any] interface {
	Serve(ctx context.Context, req Req) (Resp, error)
}

// ServiceFunc adapts a plain function to a Service.
type ServiceFunc[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

func (f ServiceFunc[Req, Resp]) Serve(ctx context.Context, req Req) (Resp, error) {
	return f(ctx, req)
}

// Layer wraps a Service to produce a new Service. Composing a sequence of
// layers L1, L2, L3 around a terminal service S must yield L1∘L2∘L3∘S: the
// first layer in the list is the outermost wrapper.
type Layer[Req, Resp any] interface {
	Wrap(inner Service[Req, Resp]) Service[Req, Resp]
}

// LayerFunc adapts a plain function to a Layer.
type LayerFunc[Req, Resp any] func(inner Service[Req, Resp]) Service[Req, Resp]

func (f LayerFunc[Req, Resp]) Wrap(inner Service[Req, Resp]) Service[Req, Resp] {
	return f(inner)
}

// Identity is the identity layer: Wrap(s) == s. It is the neutral element of
// Compose, mirroring the `()` layer in the source material.
type identityLayer[Req, Resp any] struct{}

func (identityLayer[Req, Resp]) Wrap(inner Service[Req, Resp]) Service[Req, Resp] {
	return inner
}

// Identity returns the identity layer for (Req, Resp).
func Identity[Req, Resp any]() Layer[Req, Resp] {
	return identityLayer[Req, Resp]{}
}

// Compose wraps svc with layers right-to-left: Compose(svc, l1, l2, l3)
// yields l1∘l2∘l3∘svc. Composition is associative because each Wrap call is
// independent function application; Identity is its neutral element.
func Compose[Req, Resp any](svc Service[Req, Resp], layers ...Layer[Req, Resp]) Service[Req, Resp] {
	for i := len(layers) - 1; i >= 0; i-- {
		svc = layers[i].Wrap(svc)
	}
	return svc
}

// Chain concatenates layers into a single Layer equivalent to applying them
// in order (outermost first), so Chain(l1, l2, l3).Wrap(s) == Compose(s, l1, l2, l3).
func Chain[Req, Resp any](layers ...Layer[Req, Resp]) Layer[Req, Resp] {
	return LayerFunc[Req, Resp](func(inner Service[Req, Resp]) Service[Req, Resp] {
		return Compose(inner, layers...)
	})
}
