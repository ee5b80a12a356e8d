// Package either provides N-ary sum types used where a protocol stack needs
// to decide statically between alternative inner services (for example,
// HAProxy-wrapped or not) without boxing. Either2 forwards the Service
// contract to whichever arm is populated via ServeEither2; Either3 and
// Either4 only expose their arms through accessors and forward nothing.
package either

import (
	"context"
	"fmt"

	"github.com/edgeproxy/edgeproxy/internal/corepipe"
)

// Either2 holds exactly one of two alternatives.
type Either2[A, B any] struct {
	idx int
	a   A
	b   B
}

func NewA2[A, B any](a A) Either2[A, B] { return Either2[A, B]{idx: 0, a: a} }
func NewB2[A, B any](b B) Either2[A, B] { return Either2[A, B]{idx: 1, b: b} }

// A returns the first alternative and whether it is populated.
func (e Either2[A, B]) A() (A, bool) { return e.a, e.idx == 0 }

// B returns the second alternative and whether it is populated.
func (e Either2[A, B]) B() (B, bool) { return e.b, e.idx == 1 }

// Either3 holds exactly one of three alternatives.
type Either3[A, B, C any] struct {
	idx int
	a   A
	b   B
	c   C
}

func NewA3[A, B, C any](a A) Either3[A, B, C] { return Either3[A, B, C]{idx: 0, a: a} }
func NewB3[A, B, C any](b B) Either3[A, B, C] { return Either3[A, B, C]{idx: 1, b: b} }
func NewC3[A, B, C any](c C) Either3[A, B, C] { return Either3[A, B, C]{idx: 2, c: c} }

func (e Either3[A, B, C]) A() (A, bool) { return e.a, e.idx == 0 }
func (e Either3[A, B, C]) B() (B, bool) { return e.b, e.idx == 1 }
func (e Either3[A, B, C]) C() (C, bool) { return e.c, e.idx == 2 }

// Either4 holds exactly one of four alternatives.
type Either4[A, B, C, D any] struct {
	idx int
	a   A
	b   B
	c   C
	d   D
}

func NewA4[A, B, C, D any](a A) Either4[A, B, C, D] { return Either4[A, B, C, D]{idx: 0, a: a} }
func NewB4[A, B, C, D any](b B) Either4[A, B, C, D] { return Either4[A, B, C, D]{idx: 1, b: b} }
func NewC4[A, B, C, D any](c C) Either4[A, B, C, D] { return Either4[A, B, C, D]{idx: 2, c: c} }
func NewD4[A, B, C, D any](d D) Either4[A, B, C, D] { return Either4[A, B, C, D]{idx: 3, d: d} }

func (e Either4[A, B, C, D]) A() (A, bool) { return e.a, e.idx == 0 }
func (e Either4[A, B, C, D]) B() (B, bool) { return e.b, e.idx == 1 }
func (e Either4[A, B, C, D]) C() (C, bool) { return e.c, e.idx == 2 }
func (e Either4[A, B, C, D]) D() (D, bool) { return e.d, e.idx == 3 }

// ServeEither2 forwards Serve to whichever of a, b is populated. Both arm
// types must implement corepipe.Service[Req,Resp].
func ServeEither2[Req, Resp any, A corepipe.Service[Req, Resp], B corepipe.Service[Req, Resp]](
	ctx context.Context, e Either2[A, B], req Req,
) (Resp, error) {
	if a, ok := e.A(); ok {
		return a.Serve(ctx, req)
	}
	if b, ok := e.B(); ok {
		return b.Serve(ctx, req)
	}
	var zero Resp
	return zero, fmt.Errorf("either: empty Either2")
}
