package corepipe

import (
	"context"
	"testing"
)

func appendLayer(tag string) Layer[string, string] {
	return LayerFunc[string, string](func(inner Service[string, string]) Service[string, string] {
		return ServiceFunc[string, string](func(ctx context.Context, req string) (string, error) {
			resp, err := inner.Serve(ctx, req)
			if err != nil {
				return "", err
			}
			return resp + tag, nil
		})
	})
}

func TestCompose_RightToLeftWrapping(t *testing.T) {
	terminal := ServiceFunc[string, string](func(ctx context.Context, req string) (string, error) {
		return req, nil
	})

	svc := Compose(terminal, appendLayer("1"), appendLayer("2"), appendLayer("3"))
	got, err := svc.Serve(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// l1∘l2∘l3∘svc: l3 runs closest to svc, so its suffix lands first.
	if want := "x321"; got != want {
		t.Errorf("Serve() = %q, want %q", got, want)
	}
}

func TestIdentity_IsNeutralElement(t *testing.T) {
	terminal := ServiceFunc[string, string](func(ctx context.Context, req string) (string, error) {
		return req, nil
	})
	svc := Compose(terminal, Identity[string, string](), appendLayer("!"))
	got, err := svc.Serve(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "hi!"; got != want {
		t.Errorf("Serve() = %q, want %q", got, want)
	}
}

func TestChain_EquivalentToCompose(t *testing.T) {
	terminal := ServiceFunc[string, string](func(ctx context.Context, req string) (string, error) {
		return req, nil
	})
	chained := Chain(appendLayer("a"), appendLayer("b")).Wrap(terminal)
	composed := Compose(terminal, appendLayer("a"), appendLayer("b"))

	got1, _ := chained.Serve(context.Background(), "z")
	got2, _ := composed.Serve(context.Background(), "z")
	if got1 != got2 {
		t.Errorf("Chain result %q != Compose result %q", got1, got2)
	}
}

func TestKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindInvalid, 400},
		{KindUnauthorized, 403},
		{KindUnavailable, 502},
		{KindTimeout, 504},
		{KindCanceled, 410},
		{KindInternal, 500},
	}
	for _, tt := range tests {
		if got := tt.kind.HTTPStatus(); got != tt.want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
