// Package patch wraps a raw provider's request function with per-method
// overrides supplied by a wallet module.
package patch

import (
	"context"

	"github.com/ethereum/go-ethereum/log"

	"github.com/tranvictor/walletkit/eip1193"
)

// Args is what an override receives. BaseRequest is always the unpatched
// request so an override can delegate after reshaping its params.
type Args struct {
	BaseRequest eip1193.RequestFunc
	Params      any
}

type Handler func(ctx context.Context, args Args) (any, error)

// Patch maps a method to its override. A method mapped to a nil Handler is
// explicitly unsupported; a method that is absent passes through.
type Patch map[eip1193.Method]Handler

// Unsupported returns a patch marking every given method unsupported.
func Unsupported(methods ...eip1193.Method) Patch {
	p := Patch{}
	for _, m := range methods {
		p[m] = nil
	}
	return p
}

// Merge returns a new patch with the entries of others layered over p in
// order; later entries win, including explicit nils.
func (p Patch) Merge(others ...Patch) Patch {
	out := make(Patch, len(p))
	for m, h := range p {
		out[m] = h
	}
	for _, o := range others {
		for m, h := range o {
			out[m] = h
		}
	}
	return out
}

// Lookup reports whether method is patched and, if so, its handler.
func (p Patch) Lookup(method eip1193.Method) (Handler, bool) {
	h, found := p[method]
	return h, found
}

// Wrap returns a request func that consults p before raw.
func Wrap(raw eip1193.RequestFunc, p Patch) eip1193.RequestFunc {
	if len(p) == 0 {
		return raw
	}
	return func(ctx context.Context, args eip1193.RequestArguments) (any, error) {
		handler, found := p[args.Method]
		if !found {
			return raw(ctx, args)
		}
		if handler == nil {
			log.Debug("Rejected unsupported method", "method", args.Method)
			return nil, eip1193.NewUnsupportedMethodError(args.Method)
		}
		return handler(ctx, Args{BaseRequest: raw, Params: args.Params})
	}
}
