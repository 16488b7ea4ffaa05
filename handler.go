package sctp

import "reflect"

// HandlerContext is the minimal slice of the out-of-scope pipeline
// framework an outbound handler needs: access to the next handler in the
// chain. The full pipeline/handler framework is an external collaborator
// (spec.md §1); this interface is the seam this module consumes it through.
type HandlerContext interface {
	Next() OutboundHandler
}

// OutboundHandler is the outbound half of a pipeline handler: every
// operation a channel can be asked to perform, each taking the future that
// completes when the operation finishes.
type OutboundHandler interface {
	HandleBind(ctx HandlerContext, localAddr string, future *Future)
	HandleConnect(ctx HandlerContext, remoteAddr string, localAddr *string, future *Future)
	HandleDisconnect(ctx HandlerContext, future *Future)
	HandleClose(ctx HandlerContext, future *Future)
	HandleDeregister(ctx HandlerContext, future *Future)
	HandleFlush(ctx HandlerContext, future *Future)
	HandleSendFile(ctx HandlerContext, region []byte, future *Future)
}

// flushOverrider is the capability trait a concrete outbound handler
// advertises when it intends to actually implement flush, rather than
// inherit BaseOutboundHandler's pass-through. AssertFlushOverridden uses
// this to catch handlers that claim the capability but forgot to shadow
// the default method.
type flushOverrider interface {
	OutboundHandler
	isOutboundHandlerEndpoint()
}

// BaseOutboundHandler is the default pass-through adapter: every operation
// forwards unchanged to the next handler in the chain. Embed it and
// override only the operations a concrete handler cares about.
type BaseOutboundHandler struct{}

func (BaseOutboundHandler) HandleBind(ctx HandlerContext, localAddr string, future *Future) {
	ctx.Next().HandleBind(ctx, localAddr, future)
}

func (BaseOutboundHandler) HandleConnect(ctx HandlerContext, remoteAddr string, localAddr *string, future *Future) {
	ctx.Next().HandleConnect(ctx, remoteAddr, localAddr, future)
}

func (BaseOutboundHandler) HandleDisconnect(ctx HandlerContext, future *Future) {
	ctx.Next().HandleDisconnect(ctx, future)
}

func (BaseOutboundHandler) HandleClose(ctx HandlerContext, future *Future) {
	ctx.Next().HandleClose(ctx, future)
}

func (BaseOutboundHandler) HandleDeregister(ctx HandlerContext, future *Future) {
	ctx.Next().HandleDeregister(ctx, future)
}

// HandleFlush forwards to the next handler. If the concrete handler
// embedding this adapter also advertises the outbound-handler-endpoint
// capability (flushOverrider), it must shadow this method itself;
// AssertFlushOverridden is how callers enforce that at construction time.
func (BaseOutboundHandler) HandleFlush(ctx HandlerContext, future *Future) {
	ctx.Next().HandleFlush(ctx, future)
}

func (BaseOutboundHandler) HandleSendFile(ctx HandlerContext, region []byte, future *Future) {
	ctx.Next().HandleSendFile(ctx, region, future)
}

// AssertFlushOverridden checks, at construction time, that handler's
// HandleFlush method is not merely the inherited BaseOutboundHandler
// pass-through when handler also advertises the outbound-handler-endpoint
// capability. It returns ErrMissingFlushOverride if the capability is
// advertised but the default was left unshadowed.
//
// The comparison uses reflect to compare method *values'* underlying code
// pointers; Go has no direct "is this an inherited promoted method" query,
// so comparing the resolved method's entry point against
// BaseOutboundHandler's is the only available signal.
func AssertFlushOverridden(handler OutboundHandler) error {
	fo, ok := handler.(flushOverrider)
	if !ok {
		return nil
	}
	base := reflect.ValueOf(BaseOutboundHandler{}.HandleFlush).Pointer()
	actual := reflect.ValueOf(fo.HandleFlush).Pointer()
	if actual == base {
		return ErrMissingFlushOverride
	}
	return nil
}
