package simulation

// HookPos names the point of a run at which a hook fires.
type HookPos struct {
	Name string
}

// HookCtx describes the site that triggered a hook.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// HookPosPaymentDone fires from the worker goroutine as soon as a payment
// is classified, so hooks at this position must be safe for concurrent use
// and see payments in no particular order. Item is a *Payment.
var HookPosPaymentDone = &HookPos{Name: "PaymentDone"}

// HookPosPaymentClassified fires once per payment, in index order, after
// all payments of a run are classified. Item is a *Payment.
var HookPosPaymentClassified = &HookPos{Name: "PaymentClassified"}

// HookPosRunCompleted fires once per run. Item is the *Result.
var HookPosRunCompleted = &HookPos{Name: "RunCompleted"}

// Hook observes a run.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// Hookable accepts hooks.
type Hookable interface {
	AcceptHook(hook Hook)
}

// HookableBase keeps a list of hooks and invokes them in registration
// order.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// NumHooks returns the number of registered hooks.
func (h *HookableBase) NumHooks() int {
	return len(h.Hooks)
}

// InvokeHook triggers every registered hook.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
