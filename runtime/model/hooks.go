package model

import (
	"context"
	"sync"

	"github.com/satishbabariya/prisma-bulk/runtime/types"
)

// HookType represents the type of hook event.
type HookType string

const (
	// BeforeCreate is called before a new record is written.
	BeforeCreate HookType = "beforeCreate"
	// AfterCreate is called after a new record is written.
	AfterCreate HookType = "afterCreate"

	// BeforeUpdate is called before an existing record is written.
	BeforeUpdate HookType = "beforeUpdate"
	// AfterUpdate is called after an existing record is written.
	AfterUpdate HookType = "afterUpdate"
)

// HookContext contains information passed to hooks.
type HookContext struct {
	// Model is the table of the record.
	Model string

	// Record is the record being saved.
	Record *Record

	// Changed maps each written attribute to its previous value (after hooks).
	Changed map[string]types.Value

	// Context is the request context. Hooks fired by a bulk commit receive
	// context.Background().
	Context context.Context
}

// HookFunc is a function that can be registered as a hook. A before hook
// returning an error rejects the save.
type HookFunc func(ctx *HookContext) error

// Hooks manages lifecycle hooks for one model.
type Hooks struct {
	hooks map[HookType][]HookFunc
	mu    sync.RWMutex
}

func newHooks() *Hooks {
	return &Hooks{hooks: make(map[HookType][]HookFunc)}
}

// Register registers a hook for a hook type.
func (h *Hooks) Register(hookType HookType, fn HookFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hooks[hookType] = append(h.hooks[hookType], fn)
}

// Execute runs the hooks of a type in registration order, stopping at the
// first error.
func (h *Hooks) Execute(ctx *HookContext, hookType HookType) error {
	h.mu.RLock()
	hooks := h.hooks[hookType]
	h.mu.RUnlock()

	for _, fn := range hooks {
		if err := fn(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Count returns the number of hooks registered for a type.
func (h *Hooks) Count(hookType HookType) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.hooks[hookType])
}

// OnBeforeCreate registers a before create hook.
func (h *Hooks) OnBeforeCreate(fn HookFunc) {
	h.Register(BeforeCreate, fn)
}

// OnAfterCreate registers an after create hook.
func (h *Hooks) OnAfterCreate(fn HookFunc) {
	h.Register(AfterCreate, fn)
}

// OnBeforeUpdate registers a before update hook.
func (h *Hooks) OnBeforeUpdate(fn HookFunc) {
	h.Register(BeforeUpdate, fn)
}

// OnAfterUpdate registers an after update hook.
func (h *Hooks) OnAfterUpdate(fn HookFunc) {
	h.Register(AfterUpdate, fn)
}

// OnBeforeSave registers fn for both creates and updates.
func (h *Hooks) OnBeforeSave(fn HookFunc) {
	h.Register(BeforeCreate, fn)
	h.Register(BeforeUpdate, fn)
}

// OnAfterSave registers fn for both creates and updates.
func (h *Hooks) OnAfterSave(fn HookFunc) {
	h.Register(AfterCreate, fn)
	h.Register(AfterUpdate, fn)
}
