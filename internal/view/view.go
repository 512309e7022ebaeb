// Package view holds the per-screen controllers of the user settings UI. A
// controller binds one entity (or one page of entities) to user actions and
// delegates the actions to the API clients. Hosts supply the dialog and the
// scope whose destruction releases the controller's subscriptions.
package view

import (
	"context"
	"sync"

	"github.com/smb564/21-points/internal/client"
	"github.com/smb564/21-points/internal/eventbus"
	"github.com/smb564/21-points/internal/model"
)

// DismissCancel is the reason reported when the user backs out of a dialog.
const DismissCancel = "cancel"

// Dialog is the modal hosting a controller.
type Dialog interface {
	// Close resolves the dialog successfully with result.
	Close(result any)
	// Dismiss rejects the dialog with reason.
	Dismiss(reason string)
}

// DialogState tracks how a dialog controller was resolved.
type DialogState int

const (
	DialogOpen DialogState = iota
	DialogCancelled
	DialogConfirmed
)

func (s DialogState) String() string {
	switch s {
	case DialogOpen:
		return "open"
	case DialogCancelled:
		return "cancelled"
	case DialogConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Deleter removes a record by id.
type Deleter interface {
	Delete(ctx context.Context, id int64) error
}

// Saver persists new and existing records.
type Saver interface {
	Create(ctx context.Context, s *model.UserSettings) (*model.UserSettings, error)
	Update(ctx context.Context, s *model.UserSettings) (*model.UserSettings, error)
}

// Lister pages through records.
type Lister interface {
	QueryPage(ctx context.Context, p *client.PageRequest) (*client.Page, error)
}

// Searcher runs search queries.
type Searcher interface {
	Query(ctx context.Context, criteria client.SearchCriteria) ([]model.UserSettings, error)
}

// Scope is the lifetime of a view. Destroy runs the registered release
// functions once, most recent first.
type Scope struct {
	mu        sync.Mutex
	onDestroy []func()
	destroyed bool
}

// NewScope creates a live scope.
func NewScope() *Scope {
	return &Scope{}
}

// OnDestroy registers fn to run when the scope is destroyed. On an already
// destroyed scope fn runs immediately.
func (s *Scope) OnDestroy(fn func()) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		fn()
		return
	}
	s.onDestroy = append(s.onDestroy, fn)
	s.mu.Unlock()
}

// Destroy tears the scope down. Later calls do nothing.
func (s *Scope) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	hooks := s.onDestroy
	s.onDestroy = nil
	s.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}

// Destroyed reports whether Destroy has run.
func (s *Scope) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// subscribeUpdates delivers every user settings payload on topic to handle,
// whether it was published by value or by pointer. Other payloads are skipped.
func subscribeUpdates(bus *eventbus.Bus, topic string, handle func(*model.UserSettings)) *eventbus.Subscription {
	return bus.Subscribe(topic, func(payload any) {
		switch v := payload.(type) {
		case *model.UserSettings:
			if v != nil {
				handle(v)
			}
		case model.UserSettings:
			handle(&v)
		}
	})
}
