package view

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/smb564/21-points/internal/eventbus"
	"github.com/smb564/21-points/internal/model"
)

// DetailController shows one entity and follows update broadcasts for as
// long as its scope lives.
type DetailController struct {
	previousState string
	log           zerolog.Logger

	mu     sync.RWMutex
	entity *model.UserSettings
}

// NewDetailController subscribes to topic and releases the subscription when
// scope is destroyed.
func NewDetailController(
	scope *Scope,
	bus *eventbus.Bus,
	topic string,
	entity *model.UserSettings,
	previousState string,
	log zerolog.Logger,
) *DetailController {
	c := &DetailController{
		previousState: previousState,
		entity:        entity,
		log:           log.With().Str("component", "user_settings_detail").Logger(),
	}

	sub := subscribeUpdates(bus, topic, c.replace)
	scope.OnDestroy(sub.Unsubscribe)
	return c
}

// UserSettings returns the entity currently shown.
func (c *DetailController) UserSettings() *model.UserSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entity
}

// PreviousState names the view to return to.
func (c *DetailController) PreviousState() string {
	return c.previousState
}

func (c *DetailController) replace(updated *model.UserSettings) {
	if updated == nil {
		return
	}
	c.mu.Lock()
	c.entity = updated
	c.mu.Unlock()

	c.log.Debug().Int64("id", updated.ID).Msg("entity replaced by update")
}
