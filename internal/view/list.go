package view

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/smb564/21-points/internal/client"
	"github.com/smb564/21-points/internal/eventbus"
	"github.com/smb564/21-points/internal/model"
)

// DefaultPageSize matches the page size of the list screen.
const DefaultPageSize = 20

// ListController pages through user settings, switching to the search
// client while a search query is active.
type ListController struct {
	lister   Lister
	searcher Searcher
	pageSize int
	log      zerolog.Logger

	mu            sync.RWMutex
	items         []model.UserSettings
	totalItems    int
	page          int
	links         map[string]int
	currentSearch string
	stale         bool
}

// NewListController creates the list view. Update broadcasts refresh matching
// rows in place; an update for a row not on the page marks the list stale.
func NewListController(
	scope *Scope,
	bus *eventbus.Bus,
	topic string,
	lister Lister,
	searcher Searcher,
	pageSize int,
	log zerolog.Logger,
) *ListController {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	c := &ListController{
		lister:   lister,
		searcher: searcher,
		pageSize: pageSize,
		items:    []model.UserSettings{},
		links:    map[string]int{},
		log:      log.With().Str("component", "user_settings_list").Logger(),
	}

	sub := subscribeUpdates(bus, topic, c.applyUpdate)
	scope.OnDestroy(sub.Unsubscribe)
	return c
}

// LoadAll fetches the current page, from search when a query is active.
func (c *ListController) LoadAll(ctx context.Context) error {
	c.mu.RLock()
	query, page := c.currentSearch, c.page
	c.mu.RUnlock()

	if query != "" {
		items, err := c.searcher.Query(ctx, client.SearchCriteria{
			Query: query,
			Page:  &client.PageRequest{Page: page, Size: c.pageSize},
		})
		if err != nil {
			c.log.Warn().Err(err).Str("query", query).Msg("search failed")
			return err
		}
		c.set(items, len(items), map[string]int{})
		return nil
	}

	result, err := c.lister.QueryPage(ctx, &client.PageRequest{
		Page: page,
		Size: c.pageSize,
		Sort: []string{"id,asc"},
	})
	if err != nil {
		c.log.Warn().Err(err).Int("page", page).Msg("load failed")
		return err
	}
	total := result.TotalCount
	if total < 0 {
		total = len(result.Items)
	}
	c.set(result.Items, total, result.Links)
	return nil
}

// Search switches to query results, starting at the first page. An empty
// query clears the search.
func (c *ListController) Search(ctx context.Context, query string) error {
	if query == "" {
		return c.Clear(ctx)
	}
	c.mu.Lock()
	c.page = 0
	c.currentSearch = query
	c.mu.Unlock()
	return c.LoadAll(ctx)
}

// Clear drops the search query and reloads the first page.
func (c *ListController) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.page = 0
	c.currentSearch = ""
	c.mu.Unlock()
	return c.LoadAll(ctx)
}

// Transition moves to page and reloads.
func (c *ListController) Transition(ctx context.Context, page int) error {
	if page < 0 {
		page = 0
	}
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()
	return c.LoadAll(ctx)
}

// UserSettings returns the rows of the current page.
func (c *ListController) UserSettings() []model.UserSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items
}

// TotalItems returns the total number of rows across pages.
func (c *ListController) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalItems
}

// Page returns the zero-based current page.
func (c *ListController) Page() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

// Links returns the page numbers of the first/prev/next/last relations.
func (c *ListController) Links() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.links
}

// CurrentSearch returns the active search query, if any.
func (c *ListController) CurrentSearch() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentSearch
}

// Stale reports whether an update arrived for a row that is not on the
// current page. LoadAll resets it.
func (c *ListController) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stale
}

func (c *ListController) set(items []model.UserSettings, total int, links map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.totalItems = total
	c.links = links
	c.stale = false
}

func (c *ListController) applyUpdate(updated *model.UserSettings) {
	if updated == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].SameEntity(updated) {
			next := make([]model.UserSettings, len(c.items))
			copy(next, c.items)
			next[i] = *updated
			c.items = next
			return
		}
	}
	c.stale = true
}
