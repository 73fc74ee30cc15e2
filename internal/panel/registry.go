package panel

import "sync"

// Registry tracks open panels so presses can be dispatched by panel id.
type Registry struct {
	mu     sync.Mutex
	panels map[string]*Panel
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{panels: map[string]*Panel{}}
}

// Open creates and registers a panel for the players.
func (r *Registry) Open(guildID string, players []string) *Panel {
	p := New(guildID, players)
	r.mu.Lock()
	r.panels[p.ID] = p
	r.mu.Unlock()
	return p
}

// Get looks up an open panel.
func (r *Registry) Get(id string) (*Panel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.panels[id]
	return p, ok
}

// OnPress dispatches a press to its panel. A completing press closes the
// panel; later presses on it report ErrUnknownPanel.
func (r *Registry) OnPress(id string, c Category, player int) (*Panel, Result, error) {
	p, ok := r.Get(id)
	if !ok {
		return nil, Result{}, ErrUnknownPanel
	}
	res, err := p.Press(c, player)
	if err != nil {
		return p, res, err
	}
	if res.Complete {
		r.Close(id)
	}
	return p, res, nil
}

// Close forgets a panel.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	delete(r.panels, id)
	r.mu.Unlock()
}

// CloseGuild forgets every panel of a guild.
func (r *Registry) CloseGuild(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.panels {
		if p.GuildID == guildID {
			delete(r.panels, id)
		}
	}
}

// Len counts open panels.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.panels)
}
