package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/awantoch/flowviz/config"
	"github.com/awantoch/flowviz/constants"
	"github.com/awantoch/flowviz/model"
)

// EventBus carries notifications between the converter and its listeners.
type EventBus interface {
	Publish(ctx context.Context, topic string, payload any) error
	Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error
	Close() error
}

// Rendered is the payload published on the diagram.rendered topic.
type Rendered struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Notation  string    `json:"notation"`
	StepCount int       `json:"step_count"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RenderedFrom builds the event payload for a stored render.
func RenderedFrom(r *model.Render) Rendered {
	return Rendered{
		ID:        r.ID.String(),
		Name:      r.Name,
		Label:     r.Label,
		Notation:  r.Notation,
		StepCount: r.StepCount,
		URL:       r.URL,
		CreatedAt: r.CreatedAt,
	}
}

// DecodeRendered parses a diagram.rendered payload.
func DecodeRendered(payload []byte) (Rendered, error) {
	var e Rendered
	err := json.Unmarshal(payload, &e)
	return e, err
}

// NewInProcEventBus returns a new in-memory event bus. Used when event config driver=="memory" or omitted.
func NewInProcEventBus() *WatermillEventBus {
	return NewWatermillInMemBus()
}

// NewEventBusFromConfig returns an EventBus based on config. Supported: memory (default), nats (with url).
func NewEventBusFromConfig(cfg *config.EventConfig) (EventBus, error) {
	if cfg == nil || cfg.Driver == "" || cfg.Driver == constants.EventDriverMemory {
		return NewWatermillInMemBus(), nil
	}
	switch cfg.Driver {
	case constants.EventDriverNATS:
		if cfg.URL == "" {
			return nil, fmt.Errorf("NATS driver requires url")
		}
		clusterID := cfg.ClusterID
		if clusterID == "" {
			clusterID = constants.DefaultServiceName
		}
		clientID := cfg.ClientID
		if clientID == "" {
			clientID = constants.DefaultServiceName + "-client"
		}
		return NewWatermillNATSBus(clusterID, clientID, cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported event bus driver: %s", cfg.Driver)
	}
}
