package highlight

import "fmt"

// Event is the wire form of a [Msg], as posted by browser clients and
// replayed by the terminal explorer.
//
//	{"type": "click", "kind": "node", "id": "acme"}
//	{"type": "filter", "kind": "node", "attribute": "division", "value": "Finance"}
//	{"type": "search", "term": "acme"}
type Event struct {
	Type      string   `json:"type"`
	Kind      Kind     `json:"kind,omitempty"`
	ID        string   `json:"id,omitempty"`
	Attribute string   `json:"attribute,omitempty"`
	Value     string   `json:"value,omitempty"`
	Term      string   `json:"term,omitempty"`
	Keys      []string `json:"keys,omitempty"`

	// Generation, when non-zero, is the dataset generation the client saw.
	// Events for an older generation are dropped by the session.
	Generation uint64 `json:"generation,omitempty"`
}

// Event types.
const (
	EventHover           = "hover"
	EventClick           = "click"
	EventBackgroundClick = "background_click"
	EventFilter          = "filter"
	EventSearch          = "search"
	EventReset           = "reset"
	EventReload          = "reload"
)

// Msg converts the event into a message.
func (e Event) Msg() (Msg, error) {
	ref := Ref{Kind: e.Kind, ID: e.ID}
	switch e.Type {
	case EventHover:
		return Hover{ref}, nil
	case EventClick:
		if e.ID == "" {
			return BackgroundClick{}, nil
		}
		return Click{ref}, nil
	case EventBackgroundClick:
		return BackgroundClick{}, nil
	case EventFilter:
		if e.Attribute == "" {
			return nil, fmt.Errorf("filter event without attribute")
		}
		return FilterToggle{Filter{Kind: e.Kind, Attribute: e.Attribute, Value: e.Value}}, nil
	case EventSearch:
		return SearchChanged{Term: e.Term, Keys: e.Keys}, nil
	case EventReset:
		return Reset{}, nil
	case EventReload:
		return Reload{}, nil
	}
	return nil, fmt.Errorf("unknown event type %q", e.Type)
}
