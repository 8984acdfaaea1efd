package model

import "time"

// EventKind names a delivered input event.
type EventKind string

const (
	EventMouseMoved    EventKind = "mouse-moved"
	EventMousePressed  EventKind = "mouse-pressed"
	EventMouseReleased EventKind = "mouse-released"
	EventKeyPressed    EventKind = "key-pressed"
	EventKeyReleased   EventKind = "key-released"
	EventKeyTyped      EventKind = "key-typed"
	EventScroll        EventKind = "scroll"
)

// InputEvent is an input event as delivered to a window.
type InputEvent struct {
	Kind   EventKind `yaml:"kind"             json:"kind"`
	Button string    `yaml:"button,omitempty" json:"button,omitempty"`
	Key    string    `yaml:"key,omitempty"    json:"key,omitempty"`
	Char   string    `yaml:"char,omitempty"   json:"char,omitempty"`
	X      float64   `yaml:"x"                json:"x"`
	Y      float64   `yaml:"y"                json:"y"`
	Delta  int       `yaml:"delta,omitempty"  json:"delta,omitempty"`
	Target string    `yaml:"target,omitempty" json:"target,omitempty"` // ID of the node the event was routed to
	At     time.Time `yaml:"at"               json:"at"`
}
