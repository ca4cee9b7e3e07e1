// Package highlight tracks which nodes and edges are emphasized in response to
// user interaction.
//
// The controller is a pure state machine. [Transition] takes the current
// [State], an interaction [Msg] and the graph [graph.Index], and returns the
// next State along with an [Effect] describing what the host should do
// (focus a node, open or close the details panel, clear the filter chip).
// Nothing in this package holds mutable state, so the host decides how
// events are serialized; the session layer applies them under a lock.
//
// # Modes
//
//	Idle      nothing highlighted
//	Hovering  pointer over an element, neighborhood highlighted
//	Selected  element clicked, neighborhood highlighted, hover suppressed
//	Filtered  filter chip active, matching elements highlighted
//	Searched  search term active, matching nodes highlighted
//
// A background click, [Reset] or [Reload] always returns to Idle.
//
// # Precedence
//
// Search outranks filter. While a search term is present, toggling filter
// chips only updates the remembered filter; clearing the search re-applies it.
package highlight
