// Package input maps key presses, swipes and page clicks to reader commands.
package input

// Command is a discrete reader action.
type Command int

const (
	None Command = iota
	Previous
	Next
	First
	Last
	Escape
	ToggleFullscreen
)

var commandNames = map[Command]string{
	None:             "none",
	Previous:         "previous",
	Next:             "next",
	First:            "first",
	Last:             "last",
	Escape:           "escape",
	ToggleFullscreen: "toggle-fullscreen",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCommand returns the command with the given name.
func ParseCommand(name string) (Command, bool) {
	for c, n := range commandNames {
		if n == name {
			return c, true
		}
	}
	return None, false
}

// Keys use the DOM KeyboardEvent.key names.
var keyCommands = map[string]Command{
	"ArrowLeft":  Previous,
	"ArrowUp":    Previous,
	"ArrowRight": Next,
	"ArrowDown":  Next,
	" ":          Next,
	"Home":       First,
	"End":        Last,
	"Escape":     Escape,
	"f":          ToggleFullscreen,
	"F":          ToggleFullscreen,
}

// CommandForKey maps a key press to a command. The fullscreen toggle is
// left alone when Ctrl or Meta is held so the browser find shortcut works.
func CommandForKey(key string, ctrl, meta bool) Command {
	cmd, ok := keyCommands[key]
	if !ok {
		return None
	}
	if cmd == ToggleFullscreen && (ctrl || meta) {
		return None
	}
	return cmd
}

// Gesture thresholds in CSS pixels.
const (
	SwipeArmDistance = 50
	SwipeDistance    = 100
)

// Swipe follows one horizontal swipe gesture. All distances are measured
// from the start point.
type Swipe struct {
	active bool
	armed  bool
	startX float64
	startY float64
}

// Start begins a gesture at (x, y).
func (s *Swipe) Start(x, y float64) {
	*s = Swipe{active: true, startX: x, startY: y}
}

// Move records an intermediate point. A mostly horizontal move past
// SwipeArmDistance arms the gesture.
func (s *Swipe) Move(x, y float64) {
	if !s.active {
		return
	}
	dx, dy := abs(x-s.startX), abs(y-s.startY)
	if dx > dy && dx > SwipeArmDistance {
		s.armed = true
	}
}

// End finishes the gesture at (x, y). Moving left past SwipeDistance is
// Next, moving right is Previous.
func (s *Swipe) End(x, y float64) Command {
	if !s.active {
		return None
	}
	s.Move(x, y)
	armed := s.armed
	diff := s.startX - x
	*s = Swipe{}

	if !armed || abs(diff) <= SwipeDistance {
		return None
	}
	if diff > 0 {
		return Next
	}
	return Previous
}

// Click zones, as fractions of the page width.
const (
	PreviousZone = 0.2
	NextZone     = 0.8
)

// ClickZone maps a click at x on a page of the given width.
func ClickZone(x, width float64) Command {
	if width <= 0 {
		return None
	}
	switch {
	case x > width*NextZone:
		return Next
	case x < width*PreviousZone:
		return Previous
	}
	return None
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
