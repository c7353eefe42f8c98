package pagination

// State is the phase of the controller.
type State int

const (
	Idle State = iota
	Rendering
	FullscreenIdle
	FullscreenRendering
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rendering:
		return "rendering"
	case FullscreenIdle:
		return "fullscreen-idle"
	case FullscreenRendering:
		return "fullscreen-rendering"
	}
	return "unknown"
}

// Reason tells the renderer what caused a render.
type Reason int

const (
	// ReasonLoad is the first render of a freshly loaded document.
	ReasonLoad Reason = iota
	// ReasonTurn is a next or previous page turn.
	ReasonTurn
	// ReasonJump is a go-to-page request.
	ReasonJump
	// ReasonEnter is the first render after entering fullscreen.
	ReasonEnter
	// ReasonZoom re-renders the current page at a new zoom level.
	ReasonZoom
	// ReasonRefresh re-renders the current page after a settings change.
	ReasonRefresh
)

func (r Reason) String() string {
	switch r {
	case ReasonLoad:
		return "load"
	case ReasonTurn:
		return "turn"
	case ReasonJump:
		return "jump"
	case ReasonEnter:
		return "enter"
	case ReasonZoom:
		return "zoom"
	case ReasonRefresh:
		return "refresh"
	}
	return "unknown"
}

// Surface identifies one fullscreen scroll container. A new one is created
// for every fullscreen render; zero means none.
type Surface uint64

// ScrollSample is one scroll position reported by a fullscreen surface.
type ScrollSample struct {
	Top          float64 `json:"scrollTop"`
	Height       float64 `json:"scrollHeight"`
	ClientHeight float64 `json:"clientHeight"`
}

// AtBottom reports whether the sample is within margin of the bottom edge.
func (s ScrollSample) AtBottom(margin float64) bool {
	return s.Top+s.ClientHeight >= s.Height-margin
}

// AtTop reports whether the sample is within margin of the top edge.
func (s ScrollSample) AtTop(margin float64) bool {
	return s.Top <= margin
}
