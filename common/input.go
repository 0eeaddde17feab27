package common

// Hand identifies one of the two tracked controllers.
type Hand int

const (
	HandLeft Hand = iota
	HandRight
)

func (h Hand) String() string {
	switch h {
	case HandLeft:
		return "left"
	case HandRight:
		return "right"
	default:
		return "unknown"
	}
}

// Gamepad axis indices as reported per hand.
// Controllers disagree on which pair carries the thumbstick, so readers fall back from one pair to the other.
const (
	AxisLeftX  = 0
	AxisLeftY  = 1
	AxisRightX = 2
	AxisRightY = 3
)
