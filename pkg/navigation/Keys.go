package navigation

import "strings"

type Key int

const (
	KeyUnknown Key = iota
	KeyLeft
	KeyRight
	KeyEscape
)

func (k Key) Event() (Event, bool) {
	switch k {
	case KeyLeft:
		return Previous{}, true
	case KeyRight:
		return Next{}, true
	case KeyEscape:
		return Close{}, true
	}

	return nil, false
}

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "ArrowLeft"
	case KeyRight:
		return "ArrowRight"
	case KeyEscape:
		return "Escape"
	}

	return ""
}

/*
ParseKey understands KeyboardEvent.key names and the old keyCode
numbers some browsers still send.
*/
func ParseKey(s string) Key {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arrowleft", "left", "37":
		return KeyLeft
	case "arrowright", "right", "39":
		return KeyRight
	case "escape", "esc", "27":
		return KeyEscape
	}

	return KeyUnknown
}
