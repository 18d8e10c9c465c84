package common

import "strconv"

// Key codes carried by event.Key. Printable keys use their ASCII value, the rest follow GLFW.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32
	KeyA     = 65
	KeyD     = 68
	KeyP     = 80
	KeyR     = 82
	KeyS     = 83
	KeyT     = 84
	KeyW     = 87

	KeyEsc       = 256
	KeyEnter     = 257
	KeyTab       = 258
	KeyBackspace = 259
	KeyRight     = 262
	KeyLeft      = 263
	KeyDown      = 264
	KeyUp        = 265
	KeyF1        = 290
	KeyLeftShift = 340
)

var keyNames = map[uint32]string{
	KeySpace:     "space",
	KeyEsc:       "escape",
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyRight:     "right",
	KeyLeft:      "left",
	KeyDown:      "down",
	KeyUp:        "up",
	KeyF1:        "f1",
	KeyLeftShift: "left_shift",
}

// KeyName returns a short name for a key code, suitable for log fields.
//
// Parameters:
//   - code: the key code
//
// Returns:
//   - string: the lowercase letter or digit for printable keys, a name for known keys, or
//     "key(<code>)"
func KeyName(code uint32) string {
	switch {
	case code >= 'A' && code <= 'Z':
		return string(rune(code - 'A' + 'a'))
	case code >= '0' && code <= '9':
		return string(rune(code))
	}
	if name, ok := keyNames[code]; ok {
		return name
	}
	return "key(" + strconv.FormatUint(uint64(code), 10) + ")"
}
