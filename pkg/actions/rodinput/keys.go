package rodinput

import (
	"unicode"

	"github.com/thesyncim/shiftclick/pkg/actions"
)

// keyInfo is the DOM description of a key used to fill CDP key events.
type keyInfo struct {
	key     string
	code    string
	keyCode int
	text    string
}

var specialKeys = map[actions.Key]keyInfo{
	actions.KeyShift:        {key: "Shift", code: "ShiftLeft", keyCode: 16},
	actions.KeyRightShift:   {key: "Shift", code: "ShiftRight", keyCode: 16},
	actions.KeyControl:      {key: "Control", code: "ControlLeft", keyCode: 17},
	actions.KeyRightControl: {key: "Control", code: "ControlRight", keyCode: 17},
	actions.KeyAlt:          {key: "Alt", code: "AltLeft", keyCode: 18},
	actions.KeyRightAlt:     {key: "Alt", code: "AltRight", keyCode: 18},
	actions.KeyMeta:         {key: "Meta", code: "MetaLeft", keyCode: 91},
	actions.KeyRightMeta:    {key: "Meta", code: "MetaRight", keyCode: 92},
	actions.KeyEnter:        {key: "Enter", code: "Enter", keyCode: 13, text: "\r"},
	actions.KeyEscape:       {key: "Escape", code: "Escape", keyCode: 27},
	actions.KeyTab:          {key: "Tab", code: "Tab", keyCode: 9},
	actions.KeyBackspace:    {key: "Backspace", code: "Backspace", keyCode: 8},
	actions.KeyNull:         {key: "Unidentified"},
}

// lookupKey maps a WebDriver key value to its DOM key, code and Windows
// virtual key code. Printable characters map to their US layout position.
func lookupKey(k actions.Key) keyInfo {
	if info, ok := specialKeys[k]; ok {
		return info
	}

	s := string(k)
	r := []rune(s)[0]
	info := keyInfo{key: s, text: s}
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		upper := unicode.ToUpper(r)
		info.code = "Key" + string(upper)
		info.keyCode = int(upper)
	case r >= '0' && r <= '9':
		info.code = "Digit" + s
		info.keyCode = int(r)
	case r == ' ':
		info.code = "Space"
		info.keyCode = 32
	}
	return info
}
