package ansicode

import (
	"encoding/base64"
	"image/color"
	"strconv"
	"strings"
)

// dispatchOSC parses a complete OSC payload (the bytes between "ESC ]" and
// its terminator, terminator excluded) and calls the matching Handler
// method. Malformed or unrecognized payloads are dropped silently, matching
// how real terminals treat OSC codes they don't implement.
func (d *Decoder) dispatchOSC(payload []byte) {
	s := string(payload)
	sep := strings.IndexByte(s, ';')
	var code string
	var rest string
	if sep < 0 {
		code = s
	} else {
		code, rest = s[:sep], s[sep+1:]
	}

	n, err := strconv.Atoi(code)
	if err != nil {
		return
	}

	h := d.handler
	switch n {
	case 0, 1, 2:
		h.SetTitle(rest)

	case 4:
		parts := strings.Split(rest, ";")
		for i := 0; i+1 < len(parts); i += 2 {
			idx, err := strconv.Atoi(parts[i])
			if err != nil {
				continue
			}
			if c, ok := parseColorSpec(parts[i+1]); ok {
				h.SetColor(idx, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
			}
		}

	case 7:
		h.SetWorkingDirectory(rest)

	case 8:
		semi := strings.IndexByte(rest, ';')
		var params, uri string
		if semi >= 0 {
			params, uri = rest[:semi], rest[semi+1:]
		} else {
			uri = rest
		}
		id := hyperlinkID(params)
		if uri == "" {
			h.SetHyperlink(nil)
		} else {
			h.SetHyperlink(&Hyperlink{ID: id, URI: uri})
		}

	case 9, 777:
		h.DesktopNotification(notificationFromOSC(n, rest))

	case 10, 11, 12:
		h.SetDynamicColor(code, dynamicColorIndex(n), "\x07")

	case 52:
		semi := strings.IndexByte(rest, ';')
		var clipboard byte = 'c'
		data := rest
		if semi >= 0 {
			if len(rest[:semi]) > 0 {
				clipboard = rest[0]
			}
			data = rest[semi+1:]
		}
		if data == "?" {
			h.ClipboardLoad(clipboard, "\x07")
			return
		}
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return
		}
		h.ClipboardStore(clipboard, decoded)

	case 104:
		if rest == "" {
			h.ResetColor(-1)
			return
		}
		for _, p := range strings.Split(rest, ";") {
			if idx, err := strconv.Atoi(p); err == nil {
				h.ResetColor(idx)
			}
		}

	case 133:
		mark, exitCode := semanticPromptMark(rest)
		h.ShellIntegrationMark(mark, exitCode)

	case 1337:
		dispatchUserVar(h, rest)
	}
}

func hyperlinkID(params string) string {
	for _, kv := range strings.Split(params, ":") {
		if strings.HasPrefix(kv, "id=") {
			return kv[len("id="):]
		}
	}
	return ""
}

func dynamicColorIndex(oscNumber int) int {
	switch oscNumber {
	case 10:
		return 256 // NamedColorForeground
	case 11:
		return 257 // NamedColorBackground
	case 12:
		return 258 // NamedColorCursor
	default:
		return -1
	}
}

// parseColorSpec parses an X11-style "rgb:rr/gg/bb" or "#rrggbb" color spec
// as used by OSC 4/10/11/12 set requests.
func parseColorSpec(spec string) (RGBColor, bool) {
	spec = strings.TrimPrefix(spec, "rgb:")
	if strings.HasPrefix(spec, "#") {
		spec = spec[1:]
		if len(spec) != 6 {
			return RGBColor{}, false
		}
		r, err1 := strconv.ParseUint(spec[0:2], 16, 8)
		g, err2 := strconv.ParseUint(spec[2:4], 16, 8)
		b, err3 := strconv.ParseUint(spec[4:6], 16, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return RGBColor{}, false
		}
		return RGBColor{R: uint8(r), G: uint8(g), B: uint8(b)}, true
	}

	parts := strings.Split(spec, "/")
	if len(parts) != 3 {
		return RGBColor{}, false
	}
	vals := make([]uint8, 3)
	for i, p := range parts {
		// Each component may be 1-4 hex digits; take the most significant byte.
		if len(p) > 2 {
			p = p[:2]
		}
		v, err := strconv.ParseUint(p, 16, 16)
		if err != nil {
			return RGBColor{}, false
		}
		vals[i] = uint8(v)
	}
	return RGBColor{R: vals[0], G: vals[1], B: vals[2]}, true
}

func semanticPromptMark(rest string) (ShellIntegrationMark, int) {
	parts := strings.Split(rest, ";")
	var mark ShellIntegrationMark
	switch parts[0] {
	case "A":
		mark = PromptStart
	case "B":
		mark = CommandStart
	case "C":
		mark = CommandExecuted
	case "D":
		mark = CommandFinished
	default:
		mark = PromptStart
	}
	exitCode := -1
	for _, p := range parts[1:] {
		if strings.HasPrefix(p, "err=") {
			if v, err := strconv.Atoi(p[len("err="):]); err == nil {
				exitCode = v
			}
		} else if v, err := strconv.Atoi(p); err == nil {
			exitCode = v
		}
	}
	return mark, exitCode
}

// notificationFromOSC builds a NotificationPayload from an OSC 9 (simple
// growl-style body-only) or OSC 777 (";notify;title;body") request.
func notificationFromOSC(oscNumber int, rest string) *NotificationPayload {
	if oscNumber == 9 {
		return &NotificationPayload{PayloadType: "body", Data: []byte(rest)}
	}

	parts := strings.SplitN(rest, ";", 3)
	payload := &NotificationPayload{PayloadType: "title"}
	if len(parts) >= 2 {
		payload.AppName = parts[1]
	}
	if len(parts) >= 3 {
		payload.Data = []byte(parts[2])
	}
	return payload
}

// dispatchUserVar parses "SetUserVar=NAME=BASE64VALUE" (OSC 1337).
func dispatchUserVar(h Handler, rest string) {
	const prefix = "SetUserVar="
	if !strings.HasPrefix(rest, prefix) {
		return
	}
	kv := rest[len(prefix):]
	eq := strings.IndexByte(kv, '=')
	if eq < 0 {
		return
	}
	name := kv[:eq]
	decoded, err := base64.StdEncoding.DecodeString(kv[eq+1:])
	if err != nil {
		return
	}
	h.SetUserVar(name, string(decoded))
}
