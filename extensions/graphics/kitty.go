package graphics

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"strconv"
	"strings"
)

// Action is the Kitty graphics command verb (the 'a=' control key).
type Action byte

const (
	ActionTransmit        Action = 't'
	ActionTransmitDisplay Action = 'T'
	ActionQuery           Action = 'q'
	ActionDisplay         Action = 'p'
	ActionDelete          Action = 'd'
)

// Format is the pixel encoding of a transmitted image (the 'f=' control key).
type Format uint32

const (
	FormatRGB  Format = 24
	FormatRGBA Format = 32
	FormatPNG  Format = 100
)

// Delete selects what Action Delete removes (the 'd=' control key).
type Delete byte

const (
	DeleteAll          Delete = 'a'
	DeleteAllWithData  Delete = 'A'
	DeleteByID         Delete = 'i'
	DeleteByIDWithData Delete = 'I'
	DeleteAtCursor     Delete = 'c'
	DeleteAtCursorData Delete = 'C'
	DeleteByCol        Delete = 'x'
	DeleteByColData    Delete = 'X'
	DeleteByRow        Delete = 'y'
	DeleteByRowData    Delete = 'Y'
	DeleteByZIndex     Delete = 'z'
	DeleteByZIndexData Delete = 'Z'
)

// Command is a parsed Kitty graphics APC payload.
type Command struct {
	Action      Action
	Format      Format
	Compression byte

	ImageID     uint32
	PlacementID uint32

	Width, Height uint32
	More          bool

	SrcX, SrcY uint32
	SrcW, SrcH uint32
	Cols, Rows uint32

	CellOffsetX, CellOffsetY uint32
	ZIndex                   int32
	DoNotMoveCursor          bool

	Delete Delete
	Quiet  uint32

	Payload []byte
}

// ParseCommand parses an APC payload following the 'G' prefix that marks a
// Kitty graphics command (ESC _ G ... ESC \).
func ParseCommand(data []byte) (*Command, error) {
	cmd := &Command{
		Action: ActionTransmitDisplay,
		Format: FormatRGBA,
	}

	if len(data) > 0 && data[0] == 'G' {
		data = data[1:]
	}

	sepIdx := bytes.IndexByte(data, ';')
	var controlData, payload []byte
	if sepIdx >= 0 {
		controlData = data[:sepIdx]
		payload = data[sepIdx+1:]
	} else {
		controlData = data
	}

	for _, pair := range bytes.Split(controlData, []byte(",")) {
		eqIdx := bytes.IndexByte(pair, '=')
		if eqIdx <= 0 {
			continue
		}
		key := pair[0]
		value := pair[eqIdx+1:]

		switch key {
		case 'a':
			if len(value) > 0 {
				cmd.Action = Action(value[0])
			}
		case 'f':
			cmd.Format = Format(parseUint32(value))
		case 'o':
			if len(value) > 0 {
				cmd.Compression = value[0]
			}
		case 'i':
			cmd.ImageID = parseUint32(value)
		case 'p':
			cmd.PlacementID = parseUint32(value)
		case 's':
			cmd.Width = parseUint32(value)
		case 'v':
			cmd.Height = parseUint32(value)
		case 'm':
			cmd.More = parseUint32(value) == 1
		case 'x':
			cmd.SrcX = parseUint32(value)
		case 'y':
			cmd.SrcY = parseUint32(value)
		case 'w':
			cmd.SrcW = parseUint32(value)
		case 'h':
			cmd.SrcH = parseUint32(value)
		case 'c':
			cmd.Cols = parseUint32(value)
		case 'r':
			cmd.Rows = parseUint32(value)
		case 'X':
			cmd.CellOffsetX = parseUint32(value)
		case 'Y':
			cmd.CellOffsetY = parseUint32(value)
		case 'z':
			cmd.ZIndex = parseInt32(value)
		case 'C':
			cmd.DoNotMoveCursor = parseUint32(value) == 1
		case 'd':
			if len(value) > 0 {
				cmd.Delete = Delete(value[0])
			}
		case 'q':
			cmd.Quiet = parseUint32(value)
		}
	}

	if len(payload) > 0 {
		decoded, err := base64.StdEncoding.DecodeString(string(payload))
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(string(payload))
			if err != nil {
				return nil, fmt.Errorf("kitty: decode base64 payload: %w", err)
			}
		}
		cmd.Payload = decoded
	}

	return cmd, nil
}

// DecodeImageData decompresses and decodes the command payload to RGBA.
func (cmd *Command) DecodeImageData() ([]byte, uint32, uint32, error) {
	data := cmd.Payload

	if cmd.Compression == 'z' && len(data) > 0 {
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("kitty: zlib reader: %w", err)
		}
		defer r.Close()
		decompressed, err := io.ReadAll(r)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("kitty: zlib decompress: %w", err)
		}
		data = decompressed
	}

	switch cmd.Format {
	case FormatPNG:
		return decodePNG(data)

	case FormatRGB:
		if cmd.Width == 0 || cmd.Height == 0 {
			return nil, 0, 0, fmt.Errorf("kitty: RGB format requires width/height")
		}
		expected := int(cmd.Width * cmd.Height * 3)
		if len(data) < expected {
			return nil, 0, 0, fmt.Errorf("kitty: short RGB payload: got %d want %d", len(data), expected)
		}
		rgba := make([]byte, cmd.Width*cmd.Height*4)
		for i := uint32(0); i < cmd.Width*cmd.Height; i++ {
			rgba[i*4+0] = data[i*3+0]
			rgba[i*4+1] = data[i*3+1]
			rgba[i*4+2] = data[i*3+2]
			rgba[i*4+3] = 255
		}
		return rgba, cmd.Width, cmd.Height, nil

	case FormatRGBA:
		if cmd.Width == 0 || cmd.Height == 0 {
			return nil, 0, 0, fmt.Errorf("kitty: RGBA format requires width/height")
		}
		expected := int(cmd.Width * cmd.Height * 4)
		if len(data) < expected {
			return nil, 0, 0, fmt.Errorf("kitty: short RGBA payload: got %d want %d", len(data), expected)
		}
		return data[:expected], cmd.Width, cmd.Height, nil

	default:
		return nil, 0, 0, fmt.Errorf("kitty: unsupported format %d", cmd.Format)
	}
}

func decodePNG(data []byte) ([]byte, uint32, uint32, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("kitty: decode PNG: %w", err)
		}
	}

	bounds := img.Bounds()
	width := uint32(bounds.Dx())
	height := uint32(bounds.Dy())
	rgba := make([]byte, width*height*4)

	for y := 0; y < int(height); y++ {
		for x := 0; x < int(width); x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			offset := (uint32(y)*width + uint32(x)) * 4
			rgba[offset+0] = uint8(r >> 8)
			rgba[offset+1] = uint8(g >> 8)
			rgba[offset+2] = uint8(b >> 8)
			rgba[offset+3] = uint8(a >> 8)
		}
	}
	return rgba, width, height, nil
}

func parseUint32(b []byte) uint32 {
	n, _ := strconv.ParseUint(string(b), 10, 32)
	return uint32(n)
}

func parseInt32(b []byte) int32 {
	n, _ := strconv.ParseInt(string(b), 10, 32)
	return int32(n)
}

// FormatResponse builds a Kitty graphics APC response.
func FormatResponse(imageID uint32, message string, isError bool) string {
	var sb strings.Builder
	sb.WriteString("\x1b_G")
	if imageID > 0 {
		fmt.Fprintf(&sb, "i=%d", imageID)
	}
	sb.WriteString(";")
	if isError {
		sb.WriteString(message)
	} else {
		sb.WriteString("OK")
	}
	sb.WriteString("\x1b\\")
	return sb.String()
}
