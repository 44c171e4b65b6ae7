package printer

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

const (
	esc = 0x1b
	gs  = 0x1d
	lf  = 0x0a

	// codePage858 is the ESC t table number for PC858 (Latin-1 with euro).
	codePage858 = 19
	maxFeed     = 255
	maxScale    = 7
)

// EncodeESCPOS turns a ticket into the byte stream understood by ESC/POS
// thermal printers. Text is transcoded to PC858; characters outside it print
// as '?'.
func EncodeESCPOS(t Ticket) ([]byte, error) {
	var buf bytes.Buffer

	buf.Write([]byte{esc, '@', esc, 't', codePage858})
	for i, in := range t.Instructions {
		switch in.Op {
		case OpFont:
			buf.Write([]byte{esc, 'M', byte(in.Font)})
		case OpAlign:
			buf.Write([]byte{esc, 'a', byte(in.Align)})
		case OpSize:
			w, h := clamp(in.Width, 0, maxScale), clamp(in.Height, 0, maxScale)
			buf.Write([]byte{gs, '!', byte(w<<4 | h)})
		case OpText:
			writeText(&buf, in.Text)
			buf.WriteByte(lf)
		case OpFeed:
			buf.Write([]byte{esc, 'd', byte(clamp(in.Lines, 0, maxFeed))})
		case OpCut:
			buf.Write([]byte{gs, 'V', 0})
		default:
			return nil, fmt.Errorf("encode instruction %d: unknown op %d", i, in.Op)
		}
	}
	return buf.Bytes(), nil
}

func writeText(buf *bytes.Buffer, text string) {
	for _, r := range text {
		b, ok := charmap.CodePage858.EncodeRune(r)
		if !ok {
			b = '?'
		}
		buf.WriteByte(b)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
