package click

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"

	"github.com/tinybar/tinybar/internal/model"
)

// Event is one parsed click notification. Name and Instance identify
// the target block and default to empty when the bar omits them; the
// click fields are clamped copies, independent of the read buffer.
type Event struct {
	Name     string
	Instance string
	Click    model.Click
}

// Parse extracts the click fields from one raw notification buffer.
// Well-formed records go through the JSON decoder; truncated or
// otherwise malformed buffers fall back to the span scanner, which
// still recovers every field that survived the cut. Parse never
// fails — missing fields simply come back empty.
func Parse(buf []byte) Event {
	raw := bytes.TrimRight(buf, "\x00")
	raw = bytes.TrimSpace(raw)
	// Stream protocol frames every element after the first with a
	// leading comma.
	raw = bytes.TrimPrefix(raw, []byte(","))

	var ev Event
	if jsoniter.Valid(raw) {
		record := jsoniter.Get(raw)
		ev.Name = record.Get("name").ToString()
		ev.Instance = record.Get("instance").ToString()
		ev.Click = model.Click{
			Button: model.ClampField(record.Get("button").ToString()),
			X:      model.ClampField(record.Get("x").ToString()),
			Y:      model.ClampField(record.Get("y").ToString()),
		}
		return ev
	}

	ev.Name = fieldCopy(raw, "name")
	ev.Instance = fieldCopy(raw, "instance")
	ev.Click = model.Click{
		Button: model.ClampField(fieldCopy(raw, "button")),
		X:      model.ClampField(fieldCopy(raw, "x")),
		Y:      model.ClampField(fieldCopy(raw, "y")),
	}
	return ev
}

func fieldCopy(buf []byte, key string) string {
	start, n := Field(buf, key)
	if n == 0 {
		return ""
	}
	return string(buf[start : start+n])
}

// Correlate attaches the event's click payload to the first block
// matching its name and instance exactly. It returns the block it
// notified, or nil when the event carries neither name nor instance or
// no block matches; such events are silently dropped.
func Correlate(status *model.StatusLine, ev Event) *model.Block {
	if ev.Name == "" && ev.Instance == "" {
		return nil
	}
	b := status.FindBlock(ev.Name, ev.Instance)
	if b == nil {
		return nil
	}
	b.Click = ev.Click
	return b
}
