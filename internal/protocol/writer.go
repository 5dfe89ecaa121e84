// Package protocol serializes the status line to the i3bar/swaybar
// stream protocol: one header object, then an unbounded JSON array
// with one element per render cycle.
package protocol

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/tinybar/tinybar/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// header is the first line of the stream.
type header struct {
	Version     int  `json:"version"`
	ClickEvents bool `json:"click_events"`
}

// cell is one block as the bar sees it.
type cell struct {
	FullText  string `json:"full_text"`
	ShortText string `json:"short_text,omitempty"`
	Color     string `json:"color,omitempty"`
	Name      string `json:"name,omitempty"`
	Instance  string `json:"instance,omitempty"`
	Urgent    bool   `json:"urgent,omitempty"`
	Separator bool   `json:"separator"`
}

// Writer renders status lines onto one output stream. It is not safe
// for concurrent use; the scheduler renders from a single goroutine.
type Writer struct {
	out         io.Writer
	clickEvents bool
	started     bool
}

// NewWriter returns a Writer over out. clickEvents advertises to the
// bar that this process wants click notifications on its stdin.
func NewWriter(out io.Writer, clickEvents bool) *Writer {
	return &Writer{out: out, clickEvents: clickEvents}
}

// Render writes one element of the protocol stream covering every
// block, static ones included. The first call also emits the protocol
// header and opens the infinite array.
func (w *Writer) Render(status *model.StatusLine) error {
	if !w.started {
		hdr, err := json.Marshal(header{Version: 1, ClickEvents: w.clickEvents})
		if err != nil {
			return fmt.Errorf("protocol: encoding header: %w", err)
		}
		if _, err := fmt.Fprintf(w.out, "%s\n[\n", hdr); err != nil {
			return fmt.Errorf("protocol: writing header: %w", err)
		}
		w.started = true
	} else {
		if _, err := io.WriteString(w.out, ","); err != nil {
			return fmt.Errorf("protocol: writing frame separator: %w", err)
		}
	}

	cells := make([]cell, status.Len())
	for i := range status.Blocks {
		b := &status.Blocks[i]
		cells[i] = cell{
			FullText:  b.FullText,
			ShortText: b.ShortText,
			Color:     b.Color,
			Name:      b.Name,
			Instance:  b.Instance,
			Urgent:    b.Urgent,
			Separator: b.Separator,
		}
	}

	data, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("protocol: encoding status line: %w", err)
	}
	if _, err := fmt.Fprintf(w.out, "%s\n", data); err != nil {
		return fmt.Errorf("protocol: writing status line: %w", err)
	}
	return nil
}
