package model

// Click holds the pointer-event fields attached to a block by the click
// correlator. Button, X and Y are kept as raw text; nothing in the
// scheduler ever needs them as numbers. Each field is clamped to
// ClickFieldCap bytes on assignment.
type Click struct {
	Button string
	X      string
	Y      string
}

// Pending reports whether a click is attached. A click always carries a
// button, so an empty button means no click.
func (c Click) Pending() bool {
	return c.Button != ""
}

// Block is one unit of status output. The same type serves as the
// immutable config template and as the per-block runtime state; a
// StatusLine keeps one of each, positionally aligned.
type Block struct {
	Name     string
	Instance string
	Command  string // empty = static block, rendered but never executed
	Interval int64  // seconds between refreshes, 0 = never time-triggered
	Signal   int64  // numeric signal that forces a refresh, 0 = none

	// Presentation passthrough for the bar protocol.
	Color     string
	Separator bool

	// Runtime state, zero on config templates.
	FullText   string
	ShortText  string
	Urgent     bool
	LastUpdate int64 // unix seconds of last successful refresh, 0 = never
	Click      Click
}

// Static reports whether this block has no command to run.
func (b *Block) Static() bool {
	return b.Command == ""
}

// StatusLine is the fixed, ordered set of blocks for the process
// lifetime. Configs holds the templates read at startup; Blocks holds
// the mutable runtime copies. Index i in one always corresponds to
// index i in the other.
type StatusLine struct {
	Configs []Block
	Blocks  []Block
}

// NewStatusLine seeds the runtime blocks from the config templates.
func NewStatusLine(configs []Block) *StatusLine {
	s := &StatusLine{
		Configs: configs,
		Blocks:  make([]Block, len(configs)),
	}
	copy(s.Blocks, configs)
	return s
}

// Len returns the number of blocks.
func (s *StatusLine) Len() int {
	return len(s.Blocks)
}

// FindBlock returns the first runtime block matching name and instance
// exactly, or nil. Blocks are not required to have unique name+instance
// pairs; when they collide only the first one is found, which is the
// accepted behavior for click routing.
func (s *StatusLine) FindBlock(name, instance string) *Block {
	for i := range s.Blocks {
		b := &s.Blocks[i]
		if b.Name == name && b.Instance == instance {
			return b
		}
	}
	return nil
}
