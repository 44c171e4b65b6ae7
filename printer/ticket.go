package printer

type Op int

const (
	OpFont Op = iota
	OpAlign
	OpSize
	OpText
	OpFeed
	OpCut
)

type Font byte

const (
	FontA Font = iota
	FontB
)

type Align byte

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Instruction is one transport-agnostic print directive. Only the fields
// relevant to Op are set.
type Instruction struct {
	Op     Op
	Font   Font
	Align  Align
	Width  int
	Height int
	Text   string
	Lines  int
}

// Ticket is an ordered instruction sequence built fresh for each print job.
// The builder methods chain the way thermal printer drivers do.
type Ticket struct {
	Instructions []Instruction
}

func (t *Ticket) add(in Instruction) *Ticket {
	t.Instructions = append(t.Instructions, in)
	return t
}

func (t *Ticket) Font(f Font) *Ticket { return t.add(Instruction{Op: OpFont, Font: f}) }

func (t *Ticket) Align(a Align) *Ticket { return t.add(Instruction{Op: OpAlign, Align: a}) }

// Size sets the character magnification; 0,0 is normal size.
func (t *Ticket) Size(width, height int) *Ticket {
	return t.add(Instruction{Op: OpSize, Width: width, Height: height})
}

func (t *Ticket) Text(line string) *Ticket { return t.add(Instruction{Op: OpText, Text: line}) }

func (t *Ticket) Feed(lines int) *Ticket { return t.add(Instruction{Op: OpFeed, Lines: lines}) }

func (t *Ticket) Cut() *Ticket { return t.add(Instruction{Op: OpCut}) }

// Lines returns the text lines in print order.
func (t Ticket) Lines() []string {
	var lines []string
	for _, in := range t.Instructions {
		if in.Op == OpText {
			lines = append(lines, in.Text)
		}
	}
	return lines
}
