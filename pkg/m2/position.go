package m2

// Position is a zero-based cursor position. Character counts bytes.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Before reports whether p sorts before o.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Character < o.Character
}

// Range is a span between two positions, end inclusive for cursor tests.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether the cursor p falls inside the range or touches its end.
func (r Range) Contains(p Position) bool {
	return !p.Before(r.Start) && !r.End.Before(p)
}

// Location is a range inside a file.
type Location struct {
	Path  string `json:"path"`
	Range Range  `json:"range"`
}

// CandidateKind is the kind of a completion candidate.
type CandidateKind int

const (
	CandidateModule CandidateKind = iota
	CandidateClass
	CandidateFile
	CandidateEvent
	CandidateComponent
)

func (k CandidateKind) String() string {
	switch k {
	case CandidateModule:
		return "module"
	case CandidateClass:
		return "class"
	case CandidateFile:
		return "file"
	case CandidateEvent:
		return "event"
	default:
		return "component"
	}
}

// TextEdit replaces Range with NewText.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"new_text"`
}

// Candidate is a single completion suggestion.
type Candidate struct {
	Label string        `json:"label"`
	Kind  CandidateKind `json:"kind"`
	Edit  *TextEdit     `json:"edit,omitempty"`
}
