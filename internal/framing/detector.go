// Package framing detects the end of a JSON document inside a byte stream that
// carries no length prefix.
//
// The detector only counts the structural delimiters of the root value. It does
// not look inside string literals, so a quoted '}' or ']' at the root's nesting
// kind will be counted. Peers are expected not to emit such payloads.
package framing

// DefaultDepthLimit is the nesting ceiling applied when none is configured.
const DefaultDepthLimit = 4096

// Kind identifies the root structure of the document being scanned.
type Kind int

const (
	Undefined Kind = iota
	Object
	Array
)

func (k Kind) String() string {
	switch k {
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return "undefined"
	}
}

func (k Kind) delimiters() (opener, closer byte) {
	switch k {
	case Object:
		return '{', '}'
	case Array:
		return '[', ']'
	default:
		return 0, 0
	}
}

// Detector is a single-use scanner for one document. Create a new one for
// every receive.
type Detector struct {
	limit  int
	root   Kind
	depth  int
	done   bool
	forced bool
}

// New returns a Detector enforcing depthLimit. Non-positive limits select
// DefaultDepthLimit.
func New(depthLimit int) *Detector {
	if depthLimit <= 0 {
		depthLimit = DefaultDepthLimit
	}
	return &Detector{limit: depthLimit}
}

// Feed scans the next chunk of the stream. It returns the number of bytes of p
// that belong to the document and whether the document is complete. Once done,
// further calls consume nothing.
func (d *Detector) Feed(p []byte) (n int, done bool) {
	if d.done {
		return 0, true
	}

	for i, b := range p {
		if d.root == Undefined {
			switch b {
			case '{':
				d.root, d.depth = Object, 1
			case '[':
				d.root, d.depth = Array, 1
			}
			continue
		}

		opener, closer := d.root.delimiters()
		switch b {
		case closer:
			d.depth--
			if d.depth == 0 {
				d.done = true
				return i + 1, true
			}
		case opener:
			if d.depth >= d.limit {
				d.root, d.depth = Undefined, 0
				d.done, d.forced = true, true
				return i + 1, true
			}
			d.depth++
		}
	}
	return len(p), false
}

// Done reports whether a boundary decision has been made.
func (d *Detector) Done() bool { return d.done }

// Forced reports whether completion was caused by the depth ceiling rather
// than a matching close. The scanned bytes are then not a trustworthy document.
func (d *Detector) Forced() bool { return d.forced }

// Root returns the root kind seen so far.
func (d *Detector) Root() Kind { return d.root }

// Depth returns the current nesting depth of the root kind.
func (d *Detector) Depth() int { return d.depth }

// Limit returns the configured nesting ceiling.
func (d *Detector) Limit() int { return d.limit }
