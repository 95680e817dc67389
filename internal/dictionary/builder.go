package dictionary

// Builder assembles a Dictionary from in-memory parts.
type Builder struct {
	matrix  *Matrix
	system  []Entry
	user    []Entry
	unknown []UnknownEntry
}

// NewBuilder returns a Builder with a 1x1 zero-cost matrix.
func NewBuilder() *Builder {
	m, _ := NewMatrix(1, 1)
	return &Builder{matrix: m}
}

func (b *Builder) SetMatrix(m *Matrix) *Builder {
	b.matrix = m
	return b
}

func (b *Builder) AddSystem(entries ...Entry) *Builder {
	b.system = append(b.system, entries...)
	return b
}

func (b *Builder) AddUser(entries ...Entry) *Builder {
	b.user = append(b.user, entries...)
	return b
}

func (b *Builder) AddUnknown(entries ...UnknownEntry) *Builder {
	b.unknown = append(b.unknown, entries...)
	return b
}

// Build validates the parts and returns an immutable Dictionary.
// The Builder may be reused; the Dictionary does not alias its slices.
func (b *Builder) Build() (*Dictionary, error) {
	var matrix *Matrix
	if b.matrix != nil {
		matrix = &Matrix{
			numRight: b.matrix.numRight,
			numLeft:  b.matrix.numLeft,
			costs:    append([]int16(nil), b.matrix.costs...),
		}
	}
	return newDictionary(
		matrix,
		append([]Entry(nil), b.system...),
		append([]Entry(nil), b.user...),
		append([]UnknownEntry(nil), b.unknown...),
	)
}
