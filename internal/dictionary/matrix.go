package dictionary

import "fmt"

// Matrix holds connection costs between the right context id of a word
// and the left context id of the word that follows it.
type Matrix struct {
	numRight int
	numLeft  int
	costs    []int16
}

// NewMatrix returns a zeroed numRight x numLeft matrix.
func NewMatrix(numRight, numLeft int) (*Matrix, error) {
	if numRight <= 0 || numRight > 1<<16-1 || numLeft <= 0 || numLeft > 1<<16-1 {
		return nil, malformed("matrix dimensions %dx%d out of range", numRight, numLeft)
	}
	return &Matrix{
		numRight: numRight,
		numLeft:  numLeft,
		costs:    make([]int16, numRight*numLeft),
	}, nil
}

// Set stores the cost of connecting right to left.
func (m *Matrix) Set(right, left uint16, cost int16) error {
	if int(right) >= m.numRight || int(left) >= m.numLeft {
		return fmt.Errorf("%w: connection (%d, %d) outside %dx%d matrix", ErrMalformed, right, left, m.numRight, m.numLeft)
	}
	m.costs[int(right)*m.numLeft+int(left)] = cost
	return nil
}

// Cost returns the connection cost. Both ids must be in range; the
// Dictionary validates every entry against the matrix at build time.
func (m *Matrix) Cost(right, left uint16) int32 {
	return int32(m.costs[int(right)*m.numLeft+int(left)])
}

func (m *Matrix) NumRight() int { return m.numRight }
func (m *Matrix) NumLeft() int  { return m.numLeft }
