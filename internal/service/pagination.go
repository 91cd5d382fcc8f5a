package service

// Page selects one page of a listing. Number starts at 1.
type Page struct {
	Number int
	Size   int
}

const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// Normalize clamps the page to valid values
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Size
}

func (p Page) Limit() int {
	return p.Normalize().Size
}
