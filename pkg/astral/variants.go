package astral

import (
	"context"

	"github.com/megaverse/megaverse/pkg/engine"
)

// Descriptors of the variants that ship by default.
var (
	PolyanetDescriptor = Descriptor{
		Name:     "polyanet",
		Resource: "polyanets",
	}

	SoloonDescriptor = Descriptor{
		Name:           "soloon",
		Resource:       "soloons",
		AttributeField: "color",
		Attributes:     []string{"blue", "red", "purple", "white"},
	}

	ComethDescriptor = Descriptor{
		Name:           "cometh",
		Resource:       "comeths",
		AttributeField: "direction",
		Attributes:     []string{"up", "down", "right", "left"},
	}
)

var (
	_ engine.Placeable = (*Polyanet)(nil)
	_ engine.Placeable = (*Soloon)(nil)
	_ engine.Placeable = (*Cometh)(nil)
)

// Polyanet is a plain astral object with no attributes.
type Polyanet struct {
	object
}

// NewPolyanet creates a Polyanet bound to a candidate.
func NewPolyanet(candidateID string, t Transport) *Polyanet {
	return &Polyanet{object{desc: PolyanetDescriptor, candidateID: candidateID, transport: t}}
}

// Place creates a Polyanet at (row, column). It rejects any attribute.
func (p *Polyanet) Place(ctx context.Context, row, column int, attribute string) error {
	return p.place(ctx, row, column, attribute)
}

// Remove deletes the Polyanet at (row, column).
func (p *Polyanet) Remove(ctx context.Context, row, column int) error {
	return p.remove(ctx, row, column)
}

// Soloon is a colored astral object.
type Soloon struct {
	object
}

// NewSoloon creates a Soloon bound to a candidate.
func NewSoloon(candidateID string, t Transport) *Soloon {
	return &Soloon{object{desc: SoloonDescriptor, candidateID: candidateID, transport: t}}
}

// Place creates a Soloon of the given color at (row, column).
func (s *Soloon) Place(ctx context.Context, row, column int, color string) error {
	return s.place(ctx, row, column, color)
}

// Remove deletes the Soloon at (row, column).
func (s *Soloon) Remove(ctx context.Context, row, column int) error {
	return s.remove(ctx, row, column)
}

// Cometh is a directional astral object.
type Cometh struct {
	object
}

// NewCometh creates a Cometh bound to a candidate.
func NewCometh(candidateID string, t Transport) *Cometh {
	return &Cometh{object{desc: ComethDescriptor, candidateID: candidateID, transport: t}}
}

// Place creates a Cometh facing direction at (row, column).
func (c *Cometh) Place(ctx context.Context, row, column int, direction string) error {
	return c.place(ctx, row, column, direction)
}

// Remove deletes the Cometh at (row, column).
func (c *Cometh) Remove(ctx context.Context, row, column int) error {
	return c.remove(ctx, row, column)
}
