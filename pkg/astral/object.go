// Package astral implements the placeable astral objects of the megaverse
// and the registry that maps label names to them.
package astral

import (
	"context"
	"slices"
	"strings"

	"github.com/megaverse/megaverse/pkg/engine"
)

// Transport issues create and delete requests against a resource endpoint.
type Transport interface {
	Create(ctx context.Context, resource string, body any) error
	Delete(ctx context.Context, resource string, body any) error
}

// Descriptor declares a variant's endpoint and attribute domain.
type Descriptor struct {
	// Name is the canonical lowercase variant name.
	Name string

	// Resource is the endpoint path segment, e.g. "soloons".
	Resource string

	// AttributeField is the payload field carrying the attribute.
	AttributeField string

	// Attributes is the set of valid attribute values. Empty means the
	// variant takes no attribute.
	Attributes []string
}

// RequiresAttribute reports whether placements must carry an attribute.
func (d Descriptor) RequiresAttribute() bool {
	return len(d.Attributes) > 0
}

// ValidateAttribute checks an attribute against a variant's domain. The check
// is case-sensitive; callers lowercase attributes before calling.
func ValidateAttribute(d Descriptor, attribute string) error {
	if !d.RequiresAttribute() {
		if attribute != "" {
			return engine.NewValidationError("%s does not accept an attribute, got %q", d.Name, attribute).
				WithResource(d.Name)
		}
		return nil
	}
	if attribute == "" {
		return engine.NewValidationError("%s requires a %s, one of [%s]", d.Name, d.AttributeField, strings.Join(d.Attributes, ", ")).
			WithResource(d.Name)
	}
	if !slices.Contains(d.Attributes, attribute) {
		return engine.NewValidationError("%s %s must be one of [%s], got %q", d.Name, d.AttributeField, strings.Join(d.Attributes, ", "), attribute).
			WithResource(d.Name)
	}
	return nil
}

// ValidatePosition rejects negative coordinates.
func ValidatePosition(d Descriptor, row, column int) error {
	if row < 0 || column < 0 {
		return engine.NewValidationError("%s position must be non-negative, got (%d,%d)", d.Name, row, column).
			WithResource(d.Name)
	}
	return nil
}

// object holds what every variant shares: its descriptor, the candidate
// identifier, and the transport.
type object struct {
	desc        Descriptor
	candidateID string
	transport   Transport
}

func (o *object) Name() string {
	return o.desc.Name
}

func (o *object) place(ctx context.Context, row, column int, attribute string) error {
	if err := ValidatePosition(o.desc, row, column); err != nil {
		return err
	}
	if err := ValidateAttribute(o.desc, attribute); err != nil {
		return err
	}

	payload := map[string]any{
		"candidateId": o.candidateID,
		"row":         row,
		"column":      column,
	}
	if o.desc.RequiresAttribute() {
		payload[o.desc.AttributeField] = attribute
	}
	return o.transport.Create(ctx, o.desc.Resource, payload)
}

func (o *object) remove(ctx context.Context, row, column int) error {
	if err := ValidatePosition(o.desc, row, column); err != nil {
		return err
	}
	return o.transport.Delete(ctx, o.desc.Resource, map[string]any{
		"candidateId": o.candidateID,
		"row":         row,
		"column":      column,
	})
}
