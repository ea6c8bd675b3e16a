package engine

import "strings"

const (
	// SpaceLabel is the reserved no-op label. Cells carrying it are skipped.
	SpaceLabel = "SPACE"

	// LabelSeparator splits a compound ATTRIBUTE_VARIANT label.
	LabelSeparator = "_"
)

// Label is the parsed form of a raw cell label.
type Label struct {
	Variant   string
	Attribute string
	Skip      bool
}

// LabelParser turns a raw cell label into a Label.
type LabelParser func(raw string) (Label, error)

// ParseLabel parses a label that may carry an attribute prefix, such as
// "UP_COMETH" or "PURPLE_SOLOON". Both parts are lowercased. Attribute
// domains are not checked here; that is the Placeable's job.
func ParseLabel(raw string) (Label, error) {
	if isSpace(raw) {
		return Label{Skip: true}, nil
	}
	if raw == "" {
		return Label{}, NewValidationError("empty cell label")
	}

	switch strings.Count(raw, LabelSeparator) {
	case 0:
		return Label{Variant: strings.ToLower(raw)}, nil
	case 1:
		attribute, variant, _ := strings.Cut(raw, LabelSeparator)
		if attribute == "" || variant == "" {
			return Label{}, NewValidationError("malformed label %q: empty attribute or variant", raw)
		}
		return Label{
			Variant:   strings.ToLower(variant),
			Attribute: strings.ToLower(attribute),
		}, nil
	default:
		return Label{}, NewValidationError("malformed label %q: more than one %q separator", raw, LabelSeparator)
	}
}

// ParseBareLabel parses a label as a bare variant name. It never produces an
// attribute, so a compound label becomes a variant name that no registered
// variant will match.
func ParseBareLabel(raw string) (Label, error) {
	if isSpace(raw) {
		return Label{Skip: true}, nil
	}
	if raw == "" {
		return Label{}, NewValidationError("empty cell label")
	}
	return Label{Variant: strings.ToLower(raw)}, nil
}

func isSpace(raw string) bool {
	return strings.EqualFold(raw, SpaceLabel)
}
