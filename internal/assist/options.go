package assist

import "strconv"

const (
	// DefaultCollapseThreshold is the maximum number of detail lines shown
	// before the remainder is folded into a collapsible region.
	DefaultCollapseThreshold = 4

	// PopupSessionID is the popup identity owned by this feature. Popups
	// created under other identities are never touched.
	PopupSessionID = "signature-assist"

	defaultClassName = "signature-assist"
	defaultPlacement = "auto"
)

// Options holds the user-tunable formatting and popup settings.
type Options struct {
	CollapseThreshold int
	ClassName         string
	Placement         string
	MaxWidth          int
}

// DefaultOptions returns the neutral defaults applied when no settings are
// provided or when a provided value cannot be used.
func DefaultOptions() Options {
	return Options{
		CollapseThreshold: DefaultCollapseThreshold,
		ClassName:         defaultClassName,
		Placement:         defaultPlacement,
	}
}

// ParseOptions resolves raw string settings into Options. Unusable values
// are reported through the logger with the offending value named and fall
// back to the default; parsing never fails.
func ParseOptions(values map[string]string) Options {
	opts := DefaultOptions()
	for key, value := range values {
		switch key {
		case "collapseThreshold":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				log.Warningf("invalid collapseThreshold %q, using %d", value, DefaultCollapseThreshold)
				continue
			}
			opts.CollapseThreshold = n
		case "className":
			if value != "" {
				opts.ClassName = value
			}
		case "placement":
			switch value {
			case "above", "below", "auto":
				opts.Placement = value
			default:
				log.Warningf("unrecognized placement %q, using %q", value, defaultPlacement)
			}
		case "maxWidth":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				log.Warningf("invalid maxWidth %q, ignoring", value)
				continue
			}
			opts.MaxWidth = n
		default:
			log.Warningf("unrecognized signature assist option %q", key)
		}
	}
	return opts
}
