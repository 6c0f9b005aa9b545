package bot

import (
	"fmt"
)

// Timeout policies understood by NewBrain.
const (
	PolicyPass     = "pass"
	PolicyAutoplay = "autoplay"
)

// NewBrain creates the brain that acts for a player whose turn timed out.
func NewBrain(policy string) (Brain, error) {
	switch policy {
	case PolicyPass:
		return &PassBot{}, nil
	case PolicyAutoplay, "":
		return &StandardBot{}, nil
	default:
		return nil, fmt.Errorf("unknown timeout policy: %q", policy)
	}
}
