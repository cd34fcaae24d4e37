package league

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/waiverwire/internal/domain/waiver"
)

// League carries the per-league roster settings every ownership mutation
// consults: the roster cap, the waiver policy, and how long a released
// player stays on waivers.
type League struct {
	ID           string
	Name         string
	Season       string
	RosterCap    int
	WaiverPolicy waiver.Policy
	WaiverWindow time.Duration
	IsDefault    bool
}

func (l League) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}
	if l.RosterCap <= 0 {
		return fmt.Errorf("roster cap must be > 0")
	}
	if _, err := waiver.ParsePolicy(string(l.WaiverPolicy)); err != nil {
		return err
	}
	if l.WaiverWindow <= 0 {
		return fmt.Errorf("waiver window must be > 0")
	}
	return nil
}
