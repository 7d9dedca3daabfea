package advisor

import (
	"context"
	"fmt"

	"github.com/ppiankov/synapsespectre/internal/mas"
	"github.com/ppiankov/synapsespectre/internal/synapse"
)

// MASChecks returns the checks that compare Synapse against a MAS config.
// They run after DefaultChecks.
func MASChecks(masCfg *mas.Config) []Check {
	return []Check{{
		Name:        string(RuleMASServerNameMismatch),
		Description: "MAS matrix.homeserver matches Synapse server_name",
		Run: func(_ context.Context, cfg *synapse.Config, _ Reader) ([]Finding, error) {
			if masCfg.Matrix.Homeserver == cfg.ServerName {
				return nil, nil
			}
			return []Finding{failure(RuleMASServerNameMismatch,
				fmt.Sprintf("MAS matrix.homeserver %q does not match Synapse server_name %q", masCfg.Matrix.Homeserver, cfg.ServerName))}, nil
		},
	}}
}
