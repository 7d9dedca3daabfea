package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/synapsespectre/internal/advisor"
	"github.com/ppiankov/synapsespectre/internal/config"
	"github.com/ppiankov/synapsespectre/internal/database"
	"github.com/ppiankov/synapsespectre/internal/mas"
	"github.com/ppiankov/synapsespectre/internal/synapse"
)

type reader interface {
	advisor.Reader
	Close() error
}

var (
	openReader = func(ctx context.Context, cfg database.Config) (reader, error) {
		return database.Open(ctx, cfg)
	}
	loadSynapseConfig = synapse.Load
	loadMASConfig     = mas.Load
	loadToolConfig    = config.Load
)

func validateFormat(format string, allowed ...string) error {
	for _, v := range allowed {
		if format == v {
			return nil
		}
	}
	return fmt.Errorf("invalid --format %q (allowed: %s)", format, strings.Join(allowed, ", "))
}
