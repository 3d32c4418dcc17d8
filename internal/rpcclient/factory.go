package rpcclient

import (
	"context"

	"github.com/rs/zerolog"
)

// Options selects and configures the Lookup returned by New.
type Options struct {
	Simulation bool
	Live       LiveConfig
	Log        zerolog.Logger
}

// New returns the mock when opts.Simulation is set. Otherwise it builds a
// live client and pings the node once; if that fails the failure is logged
// and the mock is returned instead. The choice is not revisited later.
func New(ctx context.Context, opts Options) Lookup {
	log := opts.Log

	if opts.Simulation {
		log.Info().Msg("running in simulation mode, no RPC calls will be made")
		return NewMockClient(log)
	}

	live, err := NewLiveClient(opts.Live, log)
	if err == nil {
		err = live.Ping(ctx)
	}
	if err != nil {
		log.Warn().
			Err(err).
			Str("url", opts.Live.URL).
			Msg("cannot reach RPC node, switching to simulation mode")
		return NewMockClient(log)
	}

	log.Info().Str("url", opts.Live.URL).Msg("connected to RPC node")
	return live
}
