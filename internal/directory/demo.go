package directory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

// demoBackend serves a fixed roster and accepts every mutation without
// changing it, so repeated passes see the same state.
type demoBackend struct {
	roster    []domain.DirectoryMember
	normalize func(string) string
	log       zerolog.Logger
}

func (b *demoBackend) list(context.Context) ([]domain.DirectoryMember, error) {
	out := make([]domain.DirectoryMember, len(b.roster))
	for i, m := range b.roster {
		attrs := make(map[string]string, len(m.Attributes))
		for k, v := range m.Attributes {
			attrs[k] = v
		}
		out[i] = domain.DirectoryMember{Identity: m.Identity, Attributes: attrs}
	}
	b.log.Debug().Int("members", len(out)).Msg("[DEMO] listing members")
	return out, nil
}

func (b *demoBackend) check(_ context.Context, identity string) (bool, error) {
	key := b.normalize(identity)
	for _, m := range b.roster {
		if b.normalize(m.Identity) == key {
			return true, nil
		}
	}
	return false, nil
}

func (b *demoBackend) add(_ context.Context, identity string, attrs Attributes) error {
	b.log.Info().Str("identity", identity).Interface("attributes", attrs).Msg("[DEMO] adding member")
	return nil
}

func (b *demoBackend) remove(_ context.Context, identity string) error {
	b.log.Info().Str("identity", identity).Msg("[DEMO] removing member")
	return nil
}
