package intent

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/shopmate-assistant/assistant/contract"
)

// FallbackSource tries the primary extractor and degrades to the
// secondary when the primary fails. It never returns an error: the
// dialogue agent always receives an Extraction, worst case
// {unknown, {}}.
type FallbackSource struct {
	primary   contractx.IntentSource
	secondary contractx.IntentSource
}

func NewFallbackSource(primary, secondary contractx.IntentSource) *FallbackSource {
	return &FallbackSource{primary: primary, secondary: secondary}
}

func (s *FallbackSource) Extract(ctx context.Context, sessionID, text string) (contractx.Extraction, error) {
	if s.primary != nil {
		ex, err := s.primary.Extract(ctx, sessionID, text)
		if err == nil {
			return ex, nil
		}
		log.Warn().Err(err).Str("session_id", sessionID).Msg("primary extractor failed, using fallback")
	}

	if s.secondary != nil {
		ex, err := s.secondary.Extract(ctx, sessionID, text)
		if err == nil {
			return ex, nil
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("fallback extractor failed")
	}

	return contractx.Extraction{Intent: contractx.IntentUnknown}, nil
}
