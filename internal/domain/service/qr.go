package service

import (
	"context"
	"fmt"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
)

// Ticket renders the caller's registration for the event as a QR code PNG.
// The code carries the registration id, which CheckIn accepts.
func (s *RegistrationService) Ticket(ctx context.Context, caller dto.Identity, eventID string) ([]byte, error) {
	registration, err := s.storage.Get(ctx, eventID, caller.UserID)
	if err != nil {
		return nil, err
	}

	cfg := s.qrCFG
	cfg.Content = registration.ID
	png, err := cfg.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate ticket for registration %s: %w", registration.ID, err)
	}
	return png, nil
}
