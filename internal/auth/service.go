package auth

import (
	"context"
	"fmt"

	"ms-tombola/internal/logger"
)

// CodeNotifier delivers an issued login code to the operator out of
// band.
type CodeNotifier interface {
	PublishLoginCode(userID, code string) error
}

// Service runs the two-step panel login: an allow-listed user requests
// a code, the code is delivered out of band, and exchanging it yields a
// session token.
type Service struct {
	Codes    *CodeStore
	Sessions *Sessions
	Allowed  map[string]struct{}
	Notify   CodeNotifier
	Log      *logger.Logger
}

func NewService(codes *CodeStore, sessions *Sessions, allowedIDs []string, notify CodeNotifier, log *logger.Logger) *Service {
	allowed := make(map[string]struct{}, len(allowedIDs))
	for _, id := range allowedIDs {
		allowed[id] = struct{}{}
	}
	return &Service{Codes: codes, Sessions: sessions, Allowed: allowed, Notify: notify, Log: log}
}

// RequestCode issues a login code for an allow-listed user. The code is
// only sent through the notifier, never returned to the HTTP caller.
func (s *Service) RequestCode(ctx context.Context, userID string) error {
	if _, ok := s.Allowed[userID]; !ok {
		return ErrNotAllowed
	}

	code, err := s.Codes.Issue(ctx, userID)
	if err != nil {
		return err
	}

	if s.Notify != nil {
		if err := s.Notify.PublishLoginCode(userID, code); err != nil {
			s.Log.Warn("KAFKA", fmt.Sprintf("Failed to publish login code event: %v", err))
		}
	}
	return nil
}

// VerifyCode exchanges a valid code for a session token.
func (s *Service) VerifyCode(ctx context.Context, userID, code string) (string, error) {
	if _, ok := s.Allowed[userID]; !ok {
		return "", ErrNotAllowed
	}
	if err := s.Codes.Verify(ctx, userID, code); err != nil {
		return "", err
	}
	return s.Sessions.Issue(ctx, userID)
}

// Logout revokes the presented session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Sessions.Revoke(ctx, token)
}
