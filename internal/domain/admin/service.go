package admin

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/apollos-hideaway/hideaway-api/internal/middleware"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/jwt"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/password"
)

// dummyHash keeps the cost of a failed login independent of which
// credential was wrong.
const dummyHash = "$2a$12$C6UzMDM.H6dfI/f/IKcEeO5lJz0Nq8r2xYFvWbS1Rr9n0W3eWq8xG"

// Service authenticates the resort administrator configured in the environment
type Service struct {
	email        string
	passwordHash string
	jwtSvc       *jwt.Service
}

// NewService creates admin service
func NewService(email, passwordHash string, jwtSvc *jwt.Service) *Service {
	return &Service{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: passwordHash,
		jwtSvc:       jwtSvc,
	}
}

// Enabled reports whether admin credentials are configured
func (s *Service) Enabled() bool {
	return s.email != "" && s.passwordHash != ""
}

// Login verifies credentials and issues an access token
func (s *Service) Login(ctx context.Context, email, pwd string) (*LoginResponse, error) {
	if !s.Enabled() {
		return nil, ErrAdminDisabled
	}

	emailOK := strings.ToLower(strings.TrimSpace(email)) == s.email
	hash := s.passwordHash
	if !emailOK {
		hash = dummyHash
	}
	if !password.Verify(pwd, hash) || !emailOK {
		log.Warn().Str("email", email).Msg("Admin login failed")
		return nil, ErrInvalidCredentials
	}

	token, _, err := s.jwtSvc.GenerateAccessToken(s.email, middleware.RoleAdmin)
	if err != nil {
		return nil, err
	}

	log.Info().Str("email", s.email).Msg("Admin logged in")
	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtSvc.AccessTTL().Seconds()),
	}, nil
}
