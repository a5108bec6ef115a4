package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Интервал фонового обновления JWKS.
const jwksRefreshInterval = 5 * time.Minute

// Допуск рассинхронизации часов при проверке exp/nbf.
const jwtLeeway = 30 * time.Second

// Validator проверяет подпись access token по JWKS backend'а.
// Включается опционально (JD_JWKS_URL): без него подпись не проверяется,
// токен считается доверенным как полученный по TLS от backend'а.
type Validator struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewValidator создаёт валидатор с фоновым обновлением JWKS.
// NoErrorReturnFirstHTTPReq — стартуем, даже если backend ещё недоступен.
func NewValidator(ctx context.Context, jwksURL string, logger *slog.Logger) (*Validator, error) {
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Ctx:                       ctx,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           jwksRefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("error", err.Error()),
				slog.String("url", jwksURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	return &Validator{
		jwks:   k,
		logger: logger.With(slog.String("component", "token_validator")),
	}, nil
}

// NewValidatorWithKeyfunc создаёт валидатор с готовой keyfunc.
// Используется в тестах для подстановки mock JWKS.
func NewValidatorWithKeyfunc(kf keyfunc.Keyfunc, logger *slog.Logger) *Validator {
	return &Validator{
		jwks:   kf,
		logger: logger.With(slog.String("component", "token_validator")),
	}
}

// Validate проверяет подпись (RS256) и срок действия access token.
func (v *Validator) Validate(tokenString string) error {
	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithLeeway(jwtLeeway),
	)
	if err != nil {
		return fmt.Errorf("проверка access token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("access token недействителен")
	}
	return nil
}
