package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Principal — пользователь, извлечённый из claims access token.
type Principal struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Login    string   `json:"login"`
	RegionID string   `json:"regionId,omitempty"`
	Roles    []string `json:"roles"`
}

// HasRole проверяет наличие роли по точному совпадению имени.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PrincipalFromToken извлекает пользователя из claims access token.
// Подпись НЕ проверяется: токен получен по TLS от самого backend'а,
// криптографическая проверка включается отдельно через Validator.
// Возвращает principal и время истечения токена (Unix timestamp).
//
// Backend выдаёт claims с ключами-URI схем WS-*/XML SOAP. Ключ
// нормализуется до сегмента после последнего символа '/':
// «…/claims/nameidentifier» → «nameidentifier».
func PrincipalFromToken(tokenString string) (*Principal, int64, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, 0, fmt.Errorf("разбор access token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, 0, fmt.Errorf("неожиданный тип claims: %T", token.Claims)
	}

	p := &Principal{}
	var expiresAt int64

	for key, value := range claims {
		switch normalizeClaimKey(key) {
		case "nameidentifier":
			id, err := claimInt(value)
			if err != nil {
				return nil, 0, fmt.Errorf("claim nameidentifier: %w", err)
			}
			p.ID = id
		case "name":
			p.Name, _ = value.(string)
		case "login":
			p.Login, _ = value.(string)
		case "departmentId":
			p.RegionID = claimString(value)
		case "role":
			p.Roles = append(p.Roles, claimStrings(value)...)
		case "exp":
			if f, ok := value.(float64); ok {
				expiresAt = int64(f)
			}
		}
	}

	if p.ID == 0 {
		return nil, 0, fmt.Errorf("access token без claim nameidentifier")
	}
	if p.Login == "" {
		p.Login = p.Name
	}
	return p, expiresAt, nil
}

// normalizeClaimKey возвращает сегмент ключа после последнего '/'.
// Обычные ключи (exp, iss) возвращаются как есть.
func normalizeClaimKey(key string) string {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return key
}

// claimInt приводит значение claim к int: backend отдаёт
// идентификатор то числом, то строкой.
func claimInt(v any) (int, error) {
	switch x := v.(type) {
	case float64:
		return int(x), nil
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0, fmt.Errorf("нечисловое значение %q", x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("неожиданный тип %T", v)
	}
}

// claimString приводит значение claim к строке.
func claimString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

// claimStrings приводит значение claim к набору строк:
// одиночная роль приходит строкой, несколько — массивом.
func claimStrings(v any) []string {
	switch x := v.(type) {
	case string:
		return []string{x}
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
