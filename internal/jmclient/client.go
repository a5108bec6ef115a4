// Пакет jmclient — HTTP-клиент backend'а журнала дефектов.
//
// Покрывает аутентификацию (/api/Authentication), записи журнала
// (/api/Journals), комментарии (/api/Comments), справочники (/api/Lookups)
// и администрирование пользователей (/api/Users). Ошибки backend'а
// со статусом 4xx/5xx возвращаются как *RemoteError с разобранными
// сообщениями.
package jmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/model"
)

// TokenPair — пара токенов backend'а (ответ login и refresh-token).
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// JournalPage — страница списка записей (ответ GET /api/Journals).
type JournalPage struct {
	Journals    []model.Journal `json:"journals"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
}

// Client — HTTP-клиент backend'а журнала дефектов.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент backend'а.
// baseURL — адрес backend'а без завершающего слэша, timeout — общий
// таймаут HTTP-запросов.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "jm_client")),
	}
}

// Login выполняет вход по логину и паролю.
// POST /api/Authentication/login.
func (c *Client) Login(ctx context.Context, login, password string) (*TokenPair, error) {
	body := map[string]string{"login": login, "password": password}

	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/Authentication/login", "", body, &pair); err != nil {
		return nil, fmt.Errorf("вход пользователя %s: %w", login, err)
	}
	return &pair, nil
}

// Refresh обменивает истёкшую пару токенов на новую.
// POST /api/Authentication/refresh-token, оба токена в теле запроса.
func (c *Client) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	body := map[string]string{"accessToken": accessToken, "refreshToken": refreshToken}

	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/Authentication/refresh-token", "", body, &pair); err != nil {
		return nil, fmt.Errorf("обновление токенов: %w", err)
	}
	return &pair, nil
}

// ListJournals запрашивает страницу списка записей журнала.
// GET /api/Journals с параметрами пагинации, сортировки и фильтров.
func (c *Client) ListJournals(ctx context.Context, token string, params url.Values) (*JournalPage, error) {
	path := "/api/Journals"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var page JournalPage
	if err := c.do(ctx, http.MethodGet, path, token, nil, &page); err != nil {
		return nil, fmt.Errorf("список записей журнала: %w", err)
	}
	return &page, nil
}

// GetJournal запрашивает запись журнала по идентификатору.
// GET /api/Journals/{id}.
func (c *Client) GetJournal(ctx context.Context, token string, id int) (*model.Journal, error) {
	var j model.Journal
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/Journals/%d", id), token, nil, &j); err != nil {
		return nil, fmt.Errorf("запись журнала %d: %w", id, err)
	}
	return &j, nil
}

// CreateJournal создаёт запись журнала.
// POST /api/Journals, ссылочные поля передаются идентификаторами.
func (c *Client) CreateJournal(ctx context.Context, token string, payload model.JournalPatch) (*model.Journal, error) {
	var j model.Journal
	if err := c.do(ctx, http.MethodPost, "/api/Journals", token, payload, &j); err != nil {
		return nil, fmt.Errorf("создание записи журнала: %w", err)
	}
	return &j, nil
}

// UpdateJournal частично обновляет запись журнала.
// PUT /api/Journals/{id}, передаются только изменённые поля.
func (c *Client) UpdateJournal(ctx context.Context, token string, id int, patch model.JournalPatch) (*model.Journal, error) {
	var j model.Journal
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/Journals/%d", id), token, patch, &j); err != nil {
		return nil, fmt.Errorf("обновление записи журнала %d: %w", id, err)
	}
	return &j, nil
}

// DeleteJournal удаляет запись журнала.
// DELETE /api/Journals/{id}.
func (c *Client) DeleteJournal(ctx context.Context, token string, id int) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/Journals/%d", id), token, nil, nil); err != nil {
		return fmt.Errorf("удаление записи журнала %d: %w", id, err)
	}
	return nil
}

// ListComments запрашивает комментарии записи журнала.
// GET /api/Comments/{journalId}.
func (c *Client) ListComments(ctx context.Context, token string, journalID int) ([]model.Comment, error) {
	var comments []model.Comment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/Comments/%d", journalID), token, nil, &comments); err != nil {
		return nil, fmt.Errorf("комментарии записи %d: %w", journalID, err)
	}
	return comments, nil
}

// AddComment добавляет комментарий к записи журнала.
// POST /api/Comments.
func (c *Client) AddComment(ctx context.Context, token string, req model.CommentRequest) (*model.Comment, error) {
	var comment model.Comment
	if err := c.do(ctx, http.MethodPost, "/api/Comments", token, req, &comment); err != nil {
		return nil, fmt.Errorf("добавление комментария к записи %d: %w", req.JournalID, err)
	}
	return &comment, nil
}

// Regions запрашивает справочник РЕМ.
// GET /api/Lookups/regions.
func (c *Client) Regions(ctx context.Context, token string) ([]model.Region, error) {
	var regions []model.Region
	if err := c.do(ctx, http.MethodGet, "/api/Lookups/regions", token, nil, &regions); err != nil {
		return nil, fmt.Errorf("справочник РЕМ: %w", err)
	}
	return regions, nil
}

// objectTypeDTO — форма элемента справочника типов объектов.
// Backend называет отображаемое поле type, а не name.
type objectTypeDTO struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// ObjectTypes запрашивает справочник типов объектов.
// GET /api/Lookups/object-types.
func (c *Client) ObjectTypes(ctx context.Context, token string) ([]model.LookupItem, error) {
	var dtos []objectTypeDTO
	if err := c.do(ctx, http.MethodGet, "/api/Lookups/object-types", token, nil, &dtos); err != nil {
		return nil, fmt.Errorf("справочник типов объектов: %w", err)
	}

	items := make([]model.LookupItem, 0, len(dtos))
	for _, d := range dtos {
		items = append(items, model.LookupItem{ID: d.ID, Name: d.Type})
	}
	return items, nil
}

// Places запрашивает справочник мест возникновения дефекта.
// GET /api/Lookups/places.
func (c *Client) Places(ctx context.Context, token string) ([]model.LookupItem, error) {
	var places []model.LookupItem
	if err := c.do(ctx, http.MethodGet, "/api/Lookups/places", token, nil, &places); err != nil {
		return nil, fmt.Errorf("справочник мест: %w", err)
	}
	return places, nil
}

// Substations запрашивает справочник подстанций, сгруппированных по РЕМ.
// GET /api/Lookups/substations.
func (c *Client) Substations(ctx context.Context, token string) ([]model.Substation, error) {
	var subs []model.Substation
	if err := c.do(ctx, http.MethodGet, "/api/Lookups/substations", token, nil, &subs); err != nil {
		return nil, fmt.Errorf("справочник подстанций: %w", err)
	}
	return subs, nil
}

// Roles запрашивает справочник ролей пользователей.
// GET /api/Lookups/roles.
func (c *Client) Roles(ctx context.Context, token string) ([]model.UserRole, error) {
	var roles []model.UserRole
	if err := c.do(ctx, http.MethodGet, "/api/Lookups/roles", token, nil, &roles); err != nil {
		return nil, fmt.Errorf("справочник ролей: %w", err)
	}
	return roles, nil
}

// ListUsers запрашивает пользователей, опционально фильтруя по РЕМ.
// GET /api/Users?departmentId=.
func (c *Client) ListUsers(ctx context.Context, token, departmentID string) ([]model.User, error) {
	path := "/api/Users"
	if departmentID != "" {
		path += "?departmentId=" + url.QueryEscape(departmentID)
	}

	var users []model.User
	if err := c.do(ctx, http.MethodGet, path, token, nil, &users); err != nil {
		return nil, fmt.Errorf("список пользователей: %w", err)
	}
	return users, nil
}

// GetUser запрашивает пользователя по идентификатору.
// GET /api/Users/{id}.
func (c *Client) GetUser(ctx context.Context, token string, id int) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/Users/%d", id), token, nil, &u); err != nil {
		return nil, fmt.Errorf("пользователь %d: %w", id, err)
	}
	return &u, nil
}

// CreateUser создаёт пользователя.
// POST /api/Users.
func (c *Client) CreateUser(ctx context.Context, token string, u model.User) (*model.User, error) {
	var created model.User
	if err := c.do(ctx, http.MethodPost, "/api/Users", token, u, &created); err != nil {
		return nil, fmt.Errorf("создание пользователя %s: %w", u.Login, err)
	}
	return &created, nil
}

// UpdateUser обновляет пользователя.
// PUT /api/Users/{id}.
func (c *Client) UpdateUser(ctx context.Context, token string, id int, u model.User) (*model.User, error) {
	var updated model.User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/Users/%d", id), token, u, &updated); err != nil {
		return nil, fmt.Errorf("обновление пользователя %d: %w", id, err)
	}
	return &updated, nil
}

// DeleteUser удаляет пользователя.
// DELETE /api/Users/{id}.
func (c *Client) DeleteUser(ctx context.Context, token string, id int) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/Users/%d", id), token, nil, nil); err != nil {
		return fmt.Errorf("удаление пользователя %d: %w", id, err)
	}
	return nil
}

// do выполняет HTTP-запрос к backend'у: сериализует тело,
// добавляет авторизацию, декодирует ответ в out (если out не nil).
// Статусы вне 2xx возвращаются как *RemoteError.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("сериализация тела запроса: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("запрос %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newRemoteError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("декодирование ответа %s %s: %w", method, path, err)
	}
	return nil
}
