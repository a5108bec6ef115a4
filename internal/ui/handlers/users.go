// users.go — администрирование пользователей.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/model"
	"github.com/tanyaprikhodko/journal-of-defects/internal/service"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/pages"
)

// UserHandler — обработчики панели администрирования пользователей.
type UserHandler struct {
	users   *service.UserService
	lookups *service.LookupService
	logger  *slog.Logger
}

// NewUserHandler создаёт новый UserHandler.
func NewUserHandler(users *service.UserService, lookups *service.LookupService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:   users,
		lookups: lookups,
		logger:  logger.With(slog.String("component", "ui.users")),
	}
}

// HandleList обрабатывает GET /users — список пользователей.
// Параметр regionId ограничивает список одним РЕМ.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	regionID := r.URL.Query().Get("regionId")

	view := pages.UsersView{Principal: data.Principal, RegionID: regionID}

	var err error
	if view.Users, err = h.users.List(r.Context(), data.AccessToken, regionID); err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		h.logger.Error("Ошибка загрузки пользователей", slog.String("error", err.Error()))
		view.Error = localizeError(r.Context(), err)
	}
	if view.Regions, err = h.lookups.Regions(r.Context(), data.AccessToken); err != nil {
		h.logger.Error("Ошибка загрузки списка РЕМ", slog.String("error", err.Error()))
	}
	render(w, r, h.logger, pages.Users(view))
}

// HandleNew обрабатывает GET /users/new — форма создания пользователя.
func (h *UserHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, nil, "")
}

// HandleCreate обрабатывает POST /users.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	u, err := userFromForm(r)
	if err != nil {
		h.renderForm(w, r, nil, localizeError(r.Context(), err))
		return
	}

	if _, err := h.users.Create(r.Context(), data.AccessToken, *u); err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		h.renderForm(w, r, u, userErrorText(r.Context(), err))
		return
	}
	h.lookups.Invalidate()
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// HandleEdit обрабатывает GET /users/{id} — форма редактирования.
func (h *UserHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	id, err := idParam(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	u, err := h.users.Get(r.Context(), data.AccessToken, id)
	if err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		if errors.Is(err, service.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("Ошибка загрузки пользователя",
			slog.Int("user_id", id),
			slog.String("error", err.Error()),
		)
		http.Redirect(w, r, "/users", http.StatusSeeOther)
		return
	}
	h.renderForm(w, r, u, "")
}

// HandleUpdate обрабатывает POST /users/{id}.
// Пустой пароль означает «оставить прежний».
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	id, err := idParam(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	u, err := userFromForm(r)
	if err != nil {
		h.renderForm(w, r, nil, localizeError(r.Context(), err))
		return
	}
	u.ID = id

	if _, err := h.users.Update(r.Context(), data.AccessToken, id, *u); err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		h.renderForm(w, r, u, userErrorText(r.Context(), err))
		return
	}
	h.lookups.Invalidate()
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// HandleDelete обрабатывает POST /users/{id}/delete.
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	id, err := idParam(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.users.Delete(r.Context(), data.AccessToken, id); err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		h.logger.Error("Ошибка удаления пользователя",
			slog.Int("user_id", id),
			slog.String("error", err.Error()),
		)
	}
	h.lookups.Invalidate()
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// renderForm показывает форму пользователя со справочниками.
func (h *UserHandler) renderForm(w http.ResponseWriter, r *http.Request, u *model.User, errText string) {
	data := sessionData(r)
	view := pages.UserFormView{
		Principal: data.Principal,
		User:      u,
		Error:     errText,
	}
	if err := h.fillFormLookups(r.Context(), data.AccessToken, &view); err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		if view.Error == "" {
			view.Error = localizeError(r.Context(), err)
		}
	}
	render(w, r, h.logger, pages.UserForm(view))
}

func (h *UserHandler) fillFormLookups(ctx context.Context, token string, view *pages.UserFormView) error {
	var err error
	if view.Regions, err = h.lookups.Regions(ctx, token); err != nil {
		return err
	}
	roles, err := h.lookups.Roles(ctx, token)
	if err != nil {
		return err
	}
	view.Roles = make([]model.LookupItem, 0, len(roles))
	for _, role := range roles {
		view.Roles = append(view.Roles, model.LookupItem{ID: role.ID, Name: role.Name})
	}
	if view.Deputies, err = h.users.List(ctx, token, ""); err != nil {
		return err
	}
	return nil
}

// userFromForm собирает пользователя из полей формы.
func userFromForm(r *http.Request) (*model.User, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	u := &model.User{
		Name:        r.PostFormValue("name"),
		Login:       r.PostFormValue("login"),
		Email:       r.PostFormValue("email"),
		SecondEmail: r.PostFormValue("secondEmail"),
		Password:    r.PostFormValue("password"),
		Rank:        r.PostFormValue("rank"),
		RegionID:    r.PostFormValue("regionId"),
		IsActive:    r.PostFormValue("isActive") == "true",
		IsLocked:    r.PostFormValue("isLocked") == "true",
		UserMessage: r.PostFormValue("userMessage"),
	}
	if deputy, ok, err := parseOptionalInt(r.PostFormValue("deputyId")); err != nil {
		return nil, err
	} else if ok {
		u.DeputyID = &deputy
	}
	for _, raw := range r.PostForm["roleIds"] {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		u.RoleIDs = append(u.RoleIDs, id)
	}
	return u, nil
}

// userErrorText переводит ошибку сервиса пользователей в текст для формы.
// Ошибки валидации показываются как есть, остальные локализуются.
func userErrorText(ctx context.Context, err error) string {
	if service.IsValidation(err) {
		return err.Error()
	}
	return localizeError(ctx, err)
}
