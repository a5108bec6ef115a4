// journals.go — список записей журнала, карточка записи и жизненный цикл.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime/types"

	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/lifecycle"
	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/model"
	"github.com/tanyaprikhodko/journal-of-defects/internal/query"
	"github.com/tanyaprikhodko/journal-of-defects/internal/service"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/pages"
)

// JournalHandler — обработчики списка и карточки записи журнала.
type JournalHandler struct {
	journals       *service.JournalService
	lookups        *service.LookupService
	users          *service.UserService
	pageSize       int
	presetsEnabled bool
	logger         *slog.Logger
}

// NewJournalHandler создаёт новый JournalHandler.
func NewJournalHandler(
	journals *service.JournalService,
	lookups *service.LookupService,
	users *service.UserService,
	pageSize int,
	logger *slog.Logger,
) *JournalHandler {
	return &JournalHandler{
		journals: journals,
		lookups:  lookups,
		users:    users,
		pageSize: pageSize,
		logger:   logger.With(slog.String("component", "ui.journals")),
	}
}

// EnablePresets включает панель пресетов фильтров на странице списка.
func (h *JournalHandler) EnablePresets() {
	h.presetsEnabled = true
}

// HandleList обрабатывает GET /journals — полная страница списка.
// Состояние списка восстанавливается из параметров URL, поэтому
// ссылку на текущую выборку можно сохранить или переслать.
func (h *JournalHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	v := h.journals.View(data.Principal.ID)

	if len(r.URL.Query()) > 0 {
		v.SetState(query.DecodeURL(r.URL.Query(), h.pageSize))
	}

	view := pages.JournalsView{Principal: data.Principal, ShowPresets: h.presetsEnabled}
	page, err := h.journals.Refresh(r.Context(), data.AccessToken, v)
	if err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		h.logger.Error("Ошибка загрузки списка записей", slog.String("error", err.Error()))
		view.Error = localizeError(r.Context(), err)
	}
	view.State = v.State()
	view.Page = page
	render(w, r, h.logger, pages.Journals(view))
}

// HandlePartial обрабатывает GET /journals/partial — HTMX-фрагмент таблицы.
// Параметр page переключает страницу, sort — колонку сортировки.
func (h *JournalHandler) HandlePartial(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	v := h.journals.View(data.Principal.ID)

	if raw := r.URL.Query().Get("page"); raw != "" {
		if p, _, err := parsePage(raw); err == nil {
			v.SetPage(p)
		}
	}
	if col := r.URL.Query().Get("sort"); col != "" {
		v.SetSort(col)
	}
	h.renderTable(w, r, v)
}

// HandleFilters обрабатывает POST /journals/filters — применение фильтров.
// Применение всегда возвращает на первую страницу.
func (h *JournalHandler) HandleFilters(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	v := h.journals.View(data.Principal.ID)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Некорректная форма", http.StatusBadRequest)
		return
	}
	var f query.Filters
	for key, values := range r.PostForm {
		if len(values) > 0 {
			f.Set(key, values[0])
		}
	}
	v.ApplyFilters(f)
	h.renderTable(w, r, v)
}

// HandleFiltersReset обрабатывает POST /journals/filters/reset.
func (h *JournalHandler) HandleFiltersReset(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	v := h.journals.View(data.Principal.ID)
	v.ResetFilters()
	h.renderTable(w, r, v)
}

// renderTable перечитывает список и отдаёт фрагмент таблицы.
// Заголовок HX-Push-Url синхронизирует адресную строку с состоянием списка.
func (h *JournalHandler) renderTable(w http.ResponseWriter, r *http.Request, v *service.ListView) {
	data := sessionData(r)

	view := pages.JournalsView{Principal: data.Principal}
	page, err := h.journals.Refresh(r.Context(), data.AccessToken, v)
	if err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		h.logger.Error("Ошибка загрузки списка записей", slog.String("error", err.Error()))
		view.Error = localizeError(r.Context(), err)
	}
	view.State = v.State()
	view.Page = page

	pushURL := "/journals"
	if enc := view.State.EncodeURL(); len(enc) > 0 {
		pushURL += "?" + enc.Encode()
	}
	w.Header().Set("HX-Push-Url", pushURL)
	render(w, r, h.logger, pages.JournalTable(view))
}

// HandleNew обрабатывает GET /journals/new — форма создания записи.
func (h *JournalHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	view := pages.JournalFormView{Principal: data.Principal}
	if err := h.fillFormLookups(r.Context(), data.AccessToken, &view); err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		view.Error = localizeError(r.Context(), err)
	}
	render(w, r, h.logger, pages.JournalForm(view))
}

// HandleCreate обрабатывает POST /journals — создание записи.
// Статус и автор сообщения назначаются сервисом, форма их не передаёт.
func (h *JournalHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)

	es := lifecycle.NewEditSession(0)
	if err := h.applyForm(r, es); err != nil {
		h.renderFormError(w, r, nil, err)
		return
	}

	j, err := h.journals.Create(r.Context(), data.AccessToken, data.Principal, es.Patch())
	if err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		h.logger.Error("Ошибка создания записи", slog.String("error", err.Error()))
		h.renderFormError(w, r, nil, err)
		return
	}
	http.Redirect(w, r, journalPath(j.ID), http.StatusSeeOther)
}

// HandleDetail обрабатывает GET /journals/{id} — карточка записи.
func (h *JournalHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	id, err := idParam(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	j, err := h.journals.Get(r.Context(), data.AccessToken, id)
	if err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		if errors.Is(err, service.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("Ошибка загрузки записи",
			slog.Int("journal_id", id),
			slog.String("error", err.Error()),
		)
		h.renderFormError(w, r, nil, err)
		return
	}
	h.renderDetail(w, r, j, "")
}

// HandleUpdate обрабатывает POST /journals/{id} — сохранение изменений.
// Отправляются только поля, перечисленные в скрытом поле touched:
// нетронутые поля не попадают в запрос к backend'у.
func (h *JournalHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	id, err := idParam(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	es := lifecycle.NewEditSession(id)
	if err := h.applyForm(r, es); err != nil {
		h.reloadDetail(w, r, id, localizeError(r.Context(), err))
		return
	}

	if _, err := h.journals.Update(r.Context(), data.AccessToken, es); err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		if !errors.Is(err, service.ErrNoChanges) {
			h.logger.Error("Ошибка сохранения записи",
				slog.Int("journal_id", id),
				slog.String("error", err.Error()),
			)
		}
		h.reloadDetail(w, r, id, localizeError(r.Context(), err))
		return
	}
	http.Redirect(w, r, journalPath(id), http.StatusSeeOther)
}

// HandleDelete обрабатывает POST /journals/{id}/delete.
func (h *JournalHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	id, err := idParam(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.journals.Delete(r.Context(), data.AccessToken, id); err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		h.logger.Error("Ошибка удаления записи",
			slog.Int("journal_id", id),
			slog.String("error", err.Error()),
		)
		h.reloadDetail(w, r, id, localizeError(r.Context(), err))
		return
	}
	http.Redirect(w, r, "/journals", http.StatusSeeOther)
}

// HandleTransition обрабатывает POST /journals/{id}/transition.
// Целевой статус приходит в поле target; допустимость перехода
// и полномочия пользователя проверяет доменный слой.
func (h *JournalHandler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	id, err := idParam(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	target, err := lifecycle.ParseCondition(r.PostFormValue("target"))
	if err != nil {
		h.reloadDetail(w, r, id, localizeError(r.Context(), err))
		return
	}

	if _, err := h.journals.Transition(r.Context(), data.AccessToken, data.Principal, id, target); err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		var terr *lifecycle.TransitionError
		if errors.As(err, &terr) {
			h.reloadDetail(w, r, id, terr.Message)
			return
		}
		h.logger.Error("Ошибка перехода статуса",
			slog.Int("journal_id", id),
			slog.String("target", string(target)),
			slog.String("error", err.Error()),
		)
		h.reloadDetail(w, r, id, localizeError(r.Context(), err))
		return
	}
	http.Redirect(w, r, journalPath(id), http.StatusSeeOther)
}

// renderDetail показывает карточку записи с формой редактирования.
func (h *JournalHandler) renderDetail(w http.ResponseWriter, r *http.Request, j *model.Journal, errText string) {
	data := sessionData(r)
	view := pages.JournalFormView{
		Principal:    data.Principal,
		Journal:      j,
		NextStatuses: h.journals.LegalNextStatuses(j, data.Principal),
		Error:        errText,
	}
	if err := h.fillFormLookups(r.Context(), data.AccessToken, &view); err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		if view.Error == "" {
			view.Error = localizeError(r.Context(), err)
		}
	}
	render(w, r, h.logger, pages.JournalForm(view))
}

// reloadDetail перечитывает запись и показывает карточку с сообщением об ошибке.
func (h *JournalHandler) reloadDetail(w http.ResponseWriter, r *http.Request, id int, errText string) {
	data := sessionData(r)
	j, err := h.journals.Get(r.Context(), data.AccessToken, id)
	if err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
		http.NotFound(w, r)
		return
	}
	h.renderDetail(w, r, j, errText)
}

// renderFormError показывает форму создания с сообщением об ошибке.
func (h *JournalHandler) renderFormError(w http.ResponseWriter, r *http.Request, j *model.Journal, cause error) {
	data := sessionData(r)
	view := pages.JournalFormView{
		Principal: data.Principal,
		Journal:   j,
		Error:     localizeError(r.Context(), cause),
	}
	if err := h.fillFormLookups(r.Context(), data.AccessToken, &view); err != nil {
		h.logger.Error("Ошибка загрузки справочников", slog.String("error", err.Error()))
	}
	render(w, r, h.logger, pages.JournalForm(view))
}

// fillFormLookups загружает справочники и список пользователей для формы.
func (h *JournalHandler) fillFormLookups(ctx context.Context, token string, view *pages.JournalFormView) error {
	var err error
	if view.ObjectTypes, err = h.lookups.ObjectTypes(ctx, token); err != nil {
		return err
	}
	if view.Places, err = h.lookups.Places(ctx, token); err != nil {
		return err
	}
	if view.Substations, err = h.lookups.Substations(ctx, token); err != nil {
		return err
	}
	if view.Regions, err = h.lookups.Regions(ctx, token); err != nil {
		return err
	}
	if view.Users, err = h.users.List(ctx, token, ""); err != nil {
		return err
	}
	return nil
}

// applyForm переносит тронутые поля формы в сессию редактирования.
// Имена полей перечислены в скрытом поле touched через запятую.
func (h *JournalHandler) applyForm(r *http.Request, es *lifecycle.EditSession) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	for _, field := range splitTouched(r.PostFormValue("touched")) {
		if err := applyField(r, es, field); err != nil {
			return err
		}
	}
	return nil
}

// applyField устанавливает одно поле сессии редактирования из формы.
// Неизвестные имена полей игнорируются.
func applyField(r *http.Request, es *lifecycle.EditSession, field string) error {
	raw := r.PostFormValue(field)
	switch field {
	case "order":
		return setIntField(raw, es.SetOrder)
	case "objectTypeId":
		return setIntField(raw, es.SetObjectTypeID)
	case "objectNumber":
		return setIntField(raw, es.SetObjectNumber)
	case "placeId":
		return setIntField(raw, es.SetPlaceID)
	case "substationId":
		return setIntField(raw, es.SetSubstationID)
	case "connection":
		es.SetConnection(raw)
	case "description":
		es.SetDescription(raw)
	case "responsibleId":
		return setIntField(raw, es.SetResponsibleID)
	case "completionTerm":
		return setDateField(raw, es.SetCompletionTerm)
	case "redirectRegionId":
		if raw != "" {
			es.SetRedirectRegionID(raw)
		}
	}
	return nil
}

func setIntField(raw string, set func(int)) error {
	v, ok, err := parseOptionalInt(raw)
	if err != nil {
		return err
	}
	if ok {
		set(v)
	}
	return nil
}

func setDateField(raw string, set func(types.Date)) error {
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return err
	}
	set(types.Date{Time: t})
	return nil
}
