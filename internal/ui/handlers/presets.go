// presets.go — именованные наборы фильтров списка.
// Маршруты регистрируются только при настроенной локальной БД.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tanyaprikhodko/journal-of-defects/internal/service"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/i18n"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/pages"
)

// PresetHandler — обработчики наборов фильтров.
type PresetHandler struct {
	presets  *service.PresetService
	journals *service.JournalService
	pageSize int
	logger   *slog.Logger
}

// NewPresetHandler создаёт новый PresetHandler.
func NewPresetHandler(
	presets *service.PresetService,
	journals *service.JournalService,
	pageSize int,
	logger *slog.Logger,
) *PresetHandler {
	return &PresetHandler{
		presets:  presets,
		journals: journals,
		pageSize: pageSize,
		logger:   logger.With(slog.String("component", "ui.presets")),
	}
}

// HandleList обрабатывает GET /presets — HTMX-фрагмент панели наборов.
func (h *PresetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.renderPanel(w, r, "")
}

// HandleSave обрабатывает POST /presets — сохранение текущего
// состояния списка под введённым именем.
func (h *PresetHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	v := h.journals.View(data.Principal.ID)

	_, err := h.presets.Save(r.Context(), data.Principal.ID, r.PostFormValue("name"), v.State())
	if err != nil {
		if errors.Is(err, service.ErrPresetName) {
			h.renderPanel(w, r, i18n.T(r.Context(), "presets.name_taken"))
			return
		}
		h.logger.Error("Ошибка сохранения пресета", slog.String("error", err.Error()))
		h.renderPanel(w, r, localizeError(r.Context(), err))
		return
	}
	h.renderPanel(w, r, "")
}

// HandleApply обрабатывает POST /presets/{id}/apply — применение набора.
// Состояние списка заменяется сохранённым, таблица перерисовывается.
func (h *PresetHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	st, err := h.presets.Apply(r.Context(), id, data.Principal.ID, h.pageSize)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("Ошибка применения пресета",
			slog.String("preset_id", id.String()),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	v := h.journals.View(data.Principal.ID)
	v.SetState(st)

	view := pages.JournalsView{Principal: data.Principal}
	page, err := h.journals.Refresh(r.Context(), data.AccessToken, v)
	if err != nil {
		if redirectSessionExpired(w, r, err) {
			return
		}
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

// HandleDelete обрабатывает POST /presets/{id}/delete.
func (h *PresetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	data := sessionData(r)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.presets.Delete(r.Context(), id, data.Principal.ID); err != nil && !errors.Is(err, service.ErrNotFound) {
		h.logger.Error("Ошибка удаления пресета",
			slog.String("preset_id", id.String()),
			slog.String("error", err.Error()),
		)
		h.renderPanel(w, r, localizeError(r.Context(), err))
		return
	}
	h.renderPanel(w, r, "")
}

// renderPanel перечитывает пресеты пользователя и отдаёт фрагмент панели.
func (h *PresetHandler) renderPanel(w http.ResponseWriter, r *http.Request, errText string) {
	data := sessionData(r)
	view := pages.PresetsView{Error: errText}

	presets, err := h.presets.List(r.Context(), data.Principal.ID)
	if err != nil {
		h.logger.Error("Ошибка загрузки пресетов", slog.String("error", err.Error()))
		if view.Error == "" {
			view.Error = localizeError(r.Context(), err)
		}
	}
	view.Presets = presets
	render(w, r, h.logger, pages.Presets(view))
}
