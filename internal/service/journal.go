package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oapi-codegen/runtime/types"

	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/lifecycle"
	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/model"
	"github.com/tanyaprikhodko/journal-of-defects/internal/jmclient"
	"github.com/tanyaprikhodko/journal-of-defects/internal/query"
	"github.com/tanyaprikhodko/journal-of-defects/internal/session"
)

// JournalService — операции над записями журнала дефектов:
// список с состоянием запроса, карточка записи, создание,
// частичное обновление, переходы жизненного цикла.
type JournalService struct {
	client   *jmclient.Client
	pageSize int
	logger   *slog.Logger

	mu    sync.Mutex
	views map[int]*ListView // ключ — идентификатор пользователя
}

// NewJournalService создаёт сервис записей журнала.
func NewJournalService(client *jmclient.Client, pageSize int, logger *slog.Logger) *JournalService {
	return &JournalService{
		client:   client,
		pageSize: pageSize,
		logger:   logger.With(slog.String("component", "journal_service")),
		views:    make(map[int]*ListView),
	}
}

// ListView — состояние списка одного пользователя: параметры запроса
// и последняя полученная страница.
//
// Частичные обновления списка делают гонку запросов реальной:
// пользователь мог сменить фильтр, пока летел предыдущий ответ.
// Каждый запрос получает порядковый номер, применяется только ответ
// запроса с наибольшим номером, устаревшие ответы отбрасываются.
type ListView struct {
	mu         sync.Mutex
	state      query.State
	page       *jmclient.JournalPage
	fetchSeq uint64 // номер последнего запущенного запроса
}

// View возвращает состояние списка пользователя, создавая его при
// первом обращении.
func (s *JournalService) View(userID int) *ListView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[userID]
	if !ok {
		v = &ListView{state: query.New(s.pageSize)}
		s.views[userID] = v
	}
	return v
}

// DropView удаляет состояние списка пользователя (выход из системы).
func (s *JournalService) DropView(userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, userID)
}

// State возвращает копию текущего состояния запроса.
func (v *ListView) State() query.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Page возвращает последнюю применённую страницу списка (может быть nil).
func (v *ListView) Page() *jmclient.JournalPage {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// SetState заменяет состояние запроса целиком
// (восстановление из адресной строки).
func (v *ListView) SetState(st query.State) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = st
}

// SetPage переходит на страницу p, сортировка и фильтры сохраняются.
func (v *ListView) SetPage(p int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.SetPage(p)
}

// SetSort меняет сортировку, текущая страница сохраняется.
func (v *ListView) SetSort(column string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.SetSort(column)
}

// ApplyFilters заменяет фильтры и возвращает на первую страницу.
func (v *ListView) ApplyFilters(f query.Filters) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.ApplyFilters(f)
}

// ResetFilters сбрасывает фильтры и возвращает на первую страницу.
func (v *ListView) ResetFilters() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.ResetFilters()
}

// Refresh запрашивает у backend'а страницу списка для текущего состояния
// view и применяет ответ, если за время полёта не стартовал более новый
// запрос. При отброшенном ответе возвращает последнюю применённую
// страницу, какой бы она ни была (nil, если применять ещё нечего).
func (s *JournalService) Refresh(ctx context.Context, token string, v *ListView) (*jmclient.JournalPage, error) {
	v.mu.Lock()
	v.fetchSeq++
	seq := v.fetchSeq
	params := v.state.BackendParams()
	v.mu.Unlock()

	page, err := s.client.ListJournals(ctx, token, params)
	if err != nil {
		return nil, mapRemoteError(fmt.Errorf("обновление списка: %w", err))
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if seq < v.fetchSeq {
		// Устаревший ответ: стартовал более новый запрос.
		// Отбрасывается даже если ответ нового запроса ещё в полёте.
		s.logger.Debug("Ответ списка отброшен как устаревший",
			slog.Uint64("seq", seq),
			slog.Uint64("fetch_seq", v.fetchSeq),
		)
		return v.page, nil
	}

	v.page = page

	// Backend мог сузить число страниц: текущая страница за пределом
	if page.TotalPages > 0 && v.state.Page > page.TotalPages {
		v.state.Page = page.TotalPages
	}
	return page, nil
}

// Get запрашивает запись журнала по идентификатору.
func (s *JournalService) Get(ctx context.Context, token string, id int) (*model.Journal, error) {
	j, err := s.client.GetJournal(ctx, token, id)
	if err != nil {
		return nil, mapRemoteError(err)
	}
	return j, nil
}

// Create создаёт запись журнала. Состояние новой записи всегда
// начальное, автор сообщения и дата регистрации проставляются
// от имени текущего пользователя.
func (s *JournalService) Create(ctx context.Context, token string, principal *session.Principal, payload model.JournalPatch) (*model.Journal, error) {
	condition := string(lifecycle.ConditionFiled)
	payload.Condition = &condition
	if payload.MessageAuthorID == nil {
		payload.MessageAuthorID = &principal.ID
	}
	if payload.RegistrationDate == nil {
		today := todayDate()
		payload.RegistrationDate = &today
	}

	j, err := s.client.CreateJournal(ctx, token, payload)
	if err != nil {
		return nil, mapRemoteError(err)
	}

	s.logger.Info("Запись журнала создана",
		slog.Int("journal_id", j.ID),
		slog.Int("author_id", principal.ID),
	)
	return j, nil
}

// Update сохраняет сеанс редактирования: на backend уходят
// ровно тронутые поля. Сеанс без изменений отклоняется.
func (s *JournalService) Update(ctx context.Context, token string, es *lifecycle.EditSession) (*model.Journal, error) {
	if !es.HasChanges() {
		return nil, ErrNoChanges
	}

	j, err := s.client.UpdateJournal(ctx, token, es.JournalID(), es.Patch())
	if err != nil {
		return nil, mapRemoteError(err)
	}

	s.logger.Info("Запись журнала обновлена",
		slog.Int("journal_id", es.JournalID()),
		slog.Any("fields", es.TouchedFields()),
	)
	return j, nil
}

// Delete удаляет запись журнала.
func (s *JournalService) Delete(ctx context.Context, token string, id int) error {
	if err := s.client.DeleteJournal(ctx, token, id); err != nil {
		return mapRemoteError(err)
	}
	s.logger.Info("Запись журнала удалена", slog.Int("journal_id", id))
	return nil
}

// LegalNextStatuses возвращает состояния, доступные пользователю
// для записи j. Для записи с неизвестным состоянием — пустой набор.
func (s *JournalService) LegalNextStatuses(j *model.Journal, principal *session.Principal) []lifecycle.Condition {
	current, err := lifecycle.ParseCondition(j.Condition)
	if err != nil {
		return nil
	}
	return lifecycle.LegalNextStatuses(current, lifecycle.ParseRoles(principal.Roles))
}

// Transition переводит запись id в состояние target от имени principal.
// Перечитывает запись перед проверкой: состояние могло смениться
// с момента отрисовки страницы. Актор и дата шага проставляются
// автоматически.
func (s *JournalService) Transition(ctx context.Context, token string, principal *session.Principal, id int, target lifecycle.Condition) (*model.Journal, error) {
	j, err := s.Get(ctx, token, id)
	if err != nil {
		return nil, err
	}

	current, err := lifecycle.ParseCondition(j.Condition)
	if err != nil {
		return nil, fmt.Errorf("запись %d: %w", id, err)
	}

	roles := lifecycle.ParseRoles(principal.Roles)
	if err := lifecycle.Transition(current, target, roles); err != nil {
		return nil, err
	}

	condition := string(target)
	patch := model.JournalPatch{Condition: &condition}
	stampTransition(&patch, target, principal.ID)

	updated, err := s.client.UpdateJournal(ctx, token, id, patch)
	if err != nil {
		return nil, mapRemoteError(err)
	}

	s.logger.Info("Переход записи журнала",
		slog.Int("journal_id", id),
		slog.String("from", string(current)),
		slog.String("to", string(target)),
		slog.Int("user_id", principal.ID),
	)
	return updated, nil
}

// stampTransition проставляет актора и дату шага жизненного цикла.
// Протермінований фиксирует только смену состояния.
func stampTransition(patch *model.JournalPatch, target lifecycle.Condition, userID int) {
	today := todayDate()
	switch target {
	case lifecycle.ConditionAccepted:
		patch.AcceptedByID = &userID
		patch.AcceptionDate = &today
	case lifecycle.ConditionResolved:
		patch.CompletedByID = &userID
		patch.CompletionDate = &today
	case lifecycle.ConditionInOperation:
		patch.ConfirmedByID = &userID
		patch.ConfirmationDate = &today
	case lifecycle.ConditionReviewed:
		patch.TechnicalManagerID = &userID
	}
}

// todayDate возвращает сегодняшнюю календарную дату в локальной зоне.
// Truncate по суткам не годится: он режет по UTC и к востоку от UTC
// возвращает вчерашнюю дату до границы суток UTC.
func todayDate() types.Date {
	y, m, d := time.Now().Date()
	return types.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}
