package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/lifecycle"
	"github.com/tanyaprikhodko/journal-of-defects/internal/jmclient"
	"github.com/tanyaprikhodko/journal-of-defects/internal/query"
	"github.com/tanyaprikhodko/journal-of-defects/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJournalService(t *testing.T, handler http.HandlerFunc) *JournalService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := jmclient.New(srv.URL, 5*time.Second, testLogger())
	return NewJournalService(client, 10, testLogger())
}

// TestRefresh_StaleResponseDiscarded проверяет защиту от устаревших
// ответов: если за время полёта запроса стартовал и завершился более
// новый, пришедший позже старый ответ отбрасывается.
func TestRefresh_StaleResponseDiscarded(t *testing.T) {
	firstArrived := make(chan struct{})
	releaseFirst := make(chan struct{})

	var once sync.Once
	s := testJournalService(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if page == "1" {
			// Первый запрос задерживаем до освобождения
			once.Do(func() { close(firstArrived) })
			<-releaseFirst
		}
		json.NewEncoder(w).Encode(map[string]any{
			"journals":    []any{},
			"totalPages":  5,
			"currentPage": mustAtoi(page),
		})
	})

	v := s.View(1)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Запрос страницы 1, ответ придёт последним
		s.Refresh(ctx, "t", v)
	}()

	<-firstArrived

	// Более новый запрос: страница 2, отвечает сразу
	v.SetPage(2)
	if _, err := s.Refresh(ctx, "t", v); err != nil {
		t.Fatalf("Refresh(страница 2): %v", err)
	}

	close(releaseFirst)
	wg.Wait()

	page := v.Page()
	if page == nil {
		t.Fatal("Page: ожидалась применённая страница")
	}
	if page.CurrentPage != 2 {
		t.Errorf("применён устаревший ответ: CurrentPage = %d, ожидалось 2", page.CurrentPage)
	}
}

// TestRefresh_StaleResponseDiscardedWhileNewerInFlight проверяет, что
// старый ответ отбрасывается уже по факту старта более нового запроса:
// ответ нового ещё в полёте, а старый применять всё равно нельзя.
func TestRefresh_StaleResponseDiscardedWhileNewerInFlight(t *testing.T) {
	firstArrived := make(chan struct{})
	releaseFirst := make(chan struct{})
	secondArrived := make(chan struct{})
	releaseSecond := make(chan struct{})

	var firstOnce, secondOnce sync.Once
	s := testJournalService(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "1":
			firstOnce.Do(func() { close(firstArrived) })
			<-releaseFirst
		case "2":
			secondOnce.Do(func() { close(secondArrived) })
			<-releaseSecond
		}
		json.NewEncoder(w).Encode(map[string]any{
			"journals":    []any{},
			"totalPages":  5,
			"currentPage": mustAtoi(page),
		})
	})

	v := s.View(1)
	ctx := context.Background()

	var first sync.WaitGroup
	first.Add(1)
	go func() {
		defer first.Done()
		s.Refresh(ctx, "t", v)
	}()
	<-firstArrived

	v.SetPage(2)
	var second sync.WaitGroup
	second.Add(1)
	go func() {
		defer second.Done()
		s.Refresh(ctx, "t", v)
	}()
	<-secondArrived

	// Старый ответ приходит, пока новый запрос ещё в полёте
	close(releaseFirst)
	first.Wait()

	if page := v.Page(); page != nil {
		t.Errorf("применён устаревший ответ при новом запросе в полёте: CurrentPage = %d", page.CurrentPage)
	}

	close(releaseSecond)
	second.Wait()

	page := v.Page()
	if page == nil {
		t.Fatal("Page: ожидалась применённая страница нового запроса")
	}
	if page.CurrentPage != 2 {
		t.Errorf("CurrentPage = %d, ожидалось 2", page.CurrentPage)
	}
}

// TestRefresh_ClampsPageToTotal проверяет приведение текущей страницы,
// когда backend сузил число страниц.
func TestRefresh_ClampsPageToTotal(t *testing.T) {
	s := testJournalService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"journals":    []any{},
			"totalPages":  3,
			"currentPage": 3,
		})
	})

	v := s.View(1)
	v.SetPage(9)

	if _, err := s.Refresh(context.Background(), "t", v); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := v.State().Page; got != 3 {
		t.Errorf("Page после сужения списка: ожидалось 3, получено %d", got)
	}
}

// TestTransition проверяет проверку жизненного цикла перед обновлением
// и проставление актора шага.
func TestTransition(t *testing.T) {
	var gotPatch map[string]any
	s := testJournalService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]any{"id": 5, "condition": "Усунутий"})
		case http.MethodPut:
			json.NewDecoder(r.Body).Decode(&gotPatch)
			json.NewEncoder(w).Encode(map[string]any{"id": 5, "condition": "Прийнятий в експлуатацію"})
		}
	})

	principal := &session.Principal{ID: 11, Roles: []string{"Диспетчер"}}
	j, err := s.Transition(context.Background(), "t", principal, 5, lifecycle.ConditionInOperation)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if j.Condition != "Прийнятий в експлуатацію" {
		t.Errorf("Condition: получено %q", j.Condition)
	}
	if gotPatch["condition"] != "Прийнятий в експлуатацію" {
		t.Errorf("patch.condition: получено %v", gotPatch["condition"])
	}
	if gotPatch["confirmedById"] != float64(11) {
		t.Errorf("patch.confirmedById: получено %v", gotPatch["confirmedById"])
	}
	if gotPatch["confirmationDate"] == nil {
		t.Error("patch.confirmationDate: дата шага должна проставляться")
	}
}

// TestTransition_RoleNotAuthorized проверяет отказ без обращения
// к backend'у на обновление.
func TestTransition_RoleNotAuthorized(t *testing.T) {
	var putCalled bool
	s := testJournalService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			putCalled = true
		}
		json.NewEncoder(w).Encode(map[string]any{"id": 5, "condition": "Усунутий"})
	})

	principal := &session.Principal{ID: 11, Roles: []string{"Виконавець"}}
	_, err := s.Transition(context.Background(), "t", principal, 5, lifecycle.ConditionInOperation)

	var te *lifecycle.TransitionError
	if !errors.As(err, &te) || te.Code != "ROLE_NOT_AUTHORIZED" {
		t.Fatalf("ожидался ROLE_NOT_AUTHORIZED, получено %v", err)
	}
	if putCalled {
		t.Error("запрещённый переход не должен доходить до backend'а")
	}
}

// TestUpdate_NoChanges проверяет отказ на пустом сеансе редактирования.
func TestUpdate_NoChanges(t *testing.T) {
	s := testJournalService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend не должен вызываться")
	})

	_, err := s.Update(context.Background(), "t", lifecycle.NewEditSession(1))
	if !errors.Is(err, ErrNoChanges) {
		t.Errorf("ожидалось ErrNoChanges, получено %v", err)
	}
}

// TestGet_NotFound проверяет перевод 404 в сигнальную ошибку.
func TestGet_NotFound(t *testing.T) {
	s := testJournalService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := s.Get(context.Background(), "t", 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидалось ErrNotFound, получено %v", err)
	}
}

// TestView_PerUser проверяет изоляцию состояния списка по пользователям.
func TestView_PerUser(t *testing.T) {
	s := testJournalService(t, func(w http.ResponseWriter, r *http.Request) {})

	v1 := s.View(1)
	v1.SetPage(4)
	v1.ApplyFilters(query.Filters{Place: "КРУ-10"})

	v2 := s.View(2)
	if st := v2.State(); st.Page != 1 || !st.Filters.IsZero() {
		t.Errorf("состояние второго пользователя должно быть начальным, получено %+v", st)
	}

	if s.View(1) != v1 {
		t.Error("повторный View того же пользователя должен вернуть то же состояние")
	}

	s.DropView(1)
	if st := s.View(1).State(); st.Page != 1 {
		t.Errorf("после DropView состояние должно быть начальным, получено %+v", st)
	}
}

// TestTodayDate проверяет, что дата шага жизненного цикла берётся
// по локальному календарю, а не по границе суток UTC.
func TestTodayDate(t *testing.T) {
	y1, m1, d1 := time.Now().Date()
	got := todayDate()
	y2, m2, d2 := time.Now().Date()

	gy, gm, gd := got.Time.Date()
	sameAsBefore := gy == y1 && gm == m1 && gd == d1
	sameAsAfter := gy == y2 && gm == m2 && gd == d2
	if !sameAsBefore && !sameAsAfter {
		t.Errorf("todayDate: получено %04d-%02d-%02d, локальная дата %04d-%02d-%02d", gy, gm, gd, y1, m1, d1)
	}

	if h, min, sec := got.Time.Clock(); h != 0 || min != 0 || sec != 0 {
		t.Errorf("todayDate: время должно быть полночью, получено %02d:%02d:%02d", h, min, sec)
	}
}

// mustAtoi — разбор числа в тестовых обработчиках.
func mustAtoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
