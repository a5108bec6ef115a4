package pages

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/oapi-codegen/runtime/types"

	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/lifecycle"
	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/model"
	"github.com/tanyaprikhodko/journal-of-defects/internal/jmclient"
	"github.com/tanyaprikhodko/journal-of-defects/internal/query"
	"github.com/tanyaprikhodko/journal-of-defects/internal/session"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/i18n"
)

// Отображаемый формат календарных дат.
const dateLayout = "02.01.2006"

// column — колонка таблицы списка: имя backend'а и ключ заголовка.
type column struct {
	key   string // имя колонки backend'а (сортировка и фильтр)
	label string // ключ i18n заголовка
	value func(j *model.Journal) string
}

// listColumns — колонки таблицы в порядке отображения.
var listColumns = []column{
	{"Condition", "column.condition", func(j *model.Journal) string { return j.Condition }},
	{"Order", "column.order", func(j *model.Journal) string { return fmtIntPtr(j.Order) }},
	{"DateOfRegistration", "column.dateOfRegistration", func(j *model.Journal) string { return fmtDate(j.RegistrationDate) }},
	{"ObjectType", "column.objectType", func(j *model.Journal) string { return j.ObjectType }},
	{"ObjectNumber", "column.objectNumber", func(j *model.Journal) string { return fmtIntPtr(j.ObjectNumber) }},
	{"Place", "column.place", func(j *model.Journal) string { return j.Place }},
	{"Substation", "column.substation", func(j *model.Journal) string { return j.Substation }},
	{"Connection", "column.connection", func(j *model.Journal) string { return j.Connection }},
	{"Description", "column.description", func(j *model.Journal) string { return j.Description }},
	{"MessageAuthor", "column.messageAuthor", func(j *model.Journal) string { return personName(j.MessageAuthor) }},
	{"Responsible", "column.responsible", func(j *model.Journal) string { return personName(j.Responsible) }},
	{"CompletionTerm", "column.completionTerm", func(j *model.Journal) string { return fmtDate(j.CompletionTerm) }},
	{"DateOfAcception", "column.dateOfAcception", func(j *model.Journal) string { return fmtDate(j.AcceptionDate) }},
	{"AcceptionAuthor", "column.acceptionAuthor", func(j *model.Journal) string { return personName(j.AcceptedBy) }},
	{"DateOfCompletion", "column.dateOfCompletion", func(j *model.Journal) string { return fmtDate(j.CompletionDate) }},
	{"CompletionAuthor", "column.completionAuthor", func(j *model.Journal) string { return personName(j.CompletedBy) }},
	{"DateOfConfirmation", "column.dateOfConfirmation", func(j *model.Journal) string { return fmtDate(j.ConfirmationDate) }},
	{"ConfirmationAuthor", "column.confirmationAuthor", func(j *model.Journal) string { return personName(j.ConfirmedBy) }},
	{"TechnicalManager", "column.technicalManager", func(j *model.Journal) string { return personName(j.TechnicalManager) }},
}

func fmtIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func fmtDate(d *types.Date) string {
	if d == nil || d.Time.IsZero() {
		return ""
	}
	return d.Time.Format(dateLayout)
}

// conditionClass — CSS-класс ячейки состояния для подсветки строки.
func conditionClass(condition string) string {
	switch lifecycle.Condition(condition) {
	case lifecycle.ConditionFiled:
		return "condition-filed"
	case lifecycle.ConditionAccepted:
		return "condition-accepted"
	case lifecycle.ConditionResolved:
		return "condition-resolved"
	case lifecycle.ConditionInOperation:
		return "condition-in-operation"
	case lifecycle.ConditionReviewed:
		return "condition-reviewed"
	case lifecycle.ConditionOverdue:
		return "condition-overdue"
	default:
		return "condition-unknown"
	}
}

func personName(p *model.Person) string {
	if p == nil {
		return ""
	}
	return p.Name
}

// JournalsView — данные страницы списка записей журнала.
type JournalsView struct {
	Principal   *session.Principal
	State       query.State
	Page        *jmclient.JournalPage
	ShowPresets bool // панель пресетов фильтров (требует локальной БД)
	Error       string
}

// Journals — полная страница списка записей.
func Journals(v JournalsView) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<div class="page-header">
<h1>%s</h1>
<a class="button" href="/journals/new">%s</a>
</div>
`,
			esc(i18n.T(ctx, "journals.title")),
			esc(i18n.T(ctx, "journals.new")),
		)

		if err := ErrorBanner(v.Error).Render(ctx, w); err != nil {
			return err
		}
		if err := JournalTable(v).Render(ctx, w); err != nil {
			return err
		}
		if v.ShowPresets {
			io.WriteString(w, `<div id="presets" hx-get="/presets" hx-trigger="load" hx-swap="outerHTML"></div>`+"\n")
		}
		return nil
	})

	return Layout("Журнал", v.Principal, content)
}

// JournalTable — таблица списка с сортировкой, фильтрами и пагинацией.
// Частичный фрагмент, обновляется HTMX-запросами без перезагрузки страницы.
func JournalTable(v JournalsView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		io.WriteString(w, `<div id="journal-table">`+"\n")

		// Панель фильтров
		fmt.Fprintf(w, `<form class="filters" hx-post="/journals/filters" hx-target="#journal-table" hx-swap="outerHTML">`+"\n")
		io.WriteString(w, `<table class="journal-table">`+"\n<thead>\n<tr>\n")

		for _, col := range listColumns {
			marker := ""
			if v.State.SortBy == col.key {
				if v.State.Ascending {
					marker = " ▲"
				} else {
					marker = " ▼"
				}
			}
			fmt.Fprintf(w, `<th><a hx-get="/journals/partial?sort=%s" hx-target="#journal-table" hx-swap="outerHTML" href="#">%s%s</a></th>`+"\n",
				esc(col.key), esc(i18n.T(ctx, col.label)), marker)
		}
		io.WriteString(w, "</tr>\n<tr class=\"filter-row\">\n")

		for _, col := range listColumns {
			fmt.Fprintf(w, `<th><input type="text" name="%s" value="%s"></th>`+"\n",
				esc(col.key), esc(v.State.Filters.Get(col.key)))
		}
		io.WriteString(w, "</tr>\n</thead>\n<tbody>\n")

		if v.Page == nil || len(v.Page.Journals) == 0 {
			fmt.Fprintf(w, `<tr><td colspan="%d" class="empty">%s</td></tr>`+"\n",
				len(listColumns), esc(i18n.T(ctx, "journals.empty")))
		} else {
			for i := range v.Page.Journals {
				j := &v.Page.Journals[i]
				fmt.Fprintf(w, `<tr class="row-link" data-href="/journals/%d">`+"\n", j.ID)
				for _, col := range listColumns {
					if col.key == "Condition" {
						fmt.Fprintf(w, `<td class="condition %s">%s</td>`, conditionClass(j.Condition), esc(col.value(j)))
						continue
					}
					fmt.Fprintf(w, `<td>%s</td>`, esc(col.value(j)))
				}
				io.WriteString(w, "\n</tr>\n")
			}
		}
		io.WriteString(w, "</tbody>\n</table>\n")

		fmt.Fprintf(w, `<div class="filter-actions">
<button type="submit">%s</button>
<button type="button" hx-post="/journals/filters/reset" hx-target="#journal-table" hx-swap="outerHTML">%s</button>
</div>
</form>
`,
			esc(i18n.T(ctx, "journals.filters.apply")),
			esc(i18n.T(ctx, "journals.filters.reset")),
		)

		if err := pagination(v).Render(ctx, w); err != nil {
			return err
		}

		io.WriteString(w, "</div>\n")
		return nil
	})
}

// pagination — переключатель страниц списка.
func pagination(v JournalsView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		totalPages := 1
		if v.Page != nil && v.Page.TotalPages > 0 {
			totalPages = v.Page.TotalPages
		}
		current := v.State.Page

		io.WriteString(w, `<div class="pagination">`+"\n")
		if current > 1 {
			fmt.Fprintf(w, `<a hx-get="/journals/partial?page=%d" hx-target="#journal-table" hx-swap="outerHTML" href="#">&laquo;</a>`+"\n", current-1)
		}
		fmt.Fprintf(w, `<span>%s</span>`+"\n", esc(i18n.Tf(ctx, "journals.page_of", current, totalPages)))
		if current < totalPages {
			fmt.Fprintf(w, `<a hx-get="/journals/partial?page=%d" hx-target="#journal-table" hx-swap="outerHTML" href="#">&raquo;</a>`+"\n", current+1)
		}
		io.WriteString(w, "</div>\n")
		return nil
	})
}
