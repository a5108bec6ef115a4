// Пакет pages — серверный рендеринг страниц UI журнала дефектов.
// Компоненты строятся на templ.Component и собираются в обработчиках,
// частичные фрагменты (таблица, комментарии) обновляются через HTMX.
package pages

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/tanyaprikhodko/journal-of-defects/internal/session"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/i18n"
)

// esc экранирует текст для вставки в HTML.
func esc(s string) string {
	return html.EscapeString(s)
}

// Layout — общий каркас страницы: шапка, навигация, переключатель языка.
// principal == nil — страница без навигации (вход).
func Layout(title string, principal *session.Principal, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := i18n.LangFromContext(ctx)
		fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="%s">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s — %s</title>
<link rel="stylesheet" href="/static/css/app.css">
<script src="https://unpkg.com/htmx.org@1.9.12/dist/htmx.min.js" defer></script>
<script src="/static/js/app.js" defer></script>
</head>
<body>
`, esc(lang), esc(title), esc(i18n.T(ctx, "app.title")))

		if principal != nil {
			if err := navbar(principal).Render(ctx, w); err != nil {
				return err
			}
		}

		io.WriteString(w, `<main class="container">`+"\n")
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		io.WriteString(w, "</main>\n</body>\n</html>\n")
		return nil
	})
}

// navbar — навигация с именем пользователя и переключателем языка.
func navbar(principal *session.Principal) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<nav class="navbar">
<a class="brand" href="/journals">%s</a>
<a href="/journals">%s</a>
<a href="/users">%s</a>
<span class="spacer"></span>
<span class="user-name">%s</span>
<form method="post" action="/set-language" class="inline">
<button name="lang" value="uk" type="submit">УК</button>
<button name="lang" value="en" type="submit">EN</button>
</form>
<form method="post" action="/logout" class="inline">
<button type="submit">%s</button>
</form>
</nav>
`,
			esc(i18n.T(ctx, "app.title")),
			esc(i18n.T(ctx, "nav.journals")),
			esc(i18n.T(ctx, "nav.users")),
			esc(principal.Name),
			esc(i18n.T(ctx, "nav.logout")),
		)
		return nil
	})
}

// ErrorBanner — блок с сообщением об ошибке.
func ErrorBanner(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if message == "" {
			return nil
		}
		fmt.Fprintf(w, `<div class="error-banner" role="alert">%s</div>`+"\n", esc(message))
		return nil
	})
}
