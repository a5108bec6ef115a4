package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/i18n"
)

// Login — страница входа. errorKey — ключ i18n сообщения об ошибке
// (пустая строка — без ошибки).
func Login(errorKey string) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		io.WriteString(w, `<div class="login-box">`+"\n")
		fmt.Fprintf(w, `<h1>%s</h1>`+"\n", esc(i18n.T(ctx, "login.title")))

		if errorKey != "" {
			if err := ErrorBanner(i18n.T(ctx, errorKey)).Render(ctx, w); err != nil {
				return err
			}
		}

		fmt.Fprintf(w, `<form method="post" action="/login">
<label>%s<input type="text" name="login" required autofocus></label>
<label>%s<input type="password" name="password" required></label>
<button type="submit">%s</button>
</form>
</div>
`,
			esc(i18n.T(ctx, "login.login")),
			esc(i18n.T(ctx, "login.password")),
			esc(i18n.T(ctx, "login.submit")),
		)
		return nil
	})

	return Layout("Вхід", nil, content)
}
