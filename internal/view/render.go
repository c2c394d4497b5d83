package view

import (
	"embed"
	"fmt"
	"io"
	"io/fs"

	"github.com/nguyentranbao-ct/storefront/internal/models"
	"github.com/nguyentranbao-ct/storefront/pkg/tmplx"
)

var (
	//go:embed templates/*.html
	templatesFS embed.FS

	//go:embed static
	staticFS embed.FS
)

// Static serves the stylesheet and other assets under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Renderer holds one template set per page, each sharing the layout.
type Renderer struct {
	pages map[Page]*tmplx.Template
}

func NewRenderer() (*Renderer, error) {
	base, err := tmplx.ParseFS(templatesFS, "layout.html", []string{"templates/layout.html"},
		tmplx.WithTemplateFunc("actionButton", actionButton),
		tmplx.WithTemplateFunc("card", cardWithRedirect),
		tmplx.WithTemplateFunc("wishlistIcon", wishlistIcon),
		tmplx.WithTemplateFunc("activeClass", activeClass),
	)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[Page]*tmplx.Template)
	for _, page := range []Page{PageHome, PageCart, PageWishlist, PageDetail, PageError} {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if err := t.ParseFS(templatesFS, "templates/"+string(page)+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		pages[page] = t
	}
	return &Renderer{pages: pages}, nil
}

func (r *Renderer) Render(w io.Writer, page Page, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	buf, err := t.RenderNamed("layout", data)
	if err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

// ErrorPage is the data of the generic error page.
type ErrorPage struct {
	Layout
	Code    int
	Message string
}

// actionView is one capability button posted to /actions.
type actionView struct {
	Action     string
	ID         models.ProductID
	RedirectTo string
	Label      string
	Class      string
}

func actionButton(action string, id models.ProductID, redirectTo, label, class string) actionView {
	return actionView{Action: action, ID: id, RedirectTo: redirectTo, Label: label, Class: class}
}

type cardView struct {
	Card       ProductCard
	RedirectTo string
}

func cardWithRedirect(card ProductCard, redirectTo string) cardView {
	return cardView{Card: card, RedirectTo: redirectTo}
}

func wishlistIcon(active bool) string {
	if active {
		return "\u2665"
	}
	return "\u2661"
}

func activeClass(active bool) string {
	if active {
		return "active"
	}
	return ""
}
