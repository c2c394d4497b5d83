package tmplx

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

var (
	ErrRenderTemplate = errors.New("tmplx: render error")
	ErrParseTemplate  = errors.New("tmplx: parse error")
)

type Template struct {
	tmpl *template.Template
}

type Options struct {
	validate ValidateFunc
	testData any
	funcs    template.FuncMap
}

type Option func(*Options) error

type ValidateFunc func(*bytes.Buffer) error

// defaultFuncs returns the default template functions
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"default":        defaultFunc,
		"json":           jsonFunc,
		"money":          moneyFunc,
		"hasSuffix":      hasSuffix,
		"hasPrefix":      hasPrefix,
		"encodeUrlQuery": encodeUrlQuery,
		"toString":       cast.ToString,
	}
}

// WithTemplateFunc adds a single custom template function
func WithTemplateFunc(name string, fn any) Option {
	return func(t *Options) error {
		if fn == nil {
			return fmt.Errorf("template func %q is nil", name)
		}
		t.funcs[name] = fn
		return nil
	}
}

// WithValidate executes the template against testData once after parsing.
func WithValidate(testData any, validateFn ValidateFunc) Option {
	return func(t *Options) error {
		t.validate = validateFn
		t.testData = testData
		return nil
	}
}

func buildOptions(args []Option) (*Options, error) {
	opts := &Options{
		funcs: defaultFuncs(),
	}
	for _, arg := range args {
		if err := arg(opts); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

func MustParse(name string, text string, opts ...Option) *Template {
	t, err := Parse(name, text, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse creates a new Template with the given name and text, applying any options
func Parse(name string, text string, args ...Option) (*Template, error) {
	opts, err := buildOptions(args)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).
		Option("missingkey=zero").
		Funcs(opts.funcs).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseTemplate, err)
	}

	return newTemplate(tmpl, opts)
}

// ParseFS parses every file matched by patterns into one template set.
// The set is named after base; use RenderNamed to execute another member.
func ParseFS(fsys fs.FS, base string, patterns []string, args ...Option) (*Template, error) {
	opts, err := buildOptions(args)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(base).
		Option("missingkey=zero").
		Funcs(opts.funcs).
		ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseTemplate, err)
	}

	return newTemplate(tmpl, opts)
}

func newTemplate(tmpl *template.Template, opts *Options) (*Template, error) {
	t := &Template{
		tmpl: tmpl,
	}
	if opts.validate != nil {
		if err := t.validate(opts.testData, opts.validate); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Clone returns an independent copy so more definitions can be added to it.
func (t *Template) Clone() (*Template, error) {
	c, err := t.tmpl.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone template: %w", err)
	}
	return &Template{tmpl: c}, nil
}

// ParseFS adds the files matched by patterns to t.
func (t *Template) ParseFS(fsys fs.FS, patterns ...string) error {
	if _, err := t.tmpl.ParseFS(fsys, patterns...); err != nil {
		return fmt.Errorf("%w: %w", ErrParseTemplate, err)
	}
	return nil
}

func (t *Template) validate(data any, validate ValidateFunc) error {
	buf := new(bytes.Buffer)
	if err := t.tmpl.Execute(buf, data); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	if err := validate(buf); err != nil {
		return fmt.Errorf("validate template: %w", err)
	}
	return nil
}

func (t *Template) Render(data any) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := t.tmpl.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderTemplate, err)
	}
	return buf, nil
}

func (t *Template) RenderNamed(name string, data any) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := t.tmpl.ExecuteTemplate(buf, name, data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderTemplate, err)
	}
	return buf, nil
}

func hasSuffix(a, b any) bool {
	s1 := cast.ToString(a)
	s2 := cast.ToString(b)
	return strings.HasSuffix(s1, s2)
}

func hasPrefix(a, b any) bool {
	s1 := cast.ToString(a)
	s2 := cast.ToString(b)
	return strings.HasPrefix(s1, s2)
}

func defaultFunc(def any, value any) any {
	if value != nil && value != "" {
		return value
	}
	return def
}

func jsonFunc(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type fixedStringer interface {
	StringFixed(places int32) string
}

// moneyFunc formats an amount with a dollar sign and two decimals.
func moneyFunc(value any) (string, error) {
	if v, ok := value.(fixedStringer); ok {
		return "$" + v.StringFixed(2), nil
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("$%.2f", f), nil
}

func encodeUrlQuery(queries ...any) string {
	query := url.Values{}
	for i := 0; i < len(queries); i += 2 {
		value := ""
		if i+1 < len(queries) {
			value = cast.ToString(queries[i+1])
		}
		query.Add(cast.ToString(queries[i]), value)
	}
	return query.Encode()
}
