package salary

import (
	"embed"
	"fmt"
	"io"
	"io/fs"

	"salary-predictor/internal/form"
	"salary-predictor/internal/profile"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates
var templateFS embed.FS

// View renders the HTML form page.
type View struct {
	page *pongo2.Template
}

// NewView compiles the embedded templates.
func NewView() (*View, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("salary: templates: %w", err)
	}

	set := pongo2.NewSet("salary", pongo2.NewFSLoader(sub))
	page, err := set.FromFile("form.html")
	if err != nil {
		return nil, fmt.Errorf("salary: load template %q: %w", "form.html", err)
	}
	return &View{page: page}, nil
}

// Render writes the page for snapshot s. notice, when set, is shown above
// the form (used for rejected edits and busy submissions).
func (v *View) Render(w io.Writer, s form.Snapshot, notice string) error {
	return v.page.ExecuteWriter(pongo2.Context{"page": newPageData(s, notice)}, w)
}

type pageOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageField struct {
	Name        string
	Label       string
	Value       string
	Placeholder string
	Options     []pageOption
}

type pageData struct {
	Fields        []pageField
	SubmitEnabled bool
	Indicator     string
	Error         string
	Salary        string
	Notice        string
}

func newPageData(s form.Snapshot, notice string) pageData {
	fields := profile.Fields()
	data := pageData{
		Fields:        make([]pageField, 0, len(fields)),
		SubmitEnabled: s.SubmitEnabled(),
		Indicator:     s.Indicator(),
		Error:         s.Error,
		Salary:        s.FormattedPrediction(),
		Notice:        notice,
	}

	for _, f := range fields {
		current := s.Values.Get(f)
		pf := pageField{
			Name:        f.String(),
			Label:       f.Label(),
			Value:       current,
			Placeholder: f.Placeholder(),
		}
		for _, opt := range f.Options() {
			pf.Options = append(pf.Options, pageOption{
				Value:    opt.Value,
				Label:    opt.Label,
				Selected: opt.Value == current,
			})
		}
		data.Fields = append(data.Fields, pf)
	}
	return data
}
