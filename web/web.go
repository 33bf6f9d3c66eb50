// Package web renders the three-tab form UI over the workspace: settings,
// grid generation and filling, and preview with downloads.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kilianp07/timetable/core/clash"
	"github.com/kilianp07/timetable/core/metrics"
	"github.com/kilianp07/timetable/core/model"
	"github.com/kilianp07/timetable/core/monitoring"
	"github.com/kilianp07/timetable/core/scheduler"
	"github.com/kilianp07/timetable/core/timetable"
	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/pkg/export"
)

//go:embed templates/*.html
var templateFiles embed.FS

const maxUpload = 1 << 20

// UI serves the HTML pages.
type UI struct {
	ws       *timetable.Workspace
	tmpl     *template.Template
	autofill scheduler.Config
	sink     metrics.Sink
	mon      monitoring.Monitor
	log      logger.Logger
}

// Option customises a UI.
type Option func(*UI)

func WithAutoFill(cfg scheduler.Config) Option { return func(u *UI) { u.autofill = cfg } }
func WithSink(s metrics.Sink) Option           { return func(u *UI) { u.sink = s } }
func WithMonitor(m monitoring.Monitor) Option  { return func(u *UI) { u.mon = m } }
func WithLogger(l logger.Logger) Option        { return func(u *UI) { u.log = l } }

// New parses the embedded templates.
func New(ws *timetable.Workspace, opts ...Option) (*UI, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"fileName": func(school string, f export.Format) string { return export.FileName(school, f) },
		"upper":    func(f export.Format) string { return strings.ToUpper(string(f)) },
		"join":     strings.Join,
	}).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	u := &UI{
		ws:   ws,
		tmpl: tmpl,
		sink: metrics.NopSink{},
		mon:  monitoring.NopMonitor{},
		log:  logger.NopLogger{},
	}
	u.autofill.SetDefaults()
	for _, o := range opts {
		o(u)
	}
	return u, nil
}

// Register mounts the pages and form handlers on mux.
func (u *UI) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
	})
	mux.HandleFunc("GET /settings", u.settingsPage)
	mux.HandleFunc("POST /settings/school", u.form(u.saveSchool))
	mux.HandleFunc("POST /settings/days", u.form(u.saveDays))
	mux.HandleFunc("POST /settings/periods", u.form(u.addPeriod))
	mux.HandleFunc("POST /settings/periods/{i}", u.form(u.updatePeriod))
	mux.HandleFunc("POST /settings/periods/{i}/remove", u.form(u.removePeriod))
	mux.HandleFunc("POST /settings/subjects", u.form(u.addSubject))
	mux.HandleFunc("POST /settings/subjects/update", u.form(u.updateSubject))
	mux.HandleFunc("POST /settings/subjects/remove", u.form(u.removeSubject))
	mux.HandleFunc("POST /settings/fixed", u.form(u.addFixed))
	mux.HandleFunc("POST /settings/fixed/{i}", u.form(u.updateFixed))
	mux.HandleFunc("POST /settings/fixed/{i}/remove", u.form(u.removeFixed))
	mux.HandleFunc("POST /settings/import", u.form(u.importSettings))
	mux.HandleFunc("POST /reset", u.form(u.reset))
	mux.HandleFunc("GET /generate", u.generatePage)
	mux.HandleFunc("POST /generate", u.form(u.generate))
	mux.HandleFunc("POST /generate/cell", u.form(u.setCell))
	mux.HandleFunc("POST /generate/autofill", u.form(u.autoFill))
	mux.HandleFunc("GET /export", u.exportPage)
	mux.HandleFunc("GET /export/chart", u.chart)
}

type flash struct {
	Kind    string
	Message string
}

type dayChoice struct {
	Name     string
	Selected bool
}

type page struct {
	Tab          string
	Flash        flash
	Settings     model.Settings
	Generated    bool
	Grid         timetable.Grid
	Report       *clash.Report
	Summary      timetable.Summary
	DayChoices   []dayChoice
	Formats      []export.Format
	AutoFill     scheduler.Config
	MaxPeriods   int
	MinHours     int
	MaxHours     int
	DefaultHours int
}

func (u *UI) newPage(r *http.Request, tab string) page {
	s := u.ws.Snapshot()
	p := page{
		Tab:          tab,
		Settings:     s,
		Generated:    u.ws.Generated(),
		Formats:      export.Formats,
		AutoFill:     u.autofill,
		MaxPeriods:   model.MaxPeriods,
		MinHours:     model.MinHoursPerWeek,
		MaxHours:     model.MaxHoursPerWeek,
		DefaultHours: model.DefaultHoursPerWeek,
	}
	q := r.URL.Query()
	if m := q.Get("error"); m != "" {
		p.Flash = flash{Kind: "error", Message: m}
	} else if m := q.Get("ok"); m != "" {
		p.Flash = flash{Kind: "ok", Message: m}
	}
	if p.Generated {
		p.Grid = timetable.BuildGrid(s)
	}
	return p
}

// render executes into a buffer first so that a failing template never sends
// a partial page.
func (u *UI) render(w http.ResponseWriter, r *http.Request, name string, data page) {
	var buf bytes.Buffer
	if err := u.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		u.log.Errorf("template %s for %s: %v", name, r.URL.Path, err)
		u.mon.CaptureException(err, map[string]string{"module": "web", "template": name})
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (u *UI) settingsPage(w http.ResponseWriter, r *http.Request) {
	p := u.newPage(r, "settings")
	seen := map[string]bool{}
	for _, d := range model.WeekDays {
		p.DayChoices = append(p.DayChoices, dayChoice{Name: d, Selected: p.Settings.HasDay(d)})
		seen[d] = true
	}
	for _, d := range p.Settings.Days {
		if !seen[d] {
			p.DayChoices = append(p.DayChoices, dayChoice{Name: d, Selected: true})
		}
	}
	u.render(w, r, "settings.html", p)
}

func (u *UI) generatePage(w http.ResponseWriter, r *http.Request) {
	p := u.newPage(r, "generate")
	if p.Generated && r.URL.Query().Get("check") != "" {
		rep := clash.Check(p.Settings)
		if err := u.sink.RecordClashCheck(rep); err != nil {
			u.log.Warnf("record clash check: %v", err)
		}
		p.Report = &rep
	}
	u.render(w, r, "generate.html", p)
}

func (u *UI) exportPage(w http.ResponseWriter, r *http.Request) {
	p := u.newPage(r, "export")
	p.Summary = timetable.Summarize(p.Settings)
	u.render(w, r, "export.html", p)
}

// action applies a form submission and returns the page to return to with a
// success message.
type action func(r *http.Request) (redirect, message string, err error)

// form wraps an action in the post/redirect/get cycle. Rejected input is
// shown as a flash message on the page the form came from.
func (u *UI) form(a action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		to, msg, err := a(r)
		if to == "" {
			to = "/settings"
		}
		q := url.Values{}
		switch {
		case err == nil:
			if msg != "" {
				q.Set("ok", msg)
			}
		case timetable.IsValidation(err) || errors.Is(err, timetable.ErrNotGenerated):
			q.Set("error", err.Error())
		default:
			u.log.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
			u.mon.CaptureException(err, map[string]string{"module": "web", "path": r.URL.Path})
			q.Set("error", "something went wrong: "+err.Error())
		}
		if len(q) > 0 {
			to += "?" + q.Encode()
		}
		http.Redirect(w, r, to, http.StatusSeeOther)
	}
}

func index(r *http.Request, notFound error) (int, error) {
	i, err := strconv.Atoi(r.PathValue("i"))
	if err != nil {
		return 0, fmt.Errorf("%q: %w", r.PathValue("i"), notFound)
	}
	return i, nil
}

func (u *UI) saveSchool(r *http.Request) (string, string, error) {
	if err := u.ws.SetSchoolName(r.FormValue("school_name")); err != nil {
		return "", "", fmt.Errorf("school name: %w", err)
	}
	u.ws.SetClosingTime(r.FormValue("closing_time"))
	return "", "School details saved", nil
}

func (u *UI) saveDays(r *http.Request) (string, string, error) {
	if err := r.ParseForm(); err != nil {
		return "", "", err
	}
	u.ws.SetDays(r.PostForm["days"])
	if custom := strings.TrimSpace(r.PostFormValue("custom_day")); custom != "" {
		if err := u.ws.AddCustomDay(custom); err != nil {
			return "", "", fmt.Errorf("%s: %w", custom, err)
		}
		return "", "Added " + custom, nil
	}
	return "", "Days updated", nil
}

func (u *UI) addPeriod(*http.Request) (string, string, error) {
	p, err := u.ws.AddPeriod()
	if err != nil {
		return "", "", err
	}
	return "", "Added " + p.Name, nil
}

func (u *UI) updatePeriod(r *http.Request) (string, string, error) {
	i, err := index(r, timetable.ErrUnknownPeriod)
	if err != nil {
		return "", "", err
	}
	if err := u.ws.UpdatePeriod(i, r.FormValue("name"), r.FormValue("start"), r.FormValue("end")); err != nil {
		return "", "", err
	}
	return "", "Period updated", nil
}

func (u *UI) removePeriod(r *http.Request) (string, string, error) {
	i, err := index(r, timetable.ErrUnknownPeriod)
	if err != nil {
		return "", "", err
	}
	if err := u.ws.RemovePeriod(i); err != nil {
		return "", "", err
	}
	return "", "Period removed", nil
}

func hoursValue(r *http.Request) (int, error) {
	h, err := strconv.Atoi(strings.TrimSpace(r.FormValue("hours")))
	if err != nil {
		return 0, fmt.Errorf("hours %q: %w", r.FormValue("hours"), timetable.ErrInvalidHours)
	}
	return h, nil
}

func (u *UI) addSubject(r *http.Request) (string, string, error) {
	h, err := hoursValue(r)
	if err != nil {
		return "", "", err
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if err := u.ws.AddSubject(name, h); err != nil {
		return "", "", fmt.Errorf("subject '%s': %w", name, err)
	}
	return "", "Added subject " + name, nil
}

func (u *UI) updateSubject(r *http.Request) (string, string, error) {
	name := r.FormValue("name")
	h, err := hoursValue(r)
	if err != nil {
		return "", "", err
	}
	if err := u.ws.SetSubjectHours(name, h); err != nil {
		return "", "", fmt.Errorf("subject '%s': %w", name, err)
	}
	if err := u.ws.SetSubjectNoClash(name, r.FormValue("no_clash") != ""); err != nil {
		return "", "", fmt.Errorf("subject '%s': %w", name, err)
	}
	return "", "Subject " + name + " updated", nil
}

func (u *UI) removeSubject(r *http.Request) (string, string, error) {
	name := r.FormValue("name")
	if err := u.ws.RemoveSubject(name); err != nil {
		return "", "", fmt.Errorf("subject '%s': %w", name, err)
	}
	return "", "Removed subject " + name, nil
}

func fixedFromForm(r *http.Request) model.FixedItem {
	item := model.FixedItem{Day: r.FormValue("day"), Period: r.FormValue("period")}
	if r.FormValue("custom") != "" {
		item.IsCustom = true
		item.Text = r.FormValue("text")
	} else {
		item.Subject = r.FormValue("subject")
	}
	return item
}

func (u *UI) addFixed(r *http.Request) (string, string, error) {
	item := fixedFromForm(r)
	if err := u.ws.AddFixedItem(item); err != nil {
		return "", "", fmt.Errorf("%s - %s: %w", item.Day, item.Period, err)
	}
	return "", "Fixed item added", nil
}

func (u *UI) updateFixed(r *http.Request) (string, string, error) {
	i, err := index(r, timetable.ErrUnknownFixedItem)
	if err != nil {
		return "", "", err
	}
	if err := u.ws.UpdateFixedItem(i, fixedFromForm(r)); err != nil {
		return "", "", err
	}
	return "", "Fixed item updated", nil
}

func (u *UI) removeFixed(r *http.Request) (string, string, error) {
	i, err := index(r, timetable.ErrUnknownFixedItem)
	if err != nil {
		return "", "", err
	}
	if err := u.ws.RemoveFixedItem(i); err != nil {
		return "", "", err
	}
	return "", "Fixed item removed", nil
}

func (u *UI) importSettings(r *http.Request) (string, string, error) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return "", "", fmt.Errorf("%w: %v", timetable.ErrInvalidSettings, err)
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		return "", "", fmt.Errorf("%w: no file uploaded", timetable.ErrInvalidSettings)
	}
	defer func() { _ = file.Close() }()
	ext := hdr.Filename[strings.LastIndex(hdr.Filename, ".")+1:]
	f, err := export.ParseFormat(ext)
	if err != nil || (f != export.FormatJSON && f != export.FormatYAML) {
		return "", "", fmt.Errorf("%w: %s is not a JSON or YAML settings file", timetable.ErrInvalidSettings, hdr.Filename)
	}
	s, err := export.Decode(file, f)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", timetable.ErrInvalidSettings, err)
	}
	if err := u.ws.Replace(s); err != nil {
		return "", "", err
	}
	return "", "Imported " + hdr.Filename, nil
}

func (u *UI) reset(*http.Request) (string, string, error) {
	u.ws.Reset()
	return "", "Workspace reset", nil
}

func (u *UI) generate(*http.Request) (string, string, error) {
	u.ws.Generate()
	return "/generate", "Timetable generated successfully!", nil
}

// setCell writes the custom text when given, the selected subject otherwise.
func (u *UI) setCell(r *http.Request) (string, string, error) {
	p, err := strconv.Atoi(r.FormValue("period"))
	if err != nil {
		return "/generate", "", fmt.Errorf("period %q: %w", r.FormValue("period"), timetable.ErrUnknownPeriod)
	}
	slot := model.Slot{Day: r.FormValue("day"), Period: p}
	value := strings.TrimSpace(r.FormValue("text"))
	if value == "" {
		value = r.FormValue("subject")
	}
	if err := u.ws.SetCell(slot, value); err != nil {
		return "/generate", "", err
	}
	if value == "" {
		return "/generate", "Cleared " + slot.Key(), nil
	}
	return "/generate", fmt.Sprintf("%s set to %s", slot.Key(), value), nil
}

func (u *UI) autoFill(r *http.Request) (string, string, error) {
	cfg := u.autofill
	cfg.FillRemaining = r.FormValue("fill_remaining") != ""
	n, err := u.ws.AutoFill(scheduler.New(cfg))
	if err != nil {
		return "/generate", "", err
	}
	return "/generate", fmt.Sprintf("Auto-fill placed %d cells", n), nil
}
