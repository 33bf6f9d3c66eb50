// Package workspace exposes the timetable workspace as a JSON API.
package workspace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/kilianp07/timetable/core/clash"
	"github.com/kilianp07/timetable/core/metrics"
	"github.com/kilianp07/timetable/core/model"
	"github.com/kilianp07/timetable/core/monitoring"
	"github.com/kilianp07/timetable/core/scheduler"
	"github.com/kilianp07/timetable/core/timetable"
	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/pkg/export"
)

const maxBody = 1 << 20

// API serves the workspace routes.
type API struct {
	ws       *timetable.Workspace
	autofill scheduler.Config
	sink     metrics.Sink
	mon      monitoring.Monitor
	log      logger.Logger
}

// Option customises an API.
type Option func(*API)

func WithAutoFill(cfg scheduler.Config) Option { return func(a *API) { a.autofill = cfg } }
func WithSink(s metrics.Sink) Option           { return func(a *API) { a.sink = s } }
func WithMonitor(m monitoring.Monitor) Option  { return func(a *API) { a.mon = m } }
func WithLogger(l logger.Logger) Option        { return func(a *API) { a.log = l } }

// New returns the API over ws.
func New(ws *timetable.Workspace, opts ...Option) *API {
	a := &API{
		ws:   ws,
		sink: metrics.NopSink{},
		mon:  monitoring.NopMonitor{},
		log:  logger.NopLogger{},
	}
	a.autofill.SetDefaults()
	for _, o := range opts {
		o(a)
	}
	return a
}

// Register mounts every route on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/settings", a.getSettings)
	mux.HandleFunc("PUT /api/settings", a.putSettings)
	mux.HandleFunc("POST /api/reset", a.reset)
	mux.HandleFunc("POST /api/generate", a.generate)
	mux.HandleFunc("GET /api/grid", a.grid)
	mux.HandleFunc("PUT /api/cells/{day}/{period}", a.setCell)
	mux.HandleFunc("DELETE /api/cells/{day}/{period}", a.clearCell)
	mux.HandleFunc("POST /api/autofill", a.autoFill)
	mux.HandleFunc("GET /api/clashes", a.clashes)
	mux.HandleFunc("GET /api/summary", a.summary)
	mux.HandleFunc("GET /api/export/{format}", a.export)
}

func (a *API) getSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.ws.Snapshot())
}

// putSettings imports a JSON document, or YAML when the request says so.
func (a *API) putSettings(w http.ResponseWriter, r *http.Request) {
	format := export.FormatJSON
	if ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil {
		switch ct {
		case "application/yaml", "application/x-yaml", "text/yaml":
			format = export.FormatYAML
		}
	}
	s, err := export.Decode(io.LimitReader(r.Body, maxBody), format)
	if err != nil {
		a.fail(w, r, fmt.Errorf("%w: %v", timetable.ErrInvalidSettings, err))
		return
	}
	if err := a.ws.Replace(s); err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.ws.Snapshot())
}

func (a *API) reset(w http.ResponseWriter, _ *http.Request) {
	a.ws.Reset()
	writeJSON(w, http.StatusOK, a.ws.Snapshot())
}

func (a *API) generate(w http.ResponseWriter, r *http.Request) {
	a.ws.Generate()
	a.grid(w, r)
}

func (a *API) grid(w http.ResponseWriter, r *http.Request) {
	g, err := a.ws.Grid()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

type cellBody struct {
	Value string `json:"value"`
}

type cellResponse struct {
	Slot  string `json:"slot"`
	Value string `json:"value"`
}

func slotFrom(r *http.Request) (model.Slot, error) {
	p, err := strconv.Atoi(r.PathValue("period"))
	if err != nil {
		return model.Slot{}, fmt.Errorf("period %q: %w", r.PathValue("period"), timetable.ErrUnknownPeriod)
	}
	return model.Slot{Day: r.PathValue("day"), Period: p}, nil
}

func (a *API) setCell(w http.ResponseWriter, r *http.Request) {
	slot, err := slotFrom(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var body cellBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&body); err != nil {
		a.fail(w, r, fmt.Errorf("%w: %v", timetable.ErrInvalidSettings, err))
		return
	}
	if err := a.ws.SetCell(slot, body.Value); err != nil {
		a.fail(w, r, err)
		return
	}
	v, _ := a.ws.Snapshot().Cell(slot)
	writeJSON(w, http.StatusOK, cellResponse{Slot: slot.Key(), Value: v})
}

func (a *API) clearCell(w http.ResponseWriter, r *http.Request) {
	slot, err := slotFrom(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.ws.ClearCell(slot); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type autoFillResponse struct {
	Placed int `json:"placed"`
}

// autoFill runs the filler. An optional JSON body overrides the configured
// fill_remaining and max_per_day.
func (a *API) autoFill(w http.ResponseWriter, r *http.Request) {
	cfg := a.autofill
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &cfg); err != nil {
			a.fail(w, r, fmt.Errorf("%w: %v", timetable.ErrInvalidSettings, err))
			return
		}
	}
	if err := cfg.Validate(); err != nil {
		a.fail(w, r, fmt.Errorf("%w: %v", timetable.ErrInvalidSettings, err))
		return
	}
	placed, err := a.ws.AutoFill(scheduler.New(cfg))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, autoFillResponse{Placed: placed})
}

func (a *API) clashes(w http.ResponseWriter, r *http.Request) {
	if !a.ws.Generated() {
		a.fail(w, r, timetable.ErrNotGenerated)
		return
	}
	rep := clash.Check(a.ws.Snapshot())
	if err := a.sink.RecordClashCheck(rep); err != nil {
		a.log.Warnf("record clash check: %v", err)
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a *API) summary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.ws.Summary())
}

// export streams the workspace as an attachment. Grid formats need a
// generated timetable; settings documents are always available.
func (a *API) export(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}
	if (f == export.FormatCSV || f == export.FormatXLSX) && !a.ws.Generated() {
		a.fail(w, r, timetable.ErrNotGenerated)
		return
	}
	s := a.ws.Snapshot()
	var buf bytes.Buffer
	if err := export.Write(&buf, s, f); err != nil {
		a.fail(w, r, errors.Join(errors.New("export failed"), err))
		return
	}
	if err := a.sink.RecordExport(string(f)); err != nil {
		a.log.Warnf("record export: %v", err)
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName(s.SchoolName, f)}))
	_, _ = buf.WriteTo(w)
}
