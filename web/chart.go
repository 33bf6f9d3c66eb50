package web

import (
	"bytes"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/timetable/core/timetable"
)

// HoursChart renders a bar chart of placed periods against weekly targets.
func HoursChart(sum timetable.Summary) ([]byte, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Subject hours", Subtitle: sum.SchoolName}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Subject"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Periods per week"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	var names []string
	var used, target []opts.BarData
	for _, h := range sum.Hours {
		names = append(names, h.Subject)
		used = append(used, opts.BarData{Value: h.Used})
		target = append(target, opts.BarData{Value: h.Target})
	}
	bar.SetXAxis(names).
		AddSeries("Placed", used).
		AddSeries("Target", target)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (u *UI) chart(w http.ResponseWriter, r *http.Request) {
	b, err := HoursChart(u.ws.Summary())
	if err != nil {
		u.log.Errorf("render chart: %v", err)
		u.mon.CaptureException(err, map[string]string{"module": "web", "path": r.URL.Path})
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(b)
}
