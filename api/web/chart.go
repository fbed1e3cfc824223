package web

import (
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/iris/core/render"
)

// ConfidenceChart draws the breakdown of res as a bar chart in percent.
func ConfidenceChart(res *render.Result) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Iris prediction"}),
		charts.WithTitleOpts(opts.Title{
			Title:    res.Title,
			Subtitle: "Model: " + res.ModelName + " (" + res.ModelAccuracy + ")",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Species"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Confidence (%)"}),
	)
	labels := make([]string, 0, len(res.Breakdown))
	data := make([]opts.BarData, 0, len(res.Breakdown))
	for _, e := range res.Breakdown {
		labels = append(labels, e.Marker+" "+e.Label)
		data = append(data, opts.BarData{Name: e.Label, Value: e.Probability * 100})
	}
	bar.SetXAxis(labels).AddSeries("confidence", data)
	return bar
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	vm := h.view.Current()
	if vm.Result == nil {
		http.Error(w, "no prediction to chart", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ConfidenceChart(vm.Result).Render(w); err != nil {
		h.log.Errorf("render chart: %v", err)
	}
}
