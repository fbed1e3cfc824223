// Package web serves the prediction form as a browser page backed by the
// form controller, with a websocket feed of every state change.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/kilianp07/iris/core/controller"
	"github.com/kilianp07/iris/core/examples"
	"github.com/kilianp07/iris/core/form"
	"github.com/kilianp07/iris/core/model"
	"github.com/kilianp07/iris/core/render"
	"github.com/kilianp07/iris/core/state"
	"github.com/kilianp07/iris/infra/logger"
)

//go:embed templates/index.html
var templates embed.FS

var pageTmpl = template.Must(template.ParseFS(templates, "templates/index.html"))

// maxBody bounds submitted form payloads.
const maxBody = 1 << 16

// Controller is the subset of the form controller the handler drives.
type Controller interface {
	SubmitValues(ctx context.Context, vals form.Values) (state.State, error)
	RandomExample() examples.Example
	State() state.State
}

// Fields is the form behind the controller.
type Fields interface {
	Values() form.Values
}

// StateResponse is returned by the JSON endpoints.
type StateResponse struct {
	View   render.ViewModel `json:"view"`
	Values form.Values      `json:"values"`
}

// Handler serves the page and its JSON API.
type Handler struct {
	ctl    Controller
	fields Fields
	view   *View
	hub    *Hub
	models []model.ModelOption
	bounds model.Range
	log    logger.Logger
}

// NewHandler wires the routes around ctl.
func NewHandler(ctl Controller, fields Fields, view *View, hub *Hub, models []model.ModelOption, bounds model.Range) *Handler {
	return &Handler{
		ctl:    ctl,
		fields: fields,
		view:   view,
		hub:    hub,
		models: models,
		bounds: bounds,
		log:    logger.New("web"),
	}
}

// Routes returns the HTTP mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleIndex)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/state", h.handleState)
	mux.HandleFunc("/api/models", h.handleModels)
	mux.HandleFunc("/api/submit", h.handleSubmit)
	mux.HandleFunc("/api/random", h.handleRandom)
	mux.HandleFunc("/chart", h.handleChart)
	if h.hub != nil {
		mux.Handle("/ws", h.hub)
	}
	return mux
}

type pageData struct {
	Models []model.ModelOption
	Values form.Values
	Fields []pageField
	View   render.ViewModel
	Min    float64
	Max    float64
}

type pageField struct {
	ID    string
	Label string
	Value string
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	vals := h.fields.Values()
	data := pageData{
		Models: h.models,
		Values: vals,
		View:   h.view.Current(),
		Min:    h.bounds.Min,
		Max:    h.bounds.Max,
	}
	for _, f := range model.Fields {
		data.Fields = append(data.Fields, pageField{ID: string(f), Label: titleLabel(f), Value: vals.Get(f)})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		h.log.Errorf("render page: %v", err)
	}
}

func titleLabel(f model.Field) string {
	return model.DisplayLabel(f.Label()) + " (cm)"
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *Handler) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.models)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	vals, err := decodeValues(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The submission outlives a client that navigates away mid-request.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), time.Minute)
	defer cancel()
	_, err = h.ctl.SubmitValues(ctx, vals)
	switch {
	case errors.Is(err, controller.ErrBusy):
		h.writeState(w, http.StatusConflict)
	case errors.Is(err, controller.ErrClosed):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		h.writeState(w, http.StatusOK)
	}
}

func (h *Handler) handleRandom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.ctl.RandomExample()
	h.writeState(w, http.StatusOK)
}

func (h *Handler) writeState(w http.ResponseWriter, status int) {
	writeJSON(w, status, StateResponse{View: h.view.Current(), Values: h.fields.Values()})
}

// decodeValues accepts a JSON object or an url-encoded form.
func decodeValues(w http.ResponseWriter, r *http.Request) (form.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	var v form.Values
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			return v, errors.New("invalid JSON body")
		}
		return v, nil
	}
	if err := r.ParseForm(); err != nil {
		return v, errors.New("invalid form body")
	}
	v.Model = r.PostForm.Get("model")
	for _, f := range model.Fields {
		v.Set(f, r.PostForm.Get(string(f)))
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
