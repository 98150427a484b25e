package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/funnel_go/internal/ingest"
	"github.com/AngelCh415/funnel_go/internal/metrics"
	"github.com/AngelCh415/funnel_go/internal/models"
	"github.com/AngelCh415/funnel_go/internal/store"
	"github.com/AngelCh415/funnel_go/internal/utils"
)

const formatHint = "Please ensure your CSV files have a Date column and at least one installs/kyc/otp/spend column."

type Options struct {
	MaxUploadBytes int64
	CORSOrigins    []string
}

type api struct {
	log  *slog.Logger
	etl  *ingest.ETL
	st   *store.MemoryStore
	opts Options
}

func NewRouter(log *slog.Logger, etl *ingest.ETL, st *store.MemoryStore, inst *utils.Instruments, opts Options) http.Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	a := &api{log: log, etl: etl, st: st, opts: opts}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(inst.CountRequests)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.HandlerFor(inst.Registry, promhttp.HandlerOpts{}))

	mux.Post("/analyses", a.createAnalysis)
	mux.Route("/analyses/{id}", func(r chi.Router) {
		r.Get("/", a.withAnalysis(func(w http.ResponseWriter, r *http.Request, an *models.Analysis) {
			writeJSON(w, http.StatusOK, an)
		}))
		r.Get("/charts", a.withAnalysis(func(w http.ResponseWriter, r *http.Request, an *models.Analysis) {
			writeJSON(w, http.StatusOK, metrics.Charts(an))
		}))
		r.Get("/table", a.withAnalysis(func(w http.ResponseWriter, r *http.Request, an *models.Analysis) {
			writeJSON(w, http.StatusOK, metrics.QueryTable(an.Rows, r.URL.Query()))
		}))
	})

	return mux
}

func (a *api) createAnalysis(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.opts.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload: "+err.Error(), "")
		return
	}
	defer r.MultipartForm.RemoveAll()

	var u ingest.Uploads
	for _, f := range []struct {
		field string
		dst   *ingest.Input
	}{
		{"ios", &u.IOS},
		{"android", &u.Android},
		{"spend", &u.Spend},
	} {
		in, err := formFile(r, f.field)
		if err != nil {
			writeError(w, http.StatusBadRequest, "please upload all three files (ios, android, spend)", "")
			return
		}
		*f.dst = in
	}

	an, err := a.etl.Run(r.Context(), u)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.st.Put(an)
	w.Header().Set("Location", "/analyses/"+an.ID)
	writeJSON(w, http.StatusCreated, an)
}

// fail maps pipeline errors onto responses. Nothing partial is returned.
func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	a.log.Error("pipeline failed", slog.String("rid", utils.RID(r.Context())), slog.String("err", err.Error()))
	var mdc *ingest.MissingDateColumnError
	var mal *ingest.MalformedInputError
	switch {
	case errors.As(err, &mdc):
		writeError(w, http.StatusUnprocessableEntity, "Couldn't find a Date column in one of the files. Make sure each CSV has a Date column.", mdc.Error())
	case errors.As(err, &mal):
		writeError(w, http.StatusUnprocessableEntity, "could not process files", formatHint)
	default:
		writeError(w, http.StatusInternalServerError, "error processing files", formatHint)
	}
}

func (a *api) withAnalysis(h func(http.ResponseWriter, *http.Request, *models.Analysis)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		an, ok := a.st.Get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "analysis not found", "")
			return
		}
		h(w, r, an)
	}
}

func formFile(r *http.Request, field string) (ingest.Input, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return ingest.Input{}, err
	}
	defer f.Close()
	return readPart(f, hdr)
}

func readPart(f multipart.File, hdr *multipart.FileHeader) (ingest.Input, error) {
	b, err := io.ReadAll(f)
	if err != nil {
		return ingest.Input{}, err
	}
	return ingest.Input{Filename: hdr.Filename, Data: b}, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg, hint string) {
	body := map[string]string{"error": msg}
	if hint != "" {
		body["hint"] = hint
	}
	writeJSON(w, code, body)
}
