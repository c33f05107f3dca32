package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/icp-screener/internal/model"
	"github.com/sells-group/icp-screener/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API for the web UI",
	Long: "Exposes companies, runs, and a screen trigger over HTTP. Screening runs\n" +
		"asynchronously; the UI polls the company's status and step fields for\n" +
		"progress.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		env, err := initScreen(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port <= 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env.Store, env.Runner),
			ReadHeaderTimeout: 10 * time.Second,
		}

		sigCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("api listening", zap.Int("port", port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-sigCtx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		zap.L().Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	},
}

// screener triggers a screen of one company. Satisfied by *pipeline.Runner.
type screener interface {
	ProcessCompany(ctx context.Context, company *model.Company) error
}

type api struct {
	store    store.Store
	screener screener
}

func newRouter(st store.Store, sc screener) http.Handler {
	a := &api{store: st, screener: sc}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", a.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/companies", a.listCompanies)
		r.Get("/companies/{domain}", a.getCompany)
		r.Post("/screen", a.screen)
		r.Get("/runs", a.listRuns)
	})
	return r
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) listCompanies(w http.ResponseWriter, r *http.Request) {
	filter := store.CompanyFilter{}
	if s := r.URL.Query().Get("status"); s != "" {
		filter.Statuses = []model.CompanyStatus{model.CompanyStatus(s)}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		filter.Limit = n
	}

	rows, err := store.CompaniesWithLatestRun(r.Context(), a.store, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (a *api) getCompany(w http.ResponseWriter, r *http.Request) {
	domain := model.NormalizeDomain(chi.URLParam(r, "domain"))
	company, err := a.store.GetCompanyByDomain(r.Context(), domain)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if company == nil {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}

	run, err := a.store.LatestRun(r.Context(), company.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, store.CompanyWithRun{Company: *company, Run: run})
}

type screenRequest struct {
	Domain  string `json:"domain"`
	Name    string `json:"name"`
	Website string `json:"website"`
}

// screen queues a company and kicks off the pipeline in the background.
// The response is the company row; progress is visible via its step field.
func (a *api) screen(w http.ResponseWriter, r *http.Request) {
	var req screenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	website := req.Website
	if website == "" {
		website = req.Domain
	}
	domain := model.NormalizeDomain(website)
	if domain == "" {
		writeError(w, http.StatusBadRequest, "domain or website is required")
		return
	}
	name := req.Name
	if name == "" {
		name = domain
	}

	company, err := a.store.UpsertCompany(r.Context(), domain, name, model.CanonicalURL(website))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Detached from the request context: the screen outlives the HTTP call.
	go func() {
		if err := a.screener.ProcessCompany(context.Background(), company); err != nil {
			zap.L().Error("async screen failed",
				zap.String("domain", company.Domain), zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, company)
}

func (a *api) listRuns(w http.ResponseWriter, r *http.Request) {
	filter := store.RunFilter{Limit: 20}
	if d := r.URL.Query().Get("domain"); d != "" {
		company, err := a.store.GetCompanyByDomain(r.Context(), model.NormalizeDomain(d))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if company == nil {
			writeError(w, http.StatusNotFound, "company not found")
			return
		}
		filter.CompanyID = company.ID
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		filter.Limit = n
	}

	runs, err := a.store.ListRuns(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
}
