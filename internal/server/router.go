package server

import (
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/RedSkyFlow/Goose/httpx"
	"github.com/RedSkyFlow/Goose/internal/handlers"
	"github.com/RedSkyFlow/Goose/internal/payment"
	"github.com/RedSkyFlow/Goose/internal/services"
)

// Options carries the collaborators the router wires into handlers.
type Options struct {
	Gateway payment.Gateway
	// ProposalTTL is stamped onto proposals when they are sent.
	ProposalTTL time.Duration
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, opts Options) http.Handler {
	mux := http.NewServeMux()

	if opts.Gateway == nil {
		opts.Gateway = payment.StubGateway{}
	}

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check (SELECT 1) – detailed errors stay out of the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	timelineSvc := services.NewTimelineService(db)
	proposalSvc := services.NewProposalService(db, opts.Gateway, timelineSvc, opts.ProposalTTL)

	ch := handlers.NewCompanyHandler(db)
	mux.Handle("/companies", listCreate(ch.List, ch.Create))

	cth := handlers.NewContactHandler(db)
	mux.Handle("/contacts", listCreate(cth.List, cth.Create))

	dh := handlers.NewDealHandler(db, timelineSvc)
	mux.Handle("/deals", listCreate(dh.List, dh.Create))

	ih := handlers.NewInteractionHandler(timelineSvc)
	mux.Handle("/interactions", methodOnly(http.MethodPost, ih.Create))
	mux.Handle("/interactions/annotate", methodOnly(http.MethodPost, ih.Annotate))
	mux.Handle("/timeline", methodOnly(http.MethodGet, ih.GetTimeline))

	ph := handlers.NewProposalHandler(proposalSvc)
	mux.Handle("/proposals", listCreate(ph.Get, ph.Create))
	mux.Handle("/proposals/send", methodOnly(http.MethodPost, ph.Send))
	mux.Handle("/proposals/view", methodOnly(http.MethodPost, ph.View))
	mux.Handle("/proposals/accept", methodOnly(http.MethodPost, ph.Accept))
	mux.Handle("/proposals/pay", methodOnly(http.MethodPost, ph.Pay))
	mux.Handle("/proposals/expire", methodOnly(http.MethodPost, ph.Expire))

	return withRecover(withLogging(mux))
}

// listCreate dispatches GET to list and POST to create.
func listCreate(list, create http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list(w, r)
		case http.MethodPost:
			create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
}

func methodOnly(method string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		h(w, r)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
