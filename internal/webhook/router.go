package webhook

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Static — каталоги, раздаваемые как есть
type Static struct {
	UploadDir  string
	ReceiptDir string
}

// NewRouter собирает маршруты вебхука, бэк-офиса и статики
func NewRouter(h *Handler, a *Admin, static Static) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "running"})
	})

	if h != nil {
		h.RegisterRoutes(r)
	}
	if a != nil {
		a.RegisterRoutes(r)
	}

	if static.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(static.UploadDir))))
	}
	if static.ReceiptDir != "" {
		r.Handle("/receipts/*", http.StripPrefix("/receipts/", http.FileServer(http.Dir(static.ReceiptDir))))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		Error(w, http.StatusNotFound, "invalid endpoint: "+r.URL.Path)
	})
	return r
}
