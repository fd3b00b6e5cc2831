package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	accountHandler "github.com/brewtab/brewtab/internal/http/account"
	orderHandler "github.com/brewtab/brewtab/internal/http/order"
	shareHandler "github.com/brewtab/brewtab/internal/http/share"
	staffHandler "github.com/brewtab/brewtab/internal/http/staff"
	walletHandler "github.com/brewtab/brewtab/internal/http/wallet"
)

func New(
	accountsV1 *accountHandler.Handler,
	walletsV1 *walletHandler.Handler,
	sharesV1 *shareHandler.Handler,
	ordersV1 *orderHandler.Handler,
	staffV1 *staffHandler.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			accountsV1.Routes(r)

			r.Route("/{accountID}", func(r chi.Router) {
				walletsV1.Routes(r)
				sharesV1.Routes(r)
				ordersV1.Routes(r)
			})
		})

		r.Route("/staff", staffV1.Routes)
	})

	return router
}
