package apiapp

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/avelichko/matchbook/internal/config"
	authsvc "github.com/avelichko/matchbook/internal/services/auth"
	discoverysvc "github.com/avelichko/matchbook/internal/services/discovery"
	likessvc "github.com/avelichko/matchbook/internal/services/likes"
	matchessvc "github.com/avelichko/matchbook/internal/services/matches"
	mediasvc "github.com/avelichko/matchbook/internal/services/media"
	messagessvc "github.com/avelichko/matchbook/internal/services/messages"
	profilessvc "github.com/avelichko/matchbook/internal/services/profiles"
	"github.com/avelichko/matchbook/internal/transport/http/handlers"
)

type Dependencies struct {
	JWTManager       *authsvc.JWTManager
	DiscoveryService *discoverysvc.Service
	ProfilesService  *profilessvc.Service
	LikesService     *likessvc.Service
	MatchesService   *matchessvc.Service
	MessagesService  *messagessvc.Service
	MediaService     *mediasvc.Service
	Logger           *zap.Logger
	Config           config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	discoveryHandler := handlers.NewDiscoveryHandler(deps.DiscoveryService)
	filtersHandler := handlers.NewFiltersHandler(deps.ProfilesService)
	likesHandler := handlers.NewLikesHandler(deps.LikesService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchesService)
	messagesHandler := handlers.NewMessagesHandler(deps.MessagesService)
	profileHandler := handlers.NewProfileHandler(deps.ProfilesService, deps.MediaService)

	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW)

		// The event stream stays open longer than any request deadline,
		// so it is mounted outside the timeout group.
		r.Get("/matches/{matchID}/messages/subscribe", messagesHandler.Subscribe)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(deps.Config.HTTP.RequestTimeout))

			r.Get("/discovery", discoveryHandler.Page)

			r.Get("/filters", filtersHandler.Get)
			r.Put("/filters", filtersHandler.Save)

			r.Post("/likes", likesHandler.Record)
			r.Get("/likes/incoming", likesHandler.Incoming)

			r.Get("/matches", matchesHandler.List)
			r.Post("/matches/{matchID}/unmatch", matchesHandler.Unmatch)

			r.Post("/matches/{matchID}/messages", messagesHandler.Send)
			r.Get("/matches/{matchID}/messages", messagesHandler.History)
			r.Post("/matches/{matchID}/messages/read", messagesHandler.MarkRead)

			r.Get("/profile", profileHandler.Get)
			r.Put("/profile", profileHandler.Save)
			r.Delete("/profile", profileHandler.Terminate)
			r.Post("/profile/photo", profileHandler.UploadPhoto)
			r.Delete("/profile/photo", profileHandler.DeletePhoto)
		})
	})
}
