package router

import (
	"database/sql"
	"net/http"

	actionItemHandler "actionitems/internal/actionitem"
	"actionitems/internal/actionitem/repository"
	"actionitems/internal/actionitem/service"
	"actionitems/middleware"
	"actionitems/socket"
)

type Options struct {
	JWTSecret     string
	AllowedOrigin string
}

func Setup(db *sql.DB, hub *socket.Hub, opts Options) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(opts.JWTSecret)

	// Change feed
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserID(r.Context())
		socket.ServeWs(hub, w, r, userID)
	})
	mux.Handle("/ws", auth(wsHandler))

	// REST API
	itemRepo := repository.NewActionItemRepository(db)
	itemService := service.NewActionItemService(itemRepo, hub)
	itemHandler := actionItemHandler.NewActionItemHandler(itemService)

	mux.Handle("/api/action-items", auth(http.HandlerFunc(itemHandler.GetActionItems)))
	mux.Handle("/api/action-items/create", auth(http.HandlerFunc(itemHandler.CreateActionItem)))
	mux.Handle("/api/action-items/update", auth(http.HandlerFunc(itemHandler.UpdateActionItem)))
	mux.Handle("/api/action-items/delete", auth(http.HandlerFunc(itemHandler.DeleteActionItem)))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return middleware.CORSMiddleware(opts.AllowedOrigin)(mux)
}
