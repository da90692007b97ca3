package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func RegisterRoutes(h *Handler) http.Handler {
	router := mux.NewRouter()

	// Point set endpoints
	router.HandleFunc("/pointsets", h.CreatePointSet).Methods("POST")
	router.HandleFunc("/pointsets", h.ListPointSets).Methods("GET")
	router.HandleFunc("/pointsets/{name}", h.GetPointSet).Methods("GET")
	router.HandleFunc("/pointsets/{name}", h.DeletePointSet).Methods("DELETE")

	// Lookup endpoints
	router.HandleFunc("/pointsets/{name}/query", h.QueryPointSet).Methods("POST")
	router.HandleFunc("/pointsets/{name}/nearby", h.NearbyHandler).Methods("GET")
	router.HandleFunc("/pointsets/{name}/tree", h.TreeHandler).Methods("GET")

	// Add CORS support
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	return cors(router)
}
