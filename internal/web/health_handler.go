package web

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/2beens/fitdash/pkg"
)

// SetupStaticRoutes registers the health check and the embedded assets, both reachable without a session.
func SetupStaticRoutes(router *mux.Router) {
	router.HandleFunc("/health", handleHealth).Methods("GET").Name("health")
	router.PathPrefix("/static/").Handler(http.FileServer(http.FS(staticFS))).Methods("GET").Name("static")
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}
