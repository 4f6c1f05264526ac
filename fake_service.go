package webvalve

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// FakeService is a base for fake handlers. It embeds a gorilla/mux router,
// so routes are declared the usual way, relative to the service URL:
//
//	fake := webvalve.NewFakeService()
//	fake.HandleFunc("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
//		webvalve.JSON(w, http.StatusOK, map[string]string{"id": webvalve.Var(r, "id")})
//	}).Methods(http.MethodGet)
//	err := webvalve.Register("FakeUsers", webvalve.WithHandler(fake))
//
// Unknown routes answer 404 with a body naming the unmatched route.
type FakeService struct {
	*mux.Router
}

func NewFakeService() *FakeService {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		JSON(w, http.StatusNotFound, map[string]string{
			"error": "webvalve fake has no route for " + req.Method + " " + req.URL.Path,
		})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		JSON(w, http.StatusMethodNotAllowed, map[string]string{
			"error": "webvalve fake doesn't allow " + req.Method + " " + req.URL.Path,
		})
	})
	return &FakeService{Router: r}
}

// JSON writes v encoded as JSON with given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Var returns the route variable of a request served by a FakeService.
func Var(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}
