package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fcagreatgoals/injector"
	injectorchi "github.com/fcagreatgoals/injector/chi"
)

const keyGreeting = "greeting"

// visitStore counts greetings per name.
type visitStore struct {
	mu     sync.Mutex
	counts map[string]int
	logger *slog.Logger
}

func newVisitStore(logger *slog.Logger) *visitStore {
	return &visitStore{counts: make(map[string]int), logger: logger}
}

func (s *visitStore) Visit(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[name]++
	return s.counts[name]
}

func (s *visitStore) Snapshot() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

func (s *visitStore) Close() error {
	s.logger.Info("visit store closed", "names", len(s.Snapshot()))
	return nil
}

type greeter struct {
	greeting string
	store    *visitStore
}

func newGreeter(greeting string, store *visitStore) *greeter {
	return &greeter{greeting: greeting, store: store}
}

func (g *greeter) Greet(name string) string {
	n := g.store.Visit(name)
	return fmt.Sprintf("%s, %s! (visit %d)", g.greeting, name, n)
}

// handler is built per request; its dependencies are injected as properties.
type handler struct {
	Greeter *greeter
	Store   *visitStore
}

func (h *handler) Hello(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(h.Greeter.Greet(chi.URLParam(r, "name"))))
}

func (h *handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Store.Snapshot())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func appModule(logger *slog.Logger, greeting string) injector.ModuleOption {
	return injector.NewModule("app",
		injector.Declared[*visitStore](
			injector.Constructor(newVisitStore),
			injector.InjectParam(0, nil),
		),
		injector.Declared[*greeter](
			injector.Constructor(newGreeter),
			injector.InjectParam(0, keyGreeting),
			injector.InjectParam(1, nil),
		),
		injector.Declared[*handler](
			injector.InjectProperty("Greeter", nil),
			injector.InjectProperty("Store", nil),
		),

		injector.Register(injector.Class[*slog.Logger](), logger),
		injector.Register(keyGreeting, greeting),
		injector.Injectable[*visitStore](injector.Eager()),
		injector.Injectable[*greeter](injector.AsSingleton(), injector.Lazy(true)),
	)
}

// registrations lists every registration of c, ordered by key.
func registrations(c *injector.Container) []injector.RegistrationInfo {
	var infos []injector.RegistrationInfo
	for _, key := range c.Keys() {
		if info, ok := c.Inspect(key); ok {
			infos = append(infos, info)
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		return fmt.Sprint(infos[i].Key) < fmt.Sprint(infos[j].Key)
	})
	return infos
}

func newRouter(c *injector.Container) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(injectorchi.ContainerMiddleware(c))

	r.Get("/hello/{name}", injectorchi.Handle((*handler).Hello))
	r.Get("/stats", injectorchi.Invoke[*handler]("Stats"))
	r.Get("/debug/registrations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, registrations(c))
	})

	return r
}
