package httpapi

import (
	"net/http"
	"time"

	"drone-telemetry/internal/feed"
	"drone-telemetry/internal/service"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterTelemetryRoutes 遥测数据路由
func (r *Router) RegisterTelemetryRoutes(t *TelemetryHandler) {
	r.Handle("/api/telemetry", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodPost:
			t.Ingest(w, req)
		case http.MethodDelete:
			t.Reset(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	r.Handle("/api/telemetry/latest", methodGet(t.Latest))
	r.Handle("/api/telemetry/history", methodGet(t.History))
	r.Handle("/api/telemetry/stats", methodGet(t.Stats))
}

// RegisterAlertRoutes 报警路由
func (r *Router) RegisterAlertRoutes(a *AlertHandler) {
	r.Handle("/api/ai/alert", methodPost(a.Submit))
	r.Handle("/api/ai/alerts", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			a.History(w, req)
		case http.MethodDelete:
			a.Reset(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// RegisterFeedRoutes feed 控制路由
func (r *Router) RegisterFeedRoutes(f *FeedHandler) {
	r.Handle("/api/mock/status", methodGet(f.Status))
	r.Handle("/api/mock/start", methodPost(f.Start))
	r.Handle("/api/mock/stop", methodPost(f.Stop))
	r.Handle("/api/mock/toggle", methodPost(f.Toggle))
}

// RegisterRatingRoutes 评分代理路由
func (r *Router) RegisterRatingRoutes(h *RatingHandler) {
	r.Handle("/api/drone-rating/predict", methodPost(h.Predict))
	r.Handle("/api/drone-rating/health", methodGet(h.Health))
}

// RegisterWSRoute 实时推送接入
func (r *Router) RegisterWSRoute(h *WSHandler) {
	r.Handle("/ws", methodGet(h.Serve))
}

// RegisterStatusRoute 服务状态
func (r *Router) RegisterStatusRoute(relay *service.Relay, controller *feed.Controller) {
	startedAt := time.Now()
	r.Handle("/api/status", methodGet(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":           "online",
			"feedMode":         string(controller.Mode()),
			"connectedClients": relay.SubscriberCount(),
			"dataPoints":       relay.Count(),
			"uptime":           time.Since(startedAt).Seconds(),
		})
	}))
}

func methodGet(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

func methodPost(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}
