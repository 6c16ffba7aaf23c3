package parse

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var parsed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pipeline_parse_requests_total",
	Help: "Parse requests by verdict",
}, []string{"verdict"})

// NewApp builds the validation service. If logger is nil, slog.Default()
// is used.
func NewApp(logger *slog.Logger) *fiber.App {
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New()
	app.Use(cors.New())

	app.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"Ping": "Pong"})
	})

	app.Post("/pipelines/parse", func(c fiber.Ctx) error {
		var req Request
		if err := c.Bind().JSON(&req); err != nil {
			parsed.WithLabelValues("invalid").Inc()
			logger.Debug("reject parse request", "error", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid body"})
		}
		report := Analyze(req)
		verdict := "dag"
		if !report.IsDAG {
			verdict = "cyclic"
		}
		parsed.WithLabelValues(verdict).Inc()
		logger.Info("parsed pipeline", "num_nodes", report.NumNodes, "num_edges", report.NumEdges, "is_dag", report.IsDAG)
		return c.JSON(report)
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app
}
