package server

import (
	"github.com/NeuralTrust/LearnGate/pkg/config"
	"github.com/NeuralTrust/LearnGate/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const MetricsPath = "/metrics"

type MetricsServer struct {
	*BaseServer
}

// NewMetricsServer serves the gateway's private Prometheus registry.
func NewMetricsServer(cfg *config.Config, logger *logrus.Logger) *MetricsServer {
	s := &MetricsServer{
		BaseServer: NewBaseServer(cfg, logger, DefaultBodyLimit),
	}
	s.Router.Use(recover.New())
	handler := fasthttpadaptor.NewFastHTTPHandler(prometheus.Handler())
	s.Router.Get(MetricsPath, func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	})
	return s
}

func (s *MetricsServer) Run() error {
	return s.listen("metrics", s.Config.Server.MetricsPort)
}

func (s *MetricsServer) Shutdown() error {
	return s.Router.Shutdown()
}
