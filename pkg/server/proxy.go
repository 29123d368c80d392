package server

import (
	"github.com/NeuralTrust/LearnGate/pkg/config"
	"github.com/NeuralTrust/LearnGate/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	ProxyServerDI struct {
		Config    *config.Config
		Logger    *logrus.Logger
		BodyLimit int
		Routers   []router.ServerRouter
	}
	ProxyServer struct {
		*BaseServer
	}
)

func NewProxyServer(di ProxyServerDI) *ProxyServer {
	return &ProxyServer{
		BaseServer: NewBaseServer(di.Config, di.Logger, di.BodyLimit).WithRouters(di.Routers...),
	}
}

func (s *ProxyServer) Run() error {
	return s.listen("proxy", s.Config.Server.ProxyPort)
}

func (s *ProxyServer) Shutdown() error {
	return s.Router.Shutdown()
}
