package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/valyala/fasthttp"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Do(req *fasthttp.Request, resp *fasthttp.Response) error {
	args := m.Called(req, resp)
	return args.Error(0)
}
