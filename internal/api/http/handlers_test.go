package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/go-chi/httplog/v2"
	"github.com/robustonian/url-shortener/internal/database"
	"github.com/robustonian/url-shortener/internal/models"
	"github.com/robustonian/url-shortener/internal/service"
	"github.com/robustonian/url-shortener/pkg/response"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testBaseURL = "http://localhost:8000"

type MockURLService struct {
	mock.Mock
}

func (s *MockURLService) ShortenURL(ctx context.Context, targetURL string) (*models.URL, error) {
	args := s.Called(ctx, targetURL)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (s *MockURLService) ResolveShortCode(ctx context.Context, code string) (*models.URL, error) {
	args := s.Called(ctx, code)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (s *MockURLService) GetURLStats(ctx context.Context, code string) (*models.URL, error) {
	args := s.Called(ctx, code)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

type HandlersTestSuite struct {
	suite.Suite
	logger     *httplog.Logger
	urlSvcMock *MockURLService
	server     *httptest.Server
	e          *httpexpect.Expect
}

func (suite *HandlersTestSuite) SetupSuite() {
	suite.logger = httplog.NewLogger("", httplog.Options{Writer: io.Discard})
}

func (suite *HandlersTestSuite) SetupSubTest() {
	suite.urlSvcMock = new(MockURLService)
	router := NewRouter(suite.logger, suite.urlSvcMock, testBaseURL)
	suite.server = httptest.NewServer(router)
	suite.e = httpexpect.Default(suite.T(), suite.server.URL)
}

func (suite *HandlersTestSuite) TearDownSubTest() {
	suite.urlSvcMock.AssertExpectations(suite.T())
	suite.server.Close()
}

func (suite *HandlersTestSuite) TestPing() {
	suite.Run("success", func() {
		suite.e.GET("/ping").
			Expect().
			Status(http.StatusOK).
			Text().IsEqual("pong\n")
	})
}

func (suite *HandlersTestSuite) TestShortenURL() {
	const path = "/shorten"

	suite.Run("empty request body", func() {
		suite.e.POST(path).
			Expect().
			Status(http.StatusBadRequest).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.EmptyRequestBodyResponse.Message)
	})

	suite.Run("invalid request body", func() {
		suite.e.POST(path).
			WithJSON("invalid body").
			Expect().
			Status(http.StatusBadRequest).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.BadRequestResponse.Message)
	})

	suite.Run("missing url field", func() {
		suite.e.POST(path).
			WithJSON(map[string]string{}).
			Expect().
			Status(http.StatusUnprocessableEntity).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			ContainsKey("details")
	})

	suite.Run("url rejected by service", func() {
		wantErr := fmt.Errorf("service.URLService.ShortenURL: %w",
			fmt.Errorf("%w: url must start with http:// or https://", service.ErrInvalidURL))

		suite.urlSvcMock.On("ShortenURL", mock.Anything, "ftp://x.com").
			Return(nil, wantErr).Once()

		suite.e.POST(path).
			WithJSON(map[string]string{"url": "ftp://x.com"}).
			Expect().
			Status(http.StatusUnprocessableEntity).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("error", "Validation Error")
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.On("ShortenURL", mock.Anything, "https://example.com").
			Return(nil, errors.New("unknown error")).Once()

		suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com"}).
			Expect().
			Status(http.StatusInternalServerError).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ServerErrorResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.On("ShortenURL", mock.Anything, "https://example.com/a").
			Return(&models.URL{Code: "abc123", TargetURL: "https://example.com/a"}, nil).Once()

		suite.e.POST(path).
			WithJSON(map[string]string{"url": "https://example.com/a"}).
			Expect().
			Status(http.StatusOK).
			HasContentType("application/json").
			JSON().Object().
			HasValue("code", "abc123").
			HasValue("short_url", testBaseURL+"/abc123")
	})
}

func (suite *HandlersTestSuite) TestRedirect() {
	suite.Run("url not found", func() {
		suite.urlSvcMock.On("ResolveShortCode", mock.Anything, "doesnotexist").
			Return(nil, database.ErrURLNotFound).Once()

		suite.e.GET("/doesnotexist").
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusNotFound).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ResourceNotFoundResponse.Message)
	})

	suite.Run("server error", func() {
		suite.urlSvcMock.On("ResolveShortCode", mock.Anything, "abc123").
			Return(nil, errors.New("unknown error")).Once()

		suite.e.GET("/abc123").
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusInternalServerError)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.On("ResolveShortCode", mock.Anything, "abc123").
			Return(&models.URL{Code: "abc123", TargetURL: "https://example.com/a", Visits: 1}, nil).Once()

		suite.e.GET("/abc123").
			WithRedirectPolicy(httpexpect.DontFollowRedirects).
			Expect().
			Status(http.StatusTemporaryRedirect).
			Header("Location").IsEqual("https://example.com/a")
	})
}

func (suite *HandlersTestSuite) TestGetURLStats() {
	suite.Run("url not found", func() {
		suite.urlSvcMock.On("GetURLStats", mock.Anything, "doesnotexist").
			Return(nil, database.ErrURLNotFound).Once()

		suite.e.GET("/_stats/doesnotexist").
			Expect().
			Status(http.StatusNotFound).
			HasContentType("application/json").
			JSON().Object().
			HasValue("status", response.StatusError).
			HasValue("message", response.ResourceNotFoundResponse.Message)
	})

	suite.Run("success", func() {
		suite.urlSvcMock.On("GetURLStats", mock.Anything, "abc123").
			Return(&models.URL{Code: "abc123", TargetURL: "https://example.com/a", Visits: 3}, nil).Once()

		suite.e.GET("/_stats/abc123").
			Expect().
			Status(http.StatusOK).
			HasContentType("application/json").
			JSON().Object().
			HasValue("code", "abc123").
			HasValue("target", "https://example.com/a").
			HasValue("visits", 3)
	})
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
