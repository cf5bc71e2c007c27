package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echolog "github.com/labstack/gommon/log"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/authz"
	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/messaging"
	"github.com/trezcool/shule/core/project"
	"github.com/trezcool/shule/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger        core.Logger
		Authz         *authz.Engine
		UserSvc       user.Service
		ClassSvc      *classroom.ClassService
		PostSvc       *classroom.PostService
		TaskSvc       *classroom.TaskService
		SubmissionSvc *classroom.SubmissionService
		MessageSvc    *messaging.Service
		ProjectSvc    *project.Service
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts   *Options
		app    *echo.Echo
		errCh  chan error
		shutCh chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:   opts,
		app:    echo.New(),
		errCh:  make(chan error, 1),
		shutCh: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: echolog.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAuthAPI(api, jwt, s.opts.UserSvc)
	registerUserAPI(api, jwt, s.opts.Authz, s.opts.UserSvc)
	registerClassAPI(api, jwt, s.opts.Authz, s.opts.ClassSvc)
	registerPostAPI(api, jwt, s.opts.Authz, s.opts.PostSvc)
	registerTaskAPI(api, jwt, s.opts.Authz, s.opts.TaskSvc)
	registerSubmissionAPI(api, jwt, s.opts.Authz, s.opts.SubmissionSvc)
	registerMessageAPI(api, jwt, s.opts.Authz, s.opts.MessageSvc)
	registerProjectAPI(api, jwt, s.opts.Authz, s.opts.ProjectSvc)
	registerGroupAPI(api, jwt, s.opts.Authz, s.opts.ProjectSvc)
}

func (s *server) Start() {
	signal.Notify(s.shutCh, syscall.SIGINT, syscall.SIGTERM)
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.errCh <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error { return s.errCh }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutCh }

// signalShutdown is called by the error handler on an integrity error.
func (s *server) signalShutdown() {
	s.shutCh <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
