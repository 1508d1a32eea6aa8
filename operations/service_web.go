package operations

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/evergreen-ci/fmtasks"
	"github.com/evergreen-ci/fmtasks/rest/route"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/recovery"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func startWebService() cli.Command {
	return cli.Command{
		Name:   "web",
		Usage:  "start the task API web service",
		Flags:  serviceConfigFlags(),
		Before: mergeBeforeFuncs(setupServiceLogging("fmtasks.web"), requireFileExistsIfSet(confFlagName)),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			defer recovery.LogStackTraceAndExit("fmtasks web service")

			settings, err := loadSettings(c)
			if err != nil {
				return errors.WithStack(err)
			}
			if err = setLogLevel(settings.LogLevel); err != nil {
				return errors.WithStack(err)
			}

			env, err := fmtasks.NewEnvironment(ctx, settings)
			if err != nil {
				return errors.Wrap(err, "configuring application environment")
			}
			defer closeEnvironment(env)

			handler, err := route.GetHandler(env)
			if err != nil {
				return errors.WithStack(err)
			}

			addr := net.JoinHostPort(settings.Api.Host, strconv.Itoa(settings.Api.Port))
			server := getServer(addr, otelhttp.NewHandler(handler, "fmtasks"))

			grip.Notice(message.Fields{
				"build":    fmtasks.BuildRevision,
				"process":  grip.Name(),
				"database": settings.Database.DB,
				"address":  addr,
			})

			go listenForSignals(cancel)

			return errors.WithStack(runServer(ctx, server, fmtasks.APIShutdownTimeout))
		},
	}
}

func getServer(addr string, n http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           n,
		ReadTimeout:       time.Minute,
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      time.Minute,
	}
}

// runServer serves until ctx is canceled, then gives in-flight requests
// up to timeout to finish.
func runServer(ctx context.Context, server *http.Server, timeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		defer recovery.LogStackTraceAndContinue("task API server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serving task API")
	case <-ctx.Done():
	}

	grip.Info(message.Fields{
		"message": "shutting down task API",
		"address": server.Addr,
		"timeout": timeout.String(),
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return errors.Wrap(server.Shutdown(shutdownCtx), "shutting down task API")
}

func listenForSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGTERM, os.Interrupt)
	sig := <-sigChan
	grip.Infof("received %s, terminating", sig)
	cancel()
}

func closeEnvironment(env fmtasks.Environment) {
	ctx, cancel := context.WithTimeout(context.Background(), fmtasks.APIShutdownTimeout)
	defer cancel()

	if err := env.Close(ctx); err != nil {
		grip.Error(message.WrapError(err, message.Fields{
			"message": "closing environment",
		}))
	}
}
