package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/riandyrn/otelchi"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskflow/cmd/internal"
	internaldomain "github.com/sanLimbu/taskflow/internal"
	"github.com/sanLimbu/taskflow/internal/elasticsearch"
	"github.com/sanLimbu/taskflow/internal/envvar"
	"github.com/sanLimbu/taskflow/internal/kafka"
	"github.com/sanLimbu/taskflow/internal/memcached"
	"github.com/sanLimbu/taskflow/internal/postgresql"
	"github.com/sanLimbu/taskflow/internal/rabbitmq"
	"github.com/sanLimbu/taskflow/internal/redis"
	"github.com/sanLimbu/taskflow/internal/rest"
	"github.com/sanLimbu/taskflow/internal/service"
)

const serviceName = "tasks-rest-server"

func main() {
	var env, address string

	flag.StringVar(&env, "env", "", "Environment Variables filename")
	flag.StringVar(&address, "address", ":9234", "HTTP Server Address")
	flag.Parse()

	errC, err := run(env, address)
	if err != nil {
		log.Fatalf("Couldn't run: %s", err)
	}

	if err := <-errC; err != nil {
		log.Fatalf("Error while running: %s", err)
	}
}

func run(env, address string) (<-chan error, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "zap.NewProduction")
	}

	if err := envvar.Load(env); err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "envvar.Load")
	}

	vault, err := internal.NewVaultProvider()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewVaultProvider")
	}

	conf := envvar.New(vault)

	pool, err := internal.NewPostgreSQL(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewPostgreSQL")
	}

	metrics, err := internal.NewOTExporter(conf, serviceName)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewOTExporter")
	}

	repo, err := newTaskStore(conf, logger, postgresql.NewTask(pool))
	if err != nil {
		return nil, fmt.Errorf("newTaskStore: %w", err)
	}

	opts, closeBroker, err := newBoardOptions(conf)
	if err != nil {
		return nil, fmt.Errorf("newBoardOptions: %w", err)
	}

	logging := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Info(r.Method,
				zap.Time("time", time.Now()),
				zap.String("url", r.URL.String()),
			)

			h.ServeHTTP(w, r)
		})
	}

	srv := newServer(serverConfig{
		Address:     address,
		Board:       service.NewBoard(logger, repo, opts...),
		Metrics:     metrics,
		Middlewares: []func(next http.Handler) http.Handler{otelchi.Middleware(serviceName), logging},
	})

	errC := make(chan error, 1)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		<-ctx.Done()

		logger.Info("Shutdown signal received")

		ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		defer func() {
			_ = logger.Sync()

			pool.Close()
			closeBroker()
			stop()
			cancel()
			close(errC)
		}()

		srv.SetKeepAlivesEnabled(false)

		if err := srv.Shutdown(ctxTimeout); err != nil {
			errC <- err
		}

		logger.Info("Shutdown completed")
	}()

	go func() {
		logger.Info("Listening and serving", zap.String("address", address))

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errC <- err
		}
	}()

	return errC, nil
}

// newTaskStore decorates the database repository with the cache selected by TASKS_CACHE.
func newTaskStore(conf *envvar.Configuration, logger *zap.Logger, repo *postgresql.Task) (service.TaskRepository, error) {
	kind, err := conf.GetDefault("TASKS_CACHE", "none")
	if err != nil {
		return nil, err
	}

	switch kind {
	case "memcached":
		client, err := internal.NewMemcached(conf)
		if err != nil {
			return nil, fmt.Errorf("internal.NewMemcached: %w", err)
		}

		return memcached.NewTask(client, repo, logger), nil
	case "redis":
		client, err := internal.NewRedis(conf)
		if err != nil {
			return nil, fmt.Errorf("internal.NewRedis: %w", err)
		}

		return redis.NewTask(client, repo, logger), nil
	case "none":
		return repo, nil
	}

	return nil, internaldomain.NewErrorf(internaldomain.ErrorCodeInvalidArgument, "unknown TASKS_CACHE: %s", kind)
}

// newBoardOptions connects the message broker selected by TASKS_BROKER and the search index. The returned func
// releases the broker connection.
func newBoardOptions(conf *envvar.Configuration) ([]service.BoardOption, func(), error) {
	var opts []service.BoardOption

	closeFn := func() {}

	es, err := internal.NewElasticSearch(conf)
	if err != nil {
		return nil, nil, fmt.Errorf("internal.NewElasticSearch: %w", err)
	}

	if es != nil {
		opts = append(opts, service.WithSearch(elasticsearch.NewTask(es)))
	}

	kind, err := conf.GetDefault("TASKS_BROKER", "none")
	if err != nil {
		return nil, nil, err
	}

	switch kind {
	case "kafka":
		producer, err := internal.NewKafkaProducer(conf)
		if err != nil {
			return nil, nil, fmt.Errorf("internal.NewKafkaProducer: %w", err)
		}

		opts = append(opts, service.WithMessageBroker(kafka.NewTask(producer.Producer, producer.Topic)))
		closeFn = func() {
			producer.Producer.Flush(1000)
			producer.Producer.Close()
		}
	case "rabbitmq":
		rmq, err := internal.NewRabbitMQ(conf)
		if err != nil {
			return nil, nil, fmt.Errorf("internal.NewRabbitMQ: %w", err)
		}

		opts = append(opts, service.WithMessageBroker(rabbitmq.NewTask(rmq.Channel)))
		closeFn = rmq.Close
	case "none":
	default:
		return nil, nil, internaldomain.NewErrorf(internaldomain.ErrorCodeInvalidArgument, "unknown TASKS_BROKER: %s", kind)
	}

	return opts, closeFn, nil
}

type serverConfig struct {
	Address     string
	Board       *service.Board
	Metrics     http.Handler
	Middlewares []func(next http.Handler) http.Handler
}

func newServer(conf serverConfig) *http.Server {
	router := chi.NewRouter()
	router.Use(render.SetContentType(render.ContentTypeJSON))

	for _, mw := range conf.Middlewares {
		router.Use(mw)
	}

	rest.RegisterOpenAPI(router)
	rest.NewTaskHandler(conf.Board).Register(router)
	rest.NewDashboardHandler(conf.Board).Register(router)

	router.Handle("/metrics", conf.Metrics)

	lmt := tollbooth.NewLimiter(3, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Second})

	lmtmw := tollbooth.LimitHandler(lmt, router)

	return &http.Server{
		Handler:           lmtmw,
		Addr:              conf.Address,
		ReadTimeout:       1 * time.Second,
		ReadHeaderTimeout: 1 * time.Second,
		WriteTimeout:      1 * time.Second,
		IdleTimeout:       1 * time.Second,
	}
}
