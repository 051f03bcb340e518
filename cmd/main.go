package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"github.com/vnkhanh/daily-pulse/config"
	"github.com/vnkhanh/daily-pulse/controllers"
	"github.com/vnkhanh/daily-pulse/firebase"
	"github.com/vnkhanh/daily-pulse/middleware"
	"github.com/vnkhanh/daily-pulse/questionnaire"
	"github.com/vnkhanh/daily-pulse/questions"
	"github.com/vnkhanh/daily-pulse/routes"
	"github.com/vnkhanh/daily-pulse/session"
	"github.com/vnkhanh/daily-pulse/store"
	"github.com/vnkhanh/daily-pulse/utils"
)

func main() {
	utils.InitLogger("info")

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			NewIdentity,
			NewSessionProvider,
			NewQuestionGateway,
			NewBackend,
			NewRegistry,
			NewAuthLimiter,
			NewGinEngine,
		),
		fx.Provide(
			func(p *session.Provider) controllers.Authenticator { return p },
			controllers.NewAuthController,
			controllers.NewQuestionnaireController,
			func(b Backend, id *firebase.Identity) *controllers.HealthController {
				return controllers.NewHealthController(b.Checker, id, b.Probe)
			},
		),
		fx.Invoke(func(cfg *config.Config) { utils.InitLogger(cfg.LogLevel) }),
		fx.Invoke(StartSessionProvider),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	app.Run()
}

func NewIdentity(cfg *config.Config) (*firebase.Identity, error) {
	return firebase.NewIdentity(context.Background(), cfg.Firebase.APIKey)
}

func NewSessionProvider(identity *firebase.Identity) *session.Provider {
	return session.NewProvider(identity)
}

func NewQuestionGateway(cfg *config.Config) *questions.Gateway {
	return questions.NewGateway(cfg.Questions.URL, &http.Client{Timeout: cfg.Questions.Timeout})
}

// Backend là kho tài liệu được chọn qua STORE_BACKEND.
// Probe chỉ khác nil khi kho là Firestore.
type Backend struct {
	Store   questionnaire.DocumentStore
	Checker controllers.Checker
	Probe   firebase.Prober
}

func NewBackend(lc fx.Lifecycle, cfg *config.Config) (Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendFirestore:
		fs, err := firebase.NewFirestore(context.Background(), cfg.Firebase.ProjectID, cfg.Firebase.DatabaseID)
		if err != nil {
			return Backend{}, err
		}
		return Backend{Store: fs, Checker: fs, Probe: fs}, nil
	case config.BackendPostgres:
		pg, err := store.OpenPostgres(cfg.Store.Database)
		if err != nil {
			return Backend{}, err
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return pg.Close() }})
		return Backend{Store: pg, Checker: pg}, nil
	case config.BackendSupabase:
		sb := store.NewSupabase(cfg.Store.Supabase.URL, cfg.Store.Supabase.Key, cfg.Store.Supabase.Bucket)
		return Backend{Store: sb, Checker: sb}, nil
	case config.BackendMemory:
		mem := store.NewMemory()
		return Backend{Store: mem, Checker: mem}, nil
	}
	return Backend{}, errors.New("unknown store backend: " + cfg.Store.Backend)
}

func NewRegistry(cfg *config.Config, gateway *questions.Gateway, backend Backend, provider *session.Provider) (*questionnaire.Registry, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clock := func() time.Time { return time.Now().In(loc) }
	return questionnaire.NewRegistry(gateway, backend.Store, provider, questionnaire.WithClock(clock)), nil
}

func NewAuthLimiter(lc fx.Lifecycle, cfg *config.Config) *middleware.IPRateLimiter {
	rl := middleware.NewIPRateLimiter(cfg.Auth.RatePerMinute, cfg.Auth.Burst, 5*time.Minute)
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		rl.Stop()
		return nil
	}})
	return rl
}

// StartSessionProvider nối registry vào provider rồi bắt đầu nhận trạng thái đăng nhập.
// Start/Stop chạy đúng một lần theo vòng đời ứng dụng.
func StartSessionProvider(lc fx.Lifecycle, provider *session.Provider, registry *questionnaire.Registry) {
	var cancel func()
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			cancel = provider.Subscribe(registry.OnSessionChanged)
			return provider.Start()
		},
		OnStop: func(ctx context.Context) error {
			provider.Stop()
			if cancel != nil {
				cancel()
			}
			return nil
		},
	})
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}
	return r
}

func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	provider *session.Provider,
	registry *questionnaire.Registry,
	limiter *middleware.IPRateLimiter,
	authCtrl *controllers.AuthController,
	questionnaireCtrl *controllers.QuestionnaireController,
	healthCtrl *controllers.HealthController,
) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Daily pulse server is running")
	})
	routes.SetupRoutes(router, routes.Handlers{
		Auth:          authCtrl,
		Questionnaire: questionnaireCtrl,
		Health:        healthCtrl,
		Sessions:      provider,
		Registry:      registry,
		AuthLimiter:   limiter,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Server listening on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}
