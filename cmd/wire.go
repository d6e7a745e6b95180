package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/bnema/daily-fortune/internal/adapters/cache/memory"
	"github.com/bnema/daily-fortune/internal/adapters/hitokoto"
	fortunerender "github.com/bnema/daily-fortune/internal/adapters/render/fortune"
	"github.com/bnema/daily-fortune/internal/adapters/tianapi"
	"github.com/bnema/daily-fortune/internal/application"
	"github.com/bnema/daily-fortune/internal/config"
	"github.com/bnema/daily-fortune/internal/domain"
	"github.com/bnema/daily-fortune/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type app struct {
	cfg                   config.Config
	logger                zerolog.Logger
	service               *application.Service
	almanacRenderer       func(application.AlmanacResult) (string, error)
	constellationRenderer func(application.ConstellationResult) (string, error)
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(viper.New(), opts.configFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func wireApp(cfg config.Config, logOutput io.Writer) (*app, error) {
	logger, err := config.NewLogger(cfg.Log.Level, cfg.Log.Format, logOutput)
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	clock := ports.SystemClock{}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.TianAPI.TransportCacheTTL > 0 {
		transport = tianapi.NewCachingTransport(transport, cfg.TianAPI.TransportCacheTTL, clock)
	}

	client := tianapi.Client{
		BaseURL:        cfg.TianAPI.BaseURL,
		APIKey:         cfg.TianAPI.Key,
		HTTPClient:     &http.Client{Transport: transport},
		RequestTimeout: cfg.TianAPI.Timeout,
	}
	quotes := hitokoto.Client{
		Mirrors:    cfg.Hitokoto,
		HTTPClient: &http.Client{},
	}

	policy := application.FallbackNone
	if cfg.Fallback {
		policy = application.FallbackPlaceholder
	}
	if cfg.TianAPI.Key == "" {
		logger.Warn().Bool("fallback", cfg.Fallback).Msg("tianapi key is not configured")
	}

	service := application.NewService(application.Dependencies{
		Almanacs:           client,
		Constellations:     client,
		Quotes:             quotes,
		AlmanacCache:       memory.NewStore[domain.AlmanacRecord](cfg.Cache.TTL, clock),
		ConstellationCache: memory.NewStore[domain.ConstellationRecord](cfg.Cache.TTL, clock),
		Clock:              clock,
		Random:             ports.SystemRandom{},
		Logger:             logger,
	}, policy)

	return &app{
		cfg:                   cfg,
		logger:                logger,
		service:               service,
		almanacRenderer:       fortunerender.RenderAlmanac,
		constellationRenderer: fortunerender.RenderConstellation,
	}, nil
}
