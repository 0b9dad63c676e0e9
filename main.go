package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	catalogx "github.com/tanpawarit/shopmate-assistant/assistant/catalog"
	dialoguex "github.com/tanpawarit/shopmate-assistant/assistant/dialogue"
	intentx "github.com/tanpawarit/shopmate-assistant/assistant/intent"
	storex "github.com/tanpawarit/shopmate-assistant/assistant/store"
	"github.com/tanpawarit/shopmate-assistant/httpapi"
	configx "github.com/tanpawarit/shopmate-assistant/pkg/config"
	geminix "github.com/tanpawarit/shopmate-assistant/pkg/gemini"
	_ "github.com/tanpawarit/shopmate-assistant/pkg/logger/autoload"
)

type AppConfig struct {
	Addr string `envconfig:"ADDR" default:":3001"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")

	dbCfg := configx.MustNew[storex.Config]("DATABASE")
	db, err := storex.NewDB(*dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := storex.InitSchema(ctx, db); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("init schema")
	}
	cancel()

	users := storex.NewUserStore(db)
	orders := storex.NewOrderStore(db)
	returns := storex.NewReturnStore(db)

	catalogCfg := configx.MustNew[catalogx.Config]("CATALOG")
	catalog, err := catalogx.NewClient(*catalogCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create catalog client")
	}

	rules := intentx.NewRuleClassifier()
	source := intentx.NewFallbackSource(nil, rules)

	geminiCfg := configx.MustNew[geminix.Config]("GEMINI")
	if client := geminix.NewClient(*geminiCfg); client != nil {
		extractor, err := intentx.NewLLMExtractor(client, intentx.LLMConfig{
			Model:       geminiCfg.Model,
			Temperature: geminiCfg.Temperature,
			MaxTokens:   geminiCfg.MaxCompletionToken,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("create llm extractor")
		}
		source = intentx.NewFallbackSource(extractor, rules)
	} else {
		log.Warn().Msg("no gemini api key, using rule-based classifier only")
	}

	agent, err := dialoguex.New(users, orders, returns, source, catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("create dialogue agent")
	}

	server, err := httpapi.NewServer(agent, catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("create http server")
	}

	log.Info().Str("addr", appCfg.Addr).Msg("shopmate assistant listening")
	if err := http.ListenAndServe(appCfg.Addr, server.Handler()); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}
