package bootstrap

import (
	"time"

	"github.com/gin-gonic/gin"

	"crm-skills-sync/internal/espocrm"
	"crm-skills-sync/internal/extract"
	"crm-skills-sync/internal/llm/openai"
	"crm-skills-sync/internal/server"
	"crm-skills-sync/internal/services/health"
	"crm-skills-sync/internal/shared/config"
	"crm-skills-sync/internal/skillsync"
	"crm-skills-sync/internal/webhook"
)

// App holds shared dependencies.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	CRM         *espocrm.Client
	Cache       *extract.MemoryCache
	Extractor   *extract.Extractor
	SyncService *skillsync.Service
	HealthSvc   *health.Service
}

// Build wires the dependency graph: cache → extractor → CRM gateway → LLM
// client → sync pipeline → HTTP surface.
func Build(cfg config.Config) (*App, error) {
	crm := espocrm.NewClient(cfg.EspoCRMURL, cfg.EspoCRMAPIKey)

	var cache *extract.MemoryCache
	if cfg.EnableCache {
		cache = extract.NewMemoryCache(time.Duration(cfg.CacheTTLHours) * time.Hour)
	}
	// A nil *MemoryCache must not reach the extractor as a non-nil Cache.
	var extractorCache extract.Cache
	if cache != nil {
		extractorCache = cache
	}
	extractor := extract.NewExtractor(cfg.AllowedExtensions(), cfg.MaxFileSizeBytes(), extractorCache)

	llmClient, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	if err != nil {
		return nil, err
	}

	syncSvc := &skillsync.Service{
		CRM:            crm,
		Extractor:      extractor,
		LLM:            llmClient,
		MaxAttachments: cfg.MaxAttachments,
	}

	healthSvc := health.NewService(crm)
	webhookHandler := &webhook.Handler{Processor: syncSvc}

	return &App{
		Config:      cfg,
		Router:      server.NewEngine(healthSvc, webhookHandler),
		CRM:         crm,
		Cache:       cache,
		Extractor:   extractor,
		SyncService: syncSvc,
		HealthSvc:   healthSvc,
	}, nil
}
