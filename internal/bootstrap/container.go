package bootstrap

import (
	"context"
	"log"

	"qa-paper-be/internal/artifact"
	"qa-paper-be/internal/config"
	"qa-paper-be/internal/controller"
	"qa-paper-be/internal/knowledge"
	"qa-paper-be/internal/orchestrator"
	"qa-paper-be/internal/parser"
	"qa-paper-be/internal/pkg/logger"
	"qa-paper-be/internal/queue"
	"qa-paper-be/internal/repository/contract"
	"qa-paper-be/internal/repository/implementation"
	"qa-paper-be/internal/service"
	"qa-paper-be/internal/session"
	"qa-paper-be/pkg/embedding"
	"qa-paper-be/pkg/llm/client"
	"qa-paper-be/pkg/llm/factory"
	"qa-paper-be/pkg/pipeline"

	pktNats "qa-paper-be/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	JobController   controller.IJobController
	AdminController controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService queue.IConsumerService

	// Shared infrastructure
	SessionStore  session.Store
	ArtifactStore artifact.Store
	Logger        *logger.ZapLogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	pubSub := queue.NewPubSub()

	// 3. Session Store
	var sessionStore session.Store
	if cfg.App.SessionBackend == "memory" {
		sessionStore = session.NewMemoryStore(cfg.Pipeline.SessionTTL)
		log.Printf("[INFO] Using Session Backend: MEMORY")
	} else {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		sessionStore = session.NewRedisStore(rdb, cfg.Pipeline.SessionTTL)
		log.Printf("[INFO] Using Session Backend: REDIS")
	}

	// 4. Knowledge Retrieval
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.GeminiKey != "" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		log.Printf("[WARN] No embedding provider configured, retrieval degrades to keyword search")
	}

	var knowledgeRepo contract.KnowledgeRepository
	if db != nil {
		knowledgeRepo = implementation.NewKnowledgeRepository(db, sysLogger)
	} else {
		log.Printf("[WARN] No database configured, answers rely on general knowledge only")
	}
	retriever := knowledge.NewCorpusRetriever(knowledgeRepo, embeddingProvider, cfg.Pipeline.ScoreThreshold, sysLogger)

	// 5. Provider Client + Pipeline Factory
	pipelineFactory := NewPipelineFactory(cfg, retriever, sysLogger)

	// 6. Artifacts
	artifactStore, err := artifact.NewFileStore(cfg.Artifact.Dir, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize artifact store: %v", err)
	}
	renderer := artifact.NewMarkdownRenderer(artifactStore)

	// 7. NATS progress mirror (optional)
	var eventPublisher orchestrator.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
	}

	// 8. Orchestrator + Queue
	orch := orchestrator.NewOrchestrator(
		sessionStore,
		pipelineFactory,
		renderer,
		eventPublisher,
		cfg.Pipeline,
		sysLogger,
	)

	workerLogger := logger.NewIsolatedLogger("logs/worker.log")
	jobPublisher := queue.NewJobPublisher(pubSub, cfg.Pipeline.JobTopic)
	consumerService := queue.NewConsumerService(pubSub, cfg.Pipeline.JobTopic, orch, workerLogger)

	// 9. Services
	inputParser := parser.NewTextParser(cfg.Artifact.MaxUploadSize)
	jobService := service.NewJobService(sessionStore, inputParser, jobPublisher, artifactStore, sysLogger)
	adminService := service.NewAdminService(sysLogger, knowledgeRepo)

	// 10. Controllers
	return &Container{
		JobController:   controller.NewJobController(jobService),
		AdminController: controller.NewAdminController(adminService),
		ConsumerService: consumerService,
		SessionStore:    sessionStore,
		ArtifactStore:   artifactStore,
		Logger:          sysLogger,
	}
}

// pipelineFactory builds a question pipeline per job, honoring the job's
// provider preference against the configured fallback order. Providers
// without credentials are skipped.
type pipelineFactory struct {
	cfg       *config.Config
	retriever knowledge.Retriever
	log       logger.ILogger
}

func NewPipelineFactory(cfg *config.Config, retriever knowledge.Retriever, log logger.ILogger) orchestrator.PipelineFactory {
	return &pipelineFactory{cfg: cfg, retriever: retriever, log: log}
}

func (f *pipelineFactory) Pipeline(preferred string) (*pipeline.QuestionPipeline, error) {
	order := factory.ResolveOrder(preferred, f.cfg.Ai.ProviderOrder)

	var providers []client.NamedProvider
	for _, name := range order {
		key, model := f.credentials(name)
		if key == "" {
			continue
		}
		p, err := factory.NewProvider(name, key, model)
		if err != nil {
			return nil, err
		}
		providers = append(providers, client.NamedProvider{Name: name, Provider: p})
	}

	policy := client.RetryPolicy{
		MaxAttempts: retryAttempts(f.cfg.Pipeline.MaxRetries),
		BaseDelay:   f.cfg.Pipeline.RetryBaseDelay,
		Jitter:      0.5,
	}
	fallback, err := client.NewFallbackClient(providers, policy, f.log)
	if err != nil {
		return nil, err
	}

	return pipeline.NewQuestionPipeline(
		f.retriever,
		fallback,
		f.cfg.Pipeline.ContextBudget,
		f.cfg.Pipeline.TopK,
		f.log,
	), nil
}

// retryAttempts guards the int-to-uint conversion: a zero or negative
// configured value would otherwise wrap into an enormous retry budget.
func retryAttempts(n int) uint {
	if n < 1 {
		return 1
	}
	return uint(n)
}

func (f *pipelineFactory) credentials(name string) (key, model string) {
	switch name {
	case "openai":
		return f.cfg.Ai.OpenAIKey, f.cfg.Ai.OpenAIModel
	case "anthropic":
		return f.cfg.Ai.AnthropicKey, f.cfg.Ai.AnthropicModel
	case "gemini":
		return f.cfg.Ai.GeminiKey, f.cfg.Ai.GeminiModel
	case "perplexity":
		return f.cfg.Ai.PerplexityKey, f.cfg.Ai.PerplexityModel
	default:
		return "", ""
	}
}
