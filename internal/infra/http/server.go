package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roshannn-07/fairpass/internal/config"
	"github.com/roshannn-07/fairpass/internal/domain"
	"github.com/roshannn-07/fairpass/internal/infra/checkinmem"
	"github.com/roshannn-07/fairpass/internal/infra/crypto"
	"github.com/roshannn-07/fairpass/internal/infra/db"
	"github.com/roshannn-07/fairpass/internal/infra/ledger/algod"
	"github.com/roshannn-07/fairpass/internal/infra/ledger/ledgermem"
	"github.com/roshannn-07/fairpass/internal/infra/metrics"
	"github.com/roshannn-07/fairpass/internal/infra/policyopa"
	"github.com/roshannn-07/fairpass/internal/infra/qr"
	"github.com/roshannn-07/fairpass/internal/infra/ratelimit"
	"github.com/roshannn-07/fairpass/internal/pkg/retry"
	"github.com/roshannn-07/fairpass/internal/usecase"
)

type Server struct {
	cfg     config.Config
	r       *gin.Engine
	log     *zap.Logger
	metrics *metrics.Metrics
	store   *db.Store

	verifyUC  *usecase.VerifyTicket
	issueUC   *usecase.IssueTicket
	bulkUC    *usecase.BulkVerify
	checkinUC *usecase.CheckInTicket
	checkins  domain.CheckInRepository

	ledgerMode  string
	retryPolicy retry.Policy
	adminAPIKey string

	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool

	closers []func() error
}

// NewServer wires every dependency from configuration. Key material is
// parsed here so a bad key stops startup instead of failing the first scan.
func NewServer(ctx context.Context, cfg config.Config, log *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{cfg: cfg, log: log, metrics: metrics.New(), ledgerMode: cfg.LedgerMode}
	if err := s.initDeps(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	s.initRateLimit(nil)
	s.initRouter()
	return s, nil
}

type ServerDeps struct {
	Verify      *usecase.VerifyTicket
	Issue       *usecase.IssueTicket
	Bulk        *usecase.BulkVerify
	CheckIn     *usecase.CheckInTicket
	CheckIns    domain.CheckInRepository
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	RateLimiter domain.RateLimiter
	AdminAPIKey string
	LedgerMode  string
	RetryPolicy *retry.Policy
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	s := &Server{
		cfg:         cfg,
		log:         deps.Logger,
		metrics:     deps.Metrics,
		verifyUC:    deps.Verify,
		issueUC:     deps.Issue,
		bulkUC:      deps.Bulk,
		checkinUC:   deps.CheckIn,
		checkins:    deps.CheckIns,
		adminAPIKey: deps.AdminAPIKey,
		ledgerMode:  deps.LedgerMode,
		retryPolicy: retryPolicyFromConfig(cfg),
	}
	if deps.RetryPolicy != nil {
		s.retryPolicy = *deps.RetryPolicy
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.bulkUC == nil && s.verifyUC != nil {
		s.bulkUC = &usecase.BulkVerify{Verify: s.verifyUC, Concurrency: cfg.BulkConcurrency}
	}
	if s.checkins == nil && s.checkinUC != nil {
		s.checkins = s.checkinUC.Repo
	}
	s.initRateLimit(deps.RateLimiter)
	s.initRouter()
	return s
}

func (s *Server) initDeps(ctx context.Context) error {
	s.adminAPIKey = s.cfg.AdminAPIKey
	s.retryPolicy = retryPolicyFromConfig(s.cfg)

	var signer *crypto.Signer
	if s.cfg.SigningPrivateKey != "" {
		var err error
		signer, err = crypto.NewSigner(s.cfg.SigningPrivateKey)
		if err != nil {
			return fmt.Errorf("TICKET_SIGNING_PRIVATE_KEY: %w", err)
		}
	}
	verifier, err := buildVerifier(s.cfg, signer)
	if err != nil {
		return err
	}
	if signer != nil && signer.KeyID() != verifier.KeyID() {
		s.log.Warn("signing key does not match verifying key; issued tickets will not verify here",
			zap.String("signing_key_id", signer.KeyID()),
			zap.String("verifying_key_id", verifier.KeyID()),
		)
	}

	ledger, err := s.buildLedger()
	if err != nil {
		return err
	}

	oracle := &usecase.AssetHoldingOracle{
		Ledger:   ledger,
		Timeout:  s.cfg.LedgerTimeout(),
		Observer: s.metrics,
	}
	s.verifyUC = &usecase.VerifyTicket{
		Verifier: verifier,
		Oracle:   oracle,
		Logger:   s.log.Named("verify"),
		Observer: s.metrics,
	}
	s.bulkUC = &usecase.BulkVerify{Verify: s.verifyUC, Concurrency: s.cfg.BulkConcurrency}
	if signer != nil {
		s.issueUC = &usecase.IssueTicket{
			Signer: signer,
			QR:     qr.Encoder{},
			Ledger: ledger,
			Logger: s.log.Named("issue"),
		}
	}

	store, err := db.NewStore(s.cfg.PostgresDSN, s.log)
	if err != nil {
		return err
	}
	s.store = store
	s.closers = append(s.closers, store.Close)
	if store.Enabled() {
		if s.cfg.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		s.checkins = db.NewCheckInRepository(store.DB)
	} else {
		s.checkins = checkinmem.New()
	}

	var policy usecase.AdmissionPolicy
	if s.cfg.AdmissionPolicyEnabled {
		engine, err := policyopa.NewEngine(ctx, s.cfg.AdmissionPolicyPath)
		if err != nil {
			return fmt.Errorf("admission policy: %w", err)
		}
		s.log.Info("admission policy loaded", zap.String("policy_hash", engine.PolicyHash()))
		policy = engine
	}
	s.checkinUC = &usecase.CheckInTicket{
		Verify: s.verifyUC,
		Policy: policy,
		Repo:   s.checkins,
		Logger: s.log.Named("checkin"),
	}

	s.log.Info("verifier ready",
		zap.String("key_id", verifier.KeyID()),
		zap.String("ledger_mode", s.ledgerMode),
		zap.Bool("issuing_enabled", s.issueUC != nil),
		zap.Bool("db", store.Enabled()),
	)
	return nil
}

func buildVerifier(cfg config.Config, signer *crypto.Signer) (*crypto.Verifier, error) {
	if cfg.VerifyingPublicKey != "" {
		verifier, err := crypto.NewVerifier(cfg.VerifyingPublicKey)
		if err != nil {
			return nil, fmt.Errorf("TICKET_SIGNING_PUBLIC_KEY: %w", err)
		}
		return verifier, nil
	}
	if signer == nil {
		return nil, domain.ErrVerifierConfig
	}
	return crypto.NewVerifierFromKey(signer.PublicKey())
}

func (s *Server) buildLedger() (domain.LedgerReader, error) {
	switch s.cfg.LedgerMode {
	case config.LedgerModeMemory:
		ledger, err := ledgermem.Parse(s.cfg.LedgerMemoryHoldings)
		if err != nil {
			return nil, fmt.Errorf("LEDGER_MEMORY_HOLDINGS: %w", err)
		}
		s.log.Warn("using in-memory ledger; holdings are not read from chain")
		return ledger, nil
	default:
		reader, err := algod.NewReader(algod.Config{
			Address:           s.cfg.AlgodAddress,
			Token:             s.cfg.AlgodToken,
			RequestsPerSecond: float64(s.cfg.LedgerRPS),
			Burst:             s.cfg.LedgerBurst,
		})
		if err != nil {
			return nil, fmt.Errorf("algod: %w", err)
		}
		return reader, nil
	}
}

func retryPolicyFromConfig(cfg config.Config) retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxRetries = cfg.LedgerRetryMax
	return p
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			client, err := ratelimit.NewRedisClient(ratelimit.RedisConfig{
				Addr:     s.cfg.RedisAddr,
				Password: s.cfg.RedisPassword,
				DB:       s.cfg.RedisDB,
			})
			if err == nil {
				if limiter, err := ratelimit.NewRedisLimiter(client, nil); err == nil {
					s.rateLimiter = limiter
					s.closers = append(s.closers, client.Close)
				}
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	s.rateLimitWindow = time.Minute
	if s.cfg.RateLimitWindowSeconds > 0 {
		s.rateLimitWindow = s.cfg.RateLimitWindow()
	}
	s.rateLimitFailClosed = s.cfg.RateLimitFailClosed
}

func (s *Server) initRouter() {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.metrics.Middleware())
	s.r = r
	s.routes()
}

func (s *Server) routes() {
	s.r.GET("/healthz", s.handleHealth)
	s.r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := s.r.Group("/v1")
	{
		v1.POST("/checkins", s.handleCheckIn)
		v1.GET("/checkins/:event_id/:asset_id", s.handleGetCheckIn)
	}

	// Legacy wallet lookup route kept for existing door scanners.
	s.r.POST("/api/verify-ticket", s.handleVerify)

	s.r.NoRoute(s.handleNoRoute)
}

func (s *Server) Handler() http.Handler {
	return s.r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.Close()
}

func (s *Server) Close() error {
	var errs []error
	for _, closer := range s.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
