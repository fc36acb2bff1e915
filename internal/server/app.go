package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"bloomery/backend/internal/config"
	"bloomery/backend/internal/identity"
	"bloomery/backend/internal/meaning"
	"bloomery/backend/internal/observability"
	"bloomery/backend/internal/recommend"
	"bloomery/backend/internal/store"
)

const jwtAlgorithm = "HS256"

// UserReader loads users synced by the identity webhook.
type UserReader interface {
	GetUser(ctx context.Context, id string) (store.UserRecord, error)
}

// ShopCatalog is the localized bouquet table.
type ShopCatalog interface {
	List(ctx context.Context) ([]store.Bouquet, error)
	Seed(ctx context.Context) ([]store.Bouquet, error)
}

// Deps are the collaborators the HTTP layer dispatches to. Users and Shop may
// be nil when no database is configured; their routes then answer 503.
type Deps struct {
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Recommender *recommend.Service
	Meanings    *meaning.Generator
	Webhooks    *identity.Handler
	Users       UserReader
	Shop        ShopCatalog
}

type App struct {
	cfg         config.Config
	logger      *zap.Logger
	metrics     *observability.Metrics
	recommender *recommend.Service
	meanings    *meaning.Generator
	webhooks    *identity.Handler
	users       UserReader
	shop        ShopCatalog
	limiter     *ipRateLimiter
}

func New(cfg config.Config, deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	webhooks := deps.Webhooks
	if webhooks == nil {
		webhooks = identity.NewHandler(nil, nil, logger)
	}
	return &App{
		cfg:         cfg,
		logger:      logger,
		metrics:     metrics,
		recommender: deps.Recommender,
		meanings:    deps.Meanings,
		webhooks:    webhooks,
		users:       deps.Users,
		shop:        deps.Shop,
		limiter:     newIPRateLimiter(cfg.ChatRateLimitPerMinute, time.Now),
	}
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(a.requestLogger(), gin.CustomRecovery(a.recoverPanic))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", a.health)
	router.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	hooks := router.Group("/api/webhooks")
	hooks.GET("/clerk", a.clerkWebhookStatus)
	hooks.POST("/clerk", a.clerkWebhook)

	api := router.Group(a.cfg.APIPrefix)
	api.GET("/bouquets", a.listBouquets)
	api.GET("/bouquets/search", a.searchBouquets)
	api.GET("/bouquets/:id", a.getBouquet)
	api.GET("/shop/bouquets", a.listShopBouquets)
	api.POST("/cart/quote", a.quoteCart)
	api.GET("/me", a.authMiddleware(), a.getMe)
	api.POST("/admin/bouquets/seed", a.serviceRoleMiddleware(), a.seedShopBouquets)

	limited := api.Group("", a.rateLimitMiddleware())
	limited.POST("/recommendations", a.createRecommendation)
	limited.POST("/recommendations/stream", a.streamRecommendation)
	limited.POST("/meanings", a.createMeaning)

	return router
}

func (a *App) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "bloomery-api",
	})
}

// requestLogger logs one line per request and feeds the HTTP metrics.
func (a *App) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		a.metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		a.metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("client_ip", c.ClientIP()),
		}
		if status >= http.StatusInternalServerError {
			a.logger.Warn("http request", fields...)
			return
		}
		a.logger.Info("http request", fields...)
	}
}

func (a *App) recoverPanic(c *gin.Context, recovered any) {
	a.logger.Error("handler panicked",
		zap.String("path", c.Request.URL.Path),
		zap.Any("panic", recovered),
	)
	writeError(c, http.StatusInternalServerError, "Internal server error")
}

// authMiddleware accepts the Supabase-template session JWT and stores its
// subject under "authUserID".
func (a *App) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}
		tokenString := strings.TrimSpace(authHeader[len("Bearer "):])
		if tokenString == "" {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if token.Method == nil || token.Method.Alg() != jwtAlgorithm {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(a.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			writeError(c, http.StatusUnauthorized, "Invalid bearer token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(c, http.StatusUnauthorized, "Invalid token payload")
			return
		}
		if a.cfg.JWTAudience != "" && !claimHasAudience(claims["aud"], a.cfg.JWTAudience) {
			writeError(c, http.StatusUnauthorized, "Invalid token audience")
			return
		}
		sub, _ := claims["sub"].(string)
		sub = strings.TrimSpace(sub)
		if sub == "" {
			writeError(c, http.StatusUnauthorized, "Token subject missing")
			return
		}

		c.Set("authUserID", sub)
		c.Next()
	}
}

func claimHasAudience(value any, audience string) bool {
	switch v := value.(type) {
	case string:
		return v == audience
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == audience {
				return true
			}
		}
	case []string:
		for _, item := range v {
			if item == audience {
				return true
			}
		}
	}
	return false
}

func authUserIDFromContext(c *gin.Context) (string, bool) {
	raw, ok := c.Get("authUserID")
	if !ok {
		return "", false
	}
	id, ok := raw.(string)
	return id, ok && id != ""
}

// serviceRoleMiddleware guards operator routes with the Supabase service-role key.
func (a *App) serviceRoleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := strings.TrimSpace(a.cfg.ServiceRoleKey)
		if expected == "" {
			writeError(c, http.StatusServiceUnavailable, "Service role key not configured")
			return
		}
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}
		provided := strings.TrimSpace(authHeader[len("Bearer "):])
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			writeError(c, http.StatusForbidden, "Service role key required")
			return
		}
		c.Next()
	}
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}
