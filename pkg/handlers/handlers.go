package handlers

import (
	"embed"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/dutyboard-api-go/internal/config"
	"github.com/arnavshah/dutyboard-api-go/pkg/auth"
	"github.com/arnavshah/dutyboard-api-go/pkg/database"
	"github.com/arnavshah/dutyboard-api-go/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

//go:embed static/*
var staticEmbed embed.FS

// Handler contains dependencies for the route handlers
type Handler struct {
	DB               *gorm.DB
	Auth             *auth.Authenticator
	Keys             *KeyCache
	Metrics          metrics.Collector
	DefaultRateLimit int
	AdminUsername    string
	AdminPassword    string
	Clock            func() time.Time
}

// New builds a Handler from the application config
func New(cfg *config.AppConfig, db *gorm.DB, collector metrics.Collector) *Handler {
	return &Handler{
		DB:               db,
		Auth:             auth.New(cfg),
		Keys:             NewKeyCache(cfg.KeyCacheTTL),
		Metrics:          collector,
		DefaultRateLimit: cfg.DefaultRateLimit,
		AdminUsername:    cfg.AdminUsername,
		AdminPassword:    cfg.AdminPassword,
	}
}

func (h *Handler) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

func (h *Handler) collector() metrics.Collector {
	if h.Metrics == nil {
		return metrics.Nop{}
	}
	return h.Metrics
}

func bearer(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the HMAC API key, loads its record and enforces the daily rate limit
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}

		clientID, err := h.Auth.VerifyHMACKey(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			return
		}

		apiKey, err := h.lookupKey(key, clientID)
		if err != nil {
			log.Error().Err(err).Str("client", clientID).Msg("API key lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not load API key"})
			return
		}
		if apiKey.Revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key revoked"})
			return
		}

		used, err := database.RequestsOn(h.DB, apiKey.ID, h.now())
		if err != nil {
			log.Warn().Err(err).Uint("key_id", apiKey.ID).Msg("Could not read usage, skipping rate limit")
		} else if apiKey.RateLimit > 0 && used >= apiKey.RateLimit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Daily rate limit exceeded"})
			return
		}

		c.Set("apiKey", &apiKey)
		c.Set("clientID", clientID)
		c.Next()
	}
}

// lookupKey fetches or creates the key record, going through the cache first
func (h *Handler) lookupKey(key, clientID string) (database.APIKey, error) {
	if h.Keys != nil {
		if apiKey, ok := h.Keys.Get(key); ok {
			return apiKey, nil
		}
	}

	var apiKey database.APIKey
	err := h.DB.Where(database.APIKey{Key: key}).FirstOrCreate(&apiKey, database.APIKey{
		Key:        key,
		KeyPreview: auth.KeyPreview(key),
		Name:       clientID,
		RateLimit:  h.DefaultRateLimit,
	}).Error
	if err != nil {
		return database.APIKey{}, err
	}

	now := h.now()
	apiKey.LastUsed = &now
	if err := h.DB.Model(&apiKey).Update("last_used", now).Error; err != nil {
		log.Warn().Err(err).Uint("key_id", apiKey.ID).Msg("Failed to update last_used")
	}

	if h.Keys != nil {
		h.Keys.Put(apiKey)
	}
	return apiKey, nil
}

// RecordUsage records one engine call for the calling API key
func (h *Handler) RecordUsage(c *gin.Context, records, employees int) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists || h.DB == nil {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	if err := database.RecordUsage(h.DB, apiKey.ID, h.now(), records, employees); err != nil {
		log.Warn().Err(err).Uint("key_id", apiKey.ID).Msg("Failed to record usage")
	}
}

// Login handles operator login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var op database.Operator
	if err := h.DB.Where("username = ?", req.Username).First(&op).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, op.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.Auth.CreateToken(op.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey creates a new API key using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		RateLimit int    `json:"rate_limit" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.Contains(req.Name, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must not contain '.'"})
		return
	}
	if req.RateLimit == 0 {
		req.RateLimit = h.DefaultRateLimit
	}

	key := h.Auth.GenerateHMACKey(req.Name)

	// keys are derived from the name, so a name can only be issued once
	var existing database.APIKey
	if err := h.DB.Where(&database.APIKey{Key: key}).Limit(1).Find(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not check existing keys"})
		return
	}
	if existing.ID != 0 {
		msg := "a key for this name already exists"
		if existing.Revoked {
			msg = "the key for this name was revoked, choose another name"
		}
		c.JSON(http.StatusConflict, gin.H{"error": msg, "id": existing.ID})
		return
	}

	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: auth.KeyPreview(key),
		RateLimit:  req.RateLimit,
	}
	if err := h.DB.Create(&apiKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":   apiKey.ID,
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	if err := h.DB.Order("id").Find(&keys).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// findKey loads the key named by the :id path parameter
func (h *Handler) findKey(c *gin.Context) (*database.APIKey, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key id"})
		return nil, false
	}
	var apiKey database.APIKey
	if err := h.DB.First(&apiKey, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return nil, false
	}
	return &apiKey, true
}

// RevokeKey marks an API key as revoked
func (h *Handler) RevokeKey(c *gin.Context) {
	apiKey, ok := h.findKey(c)
	if !ok {
		return
	}
	if err := h.DB.Model(apiKey).Update("revoked", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not revoke key"})
		return
	}
	if h.Keys != nil {
		h.Keys.Invalidate(apiKey.Key)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the daily rate limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}
	// Try JSON first, then Form/Query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}
	if req.RateLimit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	apiKey, ok := h.findKey(c)
	if !ok {
		return
	}
	if err := h.DB.Model(apiKey).Update("rate_limit", req.RateLimit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update key limit"})
		return
	}
	if h.Keys != nil {
		h.Keys.Invalidate(apiKey.Key)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	apiKey, ok := h.findKey(c)
	if !ok {
		return
	}
	usage, err := database.UsageHistory(h.DB, apiKey.ID, usageHistoryDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage, "totals": database.SumUsage(usage)})
}

// AdminInterface serves the admin web interface from embedded files
func (h *Handler) AdminInterface(c *gin.Context) {
	if err := h.Auth.EnsureAdminExists(h.DB, h.AdminUsername, h.AdminPassword); err != nil {
		log.Warn().Err(err).Msg("Could not ensure default operator")
	}

	data, err := staticEmbed.ReadFile("static/index.html")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "static/index.html not found in embedded FS"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// GetStaticFS returns the embedded filesystem for static assets
func (h *Handler) GetStaticFS() http.FileSystem {
	sub, err := fs.Sub(staticEmbed, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
