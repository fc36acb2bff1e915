package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"bloomery/backend/internal/catalog"
	"bloomery/backend/internal/store"
)

// Order matches the locale constants returned by resolveLocale.
var (
	shopLocales   = []string{store.LocaleEnglish, store.LocaleVietnamese}
	localeMatcher = language.NewMatcher([]language.Tag{language.English, language.Vietnamese})
)

func (a *App) listBouquets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bouquets": catalog.All()})
}

func (a *App) getBouquet(c *gin.Context) {
	bouquet, ok := catalog.ByID(c.Param("id"))
	if !ok {
		writeError(c, http.StatusNotFound, "Bouquet not found")
		return
	}
	c.JSON(http.StatusOK, bouquet)
}

func (a *App) searchBouquets(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"query":    query,
		"bouquets": catalog.Search(query),
	})
}

// resolveLocale prefers an explicit ?locale= over Accept-Language and falls
// back to English.
func resolveLocale(explicit, acceptLanguage string) string {
	var desired []language.Tag
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		if tag, err := language.Parse(trimmed); err == nil {
			desired = append(desired, tag)
		}
	}
	if trimmed := strings.TrimSpace(acceptLanguage); trimmed != "" {
		if tags, _, err := language.ParseAcceptLanguage(trimmed); err == nil {
			desired = append(desired, tags...)
		}
	}
	if len(desired) == 0 {
		return store.LocaleEnglish
	}
	_, idx, confidence := localeMatcher.Match(desired...)
	if confidence == language.No || idx < 0 || idx >= len(shopLocales) {
		return store.LocaleEnglish
	}
	return shopLocales[idx]
}

func (a *App) listShopBouquets(c *gin.Context) {
	if a.shop == nil {
		writeError(c, http.StatusServiceUnavailable, "Database not configured")
		return
	}
	locale := resolveLocale(c.Query("locale"), c.GetHeader("Accept-Language"))

	rows, err := a.shop.List(c.Request.Context())
	if err != nil {
		a.logger.Error("list shop bouquets failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Failed to load bouquets")
		return
	}

	items := make([]store.LocalizedBouquet, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.Localize(locale))
	}
	c.Header("Content-Language", locale)
	c.JSON(http.StatusOK, gin.H{
		"locale":   locale,
		"bouquets": items,
	})
}

func (a *App) seedShopBouquets(c *gin.Context) {
	if a.shop == nil {
		writeError(c, http.StatusServiceUnavailable, "Database not configured")
		return
	}
	inserted, err := a.shop.Seed(c.Request.Context())
	if err != nil {
		a.logger.Error("seed shop bouquets failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Failed to seed bouquets")
		return
	}
	a.logger.Info("seeded shop bouquets", zap.Int("count", len(inserted)))
	c.JSON(http.StatusCreated, gin.H{
		"message": "Bouquets seeded!",
		"data":    inserted,
	})
}
