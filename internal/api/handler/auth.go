package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"
)

// generateJWT signs a feed token for one viewer.
func (h *Handler) generateJWT(viewerID string) (string, error) {
	claims := jwt.MapClaims{
		"viewer_id": viewerID,
		"exp":       time.Now().Add(time.Hour * 72).Unix(),
		"iss":       "roomgogo-service",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}

// validateAndGetViewerID checks the token signature and expiry and extracts
// the viewer identifier.
func (h *Handler) validateAndGetViewerID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return h.JWTSecret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	viewerID, ok := claims["viewer_id"].(string)
	if !ok || viewerID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return viewerID, nil
}

// IssueToken exchanges the operator secret for a feed token and a generated
// viewer ID.
func (h *Handler) IssueToken(c *gin.Context) {
	var req struct {
		Secret string `json:"secret"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if h.OpsSecret == "" || req.Secret != h.OpsSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid operator secret"})
		return
	}

	viewerUUID, _ := uuid.NewRandom()
	viewerID := viewerUUID.String()

	token, err := h.generateJWT(viewerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "viewer_id": viewerID})
}
