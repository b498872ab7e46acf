package auth

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	MaxLoginAttempts   = 20
	LoginAttemptWindow = 5 * time.Minute
)

type Handler struct {
	Tokens       TokenService
	Attempts     *AttemptTracker
	passwordHash []byte
}

// NewHandler hashes the configured admin password once at startup so every
// login check goes through a constant-time bcrypt compare.
func NewHandler(tokens TokenService, attempts *AttemptTracker, adminPassword string) (*Handler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Handler{
		Tokens:       tokens,
		Attempts:     attempts,
		passwordHash: hash,
	}, nil
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.login)
	rg.GET("/me", RequireAdmin(h.Tokens), h.me)
}

type loginReq struct {
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	ip := c.ClientIP()

	if ok, retryAfter := h.Attempts.Allowed(ip); !ok {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts, try again later"})
		return
	}

	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil {
		h.Attempts.RecordFailure(ip)
		log.Printf("[auth] failed login from %s", ip)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect password"})
		return
	}

	token, exp, err := h.Tokens.Sign()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}
