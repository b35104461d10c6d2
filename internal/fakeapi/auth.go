package fakeapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"taskdash/internal/api"
)

const ctxUserID = "user_id"

func (s *Server) handleLogin(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, api.LoginResponse{Message: "email and password are required"})
		return
	}

	s.mu.Lock()
	u, ok := s.data.authenticate(req.Email, req.Password)
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusUnauthorized, api.LoginResponse{Message: "Invalid credentials"})
		return
	}

	token, err := s.issueToken(u.ID, u.Email)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not issue token")
		return
	}
	c.JSON(http.StatusOK, api.LoginResponse{Success: true, Token: token})
}

func (s *Server) issueToken(userID int64, email string) (string, error) {
	now := s.now()
	claims := api.Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			respondError(c, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}

		claims := &api.Claims{}
		token, err := jwt.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return s.key, nil
		}, jwt.WithTimeFunc(s.now), jwt.WithLeeway(time.Minute))
		if err != nil || !token.Valid || claims.ID() == 0 {
			respondError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		s.mu.Lock()
		_, known := s.data.users[claims.ID()]
		s.mu.Unlock()
		if !known {
			respondError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		c.Set(ctxUserID, claims.ID())
		c.Next()
	}
}

func callerID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}
