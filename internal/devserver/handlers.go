// internal/devserver/handlers.go
package devserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"chronoshop/internal/domain/user"
	xerrors "chronoshop/internal/pkg/errors"
	"chronoshop/internal/pkg/response"
)

// ========== Auth ==========

func (s *Server) handleRegister(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to hash password", err)
		return
	}

	u, err := s.store.createUser(req.Email, req.FullName, hash)
	if err != nil {
		response.Error(c, http.StatusConflict, "email already registered", err)
		return
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID), zap.String("email", u.Email))
	s.respondWithTokens(c, http.StatusCreated, "registration successful", u)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	rec, ok := s.store.userByEmail(req.Email)
	if !ok {
		response.Unauthorized(c, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(req.Password)); err != nil {
		response.Unauthorized(c, "invalid credentials")
		return
	}

	u := rec.User
	s.logger.Info("user logged in", zap.String("user_id", u.ID))
	s.respondWithTokens(c, http.StatusOK, "login successful", &u)
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req user.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	userID, jti, err := s.tokens.Verify(req.RefreshToken, "refresh")
	if err != nil {
		response.Unauthorized(c, "invalid or expired refresh token")
		return
	}
	if owner, ok := s.store.refreshOwner(jti); !ok || owner != userID {
		response.Unauthorized(c, "refresh token revoked")
		return
	}

	access, _, err := s.tokens.Access(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to generate token", err)
		return
	}

	response.Success(c, http.StatusOK, "token refreshed", user.RefreshResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.cfg.AccessTTL.Seconds()),
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	userID := c.GetString("user_id")
	s.store.revokeAccess(c.GetString("jti"))
	s.store.dropUserRefresh(userID)
	s.hub.push(userID, EventSessionRevoked("user logged out"))
	response.Success(c, http.StatusOK, "logged out", nil)
}

func (s *Server) handleMe(c *gin.Context) {
	u, ok := s.store.userByID(c.GetString("user_id"))
	if !ok {
		response.NotFound(c, "user not found")
		return
	}
	response.Success(c, http.StatusOK, "current user", u)
}

// respondWithTokens mints a token pair for u and sends the login envelope.
func (s *Server) respondWithTokens(c *gin.Context, status int, message string, u *user.User) {
	access, _, err := s.tokens.Access(u.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to generate token", err)
		return
	}
	refresh, refreshJTI, err := s.tokens.Refresh(u.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to generate token", err)
		return
	}
	s.store.storeRefresh(refreshJTI, u.ID)

	response.Success(c, status, message, user.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.cfg.AccessTTL.Seconds()),
		User:         *u,
	})
}

// ========== Users ==========

func (s *Server) handleUpdateMe(c *gin.Context) {
	var req user.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	u, err := s.store.updateUser(c.GetString("user_id"), req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrStockExceeded):
			response.Error(c, http.StatusConflict, "stock limit exceeded", err)
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "unknown product in cart")
		default:
			response.Error(c, http.StatusBadRequest, "invalid update", err)
		}
		return
	}
	response.Success(c, http.StatusOK, "user updated", u)
}

// ========== Catalog ==========

func (s *Server) handleListProducts(c *gin.Context) {
	products := s.store.listProducts()

	if q := strings.ToLower(c.Query("q")); q != "" {
		filtered := products[:0]
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Name), q) ||
				strings.Contains(strings.ToLower(p.Brand), q) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	response.Success(c, http.StatusOK, "products", products)
}

func (s *Server) handleGetProduct(c *gin.Context) {
	p, ok := s.store.product(c.Param("id"))
	if !ok {
		response.NotFound(c, "product not found")
		return
	}
	response.Success(c, http.StatusOK, "product", p)
}

// ========== Orders ==========

func (s *Server) handlePlaceOrder(c *gin.Context) {
	userID := c.GetString("user_id")
	order, err := s.store.placeOrder(userID)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrStockExceeded):
			response.Error(c, http.StatusConflict, "stock limit exceeded", err)
		case xerrors.Is(err, xerrors.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "cart is empty", err)
		default:
			response.NotFound(c, "user not found")
		}
		return
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
	)
	s.hub.push(userID, EventOrderPlaced(order.ID, order.Status))
	response.Success(c, http.StatusCreated, "order placed", order)
}

func (s *Server) handleListOrders(c *gin.Context) {
	response.Success(c, http.StatusOK, "orders", s.store.listOrders(c.GetString("user_id")))
}

func (s *Server) handleGetOrder(c *gin.Context) {
	order, ok := s.store.order(c.GetString("user_id"), c.Param("id"))
	if !ok {
		response.NotFound(c, "order not found")
		return
	}
	response.Success(c, http.StatusOK, "order", order)
}
