package handlers

import (
	"net/http"
	"time"

	intconfig "tripcore/internal/config"
	"tripcore/internal/domain"
	"tripcore/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	repo := repositories.OperatorRepository{DB: intconfig.DB}
	op, err := repo.GetByLogin(req.Login)
	if err != nil {
		if domain.IsNotFound(err) {
			RespondError(c, http.StatusUnauthorized, "Login atau password salah", nil)
			return
		}
		RespondError(c, http.StatusInternalServerError, "gagal query operator", err)
		return
	}
	if op.Status != "active" {
		RespondError(c, http.StatusUnauthorized, "Akun tidak aktif", nil)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)); err != nil {
		RespondError(c, http.StatusUnauthorized, "Login atau password salah", nil)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"operator_id": op.ID,
		"role":        op.Role,
		"exp":         time.Now().Add(24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal membuat token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": signed,
		"operator": gin.H{
			"id":       op.ID,
			"name":     op.Name,
			"username": op.Username,
			"role":     op.Role,
		},
	})
}
