package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"
	"hedera-asset-gateway/internal/core/ports/mocks"
	"hedera-asset-gateway/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jwtRouter(tokenSvc ports.TokenService, userRepo ports.UserRepository) *gin.Engine {
	r := gin.New()
	r.GET("/test", JWTAuth(tokenSvc, userRepo, zerolog.Nop()), func(c *gin.Context) {
		uid, _ := c.Get(CtxUserID)
		c.JSON(200, gin.H{"user_id": uid.(uuid.UUID).String()})
	})
	return r
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := jwtRouter(mocks.NewMockTokenService(ctrl), mocks.NewMockUserRepository(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_003")
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("garbage").Return(nil, apperror.ErrInvalidToken())

	router := jwtRouter(tokenSvc, mocks.NewMockUserRepository(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_003")
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("old").Return(nil, apperror.ErrExpiredToken())

	router := jwtRouter(tokenSvc, mocks.NewMockUserRepository(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer old")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_004")
}

func TestJWTAuth_UnknownPrincipal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("valid").Return(&ports.TokenClaims{UserID: userID, Username: "ghost"}, nil)

	userRepo := mocks.NewMockUserRepository(ctrl)
	userRepo.EXPECT().GetByID(gomock.Any(), userID).Return(nil, nil)

	router := jwtRouter(tokenSvc, userRepo)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer valid")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_005")
}

func TestJWTAuth_DeactivatedUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("valid").Return(&ports.TokenClaims{UserID: userID, Username: "dora"}, nil)

	userRepo := mocks.NewMockUserRepository(ctrl)
	userRepo.EXPECT().GetByID(gomock.Any(), userID).Return(&domain.User{ID: userID, Username: "dora", Active: false}, nil)

	router := jwtRouter(tokenSvc, userRepo)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer valid")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_005")
}

func TestJWTAuth_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("valid").Return(&ports.TokenClaims{UserID: userID, Username: "alice"}, nil)

	userRepo := mocks.NewMockUserRepository(ctrl)
	userRepo.EXPECT().GetByID(gomock.Any(), userID).Return(&domain.User{ID: userID, Username: "alice", Active: true}, nil)

	router := jwtRouter(tokenSvc, userRepo)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer valid")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestRecovery_CatchesPanic(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}
