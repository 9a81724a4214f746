package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/vfilipov/traintrack/internal/middleware"
	"github.com/vfilipov/traintrack/internal/telemetry/metrics"
	"github.com/vfilipov/traintrack/internal/telemetry/tracing"
	"github.com/vfilipov/traintrack/pkg"
)

type usersRepo interface {
	Add(ctx context.Context, name, email, passwordHash string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type RegisterResponse struct {
	UserID int `json:"userId"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Handler struct {
	repo           usersRepo
	tokens         *Service
	metricsManager *metrics.Manager
}

func NewHandler(repo usersRepo, tokens *Service, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		tokens:         tokens,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedPerMin int,
) {
	authRouter := mainRouter.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", handler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	authRouter.HandleFunc("/login", handler.HandleLogin).Methods("POST", "OPTIONS").Name("login")

	// prevent credential stuffing / registration abuse
	authRouter.Use(middleware.RateLimit(rateLimiter, "auth", allowedPerMin, handler.metricsManager))
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.register")
	defer span.End()

	var registerReq struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		log.Tracef("register, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if registerReq.Name == "" || registerReq.Email == "" || registerReq.Password == "" {
		pkg.WriteJSONError(w, "name, email and password are required", http.StatusBadRequest)
		return
	}

	passwordHash, err := pkg.HashPassword(registerReq.Password)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	user, err := handler.repo.Add(ctx, registerReq.Name, registerReq.Email, passwordHash)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			pkg.WriteJSONError(w, "email already in use", http.StatusConflict)
			return
		}
		log.Errorf("register user [%s]: %s", registerReq.Email, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterRegisteredUsers.Inc()
	}

	respJson, err := json.Marshal(RegisterResponse{UserID: user.ID})
	if err != nil {
		log.Errorf("register, marshal response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("new user registered: %d", user.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	var loginReq struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		log.Tracef("login, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if loginReq.Email == "" || loginReq.Password == "" {
		pkg.WriteJSONError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	// unknown email and wrong password produce the same response,
	// to avoid user enumeration
	user, err := handler.repo.GetByEmail(ctx, loginReq.Email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			log.Errorf("login, get user [%s]: %s", loginReq.Email, err)
			pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		log.Tracef("failed login attempt for: %s", loginReq.Email)
		pkg.WriteJSONError(w, "wrong email or password", http.StatusUnauthorized)
		return
	}

	if !pkg.CheckPasswordHash(loginReq.Password, user.PasswordHash) {
		log.Tracef("failed login attempt for: %s", loginReq.Email)
		pkg.WriteJSONError(w, "wrong email or password", http.StatusUnauthorized)
		return
	}

	token, err := handler.tokens.IssueToken(user.ID, user.Email)
	if err != nil {
		log.Errorf("login, issue token for user %d: %s", user.ID, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(LoginResponse{
		Token: token,
		User:  *user,
	})
	if err != nil {
		log.Errorf("login, marshal response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d logged in", user.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
