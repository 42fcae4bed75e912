package services

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/bmc-backend/internal/apierr"
	"github.com/yungbote/bmc-backend/internal/logger"
	"github.com/yungbote/bmc-backend/internal/normalization"
	"github.com/yungbote/bmc-backend/internal/repos"
	"github.com/yungbote/bmc-backend/internal/requestdata"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	// ResolveTeam returns the team the current request operates on: the
	// explicit team id when one is passed, otherwise the caller's current
	// team. Explicit ids are checked against team membership.
	ResolveTeam(ctx context.Context, explicit *uint) (uint, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) Login(ctx context.Context, email, password string) (string, error) {
	email = normalization.ParseInputString(email)
	if email == "" || password == "" {
		return "", apierr.New(apierr.CodeValidation, "Email and password are required")
	}

	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return "", apierr.Wrap(apierr.CodeExecution, "Failed to look up user", err)
	}
	if user == nil {
		return "", apierr.New(apierr.CodeAuth, "Invalid credentials")
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return "", apierr.New(apierr.CodeAuth, "Invalid credentials")
	}

	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", apierr.Wrap(apierr.CodeExecution, "Failed to sign token", err)
	}
	return signed, nil
}

// SetContextFromToken validates the bearer token and attaches request data
// for the authenticated user. The user row is loaded fresh so a team switch
// takes effect without reissuing the token.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.New(apierr.CodeAuth, "Authentication required")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, apierr.Wrap(apierr.CodeAuth, "Invalid or expired token", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, apierr.New(apierr.CodeAuth, "Invalid or expired token")
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return ctx, apierr.New(apierr.CodeAuth, "Invalid subject in token")
	}

	user, err := as.userRepo.GetByID(ctx, nil, uint(userID))
	if err != nil {
		return ctx, apierr.Wrap(apierr.CodeExecution, "Failed to load user", err)
	}
	if user == nil {
		return ctx, apierr.New(apierr.CodeAuth, "Unknown user")
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      user.ID,
		TeamID:      user.CurrentTeamID,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) ResolveTeam(ctx context.Context, explicit *uint) (uint, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return 0, apierr.New(apierr.CodeAuth, "Authentication required")
	}
	if explicit == nil || *explicit == rd.TeamID {
		if rd.TeamID == 0 {
			return 0, apierr.New(apierr.CodeValidation, "No team in scope")
		}
		return rd.TeamID, nil
	}
	member, err := as.userRepo.IsTeamMember(ctx, nil, rd.UserID, *explicit)
	if err != nil {
		return 0, apierr.Wrap(apierr.CodeExecution, "Failed to check team membership", err)
	}
	if !member {
		return 0, apierr.New(apierr.CodeAccessDenied, "You do not have access to this team")
	}
	return *explicit, nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
