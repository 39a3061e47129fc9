package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/wallet-ledger-engine/internal/config"
	"github.com/wallet-ledger-engine/internal/domain/account"
	"github.com/wallet-ledger-engine/internal/domain/user"
	"github.com/wallet-ledger-engine/internal/engine"
)

// AuthServiceImpl implements the AuthService interface
type AuthServiceImpl struct {
	db             engine.TxRunner
	users          user.Repository
	accounts       account.Repository
	jwtSecret      []byte
	tokenTTL       time.Duration
	bcryptCost     int
	openingBalance int64
	logger         *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	logger *slog.Logger,
	db engine.TxRunner,
	users user.Repository,
	accounts account.Repository,
	authCfg *config.AuthConfig,
	walletCfg *config.WalletConfig,
) AuthService {
	return &AuthServiceImpl{
		db:             db,
		users:          users,
		accounts:       accounts,
		jwtSecret:      []byte(authCfg.JWTSecret),
		tokenTTL:       authCfg.TokenTTL,
		bcryptCost:     authCfg.BcryptCost,
		openingBalance: walletCfg.OpeningBalance,
		logger:         logger,
	}
}

// Register creates the user and their account in one transaction. The opening
// balance is seeded directly at account creation, before the account is
// visible, so no ledger entry is written for it.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (*user.User, *account.Account, error) {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, user.ErrDuplicateUsername{Username: username}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := user.NewUser(username, string(hash))
	if err != nil {
		return nil, nil, err
	}
	acc, err := account.NewAccount(u.ID, s.openingBalance)
	if err != nil {
		return nil, nil, err
	}

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, u); err != nil {
			return err
		}
		return s.accounts.WithTx(tx).Create(ctx, acc)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Registered user",
		"user_id", u.ID.String(),
		"account_id", acc.ID.String(),
		"opening_balance", acc.Balance,
	)
	return u, acc, nil
}

// Login verifies the password and issues an HS256 token
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, u, nil
}

// VerifyToken validates the signature and expiry and returns the subject id
func (s *AuthServiceImpl) VerifyToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return userID, nil
}
