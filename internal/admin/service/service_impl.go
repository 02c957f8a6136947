package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v4"
	admindomain "github.com/lodgeops/lodgeops/internal/admin/domain"
	"github.com/lodgeops/lodgeops/internal/admincontext"
	"github.com/lodgeops/lodgeops/internal/clock"
	"github.com/lodgeops/lodgeops/internal/config"
	"github.com/lodgeops/lodgeops/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 8

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  admindomain.Repository

	jwtSecret []byte
	tokenTTL  time.Duration
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  admindomain.Repository
	Cfg   config.Config
}

func NewService(p ServiceParam) admindomain.Service {
	ttl := p.Cfg.AuthTokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Service{
		db:  p.DB,
		log: p.Log.Named("admin.service"),

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,

		jwtSecret: []byte(p.Cfg.AuthJWTSecret),
		tokenTTL:  ttl,
	}
}

// Register implements domain.Service.
func (s *Service) Register(ctx context.Context, req admindomain.RegisterRequest) (admindomain.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return admindomain.TokenResponse{}, admindomain.ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLen {
		return admindomain.TokenResponse{}, admindomain.ErrWeakPassword
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return admindomain.TokenResponse{}, err
	}
	if existing != nil {
		return admindomain.TokenResponse{}, admindomain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return admindomain.TokenResponse{}, err
	}

	now := s.clock.Now()
	admin := admindomain.Admin{
		ID:           s.genID.Generate(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &admin); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return admindomain.TokenResponse{}, admindomain.ErrEmailTaken
		}
		return admindomain.TokenResponse{}, err
	}

	s.log.Info("admin registered", zap.String("admin_id", admin.ID.String()))

	return s.issueToken(admin)
}

// Login implements domain.Service.
func (s *Service) Login(ctx context.Context, req admindomain.LoginRequest) (admindomain.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	admin, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return admindomain.TokenResponse{}, err
	}
	if admin == nil {
		return admindomain.TokenResponse{}, admindomain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return admindomain.TokenResponse{}, admindomain.ErrInvalidCredentials
	}

	return s.issueToken(*admin)
}

// GetProfile implements domain.Service.
func (s *Service) GetProfile(ctx context.Context) (admindomain.AdminResponse, error) {
	admin, err := s.current(ctx)
	if err != nil {
		return admindomain.AdminResponse{}, err
	}
	return toResponse(*admin), nil
}

// current resolves the authenticated admin from the request context.
func (s *Service) current(ctx context.Context) (*admindomain.Admin, error) {
	adminID, ok := admincontext.AdminIDFromContext(ctx)
	if !ok || adminID == 0 {
		return nil, admindomain.ErrInvalidAdmin
	}

	admin, err := s.repo.FindByID(ctx, s.db, adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, admindomain.ErrAdminNotFound
	}
	return admin, nil
}

// UpdateProfile implements domain.Service.
func (s *Service) UpdateProfile(ctx context.Context, req admindomain.UpdateProfileRequest) (admindomain.AdminResponse, error) {
	admin, err := s.current(ctx)
	if err != nil {
		return admindomain.AdminResponse{}, err
	}

	if req.Name != nil {
		admin.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" || !strings.Contains(email, "@") {
			return admindomain.AdminResponse{}, admindomain.ErrInvalidEmail
		}
		if email != admin.Email {
			existing, err := s.repo.FindByEmail(ctx, s.db, email)
			if err != nil {
				return admindomain.AdminResponse{}, err
			}
			if existing != nil {
				return admindomain.AdminResponse{}, admindomain.ErrEmailTaken
			}
			admin.Email = email
		}
	}
	admin.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, admin); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return admindomain.AdminResponse{}, admindomain.ErrEmailTaken
		}
		return admindomain.AdminResponse{}, err
	}

	return toResponse(*admin), nil
}

// ChangePassword implements domain.Service.
func (s *Service) ChangePassword(ctx context.Context, req admindomain.ChangePasswordRequest) (admindomain.TokenResponse, error) {
	admin, err := s.current(ctx)
	if err != nil {
		return admindomain.TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return admindomain.TokenResponse{}, admindomain.ErrInvalidCredentials
	}
	if len(req.NewPassword) < minPasswordLen {
		return admindomain.TokenResponse{}, admindomain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return admindomain.TokenResponse{}, err
	}
	admin.PasswordHash = string(hash)
	admin.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, admin); err != nil {
		return admindomain.TokenResponse{}, err
	}

	s.log.Info("admin password changed", zap.String("admin_id", admin.ID.String()))

	return s.issueToken(*admin)
}

// VerifyToken implements domain.Service.
func (s *Service) VerifyToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, admindomain.ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", admindomain.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", admindomain.ErrInvalidToken
	}
	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", admindomain.ErrInvalidToken
	}

	return subject, nil
}

func (s *Service) issueToken(admin admindomain.Admin) (admindomain.TokenResponse, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.tokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": admin.ID.String(),
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return admindomain.TokenResponse{}, err
	}

	return admindomain.TokenResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		Admin:     toResponse(admin),
	}, nil
}

func toResponse(admin admindomain.Admin) admindomain.AdminResponse {
	return admindomain.AdminResponse{
		ID:        admin.ID.String(),
		Name:      admin.Name,
		Email:     admin.Email,
		CreatedAt: admin.CreatedAt,
	}
}
