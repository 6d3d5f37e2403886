package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/menuvercel/mitienda-host/internal/config"
	"github.com/menuvercel/mitienda-host/internal/dto"
	"github.com/menuvercel/mitienda-host/internal/model"
	"github.com/menuvercel/mitienda-host/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Registrar(ctx context.Context, req dto.RegistrarUsuarioRequest) (*dto.UsuarioResponse, error)
	Me(ctx context.Context, id uuid.UUID) (*dto.UsuarioResponse, error)
	ListarVendedores(ctx context.Context) ([]dto.UsuarioResponse, error)
	ActualizarVendedor(ctx context.Context, id uuid.UUID, req dto.ActualizarVendedorRequest) (*dto.UsuarioResponse, error)
}

type authService struct {
	repo  repository.UsuarioRepository
	cfg   *config.Config
	cache *ReportCache
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config, cache *ReportCache) AuthService {
	return &authService{repo: repo, cfg: cfg, cache: cache}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByNombre(ctx, req.Nombre)
	if err != nil {
		return nil, ErrCredencialesInvalidas
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredencialesInvalidas
	}

	token, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		ID:        user.ID.String(),
		Nombre:    user.Nombre,
		Rol:       user.Rol,
		Token:     token,
		ExpiresIn: s.cfg.JWTExpirationHours * 3600,
	}, nil
}

func (s *authService) Registrar(ctx context.Context, req dto.RegistrarUsuarioRequest) (*dto.UsuarioResponse, error) {
	if _, err := s.repo.FindByNombre(ctx, req.Nombre); err == nil {
		return nil, ErrNombreDuplicado
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("registrar: buscar usuario: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Nombre:       req.Nombre,
		PasswordHash: string(hash),
		Telefono:     req.Telefono,
		Rol:          req.Rol,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// Unique index race between the lookup above and the insert
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrNombreDuplicado
		}
		return nil, fmt.Errorf("registrar: %w", err)
	}
	if user.Rol == model.RolVendedor {
		s.cache.Invalidar(ctx)
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) Me(ctx context.Context, id uuid.UUID) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUsuarioNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) ListarVendedores(ctx context.Context) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.ListVendedores(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) ActualizarVendedor(ctx context.Context, id uuid.UUID, req dto.ActualizarVendedorRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVendedorNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	if user.Rol != model.RolVendedor {
		return nil, ErrVendedorNoEncontrado
	}
	if req.Nombre != user.Nombre {
		if _, err := s.repo.FindByNombre(ctx, req.Nombre); err == nil {
			return nil, ErrNombreDuplicado
		}
	}

	user.Nombre = req.Nombre
	user.Telefono = req.Telefono
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrNombreDuplicado
		}
		return nil, err
	}
	s.cache.Invalidar(ctx)
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) generateToken(user *model.Usuario, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"nombre":  user.Nombre,
		"rol":     user.Rol,
		"exp":     time.Now().Add(duration).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:       u.ID.String(),
		Nombre:   u.Nombre,
		Telefono: u.Telefono,
		Rol:      u.Rol,
	}
}
