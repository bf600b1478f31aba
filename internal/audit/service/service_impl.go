package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/policywaylabs/policyway/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
}

func NewService(p ServiceParam) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) AppendTx(
	ctx context.Context,
	tx *gorm.DB,
	auditableType string,
	auditableID snowflake.ID,
	action auditdomain.Action,
	changes map[string]any,
	performedBy string,
) error {
	if auditableType == "" || auditableID == 0 {
		return auditdomain.ErrInvalidAuditable
	}
	if !action.Valid() {
		return auditdomain.ErrInvalidAction
	}
	if tx == nil {
		tx = s.db
	}
	if performedBy == "" {
		performedBy = "system"
	}

	entry := &auditdomain.AuditLog{
		ID:            s.genID.Generate(),
		AuditableType: auditableType,
		AuditableID:   auditableID,
		Action:        action,
		Changes:       datatypes.JSONMap(changes),
		PerformedBy:   performedBy,
	}
	return s.repo.Append(ctx, tx, entry)
}

func (s *Service) ListByAuditable(ctx context.Context, auditableType string, auditableID snowflake.ID) ([]auditdomain.AuditLog, error) {
	return s.repo.ListByAuditable(ctx, s.db, auditableType, auditableID)
}
