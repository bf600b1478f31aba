package receipt

import (
	"context"

	"github.com/bwmarrin/snowflake"
	policydomain "github.com/policywaylabs/policyway/internal/policy/domain"
	receiptdomain "github.com/policywaylabs/policyway/internal/receipt/domain"
	"gorm.io/gorm"
)

// lockChecker answers the policy service's "is this policy locked" question:
// a policy is locked as soon as a commission receipt references it.
type lockChecker struct {
	db   *gorm.DB
	repo receiptdomain.Repository
}

func NewLockChecker(db *gorm.DB, repo receiptdomain.Repository) policydomain.LockChecker {
	return &lockChecker{db: db, repo: repo}
}

func (c *lockChecker) IsPolicyLocked(ctx context.Context, policyType policydomain.PolicyType, policyID snowflake.ID) (bool, error) {
	receipt, err := c.repo.FindByPolicy(ctx, c.db, policyType, policyID)
	if err != nil {
		return false, err
	}
	return receipt != nil, nil
}
