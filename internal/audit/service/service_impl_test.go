package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/policywaylabs/policyway/internal/audit/domain"
	auditrepo "github.com/policywaylabs/policyway/internal/audit/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAuditFixture(t *testing.T) (auditdomain.Service, auditdomain.ExportService, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo := auditrepo.Provide()
	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repo,
	})
	return svc, NewExportService(db, repo), db, node
}

func TestAppendTxValidatesEntry(t *testing.T) {
	svc, _, _, node := newAuditFixture(t)
	ctx := context.Background()

	err := svc.AppendTx(ctx, nil, "", node.Generate(), auditdomain.ActionCreated, nil, "tester")
	require.ErrorIs(t, err, auditdomain.ErrInvalidAuditable)

	err = svc.AppendTx(ctx, nil, "policy", node.Generate(), auditdomain.Action("approved"), nil, "tester")
	require.ErrorIs(t, err, auditdomain.ErrInvalidAction)
}

func TestAppendTxDefaultsActorToSystem(t *testing.T) {
	svc, _, _, node := newAuditFixture(t)
	ctx := context.Background()
	id := node.Generate()

	require.NoError(t, svc.AppendTx(ctx, nil, "policy", id, auditdomain.ActionCreated, map[string]any{"policy_number": "HLT-1"}, ""))

	logs, err := svc.ListByAuditable(ctx, "policy", id)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "system", logs[0].PerformedBy)
	require.Equal(t, "HLT-1", logs[0].Changes["policy_number"])
}

func TestAppendTxRollsBackWithCallerTransaction(t *testing.T) {
	svc, _, db, node := newAuditFixture(t)
	ctx := context.Background()
	id := node.Generate()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.AppendTx(ctx, tx, "policy", id, auditdomain.ActionUpdated, nil, "tester"); err != nil {
			return err
		}
		return gorm.ErrInvalidData
	})
	require.Error(t, err)

	logs, err := svc.ListByAuditable(ctx, "policy", id)
	require.NoError(t, err)
	require.Empty(t, logs)
}

func TestExportFormatsAndChecksum(t *testing.T) {
	svc, exporter, _, node := newAuditFixture(t)
	ctx := context.Background()
	id := node.Generate()

	require.NoError(t, svc.AppendTx(ctx, nil, "commission_receipt", id, auditdomain.ActionDistributed, map[string]any{"amount": "4250"}, "ops"))
	require.NoError(t, svc.AppendTx(ctx, nil, "payout_distribution", node.Generate(), auditdomain.ActionPaid, nil, "ops"))

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)

	csvOut, err := exporter.Export(ctx, auditdomain.ExportRequest{
		StartDate: start,
		EndDate:   end,
		Format:    auditdomain.ExportFormatCSV,
	})
	require.NoError(t, err)
	require.Equal(t, 2, csvOut.Count)
	require.Contains(t, string(csvOut.Data), "commission_receipt")

	sum := sha256.Sum256(csvOut.Data)
	require.Equal(t, hex.EncodeToString(sum[:]), csvOut.Checksum)

	jsonOut, err := exporter.Export(ctx, auditdomain.ExportRequest{
		StartDate: start,
		EndDate:   end,
		Format:    auditdomain.ExportFormatJSON,
		Actions:   []string{string(auditdomain.ActionPaid)},
	})
	require.NoError(t, err)
	require.Equal(t, 1, jsonOut.Count)
	require.True(t, strings.Contains(string(jsonOut.Data), "paid"))

	_, err = exporter.Export(ctx, auditdomain.ExportRequest{
		StartDate: start,
		EndDate:   end,
		Format:    auditdomain.ExportFormat("xml"),
	})
	require.Error(t, err)
}
