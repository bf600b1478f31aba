package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	auditdomain "github.com/policywaylabs/policyway/internal/audit/domain"
	"gorm.io/gorm"
)

type ExportService struct {
	db   *gorm.DB
	repo auditdomain.Repository
}

func NewExportService(db *gorm.DB, repo auditdomain.Repository) auditdomain.ExportService {
	return &ExportService{db: db, repo: repo}
}

func (s *ExportService) Export(ctx context.Context, req auditdomain.ExportRequest) (*auditdomain.ExportResult, error) {
	logs, err := s.repo.ListBetween(ctx, s.db, req.StartDate, req.EndDate, req.Actions)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch req.Format {
	case auditdomain.ExportFormatCSV:
		data, err = formatCSV(logs)
	case auditdomain.ExportFormatJSON:
		data, err = formatJSON(logs)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", req.Format)
	}
	if err != nil {
		return nil, err
	}

	return &auditdomain.ExportResult{
		Data:     data,
		Checksum: calculateChecksum(data),
		Format:   req.Format,
		Count:    len(logs),
	}, nil
}

func formatCSV(logs []auditdomain.AuditLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"timestamp",
		"auditable_type",
		"auditable_id",
		"action",
		"performed_by",
		"changes",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, log := range logs {
		changesJSON, _ := json.Marshal(log.Changes)
		row := []string{
			log.CreatedAt.Format(time.RFC3339),
			log.AuditableType,
			log.AuditableID.String(),
			string(log.Action),
			log.PerformedBy,
			string(changesJSON),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatJSON(logs []auditdomain.AuditLog) ([]byte, error) {
	type exportRecord struct {
		Timestamp     string         `json:"timestamp"`
		AuditableType string         `json:"auditable_type"`
		AuditableID   string         `json:"auditable_id"`
		Action        string         `json:"action"`
		PerformedBy   string         `json:"performed_by"`
		Changes       map[string]any `json:"changes,omitempty"`
	}

	records := make([]exportRecord, 0, len(logs))
	for _, log := range logs {
		records = append(records, exportRecord{
			Timestamp:     log.CreatedAt.Format(time.RFC3339),
			AuditableType: log.AuditableType,
			AuditableID:   log.AuditableID.String(),
			Action:        string(log.Action),
			PerformedBy:   log.PerformedBy,
			Changes:       log.Changes,
		})
	}

	return json.MarshalIndent(records, "", "  ")
}

func calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
