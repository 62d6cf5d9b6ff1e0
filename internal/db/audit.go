package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Schema:
//
//	CREATE TABLE validation_audit (
//	    id            BIGSERIAL PRIMARY KEY,
//	    validation_id UUID NOT NULL,
//	    event         TEXT NOT NULL,
//	    detail        JSONB,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
// The audit trail is append-only. Citation violations, stage failures
// and retrieval decisions land here so any stored score can be traced.

// AuditRecord is one audit trail entry.
type AuditRecord struct {
	ID           int64     `json:"id"`
	ValidationID uuid.UUID `json:"validation_id"`
	Event        string    `json:"event"`
	Detail       any       `json:"detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LogAudit appends an event to the validation's audit trail. Detail is
// stored as JSON; nil detail is allowed.
func (db *DB) LogAudit(ctx context.Context, validationID uuid.UUID, event string, detail any) error {
	var doc []byte
	if detail != nil {
		var err error
		doc, err = json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("failed to marshal audit detail: %w", err)
		}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO validation_audit (validation_id, event, detail)
		 VALUES ($1, $2, $3)`,
		validationID, event, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event %s: %w", event, err)
	}
	return nil
}

// ListAudit retrieves the audit trail for a validation in insertion
// order.
func (db *DB) ListAudit(ctx context.Context, validationID uuid.UUID) ([]AuditRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, validation_id, event, detail, created_at
		 FROM validation_audit WHERE validation_id = $1
		 ORDER BY id ASC`,
		validationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit trail: %w", err)
	}
	defer rows.Close()

	var records []AuditRecord
	for rows.Next() {
		var r AuditRecord
		var doc []byte
		if err := rows.Scan(&r.ID, &r.ValidationID, &r.Event, &doc, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		if len(doc) > 0 {
			var detail any
			if err := json.Unmarshal(doc, &detail); err == nil {
				r.Detail = detail
			}
		}
		records = append(records, r)
	}
	return records, nil
}
