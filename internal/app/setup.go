package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/procurehq/rfpflow/internal/db"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create database tables",
	Long:  "Creates all tables the service needs. Safe to run repeatedly.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if err := db.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		fmt.Println("Running migrations...")
		migrationSQL := `
			CREATE TABLE IF NOT EXISTS vendors (
			    id UUID PRIMARY KEY,
			    name VARCHAR(255) NOT NULL,
			    email VARCHAR(255) NOT NULL UNIQUE,
			    phone VARCHAR(50) NOT NULL DEFAULT '',
			    address TEXT NOT NULL DEFAULT '',
			    website VARCHAR(255) NOT NULL DEFAULT '',
			    category VARCHAR(100) NOT NULL DEFAULT '',
			    rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			    notes TEXT NOT NULL DEFAULT '',
			    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
			);

			CREATE INDEX IF NOT EXISTS idx_vendors_email ON vendors(email);

			CREATE TABLE IF NOT EXISTS rfps (
			    id UUID PRIMARY KEY,
			    token VARCHAR(64) NOT NULL UNIQUE,
			    title VARCHAR(255) NOT NULL,
			    description TEXT NOT NULL DEFAULT '',
			    items JSONB NOT NULL DEFAULT '[]',
			    budget DOUBLE PRECISION NOT NULL DEFAULT 0,
			    timeline VARCHAR(255) NOT NULL DEFAULT '',
			    payment_terms VARCHAR(255) NOT NULL DEFAULT '',
			    warranty VARCHAR(255) NOT NULL DEFAULT '',
			    status VARCHAR(20) NOT NULL DEFAULT 'draft',
			    structured_data JSONB,
			    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
			);

			CREATE INDEX IF NOT EXISTS idx_rfps_token ON rfps(token);
			CREATE INDEX IF NOT EXISTS idx_rfps_status_created ON rfps(status, created_at DESC);

			CREATE TABLE IF NOT EXISTS proposals (
			    id UUID PRIMARY KEY,
			    rfp_id UUID NOT NULL REFERENCES rfps(id) ON DELETE CASCADE,
			    vendor_id UUID NOT NULL REFERENCES vendors(id) ON DELETE CASCADE,
			    number INTEGER NOT NULL,
			    email_message_id VARCHAR(998),
			    email_content JSONB NOT NULL DEFAULT '{}',
			    extracted JSONB,
			    received_at TIMESTAMP WITH TIME ZONE NOT NULL,
			    status VARCHAR(20) NOT NULL DEFAULT 'pending',
			    parsing_error TEXT,
			    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
			);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_proposals_message_id
			    ON proposals(email_message_id) WHERE email_message_id IS NOT NULL;
			CREATE INDEX IF NOT EXISTS idx_proposals_rfp_vendor ON proposals(rfp_id, vendor_id);

			CREATE TABLE IF NOT EXISTS proposal_attachments (
			    id UUID PRIMARY KEY,
			    proposal_id UUID NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
			    filename VARCHAR(255) NOT NULL,
			    content_type VARCHAR(255) NOT NULL DEFAULT '',
			    size BIGINT NOT NULL DEFAULT 0,
			    content BYTEA,
			    extracted_text TEXT
			);

			CREATE INDEX IF NOT EXISTS idx_attachments_proposal ON proposal_attachments(proposal_id);

			CREATE TABLE IF NOT EXISTS job_history (
			    id UUID PRIMARY KEY,
			    job_name VARCHAR(100) NOT NULL,
			    status VARCHAR(20) NOT NULL,
			    triggered_by VARCHAR(20) NOT NULL,
			    start_time TIMESTAMP WITH TIME ZONE NOT NULL,
			    end_time TIMESTAMP WITH TIME ZONE,
			    duration_ms BIGINT,
			    result JSONB,
			    error TEXT
			);

			CREATE INDEX IF NOT EXISTS idx_job_history_name_start ON job_history(job_name, start_time DESC);

			CREATE TABLE IF NOT EXISTS comparisons (
			    id UUID PRIMARY KEY,
			    rfp_id UUID NOT NULL UNIQUE REFERENCES rfps(id) ON DELETE CASCADE,
			    proposal_ids JSONB NOT NULL DEFAULT '[]',
			    scores JSONB NOT NULL DEFAULT '[]',
			    summary TEXT NOT NULL DEFAULT '',
			    recommendation JSONB,
			    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
			);
		`

		if _, err := db.Pool.Exec(ctx, migrationSQL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		fmt.Println("Database setup complete.")
		return nil
	},
}
