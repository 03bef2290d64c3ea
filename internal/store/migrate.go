package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// adminPromptsColumns holds the columns for the "admin_prompts" table.
	adminPromptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "category", Type: field.TypeString},
		{Name: "sub_category", Type: field.TypeString},
		{Name: "prompt", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	adminPromptsTable = &schema.Table{
		Name:       "admin_prompts",
		Columns:    adminPromptsColumns,
		PrimaryKey: []*schema.Column{adminPromptsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "adminprompt_category", Columns: []*schema.Column{adminPromptsColumns[1]}},
		},
	}

	// levelPromptsColumns holds the columns for the "level_prompts" table.
	levelPromptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "level", Type: field.TypeString},
		{Name: "prompt", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	levelPromptsTable = &schema.Table{
		Name:       "level_prompts",
		Columns:    levelPromptsColumns,
		PrimaryKey: []*schema.Column{levelPromptsColumns[0]},
	}

	// historyColumns holds the columns for the "history" table.
	historyColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "query", Type: field.TypeString, Size: 2147483647},
		{Name: "response", Type: field.TypeString, Size: 2147483647},
		{Name: "category", Type: field.TypeString},
		{Name: "level", Type: field.TypeString},
	}
	historyTable = &schema.Table{
		Name:       "history",
		Columns:    historyColumns,
		PrimaryKey: []*schema.Column{historyColumns[0]},
		Indexes: []*schema.Index{
			{Name: "history_timestamp", Columns: []*schema.Column{historyColumns[2]}},
		},
	}

	// llmRequestsColumns holds the columns for the "llm_requests" table.
	llmRequestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmRequestsTable = &schema.Table{
		Name:       "llm_requests",
		Columns:    llmRequestsColumns,
		PrimaryKey: []*schema.Column{llmRequestsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequest_purpose", Columns: []*schema.Column{llmRequestsColumns[5]}},
			{Name: "llmrequest_model", Columns: []*schema.Column{llmRequestsColumns[4]}},
		},
	}

	// tables holds every table the store manages.
	tables = []*schema.Table{
		adminPromptsTable,
		levelPromptsTable,
		historyTable,
		llmRequestsTable,
	}
)

// migrate creates missing tables, columns and indexes.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return m.Create(ctx, tables...)
}
