package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the migration and the query builders.
const (
	tableConcepts   = "concepts"
	tableSections   = "concept_sections"
	tableSessions   = "review_sessions"
	tableWeaknesses = "concept_weaknesses"
	tableLLMEvents  = "llm_request_events"
)

var (
	conceptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "class_id", Type: field.TypeString, Default: "default"},
		{Name: "name", Type: field.TypeString},
		{Name: "content", Type: field.TypeString, Size: 2147483647},
		{Name: "mastery", Type: field.TypeInt, Default: 0},
		{Name: "review_count", Type: field.TypeInt, Default: 0},
		{Name: "correct_streak", Type: field.TypeInt, Default: 0},
		{Name: "difficulty", Type: field.TypeInt, Default: 1},
		{Name: "last_reviewed", Type: field.TypeTime, Nullable: true},
		{Name: "next_review", Type: field.TypeTime},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "current_section", Type: field.TypeInt, Default: 0},
	}
	conceptsTable = &schema.Table{
		Name:       tableConcepts,
		Columns:    conceptsColumns,
		PrimaryKey: []*schema.Column{conceptsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "concept_class_id_next_review", Columns: []*schema.Column{conceptsColumns[1], conceptsColumns[9]}},
			{Name: "concept_mastery_correct_streak", Columns: []*schema.Column{conceptsColumns[4], conceptsColumns[6]}},
		},
	}

	sectionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "concept_id", Type: field.TypeString, Size: 36},
		{Name: "section_id", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "content", Type: field.TypeString, Size: 2147483647},
		{Name: "ord", Type: field.TypeInt},
		{Name: "mastery", Type: field.TypeInt, Default: 0},
		{Name: "correct_streak", Type: field.TypeInt, Default: 0},
		{Name: "times_studied", Type: field.TypeInt, Default: 0},
		{Name: "last_studied", Type: field.TypeTime, Nullable: true},
	}
	sectionsTable = &schema.Table{
		Name:       tableSections,
		Columns:    sectionsColumns,
		PrimaryKey: []*schema.Column{sectionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "concept_sections_concepts_sections",
				Columns:    []*schema.Column{sectionsColumns[1]},
				RefColumns: []*schema.Column{conceptsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "concept_section_concept_id_section_id", Unique: true, Columns: []*schema.Column{sectionsColumns[1], sectionsColumns[2]}},
		},
	}

	sessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "concept_id", Type: field.TypeString, Size: 36},
		{Name: "question", Type: field.TypeString, Size: 2147483647},
		{Name: "user_answer", Type: field.TypeString, Size: 2147483647},
		{Name: "correct", Type: field.TypeBool},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "hints_used", Type: field.TypeInt, Default: 0},
		{Name: "follow_up_questions", Type: field.TypeInt, Default: 0},
		{Name: "weakness_identified", Type: field.TypeBool, Default: false},
		{Name: "feedback", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "session_type", Type: field.TypeString, Default: SessionTypePractice},
		{Name: "conversation_data", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	sessionsTable = &schema.Table{
		Name:       tableSessions,
		Columns:    sessionsColumns,
		PrimaryKey: []*schema.Column{sessionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "review_sessions_concepts_sessions",
				Columns:    []*schema.Column{sessionsColumns[1]},
				RefColumns: []*schema.Column{conceptsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "review_session_concept_id_timestamp", Columns: []*schema.Column{sessionsColumns[1], sessionsColumns[5]}},
		},
	}

	weaknessesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "concept_id", Type: field.TypeString, Size: 36},
		{Name: "area", Type: field.TypeString},
		{Name: "severity", Type: field.TypeInt, Default: 1},
		{Name: "times_encountered", Type: field.TypeInt, Default: 1},
		{Name: "last_encountered", Type: field.TypeTime},
	}
	weaknessesTable = &schema.Table{
		Name:       tableWeaknesses,
		Columns:    weaknessesColumns,
		PrimaryKey: []*schema.Column{weaknessesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "concept_weaknesses_concepts_weaknesses",
				Columns:    []*schema.Column{weaknessesColumns[1]},
				RefColumns: []*schema.Column{conceptsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "concept_weakness_concept_id_area", Unique: true, Columns: []*schema.Column{weaknessesColumns[1], weaknessesColumns[2]}},
		},
	}

	llmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmEventsTable = &schema.Table{
		Name:       tableLLMEvents,
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llm_request_event_purpose", Columns: []*schema.Column{llmEventsColumns[4]}},
		},
	}

	// tables lists every table in dependency order.
	tables = []*schema.Table{
		conceptsTable,
		sectionsTable,
		sessionsTable,
		weaknessesTable,
		llmEventsTable,
	}
)

func init() {
	sectionsTable.ForeignKeys[0].RefTable = conceptsTable
	sessionsTable.ForeignKeys[0].RefTable = conceptsTable
	weaknessesTable.ForeignKeys[0].RefTable = conceptsTable
}
