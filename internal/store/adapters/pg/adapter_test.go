package pg

import (
	"strings"
	"testing"

	"github.com/dropDatabas3/modelgate/internal/store/core"
)

func TestBuildDocumentInsert(t *testing.T) {
	got := buildDocumentInsert("ai_models_discovery", 3)
	want := `INSERT INTO "ai_models_discovery" (data) VALUES ($1::jsonb), ($2::jsonb), ($3::jsonb)`
	if got != want {
		t.Fatalf("buildDocumentInsert mismatch:\n got:  %s\n want: %s", got, want)
	}
}

func TestBuildDocumentInsert_Single(t *testing.T) {
	got := buildDocumentInsert("t", 1)
	if got != `INSERT INTO "t" (data) VALUES ($1::jsonb)` {
		t.Fatalf("unexpected sql: %s", got)
	}
}

func TestBuildStagingInsert(t *testing.T) {
	got := buildStagingInsert("ai_models_staging", 2)
	if !strings.HasPrefix(got, `INSERT INTO "ai_models_staging" (data, processing_status) VALUES `) {
		t.Fatalf("unexpected prefix: %s", got)
	}
	// cada fila reutiliza su placeholder para el status derivado
	for _, frag := range []string{
		`($1::jsonb, coalesce(($1::jsonb)->>'processing_status', 'pending'))`,
		`($2::jsonb, coalesce(($2::jsonb)->>'processing_status', 'pending'))`,
	} {
		if !strings.Contains(got, frag) {
			t.Fatalf("missing fragment %q in %s", frag, got)
		}
	}
}

func TestMarshalRecords(t *testing.T) {
	args, err := marshalRecords([]core.Record{
		{"name": "gpt-4", "provider": "openai"},
		{"name": "claude"},
	})
	if err != nil {
		t.Fatalf("marshalRecords: %v", err)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	first, ok := args[0].(string)
	if !ok {
		t.Fatalf("expected string arg, got %T", args[0])
	}
	if !strings.Contains(first, `"name":"gpt-4"`) {
		t.Fatalf("unexpected json: %s", first)
	}
}

func TestMarshalRecords_Unencodable(t *testing.T) {
	if _, err := marshalRecords([]core.Record{{"bad": func() {}}}); err == nil {
		t.Fatal("expected error for unencodable record")
	}
}

func TestPgIdentifier(t *testing.T) {
	cases := map[string]string{
		"ai_models_discovery":    `"ai_models_discovery"`,
		`weird"name`:             `"weirdname"`,
		`"already"`:              `"already"`,
		`evil"; DROP TABLE x;--`: `"evil; DROP TABLE x;--"`,
	}
	for in, want := range cases {
		if got := pgIdentifier(in); got != want {
			t.Fatalf("pgIdentifier(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestMigrationLockIDStable(t *testing.T) {
	if migrationLockID() != migrationLockID() {
		t.Fatal("lock id must be deterministic")
	}
	if migrationLockID() == 0 {
		t.Fatal("lock id must be non-zero")
	}
}
