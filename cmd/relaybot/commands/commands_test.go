package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edgard/relaybot/internal/database"
)

func TestRootCommandTree(t *testing.T) {
	t.Parallel()

	root := NewRootCmd("1.2.3")
	if root.Version != "1.2.3" {
		t.Fatalf("Version = %q", root.Version)
	}
	for _, name := range []string{"serve", "migrate"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Fatalf("subcommand %q not found: %v", name, err)
		}
	}
	if flag := root.PersistentFlags().Lookup("config"); flag == nil || flag.DefValue != defaultConfigPath {
		t.Fatalf("config flag = %+v", flag)
	}
}

func TestMigrateCreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "relay.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("database:\n  path: "+dbPath+"\nlogger:\n  level: error\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	root := NewRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"migrate", "--config", cfgPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("migrate error = %v", err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database not created: %v", err)
	}
	if want := fmt.Sprintf("schema version %d", database.SchemaVersion); !strings.Contains(out.String(), want) {
		t.Fatalf("output = %q, want it to contain %q", out.String(), want)
	}

	// A second run finds nothing to apply and reports the same version.
	out.Reset()
	root = NewRootCmd("test")
	root.SetOut(&out)
	root.SetArgs([]string{"migrate", "--config", cfgPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("second migrate error = %v", err)
	}
	if want := fmt.Sprintf("schema version %d", database.SchemaVersion); !strings.Contains(out.String(), want) {
		t.Fatalf("second output = %q", out.String())
	}
}
