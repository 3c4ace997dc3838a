package postgres

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrator_LoadOrdenaPorVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"010_tables.sql": {Data: []byte("SELECT 10;")},
		"002_second.sql": {Data: []byte("SELECT 2;")},
		"001_first.sql":  {Data: []byte("SELECT 1;")},
		"README.md":      {Data: []byte("ignorado")},
		"notes_x.sql":    {Data: []byte("sin prefijo numérico")},
	}
	migs, err := NewMigratorFS(nil, fsys).Load()
	require.NoError(t, err)
	require.Len(t, migs, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{migs[0].Version, migs[1].Version, migs[2].Version})
	assert.Equal(t, "001_first.sql", migs[0].Name)
	assert.Equal(t, "SELECT 1;", migs[0].SQL)
}

func TestMigrator_VersionDuplicada(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"001_b.sql": {Data: []byte("SELECT 1;")},
	}
	_, err := NewMigratorFS(nil, fsys).Load()
	assert.Error(t, err)
}

func TestMigrator_EmbebidasCubrenTodasLasTablas(t *testing.T) {
	migs, err := NewMigrator(nil).Load()
	require.NoError(t, err)
	require.NotEmpty(t, migs)

	var all strings.Builder
	for _, m := range migs {
		all.WriteString(m.SQL)
	}
	sql := all.String()
	for _, table := range []string{
		"users", "hospital_centers", "user_center_assignments", "user_sessions", "audit_logs",
		"patients", "care_episodes", "diagnoses", "care_services", "examinations", "prescriptions",
		"prescription_items", "product_categories", "products", "stock_inventory", "stock_movements",
		"stock_transfers", "sales", "sale_items", "payments",
	} {
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
}
