package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-data/internal/crafting/db"
	"github.com/rsned/crafting-data/internal/crafting/output"
	"github.com/rsned/crafting-data/pkg/crafting"
)

var tables = map[string]string{
	"item_desc.json": `[
		{"id": 1, "name": "Rough Plank", "tier": 1, "rarity": "Common", "tag": "Plank", "icon_asset_name": "GeneratedIcons/Items/Plank", "item_list_id": 0},
		{"id": 2, "name": "Rough Wood Log", "tier": 1, "rarity": "Uncommon", "tag": "Wood Log", "icon_asset_name": "GeneratedIcons/Items/Log", "item_list_id": 0},
		{"id": 3, "name": "Debug Wand", "tier": 1, "rarity": "Common", "tag": "DEVELOPER ITEM", "icon_asset_name": "", "item_list_id": 0},
		{"id": 9, "name": "Plank Bundle", "tier": -1, "rarity": "Common", "tag": "Bundle", "icon_asset_name": "", "item_list_id": 5}
	]`,
	"cargo_desc.json": `[
		{"id": 2, "name": "Rough Trunk", "tier": 1, "rarity": "Common", "tag": "Trunk", "icon_asset_name": "GeneratedIcons/Other/Other/Trunk"}
	]`,
	"crafting_recipe_desc.json": `[
		{
			"id": 100, "name": "Saw Plank",
			"level_requirements": [{"skill_id": 3, "level": 1}],
			"consumed_item_stacks": [{"item_id": 2, "item_type": "Cargo", "quantity": 1}],
			"crafted_item_stacks": [{"item_id": 1, "item_type": "Item", "quantity": 4}]
		},
		{
			"id": 101, "name": "Open Bundle",
			"level_requirements": [{"skill_id": 3, "level": 2}],
			"consumed_item_stacks": [{"item_id": 2, "item_type": "Item", "quantity": 1}],
			"crafted_item_stacks": [{"item_id": 9, "item_type": "Item", "quantity": 1}]
		}
	]`,
	"extraction_recipe_desc.json": `[
		{
			"id": 7,
			"level_requirements": [{"skill_id": 2, "level": 1}],
			"extracted_item_stacks": [
				{"item_stack": {"item_id": 2, "item_type": "Item", "quantity": 1}},
				{"item_stack": {"item_id": 2, "item_type": "Cargo", "quantity": 1}}
			]
		}
	]`,
	"item_list_desc.json": `[
		{"id": 5, "name": "Planks", "possibilities": [{"probability": 0.5, "items": [{"item_id": 1, "item_type": "Item", "quantity": 2}]}]}
	]`,
	"enemy_desc.json": `[]`,
}

func writeTables(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range tables {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestBuildCmd(t *testing.T) {
	ctx := context.Background()
	dataDir := writeTables(t)
	outDir := t.TempDir()
	out := filepath.Join(outDir, "crafting_data.json.zst")
	dbPath := filepath.Join(outDir, "catalog.db")

	iconDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(iconDir, "Items"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(iconDir, "Items", "Plank.webp"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(iconDir, "Trunk.webp"), nil, 0o644))

	err := newApp().Run(ctx, []string{name, "build",
		"--data", dataDir,
		"--out", out,
		"--db", dbPath,
		"--icons", iconDir,
	})
	require.NoError(t, err)

	catalog, err := output.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []crafting.UnifiedID{1, 2, crafting.CargoOffset + 2}, catalog.IDs())

	plank := catalog.Get(1)
	assert.Equal(t, "Items/Plank", plank.Icon)
	require.Len(t, plank.Recipes, 2)
	assert.Empty(t, plank.Recipes[1].Possibilities)
	assert.Equal(t, crafting.Possibilities{2: 0.5}, plank.Recipes[0].Possibilities)
	assert.Equal(t, 2, catalog.Get(2).Rarity)
	assert.Equal(t, "Trunk", catalog.Get(crafting.CargoOffset+2).Icon)

	database, err := db.Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	n, err := db.NewCatalogStore(database).CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	runID, err := db.NewCatalogStore(database).BuildInfo(ctx, db.MetaRunID)
	require.NoError(t, err)
	assert.Len(t, runID, 36)
}

func TestBuildCmd_Config(t *testing.T) {
	dataDir := writeTables(t)
	out := filepath.Join(t.TempDir(), "crafting_data.json")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ignored_tags: [\"Wood Log\"]\n"), 0o644))

	err := newApp().Run(context.Background(), []string{name, "build", "--data", dataDir, "--out", out, "--config", cfgPath})
	require.NoError(t, err)

	catalog, err := output.ReadFile(out)
	require.NoError(t, err)
	assert.False(t, catalog.Has(2))
	assert.True(t, catalog.Has(1))
	assert.Equal(t, "Items/Plank", catalog.Get(1).Icon)
}

func TestBuildCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
	}{
		{
			name: "missing data directory",
			args: func(t *testing.T) []string {
				return []string{name, "build", "--data", filepath.Join(t.TempDir(), "nope"), "--out", filepath.Join(t.TempDir(), "out.json")}
			},
		},
		{
			name: "missing config file",
			args: func(t *testing.T) []string {
				return []string{name, "build", "--data", writeTables(t), "--config", filepath.Join(t.TempDir(), "nope.yaml")}
			},
		},
		{
			name: "publish without db",
			args: func(t *testing.T) []string {
				return []string{name, "publish", "--catalog", filepath.Join(t.TempDir(), "crafting_data.json")}
			},
		},
		{
			name: "serve without db",
			args: func(t *testing.T) []string {
				return []string{name, "serve"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, newApp().Run(context.Background(), tt.args(t)))
		})
	}
}

func TestPublishCmd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	out := filepath.Join(dir, "crafting_data.json")
	dbPath := filepath.Join(dir, "catalog.db")

	require.NoError(t, newApp().Run(ctx, []string{name, "build", "--data", writeTables(t), "--out", out}))
	require.NoError(t, newApp().Run(ctx, []string{name, "publish", "--catalog", out, "--db", dbPath}))

	database, err := db.Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	entry, err := db.NewCatalogStore(database).GetEntry(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Rough Plank", entry.Name)
}
