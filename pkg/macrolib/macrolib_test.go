package macrolib_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/idwrap"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/logger/mocklogger"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/macrolib"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/model/msubgraph"
	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/zstdcompress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func libraryDoc(t *testing.T, names ...string) ([]byte, []msubgraph.SubGraphDefinition) {
	t.Helper()
	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	macros := make([]msubgraph.SubGraphDefinition, 0, len(names))
	for _, name := range names {
		macros = append(macros, msubgraph.NewLocalMacro(idwrap.NewNow(), name, now))
	}
	data, err := json.Marshal(macrolib.Library{Name: "Test Library", Macros: macros})
	require.NoError(t, err)
	return data, macros
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	plainDoc, plainMacros := libraryDoc(t, "Lerp", "Clamp")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "engine_std.json"), plainDoc, 0o644))

	zstDoc, zstMacros := libraryDoc(t, "Ease In")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "engine_anim.json.zst"), zstdcompress.Compress(zstDoc), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	logger := mocklogger.NewMockLogger()
	reg, err := macrolib.LoadDir(dir, logger)
	require.NoError(t, err)

	require.Len(t, reg.Libraries(), 2)
	assert.Equal(t, "engine_anim", reg.Libraries()[0].ID, "libraries sort by id")
	assert.Equal(t, "engine_std", reg.Libraries()[1].ID)
	assert.Equal(t, 3, reg.MacroCount())

	t.Run("resolve qualified", func(t *testing.T) {
		def, ok := reg.Resolve("engine_std", plainMacros[0].ID)
		require.True(t, ok)
		assert.Equal(t, "Lerp", def.Name)

		_, ok = reg.Resolve("engine_std", zstMacros[0].ID)
		assert.False(t, ok, "qualified lookups never fall through to other libraries")

		_, ok = reg.Resolve("missing_lib", plainMacros[0].ID)
		assert.False(t, ok)
	})

	t.Run("resolve by scan", func(t *testing.T) {
		def, ok := reg.Resolve("", zstMacros[0].ID)
		require.True(t, ok)
		assert.Equal(t, "Ease In", def.Name)

		_, libID, ok := reg.Find(plainMacros[1].ID)
		require.True(t, ok)
		assert.Equal(t, "engine_std", libID)
	})

	t.Run("compressed library round-trips", func(t *testing.T) {
		lib, ok := reg.Library("engine_anim")
		require.True(t, ok)
		require.Len(t, lib.Macros, 1)
		assert.Equal(t, "Ease In", lib.Macros[0].Name)
		assert.NotEmpty(t, lib.Macros[0].Interface.Inputs)
	})
}

func TestLoadDirToleratesBrokenFiles(t *testing.T) {
	dir := t.TempDir()

	goodDoc, _ := libraryDoc(t, "Lerp")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.json"), goodDoc, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.json.zst"), []byte("not zstd"), 0o644))

	logger, handler := mocklogger.NewMockLoggerWithHandler()
	reg, err := macrolib.LoadDir(dir, logger)
	require.NoError(t, err, "broken libraries skip, they do not fail the load")

	require.Len(t, reg.Libraries(), 1)
	assert.Equal(t, "good", reg.Libraries()[0].ID)
	assert.True(t, handler.HasMessageContaining("skipping macro library"))
}

func TestLoadDirMissingDirectory(t *testing.T) {
	logger := mocklogger.NewMockLogger()
	reg, err := macrolib.LoadDir(filepath.Join(t.TempDir(), "does-not-exist"), logger)
	require.NoError(t, err)
	assert.Empty(t, reg.Libraries(), "missing directory is an empty registry, not an error")
}

func TestLibraryNameDefaultsToID(t *testing.T) {
	dir := t.TempDir()
	doc, err := json.Marshal(map[string]any{"macros": []any{}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bare.json"), doc, 0o644))

	reg, err := macrolib.LoadDir(dir, mocklogger.NewMockLogger())
	require.NoError(t, err)
	lib, ok := reg.Library("bare")
	require.True(t, ok)
	assert.Equal(t, "bare", lib.Name)
}

func TestRegistrySearch(t *testing.T) {
	now := time.Now()
	lerp := msubgraph.NewLocalMacro(idwrap.NewNow(), "Lerp Vector", now)
	lerp.Config.Keywords = []string{"interpolate", "blend"}
	clamp := msubgraph.NewLocalMacro(idwrap.NewNow(), "Clamp", now)

	reg := macrolib.NewRegistry([]macrolib.Library{
		{ID: "engine_std", Name: "Engine", Macros: []msubgraph.SubGraphDefinition{lerp, clamp}},
	})

	hits := reg.Search("blend")
	require.NotEmpty(t, hits)
	assert.Equal(t, "Lerp Vector", hits[0].Macro.Name)
	assert.Equal(t, "engine_std", hits[0].LibraryID)

	assert.Len(t, reg.Search(""), 2, "empty query lists every macro")
}
