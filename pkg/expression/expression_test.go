package expression

import (
	"testing"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/errmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("valid expressions compile", func(t *testing.T) {
		assert.NoError(t, Validate("health > 50"))
		assert.NoError(t, Validate(`name + "!"`))
		assert.NoError(t, Validate("speed * delta_time + 0.5"))
	})

	t.Run("undefined variables are allowed", func(t *testing.T) {
		assert.NoError(t, Validate("anything > threshold"),
			"pin values exist only at engine runtime, validation must not require them")
	})

	t.Run("syntax errors carry the expression_syntax code", func(t *testing.T) {
		err := Validate("health >")
		require.Error(t, err)
		assert.Equal(t, errmap.CodeExpressionSyntax, errmap.CodeOf(err))
		assert.Contains(t, err.Error(), "parsing expression")
	})
}

func TestValidateBool(t *testing.T) {
	assert.NoError(t, ValidateBool("health > 50"))

	err := ValidateBool("1 +")
	require.Error(t, err)
	assert.Equal(t, errmap.CodeExpressionSyntax, errmap.CodeOf(err))
}

func TestEval(t *testing.T) {
	env := NewEnv(map[string]any{"health": 75, "name": "Bob"})

	t.Run("arithmetic over pin values", func(t *testing.T) {
		out, err := Eval(env, "health + 25")
		require.NoError(t, err)
		assert.Equal(t, 100, out)
	})

	t.Run("string concatenation", func(t *testing.T) {
		out, err := Eval(env, `name + "!"`)
		require.NoError(t, err)
		assert.Equal(t, "Bob!", out)
	})

	t.Run("empty env evaluates constants", func(t *testing.T) {
		out, err := Eval(NewEnv(nil), "1 + 2")
		require.NoError(t, err)
		assert.Equal(t, 3, out)
	})

	t.Run("runtime failures carry the expression_runtime code", func(t *testing.T) {
		_, err := Eval(NewEnv(map[string]any{"zero": 0}), "10 / zero")
		require.Error(t, err)
		assert.Equal(t, errmap.CodeExpressionRuntime, errmap.CodeOf(err))
	})
}

func TestEvalBool(t *testing.T) {
	env := NewEnv(map[string]any{"health": 75})

	ok, err := EvalBool(env, "health > 50")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvalBool(env, "health > 100")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProgramCacheReuse(t *testing.T) {
	require.NoError(t, Validate("cache_probe > 1"))
	key := programCacheKey{expression: "cache_probe > 1", mode: compileModeAny}
	first, ok := programCache.Load(key)
	require.True(t, ok, "compiled programs should be cached")

	require.NoError(t, Validate("cache_probe > 1"))
	second, _ := programCache.Load(key)
	assert.Same(t, first, second, "revalidation should reuse the cached program")
}
