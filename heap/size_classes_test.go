package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_SizeClasses_Monotonic(t *testing.T) {
	for _, cfg := range []SizeClassConfig{ConfigBalanced, ConfigFineGrained, ConfigCoarse} {
		table := newSizeClassTable(cfg)
		require.Positive(t, table.numClasses, cfg.Name)

		prev := 0
		for size := uint64(MinAlign); size <= cfg.MediumMax+1024; size += MinAlign {
			sc := table.classOf(size)
			require.GreaterOrEqual(t, sc, prev, "%s: size %d", cfg.Name, size)
			if sc < table.numClasses {
				require.LessOrEqual(t, size, table.boundaries[sc])
				if sc > 0 {
					require.Greater(t, size, table.boundaries[sc-1])
				}
			}
			prev = sc
		}
		require.Equal(t, table.numClasses, table.classOf(table.boundaries[table.numClasses-1]+1))
	}
}

func Test_SizeClasses_ByName(t *testing.T) {
	cfg, err := ConfigByName("")
	require.NoError(t, err)
	require.Equal(t, ConfigBalanced, cfg)

	cfg, err = ConfigByName("Coarse")
	require.NoError(t, err)
	require.Equal(t, ConfigCoarse, cfg)

	_, err = ConfigByName("registry")
	require.Error(t, err)
}
