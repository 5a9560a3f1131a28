package libc

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/rtkit/heap"
	"github.com/joshuapare/rtkit/tls"
)

func Test_ParseConfig_Valid(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{
		"heap": {"grow_quantum": 8192, "initial_size": 16384, "size_classes": "fine",
		         "limit": 1048576, "backend": "slice", "max_align": 4096},
		"tls":  {"identity": "os"},
		"log":  {"level": "warn", "format": "json"}
	}`))
	require.NoError(t, err)
	require.Equal(t, Config{
		GrowQuantum: 8192,
		InitialSize: 16384,
		SizeClasses: "fine",
		Limit:       1 << 20,
		Backend:     "slice",
		MaxAlign:    4096,
		Identity:    "os",
		LogLevel:    "warn",
		LogFormat:   "json",
	}, cfg)

	opts, err := cfg.Options()
	require.NoError(t, err)
	require.Equal(t, 8192, opts.Heap.GrowQuantum)
	require.Equal(t, uint64(4096), opts.Heap.MaxAlign)
	require.Equal(t, heap.ConfigFineGrained.Name, opts.Heap.SizeClasses.Name)
	require.IsType(t, &heap.LimitGrower{}, opts.Grower)
	require.Equal(t, tls.OSIdentity{}, opts.Identity)
	require.NotNil(t, opts.Logging)
}

func Test_ParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig([]byte("  \n"))
	require.NoError(t, err)
	require.Equal(t, Config{}, cfg)

	opts, err := cfg.Options()
	require.NoError(t, err)
	require.Nil(t, opts.Identity)
	require.Nil(t, opts.Logging)
	require.NotNil(t, opts.Grower)
}

func Test_ParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"heap": `},
		{"negative quantum", `{"heap": {"grow_quantum": -1}}`},
		{"unknown backend", `{"heap": {"backend": "tape"}}`},
		{"unknown classes", `{"heap": {"size_classes": "tiny"}}`},
		{"unknown identity", `{"tls": {"identity": "fiber"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.doc))
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrConfig), "got %v", err)
		})
	}
}

func Test_ParseConfig_LimitEnforced(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"heap": {"backend": "slice", "grow_quantum": 4096, "limit": 16384}}`))
	require.NoError(t, err)
	opts, err := cfg.Options()
	require.NoError(t, err)

	rt, err := New(opts)
	require.NoError(t, err)
	defer rt.Close()

	require.Equal(t, heap.Nil, rt.Malloc(1<<20))
	require.Equal(t, ENOMEM, rt.Errno())
}
