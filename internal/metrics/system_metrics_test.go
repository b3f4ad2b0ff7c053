package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostCollectorTracksDataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.json")
	hc := NewHostCollector(path)
	require.NoError(t, hc.Register(prometheus.NewRegistry()))

	hc.Collect()
	assert.Equal(t, 0.0, testutil.ToFloat64(hc.dataFilePresent))
	assert.Equal(t, 0.0, testutil.ToFloat64(hc.dataFileBytes))

	body := []byte(`{"P001":{"name":"Ananya Verma"}}`)
	require.NoError(t, os.WriteFile(path, body, 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	hc.Collect()
	assert.Equal(t, 1.0, testutil.ToFloat64(hc.dataFilePresent))
	assert.Equal(t, float64(len(body)), testutil.ToFloat64(hc.dataFileBytes))
	assert.Equal(t, float64(info.ModTime().Unix()), testutil.ToFloat64(hc.dataFileModified))
	assert.Greater(t, testutil.ToFloat64(hc.goroutines), 0.0)
	assert.Greater(t, testutil.ToFloat64(hc.heapAlloc), 0.0)
}

func TestHostCollectorWithoutDataFile(t *testing.T) {
	hc := NewHostCollector("")
	reg := prometheus.NewRegistry()
	require.NoError(t, hc.Register(reg))

	hc.Collect()

	assert.Equal(t, 0.0, testutil.ToFloat64(hc.dataFilePresent))
	assert.Greater(t, testutil.ToFloat64(hc.goroutines), 0.0)

	err := hc.Register(reg)
	assert.Error(t, err)
}
