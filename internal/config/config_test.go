package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `landmarks: landmarks.json`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "landmarks.json", cfg.Landmarks)
	assert.Equal(t, 10.0, cfg.NearbyRadiusKm)
	assert.Equal(t, 15.0, cfg.SnapThresholdDeg)
	assert.Equal(t, 250, cfg.AnimationMs)
	require.NotNil(t, cfg.ArmDisplacementDeg)
	assert.Equal(t, 6.0, *cfg.ArmDisplacementDeg)
	assert.Equal(t, SourceSimulated, cfg.Source.Kind)
	assert.Nil(t, cfg.DeclinationDeg)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
landmarks: places.json
nearby_radius_km: 25
snap_threshold_deg: 5
animation_ms: 400
arm_displacement_deg: 0
declination_deg: -13.2
source:
  kind: udp
speech:
  command: espeak
  args: ["-v", "en-us"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25.0, cfg.NearbyRadiusKm)
	assert.Equal(t, 5.0, cfg.SnapThresholdDeg)
	assert.Equal(t, 400, cfg.AnimationMs)
	require.NotNil(t, cfg.ArmDisplacementDeg)
	assert.Zero(t, *cfg.ArmDisplacementDeg)
	require.NotNil(t, cfg.DeclinationDeg)
	assert.Equal(t, -13.2, *cfg.DeclinationDeg)
	assert.Equal(t, SourceUDP, cfg.Source.Kind)
	assert.Equal(t, ":7453", cfg.Source.Listen)
	assert.Equal(t, "espeak", cfg.Speech.Command)
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	path := writeConfig(t, `
source:
  kind: carrier-pigeon
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "carrier-pigeon")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
