package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dm/cmm-go/internal/model"
)

func TestDownstreamPowerSeverity(t *testing.T) {
	assert.Equal(t, model.SeverityNormal, DownstreamPowerSeverity(0))
	assert.Equal(t, model.SeverityNormal, DownstreamPowerSeverity(-7))
	assert.Equal(t, model.SeverityWarning, DownstreamPowerSeverity(7.1))
	assert.Equal(t, model.SeverityWarning, DownstreamPowerSeverity(-9))
	assert.Equal(t, model.SeverityCritical, DownstreamPowerSeverity(-15.5))
}

func TestSNRSeverity(t *testing.T) {
	assert.Equal(t, model.SeverityNormal, SNRSeverity(0), "unreported")
	assert.Equal(t, model.SeverityNormal, SNRSeverity(38))
	assert.Equal(t, model.SeverityWarning, SNRSeverity(32))
	assert.Equal(t, model.SeverityCritical, SNRSeverity(29.9))
}

func TestUpstreamPowerSeverity(t *testing.T) {
	assert.Equal(t, model.SeverityNormal, UpstreamPowerSeverity(0), "unreported")
	assert.Equal(t, model.SeverityNormal, UpstreamPowerSeverity(44))
	assert.Equal(t, model.SeverityWarning, UpstreamPowerSeverity(34))
	assert.Equal(t, model.SeverityWarning, UpstreamPowerSeverity(52))
	assert.Equal(t, model.SeverityCritical, UpstreamPowerSeverity(55))
}
