package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsTenantPersonalData(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/v1/me"),
		attribute.String("tenant.id_number", "079123456789"),
		attribute.String("tenant.phone", "0900000000"),
	)
	require.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorKeepsFirstLine(t *testing.T) {
	err := SafeError(errors.New("insert failed\nSQL: INSERT INTO tenants ..."))
	require.Error(t, err)
	assert.Equal(t, "insert failed", err.Error())
	assert.Nil(t, SafeError(nil))
}
