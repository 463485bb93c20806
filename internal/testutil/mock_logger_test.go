package testutil_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_WithSharesBuffer(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.With(logging.SessionID("abc")).Warn("dropped rows")

	v, ok := logger.FieldValue("dropped rows", "session_id")
	require.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestEmployeesCSV_RoundTrips(t *testing.T) {
	data := testutil.EmployeesCSV(testutil.GeneratedEmployees(3)...)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, testutil.EmployeeHeader, records[0])
}

//Personal.AI order the ending
