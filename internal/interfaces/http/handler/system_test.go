package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/fabmate/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler()
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler()

	testutil.RunHTTPTestCase(t, h.GetSystemInfo, testutil.HTTPTestCase{
		Name:           "reports name, version and uptime",
		Method:         http.MethodGet,
		Path:           "/system/info",
		ExpectedStatus: http.StatusOK,
		Validate: func(t *testing.T, tc *testutil.TestContext) {
			testutil.AssertSuccessResponse(t, tc)

			resp := testutil.JSONResponse(t, tc)
			data, ok := resp["data"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, "FabMate Backend API", data["name"])
			assert.Equal(t, "1.0.0", data["version"])
			assert.NotEmpty(t, data["go_version"])
			assert.NotEmpty(t, data["uptime"])
		},
	})
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler()

	testutil.RunHTTPTestCase(t, h.Ping, testutil.HTTPTestCase{
		Name:           "pong with an RFC3339 timestamp",
		Method:         http.MethodGet,
		Path:           "/system/ping",
		ExpectedStatus: http.StatusOK,
		Validate: func(t *testing.T, tc *testutil.TestContext) {
			resp := testutil.JSONResponse(t, tc)
			data, ok := resp["data"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, "pong", data["message"])

			timestamp, ok := data["timestamp"].(string)
			require.True(t, ok)
			_, err := time.Parse(time.RFC3339, timestamp)
			assert.NoError(t, err)
		},
	})
}
