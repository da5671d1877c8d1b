package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mdb := NewMockDB(t)
	defer mdb.Close()

	assert.NotNil(t, mdb.DB)
	assert.NotNil(t, mdb.Mock)
	assert.NotNil(t, mdb.SqlDB)

	// Nothing queued, so this must pass.
	mdb.ExpectationsWereMet(t)
}

func TestNewTestContext(t *testing.T) {
	tc := NewTestContext(t)

	assert.NotNil(t, tc.Context)
	assert.NotNil(t, tc.Recorder)
	assert.NotNil(t, tc.Engine)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)
}

func TestTestContext_Setters(t *testing.T) {
	tc := NewTestContext(t)

	tc.SetRequestID("req-8d3f")
	tc.SetCompanyID(TestCompanyID().String())
	tc.SetUserID(TestUserID().String())
	tc.SetHeader("Authorization", "Bearer token")

	reqID, ok := tc.Context.Get("X-Request-ID")
	require.True(t, ok)
	assert.Equal(t, "req-8d3f", reqID)

	companyID, ok := tc.Context.Get("company_id")
	require.True(t, ok)
	assert.Equal(t, TestCompanyID().String(), companyID)

	userID, ok := tc.Context.Get("X-User-ID")
	require.True(t, ok)
	assert.Equal(t, TestUserID().String(), userID)

	assert.Equal(t, "Bearer token", tc.Context.Request.Header.Get("Authorization"))
}

func TestTestContext_ResponseCode(t *testing.T) {
	tc := NewTestContext(t)
	tc.Recorder.WriteHeader(http.StatusCreated)

	assert.Equal(t, http.StatusCreated, tc.ResponseCode())
}

func TestNewTestUUID_Deterministic(t *testing.T) {
	assert.Equal(t, NewTestUUID("drawing-42"), NewTestUUID("drawing-42"))
	assert.NotEqual(t, NewTestUUID("drawing-42"), NewTestUUID("drawing-43"))
}

func TestNewRandomUUID(t *testing.T) {
	assert.NotEqual(t, NewRandomUUID(), NewRandomUUID())
}

func TestSharedFixtureIDs(t *testing.T) {
	assert.Equal(t, TestCompanyID(), TestCompanyID())
	assert.Equal(t, TestUserID(), TestUserID())
	assert.NotEqual(t, TestCompanyID(), TestUserID())
}

func TestContextWithTimeout(t *testing.T) {
	ctx, cancel := ContextWithTimeout(t, 100*time.Millisecond)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.True(t, deadline.After(time.Now()))
}

func TestContextWithCancel(t *testing.T) {
	ctx, cancel := ContextWithCancel(t)

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before cancel was called")
	default:
	}

	cancel()

	select {
	case <-ctx.Done():
	default:
		t.Fatal("context still live after cancel")
	}
}

func TestAssertEventually(t *testing.T) {
	done := make(chan struct{})
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(done)
	}()

	AssertEventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestAssertNever(t *testing.T) {
	AssertNever(t, func() bool { return false }, 50*time.Millisecond, 10*time.Millisecond)
}

func TestRunHTTPTestCases(t *testing.T) {
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "work order created",
		})
	}

	cases := []HTTPTestCase{
		{
			Name:           "status and body",
			Method:         http.MethodPost,
			Path:           "/api/v1/work-orders",
			Body:           map[string]string{"order_number": "ORD-2024-0042"},
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   map[string]any{"success": true},
		},
		{
			Name:           "defaults to GET on root",
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, tc *TestContext) {
				AssertSuccessResponse(t, tc)
			},
		},
	}

	RunHTTPTestCases(t, handler, cases)
}

func TestJSONResponse(t *testing.T) {
	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusOK, gin.H{"order_number": "ORD-2024-0042"})

	resp := JSONResponse(t, tc)
	assert.Equal(t, "ORD-2024-0042", resp["order_number"])
}

func TestJSONResponseAs(t *testing.T) {
	type envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusOK, gin.H{"success": true, "message": "takeoff saved"})

	resp := JSONResponseAs[envelope](t, tc)
	assert.True(t, resp.Success)
	assert.Equal(t, "takeoff saved", resp.Message)
}

func TestToJSONReader(t *testing.T) {
	reader := ToJSONReader(t, map[string]string{"sheet": "A-101"})
	require.NotNil(t, reader)
}
