package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rentfolio/go-rental-management/shared/models"
	"github.com/rentfolio/go-rental-management/shared/utils"
)

// testAuth impersonates the user named by the X-Test-User header, standing in
// for the JWT middleware.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set("user_id", user)
		}
		c.Next()
	}
}

func setupAPITest(t *testing.T) (*gin.Engine, *gorm.DB) {
	return setupAPITestWithProducer(t, nil)
}

func setupAPITestWithProducer(t *testing.T, producer *LeaseEventProducer) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return newRouter(db, producer, testAuth()), db
}

// startTestCache backs the cache helpers with an in-process Redis for the
// duration of one test.
func startTestCache(t *testing.T) {
	mr := miniredis.RunT(t)
	utils.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = utils.RedisClient.Close()
		utils.RedisClient = nil
	})
}

func createOwner(t *testing.T, db *gorm.DB) models.User {
	owner := models.User{
		ID:        uuid.New(),
		Email:     fmt.Sprintf("owner-%s@example.com", uuid.New().String()[:8]),
		Password:  "hashed",
		FirstName: "Jean",
		LastName:  "Martin",
	}
	require.NoError(t, db.Create(&owner).Error)
	return owner
}

func createProperty(t *testing.T, db *gorm.DB, ownerID uuid.UUID) models.Property {
	property := models.Property{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Address:    "8 avenue Foch",
		City:       "Paris",
		PostalCode: "75016",
		Type:       "apartment",
		BaseRent:   1500,
	}
	require.NoError(t, db.Create(&property).Error)
	return property
}

func createTenant(t *testing.T, db *gorm.DB, ownerID uuid.UUID) models.Tenant {
	tenant := models.Tenant{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		FirstName: "Alice",
		LastName:  "Dupont",
		Email:     fmt.Sprintf("%s@example.com", uuid.New().String()[:8]),
	}
	require.NoError(t, db.Create(&tenant).Error)
	return tenant
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doRequest(t *testing.T, router *gin.Engine, method, path, asUser string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if asUser != "" {
		req.Header.Set("X-Test-User", asUser)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestRegisterAndLogin(t *testing.T) {
	router, _ := setupAPITest(t)

	w, resp := doRequest(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":      "new-owner@example.com",
		"password":   "s3cret-pass",
		"first_name": "Jean",
		"last_name":  "Martin",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)

	var created struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	require.NotEmpty(t, created.Token)

	w, resp = doRequest(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "new-owner@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	w, _ = doRequest(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "new-owner@example.com",
		"password": "wrong-pass",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	router, _ := setupAPITest(t)

	payload := gin.H{
		"email":      "dup@example.com",
		"password":   "s3cret-pass",
		"first_name": "Jean",
		"last_name":  "Martin",
	}
	w, _ := doRequest(t, router, http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = doRequest(t, router, http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttachListDetachPropertyTenants(t *testing.T) {
	router, db := setupAPITest(t)
	owner := createOwner(t, db)
	property := createProperty(t, db, owner.ID)
	t1 := createTenant(t, db, owner.ID)
	t2 := createTenant(t, db, owner.ID)

	base := fmt.Sprintf("/api/properties/%s/tenants", property.ID)

	w, resp := doRequest(t, router, http.MethodPost, base, owner.ID.String(), gin.H{
		"tenant_ids": []string{t1.ID.String(), t2.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)

	var lease models.Lease
	require.NoError(t, json.Unmarshal(resp.Data, &lease))
	require.Equal(t, models.LeaseStatusActive, lease.Status)
	require.Equal(t, 1500.0, lease.MonthlyRent, "rent defaults to the property's base rent")
	require.Len(t, lease.Tenants, 2)

	w, resp = doRequest(t, router, http.MethodGet, base, owner.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tenants []models.Tenant
	require.NoError(t, json.Unmarshal(resp.Data, &tenants))
	require.Len(t, tenants, 2)

	w, _ = doRequest(t, router, http.MethodDelete,
		fmt.Sprintf("%s/%s", base, t1.ID), owner.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = doRequest(t, router, http.MethodGet, base, owner.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	tenants = nil
	require.NoError(t, json.Unmarshal(resp.Data, &tenants))
	require.Len(t, tenants, 1)
	require.Equal(t, t2.ID, tenants[0].ID)
}

func TestAttachTenantsRejectsEmptySet(t *testing.T) {
	router, db := setupAPITest(t)
	owner := createOwner(t, db)
	property := createProperty(t, db, owner.ID)

	w, _ := doRequest(t, router, http.MethodPost,
		fmt.Sprintf("/api/properties/%s/tenants", property.ID), owner.ID.String(), gin.H{
			"tenant_ids": []string{},
		})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPropertyOwnershipIsolation(t *testing.T) {
	router, db := setupAPITest(t)
	owner := createOwner(t, db)
	other := createOwner(t, db)
	property := createProperty(t, db, owner.ID)
	foreignTenant := createTenant(t, db, other.ID)

	// Another owner attaching to this property reads as non-existence.
	w, _ := doRequest(t, router, http.MethodPost,
		fmt.Sprintf("/api/properties/%s/tenants", property.ID), other.ID.String(), gin.H{
			"tenant_ids": []string{foreignTenant.ID.String()},
		})
	require.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doRequest(t, router, http.MethodGet,
		fmt.Sprintf("/api/properties/%s", property.ID), other.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeaseUpdateReplacesTenants(t *testing.T) {
	router, db := setupAPITest(t)
	owner := createOwner(t, db)
	property := createProperty(t, db, owner.ID)
	t1 := createTenant(t, db, owner.ID)
	t2 := createTenant(t, db, owner.ID)

	w, resp := doRequest(t, router, http.MethodPost, "/api/leases", owner.ID.String(), gin.H{
		"property_id": property.ID.String(),
		"tenant_ids":  []string{t1.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)
	var lease models.Lease
	require.NoError(t, json.Unmarshal(resp.Data, &lease))

	w, resp = doRequest(t, router, http.MethodPut,
		fmt.Sprintf("/api/leases/%s", lease.ID), owner.ID.String(), gin.H{
			"tenant_ids":   []string{t2.ID.String()},
			"monthly_rent": 1700,
		})
	require.Equal(t, http.StatusOK, w.Code, resp.Error)

	var updated models.Lease
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	require.Equal(t, 1700.0, updated.MonthlyRent)
	require.Len(t, updated.Tenants, 1)
	require.Equal(t, t2.ID, updated.Tenants[0].ID)
}

func TestPropertyTenantsCacheIsOwnerScoped(t *testing.T) {
	startTestCache(t)
	router, db := setupAPITest(t)
	owner := createOwner(t, db)
	other := createOwner(t, db)
	property := createProperty(t, db, owner.ID)
	t1 := createTenant(t, db, owner.ID)

	base := fmt.Sprintf("/api/properties/%s/tenants", property.ID)

	w, _ := doRequest(t, router, http.MethodPost, base, owner.ID.String(), gin.H{
		"tenant_ids": []string{t1.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Warm the owner's cache entry.
	w, resp := doRequest(t, router, http.MethodGet, base, owner.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tenants []models.Tenant
	require.NoError(t, json.Unmarshal(resp.Data, &tenants))
	require.Len(t, tenants, 1)

	// Another owner hitting the same path must not be served from that
	// entry; the property reads as non-existent for them.
	w, resp = doRequest(t, router, http.MethodGet, base, other.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Empty(t, resp.Data)
}

func TestLeaseUpdateRequiresTenantSet(t *testing.T) {
	router, db := setupAPITest(t)
	owner := createOwner(t, db)
	property := createProperty(t, db, owner.ID)
	t1 := createTenant(t, db, owner.ID)

	w, resp := doRequest(t, router, http.MethodPost, "/api/leases", owner.ID.String(), gin.H{
		"property_id": property.ID.String(),
		"tenant_ids":  []string{t1.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var lease models.Lease
	require.NoError(t, json.Unmarshal(resp.Data, &lease))

	// A rent-only edit that omits the tenant set is rejected instead of
	// silently wiping the lease's tenants.
	w, _ = doRequest(t, router, http.MethodPut,
		fmt.Sprintf("/api/leases/%s", lease.ID), owner.ID.String(), gin.H{
			"monthly_rent": 1700,
		})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var joinRows int64
	require.NoError(t, db.Model(&models.LeaseTenant{}).
		Where("lease_id = ?", lease.ID).Count(&joinRows).Error)
	require.EqualValues(t, 1, joinRows)

	var reloaded models.Lease
	require.NoError(t, db.First(&reloaded, "id = ?", lease.ID).Error)
	require.Equal(t, models.LeaseStatusActive, reloaded.Status)
}

func TestLeaseMoveRefreshesBothPropertyTenantLists(t *testing.T) {
	startTestCache(t)
	router, db := setupAPITest(t)
	owner := createOwner(t, db)
	propertyA := createProperty(t, db, owner.ID)
	propertyB := createProperty(t, db, owner.ID)
	t1 := createTenant(t, db, owner.ID)

	w, resp := doRequest(t, router, http.MethodPost, "/api/leases", owner.ID.String(), gin.H{
		"property_id": propertyA.ID.String(),
		"tenant_ids":  []string{t1.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var lease models.Lease
	require.NoError(t, json.Unmarshal(resp.Data, &lease))

	// Warm both properties' cache entries.
	listTenants := func(propertyID uuid.UUID) []models.Tenant {
		w, resp := doRequest(t, router, http.MethodGet,
			fmt.Sprintf("/api/properties/%s/tenants", propertyID), owner.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		var tenants []models.Tenant
		require.NoError(t, json.Unmarshal(resp.Data, &tenants))
		return tenants
	}
	require.Len(t, listTenants(propertyA.ID), 1)
	require.Len(t, listTenants(propertyB.ID), 0)

	w, _ = doRequest(t, router, http.MethodPut,
		fmt.Sprintf("/api/leases/%s", lease.ID), owner.ID.String(), gin.H{
			"property_id": propertyB.ID.String(),
			"tenant_ids":  []string{t1.ID.String()},
		})
	require.Equal(t, http.StatusOK, w.Code)

	// Both the old and the new property reflect the move immediately; a
	// stale cache entry would still show the tenant on the old property.
	require.Len(t, listTenants(propertyA.ID), 0)
	require.Len(t, listTenants(propertyB.ID), 1)
}

func TestDetachSoleTenantEmitsTerminationEvent(t *testing.T) {
	producer := &LeaseEventProducer{eventChan: make(chan LeaseEvent, 8)}
	router, db := setupAPITestWithProducer(t, producer)
	owner := createOwner(t, db)
	property := createProperty(t, db, owner.ID)
	t1 := createTenant(t, db, owner.ID)

	base := fmt.Sprintf("/api/properties/%s/tenants", property.ID)

	w, resp := doRequest(t, router, http.MethodPost, base, owner.ID.String(), gin.H{
		"tenant_ids": []string{t1.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var lease models.Lease
	require.NoError(t, json.Unmarshal(resp.Data, &lease))

	w, _ = doRequest(t, router, http.MethodDelete,
		fmt.Sprintf("%s/%s", base, t1.ID), owner.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// No workers run in this test, so every queued event is still in the
	// channel: the attach, the detach, and the resulting termination.
	events := map[string]LeaseEvent{}
	for len(producer.eventChan) > 0 {
		e := <-producer.eventChan
		events[e.EventType] = e
	}
	require.Contains(t, events, EventLeaseCreated)
	require.Contains(t, events, EventTenantDetached)
	require.Contains(t, events, EventLeaseTerminated)
	require.Equal(t, lease.ID, events[EventLeaseTerminated].LeaseID)
}

func TestFeeOwnershipThroughLease(t *testing.T) {
	router, db := setupAPITest(t)
	owner := createOwner(t, db)
	other := createOwner(t, db)
	property := createProperty(t, db, owner.ID)
	t1 := createTenant(t, db, owner.ID)

	w, resp := doRequest(t, router, http.MethodPost, "/api/leases", owner.ID.String(), gin.H{
		"property_id": property.ID.String(),
		"tenant_ids":  []string{t1.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var lease models.Lease
	require.NoError(t, json.Unmarshal(resp.Data, &lease))

	w, resp = doRequest(t, router, http.MethodPost, "/api/fees", owner.ID.String(), gin.H{
		"lease_id": lease.ID.String(),
		"type":     "rent",
		"amount":   1500,
		"date":     "2026-01-05T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)
	var fee models.Fee
	require.NoError(t, json.Unmarshal(resp.Data, &fee))

	// The fee is invisible to any other owner.
	w, _ = doRequest(t, router, http.MethodGet,
		fmt.Sprintf("/api/fees/%s", fee.ID), other.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doRequest(t, router, http.MethodGet,
		fmt.Sprintf("/api/fees/%s", fee.ID), owner.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
}
