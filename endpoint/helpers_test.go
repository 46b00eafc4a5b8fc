package endpoint_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/medibook/medibook/config"
	"github.com/medibook/medibook/endpoint"
	"github.com/medibook/medibook/middleware"
	"github.com/medibook/medibook/model"
	"github.com/medibook/medibook/util"
	"gorm.io/gorm"
)

// endpointTestModels is the standard set of models migrated for endpoint tests.
var endpointTestModels = []interface{}{
	&model.User{},
	&model.Availability{},
	&model.Appointment{},
	&model.Treatment{},
	&model.SecurityLog{},
}

// setupEndpointTest returns a Gin engine with the full route table and a
// fresh in-memory database. It sets APPENV to "test" and initializes the JWT
// secret; cleanup is registered via t.Cleanup().
func setupEndpointTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	t.Setenv("APPENV", "test")
	t.Setenv("JWTSECRET", "test-secret-123")
	util.SetJWTSecret("test-secret-123")

	db, err := config.ConnectMySQL()
	if err != nil {
		t.Fatalf("failed to connect test DB: %v", err)
	}

	if err := db.AutoMigrate(endpointTestModels...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	t.Cleanup(func() {
		for _, m := range endpointTestModels {
			_ = db.Migrator().DropTable(m)
		}
	})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	registerRoutes(r)
	return r, db
}

// registerRoutes wires the same route table main() uses.
func registerRoutes(r *gin.Engine) {
	r.POST("/register/", endpoint.Register)
	r.POST("/login/", endpoint.Login)
	r.POST("/token/refresh/", endpoint.RefreshToken)

	auth := r.Group("/")
	auth.Use(middleware.BearerAuth())
	{
		auth.DELETE("/logout/", endpoint.Logout)
		auth.GET("/profile/", endpoint.GetPatientProfile)
		auth.PUT("/profile/", endpoint.UpdatePatientProfile)
		auth.GET("/doctor/profile/", endpoint.GetDoctorProfile)
		auth.PUT("/doctor/profile/", endpoint.UpdateDoctorProfile)
		auth.GET("/availability/", endpoint.ListAvailabilities)
		auth.POST("/availability/", middleware.RequireRole(model.RoleDoctor), endpoint.CreateAvailability)
		auth.POST("/book-appointment/", endpoint.BookAppointment)
		auth.PATCH("/appointments/validate/:appointment_id/", endpoint.ValidateAppointment)
		auth.POST("/add-treatments/:appointment_id/", endpoint.AddTreatments)
		auth.GET("/patient/:appointment_id/", endpoint.GetPatientInfo)
		auth.GET("/treatments/", endpoint.ListPatientTreatments)
	}
}

// doRequest performs an HTTP request against the test router, JSON-encoding
// the body when non-nil and attaching a bearer token when provided.
func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// parseResponse decodes the standard API envelope.
func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

func responseData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	resp := parseResponse(t, w)
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object in response, got %q", w.Body.String())
	}
	return data
}

// registerAccount creates an account through the public endpoint.
func registerAccount(t *testing.T, r *gin.Engine, email, password, role string) {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/register/", map[string]string{
		"email":    email,
		"password": password,
		"role":     role,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%s)", email, w.Code, w.Body.String())
	}
}

// loginAccount logs in and returns the access token.
func loginAccount(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/login/", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%s)", email, w.Code, w.Body.String())
	}
	data := responseData(t, w)
	access, _ := data["access"].(string)
	if access == "" {
		t.Fatalf("login %s: missing access token in %s", email, w.Body.String())
	}
	return access
}

// createSlot declares an availability window as the given doctor and returns its ID.
func createSlot(t *testing.T, r *gin.Engine, doctorToken, start, end string) uint {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/availability/", map[string]string{
		"start_time": start,
		"end_time":   end,
	}, doctorToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("create availability: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	data := responseData(t, w)
	id, ok := data["ID"].(float64)
	if !ok {
		t.Fatalf("create availability: missing ID in %s", w.Body.String())
	}
	return uint(id)
}

// bookAppointment books a slot as the given patient and returns the appointment ID.
func bookAppointment(t *testing.T, r *gin.Engine, patientToken string, doctorID, availabilityID uint, symptoms string) uint {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/book-appointment/", map[string]interface{}{
		"doctor_id":       doctorID,
		"availability_id": availabilityID,
		"symptoms":        symptoms,
	}, patientToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("book appointment: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	data := responseData(t, w)
	id, ok := data["appointment_id"].(float64)
	if !ok {
		t.Fatalf("book appointment: missing appointment_id in %s", w.Body.String())
	}
	return uint(id)
}

// userIDByEmail looks up a user's ID directly in the test database.
func userIDByEmail(t *testing.T, db *gorm.DB, email string) uint {
	t.Helper()
	var user model.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		t.Fatalf("lookup user %s: %v", email, err)
	}
	return user.ID
}
