package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/models"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TestSetup connects config.DB to the test database named by the DB_*
// environment variables and clears prior test data. Tests that need the
// database are skipped when DB_HOST is unset.
func TestSetup(t *testing.T) {
	host := os.Getenv("DB_HOST")
	if host == "" {
		t.Skip("DB_HOST not set; skipping database-backed test")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, os.Getenv("DB_PORT"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"))
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.ActivityLog{},
		&models.PasswordReset{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.DB = db
	ClearTestData()
}

// ClearTestData clears all test data from the database
func ClearTestData() {
	config.DB.Exec("TRUNCATE TABLE payments CASCADE")
	config.DB.Exec("TRUNCATE TABLE order_items CASCADE")
	config.DB.Exec("TRUNCATE TABLE orders CASCADE")
	config.DB.Exec("TRUNCATE TABLE activity_logs CASCADE")
	config.DB.Exec("TRUNCATE TABLE password_resets CASCADE")
	config.DB.Exec("TRUNCATE TABLE products CASCADE")
	config.DB.Exec("TRUNCATE TABLE users CASCADE")
}

// CreateTestCashier creates a cashier account for tests
func CreateTestCashier(t *testing.T) *models.User {
	hash, err := HashPassword("Cashier123!")
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}
	user := &models.User{
		Email:     "cashier@test.local",
		Password:  hash,
		FirstName: "Test",
		LastName:  "Cashier",
		Role:      "cashier",
		IsActive:  true,
	}
	if err := config.DB.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test cashier: %v", err)
	}
	return user
}

// CreateTestProduct creates a catalog product for tests
func CreateTestProduct(t *testing.T, name, barcode string, price float64) *models.Product {
	product := &models.Product{
		Name:     name,
		Barcode:  barcode,
		Price:    price,
		Category: "Groceries",
		Stock:    100,
		IsActive: true,
	}
	if err := config.DB.Create(product).Error; err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return product
}

// TestRequest represents a test HTTP request
type TestRequest struct {
	Method  string
	Path    string
	Body    interface{}
	Headers map[string]string
	Cookies []*http.Cookie
}

// TestResponse represents a test HTTP response
type TestResponse struct {
	StatusCode int
	Body       map[string]interface{}
	Cookies    []*http.Cookie
}

// MakeTestRequest makes a test HTTP request against the router
func MakeTestRequest(t *testing.T, router *gin.Engine, req TestRequest) TestResponse {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = json.Marshal(req.Body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
	}

	httpReq, err := http.NewRequest(req.Method, req.Path, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	for _, cookie := range req.Cookies {
		httpReq.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httpReq)

	var responseBody map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &responseBody); err != nil {
			t.Fatalf("Failed to unmarshal response body: %v", err)
		}
	}

	return TestResponse{
		StatusCode: w.Code,
		Body:       responseBody,
		Cookies:    w.Result().Cookies(),
	}
}
