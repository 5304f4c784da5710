package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Set up test environment variables
	os.Setenv("PORT", "5001")
	os.Setenv("dbName", "VigiaTest")
	os.Setenv("enviroment", "test")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("dbName")
		os.Unsetenv("enviroment")
	}()

	// Reset global config
	resetForTesting()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if config.Port != "5001" {
		t.Errorf("Port = %v, want %v", config.Port, "5001")
	}

	if config.DBName != "VigiaTest" {
		t.Errorf("DBName = %v, want %v", config.DBName, "VigiaTest")
	}

	if config.Environment != "test" {
		t.Errorf("Environment = %v, want %v", config.Environment, "test")
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	if got := getEnv("TEST_VAR", "default"); got != "test-value" {
		t.Errorf("getEnv() = %v, want %v", got, "test-value")
	}

	if got := getEnv("NON_EXISTENT_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want %v", got, "default")
	}
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"valid", "250", 250 * time.Millisecond},
		{"empty", "", time.Second},
		{"garbage", "abc", time.Second},
		{"negative", "-5", time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				os.Unsetenv("TEST_DURATION")
			} else {
				os.Setenv("TEST_DURATION", tt.value)
			}
			defer os.Unsetenv("TEST_DURATION")

			if got := getDuration("TEST_DURATION", time.Second); got != tt.want {
				t.Errorf("getDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsProd(t *testing.T) {
	resetForTesting()
	os.Setenv("enviroment", "prod")
	config, _ := Load()

	if !config.IsProd() {
		t.Error("IsProd() should return true when environment is 'prod'")
	}

	resetForTesting()
	os.Setenv("enviroment", "dev")
	config, _ = Load()

	if config.IsProd() {
		t.Error("IsProd() should return false when environment is not 'prod'")
	}

	os.Unsetenv("enviroment")
}

func TestDefaultValues(t *testing.T) {
	os.Unsetenv("mongodbUrl")
	os.Unsetenv("dbName")
	os.Unsetenv("PORT")
	os.Unsetenv("apiBaseUrl")
	os.Unsetenv("debounceMs")
	os.Unsetenv("enviroment")

	resetForTesting()
	config, _ := Load()

	if config.MongoDBURL != "mongodb://localhost:27017" {
		t.Errorf("MongoDBURL default = %v, want %v", config.MongoDBURL, "mongodb://localhost:27017")
	}

	if config.DBName != "VigiaGuard" {
		t.Errorf("DBName default = %v, want %v", config.DBName, "VigiaGuard")
	}

	if config.Port != "5000" {
		t.Errorf("Port default = %v, want %v", config.Port, "5000")
	}

	if config.APIBaseURL != "http://localhost:5000/api/users" {
		t.Errorf("APIBaseURL default = %v, want %v", config.APIBaseURL, "http://localhost:5000/api/users")
	}

	if config.Debounce != 100*time.Millisecond {
		t.Errorf("Debounce default = %v, want %v", config.Debounce, 100*time.Millisecond)
	}

	if config.RescanInterval != 5*time.Second {
		t.Errorf("RescanInterval default = %v, want %v", config.RescanInterval, 5*time.Second)
	}

	if config.Environment != "dev" {
		t.Errorf("Environment default = %v, want %v", config.Environment, "dev")
	}
}
