package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"attendance-reporter/config"
	"attendance-reporter/internal/repository"
)

const pocketbaseURL = "http://127.0.0.1:8090"

var httpClient = &http.Client{Timeout: 10 * time.Second}

func main() {
	fmt.Println("🚀 Recipient Directory Setup Script")
	fmt.Println("===================================")

	// Load .env file if exists
	godotenv.Load()

	baseURL := getEnv("POCKETBASE_URL", pocketbaseURL)
	token := getEnv("POCKETBASE_TOKEN", "")

	fmt.Printf("Connecting to: %s\n", baseURL)

	if err := checkHealth(baseURL); err != nil {
		fmt.Printf("❌ Cannot connect to PocketBase: %v\n", err)
		fmt.Printf("\nCheck with: curl %s/api/health\n", baseURL)
		os.Exit(1)
	}

	if token == "" {
		fmt.Println("❌ POCKETBASE_TOKEN not set")
		fmt.Println("\nPlease set a superuser token:")
		fmt.Println("  export POCKETBASE_TOKEN=your_token_here")
		os.Exit(1)
	}

	if err := testAuth(baseURL, token); err != nil {
		fmt.Printf("❌ Auth test failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n📦 Creating collection: %s\n", repository.RecipientsCollection)
	if err := createRecipientsCollection(baseURL, token); err != nil {
		fmt.Printf("   ⚠️  %v\n", err)
		os.Exit(1)
	}

	// Seed from RECIPIENTS so an existing .env carries over
	recipients, err := config.ParseRecipients(os.Getenv("RECIPIENTS"))
	if err != nil {
		fmt.Printf("❌ Invalid RECIPIENTS: %v\n", err)
		os.Exit(1)
	}
	if len(recipients) > 0 {
		fmt.Printf("\n🌱 Seeding %d recipients\n", len(recipients))
		if err := seedRecipients(baseURL, token, recipients); err != nil {
			fmt.Printf("   ⚠️  %v\n", err)
		}
	}

	fmt.Println("\n🎉 Setup complete!")
	fmt.Printf("\nAccess Admin UI: %s/_/\n", baseURL)
}

func testAuth(baseURL, token string) error {
	req, _ := http.NewRequest("GET", baseURL+"/api/collections", nil)
	req.Header.Set("Authorization", token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	fmt.Println("✅ Authentication successful")
	return nil
}

func createRecipientsCollection(baseURL, token string) error {
	fields := []map[string]interface{}{
		createTextField("department", true),
		createEmailField("email", true),
		createBoolField("is_active", false),
	}
	return createCollection(baseURL, token, repository.RecipientsCollection, fields)
}

func createCollection(baseURL, token, name string, fields []map[string]interface{}) error {
	createData := map[string]interface{}{
		"name":    name,
		"type":    "base",
		"fields":  fields,
		"indexes": []string{fmt.Sprintf("CREATE UNIQUE INDEX idx_%s_department ON %s (department)", name, name)},
	}

	jsonData, _ := json.Marshal(createData)
	req, _ := http.NewRequest("POST", baseURL+"/api/collections", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest && (bytes.Contains(body, []byte("already exists")) || bytes.Contains(body, []byte("must be unique"))) {
		fmt.Printf("   Collection exists, attempting to update fields...\n")
		return updateCollectionFields(baseURL, token, name, fields)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("create failed: %s - %s", resp.Status, string(body))
	}

	fmt.Printf("   Created with %d fields\n", len(fields))
	return nil
}

func updateCollectionFields(baseURL, token, name string, fields []map[string]interface{}) error {
	collectionURL := fmt.Sprintf("%s/api/collections/%s", baseURL, name)
	req, _ := http.NewRequest("GET", collectionURL, nil)
	req.Header.Set("Authorization", token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to get collection: %w", err)
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	var existing struct {
		ID     string                   `json:"id"`
		Fields []map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(body, &existing); err != nil {
		return fmt.Errorf("failed to parse collection: %w", err)
	}

	existingFieldNames := make(map[string]bool)
	for _, f := range existing.Fields {
		if name, ok := f["name"].(string); ok {
			existingFieldNames[name] = true
		}
	}

	var newFields []map[string]interface{}
	for _, field := range fields {
		if name, ok := field["name"].(string); ok && !existingFieldNames[name] {
			newFields = append(newFields, field)
		}
	}

	if len(newFields) == 0 {
		fmt.Printf("   All fields already exist\n")
		return nil
	}

	jsonData, _ := json.Marshal(map[string]interface{}{
		"fields": append(existing.Fields, newFields...),
	})
	req, _ = http.NewRequest("PATCH", collectionURL, bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	resp, err = httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update: %w", err)
	}

	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update failed: %s - %s", resp.Status, string(body))
	}

	fmt.Printf("   Added %d new fields\n", len(newFields))
	return nil
}

// seedRecipients inserts departments that have no record yet
func seedRecipients(baseURL, token string, recipients map[string]string) error {
	departments := make([]string, 0, len(recipients))
	for dept := range recipients {
		departments = append(departments, dept)
	}
	sort.Strings(departments)

	recordsURL := fmt.Sprintf("%s/api/collections/%s/records", baseURL, repository.RecipientsCollection)

	for _, dept := range departments {
		exists, err := recipientExists(recordsURL, token, dept)
		if err != nil {
			return err
		}
		if exists {
			fmt.Printf("   = %s already present\n", dept)
			continue
		}

		jsonData, _ := json.Marshal(map[string]interface{}{
			"department": dept,
			"email":      recipients[dept],
			"is_active":  true,
		})
		req, _ := http.NewRequest("POST", recordsURL, bytes.NewBuffer(jsonData))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", token)

		resp, err := httpClient.Do(req)
		if err != nil {
			return err
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("insert %s failed: %s - %s", dept, resp.Status, string(body))
		}
		fmt.Printf("   + %s → %s\n", dept, recipients[dept])
	}

	return nil
}

func recipientExists(recordsURL, token, department string) (bool, error) {
	filter := url.QueryEscape(fmt.Sprintf("department=%q", department))
	req, _ := http.NewRequest("GET", recordsURL+"?perPage=1&filter="+filter, nil)
	req.Header.Set("Authorization", token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("lookup %s failed: %s - %s", department, resp.Status, string(body))
	}

	var result struct {
		TotalItems int `json:"totalItems"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, err
	}
	return result.TotalItems > 0, nil
}

func createTextField(name string, required bool) map[string]interface{} {
	return map[string]interface{}{
		"name":     name,
		"type":     "text",
		"required": required,
		"max":      255,
	}
}

func createEmailField(name string, required bool) map[string]interface{} {
	return map[string]interface{}{
		"name":     name,
		"type":     "email",
		"required": required,
	}
}

func createBoolField(name string, required bool) map[string]interface{} {
	return map[string]interface{}{
		"name":     name,
		"type":     "bool",
		"required": required,
	}
}

func checkHealth(baseURL string) error {
	resp, err := httpClient.Get(baseURL + "/api/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %s", resp.Status)
	}

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("✅ PocketBase is running: %s\n", string(body))
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
