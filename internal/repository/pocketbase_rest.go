// Package repository provides PocketBase REST API implementations
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"attendance-reporter/internal/models"
)

// RecipientsCollection is the PocketBase collection holding report recipients
const RecipientsCollection = "report_recipients"

// PocketBaseRESTRecipientRepository implements RecipientRepository
type PocketBaseRESTRecipientRepository struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewPocketBaseRESTRecipientRepository creates repository
func NewPocketBaseRESTRecipientRepository(baseURL, authToken string) *PocketBaseRESTRecipientRepository {
	return &PocketBaseRESTRecipientRepository{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *PocketBaseRESTRecipientRepository) addAuthHeader(req *http.Request) {
	if r.authToken != "" {
		req.Header.Set("Authorization", r.authToken)
	}
}

func (r *PocketBaseRESTRecipientRepository) ListRecipients(ctx context.Context) ([]models.Recipient, error) {
	if r.baseURL == "" {
		return nil, ErrNotConfigured
	}

	filter := url.QueryEscape("is_active=true")
	apiURL := fmt.Sprintf("%s/api/collections/%s/records?filter=%s&sort=department&perPage=500",
		r.baseURL, RecipientsCollection, filter)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ HTTP error listing recipients: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to list recipients: %s - %s", resp.Status, string(body))
	}

	var result struct {
		Items []struct {
			ID         string `json:"id"`
			Department string `json:"department"`
			Email      string `json:"email"`
			IsActive   bool   `json:"is_active"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode recipients: %w", err)
	}

	recipients := make([]models.Recipient, 0, len(result.Items))
	for _, item := range result.Items {
		recipients = append(recipients, models.Recipient{
			ID:         item.ID,
			Department: strings.TrimSpace(item.Department),
			Email:      strings.TrimSpace(item.Email),
			IsActive:   item.IsActive,
		})
	}

	log.Printf("📇 Loaded %d recipients from PocketBase", len(recipients))
	return recipients, nil
}

// StaticRecipientRepository serves recipients from configuration
type StaticRecipientRepository struct {
	recipients []models.Recipient
}

// NewStaticRecipientRepository creates a repository from a department -> email map.
// Departments are listed in name order.
func NewStaticRecipientRepository(byDepartment map[string]string) *StaticRecipientRepository {
	repo := &StaticRecipientRepository{}
	for dept, email := range byDepartment {
		repo.recipients = append(repo.recipients, models.Recipient{
			Department: dept,
			Email:      email,
			IsActive:   true,
		})
	}
	sortRecipients(repo.recipients)
	return repo
}

func (r *StaticRecipientRepository) ListRecipients(ctx context.Context) ([]models.Recipient, error) {
	out := make([]models.Recipient, len(r.recipients))
	copy(out, r.recipients)
	return out, nil
}

func sortRecipients(rs []models.Recipient) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Department < rs[j].Department })
}

var (
	_ RecipientRepository = (*PocketBaseRESTRecipientRepository)(nil)
	_ RecipientRepository = (*StaticRecipientRepository)(nil)
	_ EventSource         = (*SQLEventSource)(nil)
)
