package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Jostyn07/Asesoriasth-backend/config"
)

// SheetsService talks to the spreadsheet bridge that fronts the reporting
// spreadsheet. The bridge appends row batches to a named sheet; a batch is
// accepted or rejected as a whole.
type SheetsService struct {
	config     *config.SheetsConfig
	httpClient *http.Client
}

// SheetsAppendRequest is the append call payload.
type SheetsAppendRequest struct {
	SpreadsheetID string     `json:"spreadsheetId"`
	Sheet         string     `json:"sheet"`
	Rows          [][]string `json:"rows"`
}

// SheetsAppendResponse is the bridge response envelope.
type SheetsAppendResponse struct {
	Code         int    `json:"code"`
	Message      string `json:"msg"`
	UpdatedRange string `json:"updated_range,omitempty"`
}

func NewSheetsService(cfg *config.SheetsConfig) *SheetsService {
	return &SheetsService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AppendRows appends a batch of rows to the named sheet. The bridge does
// not support partial acceptance, so any error means no row landed.
func (s *SheetsService) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	reqBody := SheetsAppendRequest{
		SpreadsheetID: s.config.SpreadsheetID,
		Sheet:         sheet,
		Rows:          rows,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.APIURL+"/values/append", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sheets bridge returned status %d: %s", resp.StatusCode, string(body))
	}

	var result SheetsAppendResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}

	if result.Code != 0 {
		return fmt.Errorf("sheets bridge error: %s", result.Message)
	}

	return nil
}
